package types

// BlockMetadata carries the semantic identity of a block: its type
// (starter, router, condition, agent, evaluator, api, function, generic, ...)
// and an optional display name used for name-based references.
type BlockMetadata struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// BlockConfig holds the raw, unresolved parameter map and optional tool
// identifier for api/function/generic blocks.
type BlockConfig struct {
	Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
	Tool   string                  `json:"tool,omitempty" yaml:"tool,omitempty"`
}

// Block is the serialized shape of a single workflow node.
type Block struct {
	ID       string        `json:"id" yaml:"id"`
	Metadata BlockMetadata `json:"metadata" yaml:"metadata"`
	Enabled  *bool         `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Config   BlockConfig   `json:"config" yaml:"config"`
}

// IsEnabled reports whether the block runs, defaulting to true when Enabled
// was left unset.
func (b *Block) IsEnabled() bool {
	return b.Enabled == nil || *b.Enabled
}

// Kind returns the block's semantic type, e.g. "router" or "agent".
func (b *Block) Kind() string {
	return b.Metadata.Type
}

const StarterKind = "starter"
