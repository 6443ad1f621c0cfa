package types

import "strings"

// SerializedWorkflow is the in-memory graph handed to the executor: an
// ordered sequence of blocks, a set of connections, and the declared loops
// keyed by loop id.
type SerializedWorkflow struct {
	Blocks      []Block               `json:"blocks" yaml:"blocks"`
	Connections []Connection          `json:"connections" yaml:"connections"`
	Loops       map[string]Loop       `json:"loops,omitempty" yaml:"loops,omitempty"`
}

// NormalizeName lowercases and strips all whitespace, the rule used to
// resolve a block reference's head (and a condition handler's evaluation
// mapping key) against display names.
func NormalizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// WorkflowIndex precomputes the lookups the scheduler, resolver, and loop
// manager need on every block: id/name lookup, adjacency, and loop
// membership. It is built once (executor.New builds one per Executor, shared
// by every Execute call) and never mutated afterwards.
type WorkflowIndex struct {
	Workflow *SerializedWorkflow

	blocksByID map[string]*Block
	nameToID   map[string]string
	outgoing   map[string][]Connection
	incoming   map[string][]Connection
	loopsByNode map[string][]string // blockID -> loop ids it belongs to
}

// BuildIndex constructs a WorkflowIndex over the given workflow.
func BuildIndex(wf *SerializedWorkflow) *WorkflowIndex {
	idx := &WorkflowIndex{
		Workflow:    wf,
		blocksByID:  make(map[string]*Block, len(wf.Blocks)),
		nameToID:    make(map[string]string, len(wf.Blocks)),
		outgoing:    make(map[string][]Connection),
		incoming:    make(map[string][]Connection),
		loopsByNode: make(map[string][]string),
	}

	for i := range wf.Blocks {
		b := &wf.Blocks[i]
		idx.blocksByID[b.ID] = b
		if b.Metadata.Name != "" {
			idx.nameToID[NormalizeName(b.Metadata.Name)] = b.ID
		}
	}

	for _, c := range wf.Connections {
		idx.outgoing[c.Source] = append(idx.outgoing[c.Source], c)
		idx.incoming[c.Target] = append(idx.incoming[c.Target], c)
	}

	for loopID, loop := range wf.Loops {
		for _, n := range loop.Nodes {
			idx.loopsByNode[n] = append(idx.loopsByNode[n], loopID)
		}
	}

	return idx
}

// Block returns the block with the given id, or nil.
func (idx *WorkflowIndex) Block(id string) *Block {
	return idx.blocksByID[id]
}

// Resolve looks up a block by id first, then by normalized display name.
func (idx *WorkflowIndex) Resolve(head string) (*Block, bool) {
	if b, ok := idx.blocksByID[head]; ok {
		return b, true
	}
	if id, ok := idx.nameToID[NormalizeName(head)]; ok {
		return idx.blocksByID[id], true
	}
	return nil, false
}

// Outgoing returns the connections leaving blockID, in declaration order.
func (idx *WorkflowIndex) Outgoing(blockID string) []Connection {
	return idx.outgoing[blockID]
}

// Incoming returns the connections arriving at blockID, in declaration order.
func (idx *WorkflowIndex) Incoming(blockID string) []Connection {
	return idx.incoming[blockID]
}

// Successors returns the direct target ids of blockID's outgoing edges.
func (idx *WorkflowIndex) Successors(blockID string) []string {
	out := idx.outgoing[blockID]
	ids := make([]string, len(out))
	for i, c := range out {
		ids[i] = c.Target
	}
	return ids
}

// InLoops returns the ids of every loop blockID is a member of.
func (idx *WorkflowIndex) InLoops(blockID string) []string {
	return idx.loopsByNode[blockID]
}

// IsInAnyLoop reports whether blockID belongs to at least one declared loop.
func (idx *WorkflowIndex) IsInAnyLoop(blockID string) bool {
	return len(idx.loopsByNode[blockID]) > 0
}

// Starter returns the workflow's single starter block.
func (idx *WorkflowIndex) Starter() (*Block, bool) {
	for i := range idx.Workflow.Blocks {
		b := &idx.Workflow.Blocks[i]
		if b.Kind() == StarterKind {
			return b, true
		}
	}
	return nil, false
}
