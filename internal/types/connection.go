package types

import "strings"

// Connection is a directed edge between two blocks, optionally carrying a
// source handle that a condition block uses to tag which branch an edge
// represents ("condition-<conditionId>").
type Connection struct {
	Source        string `json:"source" yaml:"source"`
	Target        string `json:"target" yaml:"target"`
	SourceHandle  string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
}

const conditionHandlePrefix = "condition-"

// ConditionID returns the condition id encoded in the handle and true, or
// ("", false) if this connection isn't a condition branch edge.
func (c Connection) ConditionID() (string, bool) {
	if !strings.HasPrefix(c.SourceHandle, conditionHandlePrefix) {
		return "", false
	}
	return strings.TrimPrefix(c.SourceHandle, conditionHandlePrefix), true
}

// ConditionHandle builds the sourceHandle value for a given condition id.
func ConditionHandle(conditionID string) string {
	return conditionHandlePrefix + conditionID
}
