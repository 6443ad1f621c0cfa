package types

// Output is a NormalizedBlockOutput: a mapping required to carry a
// "response" key whose value is itself a mapping. Extra keys beyond
// "response" are permitted and preserved verbatim.
type Output map[string]interface{}

// Response returns the required "response" sub-mapping, or an empty map if
// it is missing or not itself a mapping.
func (o Output) Response() map[string]interface{} {
	if o == nil {
		return map[string]interface{}{}
	}
	if r, ok := o["response"].(map[string]interface{}); ok {
		return r
	}
	return map[string]interface{}{}
}

// EmptyOutput is the canonical zero-value output used when no block ran.
func EmptyOutput() Output {
	return Output{"response": map[string]interface{}{}}
}
