package domain

// Merge combines a partial update into an existing record and returns
// the result. It is a pure function: neither argument is mutated.
//
// The rule, applied per key: when both the existing value and the
// update value are mappings, they are unioned key-wise with the update
// winning on conflict, recursively at each level. Any other
// combination is last-write-wins.
func Merge(old, update map[string]any) map[string]any {
	out := make(map[string]any, len(old)+len(update))
	for k, v := range old {
		out[k] = v
	}
	for k, v := range update {
		existing, ok := out[k].(map[string]any)
		incoming, ok2 := v.(map[string]any)
		if ok && ok2 {
			out[k] = Merge(existing, incoming)
			continue
		}
		out[k] = v
	}
	return out
}

// Apply merges a partial update into the state in place and returns
// the state for chaining. The state map itself is reused so the event
// log slice and prior keys stay reachable; nested mappings follow the
// pure Merge rule.
func (s State) Apply(update map[string]any) State {
	for k, v := range update {
		existing, ok := s[k].(map[string]any)
		incoming, ok2 := v.(map[string]any)
		if ok && ok2 {
			s[k] = Merge(existing, incoming)
			continue
		}
		s[k] = v
	}
	return s
}
