package domain

// Well-known state keys shared between the engine, the built-in
// abilities and the adapters.
const (
	KeyQuery         = "query"
	KeyEntities      = "entities"
	KeyFlags         = "flags"
	KeyMeta          = "meta"
	KeyLog           = "log"
	KeyErrors        = "errors"
	KeyKBResults     = "kb_results"
	KeyKBAnswer      = "kb_answer"
	KeyKBConfidence  = "kb_match_confidence"
	KeySolutionScore = "solution_score"
	KeyTicketStatus  = "ticket_status"
	KeyResponse      = "response"
)

// NoAnswerSentinel is stored under KeyKBAnswer when the connector
// returns zero results.
const NoAnswerSentinel = "No match found."

// State is the single mutable record threaded through one run. It maps
// field names to scalars, nested mappings or ordered sequences, grows
// monotonically over a run and is discarded when the run returns. One
// run owns its State exclusively.
type State map[string]any

// NewState creates a state seeded with the default empty containers
// every run starts from.
func NewState() State {
	return State{
		KeyEntities: map[string]any{},
		KeyFlags:    map[string]any{},
		KeyMeta:     map[string]any{},
		KeyLog:      []Event{},
	}
}

// Get returns the value stored under key, or nil if absent.
func (s State) Get(key string) any {
	return s[key]
}

// GetString returns the value under key as a string. Missing keys and
// non-string values default to the empty string, matching the input
// contract for fields outside the validated set.
func (s State) GetString(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// GetMap returns the mapping stored under key, or nil if the key is
// absent or holds a non-mapping value.
func (s State) GetMap(key string) map[string]any {
	if m, ok := s[key].(map[string]any); ok {
		return m
	}
	return nil
}

// GetInt coerces the value under key to an int. The state is populated
// from YAML/JSON decoding as well as native ability output, so numeric
// fields can surface as int, int64 or float64.
func (s State) GetInt(key string) (int, bool) {
	switch v := s[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Events returns the append-only event log stored inside the state.
func (s State) Events() []Event {
	if evs, ok := s[KeyLog].([]Event); ok {
		return evs
	}
	return nil
}

// HasErrorMarkers reports whether any ability failure was recorded
// during the run. The caller uses this to distinguish a fully
// successful run from a degraded one.
func (s State) HasErrorMarkers() bool {
	return len(s.GetMap(KeyErrors)) > 0
}
