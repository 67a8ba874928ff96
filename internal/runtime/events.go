package runtime

import "github.com/aretw0/flume/pkg/domain"

// appendEvent adds one entry to the append-only trace inside the
// state and mirrors it to the logger.
func (e *Engine) appendEvent(state domain.State, typ domain.EventType, payload map[string]any) {
	events := state.Events()
	state[domain.KeyLog] = append(events, domain.Event{
		Type:    typ,
		Payload: payload,
		Seq:     len(events),
	})

	attrs := make([]any, 0, len(payload)*2)
	for k, v := range payload {
		attrs = append(attrs, k, v)
	}
	e.logger.Debug(string(typ), attrs...)
}
