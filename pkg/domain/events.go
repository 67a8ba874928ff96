package domain

import "context"

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventRunStarted   EventType = "run_started"
	EventStageStart   EventType = "stage_start"
	EventStageSkipped EventType = "stage_skipped"
	EventStageEnd     EventType = "stage_end"
	EventAbilityStart EventType = "ability_start"
	EventAbilityEnd   EventType = "ability_end"
	EventRunCompleted EventType = "run_completed"
)

// Event is one entry in the append-only trace a run leaves inside its
// execution state. Seq is the insertion position, starting at 0.
type Event struct {
	Type    EventType      `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
	Seq     int            `json:"seq"`
}

// StageEvent describes a stage boundary for external observers.
type StageEvent struct {
	Stage   string
	Mode    Mode
	Skipped bool
}

// AbilityEvent describes an ability invocation for external observers.
// Summary is bounded; the full output lives only in the state.
type AbilityEvent struct {
	Stage     string
	Ability   string
	Namespace Namespace
	Summary   map[string]any
	IsError   bool
}

// LifecycleHooks defines optional callbacks for engine observability.
// Nil members are skipped. Hooks run synchronously inside the stage
// loop, so they must be cheap.
type LifecycleHooks struct {
	OnStageStart   func(context.Context, *StageEvent)
	OnStageEnd     func(context.Context, *StageEvent)
	OnAbilityStart func(context.Context, *AbilityEvent)
	OnAbilityEnd   func(context.Context, *AbilityEvent)
	OnRunCompleted func(context.Context, State)
}
