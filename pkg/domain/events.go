package domain

import (
	"context"
	"time"
)

// StateEvent records a state handler entering or leaving.
type StateEvent struct {
	Timestamp time.Time `json:"timestamp"`
	WidgetID  string    `json:"widget_id"`
	Kind      string    `json:"kind"`
	State     string    `json:"state"`
	// Forced marks jumps that bypassed the transition table.
	Forced bool `json:"forced,omitempty"`
}

// RenderEvent records a completed render pipeline run.
type RenderEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	WidgetID  string        `json:"widget_id"`
	Kind      string        `json:"kind"`
	State     string        `json:"state"`
	Mode      UpdateMode    `json:"mode"`
	Result    ResultKind    `json:"result"`
	Duration  time.Duration `json:"duration"`
}

// EventResolution records an event address resolved to a widget and state.
type EventResolution struct {
	Timestamp time.Time `json:"timestamp"`
	WidgetID  string    `json:"widget_id"`
	EventType string    `json:"event_type"`
	State     string    `json:"state"`
}

// LifecycleHooks defines callbacks for engine observability. Nil hooks are
// skipped; hooks must not mutate the tree.
type LifecycleHooks struct {
	OnStateEnter     func(context.Context, *StateEvent)
	OnStateLeave     func(context.Context, *StateEvent)
	OnRenderComplete func(context.Context, *RenderEvent)
	OnEventResolved  func(context.Context, *EventResolution)
}
