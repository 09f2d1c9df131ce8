package domain

import "errors"

// ErrUnknownState is returned when an invocation resolves to a state that has
// no registered handler on the widget's kind. This is a fatal configuration
// error; it aborts the whole render pass.
var ErrUnknownState = errors.New("unknown state")

// ErrMissingEventType is returned by AddressForEvent when no event type is given.
var ErrMissingEventType = errors.New("missing event type")

// ErrUnhandledEvent is returned when an event is routed to a widget whose kind
// defines no target state for the event type.
var ErrUnhandledEvent = errors.New("unhandled event")

// ErrWidgetNotFound is returned when an event or a transport request addresses
// a widget id that does not exist in the tree.
var ErrWidgetNotFound = errors.New("widget not found")

// ErrWidgetExists is returned when adding a child whose id collides with an
// existing sibling.
var ErrWidgetExists = errors.New("widget already exists")

// ErrCycle is returned when a tree edit would make a widget its own ancestor.
var ErrCycle = errors.New("widget tree cycle")

// ErrJumpDepthExceeded is returned when a handler chain re-invokes states
// deeper than the engine's configured limit within a single render pass.
var ErrJumpDepthExceeded = errors.New("state jump depth exceeded")

// ErrUnknownKind is returned when thawing a tree that references a kind name
// absent from the registry.
var ErrUnknownKind = errors.New("unknown widget kind")

// ErrTreeNotFound is returned when a tree id cannot be found in the store.
var ErrTreeNotFound = errors.New("tree not found")
