package domain

import "fmt"

// Reserved keys in the options map passed to AddressForEvent.
const (
	AddressKeyType   = "type"
	AddressKeySource = "source"
)

// EventAddress is an opaque routing descriptor: it lets a client-triggered
// event be mapped back to its originating widget and a target state. It is
// immutable once built and is consumed by an external URL/transport builder.
type EventAddress struct {
	Source string         `json:"source"`
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// AddressForEvent builds an event address from an options map. The "type"
// key is mandatory; "source" defaults to the invoking widget's id. All
// remaining keys pass through unchanged into Params.
func AddressForEvent(w *Widget, options map[string]any) (*EventAddress, error) {
	rawType, ok := options[AddressKeyType]
	if !ok {
		return nil, fmt.Errorf("widget %s: %w", w.ID, ErrMissingEventType)
	}
	eventType, ok := rawType.(string)
	if !ok || eventType == "" {
		return nil, fmt.Errorf("widget %s: %w", w.ID, ErrMissingEventType)
	}

	source := w.ID
	if rawSource, ok := options[AddressKeySource]; ok {
		if s, ok := rawSource.(string); ok && s != "" {
			source = s
		}
	}

	params := make(map[string]any, len(options))
	for k, v := range options {
		if k == AddressKeyType || k == AddressKeySource {
			continue
		}
		params[k] = v
	}

	return &EventAddress{
		Source: source,
		Type:   eventType,
		Params: params,
	}, nil
}
