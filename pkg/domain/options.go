package domain

// Reserved locals keys injected by the render pipeline.
const (
	// LocalChildren holds the *ChildSet of composed child results.
	LocalChildren = "children"
	// LocalContent holds the inner view markup when a layout wraps it.
	LocalContent = "content"
	// LocalWidget holds the id of the widget being rendered.
	LocalWidget = "widget"
)

// DefaultFrameTag is the generic container tag used when no frame is chosen.
const DefaultFrameTag = "div"

// RenderOptions configures one render pipeline run. The zero value renders
// the current state's template with children composed and the default frame.
// Defaults are resolved once at the start of Render, not mutated piecemeal.
type RenderOptions struct {
	// View overrides the template name; defaults to the current state.
	View string

	// Layout, when set, wraps the view output: the layout template is
	// rendered with the view markup under the LocalContent key.
	Layout string

	// HTMLAttrs are attributes for the framing container. A default id
	// attribute equal to the widget id is merged in unless overridden.
	HTMLAttrs map[string]string

	// Locals are template variables, merged with the reserved keys above.
	Locals map[string]any

	// ReplaceInner selects UpdateMode ReplaceInner and forces the frame off:
	// the two are mutually adjusting flags, not independently toggled.
	ReplaceInner bool

	// SkipChildren disables child composition. The zero value composes.
	SkipChildren bool

	// Frame is the framing container tag. Empty means "use the engine
	// default" unless NoFrame is set.
	Frame string

	// NoFrame suppresses the framing container entirely.
	NoFrame bool

	// Invoke maps child ids to explicit states, overriding each child's own
	// state machine during composition. Ids absent from the tree are
	// silently ignored.
	Invoke map[string]string

	// Script short-circuits the pipeline with a script payload.
	Script string

	// Raw short-circuits the pipeline with a raw payload.
	Raw string

	// Empty short-circuits the pipeline with the empty result.
	Empty bool
}
