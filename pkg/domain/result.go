package domain

// ResultKind discriminates the four rendered result variants.
type ResultKind string

const (
	// ResultFragment is a templated (optionally framed) markup fragment.
	ResultFragment ResultKind = "fragment"
	// ResultScript is a client-side script payload.
	ResultScript ResultKind = "script"
	// ResultRaw is a raw payload emitted verbatim.
	ResultRaw ResultKind = "raw"
	// ResultEmpty carries no content.
	ResultEmpty ResultKind = "empty"
)

// RenderedResult is the output of one invocation. Exactly one variant is
// produced per invocation; Body is empty for ResultEmpty.
type RenderedResult struct {
	Kind ResultKind `json:"kind"`
	Body string     `json:"body,omitempty"`
}

// NewFragment wraps markup as a fragment result.
func NewFragment(markup string) RenderedResult {
	return RenderedResult{Kind: ResultFragment, Body: markup}
}

// NewScript wraps code as a script payload result.
func NewScript(code string) RenderedResult {
	return RenderedResult{Kind: ResultScript, Body: code}
}

// NewRaw wraps a payload as a raw result.
func NewRaw(payload string) RenderedResult {
	return RenderedResult{Kind: ResultRaw, Body: payload}
}

// EmptyResult returns the empty variant.
func EmptyResult() RenderedResult {
	return RenderedResult{Kind: ResultEmpty}
}

// UpdateMode selects how a page update replaces content in the client view.
type UpdateMode string

const (
	// ReplaceWhole replaces the widget's node, container included.
	ReplaceWhole UpdateMode = "replace"
	// ReplaceInner replaces only the content inside the widget's container.
	ReplaceInner UpdateMode = "update"
)

// PageUpdate is the typed instruction produced once per top-level render
// call: how the rendered content should be applied, keyed by the widget id.
type PageUpdate struct {
	Mode    UpdateMode     `json:"mode"`
	Target  string         `json:"target"`
	Content RenderedResult `json:"content"`
}

// ChildSet is the ordered mapping from child id to rendered result produced
// by child composition. Order is insertion (= render) order; templates rely
// on it for deterministic concatenation.
type ChildSet struct {
	order   []string
	results map[string]RenderedResult
}

// NewChildSet returns an empty child set.
func NewChildSet() *ChildSet {
	return &ChildSet{results: make(map[string]RenderedResult)}
}

// Add records a child result, preserving first-added order. At most one
// entry per child: re-adding an id overwrites the result in place.
func (cs *ChildSet) Add(id string, result RenderedResult) {
	if _, seen := cs.results[id]; !seen {
		cs.order = append(cs.order, id)
	}
	cs.results[id] = result
}

// Get looks up the result for a child id.
func (cs *ChildSet) Get(id string) (RenderedResult, bool) {
	r, ok := cs.results[id]
	return r, ok
}

// Markup returns the child's rendered body, "" when absent. Convenience for
// template lookups.
func (cs *ChildSet) Markup(id string) string {
	return cs.results[id].Body
}

// IDs returns the child ids in render order.
func (cs *ChildSet) IDs() []string {
	out := make([]string, len(cs.order))
	copy(out, cs.order)
	return out
}

// Len returns the number of recorded children.
func (cs *ChildSet) Len() int { return len(cs.order) }

// Join concatenates the rendered bodies in render order.
func (cs *ChildSet) Join() string {
	var out string
	for _, id := range cs.order {
		out += cs.results[id].Body
	}
	return out
}
