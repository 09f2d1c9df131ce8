package dsl

// WidgetBuilder provides a fluent API for configuring one widget of the tree.
type WidgetBuilder struct {
	id          string
	kind        string
	options     map[string]any
	startStates []string
	hidden      bool

	parent   *WidgetBuilder
	children []*WidgetBuilder
	tree     *TreeBuilder
}

// Option sets one entry of the widget's options bag.
func (w *WidgetBuilder) Option(key string, value any) *WidgetBuilder {
	if w.options == nil {
		w.options = make(map[string]any)
	}
	w.options[key] = value
	return w
}

// Options merges a map into the widget's options bag.
func (w *WidgetBuilder) Options(options map[string]any) *WidgetBuilder {
	for k, v := range options {
		w.Option(k, v)
	}
	return w
}

// Start overrides the kind's start state sequence for this widget.
func (w *WidgetBuilder) Start(states ...string) *WidgetBuilder {
	w.startStates = states
	return w
}

// Hidden excludes the widget from child composition until shown.
func (w *WidgetBuilder) Hidden() *WidgetBuilder {
	w.hidden = true
	return w
}

// Child declares a child widget and descends into its builder. Children
// render in declaration order. Use Done to come back up.
func (w *WidgetBuilder) Child(id, kind string) *WidgetBuilder {
	for _, c := range w.children {
		if c.id == id {
			return c
		}
	}
	c := &WidgetBuilder{id: id, kind: kind, parent: w, tree: w.tree}
	w.children = append(w.children, c)
	return c
}

// Done returns the parent builder, or the builder itself at the root.
func (w *WidgetBuilder) Done() *WidgetBuilder {
	if w.parent == nil {
		return w
	}
	return w.parent
}
