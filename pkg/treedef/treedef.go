// Package treedef loads widget kind and tree definitions from YAML files.
//
// A definition file declares kinds (states bound to generic view-rendering
// handlers, transitions, event routes) and one tree composed of those kinds.
// It covers view-driven widgets entirely from configuration; kinds with
// custom handler logic register in Go instead.
package treedef

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/aretw0/arbor/pkg/snapshot"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Definition is the root of a tree definition file.
type Definition struct {
	Kinds []KindDef `yaml:"kinds"`
	Tree  *NodeDef  `yaml:"tree"`
}

// KindDef declares one widget kind.
type KindDef struct {
	Name string `yaml:"name"`
	// Start is the default start state sequence.
	Start []string `yaml:"start"`
	// States maps state names to either a view name (string shorthand) or a
	// StateDef mapping.
	States map[string]any `yaml:"states"`
	// Transitions is the state machine table (from -> to).
	Transitions map[string]string `yaml:"transitions"`
	// Events routes event types to target states.
	Events map[string]string `yaml:"events"`
}

// StateDef configures the generic view handler bound to a state.
type StateDef struct {
	View         string `mapstructure:"view"`
	Layout       string `mapstructure:"layout"`
	Frame        string `mapstructure:"frame"`
	NoFrame      bool   `mapstructure:"no_frame"`
	SkipChildren bool   `mapstructure:"skip_children"`
	Update       bool   `mapstructure:"update"`
	Script       string `mapstructure:"script"`
	Empty        bool   `mapstructure:"empty"`
}

// NodeDef declares one widget of the tree.
type NodeDef struct {
	ID       string         `yaml:"id"`
	Kind     string         `yaml:"kind"`
	Hidden   bool           `yaml:"hidden"`
	Start    []string       `yaml:"start"`
	Options  map[string]any `yaml:"options"`
	Children []*NodeDef     `yaml:"children"`
}

// Load reads and parses a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree definition: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML definition data.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse tree definition: %w", err)
	}
	return &def, nil
}

// Register builds the declared kinds and registers them.
func (d *Definition) Register(reg *registry.Registry) error {
	for _, kd := range d.Kinds {
		kind, err := kd.build()
		if err != nil {
			return err
		}
		if err := reg.Register(kind); err != nil {
			return err
		}
	}
	return nil
}

// Seed returns a seed building the declared tree, resolving kinds through
// the resolver (typically the registry Register populated).
func (d *Definition) Seed(kinds snapshot.KindResolver) session.SeedFunc {
	return func() (*domain.Widget, error) {
		if d.Tree == nil {
			return nil, fmt.Errorf("treedef: no tree declared")
		}
		b := dsl.NewTree(kinds)
		declare(d.Tree, b.Root(d.Tree.ID, d.Tree.Kind))
		return b.Build()
	}
}

func declare(nd *NodeDef, wb *dsl.WidgetBuilder) {
	if nd.Hidden {
		wb.Hidden()
	}
	if len(nd.Start) > 0 {
		wb.Start(nd.Start...)
	}
	if len(nd.Options) > 0 {
		wb.Options(nd.Options)
	}
	for _, cd := range nd.Children {
		declare(cd, wb.Child(cd.ID, cd.Kind))
	}
}

func (kd KindDef) build() (*domain.Kind, error) {
	b := domain.NewKind(kd.Name)
	for name, raw := range kd.States {
		sd, err := decodeState(raw)
		if err != nil {
			return nil, fmt.Errorf("treedef: kind %s: state %s: %w", kd.Name, name, err)
		}
		b.State(name, viewHandler(sd))
	}
	for from, to := range kd.Transitions {
		b.Transition(from, to)
	}
	for evt, state := range kd.Events {
		b.OnEvent(evt, state)
	}
	if len(kd.Start) > 0 {
		b.Start(kd.Start...)
	}
	kind, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("treedef: %w", err)
	}
	return kind, nil
}

// decodeState accepts the string shorthand (a bare view name) or a mapping.
func decodeState(raw any) (StateDef, error) {
	switch v := raw.(type) {
	case nil:
		return StateDef{}, nil
	case string:
		return StateDef{View: v}, nil
	default:
		var sd StateDef
		if err := mapstructure.Decode(v, &sd); err != nil {
			return StateDef{}, err
		}
		return sd, nil
	}
}

// viewHandler renders the state's declared view. Event params pass through
// as template locals. Widgets with no visible children skip composition, so
// leaf templates never see an empty children local.
func viewHandler(sd StateDef) domain.Handler {
	return func(ctx context.Context, call *domain.Call) (*domain.PageUpdate, error) {
		return call.Render(ctx, domain.RenderOptions{
			View:         sd.View,
			Layout:       sd.Layout,
			Frame:        sd.Frame,
			NoFrame:      sd.NoFrame,
			SkipChildren: sd.SkipChildren || len(call.Widget.VisibleChildren()) == 0,
			ReplaceInner: sd.Update,
			Script:       sd.Script,
			Empty:        sd.Empty,
			Locals:       call.Params,
		})
	}
}
