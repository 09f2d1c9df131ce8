/*
Package arbor is a server-side widget tree engine: it composes stateful
widgets into a tree, runs a small state machine per widget, and renders the
tree into typed page updates a client can apply.

It separates the widget model (Logic) from rendering (Templates) and
persistence (Stores). The engine manages state resolution, child composition
and event routing, while your application ("Host") manages transport and
templating. This Hexagonal Architecture allows arbor to be embedded in any
interface: HTTP server, MCP agent, or CLI.

# Concept

A widget is an instance of a Kind: a closed set of named states bound to
handler routines, a deterministic transition table, and an event-type to
state mapping. Widgets nest into a tree; rendering a widget composes its
visible children recursively and wraps the result into a PageUpdate that
either replaces the widget's node or only its inner content.

Client-triggered events carry an EventAddress. Dispatching one finds the
originating widget in the tree, maps the event type to a target state, and
jumps there, so a page stays interactive across requests while the tree
itself is frozen into an external store between them.

# Key Features

  - Deterministic state resolution: same widget, same table, same next state.
  - Hexagonal Architecture: core logic is decoupled from adapters (Storage, Templating, Transport).
  - Tree persistence: freeze/thaw snapshots with pluggable stores (memory, Redis).
  - Typed render results: fragment, script, raw, or empty, never stringly-merged.

# Usage

Register kinds, build a tree, render and dispatch:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/adapters/htmltpl"
		"github.com/aretw0/arbor/pkg/domain"
	)

	func main() {
		templater, err := htmltpl.New(map[string]string{
			"idle":   `<p>zzz</p>`,
			"eating": `<p>nom nom</p>`,
		})
		if err != nil {
			log.Fatal(err)
		}

		eng, err := arbor.New(templater)
		if err != nil {
			log.Fatal(err)
		}

		mouse := domain.NewKind("mouse").
			State("idle", func(ctx context.Context, call *domain.Call) (*domain.PageUpdate, error) {
				return call.Render(ctx, domain.RenderOptions{})
			}).
			State("eating", func(ctx context.Context, call *domain.Call) (*domain.PageUpdate, error) {
				return call.Render(ctx, domain.RenderOptions{})
			}).
			OnEvent("feed", "eating").
			Start("idle").
			MustBuild()
		if err := eng.Register(mouse); err != nil {
			log.Fatal(err)
		}

		root, err := domain.NewWidget("berry", mouse)
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()

		// Initial render: <div id="berry"><p>zzz</p></div>
		update, err := eng.Render(ctx, root, domain.RenderOptions{})
		if err != nil {
			log.Fatal(err)
		}
		log.Println(update.Content.Body)

		// A client event routes back to the widget.
		update, err = eng.DispatchEvent(ctx, root, &domain.EventAddress{
			Source: "berry",
			Type:   "feed",
		})
		if err != nil {
			log.Fatal(err)
		}
		log.Println(update.Content.Body) // <div id="berry"><p>nom nom</p></div>
	}
*/
package arbor
