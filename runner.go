package arbor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Runner drives a widget tree interactively over provided IO: it renders the
// tree, then reads event lines and dispatches them until EOF or exit. This
// allows for easy testing and integration with different frontends (CLI,
// TUI, etc).
//
// Event lines have the form:
//
//	<source> <type> [key=value ...]
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms rendered markup before
// outputting it. This allows for TUI rendering without coupling the core
// package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a new Runner. The caller sets Input/Output (use
// os.Stdin/os.Stdout for a CLI).
func NewRunner() *Runner {
	return &Runner{}
}

// Run renders the tree and processes event lines until termination.
func (r *Runner) Run(ctx context.Context, engine *Engine, root *domain.Widget) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)

	if !r.Headless {
		fmt.Fprintln(r.Output, "--- arbor console ---")
		fmt.Fprintln(r.Output, "events: <source> <type> [key=value ...]   exit: quit")
	}

	update, err := engine.Render(ctx, root, domain.RenderOptions{})
	if err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	r.print(update)

	for {
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		text, err := lineReader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Graceful exit on EOF
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		line := strings.TrimSpace(text)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Fprintln(r.Output, "Bye!")
			return nil
		}

		addr, err := parseEventLine(line)
		if err != nil {
			fmt.Fprintf(r.Output, "error: %v\n", err)
			continue
		}

		update, err := engine.DispatchEvent(ctx, root, addr)
		if err != nil {
			fmt.Fprintf(r.Output, "error: %v\n", err)
			continue
		}
		r.print(update)
	}
}

func (r *Runner) print(update *domain.PageUpdate) {
	if update == nil || update.Content.Kind == domain.ResultEmpty {
		return
	}
	output := update.Content.Body
	if r.Renderer != nil {
		if rendered, err := r.Renderer(output); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}

func parseEventLine(line string) (*domain.EventAddress, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("expected: <source> <type> [key=value ...]")
	}
	addr := &domain.EventAddress{
		Source: fields[0],
		Type:   fields[1],
	}
	for _, kv := range fields[2:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("malformed parameter %q", kv)
		}
		if addr.Params == nil {
			addr.Params = make(map[string]any)
		}
		addr.Params[key] = value
	}
	return addr, nil
}
