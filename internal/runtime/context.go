package runtime

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

type ctxKey int

const (
	paramsKey ctxKey = iota
	depthKey
)

// WithParams attaches transport-supplied parameters to the context so the
// dispatched handler receives them in its Call.
func WithParams(ctx context.Context, params map[string]any) context.Context {
	if params == nil {
		return ctx
	}
	return context.WithValue(ctx, paramsKey, params)
}

func paramsFrom(ctx context.Context) map[string]any {
	if p, ok := ctx.Value(paramsKey).(map[string]any); ok {
		return p
	}
	return nil
}

// descend tracks state re-invocation depth within one render pass. Handlers
// may legally invoke further states before rendering; the bound keeps a
// misconfigured handler chain from recursing forever.
func descend(ctx context.Context, max int) (context.Context, int, error) {
	depth, _ := ctx.Value(depthKey).(int)
	depth++
	if depth > max {
		return ctx, depth, domain.ErrJumpDepthExceeded
	}
	return context.WithValue(ctx, depthKey, depth), depth, nil
}
