package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/snapshot"
)

type piiMiddleware struct {
	next     ports.TreeStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks widget option values
// whose keys match the patterns, across the whole tree.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.TreeStore) ports.TreeStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, treeID string, root *snapshot.Node) error {
	// 1. Clone so the in-memory tree used by the engine keeps its values.
	cloned := root.Clone()

	// 2. Mask PII in every node's options.
	maskNode(cloned, m.patterns)

	return m.next.Save(ctx, treeID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, treeID string) (*snapshot.Node, error) {
	return m.next.Load(ctx, treeID)
}

func (m *piiMiddleware) Delete(ctx context.Context, treeID string) error {
	return m.next.Delete(ctx, treeID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func maskNode(n *snapshot.Node, patterns []*regexp.Regexp) {
	// Node.Clone copies the options map but not nested maps; deep-copy
	// before masking so the engine's tree is untouched.
	n.Options = deepCopyMap(n.Options)
	maskMap(n.Options, patterns)
	for _, child := range n.Children {
		maskNode(child, patterns)
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		// Check key against patterns
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}

		// Recurse if map
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
