/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically
constructing widget trees.

It allows developers to compose trees using a type-safe, fluent builder
pattern instead of external YAML files. This is particularly useful for
dynamic tree generation, unit testing, and leveraging IDE
autocompletion/type-checking.

Example usage:

	tree := dsl.NewTree(reg)

	tree.Root("cage", "cage").
		Option("title", "Mouse Cage").
		Child("mouse", "rodent").Done().
		Child("food", "dish").Hidden().Done()

	root, err := tree.Build()
	// ... hand root to the engine, or wrap tree.Seed() for the session manager
*/
package dsl
