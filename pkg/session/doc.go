// Package session orchestrates widget tree access across requests: it thaws
// a tree from the store at the start of a request, serializes access per
// tree id, and freezes the tree back at the end.
package session
