// Package graph describes a built keyboard as an immutable DAG: one node
// per part of the assembly tree, with connector nodes carrying references
// to the keys they bridge. The graph is derived from a body.Part after a
// build and is used for validation and for DOT, SVG and JSON export.
package graph
