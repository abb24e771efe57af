// Package types defines the Cupboard and Table interfaces, the content
// entity types (Content, Node, Link, Category), and the standard error types
// for the categories content store.
package types
