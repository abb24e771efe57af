// Package main provides the categories CLI.
package main

import "github.com/mesh-intelligence/categories/internal/cli"

func main() {
	cli.Execute()
}
