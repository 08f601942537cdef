// Package main is the entry point for the rulemig CLI.
package main

import "gooze.dev/pkg/rulemig/cmd"

func main() {
	cmd.Execute()
}
