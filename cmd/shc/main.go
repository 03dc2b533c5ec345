// Package main is the entry point for the shc CLI client.
package main

import (
	"github.com/donaldgifford/secondhand-client/cmd/shc/cmd"
)

func main() {
	cmd.Execute()
}
