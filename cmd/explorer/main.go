// Command explorer browses election results from a backend API or a JSON
// snapshot, and serves them over a REST API.
package main

import "go.vocdoni.io/explorer/cmd/explorer/commands"

func main() {
	commands.Execute()
}
