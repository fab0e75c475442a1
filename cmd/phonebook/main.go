// Command phonebook manages a persistent phone book from the command line
// and serves it over HTTP.
package main

import "github.com/mesh-intelligence/phonebook/internal/cli"

func main() {
	cli.Execute()
}
