// Command ocular runs the Ocular mount tracking bot.
package main

import "github.com/mesh-intelligence/ocular/internal/cli"

func main() {
	cli.Execute()
}
