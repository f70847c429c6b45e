package main

import "github.com/gripp-game/gripp-api/internal/cli"

func main() {
	cli.Execute()
}
