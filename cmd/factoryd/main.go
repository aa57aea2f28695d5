package main

import "github.com/andrescamacho/factory-economy/internal/adapters/cli"

func main() {
	cli.Execute()
}
