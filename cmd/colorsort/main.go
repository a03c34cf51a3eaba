package main

import "github.com/mcoot/colorsort/internal/cli"

func main() {
	cli.Execute()
}
