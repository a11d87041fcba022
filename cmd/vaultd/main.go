package main

import "github.com/custodia/govaultd/internal/cli"

func main() {
	cli.Execute()
}
