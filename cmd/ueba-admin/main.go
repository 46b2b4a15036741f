package main

import (
	"github.com/turtacn/ueba/cmd/cli"
)

func main() {
	cli.Execute()
}
