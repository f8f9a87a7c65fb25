package main

import (
	"github.com/sqlmidas/midas/internal/cli"
)

func main() {
	cli.Execute()
}
