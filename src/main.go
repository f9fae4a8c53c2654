package main

import (
	"github.com/a-le/microdbal/src/cli"
	_ "github.com/a-le/microdbal/src/testrunner"
)

func main() {
	cli.RootCommand.Execute()
}
