package main

import (
	"rom-checker/cmd"

	_ "go.uber.org/automaxprocs/maxprocs"
)

func main() {
	cmd.Execute() // the logger is initialized once the configuration is loaded
}
