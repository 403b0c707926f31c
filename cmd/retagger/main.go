package main

import (
	"fmt"
	"os"

	"retagger/cmd/retagger/commands"
)

const toolVersion = "1.0.0"

func main() {
	if err := commands.NewRootCommand(toolVersion).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
