package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/cellar/internal/app"
	"github.com/arthur-debert/cellar/internal/cli"
	"github.com/arthur-debert/cellar/internal/commands/completion"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <bash|zsh|fish|powershell>\n", os.Args[0])
		os.Exit(1)
	}

	shell := os.Args[1]
	rootCmd := cli.NewRootCmd(app.New())
	if err := completion.Generate(rootCmd, shell, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating %s completion: %v\n", shell, err)
		os.Exit(1)
	}
}
