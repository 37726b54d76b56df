package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/cellar/internal/app"
	"github.com/arthur-debert/cellar/internal/cli"
	"github.com/arthur-debert/cellar/internal/version"
)

func main() {
	rootCmd := cli.NewRootCmd(app.New())

	header := &doc.GenManHeader{
		Title:   "CELLAR",
		Section: "1",
		Source:  "cellar " + version.Version,
		Manual:  "cellar manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
