// Package main is the entry point for the ebsconn CLI tool.
package main

import (
	"os"

	"github.com/erpsync/ebsconn/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
