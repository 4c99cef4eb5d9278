// Command bon is the Bon compiler front-end's CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/daniel-p-gonzalez/bon/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
