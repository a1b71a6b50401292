// Package main provides the assetclean CLI, which prunes unused CSS and
// quarantines unreferenced assets of a static site.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
