// Package main is the vaultflow server. It hosts user flows over HTTP and
// manages the schema of the optional PostgreSQL saved-state store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
