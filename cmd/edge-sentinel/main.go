// Command edge-sentinel finds floors of a building model whose open edges
// are not guarded by a wall, railing or curtain panel, highlights them and
// records each scan.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
