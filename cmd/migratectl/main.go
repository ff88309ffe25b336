// Package main is migratectl, an operator CLI over a vmigrate data directory.
//
// Import Path: vmigrate.io/vmigrate/cmd/migratectl
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
