// ABOUTME: Entry point for the rerng-admin CLI
// ABOUTME: Terminal client for signing in to and browsing the admin API

package main

import (
	"fmt"
	"os"

	"github.com/rerng-addicted/rerng-admin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
