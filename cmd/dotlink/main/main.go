package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/dotlink/cmd/dotlink"
	"github.com/arthur-debert/dotlink/pkg/ui"
)

func main() {
	rootCmd := dotlink.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Print the error in red
		errorStyle := ui.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
