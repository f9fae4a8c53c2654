package cli

import (
	"github.com/spf13/cobra"
)

// RootCommand is the root of the microdbal command tree. Subcommands
// register themselves onto it from their package init.
var RootCommand = &cobra.Command{
	Use:   "microdbal",
	Short: "Tools for the microdbal database wrapper",
}
