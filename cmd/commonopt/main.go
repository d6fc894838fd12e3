// Command commonopt is the CLI host for the macro preprocessor core: a
// thin wrapper that reads source and config files off disk (there is no
// stdin input) and calls
// pkg/api, the way the teacher's cmd/esbuild wraps its own pkg/api around
// a command-line surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/common-build/commonopt/internal/exitcode"
)

func main() {
	root := &cobra.Command{
		Use:   "commonopt",
		Short: "Build-time macro preprocessor for @common:if / @common:define-inline sources",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newWatchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcode.Get(err))
	}
}
