// Package cli implements Bon's cobra command tree: `build`, `tokens`,
// and `list-stdlib`, plus the root's persistent flags and its
// `--version` flag. Grounded on
// go-dws's cmd/dwscript/cmd/root.go (cobra root command shape, the
// Version/GitCommit/BuildDate build-flag vars, SetVersionTemplate, and
// the exitWithError helper).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build metadata, overridden by -ldflags at release build time.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bon",
	Short: "Bon compiler front-end",
	Long: `bon tokenizes, parses, and type-checks programs in the Bon
language: a small ML-family language with Hindley-Milner type inference,
let-polymorphism, algebraic data types, pattern matching, and
typeclasses. Machine code generation is delegated to an external
back-end; this tool covers everything up through a fully type-checked,
monomorphized module.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("asm", false, "after type-checking, print the names in the code-gen boundary's ordered function list")
	rootCmd.PersistentFlags().IntP("opt-level", "O", 0, "optimization level hint passed through to the back-end (0-3)")
	rootCmd.PersistentFlags().Bool("repl", false, "print a notice that no interactive loop is provided here, instead of compiling a file")
	rootCmd.PersistentFlags().String("config", "bon.yaml", "path to an optional project config file")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(listStdlibCmd)
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
