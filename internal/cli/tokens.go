package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daniel-p-gonzalez/bon/internal/config"
	"github.com/daniel-p-gonzalez/bon/internal/imports"
	"github.com/daniel-p-gonzalez/bon/internal/lexer"
	"github.com/daniel-p-gonzalez/bon/internal/token"
)

// tokensCmd is the debugging entry point the reference compiler's
// bonDebugASTPass.cc offered for inspecting the AST; this repository's
// equivalent surface runs only the tokenizer (diagnosing indentation
// issues independent of the parser), since there is no AST dump in
// scope here.
var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print the token stream for a Bon source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

func runTokens(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError("reading %s: %s", args[0], err)
	}
	l := lexer.New(args[0], string(src))
	for {
		tok := l.NextToken()
		fmt.Fprintln(os.Stdout, tok.String())
		if tok.Type == token.EOF {
			break
		}
	}
	for _, lerr := range l.Errors() {
		fmt.Fprintln(os.Stderr, lerr.Error())
	}
	return nil
}

var listStdlibCmd = &cobra.Command{
	Use:   "list-stdlib",
	Short: "List every .bon module discoverable under BON_STDLIB_PATH",
	Args:  cobra.NoArgs,
	RunE:  runListStdlib,
}

func runListStdlib(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError("%s", err)
	}
	r := imports.New(cfg.StdlibPath)
	modules, err := r.ListStdlib()
	if err != nil {
		exitWithError("%s", err)
	}
	for _, m := range modules {
		fmt.Fprintln(os.Stdout, m)
	}
	return nil
}
