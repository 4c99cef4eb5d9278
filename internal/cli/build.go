package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daniel-p-gonzalez/bon/internal/analyzer"
	"github.com/daniel-p-gonzalez/bon/internal/backend"
	"github.com/daniel-p-gonzalez/bon/internal/config"
	"github.com/daniel-p-gonzalez/bon/internal/diagnostics"
	"github.com/daniel-p-gonzalez/bon/internal/module"
	"github.com/daniel-p-gonzalez/bon/internal/parser"
	"github.com/daniel-p-gonzalez/bon/internal/scope"
	"github.com/daniel-p-gonzalez/bon/internal/token"
)

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Tokenize, parse, and type-check a Bon source file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	repl, _ := cmd.Flags().GetBool("repl")
	if len(args) == 0 && !repl {
		return cmd.Usage()
	}
	if repl {
		fmt.Fprintln(os.Stdout, "bon repl: interactive evaluation is provided by an external runtime; this build only type-checks source files.")
		return nil
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError("%s", err)
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError("reading %s: %s", args[0], err)
	}

	logger := diagnostics.New(os.Stderr, diagnostics.WithCeilings(cfg.MaxErrors, cfg.MaxWarnings))
	logger.SetCurrentFile(args[0])

	state := module.New(args[0])
	state.RegisterBuiltins()

	p := parser.New(args[0], string(src), state)
	mod := p.ParseModule()
	for _, perr := range p.Errors() {
		pos := token.Position{File: args[0]}
		if se, ok := perr.(*diagnostics.SyntaxError); ok {
			pos = se.Pos
		}
		_ = logger.Error("SyntaxError", perr.Error(), pos, "")
	}
	if logger.HadErrors() {
		exitWithError("compilation failed with %d syntax error(s)", len(p.Errors()))
	}

	scope.AnalyzeModule(mod)

	an := analyzer.New(state, logger)
	if err := an.AnalyzeModule(mod); err != nil {
		exitWithError("type analysis failed: %s", err)
	}

	state.OrderFunctions(nil)

	asmFlag, _ := cmd.Flags().GetBool("asm")
	if asmFlag {
		b := backend.NewBoundary(state)
		for _, fn := range b.OrderedFunctions() {
			fmt.Fprintln(os.Stdout, fn.Proto.Name)
		}
	}

	logger.Finalize()
	return nil
}
