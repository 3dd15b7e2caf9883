package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
	"go.uber.org/zap"

	"github.com/lgrafx/dispatchgen/generator"
	"github.com/lgrafx/dispatchgen/parser"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		printer = env.Str("DISPATCHGEN_PRINTER", "glapi")
		mode    = env.Str("DISPATCHGEN_MODE", "lib")
		verbose = env.Bool("DISPATCHGEN_VERBOSE")
	)

	cmd := &cobra.Command{
		Use:   "dispatchgen [flags] <spec-file>",
		Short: "Generate C dispatch stubs from an entry-point specification",
		Long: `dispatchgen reads a CSV-like entry-point specification and writes the C
source fragments backing a dynamic dispatch table: public trampolines,
table initializers, string pools, no-op stubs and platform assembly.

Use "-" as the file argument to read the specification from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := generator.Lookup(printer)
			if !ok {
				return fmt.Errorf("unknown printer %q (have %s)",
					printer, strings.Join(generator.Flavors(), ", "))
			}

			logger := zap.NewNop()
			if verbose {
				var err error
				if logger, err = zap.NewDevelopment(); err != nil {
					return err
				}
			}

			var in io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			entries, err := parser.Parse(in)
			if err != nil {
				return err
			}

			numStatic := 0
			for _, ent := range entries {
				if ent.Alias == "" {
					numStatic++
				}
			}
			logger.Info("specification loaded",
				zap.Int("entries", len(entries)),
				zap.Int("slots", numStatic),
				zap.String("printer", cfg.Name),
				zap.String("mode", mode))

			p := generator.New(entries, cfg)
			switch mode {
			case "lib":
				if !cfg.HasLibMode {
					return fmt.Errorf("printer %s does not support lib mode", cfg.Name)
				}
				return p.WriteLib(cmd.OutOrStdout())
			case "app":
				if !cfg.HasAppMode {
					return fmt.Errorf("printer %s does not support app mode", cfg.Name)
				}
				return p.WriteApp(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unknown mode %q (have lib, app)", mode)
			}
		},
	}

	cmd.Flags().StringVarP(&printer, "printer", "p", printer,
		"printer to use: "+strings.Join(generator.Flavors(), ", "))
	cmd.Flags().StringVarP(&mode, "mode", "m", mode, "target user: lib, app")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", verbose, "log diagnostics to stderr")

	return cmd
}
