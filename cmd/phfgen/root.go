package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamirms/phf"
	"github.com/tamirms/phf/codegen"
)

const runtimeImport = "github.com/tamirms/phf"

type options struct {
	grammar     string
	set         bool
	bytes       bool
	binary      bool
	output      string
	path        string
	valueType   string
	pkg         string
	varName     string
	seed        uint64
	lambda      int
	loadFactor  float64
	maxAttempts int
	workers     int
	hash        string
}

// tableBuilder is the part of codegen.Map and codegen.Set the command uses.
type tableBuilder interface {
	Build(ctx context.Context, w io.Writer) error
	WriteFile(ctx context.Context, path string) error
}

func newRootCommand(env envVars, log *zap.Logger) *cobra.Command {
	opts := options{
		grammar:     env.Grammar,
		hash:        env.Hash,
		lambda:      env.Lambda,
		loadFactor:  env.LoadFactor,
		maxAttempts: env.MaxAttempts,
		workers:     env.Workers,
		valueType:   "string",
	}

	cmd := &cobra.Command{
		Use:   "phfgen [input]",
		Short: "Generates a perfect hash table from a list of keys",
		Long: "phfgen reads one entry per line (key, or key<TAB>value for maps) from\n" +
			"the input file or stdin and writes a perfect hash table as Go or Rust\n" +
			"source, or as a binary table file.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &opts, log)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.grammar, "grammar", "g", opts.grammar, "output grammar: go or rust")
	f.BoolVar(&opts.set, "set", false, "build a set; input lines are keys only")
	f.BoolVar(&opts.bytes, "bytes", false, "emit keys as byte strings")
	f.BoolVar(&opts.binary, "binary", false, "write a binary table file (requires --output)")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	f.StringVar(&opts.path, "path", "", "runtime type path (default phf for go, ::phf for rust)")
	f.StringVar(&opts.valueType, "value-type", opts.valueType, "value type of the generated map")
	f.StringVar(&opts.pkg, "package", "", "emit a complete Go file in this package")
	f.StringVar(&opts.varName, "var", "", "name of the generated variable")
	f.Uint64Var(&opts.seed, "seed", 0, "seed for reproducible output (default random)")
	f.IntVar(&opts.lambda, "lambda", opts.lambda, "average bucket size")
	f.Float64Var(&opts.loadFactor, "load-factor", opts.loadFactor, "keys / slots, in (0, 1]")
	f.IntVar(&opts.maxAttempts, "max-attempts", opts.maxAttempts, "construction attempt limit (0 = unlimited)")
	f.IntVar(&opts.workers, "workers", opts.workers, "concurrent construction attempts")
	f.StringVar(&opts.hash, "hash", opts.hash,
		"hash family: siphash, xxh3, murmur3 or siphash64 (default siphash for go, siphash64 for rust)")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *options, log *zap.Logger) error {
	ctx := cmd.Context()
	start := time.Now()

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	entries, err := readEntries(in, opts.set)
	if err != nil {
		return err
	}

	grammar, err := codegen.GrammarByName(opts.grammar)
	if err != nil {
		return err
	}
	buildOpts := []codegen.Option{
		codegen.WithGrammar(grammar),
		codegen.WithLambda(opts.lambda),
		codegen.WithLoadFactor(opts.loadFactor),
		codegen.WithMaxAttempts(opts.maxAttempts),
		codegen.WithWorkers(opts.workers),
		codegen.WithValueType(opts.valueType),
		codegen.WithLogger(log),
	}
	if opts.hash != "" {
		hash, ok := phf.ParseHashFunc(opts.hash)
		if !ok {
			return fmt.Errorf("unknown hash family %q", opts.hash)
		}
		buildOpts = append(buildOpts, codegen.WithHash(hash))
	}
	if opts.path != "" {
		buildOpts = append(buildOpts, codegen.WithPath(opts.path))
	}
	if cmd.Flags().Changed("seed") {
		buildOpts = append(buildOpts, codegen.WithSeed(opts.seed))
	}
	b := newBuilder(entries, opts, buildOpts)

	if opts.binary {
		if opts.output == "" {
			return errors.New("--binary requires --output")
		}
		if err := b.WriteFile(ctx, opts.output); err != nil {
			return err
		}
	} else {
		var buf bytes.Buffer
		if err := writeSource(ctx, &buf, b, grammar, opts); err != nil {
			return err
		}
		if err := writeOutput(cmd, opts.output, buf.Bytes()); err != nil {
			return err
		}
	}

	log.Info("table generated",
		zap.Int("keys", len(entries)),
		zap.String("grammar", grammar.Name()),
		zap.Bool("set", opts.set),
		zap.Bool("binary", opts.binary),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func newBuilder(entries []entry, opts *options, buildOpts []codegen.Option) tableBuilder {
	switch {
	case opts.set && opts.bytes:
		s := codegen.NewSet[[]byte](buildOpts...)
		for _, e := range entries {
			s.Entry([]byte(e.key))
		}
		return s
	case opts.set:
		s := codegen.NewSet[string](buildOpts...)
		for _, e := range entries {
			s.Entry(e.key)
		}
		return s
	case opts.bytes:
		m := codegen.NewMap[[]byte](buildOpts...)
		for _, e := range entries {
			m.Entry([]byte(e.key), e.value)
		}
		return m
	default:
		m := codegen.NewMap[string](buildOpts...)
		for _, e := range entries {
			m.Entry(e.key, e.value)
		}
		return m
	}
}

// writeSource writes the table expression, wrapped in a declaration when
// --var is set and in a complete Go file when --package is set.
func writeSource(ctx context.Context, w *bytes.Buffer, b tableBuilder, g codegen.Grammar, opts *options) error {
	isGo := g == codegen.Go
	varName := opts.varName
	if opts.pkg != "" {
		if !isGo {
			return errors.New("--package requires the go grammar")
		}
		fmt.Fprintf(w, "// Code generated by phfgen. DO NOT EDIT.\n\npackage %s\n\n", opts.pkg)
		if opts.path == "" || opts.path == "phf" {
			fmt.Fprintf(w, "import %q\n\n", runtimeImport)
		}
		if varName == "" {
			varName = "table"
		}
	}

	if varName != "" {
		if isGo {
			fmt.Fprintf(w, "var %s = ", varName)
		} else {
			fmt.Fprintf(w, "pub static %s: %s = ", varName, rustType(opts))
		}
	}
	if err := b.Build(ctx, w); err != nil {
		return err
	}
	if varName != "" && !isGo {
		w.WriteByte(';')
	}
	w.WriteByte('\n')
	return nil
}

// rustType returns the static's type for the phf crate.
func rustType(opts *options) string {
	path := opts.path
	if path == "" {
		path = codegen.Rust.DefaultPath()
	}
	key := "&'static str"
	if opts.bytes {
		key = "&'static [u8]"
	}
	if opts.set {
		return fmt.Sprintf("%s::Set<%s>", path, key)
	}
	return fmt.Sprintf("%s::Map<%s, %s>", path, key, opts.valueType)
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
