// Command rankexpr parses ranking expressions from files or stdin, one per
// line, and prints their parsed structure (or a diagnostic) for each.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tailscale/hujson"
	"golang.org/x/term"
	"zombiezen.com/go/bass/sigterm"

	"github.com/rankexpr/rankexpr/ast"
	"github.com/rankexpr/rankexpr/parser"
	"github.com/rankexpr/rankexpr/rankexpr"
)

func main() {
	rootCommand := &cobra.Command{
		Use:   "rankexpr [options] [FILE [...]]",
		Short: "Parse ranking expressions and print their structure",

		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	outputPath := rootCommand.Flags().StringP("output", "o", "", "file to write output to (defaults to stdout)")
	paramsPath := rootCommand.Flags().StringP("params", "p", "", "HuJSON file listing explicit parameter names (default: discover parameters implicitly)")
	dotted := rootCommand.Flags().Bool("dotted", false, "recognize dotted qualified names (a.b.c) as single symbols via DottedExtractor")
	rootCommand.RunE = func(cmd *cobra.Command, args []string) (err error) {
		input, err := makeInput(args)
		if err != nil {
			return err
		}
		output, err := makeOutput(*outputPath)
		if err != nil {
			input.Close()
			return err
		}

		params, err := loadParams(*paramsPath)
		if err != nil {
			input.Close()
			output.Close()
			return err
		}

		var opts []parser.Option
		if *dotted {
			opts = append(opts, parser.WithSymbolExtractor(rankexpr.DottedExtractor{}))
		}

		err = run(cmd.Context(), output, input, params, opts, func(err error) {
			fmt.Fprintf(os.Stderr, "rankexpr: %v\n", err)
		})
		if err2 := output.Close(); err == nil {
			err = err2
		}
		input.Close()
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), sigterm.Signals()...)
	err := rootCommand.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rankexpr: %v\n", err)
		os.Exit(1)
	}
}

// loadParams reads an explicit parameter name list from a HuJSON file
// (comments and trailing commas tolerated), e.g. ["a", "b", "c"]. An
// empty path means "use implicit parameter discovery".
func loadParams(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var names []string
	if err := json.Unmarshal(std, &names); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return names, nil
}

func run(ctx context.Context, output io.Writer, input io.Reader, params []string, opts []parser.Option, logError func(error)) error {
	scanner := bufio.NewScanner(input)

	if isTerminal(input) {
		fmt.Fprintln(os.Stderr, "Reading from terminal (one expression per line)...")
	}

	var finalError error
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		fn, err := parseLine(params, line, opts)
		if err != nil {
			logError(err)
			finalError = errors.New("one or more expressions could not be parsed")
			continue
		}
		if fn.HasError() {
			logError(errors.New(fn.ErrorMessage()))
			finalError = errors.New("one or more expressions could not be parsed")
			continue
		}
		fmt.Fprint(output, ast.Sprint(fn.Root))
		fmt.Fprintln(output)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return finalError
}

func parseLine(params []string, line string, opts []parser.Option) (*ast.Function, error) {
	if params == nil {
		return rankexpr.Parse(line, opts...), nil
	}
	return rankexpr.ParseParams(params, line, opts...)
}

func makeInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || len(args) == 1 && args[0] == "-" {
		return nopReadCloser{os.Stdin}, nil
	}
	if len(args) == 1 {
		return os.Open(args[0])
	}

	readers := make([]io.ReadCloser, 0, len(args))
	for _, path := range args {
		if path == "-" {
			readers = append(readers, nopReadCloser{os.Stdin})
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			for _, c := range readers {
				c.Close()
			}
			return nil, err
		}
		readers = append(readers, f)
	}
	return &multiReadCloser{readers}, nil
}

func makeOutput(arg string) (io.WriteCloser, error) {
	if arg == "" || arg == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(arg)
}

func isTerminal(r io.Reader) bool {
	for {
		switch rt := r.(type) {
		case *os.File:
			return term.IsTerminal(int(rt.Fd()))
		case nopReadCloser:
			r = rt.Reader
		default:
			return false
		}
	}
}

// A multiReadCloser is a logical concatenation of its input readers, much
// like [io.MultiReader]. However, it also implements [io.Closer] and
// closes its inputs as they are finished reading.
type multiReadCloser struct {
	readers []io.ReadCloser
}

func (mrc *multiReadCloser) Read(p []byte) (n int, err error) {
	for len(mrc.readers) > 0 {
		n, err = mrc.readers[0].Read(p)
		if err == io.EOF {
			mrc.readers[0].Close()
			mrc.readers[0] = nil
			mrc.readers = mrc.readers[1:]
		}
		if n > 0 || err != io.EOF {
			if err == io.EOF && len(mrc.readers) > 0 {
				err = nil
			}
			return
		}
	}
	return 0, io.EOF
}

func (mrc *multiReadCloser) Close() error {
	var firstError error
	for _, rc := range mrc.readers {
		if err := rc.Close(); firstError == nil {
			firstError = err
		}
	}
	mrc.readers = nil
	return firstError
}

type nopReadCloser struct {
	io.Reader
}

func (nopReadCloser) Close() error { return nil }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
