// Command sgfparse parses SGF files (or stdin) and prints the result.
//
//	sgfparse [--lax] [--format json|sgf|mainline] [file ...]
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"sgfkit/internal/bootstrap"
	"sgfkit/internal/domain/collection"
	"sgfkit/internal/domain/sgf"
	"sgfkit/internal/parser"
)

func main() {
	lax := flag.Bool("lax", false, "skip the leading (; check and parse best-effort")
	format := flag.StringP("format", "f", "json", "output format: json, sgf or mainline")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logger := bootstrap.NewLogger(*logLevel)
	defer logger.Sync()

	checker := parser.Strict
	if *lax {
		checker = parser.Lax
	}
	p := parser.New(logger, checker)

	if err := run(p, flag.Args(), *format, os.Stdin, os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "sgfparse:", err)
		os.Exit(1)
	}
}

func run(p *parser.Parser, paths []string, format string, stdin io.Reader, out io.Writer, log *zap.SugaredLogger) error {
	if len(paths) == 0 {
		tree, err := p.ParseReader(stdin)
		if err != nil {
			return err
		}
		return write(out, tree, format)
	}

	for _, path := range paths {
		tree, err := p.ParseFile(path)
		if err != nil {
			return err
		}
		log.Debugw("parsed", "path", path, "games", len(tree.Games()), "nodes", tree.NodeCount())
		if err := write(out, tree, format); err != nil {
			return err
		}
	}
	return nil
}

func write(out io.Writer, tree *sgf.Collection, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(collection.NewParseResponse(tree))
	case "sgf":
		_, err := fmt.Fprintln(out, tree.String())
		return err
	case "mainline":
		for i, game := range tree.Games() {
			fmt.Fprintf(out, "game %d\n", i+1)
			for n, node := range game.MainLine() {
				fmt.Fprintf(out, "%4d %s\n", n, describe(node))
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func describe(node *sgf.Node) string {
	parts := make([]string, 0, len(node.Keys()))
	for _, key := range node.Keys() {
		v, _ := node.Get(key)
		parts = append(parts, key+"["+strings.Join(v.Strings(), "][")+"]")
	}
	return strings.Join(parts, " ")
}
