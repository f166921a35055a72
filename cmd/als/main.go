// Package main wires the als CLI: compress, decompress, stats, and inspect
// subcommands built on cobra.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"als/internal/compress"
	"als/internal/config"
	"als/internal/document"
	"als/internal/ingest"
	"als/internal/logging"
	"als/internal/model"
	"als/internal/operator"
	"als/internal/parse"
	"als/internal/serialize"
)

type compressFlags struct {
	outFile    string
	pretty     bool
	configFile string
	verbose    bool
}

type decompressFlags struct {
	outFile string
	format  string
	verbose bool
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "als",
		Short: "Array List Serialization: columnar tabular compressor",
	}

	rootCmd.AddCommand(compressCmd())
	rootCmd.AddCommand(decompressCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(inspectCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func compressCmd() *cobra.Command {
	flags := &compressFlags{}
	cmd := &cobra.Command{
		Use:   "compress <input.csv|input.json>",
		Short: "Compress a CSV or JSON table into an ALS document",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCompress(args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.outFile, "output", "o", "", "Output file for the ALS document (default: stdout)")
	cmd.Flags().BoolVar(&flags.pretty, "pretty", false, "Pretty-print the ALS document with descriptive comments")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to a TOML configuration file")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug-level logging")
	return cmd
}

func runCompress(inputPath string, flags *compressFlags) error {
	log := logging.New(flags.verbose)
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flags.pretty {
		cfg.Pretty = true
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if cfg.MaxInputSize > 0 && int64(len(raw)) > cfg.MaxInputSize {
		return fmt.Errorf("input is %d byte(s), exceeds max_input_size %d", len(raw), cfg.MaxInputSize)
	}

	table, err := ingestTable(inputPath, raw)
	if err != nil {
		return fmt.Errorf("parsing input: %w", err)
	}
	log.Infow("ingested table", "columns", len(table.Columns), "rows", table.RowCount)

	c := compress.New(cfg)
	doc, rec, err := c.Compress(context.Background(), table, raw)
	if err != nil {
		return fmt.Errorf("compressing: %w", err)
	}

	text, err := serialize.Serialize(doc, cfg.Pretty)
	if err != nil {
		return fmt.Errorf("serializing ALS document: %w", err)
	}

	snap := rec.Snapshot()
	log.Infow("compressed", "ratio", snap.Ratio(), "ctx_fallback", snap.CtxFallback,
		"input_bytes", snap.InputBytes, "output_bytes", snap.OutputBytes)

	return writeOutput(text, flags.outFile)
}

func decompressCmd() *cobra.Command {
	flags := &decompressFlags{}
	cmd := &cobra.Command{
		Use:   "decompress <input.als>",
		Short: "Decompress an ALS document back into CSV or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runDecompress(args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.outFile, "output", "o", "", "Output file for the decoded table (default: stdout)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Output format: csv or json (default: inferred from --output, else csv)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug-level logging")
	return cmd
}

func runDecompress(inputPath string, flags *decompressFlags) error {
	log := logging.New(flags.verbose)
	defer func() { _ = log.Sync() }()

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	doc, err := parse.Parse(string(raw), parse.DefaultOptions())
	if err != nil {
		return fmt.Errorf("parsing ALS document: %w", err)
	}

	if doc.Format == document.FormatCtx {
		log.Infow("document is CTX verbatim passthrough; writing body unchanged")
		return writeOutput(doc.CtxBody, flags.outFile)
	}

	table, err := compress.Decompress(doc)
	if err != nil {
		return fmt.Errorf("decompressing: %w", err)
	}
	log.Infow("decompressed", "columns", len(table.Columns), "rows", table.RowCount)

	outFormat := resolveOutputFormat(flags.format, flags.outFile)
	var out []byte
	switch outFormat {
	case "json":
		out, err = ingest.WriteJSON(table)
	default:
		out, err = ingest.WriteCSV(table, ingest.DefaultCSVOptions())
	}
	if err != nil {
		return fmt.Errorf("encoding %s output: %w", outFormat, err)
	}
	return writeOutput(string(out), flags.outFile)
}

func statsCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "stats <input.als>",
		Short: "Print the statistics record for an ALS document",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runStats(args[0], verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")
	return cmd
}

func runStats(inputPath string, verbose bool) error {
	log := logging.New(verbose)
	defer func() { _ = log.Sync() }()

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	doc, err := parse.Parse(string(raw), parse.DefaultOptions())
	if err != nil {
		return fmt.Errorf("parsing ALS document: %w", err)
	}

	if doc.Format == document.FormatCtx {
		fmt.Printf("format: CTX (verbatim passthrough)\n")
		fmt.Printf("body_bytes: %d\n", len(doc.CtxBody))
		return nil
	}

	counts := map[operator.Kind]int{}
	entries := 0
	for _, stream := range doc.Streams {
		for _, op := range stream {
			counts[op.Kind]++
		}
	}
	for _, d := range doc.Dicts {
		entries += len(d.Entries)
	}

	fmt.Printf("format: ALS v%d.%d\n", doc.Version.Major, doc.Version.Minor)
	fmt.Printf("columns: %d\n", len(doc.Schema))
	fmt.Printf("dictionaries: %d (%d entries)\n", len(doc.Dicts), entries)
	fmt.Printf("serialized_bytes: %d\n", len(raw))
	for _, k := range []operator.Kind{operator.KindRaw, operator.KindRange, operator.KindMultiply, operator.KindToggle, operator.KindDictRef} {
		fmt.Printf("operators.%s: %d\n", k, counts[k])
	}
	log.Debugw("stats computed from document alone", "path", inputPath)
	return nil
}

func inspectCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "inspect <input.als>",
		Short: "Pretty-print an ALS document's structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runInspect(args[0], verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")
	return cmd
}

func runInspect(inputPath string, verbose bool) error {
	log := logging.New(verbose)
	defer func() { _ = log.Sync() }()

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	doc, err := parse.Parse(string(raw), parse.DefaultOptions())
	if err != nil {
		return fmt.Errorf("parsing ALS document: %w", err)
	}

	fmt.Printf("version: %d.%d\n", doc.Version.Major, doc.Version.Minor)
	if doc.Format == document.FormatCtx {
		fmt.Printf("format: CTX\n")
		fmt.Printf("body_bytes: %d\n", len(doc.CtxBody))
		return nil
	}
	fmt.Printf("format: ALS\n")

	for _, d := range doc.Dicts {
		fmt.Printf("dictionary %s: %d entries\n", d.ID, len(d.Entries))
	}

	for i, col := range doc.Schema {
		fmt.Printf("column %q (%s): %d operator(s)\n", col.Name, col.Type, len(doc.Streams[i]))
	}
	log.Debugw("inspected document", "path", inputPath)
	return nil
}

// ingestTable dispatches to the CSV or JSON reader based on the input
// file's extension.
func ingestTable(path string, raw []byte) (*model.TabularData, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ingest.ParseJSON(raw)
	case ".csv", "":
		return ingest.ParseCSV(raw, ingest.DefaultCSVOptions())
	default:
		return nil, fmt.Errorf("unrecognized input extension %q (want .csv or .json)", ext)
	}
}

// resolveOutputFormat picks csv or json: an explicit --format flag wins,
// otherwise the output path's extension, defaulting to csv.
func resolveOutputFormat(format, outPath string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".json":
		return "json"
	default:
		return "csv"
	}
}

func writeOutput(text, outFile string) error {
	if outFile == "" {
		_, err := io.WriteString(os.Stdout, text)
		return err
	}
	return os.WriteFile(outFile, []byte(text), 0o644)
}
