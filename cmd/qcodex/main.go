package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bmcnabb/qcodex/internal/loader"
	"github.com/bmcnabb/qcodex/internal/qcode"
	"github.com/bmcnabb/qcodex/internal/registry/sqlite"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "qcodex",
		Short: "Qualitative coding markup extractor",
		Long: `qcodex parses documents annotated with (QCODE)...(/QCODE){#code}
coding markup into a flat table of (document, code, text) records.

It reads plain text, Markdown, HTML, CSV, PDF and DOCX files, reports
structural problems in the markup as warnings, and maintains a durable
registry of every code ever observed.`,
		Version: version,
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(codesCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliConfig is the optional YAML config file for the extract command.
type cliConfig struct {
	Registry string `yaml:"registry"`
	Out      string `yaml:"out"`
	Jobs     int    `yaml:"jobs"`
	Strict   bool   `yaml:"strict"`
}

func loadCLIConfig(path string) (cliConfig, error) {
	var cfg cliConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func extractCmd() *cobra.Command {
	var (
		configPath   string
		registryPath string
		outPath      string
		jobs         int
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file-or-dir>...",
		Short: "Extract coded spans from annotated documents",
		Long: `Extract parses every given file (or every supported file in a given
directory) and writes the resulting records as CSV.

Example:
  qcodex extract interviews/ --out records.csv --registry codes.db
  qcodex extract memo.txt --strict`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg, err := loadCLIConfig(configPath)
				if err != nil {
					return err
				}
				if registryPath == "" {
					registryPath = cfg.Registry
				}
				if outPath == "" {
					outPath = cfg.Out
				}
				if jobs == 0 {
					jobs = cfg.Jobs
				}
				strict = strict || cfg.Strict
			}
			if jobs <= 0 {
				jobs = 4
			}

			docs, err := loadPaths(args)
			if err != nil {
				return err
			}

			records, diags := parseDocs(docs, jobs)

			for _, d := range diags {
				fmt.Fprintf(os.Stderr, "warning: %s: %s: %s\n", d.DocID, d.Kind, d.Detail)
			}

			if registryPath != "" {
				if err := registerCodes(cmd.Context(), registryPath, records); err != nil {
					return err
				}
			}

			out := io.Writer(os.Stdout)
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}
			if err := writeCSV(out, records); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "%d documents, %d records, %d warnings\n", len(docs), len(records), len(diags))
			if strict && len(diags) > 0 {
				return fmt.Errorf("%d markup warnings (strict mode)", len(diags))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&registryPath, "registry", "", "SQLite code registry to update")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output CSV path (default stdout)")
	cmd.Flags().IntVar(&jobs, "jobs", 0, "documents parsed in parallel (default 4)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any markup warning is emitted")
	return cmd
}

func codesCmd() *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List the code registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if registryPath == "" {
				return fmt.Errorf("--registry is required")
			}
			store, err := sqlite.Open(cmd.Context(), registryPath)
			if err != nil {
				return fmt.Errorf("open registry: %w", err)
			}
			defer store.Close()

			codes, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range codes {
				fmt.Printf("%d\t%s\t%s\n", c.ID, c.Name, c.FirstSeen.Format("2006-01-02"))
			}
			fmt.Fprintf(os.Stderr, "%d codes\n", len(codes))
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "SQLite code registry path")
	return cmd
}

// loadPaths expands files and directories into an ordered document table.
func loadPaths(paths []string) ([]qcode.Document, error) {
	var docs []qcode.Document
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			dirDocs, err := loader.LoadDir(p)
			if err != nil {
				return nil, err
			}
			docs = append(docs, dirDocs...)
			continue
		}
		doc, err := loader.LoadFile(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// parseDocs parses documents with bounded parallelism. Output keeps table
// order: document independence makes the fan-out safe, and results are
// reassembled by index.
func parseDocs(docs []qcode.Document, jobs int) ([]qcode.Record, []qcode.Diagnostic) {
	recordsByDoc := make([][]qcode.Record, len(docs))
	diagsByDoc := make([][]qcode.Diagnostic, len(docs))

	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, doc qcode.Document) {
			defer wg.Done()
			defer func() { <-sem }()
			recordsByDoc[i], diagsByDoc[i] = qcode.Parse(doc)
		}(i, doc)
	}
	wg.Wait()

	var records []qcode.Record
	var diags []qcode.Diagnostic
	for i := range docs {
		records = append(records, recordsByDoc[i]...)
		diags = append(diags, diagsByDoc[i]...)
	}
	return records, diags
}

func registerCodes(ctx context.Context, path string, records []qcode.Record) error {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	defer store.Close()
	return store.Add(ctx, qcode.Codes(records))
}

func writeCSV(w io.Writer, records []qcode.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"doc_id", "code", "text"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.DocID, r.Code, r.Text}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
