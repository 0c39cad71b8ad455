// Command salesreport runs one analysis pass over sales exports and prints
// the result as JSON.
//
//	salesreport [-dir exports/] -in a.csv,b.xlsx [-department Herbs] [-month 2025-05] [-csv out.csv] [-view products] [-xlsx out.xlsx] [-json out.json]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"salespulse/internal/analytics"
	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/exporter"
	"salespulse/internal/files"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts"
	"salespulse/pkg/contracts/domain"
)

// options are the parsed command line flags.
type options struct {
	inputs     []string
	dir        string
	department string
	month      string
	csvPath    string
	view       string
	xlsxPath   string
	jsonPath   string
	version    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "salesreport: %v\n", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var (
		opts options
		in   string
	)

	fs := flag.NewFlagSet("salesreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&in, "in", "", "comma-separated list of .csv, .tsv or .xlsx sales exports")
	fs.StringVar(&opts.dir, "dir", "", "also read every sales export found directly in this directory")
	fs.StringVar(&opts.department, "department", "", "only analyze this department (All for every department)")
	fs.StringVar(&opts.month, "month", "", "only analyze this month, YYYY-MM")
	fs.StringVar(&opts.csvPath, "csv", "", "also write one view as CSV to this path")
	fs.StringVar(&opts.view, "view", string(exporter.ViewRecords), "view written by -csv: records, departments, customers, products, reps or alerts")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "also write the full workbook to this path")
	fs.StringVar(&opts.jsonPath, "json", "", "write the JSON result to this path instead of stdout")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	for _, p := range strings.Split(in, ",") {
		if p = strings.TrimSpace(p); p != "" {
			opts.inputs = append(opts.inputs, p)
		}
	}
	if !opts.version && len(opts.inputs) == 0 && opts.dir == "" {
		return options{}, errors.New("at least one input is required (-in or -dir)")
	}
	return opts, nil
}

func (o options) filter() (domain.Filter, error) {
	f := domain.Filter{Department: o.department}
	if o.month != "" {
		ym, err := domain.ParseYearMonth(o.month)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("invalid -month: %w", err)
		}
		f.Month = &ym
	}
	return f, nil
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	// Logs go to stderr; stdout carries the result.
	cfg.Logging.Output = "console"
	return cfg
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}

	filter, err := opts.filter()
	if err != nil {
		return err
	}
	view, err := exporter.ParseView(opts.view)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	logger, closer, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closer.Close()

	logger.InfoContext(ctx, "Starting sales report",
		slog.Any("inputs", opts.inputs),
		slog.String("dir", opts.dir),
		slog.String("department", filter.Department),
		slog.String("month", opts.month))

	sources := make([]dataprocessing.Source, 0, len(opts.inputs))
	for _, p := range opts.inputs {
		sources = append(sources, dataprocessing.FileSource(p))
	}
	if opts.dir != "" {
		found, err := files.NewDiscovery("").FindSources(opts.dir)
		if err != nil {
			return err
		}
		if len(found) == 0 && len(sources) == 0 {
			return fmt.Errorf("no sales exports found in %s", opts.dir)
		}
		sources = append(sources, found...)
	}

	parser := dataprocessing.NewParser(logger, dataprocessing.ParserOptions{
		Delimiter: cfg.Analysis.DelimiterRune(),
	})
	ingestor := dataprocessing.NewIngestor(logger, parser, cfg.Analysis.MaxConcurrentSources)

	records, err := ingestor.Ingest(ctx, sources)
	if err != nil {
		return fmt.Errorf("ingest sources: %w", err)
	}

	passOpts := analytics.OptionsFrom(cfg.Analysis)
	passOpts.Filter = filter
	result := analytics.Analyze(records, passOpts)

	logger.InfoContext(ctx, "Pass complete",
		slog.String("pass_id", result.ID),
		slog.Int("records", result.Summary.RecordCount),
		slog.Int("alerts", len(result.Alerts)),
		slog.Int("insights", len(result.Insights)))

	// Output paths are relative to the working directory, not the reports
	// directory the server uses.
	if opts.csvPath != "" {
		path, err := exporter.NewCSVWriter(nil, logger).WriteFile(ctx, absPath(opts.csvPath), result, view)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "CSV written", slog.String("path", path))
	}
	if opts.xlsxPath != "" {
		path, err := exporter.NewWorkbookWriter(nil, logger).WriteFile(ctx, absPath(opts.xlsxPath), result)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "Workbook written", slog.String("path", path))
	}

	if opts.jsonPath != "" {
		return exporter.WriteJSONFile(ctx, logger, opts.jsonPath, result)
	}
	return exporter.EncodeJSON(stdout, result)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
