// Command basket-report mines a transaction log once and prints the top frequent
// itemsets and association rules, optionally exporting them as CSV or XLSX.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"basketlens/internal/basket"
	"basketlens/internal/config"
	"basketlens/internal/exporter"
	"basketlens/internal/infrastructure"
	"basketlens/internal/validation"
)

type options struct {
	data       string
	support    float64
	confidence float64
	top        int
	sort       string
	items      string
	maxLength  int
	out        string
	format     string
}

func main() {
	defaults := config.Default()

	var opts options
	flag.StringVar(&opts.data, "data", defaults.Dataset.Path, "transaction log (.csv or .xlsx)")
	flag.Float64Var(&opts.support, "support", defaults.Mining.DefaultMinSupport, "minimum support in (0, 1]")
	flag.Float64Var(&opts.confidence, "confidence", defaults.Mining.DefaultMinConfidence, "minimum confidence in (0, 1]")
	flag.IntVar(&opts.top, "top", defaults.Mining.TopItemsets, "number of itemsets and rules to print")
	flag.StringVar(&opts.sort, "sort", string(basket.ByLift), "rule ranking: lift, confidence or support")
	flag.StringVar(&opts.items, "items", "", "comma separated items to restrict the analysis to")
	flag.IntVar(&opts.maxLength, "max-length", defaults.Mining.MaxItemsetLength, "largest itemset size, 0 for no limit")
	flag.StringVar(&opts.out, "out", "", "directory to write the full results to")
	flag.StringVar(&opts.format, "format", "xlsx", "export format: csv or xlsx")
	level := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logger := infrastructure.NewLogger(*level, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Error("basket report failed", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func splitItems(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func run(ctx context.Context, opts options, stdout io.Writer, logger *slog.Logger) error {
	metric, err := basket.ParseRuleMetric(opts.sort)
	if err != nil {
		return err
	}
	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateDataset(opts.data); err != nil {
		return err
	}
	if opts.out != "" {
		if err := validator.ValidateOutputDirectory(opts.out); err != nil {
			return err
		}
	}

	start := time.Now()
	records, err := basket.LoadFile(ctx, opts.data, basket.DefaultLoadOptions())
	if err != nil {
		return err
	}

	transactions, err := basket.Group(records, basket.NewItemFilter(splitItems(opts.items)))
	if err != nil {
		return err
	}

	miner := basket.NewMiner(logger)
	miner.SetMaxLength(opts.maxLength)
	sets, err := miner.Mine(ctx, basket.Encode(transactions), opts.support)
	if err != nil {
		return err
	}

	rules, err := basket.GenerateRules(sets, opts.confidence)
	if err != nil {
		return err
	}

	logger.Info("analysis complete",
		slog.Int("records", len(records)),
		slog.Int("transactions", len(transactions)),
		slog.Int("itemsets", sets.Len()),
		slog.Int("rules", len(rules)),
		slog.Duration("duration", time.Since(start)),
	)

	overview := basket.Summarize(records, transactions)
	printReport(stdout, overview, sets, rules, metric, opts)

	if opts.out == "" {
		return nil
	}

	itemsetTable := exporter.ItemsetTable(basket.TopItemsets(sets.All(), 0))
	ruleTable := exporter.RuleTable(basket.TopRules(rules, metric, 0))
	overviewTable := exporter.OverviewTable(overview)

	var written []string
	if format == exporter.FormatXLSX {
		path := filepath.Join(opts.out, "basket-report"+format.Extension())
		if err := exporter.WriteFile(path, overviewTable, itemsetTable, ruleTable); err != nil {
			return err
		}
		written = append(written, path)
	} else {
		for _, table := range []exporter.Table{overviewTable, itemsetTable, ruleTable} {
			path := filepath.Join(opts.out, table.Name+format.Extension())
			if err := exporter.WriteFile(path, table); err != nil {
				return err
			}
			written = append(written, path)
		}
	}

	for _, path := range written {
		fmt.Fprintf(stdout, "wrote %s\n", path)
	}
	return nil
}

func printReport(w io.Writer, ov basket.Overview, sets *basket.Itemsets, rules []basket.Rule, metric basket.RuleMetric, opts options) {
	fmt.Fprintf(w, "%d records, %d transactions, %d customers, %d items\n",
		ov.Records, ov.Transactions, ov.Customers, ov.Items)
	fmt.Fprintf(w, "min support %g, min confidence %g\n\n", opts.support, opts.confidence)

	if sets.IsEmpty() {
		fmt.Fprintf(w, "No frequent itemsets at support %g. Try lowering the support threshold.\n", opts.support)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ITEMSET\tCOUNT\tSUPPORT\n")
	for _, set := range basket.TopItemsets(sets.All(), opts.top) {
		fmt.Fprintf(tw, "%s\t%d\t%.4f\n", set.Label(), set.Count, set.Support)
	}
	tw.Flush()
	fmt.Fprintln(w)

	if len(rules) == 0 {
		fmt.Fprintf(w, "No association rules at confidence %g. Try lowering the thresholds.\n", opts.confidence)
		return
	}

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ANTECEDENT\tCONSEQUENT\tSUPPORT\tCONFIDENCE\tLIFT\n")
	for _, r := range basket.TopRules(rules, metric, opts.top) {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%.4f\n",
			r.AntecedentLabel(), r.ConsequentLabel(), r.Support, r.Confidence, r.Lift)
	}
	tw.Flush()
}
