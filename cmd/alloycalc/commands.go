package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RoanBrand/AlloyCalc/batchfile"
	"github.com/RoanBrand/AlloyCalc/config"
	"github.com/RoanBrand/AlloyCalc/descriptor"
	"github.com/RoanBrand/AlloyCalc/element"
	"github.com/RoanBrand/AlloyCalc/log"
	"github.com/RoanBrand/AlloyCalc/report"
	"github.com/RoanBrand/AlloyCalc/resultdb"
	"github.com/RoanBrand/AlloyCalc/sample"
	"github.com/RoanBrand/AlloyCalc/spectro"
)

// app holds what every command needs, set up before the command runs.
type app struct {
	configPath string
	debug      bool

	conf   *config.Config
	tables *element.Tables
	engine *descriptor.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "alloycalc",
		Short:        "Compute empirical descriptors of multi-component alloys",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "JSON config file (defaults are used when empty)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "log at debug level")

	rootCmd.AddCommand(
		a.calcCmd(),
		a.batchCmd(),
		a.spectroCmd(),
		a.elementsCmd(),
	)
	return rootCmd
}

func (a *app) setup() error {
	a.conf = config.Default()
	if a.configPath != "" {
		conf, err := config.LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.conf = conf
	}
	if a.debug {
		a.conf.DebugMode = true
	}

	// console only; the log file is for the service
	log.Setup("", a.conf.DebugMode)

	ts, err := element.Open(a.conf.ElementTable, a.conf.EnthalpyTable, a.conf.PriceTable)
	if err != nil {
		return err
	}
	a.tables = ts

	var opts []descriptor.Option
	if a.conf.LegacyEnthalpyGuard {
		opts = append(opts, descriptor.WithLegacyEnthalpyGuard())
	}
	a.engine = descriptor.NewEngineFromTables(ts, opts...)
	return nil
}

func (a *app) calcCmd() *cobra.Command {
	var (
		symbols []string
		ratios  []float64
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:     "calc",
		Short:   "Compute the descriptors of one composition",
		Example: "  alloycalc calc --elements Co,Cr,Fe,Mn,Ni\n  alloycalc calc --elements Fe,Ni --ratios 3,1 --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.engine.Compute(symbols, ratios)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err = fmt.Fprint(out, report.Summary(res))
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&symbols, "elements", "e", nil, "comma separated element symbols")
	cmd.Flags().Float64SliceVarP(&ratios, "ratios", "r", nil, "comma separated molar ratios (equal when omitted)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.MarkFlagRequired("elements")
	return cmd
}

func (a *app) batchCmd() *cobra.Command {
	var (
		in      string
		outDir  string
		workers int
		store   bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compute every composition of a CSV or XLSX file",
		Long: `Reads compositions from a CSV or XLSX file, one per row: element symbols in the
first column and molar ratios in the second, both comma separated. Results are
appended to ` + report.BatchFileName + ` in the output directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers < 1 {
				workers = a.conf.Workers
			}
			if store && !a.conf.HasResultDatabase() {
				return errors.New("--store needs result_database in the config")
			}

			rows, err := batchfile.Read(in)
			if err != nil {
				return err
			}

			inputs := make([]descriptor.Input, 0, len(rows))
			for _, r := range rows {
				if r.Err != nil {
					log.Error("skipping row", "file", in, "line", r.Line, "err", r.Err)
					continue
				}
				inputs = append(inputs, r.Input)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			results, err := a.engine.ComputeBatch(ctx, inputs, workers)
			if err != nil {
				return err
			}

			outPath := filepath.Join(outDir, report.BatchFileName)
			bf, err := report.OpenBatchFile(outPath)
			if err != nil {
				return err
			}

			var failed int
			for _, br := range results {
				if br.Err != nil {
					failed++
					log.Error("composition failed", "elements", strings.Join(br.Input.Symbols, ","), "err", br.Err)
					continue
				}
				if err = bf.Write(br.Input, br.Result); err != nil {
					bf.Close()
					return err
				}
			}
			if err = bf.Close(); err != nil {
				return err
			}

			if store {
				if err = a.store(ctx, results); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d computed, %d failed, %d unreadable rows; results in %s\n",
				len(results)-failed, failed, len(rows)-len(inputs), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "CSV or XLSX batch file")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory of the result file")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel computations (config workers when 0)")
	cmd.Flags().BoolVar(&store, "store", false, "also insert the results into the result database")
	cmd.MarkFlagRequired("in")
	return cmd
}

func (a *app) store(ctx context.Context, results []descriptor.BatchResult) error {
	rdb := resultdb.Setup(a.conf)
	defer rdb.Stop()

	rows := resultdb.NewRows(results, time.Now())
	if len(rows) == 0 {
		return nil
	}
	if err := rdb.InsertResults(ctx, rows); err != nil {
		return fmt.Errorf("error storing results: %w", err)
	}
	log.Println("stored", len(rows), "results in batch", rows[0].BatchID)
	return nil
}

func (a *app) spectroCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "spectro",
		Short: "Compute the descriptors of the latest spectrometer samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := spectro.NewSource(a.conf, a.engine, a.tables.Elements, 0)
			res, err := src.Results(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			for i := range res {
				printSample(cmd, &res[i])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the results as JSON")
	return cmd
}

func printSample(cmd *cobra.Command, c *sample.Computed) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s  %s\n", c.SampleName, c.Furnace, c.TimeStamp.Format("2006-01-02 15:04:05"))
	if len(c.Skipped) > 0 {
		fmt.Fprintf(out, "not in tables: %s\n", strings.Join(c.Skipped, ", "))
	}
	if c.Descriptors == nil {
		fmt.Fprintf(out, "error: %s\n\n", c.Error)
		return
	}
	fmt.Fprintln(out, report.Summary(*c.Descriptors))
}

func (a *app) elementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "elements",
		Short: "List the supported element symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, s := range a.tables.Elements.Symbols() {
				price := "-"
				if p, ok := a.tables.Prices.Price(s); ok {
					price = fmt.Sprintf("%.2f USD/kg", p)
				}
				fmt.Fprintf(out, "%-3s %s\n", s, price)
			}
			return nil
		},
	}
}
