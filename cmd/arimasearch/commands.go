package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/sartorproj/arimasearch/autoarima"
	"github.com/sartorproj/arimasearch/config"
	"github.com/sartorproj/arimasearch/forecast"
	"github.com/sartorproj/arimasearch/internal/logging"
	"github.com/sartorproj/arimasearch/stats"
	"github.com/sartorproj/arimasearch/timeseries"
	"github.com/spf13/cobra"
)

// options holds the flags shared by every command.
type options struct {
	configPath string
	period     int
	criterion  string
	test       string
	stepwise   bool
	workers    int
	horizon    int
	holdout    int
	column     string
	format     string
	output     string
	residuals  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "arimasearch",
		Short:         "Automatic ARIMA/SARIMA order selection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./arimasearch.yaml)")
	root.PersistentFlags().StringVar(&opts.column, "column", "", "value column of the CSV")
	root.PersistentFlags().StringVar(&opts.test, "test", "", "stationarity test: adf or kpss")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "", "report format: yaml or json")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "report file (default stdout)")

	search := &cobra.Command{
		Use:   "search [csv]",
		Short: "Search model orders, forecast the winner and diagnose its residuals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, args[0])
		},
	}
	search.Flags().IntVarP(&opts.period, "period", "m", 0, "seasonal period (0 for non-seasonal)")
	search.Flags().StringVar(&opts.criterion, "criterion", "", "ranking criterion: aic, aicc or bic")
	search.Flags().BoolVar(&opts.stepwise, "stepwise", false, "use the stepwise search")
	search.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent fits")
	search.Flags().IntVar(&opts.horizon, "horizon", 0, "forecast steps")
	search.Flags().IntVar(&opts.holdout, "holdout", 0, "trailing observations withheld to score the forecast")
	search.Flags().StringVar(&opts.residuals, "residuals", "", "write the winner's residuals to this CSV")

	check := &cobra.Command{
		Use:   "check [csv]",
		Short: "Run ADF and KPSS stationarity tests and suggest a differencing order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0])
		},
	}
	check.Flags().IntVarP(&opts.period, "period", "m", 0, "seasonal period (0 for non-seasonal)")

	root.AddCommand(search, check)
	return root
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("period") {
		cfg.Search.Period = opts.period
	}
	if flags.Changed("criterion") {
		cfg.Search.Criterion = autoarima.Criterion(opts.criterion)
	}
	if flags.Changed("test") {
		cfg.Search.Test = stats.TestKind(opts.test)
	}
	if flags.Changed("stepwise") {
		cfg.Search.Stepwise = opts.stepwise
	}
	if flags.Changed("workers") {
		cfg.Search.Workers = opts.workers
	}
	if flags.Changed("horizon") {
		cfg.Search.Horizon = opts.horizon
	}
	if flags.Changed("holdout") {
		cfg.Input.Holdout = opts.holdout
	}
	if flags.Changed("column") {
		cfg.Input.ValueColumn = opts.column
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if flags.Changed("output") {
		cfg.Output.Path = opts.output
	}
	if flags.Changed("residuals") {
		cfg.Output.ResidualsPath = opts.residuals
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func loadSeries(cfg *config.Config, path string) (*timeseries.Series, error) {
	csvOpts := timeseries.DefaultCSVOptions()
	csvOpts.ValueColumn = cfg.Input.ValueColumn
	csvOpts.DateColumn = cfg.Input.DateColumn
	csvOpts.DateFormat = cfg.Input.DateFormat
	csvOpts.IDColumn = cfg.Input.IDColumn
	csvOpts.IDFilter = cfg.Input.IDFilter
	return timeseries.LoadCSV(path, csvOpts)
}

func setup(cmd *cobra.Command, opts *options, path string) (*config.Config, zerolog.Logger, *timeseries.Series, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	series, err := loadSeries(cfg, path)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	logger.Info().Str("file", path).Int("n", series.Len()).Str("frequency", series.Frequency().String()).Msg("series loaded")
	return cfg, logger, series, nil
}

func runSearch(cmd *cobra.Command, opts *options, path string) error {
	cfg, logger, series, err := setup(cmd, opts, path)
	if err != nil {
		return err
	}

	train, test := series, (*timeseries.Series)(nil)
	if h := cfg.Input.Holdout; h > 0 {
		if h >= series.Len() {
			return fmt.Errorf("holdout %d leaves no observations to fit", h)
		}
		train = series.Slice(0, series.Len()-h)
		test = series.Slice(series.Len()-h, series.Len())
	}

	// The report is written whenever a search ran, even one that found no
	// viable model or was interrupted.
	res, searchErr := autoarima.AutoARIMA(cmd.Context(), train, cfg.Search, autoarima.WithLogger(logger))
	if res == nil || res.Search == nil {
		return searchErr
	}

	rep := buildReport(train, res, cfg.Search.Criterion)
	if test != nil && res.Forecast != nil {
		acc, err := forecast.Evaluate(test.Values(), res.Forecast.Values()[:test.Len()])
		if err != nil {
			return err
		}
		rep.Holdout = newAccuracyReport(acc)
	}

	if cfg.Output.ResidualsPath != "" && res.Search != nil && res.Search.Best != nil {
		if err := timeseries.SaveCSV(res.Search.Best.Residuals, cfg.Output.ResidualsPath); err != nil {
			return fmt.Errorf("write residuals: %w", err)
		}
	}

	if err := writeReport(cmd.OutOrStdout(), cfg.Output, rep); err != nil {
		return err
	}
	return searchErr
}

func runCheck(cmd *cobra.Command, opts *options, path string) error {
	cfg, logger, series, err := setup(cmd, opts, path)
	if err != nil {
		return err
	}

	rep := checkReport{Series: newSeriesReport(series)}
	for _, kind := range []stats.TestKind{stats.ADFTest, stats.KPSSTest} {
		tester := cfg.Search.Tester()
		tester.Kind = kind
		res, err := tester.Test(series)
		if err != nil {
			logger.Warn().Err(err).Str("test", string(kind)).Msg("stationarity test failed")
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: %v", kind, err))
			continue
		}
		rep.Tests = append(rep.Tests, *newTestReport(res))
	}

	selector := stats.NewSelector(cfg.Search.Tester(), logger)
	if rep.D, err = selector.SelectD(series, cfg.Search.MaxD); err != nil {
		return err
	}
	if cfg.Search.Seasonal() {
		if rep.SeasonalD, err = selector.SelectSeasonalD(series, cfg.Search.Period, cfg.Search.MaxSeasonalD); err != nil {
			return err
		}
	}
	return writeReport(cmd.OutOrStdout(), cfg.Output, rep)
}

// writeReport encodes v to the configured path, or to w when no path is set.
func writeReport(w io.Writer, out config.OutputConfig, v any) error {
	if out.Path != "" {
		f, err := os.Create(out.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return encode(w, out.Format, v)
}
