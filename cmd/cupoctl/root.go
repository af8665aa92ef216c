package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"CupoCast/internal/domain/models"
	"CupoCast/pkg/config"
)

var (
	flagConfig  string
	flagModel   string
	flagXScaler string
	flagYScaler string
	flagOutput  string
)

var rootCmd = &cobra.Command{
	Use:           "cupoctl",
	Short:         "Offline capacity projection and risk evaluation",
	Long:          "Run projections and risk checks on a JSON history file using local model artifacts, without the server.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file; model paths are read from it unless overridden")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "regressor artifact path")
	rootCmd.PersistentFlags().StringVar(&flagXScaler, "x-scaler", "", "input scaler artifact path")
	rootCmd.PersistentFlags().StringVar(&flagYScaler, "y-scaler", "", "output scaler artifact path")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "output format: table or json")

	rootCmd.AddCommand(projectCmd, riskCmd)
}

// loadConfig returns defaults, the file at --config, then flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if flagModel != "" {
		cfg.Model.RegressorPath = flagModel
	}
	if flagXScaler != "" {
		cfg.Model.XScalerPath = flagXScaler
	}
	if flagYScaler != "" {
		cfg.Model.YScalerPath = flagYScaler
	}
	return cfg, nil
}

// readHistory decodes a JSON array of monthly records, oldest first.
// "-" reads stdin.
func readHistory(path string) ([]models.MonthlyRecord, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var in []models.HistoryRecordRequest
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return models.RecordsFromRequests(in), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
