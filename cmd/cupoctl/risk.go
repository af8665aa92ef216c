package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/repository"
	"CupoCast/internal/services/risk"
	"CupoCast/internal/usecase"
)

var riskCmd = &cobra.Command{
	Use:   "risk <history.json>",
	Short: "Classify short-term credit risk from the last three months",
	Args:  cobra.ExactArgs(1),
	RunE:  runRisk,
}

func runRisk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	records, err := readHistory(args[0])
	if err != nil {
		return err
	}

	cl := risk.NewClassifier(
		risk.WithScoreFloor(cfg.Risk.ScoreFloor),
		risk.WithLateThreshold(cfg.Risk.LateThreshold),
	)
	uc := usecase.NewRiskUseCase(repository.NewMemoryHistoryStore(), cl, nil, nil, nil)
	res, err := uc.EvaluateRecords(cmd.Context(), records)
	if err != nil {
		return err
	}

	if flagOutput == "json" {
		return printJSON(cmd.OutOrStdout(), res)
	}
	return printRisk(cmd.OutOrStdout(), res)
}

func printRisk(w io.Writer, res *models.RiskAssessment) error {
	_, err := fmt.Fprintf(w, "level:             %s\nscore low:         %t\nfrequent lateness: %t\ninactivity:        %t\ndeclining trend:   %t\n",
		res.Level, res.Signals.ScoreLow, res.Signals.FrequentLateness, res.Signals.Inactivity, res.Signals.DecliningTrend)
	return err
}
