package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/repository"
	"CupoCast/internal/services/forecast"
	"CupoCast/internal/services/regressor"
	"CupoCast/internal/services/scaler"
	"CupoCast/internal/usecase"
)

var (
	flagHorizon int
	flagMonth   int
	flagYear    int
)

var projectCmd = &cobra.Command{
	Use:   "project <history.json>",
	Short: "Project monthly borrowing capacity",
	Args:  cobra.ExactArgs(1),
	RunE:  runProject,
}

func init() {
	projectCmd.Flags().IntVar(&flagHorizon, "horizon", 6, "months to project")
	projectCmd.Flags().IntVar(&flagMonth, "month", 0, "first projected month 1-12 (default: current month)")
	projectCmd.Flags().IntVar(&flagYear, "year", 0, "stamp absolute years starting at this year")
}

func runProject(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	records, err := readHistory(args[0])
	if err != nil {
		return err
	}

	reg, err := regressor.LoadMLP(cfg.Model.RegressorPath)
	if err != nil {
		return err
	}
	norm, err := scaler.LoadNormalizer(cfg.Model.XScalerPath, cfg.Model.YScalerPath)
	if err != nil {
		return err
	}
	f, err := forecast.New(reg, norm, forecast.WithMaxHorizon(cfg.Model.MaxHorizon))
	if err != nil {
		return err
	}

	month := flagMonth
	if !cmd.Flags().Changed("month") {
		month = int(time.Now().Month())
	}
	uc := usecase.NewProjectionUseCase(repository.NewMemoryHistoryStore(), f, nil, 0, nil, nil, nil)
	res, err := uc.ProjectHistory(cmd.Context(), records, flagHorizon, month, flagYear)
	if err != nil {
		return err
	}

	if flagOutput == "json" {
		return printJSON(cmd.OutOrStdout(), res)
	}
	return printProjection(cmd.OutOrStdout(), res)
}

func printProjection(w io.Writer, res *models.ProjectionResult) error {
	if !res.Sufficient() {
		_, err := fmt.Fprintf(w, "%s: %s\n", res.Status, res.Message)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tYEAR\tESTIMATED AMOUNT")
	for _, m := range res.Projection {
		year := fmt.Sprintf("+%d", m.YearOffset)
		if m.Year > 0 {
			year = fmt.Sprint(m.Year)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\n", m.Month, year, m.EstimatedAmount)
	}
	return tw.Flush()
}
