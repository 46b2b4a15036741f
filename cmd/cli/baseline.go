package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/ueba/internal/detector/baseline"
	"github.com/turtacn/ueba/internal/detector/feature"
	"github.com/turtacn/ueba/internal/domain/models"
)

var (
	baselineInputPath string
	baselineOutPath   string
	baselineReservoir int
	baselineSeed      int64
	baselineAllDays   bool
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Build per-user behavioral baselines from daily activity aggregates",
	Long: `baseline streams a daily per-user aggregate export and computes the
statistical baseline for each user. Weekend rows are skipped unless
--all-days is set, so the baseline reflects normal working behavior.

The input CSV needs user_id and date columns plus one column per baseline
feature. Rows stream through constant-memory accumulators, so the export can
be arbitrarily large.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBaseline()
	},
}

func init() {
	baselineCmd.Flags().StringVar(&baselineInputPath, "input", "", "path to the daily aggregates CSV (required)")
	baselineCmd.Flags().StringVar(&baselineOutPath, "out", "models/user_baselines.csv", "path for the baseline artifact")
	baselineCmd.Flags().IntVar(&baselineReservoir, "reservoir", 4096, "per-user sample reservoir for quantiles")
	baselineCmd.Flags().Int64Var(&baselineSeed, "seed", 42, "random seed for reservoir sampling")
	baselineCmd.Flags().BoolVar(&baselineAllDays, "all-days", false, "include weekend rows")
	_ = baselineCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(baselineCmd)
}

func runBaseline() error {
	f, err := os.Open(baselineInputPath)
	if err != nil {
		return fmt.Errorf("baseline: open input: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("baseline: read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	userIdx, ok := index["user_id"]
	if !ok {
		return fmt.Errorf("baseline: input is missing the user_id column")
	}
	dateIdx, hasDate := index["date"]
	if !hasDate && !baselineAllDays {
		return fmt.Errorf("baseline: input is missing the date column needed for weekday filtering")
	}

	features := feature.BaselineColumns()
	for _, name := range features {
		if _, ok := index[name]; !ok {
			return fmt.Errorf("baseline: input is missing the %s column", name)
		}
	}

	builder := baseline.NewBuilder(features, baselineReservoir, baselineSeed)
	rows, skipped := 0, 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("baseline: read row: %w", err)
		}

		if !baselineAllDays {
			day, err := time.Parse("2006-01-02", strings.TrimSpace(record[dateIdx]))
			if err != nil {
				return fmt.Errorf("baseline: row %d: bad date %q: %w", rows+skipped+2, record[dateIdx], err)
			}
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				skipped++
				continue
			}
		}

		values := make(map[string]float64, len(features))
		for _, name := range features {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[index[name]]), 64)
			if err != nil {
				return fmt.Errorf("baseline: row %d column %q: %w", rows+skipped+2, name, err)
			}
			values[name] = v
		}
		builder.Add(record[userIdx], values)
		rows++
	}

	baselines := builder.Build()
	if err := writeBaselines(baselineOutPath, features, baselines); err != nil {
		return err
	}

	fmt.Printf("built baselines for %d users from %d weekday rows (%d skipped)\n",
		len(baselines), rows, skipped)
	return nil
}

// writeBaselines writes the artifact in the layout the file repository reads:
// user_id followed by five stat columns per feature.
func writeBaselines(path string, features []string, baselines map[string]*models.UserBaseline) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("baseline: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"user_id"}
	for _, name := range features {
		header = append(header,
			name+"_mean", name+"_std", name+"_median", name+"_q75", name+"_q95")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("baseline: write header: %w", err)
	}

	users := make([]string, 0, len(baselines))
	for userID := range baselines {
		users = append(users, userID)
	}
	sort.Strings(users)

	for _, userID := range users {
		row := []string{userID}
		for _, name := range features {
			fb := baselines[userID].Features[name]
			row = append(row,
				formatStat(fb.Mean), formatStat(fb.Std), formatStat(fb.Median),
				formatStat(fb.Q75), formatStat(fb.Q95))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("baseline: write row for %s: %w", userID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("baseline: flush %s: %w", path, err)
	}
	return nil
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
