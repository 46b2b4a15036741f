// Package file provides CSV-backed implementations of the repository
// interfaces for deployments that ship their tables as artifacts next to the
// serialized models.
package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/internal/domain/repository"
)

// Baseline table column suffixes, one statistic per column:
// <feature>_mean, <feature>_std, <feature>_median, <feature>_q75, <feature>_q95.
var statSuffixes = []string{"_mean", "_std", "_median", "_q75", "_q95"}

// BaselineRepository reads the user baseline table from a CSV file.
type BaselineRepository struct {
	path     string
	features []string
}

var _ repository.BaselineRepository = (*BaselineRepository)(nil)

// NewBaselineRepository creates a repository over the given file for the
// given comparison feature subset.
func NewBaselineRepository(path string, features []string) *BaselineRepository {
	return &BaselineRepository{path: path, features: features}
}

// LoadAll parses the whole table. The first column is the user ID; statistic
// columns are located by header name so column order in the file is free.
func (r *BaselineRepository) LoadAll(ctx context.Context) (map[string]*models.UserBaseline, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("baseline csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("baseline csv: read header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}

	for _, feat := range r.features {
		for _, suffix := range statSuffixes {
			if _, ok := colIndex[feat+suffix]; !ok {
				return nil, fmt.Errorf("baseline csv: missing column %s%s", feat, suffix)
			}
		}
	}

	out := make(map[string]*models.UserBaseline)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("baseline csv: read row: %w", err)
		}

		userID := record[0]
		row := &models.UserBaseline{
			UserID:   userID,
			Features: make(map[string]models.FeatureBaseline, len(r.features)),
		}
		for _, feat := range r.features {
			stats, err := parseStats(record, colIndex, feat)
			if err != nil {
				return nil, fmt.Errorf("baseline csv: user %s: %w", userID, err)
			}
			row.Features[feat] = stats
		}
		out[userID] = row
	}
	return out, nil
}

func parseStats(record []string, colIndex map[string]int, feat string) (models.FeatureBaseline, error) {
	values := make([]float64, len(statSuffixes))
	for i, suffix := range statSuffixes {
		raw := record[colIndex[feat+suffix]]
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.FeatureBaseline{}, fmt.Errorf("column %s%s: %w", feat, suffix, err)
		}
		values[i] = v
	}
	return models.FeatureBaseline{
		Mean:   values[0],
		Std:    values[1],
		Median: values[2],
		Q75:    values[3],
		Q95:    values[4],
	}, nil
}
