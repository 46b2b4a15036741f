package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ueba/internal/detector/feature"
	"github.com/turtacn/ueba/internal/detector/iforest"
	"github.com/turtacn/ueba/internal/detector/markov"
	"github.com/turtacn/ueba/pkg/constants"
)

var (
	trainFeaturesPath  string
	trainSequencesPath string
	trainOutDir        string
	trainTrees         int
	trainSampleSize    int
	trainSeed          int64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the isolation forest and Markov models from feature exports",
	Long: `train reads a numeric feature matrix and a per-user action sequence
export, fits both models, and writes the serialized artifacts the scoring
service loads at startup.

The feature CSV must carry a header row matching the compiled feature schema,
optionally preceded by a user_id column. The sequence CSV holds one action
sequence per row in its last column, tokens joined by "->".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrain()
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainFeaturesPath, "features", "", "path to the feature matrix CSV (required)")
	trainCmd.Flags().StringVar(&trainSequencesPath, "sequences", "", "path to the action sequence CSV (required)")
	trainCmd.Flags().StringVar(&trainOutDir, "out-dir", "models", "directory for the trained artifacts")
	trainCmd.Flags().IntVar(&trainTrees, "trees", constants.DefaultIsolationTrees, "number of isolation trees")
	trainCmd.Flags().IntVar(&trainSampleSize, "sample-size", constants.DefaultIsolationSampleSize, "per-tree subsample size")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 42, "random seed for reproducible training")
	_ = trainCmd.MarkFlagRequired("features")
	_ = trainCmd.MarkFlagRequired("sequences")
	rootCmd.AddCommand(trainCmd)
}

func runTrain() error {
	data, err := readFeatureMatrix(trainFeaturesPath)
	if err != nil {
		return err
	}
	sequences, err := readSequences(trainSequencesPath)
	if err != nil {
		return err
	}

	forest := iforest.New(
		iforest.WithTrees(trainTrees),
		iforest.WithSampleSize(trainSampleSize),
		iforest.WithSeed(trainSeed),
		iforest.WithSchema(feature.SchemaVersion, feature.Columns()),
	)
	if err := forest.Fit(data); err != nil {
		return fmt.Errorf("train: fit isolation forest: %w", err)
	}

	markovModel := markov.New()
	markovModel.Fit(sequences)

	if err := os.MkdirAll(trainOutDir, 0o755); err != nil {
		return fmt.Errorf("train: create output directory: %w", err)
	}
	if err := writeArtifact(filepath.Join(trainOutDir, "isolation_forest.gob"), forest.Save); err != nil {
		return err
	}
	if err := writeArtifact(filepath.Join(trainOutDir, "markov_model.gob"), markovModel.Save); err != nil {
		return err
	}

	fmt.Printf("trained %d trees on %d rows, markov model over %d states\n",
		trainTrees, len(data), len(markovModel.Totals))
	return nil
}

// readFeatureMatrix reads the training matrix and verifies the header matches
// the compiled feature schema, column for column.
func readFeatureMatrix(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("train: open features: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("train: read feature header: %w", err)
	}

	offset := 0
	if len(header) > 0 && header[0] == "user_id" {
		offset = 1
	}
	expected := feature.Columns()
	if len(header)-offset != len(expected) {
		return nil, fmt.Errorf("train: feature header has %d columns, schema expects %d",
			len(header)-offset, len(expected))
	}
	for i, name := range expected {
		if header[offset+i] != name {
			return nil, fmt.Errorf("train: feature column %d is %q, schema expects %q",
				i, header[offset+i], name)
		}
	}

	var data [][]float64
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("train: read feature row: %w", err)
		}
		row := make([]float64, len(expected))
		for i := range expected {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[offset+i]), 64)
			if err != nil {
				return nil, fmt.Errorf("train: row %d column %q: %w", len(data)+2, expected[i], err)
			}
			row[i] = v
		}
		data = append(data, row)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("train: feature file %s has no data rows", path)
	}
	return data, nil
}

// readSequences reads one action sequence per row from the last CSV column.
func readSequences(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("train: open sequences: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var sequences [][]string
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("train: read sequence row: %w", err)
		}
		raw := strings.TrimSpace(record[len(record)-1])
		// Tolerate a header row.
		if first {
			first = false
			if raw == "sequence" || raw == "recent_sequence" {
				continue
			}
		}
		if raw == "" {
			continue
		}
		var tokens []string
		for _, t := range strings.Split(raw, constants.SequenceDelimiter) {
			if t = strings.TrimSpace(t); t != "" {
				tokens = append(tokens, t)
			}
		}
		if len(tokens) >= 2 {
			sequences = append(sequences, tokens)
		}
	}
	if len(sequences) == 0 {
		return nil, fmt.Errorf("train: sequence file %s has no usable sequences", path)
	}
	return sequences, nil
}

func writeArtifact(path string, save func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("train: create %s: %w", path, err)
	}
	defer f.Close()
	if err := save(f); err != nil {
		return fmt.Errorf("train: write %s: %w", path, err)
	}
	return nil
}
