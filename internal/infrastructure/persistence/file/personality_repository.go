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

// PersonalityRepository reads the psychometric table from a CSV file with
// columns user_id,O,C,E,A,N.
type PersonalityRepository struct {
	path string
}

var _ repository.PersonalityRepository = (*PersonalityRepository)(nil)

// NewPersonalityRepository creates a repository over the given file.
func NewPersonalityRepository(path string) *PersonalityRepository {
	return &PersonalityRepository{path: path}
}

// LoadAll parses the whole table.
func (r *PersonalityRepository) LoadAll(ctx context.Context) (map[string]*models.PersonalityVector, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("personality csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("personality csv: read header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}
	for _, name := range []string{"user_id", "O", "C", "E", "A", "N"} {
		if _, ok := colIndex[name]; !ok {
			return nil, fmt.Errorf("personality csv: missing column %s", name)
		}
	}

	out := make(map[string]*models.PersonalityVector)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("personality csv: read row: %w", err)
		}

		userID := record[colIndex["user_id"]]
		traits := make([]float64, 5)
		for i, col := range []string{"O", "C", "E", "A", "N"} {
			v, err := strconv.ParseFloat(record[colIndex[col]], 64)
			if err != nil {
				return nil, fmt.Errorf("personality csv: user %s column %s: %w", userID, col, err)
			}
			traits[i] = v
		}
		out[userID] = &models.PersonalityVector{
			Openness:          traits[0],
			Conscientiousness: traits[1],
			Extraversion:      traits[2],
			Agreeableness:     traits[3],
			Neuroticism:       traits[4],
		}
	}
	return out, nil
}
