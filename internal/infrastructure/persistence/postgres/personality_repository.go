package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/internal/domain/repository"
)

// userPersonalityDBM is the database model for the user_personality table.
type userPersonalityDBM struct {
	UserID            string  `gorm:"primaryKey;column:user_id"`
	Openness          float64 `gorm:"column:o"`
	Conscientiousness float64 `gorm:"column:c"`
	Extraversion      float64 `gorm:"column:e"`
	Agreeableness     float64 `gorm:"column:a"`
	Neuroticism       float64 `gorm:"column:n"`
}

func (userPersonalityDBM) TableName() string {
	return "user_personality"
}

func (dbm *userPersonalityDBM) toDomain() *models.PersonalityVector {
	return &models.PersonalityVector{
		Openness:          dbm.Openness,
		Conscientiousness: dbm.Conscientiousness,
		Extraversion:      dbm.Extraversion,
		Agreeableness:     dbm.Agreeableness,
		Neuroticism:       dbm.Neuroticism,
	}
}

// PersonalityRepository reads the user_personality table.
type PersonalityRepository struct {
	db *gorm.DB
}

var _ repository.PersonalityRepository = (*PersonalityRepository)(nil)

// NewPersonalityRepository creates a repository over the given connection.
func NewPersonalityRepository(conn *DBConnection) *PersonalityRepository {
	return &PersonalityRepository{db: conn.Gorm}
}

// LoadAll reads the whole table into memory.
func (r *PersonalityRepository) LoadAll(ctx context.Context) (map[string]*models.PersonalityVector, error) {
	var rows []userPersonalityDBM
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("postgres: load user_personality: %w", err)
	}

	out := make(map[string]*models.PersonalityVector, len(rows))
	for i := range rows {
		out[rows[i].UserID] = rows[i].toDomain()
	}
	return out, nil
}
