package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/internal/domain/repository"
)

// userBaselineDBM is the database model for the user_baselines table, one
// row per user with five statistic columns per comparison feature.
type userBaselineDBM struct {
	UserID string `gorm:"primaryKey;column:user_id"`

	LogonCountMean   float64 `gorm:"column:logon_count_mean"`
	LogonCountStd    float64 `gorm:"column:logon_count_std"`
	LogonCountMedian float64 `gorm:"column:logon_count_median"`
	LogonCountQ75    float64 `gorm:"column:logon_count_q75"`
	LogonCountQ95    float64 `gorm:"column:logon_count_q95"`

	FileAccessCountMean   float64 `gorm:"column:file_access_count_mean"`
	FileAccessCountStd    float64 `gorm:"column:file_access_count_std"`
	FileAccessCountMedian float64 `gorm:"column:file_access_count_median"`
	FileAccessCountQ75    float64 `gorm:"column:file_access_count_q75"`
	FileAccessCountQ95    float64 `gorm:"column:file_access_count_q95"`

	TotalBytesOutMean   float64 `gorm:"column:total_bytes_out_mean"`
	TotalBytesOutStd    float64 `gorm:"column:total_bytes_out_std"`
	TotalBytesOutMedian float64 `gorm:"column:total_bytes_out_median"`
	TotalBytesOutQ75    float64 `gorm:"column:total_bytes_out_q75"`
	TotalBytesOutQ95    float64 `gorm:"column:total_bytes_out_q95"`
}

func (userBaselineDBM) TableName() string {
	return "user_baselines"
}

// toDomain converts the database model to a domain model.
func (dbm *userBaselineDBM) toDomain() *models.UserBaseline {
	return &models.UserBaseline{
		UserID: dbm.UserID,
		Features: map[string]models.FeatureBaseline{
			"logon_count": {
				Mean: dbm.LogonCountMean, Std: dbm.LogonCountStd,
				Median: dbm.LogonCountMedian, Q75: dbm.LogonCountQ75, Q95: dbm.LogonCountQ95,
			},
			"file_access_count": {
				Mean: dbm.FileAccessCountMean, Std: dbm.FileAccessCountStd,
				Median: dbm.FileAccessCountMedian, Q75: dbm.FileAccessCountQ75, Q95: dbm.FileAccessCountQ95,
			},
			"total_bytes_out": {
				Mean: dbm.TotalBytesOutMean, Std: dbm.TotalBytesOutStd,
				Median: dbm.TotalBytesOutMedian, Q75: dbm.TotalBytesOutQ75, Q95: dbm.TotalBytesOutQ95,
			},
		},
	}
}

// BaselineRepository reads the user_baselines table.
type BaselineRepository struct {
	db *gorm.DB
}

var _ repository.BaselineRepository = (*BaselineRepository)(nil)

// NewBaselineRepository creates a repository over the given connection.
func NewBaselineRepository(conn *DBConnection) *BaselineRepository {
	return &BaselineRepository{db: conn.Gorm}
}

// LoadAll reads the whole table into memory.
func (r *BaselineRepository) LoadAll(ctx context.Context) (map[string]*models.UserBaseline, error) {
	var rows []userBaselineDBM
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("postgres: load user_baselines: %w", err)
	}

	out := make(map[string]*models.UserBaseline, len(rows))
	for i := range rows {
		out[rows[i].UserID] = rows[i].toDomain()
	}
	return out, nil
}
