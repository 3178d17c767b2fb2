package planner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/urban-gardening-assistant/cultivation-planner/internal/domain"
)

// OptimizationResultRecord persists one Optimize run's top-level summary.
type OptimizationResultRecord struct {
	ID                      string    `gorm:"type:uuid;primary_key"`
	AlgorithmName           string    `gorm:"type:varchar(64);not null;index"`
	TotalCost               float64   `gorm:"type:decimal(14,2);not null"`
	TotalRevenue            float64   `gorm:"type:decimal(14,2);not null"`
	TotalProfit             float64   `gorm:"type:decimal(14,2);not null"`
	AverageFieldUtilization float64   `gorm:"type:decimal(6,4);not null"`
	ComputationTimeSeconds  float64   `gorm:"type:decimal(10,4);not null"`
	TimeLimitReached        bool      `gorm:"not null"`
	CreatedAt               time.Time `gorm:"not null"`

	Allocations []CropAllocationRecord `gorm:"foreignKey:ResultID"`
}

// BeforeCreate assigns a fresh UUID when the caller hasn't set one.
func (r *OptimizationResultRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the database table name for OptimizationResultRecord.
func (OptimizationResultRecord) TableName() string {
	return "optimization_results"
}

// CropAllocationRecord persists one field/crop/period allocation belonging
// to a stored OptimizationResultRecord.
type CropAllocationRecord struct {
	ID             string  `gorm:"type:uuid;primary_key"`
	ResultID       string  `gorm:"type:uuid;not null;index"`
	FieldID        string  `gorm:"type:varchar(128);not null;index"`
	CropID         string  `gorm:"type:varchar(128);not null;index"`
	StartDate      string  `gorm:"type:varchar(10);not null"`
	CompletionDate string  `gorm:"type:varchar(10);not null"`
	AreaUsed       float64 `gorm:"type:decimal(10,2);not null"`
	Revenue        float64 `gorm:"type:decimal(14,2);not null"`
	Cost           float64 `gorm:"type:decimal(14,2);not null"`
	Profit         float64 `gorm:"type:decimal(14,2);not null"`
}

// BeforeCreate assigns a fresh UUID when the caller hasn't set one.
func (r *CropAllocationRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the database table name for CropAllocationRecord.
func (CropAllocationRecord) TableName() string {
	return "crop_allocations"
}

// ResultStore persists and retrieves OptimizationResult snapshots.
type ResultStore struct {
	db *gorm.DB
}

// NewResultStore runs the auto-migration for both record types and returns
// a ready-to-use ResultStore.
func NewResultStore(db *gorm.DB) (*ResultStore, error) {
	if err := db.AutoMigrate(&OptimizationResultRecord{}, &CropAllocationRecord{}); err != nil {
		return nil, err
	}
	return &ResultStore{db: db}, nil
}

// Save converts an OptimizationResult to its persisted shape and writes it
// inside one transaction, returning the assigned result ID.
func (s *ResultStore) Save(ctx context.Context, result domain.OptimizationResult) (string, error) {
	record := OptimizationResultRecord{
		AlgorithmName:           result.AlgorithmName,
		TotalCost:               result.TotalCost,
		TotalRevenue:            result.TotalRevenue,
		TotalProfit:             result.TotalProfit,
		AverageFieldUtilization: result.AverageFieldUtilization,
		ComputationTimeSeconds:  result.ComputationTimeSeconds,
		TimeLimitReached:        result.TimeLimitReached,
	}
	for _, schedule := range result.FieldSchedules {
		for _, alloc := range schedule.Allocations {
			record.Allocations = append(record.Allocations, CropAllocationRecord{
				FieldID:        schedule.FieldID,
				CropID:         alloc.CropID,
				StartDate:      alloc.StartDate,
				CompletionDate: alloc.CompletionDate,
				AreaUsed:       alloc.AreaUsed,
				Revenue:        alloc.Revenue,
				Cost:           alloc.Revenue - alloc.Profit,
				Profit:         alloc.Profit,
			})
		}
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", errors.Wrap(err, "failed to save optimization result")
	}
	return record.ID, nil
}

// Get loads a stored result and its allocations by ID.
func (s *ResultStore) Get(ctx context.Context, id string) (*OptimizationResultRecord, error) {
	var record OptimizationResultRecord
	if err := s.db.WithContext(ctx).Preload("Allocations").First(&record, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "optimization result not found")
	}
	return &record, nil
}
