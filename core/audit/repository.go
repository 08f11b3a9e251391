package audit

import (
	"context"
	"fmt"
	"time"

	"payroll-monitor/core/records"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultListLimit = 50

// Repository reads and writes check history.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository over db. db may be nil.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Enabled reports whether entries are persisted.
func (r *Repository) Enabled() bool {
	return r != nil && r.db != nil
}

// Migrate creates or updates the check_entries table.
func (r *Repository) Migrate(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	if err := r.db.WithContext(ctx).AutoMigrate(&CheckEntry{}); err != nil {
		return fmt.Errorf("failed to migrate check entries: %w", err)
	}
	return nil
}

// Record stores entry, assigning an id and timestamp when missing.
func (r *Repository) Record(ctx context.Context, entry *CheckEntry) error {
	if !r.Enabled() {
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CheckedAt.IsZero() {
		entry.CheckedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record check entry: %w", err)
	}
	return nil
}

// ListByAddress returns the newest entries for address first.
func (r *Repository) ListByAddress(ctx context.Context, address string, limit int) ([]CheckEntry, error) {
	if !r.Enabled() {
		return []CheckEntry{}, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	var entries []CheckEntry
	err := r.db.WithContext(ctx).
		Where("address = ?", records.Key(address)).
		Order("checked_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list check entries: %w", err)
	}
	return entries, nil
}
