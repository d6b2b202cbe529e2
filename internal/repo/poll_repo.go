// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Poll and
// Option models.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a poll is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated. Translating a unique-title violation
//     into a domain failure is the service layer's job, not the repo's.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-polls-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePoll inserts a new Poll row together with its options in one
// transaction. The poll and option IDs are randomly generated UUIDs and
// CreatedAt is set to UTC. Option positions follow the input order.
//
// On success, it returns the persisted Poll with Options populated. On
// failure (including a unique-title violation), it returns the raw DB error.
func CreatePoll(ctx context.Context, db *gorm.DB, title, note string, optionLabels []string) (*domain.Poll, error) {
	now := time.Now().UTC()
	p := &domain.Poll{
		ID:        uuid.NewString(),
		Title:     title,
		Note:      note,
		CreatedAt: now,
	}
	for i, label := range optionLabels {
		p.Options = append(p.Options, domain.Option{
			ID:        uuid.NewString(),
			PollID:    p.ID,
			Label:     label,
			Position:  i,
			CreatedAt: now,
		})
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPoll fetches a single poll by ID with its options preloaded in
// position order. If the record does not exist, it returns ErrNotFound.
func GetPoll(ctx context.Context, db *gorm.DB, id string) (*domain.Poll, error) {
	var p domain.Poll
	err := db.WithContext(ctx).
		Preload("Options", func(q *gorm.DB) *gorm.DB { return q.Order("position asc") }).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountPolls returns the total number of polls. On DB error, it returns
// the error.
func CountPolls(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Poll{}).
		Count(&total).Error
	return total, err
}

// ListPollsPage returns a paginated slice of polls ordered by creation time
// descending, options preloaded. Use CountPolls to obtain the total for
// pagination metadata. On DB error, it returns the error.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListPollsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Poll, error) {
	var out []domain.Poll
	err := db.WithContext(ctx).
		Preload("Options", func(q *gorm.DB) *gorm.DB { return q.Order("position asc") }).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdatePollTitle updates the title of the poll identified by id. If no rows
// are affected (poll missing), it returns ErrNotFound. On DB error
// (including a unique-title collision), the raw error is returned.
func UpdatePollTitle(ctx context.Context, db *gorm.DB, id, title string) error {
	res := db.WithContext(ctx).
		Model(&domain.Poll{}).
		Where("id = ?", id).
		Update("title", title)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClosePoll marks the poll as closed. Closing an already closed poll is a
// no-op that still reports success. Returns ErrNotFound when the poll does
// not exist.
func ClosePoll(ctx context.Context, db *gorm.DB, id string) error {
	// Existence check first: Update with an unchanged value reports zero
	// rows affected, which would be indistinguishable from "missing".
	var n int64
	if err := db.WithContext(ctx).Model(&domain.Poll{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.WithContext(ctx).
		Model(&domain.Poll{}).
		Where("id = ?", id).
		Update("closed", true).Error
}

// DeletePoll soft-deletes the poll identified by id. Returns ErrNotFound
// when the poll does not exist. Options and votes stay in place under their
// own soft-delete semantics; the row remains for audit.
func DeletePoll(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Poll{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetOption fetches a single option by ID. Returns ErrNotFound when missing.
func GetOption(ctx context.Context, db *gorm.DB, id string) (*domain.Option, error) {
	var o domain.Option
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}
