// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Vote model
// and the tally aggregation used by the results endpoint.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-polls-backend/internal/domain"
)

// CreateVote inserts a new Vote row for (pollID, voterID) choosing optionID.
// The (poll_id, voter_id) unique index enforces one vote per voter; on a
// second attempt the raw constraint error is propagated for the service
// layer to classify.
func CreateVote(ctx context.Context, db *gorm.DB, pollID, optionID, voterID string) (*domain.Vote, error) {
	v := &domain.Vote{
		ID:        uuid.NewString(),
		PollID:    pollID,
		OptionID:  optionID,
		VoterID:   voterID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// CountVotes returns the total number of votes cast on pollID.
func CountVotes(ctx context.Context, db *gorm.DB, pollID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("poll_id = ?", pollID).
		Count(&total).Error
	return total, err
}

// TallyPoll aggregates votes per option for pollID. Every option of the poll
// appears in the result, including options with zero votes, ordered by
// position. The total is the sum across options.
//
// The LEFT JOIN keeps zero-vote options visible; filtering votes.deleted_at
// inside the join (not a WHERE) preserves that behavior for soft-deleted votes.
func TallyPoll(ctx context.Context, db *gorm.DB, pollID string) (*domain.Tally, error) {
	var rows []domain.OptionCount
	err := db.WithContext(ctx).
		Model(&domain.Option{}).
		Select("options.id AS option_id, options.label AS label, options.position AS position, COUNT(votes.id) AS votes").
		Joins("LEFT JOIN votes ON votes.option_id = options.id AND votes.deleted_at IS NULL").
		Where("options.poll_id = ?", pollID).
		Group("options.id, options.label, options.position").
		Order("options.position asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	t := &domain.Tally{PollID: pollID, Options: rows}
	for _, r := range rows {
		t.Total += r.Votes
	}
	return t, nil
}
