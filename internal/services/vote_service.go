// Package services – VoteService
//
// This file implements the VoteService, which governs how voters cast votes
// on polls and how poll results are tallied. It enforces business rules
// (poll existence, open/closed state, option membership, one vote per voter)
// and persists votes atomically. Expected failures travel as registry errors
// inside Result values so handlers can map them to HTTP statuses.
package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-polls-backend/internal/domain"
	"github.com/tbourn/go-polls-backend/internal/repo"
)

// VoteService implements the use-cases around casting votes and reading
// tallies. The existence/state checks and the insert run inside one
// transaction so concurrent casts cannot slip past the closed check. The
// service is context-aware and safe for concurrent use.
type VoteService struct {
	// DB is the database handle used for all vote operations.
	// The handle may be a plain *gorm.DB or a transaction-bound handle.
	DB *gorm.DB
}

// Cast records voterID's choice of optionID on pollID.
//
// Semantics and validation:
//   - voterID must be non-blank; otherwise Vote.MissingVoter.
//   - pollID must exist; otherwise Poll.NotFound.
//   - The poll must be open; otherwise Vote.PollClosed.
//   - optionID must belong to the poll; otherwise Vote.InvalidOption.
//   - A voter may vote at most once per poll; a second attempt yields
//     Vote.Duplicated (backed by the unique (poll_id, voter_id) index).
//
// Concurrency & atomicity:
//   - The operation runs inside a transaction so the state checks and the
//     insert are atomic; the unique index is the final arbiter under races.
//
// The error return carries only unexpected faults (connectivity etc.).
func (s *VoteService) Cast(ctx context.Context, pollID, optionID, voterID string) (domain.ValueResult[*domain.Vote], error) {
	tr := otel.Tracer("services/VoteService")
	ctx, span := tr.Start(ctx, "Cast",
		trace.WithAttributes(
			attribute.String("poll.id", pollID),
			attribute.String("option.id", optionID),
		),
	)
	defer span.End()

	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return domain.FailOf[*domain.Vote](domain.ErrVoteMissingVoter), nil
	}

	var (
		res domain.ValueResult[*domain.Vote]
		ok  bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) Load the poll and verify it exists and is open.
		p, err := repo.GetPoll(ctx, tx, pollID)
		if err != nil {
			if isNotFound(err) {
				res = domain.FailOf[*domain.Vote](domain.ErrPollNotFound)
				return nil
			}
			return err
		}
		if p.Closed {
			res = domain.FailOf[*domain.Vote](domain.ErrVotePollClosed)
			return nil
		}

		// 2) The chosen option must belong to this poll.
		opt, err := repo.GetOption(ctx, tx, optionID)
		if err != nil {
			if isNotFound(err) {
				res = domain.FailOf[*domain.Vote](domain.ErrVoteInvalidOption)
				return nil
			}
			return err
		}
		if opt.PollID != p.ID {
			res = domain.FailOf[*domain.Vote](domain.ErrVoteInvalidOption)
			return nil
		}

		// 3) Insert with (poll_id, voter_id) uniqueness semantics.
		v, err := repo.CreateVote(ctx, tx, p.ID, opt.ID, voterID)
		if err != nil {
			if isDuplicate(err) {
				res = domain.FailOf[*domain.Vote](domain.ErrVoteDuplicated)
				return nil
			}
			return err
		}
		res = domain.OkOf(v)
		ok = true
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.ValueResult[*domain.Vote]{}, err
	}
	if ok {
		span.SetAttributes(attribute.String("vote.id", res.MustValue().ID))
	}
	return res, nil
}

// Results tallies votes per option for pollID, including zero-vote options.
//
// Failure codes: Poll.NotFound.
func (s *VoteService) Results(ctx context.Context, pollID string) (domain.ValueResult[*domain.Tally], error) {
	tr := otel.Tracer("services/VoteService")
	ctx, span := tr.Start(ctx, "Results",
		trace.WithAttributes(attribute.String("poll.id", pollID)),
	)
	defer span.End()

	if _, err := repo.GetPoll(ctx, s.DB, pollID); err != nil {
		if isNotFound(err) {
			return domain.FailOf[*domain.Tally](domain.ErrPollNotFound), nil
		}
		span.RecordError(err)
		return domain.ValueResult[*domain.Tally]{}, err
	}

	t, err := repo.TallyPoll(ctx, s.DB, pollID)
	if err != nil {
		span.RecordError(err)
		return domain.ValueResult[*domain.Tally]{}, err
	}
	span.SetAttributes(attribute.Int64("tally.total", t.Total))
	return domain.OkOf(t), nil
}
