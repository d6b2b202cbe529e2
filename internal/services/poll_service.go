// Package services – PollService
//
// This file implements the PollService, which manages the lifecycle of
// polls. It validates and normalizes titles and option labels, coordinates
// repository operations for creating, reading, listing (with pagination),
// renaming, closing, and deleting polls, and converts persistence-level
// failures (record not found, unique-title violations) into registry errors
// carried by Result values.
//
// Every fallible operation returns a (Result, error) pair: the Result holds
// the expected domain outcome (success or a registry failure such as
// Poll.DuplicatedTitle), while the error return is reserved for unexpected
// faults (connectivity, corruption). Handlers map Result failures to HTTP
// statuses with an operation-local table and treat the error channel as an
// internal fault.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the poll id and operation outcome.
package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-polls-backend/internal/domain"
)

// PollRepo defines the repository contract required by PollService.
// Implementations are responsible for persistence of poll aggregates.
type PollRepo interface {
	// CreatePoll inserts a new poll row together with its options.
	CreatePoll(ctx context.Context, db *gorm.DB, title, note string, optionLabels []string) (*domain.Poll, error)

	// GetPoll fetches a poll by ID with options preloaded.
	GetPoll(ctx context.Context, db *gorm.DB, id string) (*domain.Poll, error)

	// CountPolls returns the total number of polls for pagination.
	CountPolls(ctx context.Context, db *gorm.DB) (int64, error)

	// ListPollsPage returns a page of polls.
	ListPollsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Poll, error)

	// UpdatePollTitle renames a poll.
	UpdatePollTitle(ctx context.Context, db *gorm.DB, id, title string) error

	// ClosePoll marks a poll closed (idempotent).
	ClosePoll(ctx context.Context, db *gorm.DB, id string) error

	// DeletePoll soft-deletes a poll.
	DeletePoll(ctx context.Context, db *gorm.DB, id string) error
}

// PollResult is the outcome type shared by most PollService operations.
type PollResult = domain.ValueResult[*domain.Poll]

// PollService provides poll-level operations such as creating, listing,
// renaming, closing, and deleting polls. It enforces title and option rules
// and owns the translation from persistence errors to registry failures.
type PollService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the poll repository used by this service.
	Repo PollRepo

	// TitleMaxLen caps stored titles by rune length.
	TitleMaxLen int
	// MinOptions is the smallest accepted option count (defaults to 2).
	MinOptions int
	// LabelLocale selects the case-folding locale for option label
	// comparison.
	LabelLocale language.Tag
}

// NewPollService constructs a PollService with sane defaults.
func NewPollService(db *gorm.DB, r PollRepo) *PollService {
	return &PollService{
		DB:          db,
		Repo:        r,
		TitleMaxLen: 120,
		MinOptions:  2,
		LabelLocale: language.Und,
	}
}

// Create validates the title and option labels and inserts a new poll.
//
// Failure codes:
//   - Poll.EmptyTitle        when the title is blank after normalization
//   - Poll.NoOptions         when fewer than MinOptions labels survive
//   - Option.DuplicatedLabel when two labels collide after case folding
//   - Poll.DuplicatedTitle   when the unique title index rejects the insert
func (s *PollService) Create(ctx context.Context, title, note string, optionLabels []string) (PollResult, error) {
	tr := otel.Tracer("services/PollService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.Int("poll.options", len(optionLabels))),
	)
	defer span.End()

	title = normalizeTitle(title)
	if title == "" {
		return domain.FailOf[*domain.Poll](domain.ErrPollEmptyTitle), nil
	}

	labels, dupe := s.normalizeLabels(optionLabels)
	if dupe {
		return domain.FailOf[*domain.Poll](domain.ErrOptionDuplicatedLabel), nil
	}
	min := s.MinOptions
	if min <= 0 {
		min = 2
	}
	if len(labels) < min {
		return domain.FailOf[*domain.Poll](domain.ErrPollNoOptions), nil
	}

	p, err := s.Repo.CreatePoll(ctx, s.DB, s.clip(title), strings.TrimSpace(note), labels)
	if err != nil {
		if isDuplicate(err) {
			return domain.FailOf[*domain.Poll](domain.ErrPollDuplicatedTitle), nil
		}
		span.RecordError(err)
		return PollResult{}, err
	}
	span.SetAttributes(attribute.String("poll.id", p.ID))
	return domain.OkOf(p), nil
}

// Get fetches a poll by ID with options preloaded.
//
// Failure codes: Poll.NotFound.
func (s *PollService) Get(ctx context.Context, id string) (PollResult, error) {
	tr := otel.Tracer("services/PollService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("poll.id", id)),
	)
	defer span.End()

	p, err := s.Repo.GetPoll(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return domain.FailOf[*domain.Poll](domain.ErrPollNotFound), nil
		}
		span.RecordError(err)
		return PollResult{}, err
	}
	return domain.OkOf(p), nil
}

// ListPage returns a page of polls plus the total count. Listing has no
// expected domain failure, so there is no Result: a fault here is an
// operator problem, not a client one.
func (s *PollService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Poll, int64, error) {
	tr := otel.Tracer("services/PollService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountPolls(ctx, s.DB)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Poll{}, 0, nil
	}

	items, err := s.Repo.ListPollsPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		span.RecordError(err)
	}
	return items, total, err
}

// Rename updates a poll's title after the same validation as Create.
//
// Failure codes: Poll.NotFound, Poll.EmptyTitle, Poll.DuplicatedTitle.
func (s *PollService) Rename(ctx context.Context, id, title string) (PollResult, error) {
	tr := otel.Tracer("services/PollService")
	ctx, span := tr.Start(ctx, "Rename",
		trace.WithAttributes(attribute.String("poll.id", id)),
	)
	defer span.End()

	title = normalizeTitle(title)
	if title == "" {
		return domain.FailOf[*domain.Poll](domain.ErrPollEmptyTitle), nil
	}

	if err := s.Repo.UpdatePollTitle(ctx, s.DB, id, s.clip(title)); err != nil {
		switch {
		case isNotFound(err):
			return domain.FailOf[*domain.Poll](domain.ErrPollNotFound), nil
		case isDuplicate(err):
			return domain.FailOf[*domain.Poll](domain.ErrPollDuplicatedTitle), nil
		}
		span.RecordError(err)
		return PollResult{}, err
	}

	p, err := s.Repo.GetPoll(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			// Deleted between the update and the read; report as missing.
			return domain.FailOf[*domain.Poll](domain.ErrPollNotFound), nil
		}
		span.RecordError(err)
		return PollResult{}, err
	}
	return domain.OkOf(p), nil
}

// Close marks a poll closed. Closing an already closed poll succeeds.
//
// Failure codes: Poll.NotFound.
func (s *PollService) Close(ctx context.Context, id string) (PollResult, error) {
	tr := otel.Tracer("services/PollService")
	ctx, span := tr.Start(ctx, "Close",
		trace.WithAttributes(attribute.String("poll.id", id)),
	)
	defer span.End()

	if err := s.Repo.ClosePoll(ctx, s.DB, id); err != nil {
		if isNotFound(err) {
			return domain.FailOf[*domain.Poll](domain.ErrPollNotFound), nil
		}
		span.RecordError(err)
		return PollResult{}, err
	}

	p, err := s.Repo.GetPoll(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return domain.FailOf[*domain.Poll](domain.ErrPollNotFound), nil
		}
		span.RecordError(err)
		return PollResult{}, err
	}
	return domain.OkOf(p), nil
}

// Delete soft-deletes a poll.
//
// Failure codes: Poll.NotFound.
func (s *PollService) Delete(ctx context.Context, id string) (domain.Result, error) {
	tr := otel.Tracer("services/PollService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("poll.id", id)),
	)
	defer span.End()

	if err := s.Repo.DeletePoll(ctx, s.DB, id); err != nil {
		if isNotFound(err) {
			return domain.Fail(domain.ErrPollNotFound), nil
		}
		span.RecordError(err)
		return domain.Result{}, err
	}
	return domain.Ok(), nil
}

// clip truncates a poll title to the configured maximum rune length.
func (s *PollService) clip(title string) string {
	if s.TitleMaxLen > 0 && utf8.RuneCountInString(title) > s.TitleMaxLen {
		return string([]rune(title)[:s.TitleMaxLen])
	}
	return title
}

// normalizeLabels trims and collapses whitespace in option labels, drops
// empties, and reports whether two labels collide after locale-aware case
// folding ("Yes" vs "YES").
func (s *PollService) normalizeLabels(labels []string) (out []string, dupe bool) {
	folder := cases.Lower(s.labelLocaleOrDefault())
	seen := make(map[string]struct{}, len(labels))

	for _, l := range labels {
		l = normalizeTitle(l)
		if l == "" {
			continue
		}
		key := folder.String(l)
		if _, ok := seen[key]; ok {
			return nil, true
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out, false
}

// labelLocaleOrDefault returns the configured folding locale or English if unset.
func (s *PollService) labelLocaleOrDefault() language.Tag {
	if s.LabelLocale == language.Und {
		return language.English
	}
	return s.LabelLocale
}

// normalizeTitle trims whitespace and collapses multiple spaces to one.
func normalizeTitle(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
