// Poll HTTP handlers.
//
// This file exposes REST endpoints for poll resources:
//   - POST   /polls              (create)
//   - GET    /polls              (list, paginated)
//   - GET    /polls/{id}         (read)
//   - PUT    /polls/{id}/title   (rename)
//   - POST   /polls/{id}/close   (close voting)
//   - DELETE /polls/{id}         (soft delete)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate Result values into HTTP responses. Each operation
// declares its own code→status table; there is no global mapping.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-polls-backend/internal/domain"
	"github.com/tbourn/go-polls-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// PollService defines poll lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts. The Result return carries
// expected domain failures; the error return carries unexpected faults only.
type PollService interface {
	// Create starts a new poll with a title, optional note, and options.
	Create(ctx context.Context, title, note string, options []string) (domain.ValueResult[*domain.Poll], error)
	// Get returns a poll with its options.
	Get(ctx context.Context, id string) (domain.ValueResult[*domain.Poll], error)
	// ListPage returns a page of polls and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Poll, int64, error)
	// Rename changes a poll's title.
	Rename(ctx context.Context, id, title string) (domain.ValueResult[*domain.Poll], error)
	// Close stops a poll from accepting votes.
	Close(ctx context.Context, id string) (domain.ValueResult[*domain.Poll], error)
	// Delete soft-deletes a poll.
	Delete(ctx context.Context, id string) (domain.Result, error)
}

// VoteService defines vote operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type VoteService interface {
	// Cast records a voter's choice on a poll.
	Cast(ctx context.Context, pollID, optionID, voterID string) (domain.ValueResult[*domain.Vote], error)
	// Results tallies votes per option.
	Results(ctx context.Context, pollID string) (domain.ValueResult[*domain.Tally], error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for polls and votes. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	pollSvc PollService
	voteSvc VoteService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(pollSvc PollService, voteSvc VoteService) *Handlers {
	return &Handlers{pollSvc: pollSvc, voteSvc: voteSvc}
}

// voterID extracts the voter identity from Gin context (set by upstream
// middleware). If absent, it falls back to the "X-Voter-ID" header. It never
// touches c.Request if it's nil. An empty return means anonymous; whether
// that is acceptable is the operation's call (casting a vote rejects it).
func voterID(c *gin.Context) string {
	if v, ok := c.Get("voterID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-Voter-ID")); h != "" {
			return h
		}
	}
	return ""
}

//
// DTOs
//

// CreatePollRequest is the JSON payload for creating a poll.
type CreatePollRequest struct {
	// Title is the poll question; unique across polls (1–255 chars).
	Title string `json:"title" binding:"required,min=1,max=255" example:"Where should we host the offsite?"`
	// Note optionally adds context shown below the question.
	Note string `json:"note" example:"Budget caps at 200/head"`
	// Options are the selectable answers (validated by the service).
	Options []string `json:"options" binding:"required" example:"Lisbon,Prague,Riga"`
}

// RenamePollRequest is the JSON payload for renaming a poll.
type RenamePollRequest struct {
	// Title is the new poll question (1–255 chars).
	Title string `json:"title" binding:"required,min=1,max=255" example:"Offsite city (final round)"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListPollsResponse wraps a page of polls and pagination information.
type ListPollsResponse struct {
	Polls      []domain.Poll `json:"polls"`
	Pagination Pagination    `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	pageSize = utils.ClampInt(pageSize, 1, maxPageSize)
	return page, pageSize
}

//
// Endpoints
//

// createPollStatus maps expected Create failures to HTTP statuses.
var createPollStatus = map[string]int{
	domain.ErrPollDuplicatedTitle.Code:   http.StatusConflict,
	domain.ErrPollEmptyTitle.Code:        http.StatusUnprocessableEntity,
	domain.ErrPollNoOptions.Code:         http.StatusUnprocessableEntity,
	domain.ErrOptionDuplicatedLabel.Code: http.StatusUnprocessableEntity,
}

// CreatePoll godoc
// @ID          createPoll
// @Summary     Create a poll
// @Description Creates a poll with a unique title and at least two options.
// @Tags        Polls
// @Accept      json
// @Produce     json
// @Param       body body handlers.CreatePollRequest true "Poll payload"
// @Success     201 {object} domain.Poll
// @Failure     400 {object} handlers.ProblemDocument "Malformed payload"
// @Failure     409 {object} handlers.ProblemDocument "Duplicate title"
// @Failure     422 {object} handlers.ProblemDocument "Validation failure"
// @Failure     500 {object} handlers.ProblemDocument "Internal server error"
// @Router      /polls [post]
func (h *Handlers) CreatePoll(c *gin.Context) {
	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem(c, http.StatusBadRequest)
		return
	}

	res, err := h.pollSvc.Create(c.Request.Context(), req.Title, req.Note, req.Options)
	if err != nil {
		internal(c, err)
		return
	}
	if !res.OK() {
		failure(c, res.Err(), createPollStatus)
		return
	}

	ok(c, http.StatusCreated, res.MustValue())
}

// getPollStatus maps expected Get failures to HTTP statuses.
var getPollStatus = map[string]int{
	domain.ErrPollNotFound.Code: http.StatusNotFound,
}

// GetPoll godoc
// @ID          getPoll
// @Summary     Get a poll
// @Description Returns a poll with its options.
// @Tags        Polls
// @Produce     json
// @Param       id path string true "Poll ID (UUID)" format(uuid)
// @Success     200 {object} domain.Poll
// @Failure     404 {object} handlers.ProblemDocument "Poll not found"
// @Failure     500 {object} handlers.ProblemDocument "Internal server error"
// @Router      /polls/{id} [get]
func (h *Handlers) GetPoll(c *gin.Context) {
	res, err := h.pollSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		internal(c, err)
		return
	}
	if !res.OK() {
		failure(c, res.Err(), getPollStatus)
		return
	}
	ok(c, http.StatusOK, res.MustValue())
}

// ListPolls godoc
// @ID          listPolls
// @Summary     List polls
// @Description Returns a page of polls ordered by creation time descending.
// @Tags        Polls
// @Produce     json
// @Param       page      query int false "Page (1-based)"    default(1)
// @Param       page_size query int false "Page size (1-100)" default(20)
// @Success     200 {object} handlers.ListPollsResponse
// @Failure     500 {object} handlers.ProblemDocument "Internal server error"
// @Router      /polls [get]
func (h *Handlers) ListPolls(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.pollSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		internal(c, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListPollsResponse{
		Polls: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// renamePollStatus maps expected Rename failures to HTTP statuses.
var renamePollStatus = map[string]int{
	domain.ErrPollNotFound.Code:        http.StatusNotFound,
	domain.ErrPollDuplicatedTitle.Code: http.StatusConflict,
	domain.ErrPollEmptyTitle.Code:      http.StatusUnprocessableEntity,
}

// RenamePoll godoc
// @ID          renamePoll
// @Summary     Rename a poll
// @Description Changes a poll's title; the new title must remain unique.
// @Tags        Polls
// @Accept      json
// @Produce     json
// @Param       id   path string                       true "Poll ID (UUID)" format(uuid)
// @Param       body body handlers.RenamePollRequest   true "New title"
// @Success     200 {object} domain.Poll
// @Failure     400 {object} handlers.ProblemDocument "Malformed payload"
// @Failure     404 {object} handlers.ProblemDocument "Poll not found"
// @Failure     409 {object} handlers.ProblemDocument "Duplicate title"
// @Failure     500 {object} handlers.ProblemDocument "Internal server error"
// @Router      /polls/{id}/title [put]
func (h *Handlers) RenamePoll(c *gin.Context) {
	var req RenamePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem(c, http.StatusBadRequest)
		return
	}

	res, err := h.pollSvc.Rename(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		internal(c, err)
		return
	}
	if !res.OK() {
		failure(c, res.Err(), renamePollStatus)
		return
	}
	ok(c, http.StatusOK, res.MustValue())
}

// closePollStatus maps expected Close failures to HTTP statuses.
var closePollStatus = map[string]int{
	domain.ErrPollNotFound.Code: http.StatusNotFound,
}

// ClosePoll godoc
// @ID          closePoll
// @Summary     Close a poll
// @Description Stops the poll from accepting votes. Closing twice is a no-op.
// @Tags        Polls
// @Produce     json
// @Param       id path string true "Poll ID (UUID)" format(uuid)
// @Success     200 {object} domain.Poll
// @Failure     404 {object} handlers.ProblemDocument "Poll not found"
// @Failure     500 {object} handlers.ProblemDocument "Internal server error"
// @Router      /polls/{id}/close [post]
func (h *Handlers) ClosePoll(c *gin.Context) {
	res, err := h.pollSvc.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		internal(c, err)
		return
	}
	if !res.OK() {
		failure(c, res.Err(), closePollStatus)
		return
	}
	ok(c, http.StatusOK, res.MustValue())
}

// deletePollStatus maps expected Delete failures to HTTP statuses.
var deletePollStatus = map[string]int{
	domain.ErrPollNotFound.Code: http.StatusNotFound,
}

// DeletePoll godoc
// @ID          deletePoll
// @Summary     Delete a poll
// @Description Soft-deletes a poll; it disappears from reads but stays for audit.
// @Tags        Polls
// @Produce     json
// @Param       id path string true "Poll ID (UUID)" format(uuid)
// @Success     204 {string} string "No Content"
// @Failure     404 {object} handlers.ProblemDocument "Poll not found"
// @Failure     500 {object} handlers.ProblemDocument "Internal server error"
// @Router      /polls/{id} [delete]
func (h *Handlers) DeletePoll(c *gin.Context) {
	res, err := h.pollSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		internal(c, err)
		return
	}
	if !res.OK() {
		failure(c, res.Err(), deletePollStatus)
		return
	}
	noContent(c)
}
