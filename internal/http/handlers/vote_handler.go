// Vote HTTP handlers.
//
// This file exposes the REST endpoints for casting votes and reading poll
// results:
//   - POST /polls/{id}/votes    (cast a vote)
//   - GET  /polls/{id}/results  (tally)
//
// Handlers in this file are transport-thin: they validate input, delegate to
// application services, and translate Result failures into HTTP problem
// documents via operation-local status tables.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-polls-backend/internal/domain"
)

// CastVoteRequest is the JSON payload for casting a vote on a poll.
type CastVoteRequest struct {
	// OptionID selects one of the poll's options.
	OptionID string `json:"option_id" binding:"required" example:"fa4dfbe0-c3bf-47bd-b32f-d7de221cf43b"`
}

// castVoteStatus maps expected Cast failures to HTTP statuses.
var castVoteStatus = map[string]int{
	domain.ErrPollNotFound.Code:      http.StatusNotFound,
	domain.ErrVoteDuplicated.Code:    http.StatusConflict,
	domain.ErrVotePollClosed.Code:    http.StatusConflict,
	domain.ErrVoteInvalidOption.Code: http.StatusUnprocessableEntity,
	domain.ErrVoteMissingVoter.Code:  http.StatusUnprocessableEntity,
}

// CastVote godoc
// @ID          castVote
// @Summary     Cast a vote
// @Description Records the caller's single vote on a poll. The voter is
// @Description identified by the X-Voter-ID header (or upstream middleware).
// @Tags        Votes
// @Accept      json
// @Produce     json
// @Param       X-Voter-ID header string                   true "Voter identity" example(voter123)
// @Param       id         path   string                   true "Poll ID (UUID)" format(uuid)
// @Param       body       body   handlers.CastVoteRequest true "Vote payload"
// @Success     201 {object} domain.Vote
// @Failure     400 {object} handlers.ProblemDocument "Malformed payload"
// @Failure     404 {object} handlers.ProblemDocument "Poll not found"
// @Failure     409 {object} handlers.ProblemDocument "Already voted or poll closed"
// @Failure     422 {object} handlers.ProblemDocument "Option not in poll / missing voter"
// @Failure     500 {object} handlers.ProblemDocument "Internal server error"
// @Router      /polls/{id}/votes [post]
func (h *Handlers) CastVote(c *gin.Context) {
	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem(c, http.StatusBadRequest)
		return
	}

	res, err := h.voteSvc.Cast(c.Request.Context(), c.Param("id"), req.OptionID, voterID(c))
	if err != nil {
		internal(c, err)
		return
	}
	if !res.OK() {
		failure(c, res.Err(), castVoteStatus)
		return
	}

	ok(c, http.StatusCreated, res.MustValue())
}

// pollResultsStatus maps expected Results failures to HTTP statuses.
var pollResultsStatus = map[string]int{
	domain.ErrPollNotFound.Code: http.StatusNotFound,
}

// PollResults godoc
// @ID          pollResults
// @Summary     Poll results
// @Description Returns per-option vote counts, including zero-vote options.
// @Tags        Votes
// @Produce     json
// @Param       id path string true "Poll ID (UUID)" format(uuid)
// @Success     200 {object} domain.Tally
// @Failure     404 {object} handlers.ProblemDocument "Poll not found"
// @Failure     500 {object} handlers.ProblemDocument "Internal server error"
// @Router      /polls/{id}/results [get]
func (h *Handlers) PollResults(c *gin.Context) {
	res, err := h.voteSvc.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		internal(c, err)
		return
	}
	if !res.OK() {
		failure(c, res.Err(), pollResultsStatus)
		return
	}
	ok(c, http.StatusOK, res.MustValue())
}
