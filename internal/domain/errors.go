// Package domain defines the core types of the polls application: the
// persistence models, the Error value used for expected failures, and the
// Result tagged union that carries those failures to the transport layer.
//
// This file declares the Error type and the process-wide error registry.
// Every expected failure an operation can produce is declared here once, as
// an immutable constant-like value, grouped by the entity it belongs to.
// Codes are stable and machine-readable ("Poll.DuplicatedTitle"); clients
// branch on them, so they must never be renamed casually.
package domain

// Error describes one expected, client-visible failure. Identity is the
// Code; Description is a human-readable explanation safe to show to users.
// Error values are created at package init and never mutated, which makes
// the registry safe for concurrent reads without synchronization.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ErrNone is the zero Error. A successful Result reports it from Err().
var ErrNone = Error{}

// IsZero reports whether e is the zero Error (i.e. no failure).
func (e Error) IsZero() bool { return e.Code == "" && e.Description == "" }

// Error implements the error interface so an Error can participate in
// logging and wrapping when convenient. Domain code should still pass Error
// values inside Results, not as plain errors.
func (e Error) Error() string { return e.Code + ": " + e.Description }

// Poll-related errors.
var (
	// ErrPollNotFound indicates the requested poll does not exist.
	ErrPollNotFound = Error{Code: "Poll.NotFound", Description: "the poll with the specified identifier was not found"}

	// ErrPollDuplicatedTitle is returned when creating or renaming a poll
	// would collide with another poll's title (titles are unique).
	ErrPollDuplicatedTitle = Error{Code: "Poll.DuplicatedTitle", Description: "a poll with the same title already exists"}

	// ErrPollEmptyTitle is returned when a poll title is empty after
	// normalization.
	ErrPollEmptyTitle = Error{Code: "Poll.EmptyTitle", Description: "the poll title must not be empty"}

	// ErrPollNoOptions is returned when a poll is created with fewer than
	// two answer options.
	ErrPollNoOptions = Error{Code: "Poll.NoOptions", Description: "a poll requires at least two options"}
)

// Option-related errors.
var (
	// ErrOptionNotFound indicates the referenced option does not exist.
	ErrOptionNotFound = Error{Code: "Option.NotFound", Description: "the option with the specified identifier was not found"}

	// ErrOptionDuplicatedLabel is returned when two options of the same poll
	// carry the same label after case folding.
	ErrOptionDuplicatedLabel = Error{Code: "Option.DuplicatedLabel", Description: "poll options must have distinct labels"}
)

// Vote-related errors.
var (
	// ErrVoteDuplicated is returned when a voter attempts to vote twice on
	// the same poll (enforced by a unique (poll_id, voter_id) index).
	ErrVoteDuplicated = Error{Code: "Vote.Duplicated", Description: "this voter has already voted on the poll"}

	// ErrVoteInvalidOption is returned when the chosen option does not
	// belong to the poll being voted on.
	ErrVoteInvalidOption = Error{Code: "Vote.InvalidOption", Description: "the option does not belong to this poll"}

	// ErrVotePollClosed is returned when casting a vote on a closed poll.
	ErrVotePollClosed = Error{Code: "Vote.PollClosed", Description: "the poll is closed and no longer accepts votes"}

	// ErrVoteMissingVoter is returned when no voter identity accompanies a
	// vote submission.
	ErrVoteMissingVoter = Error{Code: "Vote.MissingVoter", Description: "a voter identity is required to cast a vote"}
)
