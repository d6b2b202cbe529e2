// Package domain defines the persistence models for polls, options, and
// votes. These types are mapped with GORM and form the core data layer of
// the polls application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Poll represents a question with a fixed set of answer options. Titles are
// globally unique; attempting to persist a second poll with the same title
// surfaces as ErrPollDuplicatedTitle at the service layer.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Title: human-readable poll title; unique across live rows.
//   - Note: optional free-text context shown alongside the question.
//   - Closed: when true the poll no longer accepts votes.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Poll struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Title     string         `json:"title"      gorm:"type:varchar(255);not null;uniqueIndex:ux_polls_title"`
	Note      string         `json:"note,omitempty" gorm:"type:text"`
	Closed    bool           `json:"closed"     gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`

	// Options are the poll's answers, cascade-deleted with the poll.
	Options []Option `json:"options,omitempty" gorm:"foreignKey:PollID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Poll.
func (Poll) TableName() string { return "polls" }

// Option represents one selectable answer within a poll.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - PollID: foreign key to the owning poll (indexed).
//   - Label: display text of the answer.
//   - Position: zero-based ordering within the poll.
type Option struct {
	ID        string         `json:"id"       gorm:"type:char(36);primaryKey"`
	PollID    string         `json:"poll_id"  gorm:"type:char(36);not null;index:idx_poll_options"`
	Label     string         `json:"label"    gorm:"type:varchar(255);not null"`
	Position  int            `json:"position" gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"        gorm:"index"`
}

// TableName returns the database table name for Option.
func (Option) TableName() string { return "options" }

// Vote records a voter's single choice on a poll. A voter may vote at most
// once per poll (enforced by the unique (poll_id, voter_id) index); a second
// attempt surfaces as ErrVoteDuplicated at the service layer.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - PollID: foreign key to the poll (unique per voter).
//   - OptionID: the chosen option; must belong to PollID.
//   - VoterID: caller-supplied voter identity (unique per poll).
type Vote struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	PollID    string         `json:"poll_id"   gorm:"type:char(36);not null;index;uniqueIndex:ux_votes_poll_voter"`
	OptionID  string         `json:"option_id" gorm:"type:char(36);not null;index"`
	VoterID   string         `json:"voter_id"  gorm:"type:varchar(64);not null;uniqueIndex:ux_votes_poll_voter"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`

	// Poll is the parent question. Votes are cascade-deleted if their poll
	// is removed.
	Poll Poll `json:"-" gorm:"foreignKey:PollID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Vote.
func (Vote) TableName() string { return "votes" }

// OptionCount is one row of a poll tally: an option and how many votes it
// has received. Produced by the repository's aggregation query.
type OptionCount struct {
	OptionID string `json:"option_id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
	Votes    int64  `json:"votes"`
}

// Tally is the aggregated outcome of a poll.
type Tally struct {
	PollID  string        `json:"poll_id"`
	Total   int64         `json:"total"`
	Options []OptionCount `json:"options"`
}
