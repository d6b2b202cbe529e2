package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/tbourn/go-polls-backend/internal/domain"
)

func seedPoll(t *testing.T, svc *PollService, title string) *domain.Poll {
	t.Helper()
	res, err := svc.Create(context.Background(), title, "", []string{"yes", "no"})
	if err != nil || !res.OK() {
		t.Fatalf("seed poll %q: err=%v res=%+v", title, err, res.Err())
	}
	return res.MustValue()
}

func TestVoteCast_SuccessThenDuplicate(t *testing.T) {
	db := newServiceDB(t)
	polls := NewPollService(db, testPollRepo{})
	votes := &VoteService{DB: db}
	ctx := context.Background()

	p := seedPoll(t, polls, "Tabs or spaces?")

	res, err := votes.Cast(ctx, p.ID, p.Options[0].ID, "alice")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if !res.OK() {
		t.Fatalf("Cast failed: %+v", res.Err())
	}
	if res.MustValue().VoterID != "alice" {
		t.Fatalf("voter = %q; want alice", res.MustValue().VoterID)
	}

	// Same voter again, even on the other option: Vote.Duplicated.
	dup, err := votes.Cast(ctx, p.ID, p.Options[1].ID, "alice")
	if err != nil {
		t.Fatalf("duplicate Cast returned fault: %v", err)
	}
	if dup.OK() || dup.Err() != domain.ErrVoteDuplicated {
		t.Fatalf("Err() = %+v; want %+v", dup.Err(), domain.ErrVoteDuplicated)
	}
	if dup.Value() != nil {
		t.Fatalf("failed result must not carry a payload")
	}
}

func TestVoteCast_Validation(t *testing.T) {
	db := newServiceDB(t)
	polls := NewPollService(db, testPollRepo{})
	votes := &VoteService{DB: db}
	ctx := context.Background()

	p := seedPoll(t, polls, "Open poll")
	other := seedPoll(t, polls, "Other poll")

	// Missing voter
	res, err := votes.Cast(ctx, p.ID, p.Options[0].ID, "   ")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if res.OK() || res.Err() != domain.ErrVoteMissingVoter {
		t.Fatalf("Err() = %+v; want %+v", res.Err(), domain.ErrVoteMissingVoter)
	}

	// Unknown poll
	res, err = votes.Cast(ctx, uuid.NewString(), p.Options[0].ID, "bob")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if res.OK() || res.Err() != domain.ErrPollNotFound {
		t.Fatalf("Err() = %+v; want %+v", res.Err(), domain.ErrPollNotFound)
	}

	// Unknown option
	res, err = votes.Cast(ctx, p.ID, uuid.NewString(), "bob")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if res.OK() || res.Err() != domain.ErrVoteInvalidOption {
		t.Fatalf("Err() = %+v; want %+v", res.Err(), domain.ErrVoteInvalidOption)
	}

	// Option belonging to a different poll
	res, err = votes.Cast(ctx, p.ID, other.Options[0].ID, "bob")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if res.OK() || res.Err() != domain.ErrVoteInvalidOption {
		t.Fatalf("Err() = %+v; want %+v", res.Err(), domain.ErrVoteInvalidOption)
	}
}

func TestVoteCast_ClosedPoll(t *testing.T) {
	db := newServiceDB(t)
	polls := NewPollService(db, testPollRepo{})
	votes := &VoteService{DB: db}
	ctx := context.Background()

	p := seedPoll(t, polls, "Closing soon")
	if res, err := polls.Close(ctx, p.ID); err != nil || !res.OK() {
		t.Fatalf("Close: err=%v res=%+v", err, res.Err())
	}

	res, err := votes.Cast(ctx, p.ID, p.Options[0].ID, "carol")
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if res.OK() || res.Err() != domain.ErrVotePollClosed {
		t.Fatalf("Err() = %+v; want %+v", res.Err(), domain.ErrVotePollClosed)
	}
}

func TestVoteResults_TallyAndNotFound(t *testing.T) {
	db := newServiceDB(t)
	polls := NewPollService(db, testPollRepo{})
	votes := &VoteService{DB: db}
	ctx := context.Background()

	p := seedPoll(t, polls, "Lunch?")
	for _, voter := range []string{"a", "b", "c"} {
		if res, err := votes.Cast(ctx, p.ID, p.Options[0].ID, voter); err != nil || !res.OK() {
			t.Fatalf("vote %s: err=%v res=%+v", voter, err, res.Err())
		}
	}

	res, err := votes.Results(ctx, p.ID)
	if err != nil || !res.OK() {
		t.Fatalf("Results: err=%v res=%+v", err, res.Err())
	}
	tally := res.MustValue()
	if tally.Total != 3 {
		t.Fatalf("Total = %d; want 3", tally.Total)
	}
	if len(tally.Options) != 2 {
		t.Fatalf("expected both options in tally, got %d", len(tally.Options))
	}
	if tally.Options[0].Votes != 3 || tally.Options[1].Votes != 0 {
		t.Fatalf("votes = %d/%d; want 3/0", tally.Options[0].Votes, tally.Options[1].Votes)
	}

	miss, err := votes.Results(ctx, uuid.NewString())
	if err != nil {
		t.Fatalf("Results missing: %v", err)
	}
	if miss.OK() || miss.Err() != domain.ErrPollNotFound {
		t.Fatalf("Err() = %+v; want %+v", miss.Err(), domain.ErrPollNotFound)
	}
}
