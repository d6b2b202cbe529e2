package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-polls-backend/internal/domain"
	"github.com/tbourn/go-polls-backend/internal/repo"
	"github.com/tbourn/go-polls-backend/internal/services"
)

func TestCastVote_FullLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	voteSvc := &services.VoteService{DB: db}
	h := New(stubPollSvc{}, voteSvc)
	r := gin.New()
	r.POST("/polls/:id/votes", h.CastVote)
	r.GET("/polls/:id/results", h.PollResults)

	poll, err := repo.CreatePoll(context.Background(), db, "Lunch spot", "", []string{"Ramen", "Tapas", "Pizza"})
	if err != nil {
		t.Fatalf("seed poll: %v", err)
	}
	opt := poll.Options[0]

	cast := func(voter, optionID string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		body, _ := json.Marshal(CastVoteRequest{OptionID: optionID})
		req := httptest.NewRequest(http.MethodPost, "/polls/"+poll.ID+"/votes", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		if voter != "" {
			req.Header.Set("X-Voter-ID", voter)
		}
		r.ServeHTTP(w, req)
		return w
	}

	// Success -> 201 with the vote row
	w := cast("alice", opt.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("cast -> %d body=%s", w.Code, w.Body.String())
	}
	var v domain.Vote
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal vote: %v", err)
	}
	if v.PollID != poll.ID || v.OptionID != opt.ID || v.VoterID != "alice" {
		t.Fatalf("vote unexpected: %+v", v)
	}

	// Same voter again -> 409 Vote.Duplicated
	w2 := cast("alice", poll.Options[1].ID)
	if w2.Code != http.StatusConflict {
		t.Fatalf("duplicate vote -> %d", w2.Code)
	}
	var doc ProblemDocument
	if err := json.Unmarshal(w2.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal problem: %v", err)
	}
	if len(doc.Errors) != 1 || doc.Errors[0].Code != "Vote.Duplicated" {
		t.Fatalf("duplicate errors unexpected: %+v", doc.Errors)
	}

	// Missing voter header -> 422 Vote.MissingVoter
	w3 := cast("", opt.ID)
	if w3.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing voter -> %d", w3.Code)
	}

	// Option from another poll -> 422 Vote.InvalidOption
	other, err := repo.CreatePoll(context.Background(), db, "Other poll", "", []string{"X", "Y"})
	if err != nil {
		t.Fatalf("seed other poll: %v", err)
	}
	w4 := cast("bob", other.Options[0].ID)
	if w4.Code != http.StatusUnprocessableEntity {
		t.Fatalf("foreign option -> %d", w4.Code)
	}

	// Unknown poll -> 404 Poll.NotFound
	w5 := httptest.NewRecorder()
	body, _ := json.Marshal(CastVoteRequest{OptionID: opt.ID})
	req5 := httptest.NewRequest(http.MethodPost, "/polls/"+uuid.NewString()+"/votes", bytes.NewBuffer(body))
	req5.Header.Set("Content-Type", "application/json")
	req5.Header.Set("X-Voter-ID", "carol")
	r.ServeHTTP(w5, req5)
	if w5.Code != http.StatusNotFound {
		t.Fatalf("unknown poll -> %d", w5.Code)
	}

	// Bad JSON -> 400
	w6 := httptest.NewRecorder()
	req6 := httptest.NewRequest(http.MethodPost, "/polls/"+poll.ID+"/votes", bytes.NewBufferString("{bad"))
	req6.Header.Set("Content-Type", "application/json")
	req6.Header.Set("X-Voter-ID", "dave")
	r.ServeHTTP(w6, req6)
	if w6.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w6.Code)
	}
}

func TestCastVote_ClosedPoll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	voteSvc := &services.VoteService{DB: db}
	h := New(stubPollSvc{}, voteSvc)
	r := gin.New()
	r.POST("/polls/:id/votes", h.CastVote)

	poll, err := repo.CreatePoll(context.Background(), db, "Closed poll", "", []string{"A", "B"})
	if err != nil {
		t.Fatalf("seed poll: %v", err)
	}
	if err := repo.ClosePoll(context.Background(), db, poll.ID); err != nil {
		t.Fatalf("close poll: %v", err)
	}

	w := httptest.NewRecorder()
	body, _ := json.Marshal(CastVoteRequest{OptionID: poll.Options[0].ID})
	req := httptest.NewRequest(http.MethodPost, "/polls/"+poll.ID+"/votes", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Voter-ID", "alice")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("vote on closed poll -> %d", w.Code)
	}
	var doc ProblemDocument
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal problem: %v", err)
	}
	if len(doc.Errors) != 1 || doc.Errors[0].Code != "Vote.PollClosed" {
		t.Fatalf("closed errors unexpected: %+v", doc.Errors)
	}
}

func TestPollResults_IncludesZeroVoteOptions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	voteSvc := &services.VoteService{DB: db}
	h := New(stubPollSvc{}, voteSvc)
	r := gin.New()
	r.POST("/polls/:id/votes", h.CastVote)
	r.GET("/polls/:id/results", h.PollResults)

	poll, err := repo.CreatePoll(context.Background(), db, "Results poll", "", []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("seed poll: %v", err)
	}

	// Two votes on option A, one on B, none on C.
	for voter, optIdx := range map[string]int{"v1": 0, "v2": 0, "v3": 1} {
		w := httptest.NewRecorder()
		body, _ := json.Marshal(CastVoteRequest{OptionID: poll.Options[optIdx].ID})
		req := httptest.NewRequest(http.MethodPost, "/polls/"+poll.ID+"/votes", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Voter-ID", voter)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("cast %s -> %d", voter, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/polls/"+poll.ID+"/results", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("results -> %d body=%s", w.Code, w.Body.String())
	}
	var tally domain.Tally
	if err := json.Unmarshal(w.Body.Bytes(), &tally); err != nil {
		t.Fatalf("unmarshal tally: %v", err)
	}
	if tally.PollID != poll.ID || tally.Total != 3 {
		t.Fatalf("tally header unexpected: %+v", tally)
	}
	if len(tally.Options) != 3 {
		t.Fatalf("expected all options in tally, got %d", len(tally.Options))
	}
	// Options arrive ordered by position.
	if tally.Options[0].Votes != 2 || tally.Options[1].Votes != 1 || tally.Options[2].Votes != 0 {
		t.Fatalf("per-option counts unexpected: %+v", tally.Options)
	}

	// Unknown poll -> 404
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/polls/"+uuid.NewString()+"/results", nil))
	if w2.Code != http.StatusNotFound {
		t.Fatalf("results for unknown poll -> %d", w2.Code)
	}
}
