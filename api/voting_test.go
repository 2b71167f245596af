package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/naebak/naebak/api"
	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository/mock"
)

func newVotingHandler(store *mock.Store) *api.VotingHandler {
	return api.NewVotingHandler(store, store, store, store, store)
}

func seedCandidateAccount(t *testing.T, store *mock.Store, username, email, name string, governorateID int64) (int64, int64) {
	t.Helper()
	accountID, candidateID, err := store.CreateCandidateAccount(context.Background(),
		&models.Account{Username: username, Email: email, PasswordHash: "hash"},
		&models.Candidate{Name: name, GovernorateID: governorateID, Constituency: "الدائرة الأولى"})
	if err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	return accountID, candidateID
}

func withVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

func TestVote(t *testing.T) {
	store := mock.NewStore()
	accountID, citizenID := seedCitizenAccount(t, store, "voter", "voter@example.com", "01012345678", "Voter", "secret123")
	_, candidateID := seedCandidateAccount(t, store, "cand", "cand@example.com", "مرشح الاختبار", 1)
	h := newVotingHandler(store)

	vote := func(accountID int64, role, candID, voteType string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPost, "/v1/candidates/"+candID+"/vote", map[string]string{"vote_type": voteType})
		req = withVars(req, map[string]string{"id": candID})
		if role != "" {
			req = asIdentity(req, accountID, role)
		}
		h.Vote(rec, req)
		return rec
	}

	candID := itoa(candidateID)

	if rec := vote(0, "", candID, models.VoteApprove); rec.Code != http.StatusForbidden {
		t.Fatalf("anonymous vote: status = %d", rec.Code)
	}
	if rec := vote(accountID, models.RoleCandidate, candID, models.VoteApprove); rec.Code != http.StatusForbidden {
		t.Fatalf("candidate vote: status = %d", rec.Code)
	}
	if rec := vote(accountID, models.RoleCitizen, candID, "maybe"); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid type: status = %d", rec.Code)
	}
	if rec := vote(accountID, models.RoleCitizen, "999999", models.VoteApprove); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown candidate: status = %d", rec.Code)
	}

	rec := vote(accountID, models.RoleCitizen, candID, models.VoteApprove)
	if rec.Code != http.StatusOK {
		t.Fatalf("first vote: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if resp := decodeBody(t, rec); resp["action"] != models.VoteActionCreated {
		t.Fatalf("first vote action = %v", resp["action"])
	}

	// same type again removes the vote
	rec = vote(accountID, models.RoleCitizen, candID, models.VoteApprove)
	if resp := decodeBody(t, rec); resp["action"] != models.VoteActionRemoved {
		t.Fatalf("repeat vote action = %v", resp["action"])
	}

	if v, _ := store.GetVote(context.Background(), candidateID, citizenID); v != nil {
		t.Fatalf("expected vote removed, got %#v", v)
	}

	// activity entries carry the citizen's account
	var actions []string
	for _, a := range store.Activities {
		actions = append(actions, a.ActionType)
	}
	want := []string{models.ActionVoteCast, models.ActionVoteRemoved}
	if len(actions) != len(want) || actions[0] != want[0] || actions[1] != want[1] {
		t.Fatalf("activity actions = %v, want %v", actions, want)
	}
}

func TestRate(t *testing.T) {
	store := mock.NewStore()
	accountID, citizenID := seedCitizenAccount(t, store, "rater", "rater@example.com", "01055555555", "Rater", "secret123")
	_, candidateID := seedCandidateAccount(t, store, "rated", "rated@example.com", "مرشح مقيم", 2)
	h := newVotingHandler(store)

	candID := itoa(candidateID)
	rate := func(stars int64, comment string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPost, "/v1/candidates/"+candID+"/rate", map[string]any{"stars": stars, "comment": comment})
		req = withVars(req, map[string]string{"id": candID})
		req = asIdentity(req, accountID, models.RoleCitizen)
		h.Rate(rec, req)
		return rec
	}

	if rec := rate(0, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("zero stars: status = %d", rec.Code)
	}
	if rec := rate(6, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("six stars: status = %d", rec.Code)
	}

	rec := rate(3, "معقول")
	if rec.Code != http.StatusOK {
		t.Fatalf("first rating: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if resp := decodeBody(t, rec); resp["action"] != models.VoteActionCreated {
		t.Fatalf("first rating action = %v", resp["action"])
	}

	rec = rate(5, "ممتاز")
	if resp := decodeBody(t, rec); resp["action"] != models.VoteActionUpdated {
		t.Fatalf("second rating action = %v", resp["action"])
	}

	rating, _ := store.GetRating(context.Background(), candidateID, citizenID)
	if rating == nil || rating.Stars != 5 {
		t.Fatalf("expected the rating replaced, got %#v", rating)
	}
}

func TestReplyToRating(t *testing.T) {
	store := mock.NewStore()
	_, citizenID := seedCitizenAccount(t, store, "author", "author@example.com", "01211111111", "Author", "secret123")
	candAccountID, candidateID := seedCandidateAccount(t, store, "owner", "owner@example.com", "المرشح", 1)
	otherAccountID, _ := seedCandidateAccount(t, store, "other", "other@example.com", "مرشح آخر", 2)
	h := newVotingHandler(store)

	if _, err := store.UpsertRating(context.Background(), &models.Rating{CandidateID: candidateID, CitizenID: citizenID, Stars: 2, Comment: "ضعيف"}); err != nil {
		t.Fatalf("seed rating: %v", err)
	}
	rating, _ := store.GetRating(context.Background(), candidateID, citizenID)

	reply := func(accountID int64, role, content string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPost, "/v1/ratings/x/reply", map[string]string{"content": content})
		req = withVars(req, map[string]string{"id": itoa(rating.ID)})
		if role != "" {
			req = asIdentity(req, accountID, role)
		}
		h.ReplyToRating(rec, req)
		return rec
	}

	if rec := reply(0, "", "رد"); rec.Code != http.StatusForbidden {
		t.Fatalf("anonymous reply: status = %d", rec.Code)
	}
	if rec := reply(candAccountID, models.RoleCitizen, "رد"); rec.Code != http.StatusForbidden {
		t.Fatalf("citizen reply: status = %d", rec.Code)
	}
	if rec := reply(candAccountID, models.RoleCandidate, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty reply: status = %d", rec.Code)
	}
	// another candidate cannot answer a rating that is not theirs
	if rec := reply(otherAccountID, models.RoleCandidate, "رد"); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign reply: status = %d", rec.Code)
	}

	if rec := reply(candAccountID, models.RoleCandidate, "شكراً على رأيك"); rec.Code != http.StatusOK {
		t.Fatalf("owner reply: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	stored, _ := store.GetRatingReply(context.Background(), rating.ID)
	if stored == nil || stored.Content != "شكراً على رأيك" {
		t.Fatalf("unexpected stored reply: %#v", stored)
	}

	// a second reply replaces the first
	if rec := reply(candAccountID, models.RoleCandidate, "رد جديد"); rec.Code != http.StatusOK {
		t.Fatalf("second reply: status = %d", rec.Code)
	}
	stored, _ = store.GetRatingReply(context.Background(), rating.ID)
	if stored == nil || stored.Content != "رد جديد" {
		t.Fatalf("expected the reply replaced, got %#v", stored)
	}
}
