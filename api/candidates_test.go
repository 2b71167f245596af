package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/naebak/naebak/api"
	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository/mock"
)

func newCandidatesHandler(store *mock.Store) *api.CandidatesHandler {
	return api.NewCandidatesHandler(store, store, store, store, store, store, store, store, 2)
}

func TestListCandidates(t *testing.T) {
	store := mock.NewStore()
	_, voter1 := seedCitizenAccount(t, store, "fan", "fan@example.com", "01012345678", "Fan", "secret123")
	_, voter2 := seedCitizenAccount(t, store, "fan2", "fan2@example.com", "01012345679", "Fanya", "secret123")
	_, voter3 := seedCitizenAccount(t, store, "fan3", "fan3@example.com", "01012345680", "Farid", "secret123")
	_, aliceID := seedCandidateAccount(t, store, "alice", "alice@example.com", "أليس", 1)
	_, badrID := seedCandidateAccount(t, store, "badr", "badr@example.com", "بدر", 2)
	seedCandidateAccount(t, store, "camal", "camal@example.com", "جمال", 2)
	// alice holds more approvals, badr more votes in total
	for _, v := range []struct {
		candidateID, citizenID int64
		voteType               string
	}{
		{aliceID, voter1, models.VoteApprove},
		{aliceID, voter2, models.VoteApprove},
		{badrID, voter1, models.VoteDisapprove},
		{badrID, voter2, models.VoteDisapprove},
		{badrID, voter3, models.VoteApprove},
	} {
		if _, err := store.ToggleVote(context.Background(), v.candidateID, v.citizenID, v.voteType); err != nil {
			t.Fatalf("seed vote: %v", err)
		}
	}
	h := newCandidatesHandler(store)

	list := func(query string) (*httptest.ResponseRecorder, map[string]any) {
		rec := httptest.NewRecorder()
		h.ListCandidates(rec, jsonRequest(t, http.MethodGet, "/v1/candidates"+query, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("list %q: status = %d (body %s)", query, rec.Code, rec.Body.String())
		}
		return rec, decodeBody(t, rec)
	}

	// page size 2 splits 3 candidates over 2 pages
	_, resp := list("")
	if resp["total"].(float64) != 3 || resp["pages"].(float64) != 2 {
		t.Fatalf("total = %v, pages = %v", resp["total"], resp["pages"])
	}
	if n := len(resp["candidates"].([]any)); n != 2 {
		t.Fatalf("page 1 size = %d", n)
	}
	_, resp = list("?page=2")
	if n := len(resp["candidates"].([]any)); n != 1 {
		t.Fatalf("page 2 size = %d", n)
	}

	// sorting by votes orders on the total cast, not approvals
	_, resp = list("?sort=votes")
	first := resp["candidates"].([]any)[0].(map[string]any)
	cand := first["candidate"].(map[string]any)
	if cand["name"] != "بدر" {
		t.Fatalf("first by votes = %v", cand["name"])
	}
	if first["governorate_name"] == "" {
		t.Fatalf("expected a governorate name on list items")
	}

	_, resp = list("?governorate_id=2")
	if resp["total"].(float64) != 2 {
		t.Fatalf("governorate filter total = %v", resp["total"])
	}

	rec := httptest.NewRecorder()
	h.ListCandidates(rec, jsonRequest(t, http.MethodGet, "/v1/candidates?governorate_id=99", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid governorate: status = %d", rec.Code)
	}
}

func TestGetCandidate(t *testing.T) {
	store := mock.NewStore()
	accountID, citizenID := seedCitizenAccount(t, store, "viewer", "viewer@example.com", "01055555555", "Viewer", "secret123")
	_, candidateID := seedCandidateAccount(t, store, "shown", "shown@example.com", "المعروض", 3)
	if _, err := store.ToggleVote(context.Background(), candidateID, citizenID, models.VoteApprove); err != nil {
		t.Fatalf("seed vote: %v", err)
	}
	if _, err := store.CreatePromise(context.Background(), &models.ElectoralPromise{CandidateID: candidateID, Title: "وعد", DisplayOrder: 1}); err != nil {
		t.Fatalf("seed promise: %v", err)
	}
	h := newCandidatesHandler(store)

	get := func(id string, asCitizen bool) (*httptest.ResponseRecorder, map[string]any) {
		rec := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodGet, "/v1/candidates/"+id, nil)
		req = withVars(req, map[string]string{"id": id})
		if asCitizen {
			req = asIdentity(req, accountID, models.RoleCitizen)
		}
		h.GetCandidate(rec, req)
		if rec.Code != http.StatusOK {
			return rec, nil
		}
		return rec, decodeBody(t, rec)
	}

	if rec, _ := get("999999", false); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown candidate: status = %d", rec.Code)
	}

	// anonymous view has no personalization
	_, resp := get(itoa(candidateID), false)
	if resp["my_vote"] != nil {
		t.Fatalf("anonymous my_vote = %v", resp["my_vote"])
	}
	if n := len(resp["promises"].([]any)); n != 1 {
		t.Fatalf("promises = %d", n)
	}

	// a logged-in citizen sees their own vote
	_, resp = get(itoa(candidateID), true)
	myVote, ok := resp["my_vote"].(map[string]any)
	if !ok || myVote["vote_type"] != models.VoteApprove {
		t.Fatalf("my_vote = %v", resp["my_vote"])
	}
}

func TestListGovernorates(t *testing.T) {
	h := newCandidatesHandler(mock.NewStore())

	rec := httptest.NewRecorder()
	h.ListGovernorates(rec, jsonRequest(t, http.MethodGet, "/v1/governorates", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if n := len(resp["governorates"].([]any)); n != 27 {
		t.Fatalf("governorates = %d, want 27", n)
	}

	rec = httptest.NewRecorder()
	h.ListGovernorates(rec, jsonRequest(t, http.MethodGet, "/v1/governorates?group=region", nil))
	resp = decodeBody(t, rec)
	if resp["regions"] == nil {
		t.Fatalf("expected grouped regions")
	}

	rec = httptest.NewRecorder()
	h.GetGovernorate(rec, withVars(jsonRequest(t, http.MethodGet, "/v1/governorates/cairo", nil), map[string]string{"slug": "cairo"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("cairo: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.GetGovernorate(rec, withVars(jsonRequest(t, http.MethodGet, "/v1/governorates/atlantis", nil), map[string]string{"slug": "atlantis"}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown slug: status = %d", rec.Code)
	}
}

func TestUpdateOwnProfile(t *testing.T) {
	store := mock.NewStore()
	candAccountID, candidateID := seedCandidateAccount(t, store, "editor", "editor@example.com", "المحرر", 1)
	h := newCandidatesHandler(store)

	rec := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPut, "/v1/candidate/profile", map[string]any{
		"bio":            "سيرة جديدة",
		"governorate_id": 4,
	})
	req = asIdentity(req, candAccountID, models.RoleCandidate)
	h.UpdateOwnProfile(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	candidate, _ := store.GetCandidateByID(context.Background(), candidateID)
	if candidate.Bio != "سيرة جديدة" || candidate.GovernorateID != 4 {
		t.Fatalf("unexpected candidate: %#v", candidate)
	}
	// fields absent from the body stay untouched
	if candidate.Name != "المحرر" {
		t.Fatalf("name changed unexpectedly: %q", candidate.Name)
	}

	rec = httptest.NewRecorder()
	req = jsonRequest(t, http.MethodPut, "/v1/candidate/profile", map[string]any{"governorate_id": 99})
	req = asIdentity(req, candAccountID, models.RoleCandidate)
	h.UpdateOwnProfile(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid governorate: status = %d", rec.Code)
	}
}

func TestPromiseLifecycle(t *testing.T) {
	store := mock.NewStore()
	ownerID, candidateID := seedCandidateAccount(t, store, "promiser", "promiser@example.com", "الواعد", 1)
	strangerID, _ := seedCandidateAccount(t, store, "rival", "rival@example.com", "المنافس", 2)
	h := newCandidatesHandler(store)

	// create without display order appends to the end
	rec := httptest.NewRecorder()
	req := asIdentity(jsonRequest(t, http.MethodPost, "/v1/candidate/promises", map[string]any{"title": "وعد أول"}), ownerID, models.RoleCandidate)
	h.CreatePromise(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	rec = httptest.NewRecorder()
	req = asIdentity(jsonRequest(t, http.MethodPost, "/v1/candidate/promises", map[string]any{"title": "وعد ثان"}), ownerID, models.RoleCandidate)
	h.CreatePromise(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create second: status = %d", rec.Code)
	}

	promises, _ := store.ListPromisesByCandidate(context.Background(), candidateID)
	if len(promises) != 2 || promises[1].DisplayOrder != 2 {
		t.Fatalf("promises = %#v", promises)
	}
	promiseID := promises[0].ID

	// missing title rejected
	rec = httptest.NewRecorder()
	req = asIdentity(jsonRequest(t, http.MethodPost, "/v1/candidate/promises", map[string]any{"description": "بدون عنوان"}), ownerID, models.RoleCandidate)
	h.CreatePromise(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("untitled: status = %d", rec.Code)
	}

	// another candidate cannot touch it
	rec = httptest.NewRecorder()
	req = asIdentity(jsonRequest(t, http.MethodDelete, "/v1/candidate/promises/x", nil), strangerID, models.RoleCandidate)
	req = withVars(req, map[string]string{"id": itoa(promiseID)})
	h.DeletePromise(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = asIdentity(jsonRequest(t, http.MethodPut, "/v1/candidate/promises/x", map[string]any{"title": "وعد معدل"}), ownerID, models.RoleCandidate)
	req = withVars(req, map[string]string{"id": itoa(promiseID)})
	h.UpdatePromise(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = asIdentity(jsonRequest(t, http.MethodDelete, "/v1/candidate/promises/x", nil), ownerID, models.RoleCandidate)
	req = withVars(req, map[string]string{"id": itoa(promiseID)})
	h.DeletePromise(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}

	promises, _ = store.ListPromisesByCandidate(context.Background(), candidateID)
	if len(promises) != 1 || promises[0].Title != "وعد ثان" {
		t.Fatalf("promises after delete = %#v", promises)
	}
}

func TestServiceHistory(t *testing.T) {
	store := mock.NewStore()
	ownerID, candidateID := seedCandidateAccount(t, store, "served", "served@example.com", "ذو الخبرة", 1)
	h := newCandidatesHandler(store)

	create := func(body map[string]any) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := asIdentity(jsonRequest(t, http.MethodPost, "/v1/candidate/service-history", body), ownerID, models.RoleCandidate)
		h.CreateServiceHistory(rec, req)
		return rec
	}

	if rec := create(map[string]any{"start_year": 2010}); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing position: status = %d", rec.Code)
	}
	if rec := create(map[string]any{"position": "عضو مجلس", "start_year": 2020, "end_year": 2015}); rec.Code != http.StatusBadRequest {
		t.Fatalf("end before start: status = %d", rec.Code)
	}
	if rec := create(map[string]any{"position": "عضو مجلس", "start_year": 2015, "end_year": 2020}); rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d (body %s)", rec.Code, rec.Body.String())
	}

	entries, _ := store.ListServiceHistoryByCandidate(context.Background(), candidateID)
	if len(entries) != 1 || entries[0].Position != "عضو مجلس" {
		t.Fatalf("entries = %#v", entries)
	}

	rec := httptest.NewRecorder()
	req := asIdentity(jsonRequest(t, http.MethodDelete, "/v1/candidate/service-history/x", nil), ownerID, models.RoleCandidate)
	req = withVars(req, map[string]string{"id": itoa(entries[0].ID)})
	h.DeleteServiceHistory(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	if entries, _ = store.ListServiceHistoryByCandidate(context.Background(), candidateID); len(entries) != 0 {
		t.Fatalf("entries after delete = %#v", entries)
	}
}

func TestDashboard(t *testing.T) {
	store := mock.NewStore()
	_, citizenID := seedCitizenAccount(t, store, "supporter", "supporter@example.com", "01012312312", "Supporter", "secret123")
	ownerID, candidateID := seedCandidateAccount(t, store, "boss", "boss@example.com", "صاحب اللوحة", 1)
	if _, err := store.UpsertRating(context.Background(), &models.Rating{CandidateID: candidateID, CitizenID: citizenID, Stars: 4}); err != nil {
		t.Fatalf("seed rating: %v", err)
	}
	if _, err := store.CreateMessage(context.Background(), &models.Message{CandidateID: candidateID, SenderName: "زائر", Subject: "س", Content: "م"}); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	h := newCandidatesHandler(store)

	rec := httptest.NewRecorder()
	h.Dashboard(rec, asIdentity(jsonRequest(t, http.MethodGet, "/v1/candidate/dashboard", nil), ownerID, models.RoleCandidate))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	resp := decodeBody(t, rec)
	if resp["unread_messages"].(float64) != 1 {
		t.Fatalf("unread_messages = %v", resp["unread_messages"])
	}
	stats := resp["stats"].(map[string]any)
	if stats["avg_rating"].(float64) != 4 {
		t.Fatalf("avg_rating = %v", stats["avg_rating"])
	}
	if n := len(resp["recent_ratings"].([]any)); n != 1 {
		t.Fatalf("recent_ratings = %d", n)
	}
}
