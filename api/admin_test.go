package api_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/naebak/naebak/api"
	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository/mock"
)

func newAdminHandler(store *mock.Store) *api.AdminHandler {
	return api.NewAdminHandler(store, store, store, store, store, store, nil, 20)
}

func seedAdmin(t *testing.T, store *mock.Store) int64 {
	t.Helper()
	if existing, _ := store.GetAccountByUsername(context.Background(), "admin"); existing != nil {
		return existing.ID
	}
	accountID, _, err := store.RegisterCitizen(context.Background(),
		&models.Account{Username: "admin", Email: "admin@example.com", PasswordHash: "hash"},
		&models.Citizen{FirstName: "Admin", LastName: "User", Email: "admin@example.com", GovernorateID: 1})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	// promote in place; the mock registers everyone as citizen
	for i := range store.Accounts {
		if store.Accounts[i].ID == accountID {
			store.Accounts[i].Role = models.RoleAdmin
		}
	}
	return accountID
}

func asAdmin(t *testing.T, store *mock.Store, req *http.Request) (*http.Request, int64) {
	t.Helper()
	adminID := seedAdmin(t, store)
	return asIdentity(req, adminID, models.RoleAdmin), adminID
}

func TestOverview(t *testing.T) {
	store := mock.NewStore()
	seedCitizenAccount(t, store, "someone", "someone@example.com", "01012345678", "Someone", "secret123")
	seedCandidateAccount(t, store, "cand", "cand@example.com", "مرشح", 1)
	h := newAdminHandler(store)

	req, _ := asAdmin(t, store, jsonRequest(t, http.MethodGet, "/v1/admin/overview", nil))
	rec := httptest.NewRecorder()
	h.Overview(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	resp := decodeBody(t, rec)
	totals := resp["totals"].(map[string]any)
	if totals["accounts"].(float64) != 3 || totals["candidates"].(float64) != 1 {
		t.Fatalf("totals = %v", totals)
	}
}

func TestListUsers(t *testing.T) {
	store := mock.NewStore()
	seedCitizenAccount(t, store, "citizen1", "c1@example.com", "01011111111", "One", "secret123")
	seedCandidateAccount(t, store, "cand1", "k1@example.com", "مرشح", 1)
	h := newAdminHandler(store)

	list := func(query string) map[string]any {
		req, _ := asAdmin(t, store, jsonRequest(t, http.MethodGet, "/v1/admin/users"+query, nil))
		rec := httptest.NewRecorder()
		h.ListUsers(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("list %q: status = %d", query, rec.Code)
		}
		return decodeBody(t, rec)
	}

	if resp := list("?role=candidate"); resp["total"].(float64) != 1 {
		t.Fatalf("candidate filter total = %v", resp["total"])
	}
	if resp := list("?search=citizen1"); resp["total"].(float64) != 1 {
		t.Fatalf("search total = %v", resp["total"])
	}
}

func TestCreateCandidateAdmin(t *testing.T) {
	valid := map[string]any{
		"email":          "new@example.com",
		"username":       "newcand",
		"password":       "secret123",
		"name":           "مرشح جديد",
		"governorate_id": 1,
		"constituency":   "الدائرة الأولى",
	}
	with := func(k string, v any) map[string]any {
		out := make(map[string]any, len(valid))
		for key, val := range valid {
			out[key] = val
		}
		out[k] = v
		return out
	}

	tests := []struct {
		name       string
		body       map[string]any
		prepare    func(*testing.T, *mock.Store)
		wantStatus int
	}{
		{name: "missing name", body: with("name", ""), wantStatus: http.StatusBadRequest},
		{name: "bad email", body: with("email", "nope"), wantStatus: http.StatusBadRequest},
		{name: "short password", body: with("password", "abc"), wantStatus: http.StatusBadRequest},
		{name: "bad governorate", body: with("governorate_id", 99), wantStatus: http.StatusBadRequest},
		{
			name: "duplicate email",
			body: valid,
			prepare: func(t *testing.T, s *mock.Store) {
				seedCandidateAccount(t, s, "other", "new@example.com", "قائم", 1)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "duplicate username",
			body: valid,
			prepare: func(t *testing.T, s *mock.Store) {
				seedCandidateAccount(t, s, "newcand", "else@example.com", "قائم", 1)
			},
			wantStatus: http.StatusConflict,
		},
		{name: "success", body: valid, wantStatus: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock.NewStore()
			if tt.prepare != nil {
				tt.prepare(t, store)
			}
			h := newAdminHandler(store)

			req, _ := asAdmin(t, store, jsonRequest(t, http.MethodPost, "/v1/admin/candidates", tt.body))
			rec := httptest.NewRecorder()
			h.CreateCandidate(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}

			account, _ := store.GetAccountByUsername(context.Background(), "newcand")
			if account == nil || account.Role != models.RoleCandidate {
				t.Fatalf("account = %#v", account)
			}
			candidate, _ := store.GetCandidateByAccountID(context.Background(), account.ID)
			if candidate == nil || candidate.Name != "مرشح جديد" {
				t.Fatalf("candidate = %#v", candidate)
			}
		})
	}
}

func TestDeleteCandidateAdmin(t *testing.T) {
	store := mock.NewStore()
	_, candidateID := seedCandidateAccount(t, store, "doomed", "doomed@example.com", "الراحل", 1)
	h := newAdminHandler(store)

	req, _ := asAdmin(t, store, jsonRequest(t, http.MethodDelete, "/v1/admin/candidates/x", nil))
	req = withVars(req, map[string]string{"id": itoa(candidateID)})
	rec := httptest.NewRecorder()
	h.DeleteCandidate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	if c, _ := store.GetCandidateByID(context.Background(), candidateID); c != nil {
		t.Fatalf("candidate survived: %#v", c)
	}

	// deletion leaves a warning entry
	found := false
	for _, a := range store.Activities {
		if a.ActionType == models.ActionCandidateDeleted && a.Severity == models.SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a candidate-deleted activity")
	}
}

func TestDeleteUser(t *testing.T) {
	store := mock.NewStore()
	targetID, _ := seedCitizenAccount(t, store, "target", "target@example.com", "01012345678", "Target", "secret123")
	h := newAdminHandler(store)

	adminReq, adminID := asAdmin(t, store, jsonRequest(t, http.MethodDelete, "/v1/admin/users/x", nil))

	// admins cannot delete themselves
	req := withVars(adminReq, map[string]string{"id": itoa(adminID)})
	rec := httptest.NewRecorder()
	h.DeleteUser(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self delete: status = %d", rec.Code)
	}

	req = withVars(adminReq, map[string]string{"id": itoa(targetID)})
	rec = httptest.NewRecorder()
	h.DeleteUser(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if a, _ := store.GetAccountByID(context.Background(), targetID); a != nil {
		t.Fatalf("account survived: %#v", a)
	}
}

func TestAdminNewsLifecycle(t *testing.T) {
	store := mock.NewStore()
	h := newAdminHandler(store)

	req, _ := asAdmin(t, store, jsonRequest(t, http.MethodPost, "/v1/admin/news", map[string]any{
		"title":   "خبر إداري",
		"content": "محتوى الخبر",
	}))
	rec := httptest.NewRecorder()
	h.CreateNews(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	newsID := int64(resp["news"].(map[string]any)["id"].(float64))

	// created items default to draft
	item, _ := store.GetNewsByID(context.Background(), newsID)
	if item.Status != models.NewsDraft {
		t.Fatalf("status after create = %q", item.Status)
	}

	toggle := func() *httptest.ResponseRecorder {
		req, _ := asAdmin(t, store, jsonRequest(t, http.MethodPut, "/v1/admin/news/x/toggle", nil))
		req = withVars(req, map[string]string{"id": itoa(newsID)})
		rec := httptest.NewRecorder()
		h.ToggleNewsStatus(rec, req)
		return rec
	}

	if rec := toggle(); rec.Code != http.StatusOK {
		t.Fatalf("toggle: status = %d", rec.Code)
	}
	item, _ = store.GetNewsByID(context.Background(), newsID)
	if item.Status != models.NewsPublished {
		t.Fatalf("status after toggle = %q", item.Status)
	}

	// archived items refuse the toggle
	item.Status = models.NewsArchived
	if err := store.UpdateNews(context.Background(), item); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if rec := toggle(); rec.Code != http.StatusBadRequest {
		t.Fatalf("toggle archived: status = %d", rec.Code)
	}

	req, _ = asAdmin(t, store, jsonRequest(t, http.MethodPost, "/v1/admin/news", map[string]any{
		"title": "ناقص",
	}))
	rec = httptest.NewRecorder()
	h.CreateNews(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing content: status = %d", rec.Code)
	}
}

func TestReports(t *testing.T) {
	store := mock.NewStore()
	_, citizenID := seedCitizenAccount(t, store, "active", "active@example.com", "01012345678", "Active", "secret123")
	_, candidateID := seedCandidateAccount(t, store, "popular", "popular@example.com", "المشهور", 1)
	if _, err := store.ToggleVote(context.Background(), candidateID, citizenID, models.VoteApprove); err != nil {
		t.Fatalf("seed vote: %v", err)
	}
	h := newAdminHandler(store)

	req, _ := asAdmin(t, store, jsonRequest(t, http.MethodGet, "/v1/admin/reports?days=7", nil))
	rec := httptest.NewRecorder()
	h.Reports(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	resp := decodeBody(t, rec)
	if resp["period_days"].(float64) != 7 {
		t.Fatalf("period_days = %v", resp["period_days"])
	}
	// no errors logged, so the platform grades excellent
	if resp["system_health"] != "excellent" {
		t.Fatalf("system_health = %v", resp["system_health"])
	}
	period := resp["period"].(map[string]any)
	if period["new_votes"].(float64) != 1 {
		t.Fatalf("new_votes = %v", period["new_votes"])
	}
	top := resp["top_candidates"].([]any)
	if len(top) != 1 {
		t.Fatalf("top_candidates = %d", len(top))
	}
}

func TestReportsHealthDegrades(t *testing.T) {
	store := mock.NewStore()
	for i := 0; i < 6; i++ {
		if _, err := store.LogActivity(context.Background(), &models.Activity{
			ActionType:  models.ActionSystemError,
			Description: "عطل",
			Severity:    models.SeverityError,
			Created:     time.Now().UTC().UnixMilli(),
		}); err != nil {
			t.Fatalf("seed activity: %v", err)
		}
	}
	h := newAdminHandler(store)

	req, _ := asAdmin(t, store, jsonRequest(t, http.MethodGet, "/v1/admin/reports", nil))
	rec := httptest.NewRecorder()
	h.Reports(rec, req)
	resp := decodeBody(t, rec)
	if resp["system_health"] != "warning" {
		t.Fatalf("system_health = %v, want warning", resp["system_health"])
	}
}

func TestExportCSV(t *testing.T) {
	store := mock.NewStore()
	seedCandidateAccount(t, store, "listed", "listed@example.com", "المدرج", 1)
	h := newAdminHandler(store)

	export := func(reportType string) *httptest.ResponseRecorder {
		req, _ := asAdmin(t, store, jsonRequest(t, http.MethodGet, "/v1/admin/reports/"+reportType+"/csv", nil))
		req = withVars(req, map[string]string{"type": reportType})
		rec := httptest.NewRecorder()
		h.ExportCSV(rec, req)
		return rec
	}

	rec := export("candidates")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	body := rec.Body.Bytes()
	// the BOM keeps Arabic headers readable in spreadsheets
	if !bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("missing UTF-8 BOM: % x", body[:3])
	}
	if !bytes.Contains(body, []byte("المدرج")) {
		t.Fatalf("candidate row missing: %s", body)
	}

	if rec := export("users"); rec.Code != http.StatusOK {
		t.Fatalf("users export: status = %d", rec.Code)
	}
	if rec := export("martians"); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown type: status = %d", rec.Code)
	}
}

func TestCharts(t *testing.T) {
	store := mock.NewStore()
	seedCandidateAccount(t, store, "charted", "charted@example.com", "المرسوم", 1)
	h := newAdminHandler(store)

	chart := func(chartType string) (*httptest.ResponseRecorder, map[string]any) {
		req, _ := asAdmin(t, store, jsonRequest(t, http.MethodGet, "/v1/admin/charts?type="+chartType, nil))
		rec := httptest.NewRecorder()
		h.Charts(rec, req)
		if rec.Code != http.StatusOK {
			return rec, nil
		}
		return rec, decodeBody(t, rec)
	}

	_, resp := chart("daily_activity")
	if n := len(resp["data"].([]any)); n != 30 {
		t.Fatalf("daily buckets = %d, want 30", n)
	}

	_, resp = chart("governorate_distribution")
	data := resp["data"].([]any)
	if len(data) != 1 || data[0].(map[string]any)["count"].(float64) != 1 {
		t.Fatalf("distribution = %v", data)
	}

	if rec, _ := chart("pie"); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown chart: status = %d", rec.Code)
	}
}
