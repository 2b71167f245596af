package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository/mock"
)

func TestListActivitiesAdmin(t *testing.T) {
	store := mock.NewStore()
	accountID, _ := seedCitizenAccount(t, store, "tracked", "tracked@example.com", "01012345678", "Tracked", "secret123")
	for _, a := range []models.Activity{
		{AccountID: &accountID, ActionType: models.ActionLogin, Description: "تسجيل دخول"},
		{AccountID: &accountID, ActionType: models.ActionVoteCast, Description: "تصويت"},
		{ActionType: models.ActionSecurityAlert, Description: "محاولة مشبوهة", Severity: models.SeverityWarning},
	} {
		a := a
		if _, err := store.LogActivity(context.Background(), &a); err != nil {
			t.Fatalf("seed activity: %v", err)
		}
	}
	h := newAdminHandler(store)

	list := func(query string) map[string]any {
		req, _ := asAdmin(t, store, jsonRequest(t, http.MethodGet, "/v1/admin/activities"+query, nil))
		rec := httptest.NewRecorder()
		h.ListActivities(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("list %q: status = %d", query, rec.Code)
		}
		return decodeBody(t, rec)
	}

	if resp := list(""); resp["total"].(float64) != 3 {
		t.Fatalf("total = %v", resp["total"])
	}
	if resp := list("?severity=warning"); resp["total"].(float64) != 1 {
		t.Fatalf("severity filter total = %v", resp["total"])
	}
	if resp := list("?action=login"); resp["total"].(float64) != 1 {
		t.Fatalf("action filter total = %v", resp["total"])
	}
	if resp := list("?user=" + itoa(accountID)); resp["total"].(float64) != 2 {
		t.Fatalf("user filter total = %v", resp["total"])
	}
}

func TestUserActivities(t *testing.T) {
	store := mock.NewStore()
	accountID, _ := seedCitizenAccount(t, store, "watched", "watched@example.com", "01012345678", "Watched", "secret123")
	if _, err := store.LogActivity(context.Background(), &models.Activity{
		AccountID:  &accountID,
		ActionType: models.ActionLogin,
	}); err != nil {
		t.Fatalf("seed activity: %v", err)
	}
	h := newAdminHandler(store)

	req, _ := asAdmin(t, store, jsonRequest(t, http.MethodGet, "/v1/admin/users/x/activities", nil))
	req = withVars(req, map[string]string{"id": itoa(accountID)})
	rec := httptest.NewRecorder()
	h.UserActivities(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if n := len(resp["activities"].([]any)); n != 1 {
		t.Fatalf("activities = %d", n)
	}

	req, _ = asAdmin(t, store, jsonRequest(t, http.MethodGet, "/v1/admin/users/x/activities", nil))
	req = withVars(req, map[string]string{"id": "999999"})
	rec = httptest.NewRecorder()
	h.UserActivities(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown account: status = %d", rec.Code)
	}
}

func TestActivityStats(t *testing.T) {
	store := mock.NewStore()
	for _, a := range []models.Activity{
		{ActionType: models.ActionLogin},
		{ActionType: models.ActionSecurityAlert, Severity: models.SeverityWarning},
		{ActionType: models.ActionSystemError, Severity: models.SeverityCritical},
	} {
		a := a
		if _, err := store.LogActivity(context.Background(), &a); err != nil {
			t.Fatalf("seed activity: %v", err)
		}
	}
	h := newAdminHandler(store)

	req, _ := asAdmin(t, store, jsonRequest(t, http.MethodGet, "/v1/admin/activities/stats", nil))
	rec := httptest.NewRecorder()
	h.ActivityStats(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	resp := decodeBody(t, rec)
	bySeverity := resp["by_severity"].(map[string]any)
	if bySeverity["info"].(float64) != 1 || bySeverity["critical"].(float64) != 1 {
		t.Fatalf("by_severity = %v", bySeverity)
	}
	// login and the alert both count as security actions
	if n := len(resp["security_alerts"].([]any)); n != 2 {
		t.Fatalf("security_alerts = %d", n)
	}
	if n := len(resp["critical"].([]any)); n != 1 {
		t.Fatalf("critical = %d", n)
	}
}
