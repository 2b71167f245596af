package api

import (
	"net/http"
	"time"

	"github.com/naebak/naebak/pkg/repository"
)

func (h *AdminHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(r, "page", 1)
	filter := repository.ActivityFilter{
		ActionType: q.Get("action"),
		Severity:   q.Get("severity"),
		Search:     q.Get("search"),
		Limit:      h.pageSize,
		Offset:     (page - 1) * h.pageSize,
	}
	if user := queryInt(r, "user", 0); user > 0 {
		filter.AccountID = int64(user)
	}

	activities, total, err := h.activityRepo.ListActivities(r.Context(), filter)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activities": activities,
		"total":      total,
		"page":       page,
		"page_size":  h.pageSize,
	})
}

func (h *AdminHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return
	}

	activity, err := h.activityRepo.GetActivityByID(r.Context(), id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	if activity == nil {
		apiError(w, http.StatusNotFound, "السجل غير موجود")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"activity": activity})
}

func (h *AdminHandler) UserActivities(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return
	}

	ctx := r.Context()
	account, err := h.accountRepo.GetAccountByID(ctx, id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	if account == nil {
		apiError(w, http.StatusNotFound, "الحساب غير موجود")
		return
	}

	activities, err := h.activityRepo.AccountActivities(ctx, id, 100)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account":    account,
		"activities": activities,
	})
}

// ActivityStats is the monitoring summary: last-24h counts by severity
// plus the recent security and critical entries.
func (h *AdminHandler) ActivityStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	since := time.Now().UTC().Add(-24 * time.Hour).UnixMilli()

	bySeverity, err := h.activityRepo.CountBySeverity(ctx, since)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	security, err := h.activityRepo.SecurityAlerts(ctx, 20)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	critical, err := h.activityRepo.CriticalActivities(ctx, 20)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"by_severity":     bySeverity,
		"security_alerts": security,
		"critical":        critical,
	})
}
