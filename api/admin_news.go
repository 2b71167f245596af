package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

func (h *AdminHandler) ListNewsAdmin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(r, "page", 1)
	filter := repository.NewsFilter{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Limit:    h.pageSize,
		Offset:   (page - 1) * h.pageSize,
	}

	ctx := r.Context()
	items, total, err := h.newsRepo.ListNewsAdmin(ctx, filter)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	counts, err := h.newsRepo.CountNews(ctx)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"news":      items,
		"total":     total,
		"counts":    counts,
		"page":      page,
		"page_size": h.pageSize,
	})
}

type newsRequest struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	Status          string `json:"status"`
	Priority        string `json:"priority"`
	ShowOnHomepage  bool   `json:"show_on_homepage"`
	ShowOnTicker    bool   `json:"show_on_ticker"`
	TickerSpeed     int64  `json:"ticker_speed"`
	PublishDate     int64  `json:"publish_date"`
	ExpireDate      *int64 `json:"expire_date"`
	MetaDescription string `json:"meta_description"`
	Tags            string `json:"tags"`
}

func validNewsStatus(s string) bool {
	return s == "" || s == models.NewsDraft || s == models.NewsPublished || s == models.NewsArchived
}

func validNewsPriority(p string) bool {
	switch p {
	case "", models.PriorityLow, models.PriorityNormal, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}

func (h *AdminHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}
	if req.Title == "" || req.Content == "" {
		apiError(w, http.StatusBadRequest, "العنوان والمحتوى مطلوبان")
		return
	}
	if !validNewsStatus(req.Status) || !validNewsPriority(req.Priority) {
		apiError(w, http.StatusBadRequest, "حالة أو أولوية غير صالحة")
		return
	}

	ctx := r.Context()
	admin := identityFrom(ctx)
	item := models.News{
		Title:           req.Title,
		Content:         req.Content,
		Status:          req.Status,
		Priority:        req.Priority,
		ShowOnHomepage:  req.ShowOnHomepage,
		ShowOnTicker:    req.ShowOnTicker,
		TickerSpeed:     req.TickerSpeed,
		PublishDate:     req.PublishDate,
		ExpireDate:      req.ExpireDate,
		AuthorID:        admin.AccountID,
		MetaDescription: req.MetaDescription,
		Tags:            req.Tags,
	}

	newsID, err := h.newsRepo.CreateNews(ctx, &item)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	item.ID = newsID

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(admin.AccountID),
		ActionType:  models.ActionNewsCreated,
		Description: fmt.Sprintf("إنشاء خبر: %s", req.Title),
		RelatedKind: models.KindNews,
		RelatedID:   ptr(newsID),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"news":    item,
		"message": "تم إنشاء الخبر",
	})
}

func (h *AdminHandler) loadNews(w http.ResponseWriter, r *http.Request) *models.News {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return nil
	}

	item, err := h.newsRepo.GetNewsByID(r.Context(), id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return nil
	}
	if item == nil {
		apiError(w, http.StatusNotFound, "الخبر غير موجود")
		return nil
	}
	return item
}

// UpdateNews covers editing and explicit archiving; status changes go
// through the same path.
func (h *AdminHandler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	item := h.loadNews(w, r)
	if item == nil {
		return
	}

	var req newsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}
	if !validNewsStatus(req.Status) || !validNewsPriority(req.Priority) {
		apiError(w, http.StatusBadRequest, "حالة أو أولوية غير صالحة")
		return
	}

	if req.Title != "" {
		item.Title = req.Title
	}
	if req.Content != "" {
		item.Content = req.Content
	}
	if req.Status != "" {
		item.Status = req.Status
	}
	if req.Priority != "" {
		item.Priority = req.Priority
	}
	item.ShowOnHomepage = req.ShowOnHomepage
	item.ShowOnTicker = req.ShowOnTicker
	if req.TickerSpeed != 0 {
		item.TickerSpeed = req.TickerSpeed
	}
	if req.PublishDate != 0 {
		item.PublishDate = req.PublishDate
	}
	if req.ExpireDate != nil {
		item.ExpireDate = req.ExpireDate
	}
	if req.MetaDescription != "" {
		item.MetaDescription = req.MetaDescription
	}
	if req.Tags != "" {
		item.Tags = req.Tags
	}

	ctx := r.Context()
	if err := h.newsRepo.UpdateNews(ctx, item); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	admin := identityFrom(ctx)
	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(admin.AccountID),
		ActionType:  models.ActionNewsUpdated,
		Description: fmt.Sprintf("تعديل خبر: %s", item.Title),
		RelatedKind: models.KindNews,
		RelatedID:   ptr(item.ID),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"news":    item,
		"message": "تم تعديل الخبر",
	})
}

// ToggleNewsStatus flips draft to published and back. Archived items
// need an explicit update to change status.
func (h *AdminHandler) ToggleNewsStatus(w http.ResponseWriter, r *http.Request) {
	item := h.loadNews(w, r)
	if item == nil {
		return
	}

	switch item.Status {
	case models.NewsDraft:
		item.Status = models.NewsPublished
	case models.NewsPublished:
		item.Status = models.NewsDraft
	default:
		apiError(w, http.StatusBadRequest, "لا يمكن تبديل حالة خبر مؤرشف")
		return
	}

	ctx := r.Context()
	if err := h.newsRepo.UpdateNews(ctx, item); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	admin := identityFrom(ctx)
	actionType := models.ActionNewsUpdated
	if item.Status == models.NewsPublished {
		actionType = models.ActionNewsPublished
	}
	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(admin.AccountID),
		ActionType:  actionType,
		Description: fmt.Sprintf("تبديل حالة الخبر إلى %s: %s", item.Status, item.Title),
		RelatedKind: models.KindNews,
		RelatedID:   ptr(item.ID),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  item.Status,
		"message": "تم تبديل حالة الخبر",
	})
}

func (h *AdminHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	item := h.loadNews(w, r)
	if item == nil {
		return
	}

	ctx := r.Context()
	if err := h.newsRepo.DeleteNews(ctx, item.ID); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	admin := identityFrom(ctx)
	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(admin.AccountID),
		ActionType:  models.ActionNewsDeleted,
		Description: fmt.Sprintf("حذف خبر: %s", item.Title),
		Severity:    models.SeverityWarning,
		RelatedKind: models.KindNews,
		RelatedID:   ptr(item.ID),
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "تم حذف الخبر"})
}
