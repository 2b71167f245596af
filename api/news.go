package api

import (
	"net/http"
	"time"

	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

const tickerLimit = 5

type NewsHandler struct {
	newsRepo repository.NewsRepo
	pageSize int
}

func NewNewsHandler(nr repository.NewsRepo, pageSize int) *NewsHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &NewsHandler{newsRepo: nr, pageSize: pageSize}
}

// ListNews returns active news, paginated.
func (h *NewsHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	offset := (page - 1) * h.pageSize

	items, err := h.newsRepo.ListActiveNews(r.Context(), false, false, h.pageSize, offset)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"news":      items,
		"page":      page,
		"page_size": h.pageSize,
	})
}

// GetNews serves one active item and counts the view.
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return
	}

	ctx := r.Context()
	item, err := h.newsRepo.GetNewsByID(ctx, id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	if item == nil || !item.IsActive(time.Now().UTC().UnixMilli()) {
		apiError(w, http.StatusNotFound, "الخبر غير موجود")
		return
	}

	if err := h.newsRepo.IncrementNewsViews(ctx, id); err != nil {
		logger.Error("increment news views", "news_id", id, "err", err)
	}
	item.ViewsCount++

	writeJSON(w, http.StatusOK, map[string]*models.News{"news": item})
}

// Ticker returns the scrolling headlines, at most five.
func (h *NewsHandler) Ticker(w http.ResponseWriter, r *http.Request) {
	items, err := h.newsRepo.ListActiveNews(r.Context(), true, false, tickerLimit, 0)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"news": items})
}

// Homepage returns active items flagged for the landing page.
func (h *NewsHandler) Homepage(w http.ResponseWriter, r *http.Request) {
	items, err := h.newsRepo.ListActiveNews(r.Context(), false, true, h.pageSize, 0)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"news": items})
}
