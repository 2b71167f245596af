package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/naebak/naebak/api"
	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository/mock"
)

func seedNews(t *testing.T, store *mock.Store, title, status string, publish int64, expire *int64, ticker, homepage bool) int64 {
	t.Helper()
	id, err := store.CreateNews(context.Background(), &models.News{
		Title:          title,
		Content:        "محتوى",
		Status:         status,
		PublishDate:    publish,
		ExpireDate:     expire,
		ShowOnTicker:   ticker,
		ShowOnHomepage: homepage,
		AuthorID:       1,
	})
	if err != nil {
		t.Fatalf("seed news %q: %v", title, err)
	}
	return id
}

func TestListNews(t *testing.T) {
	store := mock.NewStore()
	ts := time.Now().UTC().UnixMilli()
	past := ts - int64(time.Hour/time.Millisecond)
	future := ts + int64(time.Hour/time.Millisecond)

	seedNews(t, store, "ظاهر", models.NewsPublished, past, nil, true, true)
	seedNews(t, store, "مسودة", models.NewsDraft, past, nil, true, true)
	seedNews(t, store, "منتهي", models.NewsPublished, past, &past, true, true)
	seedNews(t, store, "مستقبلي", models.NewsPublished, future, nil, true, true)
	seedNews(t, store, "بدون شريط", models.NewsPublished, past, nil, false, false)
	h := api.NewNewsHandler(store, 10)

	rec := httptest.NewRecorder()
	h.ListNews(rec, jsonRequest(t, http.MethodGet, "/v1/news", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if n := len(resp["news"].([]any)); n != 2 {
		t.Fatalf("active news = %d, want 2", n)
	}

	rec = httptest.NewRecorder()
	h.Ticker(rec, jsonRequest(t, http.MethodGet, "/v1/news/ticker", nil))
	resp = decodeBody(t, rec)
	if n := len(resp["news"].([]any)); n != 1 {
		t.Fatalf("ticker news = %d, want 1", n)
	}

	rec = httptest.NewRecorder()
	h.Homepage(rec, jsonRequest(t, http.MethodGet, "/v1/news/homepage", nil))
	resp = decodeBody(t, rec)
	if n := len(resp["news"].([]any)); n != 1 {
		t.Fatalf("homepage news = %d, want 1", n)
	}
}

func TestGetNews(t *testing.T) {
	store := mock.NewStore()
	ts := time.Now().UTC().UnixMilli()
	past := ts - int64(time.Hour/time.Millisecond)

	visibleID := seedNews(t, store, "ظاهر", models.NewsPublished, past, nil, false, false)
	draftID := seedNews(t, store, "مسودة", models.NewsDraft, past, nil, false, false)
	h := api.NewNewsHandler(store, 10)

	get := func(id int64) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodGet, "/v1/news/x", nil)
		req = withVars(req, map[string]string{"id": itoa(id)})
		h.GetNews(rec, req)
		return rec
	}

	rec := get(visibleID)
	if rec.Code != http.StatusOK {
		t.Fatalf("visible: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	item := resp["news"].(map[string]any)
	if item["views_count"].(float64) != 1 {
		t.Fatalf("views_count = %v", item["views_count"])
	}

	// drafts do not leak through the public read
	if rec := get(draftID); rec.Code != http.StatusNotFound {
		t.Fatalf("draft: status = %d", rec.Code)
	}
	if rec := get(999999); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown: status = %d", rec.Code)
	}

	// repeated views keep counting
	get(visibleID)
	stored, _ := store.GetNewsByID(context.Background(), visibleID)
	if stored.ViewsCount != 2 {
		t.Fatalf("stored views = %d", stored.ViewsCount)
	}
}
