package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/naebak/naebak/internal/governorates"
	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

type CandidatesHandler struct {
	candidateRepo repository.CandidateRepo
	promiseRepo   repository.PromiseRepo
	historyRepo   repository.ServiceHistoryRepo
	citizenRepo   repository.CitizenRepo
	voteRepo      repository.VoteRepo
	ratingRepo    repository.RatingRepo
	messageRepo   repository.MessageRepo
	activityRepo  repository.ActivityRepo
	pageSize      int
}

func NewCandidatesHandler(
	cr repository.CandidateRepo,
	pr repository.PromiseRepo,
	hr repository.ServiceHistoryRepo,
	cir repository.CitizenRepo,
	vr repository.VoteRepo,
	rr repository.RatingRepo,
	mr repository.MessageRepo,
	actr repository.ActivityRepo,
	pageSize int,
) *CandidatesHandler {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &CandidatesHandler{
		candidateRepo: cr,
		promiseRepo:   pr,
		historyRepo:   hr,
		citizenRepo:   cir,
		voteRepo:      vr,
		ratingRepo:    rr,
		messageRepo:   mr,
		activityRepo:  actr,
		pageSize:      pageSize,
	}
}

type candidateListItem struct {
	repository.CandidateWithStats
	GovernorateName string `json:"governorate_name"`
}

// ListCandidates filters, sorts, and pages the candidate directory.
// Statistics are computed over the whole filtered set before the page
// is cut, so page two sorts by the same numbers as page one.
func (h *CandidatesHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.CandidateFilter{Search: q.Get("search")}
	if gov := q.Get("governorate_id"); gov != "" {
		id, err := strconv.ParseInt(gov, 10, 64)
		if err != nil || !governorates.IsValid(id) {
			apiError(w, http.StatusBadRequest, "المحافظة غير صالحة")
			return
		}
		filter.GovernorateID = id
	}

	all, err := h.candidateRepo.ListCandidatesWithStats(r.Context(), filter)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	switch q.Get("sort") {
	case "rating":
		sort.SliceStable(all, func(i, j int) bool { return all[i].Stats.AvgRating > all[j].Stats.AvgRating })
	case "votes":
		sort.SliceStable(all, func(i, j int) bool { return all[i].Stats.TotalVotes > all[j].Stats.TotalVotes })
	case "activity":
		sort.SliceStable(all, func(i, j int) bool { return all[i].Stats.TotalActivity > all[j].Stats.TotalActivity })
	default:
		// repository order is already by name
	}

	total := len(all)
	page := queryInt(r, "page", 1)
	start := (page - 1) * h.pageSize
	if start > total {
		start = total
	}
	end := start + h.pageSize
	if end > total {
		end = total
	}

	items := make([]candidateListItem, 0, end-start)
	for _, cs := range all[start:end] {
		items = append(items, candidateListItem{
			CandidateWithStats: cs,
			GovernorateName:    governorates.NameAr(cs.Candidate.GovernorateID),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"candidates": items,
		"total":      total,
		"page":       page,
		"page_size":  h.pageSize,
		"pages":      (total + h.pageSize - 1) / h.pageSize,
	})
}

type candidateDetail struct {
	Candidate          models.Candidate          `json:"candidate"`
	GovernorateName    string                    `json:"governorate_name"`
	Stats              *models.CandidateStats    `json:"stats"`
	RatingDistribution map[int64]int64           `json:"rating_distribution"`
	Promises           []models.ElectoralPromise `json:"promises"`
	ServiceHistory     []models.ServiceHistory   `json:"service_history"`
	MyVote             *models.Vote              `json:"my_vote,omitempty"`
	MyRating           *models.Rating            `json:"my_rating,omitempty"`
}

func (h *CandidatesHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return
	}

	ctx := r.Context()
	candidate, err := h.candidateRepo.GetCandidateByID(ctx, id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	if candidate == nil {
		apiError(w, http.StatusNotFound, "المرشح غير موجود")
		return
	}

	stats, err := h.candidateRepo.CandidateStats(ctx, id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	dist, err := h.candidateRepo.RatingDistribution(ctx, id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	promises, err := h.promiseRepo.ListPromisesByCandidate(ctx, id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	history, err := h.historyRepo.ListServiceHistoryByCandidate(ctx, id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	detail := candidateDetail{
		Candidate:          *candidate,
		GovernorateName:    governorates.NameAr(candidate.GovernorateID),
		Stats:              stats,
		RatingDistribution: dist,
		Promises:           promises,
		ServiceHistory:     history,
	}

	// Personalize for a logged-in citizen.
	if caller := identityFrom(ctx); caller != nil && caller.Role == models.RoleCitizen {
		if citizen, err := h.citizenRepo.GetCitizenByAccountID(ctx, caller.AccountID); err == nil && citizen != nil {
			if v, err := h.voteRepo.GetVote(ctx, id, citizen.ID); err == nil {
				detail.MyVote = v
			}
			if g, err := h.ratingRepo.GetRating(ctx, id, citizen.ID); err == nil {
				detail.MyRating = g
			}
		}
	}

	writeJSON(w, http.StatusOK, detail)
}

// ListGovernorates returns the static table; with group=region set the
// items come grouped by region.
func (h *CandidatesHandler) ListGovernorates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("group") == "region" {
		writeJSON(w, http.StatusOK, map[string]any{"regions": governorates.ByRegion()})
		return
	}
	if search := q.Get("search"); search != "" {
		writeJSON(w, http.StatusOK, map[string]any{"governorates": governorates.Search(search)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"governorates": governorates.All()})
}

func (h *CandidatesHandler) GetGovernorate(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	gov := governorates.BySlug(slug)
	if gov == nil {
		apiError(w, http.StatusNotFound, "المحافظة غير موجودة")
		return
	}

	candidates, err := h.candidateRepo.ListCandidatesWithStats(r.Context(), repository.CandidateFilter{GovernorateID: gov.ID})
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"governorate": gov,
		"candidates":  candidates,
	})
}

// ownCandidate resolves the calling candidate's profile row.
func (h *CandidatesHandler) ownCandidate(w http.ResponseWriter, r *http.Request) *models.Candidate {
	id := identityFrom(r.Context())
	candidate, err := h.candidateRepo.GetCandidateByAccountID(r.Context(), id.AccountID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return nil
	}
	if candidate == nil {
		apiError(w, http.StatusNotFound, "الملف الانتخابي غير موجود")
		return nil
	}
	return candidate
}

type updateCandidateRequest struct {
	Name            *string `json:"name"`
	Role            *string `json:"role"`
	GovernorateID   *int64  `json:"governorate_id"`
	Constituency    *string `json:"constituency"`
	ProfilePicture  *string `json:"profile_picture"`
	BannerImage     *string `json:"banner_image"`
	Bio             *string `json:"bio"`
	ElectoralProg   *string `json:"electoral_program"`
	MessageToVoters *string `json:"message_to_voters"`
	YoutubeVideoURL *string `json:"youtube_video_url"`
	FacebookURL     *string `json:"facebook_url"`
	TwitterURL      *string `json:"twitter_url"`
	WebsiteURL      *string `json:"website_url"`
	PhoneNumber     *string `json:"phone_number"`
	ElectionSymbol  *string `json:"election_symbol"`
	ElectionNumber  *string `json:"election_number"`
}

func (h *CandidatesHandler) UpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	candidate := h.ownCandidate(w, r)
	if candidate == nil {
		return
	}

	var req updateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}

	if req.GovernorateID != nil && !governorates.IsValid(*req.GovernorateID) {
		apiError(w, http.StatusBadRequest, "المحافظة غير صالحة")
		return
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&candidate.Name, req.Name)
	apply(&candidate.Role, req.Role)
	apply(&candidate.Constituency, req.Constituency)
	apply(&candidate.ProfilePicture, req.ProfilePicture)
	apply(&candidate.BannerImage, req.BannerImage)
	apply(&candidate.Bio, req.Bio)
	apply(&candidate.ElectoralProg, req.ElectoralProg)
	apply(&candidate.MessageToVoters, req.MessageToVoters)
	apply(&candidate.YoutubeVideoURL, req.YoutubeVideoURL)
	apply(&candidate.FacebookURL, req.FacebookURL)
	apply(&candidate.TwitterURL, req.TwitterURL)
	apply(&candidate.WebsiteURL, req.WebsiteURL)
	apply(&candidate.PhoneNumber, req.PhoneNumber)
	apply(&candidate.ElectionSymbol, req.ElectionSymbol)
	apply(&candidate.ElectionNumber, req.ElectionNumber)
	if req.GovernorateID != nil {
		candidate.GovernorateID = *req.GovernorateID
	}

	ctx := r.Context()
	if err := h.candidateRepo.UpdateCandidate(ctx, candidate); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(candidate.AccountID),
		ActionType:  models.ActionCandidateUpdated,
		Description: fmt.Sprintf("تحديث الملف الانتخابي: %s", candidate.Name),
		RelatedKind: models.KindCandidate,
		RelatedID:   ptr(candidate.ID),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "تم تحديث الملف الانتخابي بنجاح",
		"candidate": candidate,
	})
}

type promiseRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	DisplayOrder int64  `json:"display_order"`
}

func (h *CandidatesHandler) CreatePromise(w http.ResponseWriter, r *http.Request) {
	candidate := h.ownCandidate(w, r)
	if candidate == nil {
		return
	}

	var req promiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}
	if req.Title == "" {
		apiError(w, http.StatusBadRequest, "عنوان الوعد مطلوب")
		return
	}

	ctx := r.Context()
	if req.DisplayOrder == 0 {
		count, err := h.promiseRepo.CountPromisesByCandidate(ctx, candidate.ID)
		if err != nil {
			apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
			return
		}
		req.DisplayOrder = count + 1
	}

	promise := models.ElectoralPromise{
		CandidateID:  candidate.ID,
		Title:        req.Title,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	}
	promiseID, err := h.promiseRepo.CreatePromise(ctx, &promise)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	promise.ID = promiseID

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(candidate.AccountID),
		ActionType:  models.ActionPromiseCreated,
		Description: fmt.Sprintf("إضافة وعد انتخابي: %s", req.Title),
		RelatedKind: models.KindPromise,
		RelatedID:   ptr(promiseID),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "تمت إضافة الوعد الانتخابي",
		"promise": promise,
	})
}

// ownPromise loads the promise and verifies it belongs to the caller.
func (h *CandidatesHandler) ownPromise(w http.ResponseWriter, r *http.Request, candidate *models.Candidate) *models.ElectoralPromise {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return nil
	}

	promise, err := h.promiseRepo.GetPromiseByID(r.Context(), id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return nil
	}
	if promise == nil || promise.CandidateID != candidate.ID {
		apiError(w, http.StatusNotFound, "الوعد الانتخابي غير موجود")
		return nil
	}
	return promise
}

func (h *CandidatesHandler) UpdatePromise(w http.ResponseWriter, r *http.Request) {
	candidate := h.ownCandidate(w, r)
	if candidate == nil {
		return
	}
	promise := h.ownPromise(w, r, candidate)
	if promise == nil {
		return
	}

	var req promiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}
	if req.Title != "" {
		promise.Title = req.Title
	}
	if req.Description != "" {
		promise.Description = req.Description
	}
	if req.DisplayOrder != 0 {
		promise.DisplayOrder = req.DisplayOrder
	}

	ctx := r.Context()
	if err := h.promiseRepo.UpdatePromise(ctx, promise); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(candidate.AccountID),
		ActionType:  models.ActionPromiseUpdated,
		Description: fmt.Sprintf("تعديل وعد انتخابي: %s", promise.Title),
		RelatedKind: models.KindPromise,
		RelatedID:   ptr(promise.ID),
	})

	writeJSON(w, http.StatusOK, map[string]any{"message": "تم تعديل الوعد الانتخابي", "promise": promise})
}

func (h *CandidatesHandler) DeletePromise(w http.ResponseWriter, r *http.Request) {
	candidate := h.ownCandidate(w, r)
	if candidate == nil {
		return
	}
	promise := h.ownPromise(w, r, candidate)
	if promise == nil {
		return
	}

	ctx := r.Context()
	if err := h.promiseRepo.DeletePromise(ctx, promise.ID); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(candidate.AccountID),
		ActionType:  models.ActionPromiseDeleted,
		Description: fmt.Sprintf("حذف وعد انتخابي: %s", promise.Title),
		RelatedKind: models.KindPromise,
		RelatedID:   ptr(promise.ID),
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "تم حذف الوعد الانتخابي"})
}

type serviceHistoryRequest struct {
	StartYear   int64  `json:"start_year"`
	EndYear     int64  `json:"end_year"`
	Position    string `json:"position"`
	Description string `json:"description"`
}

func (h *CandidatesHandler) CreateServiceHistory(w http.ResponseWriter, r *http.Request) {
	candidate := h.ownCandidate(w, r)
	if candidate == nil {
		return
	}

	var req serviceHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}
	if req.Position == "" || req.StartYear == 0 {
		apiError(w, http.StatusBadRequest, "المنصب وسنة البداية مطلوبان")
		return
	}
	if req.EndYear != 0 && req.EndYear < req.StartYear {
		apiError(w, http.StatusBadRequest, "سنة النهاية قبل سنة البداية")
		return
	}

	entry := models.ServiceHistory{
		CandidateID: candidate.ID,
		StartYear:   req.StartYear,
		EndYear:     req.EndYear,
		Position:    req.Position,
		Description: req.Description,
	}
	entryID, err := h.historyRepo.CreateServiceHistory(r.Context(), &entry)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	entry.ID = entryID

	writeJSON(w, http.StatusCreated, map[string]any{"message": "تمت إضافة الخبرة", "entry": entry})
}

func (h *CandidatesHandler) DeleteServiceHistory(w http.ResponseWriter, r *http.Request) {
	candidate := h.ownCandidate(w, r)
	if candidate == nil {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return
	}

	if err := h.historyRepo.DeleteServiceHistory(r.Context(), id, candidate.ID); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "تم حذف الخبرة"})
}

// Dashboard collects what the candidate's home screen shows: stats,
// unread-message count, latest ratings, and promises.
func (h *CandidatesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	candidate := h.ownCandidate(w, r)
	if candidate == nil {
		return
	}

	ctx := r.Context()
	stats, err := h.candidateRepo.CandidateStats(ctx, candidate.ID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	unread, err := h.messageRepo.CountUnread(ctx, candidate.ID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	ratings, err := h.ratingRepo.ListRatingsByCandidate(ctx, candidate.ID, 5, 0)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	promises, err := h.promiseRepo.ListPromisesByCandidate(ctx, candidate.ID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"candidate":       candidate,
		"stats":           stats,
		"unread_messages": unread,
		"recent_ratings":  ratings,
		"promises":        promises,
	})
}
