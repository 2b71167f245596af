package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/naebak/naebak/internal/db"
	"github.com/naebak/naebak/internal/governorates"
	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

type AdminHandler struct {
	accountRepo   repository.AccountRepo
	candidateRepo repository.CandidateRepo
	citizenRepo   repository.CitizenRepo
	newsRepo      repository.NewsRepo
	activityRepo  repository.ActivityRepo
	statsRepo     repository.StatsRepo
	conn          *db.DB
	pageSize      int
}

func NewAdminHandler(
	ar repository.AccountRepo,
	cr repository.CandidateRepo,
	cir repository.CitizenRepo,
	nr repository.NewsRepo,
	actr repository.ActivityRepo,
	sr repository.StatsRepo,
	conn *db.DB,
	pageSize int,
) *AdminHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &AdminHandler{
		accountRepo:   ar,
		candidateRepo: cr,
		citizenRepo:   cir,
		newsRepo:      nr,
		activityRepo:  actr,
		statsRepo:     sr,
		conn:          conn,
		pageSize:      pageSize,
	}
}

// Overview is the admin landing panel: table totals plus the latest
// activity.
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	totals, err := h.statsRepo.Totals(ctx)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	recent, err := h.activityRepo.RecentActivities(ctx, 10)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totals":            totals,
		"recent_activities": recent,
	})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(r, "page", 1)
	filter := repository.AccountFilter{
		Search: q.Get("search"),
		Role:   q.Get("role"),
		Status: q.Get("status"),
		Limit:  h.pageSize,
		Offset: (page - 1) * h.pageSize,
	}

	accounts, total, err := h.accountRepo.ListAccounts(r.Context(), filter)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users":     accounts,
		"total":     total,
		"page":      page,
		"page_size": h.pageSize,
	})
}

type createCandidateRequest struct {
	Email          string `json:"email"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	GovernorateID  int64  `json:"governorate_id"`
	Constituency   string `json:"constituency"`
	Bio            string `json:"bio"`
	ElectoralProg  string `json:"electoral_program"`
	ElectionSymbol string `json:"election_symbol"`
	ElectionNumber string `json:"election_number"`
}

// CreateCandidate provisions a candidate account plus profile in one
// transaction; validation runs before any row exists.
func (h *AdminHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req createCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	if req.Email == "" || req.Username == "" || req.Name == "" {
		apiError(w, http.StatusBadRequest, "البريد واسم المستخدم واسم المرشح مطلوبة")
		return
	}
	if !validEmail(req.Email) {
		apiError(w, http.StatusBadRequest, "البريد الإلكتروني غير صالح")
		return
	}
	if len(req.Password) < 6 {
		apiError(w, http.StatusBadRequest, "كلمة المرور يجب أن تكون 6 أحرف على الأقل")
		return
	}
	if !governorates.IsValid(req.GovernorateID) {
		apiError(w, http.StatusBadRequest, "المحافظة غير صالحة")
		return
	}

	ctx := r.Context()
	if existing, err := h.accountRepo.GetAccountByEmail(ctx, req.Email); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	} else if existing != nil {
		apiError(w, http.StatusConflict, "البريد الإلكتروني مسجل بالفعل")
		return
	}
	if taken, err := h.accountRepo.UsernameExists(ctx, req.Username); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	} else if taken {
		apiError(w, http.StatusConflict, "اسم المستخدم مسجل بالفعل")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	account := models.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	candidate := models.Candidate{
		Name:           req.Name,
		Role:           req.Role,
		GovernorateID:  req.GovernorateID,
		Constituency:   req.Constituency,
		Bio:            req.Bio,
		ElectoralProg:  req.ElectoralProg,
		ElectionSymbol: req.ElectionSymbol,
		ElectionNumber: req.ElectionNumber,
	}

	accountID, candidateID, err := h.candidateRepo.CreateCandidateAccount(ctx, &account, &candidate)
	if err != nil {
		apiError(w, http.StatusConflict, "تعذر إنشاء حساب المرشح")
		return
	}

	admin := identityFrom(ctx)
	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(admin.AccountID),
		ActionType:  models.ActionCandidateCreated,
		Description: fmt.Sprintf("إنشاء مرشح جديد: %s", req.Name),
		RelatedKind: models.KindCandidate,
		RelatedID:   ptr(candidateID),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"account_id":   accountID,
		"candidate_id": candidateID,
		"message":      "تم إنشاء حساب المرشح بنجاح",
	})
}

// DeleteCandidate removes the candidate's account; profile, promises,
// messages, ratings, and votes cascade away with it.
func (h *AdminHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
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

	if err := h.candidateRepo.DeleteCandidateAccount(ctx, id); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	admin := identityFrom(ctx)
	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(admin.AccountID),
		ActionType:  models.ActionCandidateDeleted,
		Description: fmt.Sprintf("حذف المرشح: %s", candidate.Name),
		Severity:    models.SeverityWarning,
		RelatedKind: models.KindCandidate,
		RelatedID:   ptr(id),
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "تم حذف المرشح"})
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return
	}

	ctx := r.Context()
	admin := identityFrom(ctx)
	if admin.AccountID == id {
		apiError(w, http.StatusBadRequest, "لا يمكنك حذف حسابك")
		return
	}

	account, err := h.accountRepo.GetAccountByID(ctx, id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	if account == nil {
		apiError(w, http.StatusNotFound, "الحساب غير موجود")
		return
	}

	if err := h.accountRepo.DeleteAccount(ctx, id); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(admin.AccountID),
		ActionType:  models.ActionUserDeleted,
		Description: fmt.Sprintf("حذف الحساب: %s", account.Username),
		Severity:    models.SeverityWarning,
		RelatedKind: models.KindAccount,
		RelatedID:   ptr(id),
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "تم حذف الحساب"})
}
