package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/naebak/naebak/internal/governorates"
	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

type AuthHandler struct {
	accountRepo   repository.AccountRepo
	citizenRepo   repository.CitizenRepo
	activityRepo  repository.ActivityRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ar repository.AccountRepo, cr repository.CitizenRepo, actr repository.ActivityRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{accountRepo: ar, citizenRepo: cr, activityRepo: actr, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type registerRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	GovernorateID   int64  `json:"governorate_id"`
	AreaType        string `json:"area_type"`
	AreaName        string `json:"area_name"`
	Address         string `json:"address"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Login    string `json:"login"` // username or email
	Password string `json:"password"`
}

type quickLoginRequest struct {
	GovernorateID int64  `json:"governorate_id"`
	Name          string `json:"name"`
	PhoneNumber   string `json:"phone_number"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Account *models.Account `json:"account,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (h *AuthHandler) issueToken(accountID int64, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": accountID,
		"role":       role,
		"exp":        time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}

// generateUsername derives a username from the email local part,
// appending a numeric suffix until it is free.
func (h *AuthHandler) generateUsername(r *http.Request, email string) (string, error) {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	base = strings.Map(func(c rune) rune {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '.' || c == '_' {
			return c
		}
		return -1
	}, base)
	if base == "" {
		base = "user"
	}

	ctx := r.Context()
	candidate := base
	for i := 1; ; i++ {
		taken, err := h.accountRepo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.PhoneNumber == "" {
		apiError(w, http.StatusBadRequest, "جميع الحقول مطلوبة")
		return
	}
	if !validEmail(req.Email) {
		apiError(w, http.StatusBadRequest, "البريد الإلكتروني غير صالح")
		return
	}
	if !governorates.IsValid(req.GovernorateID) {
		apiError(w, http.StatusBadRequest, "المحافظة غير صالحة")
		return
	}
	if len(req.Password) < 6 {
		apiError(w, http.StatusBadRequest, "كلمة المرور يجب أن تكون 6 أحرف على الأقل")
		return
	}
	if req.Password != req.ConfirmPassword {
		apiError(w, http.StatusBadRequest, "كلمتا المرور غير متطابقتين")
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

	username, err := h.generateUsername(r, req.Email)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	account := models.Account{
		Username:     username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	citizen := models.Citizen{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		GovernorateID: req.GovernorateID,
		AreaType:      req.AreaType,
		AreaName:      req.AreaName,
		Address:       req.Address,
	}

	accountID, _, err := h.citizenRepo.RegisterCitizen(ctx, &account, &citizen)
	if err != nil {
		apiError(w, http.StatusConflict, "تعذر إنشاء الحساب")
		return
	}
	account.ID = accountID
	account.Role = models.RoleCitizen
	account.IsActive = true

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(accountID),
		ActionType:  models.ActionRegister,
		Description: fmt.Sprintf("تسجيل مواطن جديد: %s %s", req.FirstName, req.LastName),
		RelatedKind: models.KindAccount,
		RelatedID:   ptr(accountID),
	})

	tokenStr, err := h.issueToken(accountID, models.RoleCitizen)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token:   tokenStr,
		Account: &account,
		Message: fmt.Sprintf("مرحباً بك يا %s! تم إنشاء حسابك بنجاح", req.FirstName),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		apiError(w, http.StatusBadRequest, "اسم المستخدم وكلمة المرور مطلوبان")
		return
	}

	ctx := r.Context()

	var account *models.Account
	var err error
	if strings.Contains(req.Login, "@") {
		account, err = h.accountRepo.GetAccountByEmail(ctx, strings.ToLower(req.Login))
	} else {
		account, err = h.accountRepo.GetAccountByUsername(ctx, req.Login)
	}
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	if account == nil || !account.IsActive ||
		bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		var accountID *int64
		if account != nil {
			accountID = ptr(account.ID)
		}
		record(ctx, h.activityRepo, r, &models.Activity{
			AccountID:   accountID,
			ActionType:  models.ActionSecurityAlert,
			Description: fmt.Sprintf("محاولة دخول فاشلة: %s", req.Login),
			Severity:    models.SeverityWarning,
		})
		apiError(w, http.StatusUnauthorized, "بيانات الدخول غير صحيحة")
		return
	}

	if err := h.accountRepo.UpdateLastLogin(ctx, account.ID, time.Now().UTC().UnixMilli()); err != nil {
		logger.Error("update last login", "err", err)
	}

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(account.ID),
		ActionType:  models.ActionLogin,
		Description: fmt.Sprintf("تسجيل دخول: %s", account.Username),
	})

	tokenStr, err := h.issueToken(account.ID, account.Role)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: tokenStr, Account: account})
}

// QuickLogin matches a citizen by governorate, phone, and first-name
// token. Only a single unambiguous match signs in; anything else gets
// the same "no match" answer, and ambiguity leaves a security alert in
// the log.
func (h *AuthHandler) QuickLogin(w http.ResponseWriter, r *http.Request) {
	var req quickLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}

	nameToken := strings.TrimSpace(req.Name)
	if i := strings.IndexByte(nameToken, ' '); i > 0 {
		nameToken = nameToken[:i]
	}
	if req.PhoneNumber == "" || nameToken == "" {
		apiError(w, http.StatusBadRequest, "الاسم ورقم الهاتف مطلوبان")
		return
	}

	ctx := r.Context()

	matches, err := h.citizenRepo.FindCitizensByPhone(ctx, req.PhoneNumber, nameToken)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	if req.GovernorateID > 0 {
		filtered := matches[:0]
		for _, c := range matches {
			if c.GovernorateID == req.GovernorateID {
				filtered = append(filtered, c)
			}
		}
		matches = filtered
	}

	if len(matches) != 1 {
		if len(matches) > 1 {
			record(ctx, h.activityRepo, r, &models.Activity{
				ActionType:  models.ActionSecurityAlert,
				Description: fmt.Sprintf("دخول سريع غامض لرقم الهاتف %s (%d تطابق)", req.PhoneNumber, len(matches)),
				Severity:    models.SeverityWarning,
			})
		}
		apiError(w, http.StatusUnauthorized, "لم يتم العثور على حساب مطابق")
		return
	}

	citizen := matches[0]
	account, err := h.accountRepo.GetAccountByID(ctx, citizen.AccountID)
	if err != nil || account == nil || !account.IsActive {
		apiError(w, http.StatusUnauthorized, "لم يتم العثور على حساب مطابق")
		return
	}

	if err := h.accountRepo.UpdateLastLogin(ctx, account.ID, time.Now().UTC().UnixMilli()); err != nil {
		logger.Error("update last login", "err", err)
	}

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(account.ID),
		ActionType:  models.ActionLogin,
		Description: fmt.Sprintf("دخول سريع: %s", account.Username),
	})

	tokenStr, err := h.issueToken(account.ID, account.Role)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: tokenStr, Account: account})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if id := identityFrom(ctx); id != nil {
		record(ctx, h.activityRepo, r, &models.Activity{
			AccountID:  ptr(id.AccountID),
			ActionType: models.ActionLogout,
		})
	}

	// Stateless JWT; the client drops the token.
	writeJSON(w, http.StatusOK, map[string]string{"message": "تم تسجيل الخروج بنجاح"})
}

type profileResponse struct {
	Account         *models.Account `json:"account"`
	Citizen         *models.Citizen `json:"citizen,omitempty"`
	GovernorateName string          `json:"governorate_name,omitempty"`
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := identityFrom(ctx)

	account, err := h.accountRepo.GetAccountByID(ctx, id.AccountID)
	if err != nil || account == nil {
		apiError(w, http.StatusNotFound, "الحساب غير موجود")
		return
	}

	resp := profileResponse{Account: account}
	if account.Role == models.RoleCitizen {
		citizen, err := h.citizenRepo.GetCitizenByAccountID(ctx, id.AccountID)
		if err != nil {
			apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
			return
		}
		resp.Citizen = citizen
		if citizen != nil {
			resp.GovernorateName = governorates.NameAr(citizen.GovernorateID)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type updateProfileRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	PhoneNumber   string `json:"phone_number"`
	GovernorateID int64  `json:"governorate_id"`
	AreaType      string `json:"area_type"`
	AreaName      string `json:"area_name"`
	Address       string `json:"address"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}

	ctx := r.Context()
	id := identityFrom(ctx)

	citizen, err := h.citizenRepo.GetCitizenByAccountID(ctx, id.AccountID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	if citizen == nil {
		apiError(w, http.StatusNotFound, "الملف الشخصي غير موجود")
		return
	}

	if req.GovernorateID != 0 && !governorates.IsValid(req.GovernorateID) {
		apiError(w, http.StatusBadRequest, "المحافظة غير صالحة")
		return
	}

	if req.FirstName != "" {
		citizen.FirstName = req.FirstName
	}
	if req.LastName != "" {
		citizen.LastName = req.LastName
	}
	if req.PhoneNumber != "" {
		citizen.PhoneNumber = req.PhoneNumber
	}
	if req.GovernorateID != 0 {
		citizen.GovernorateID = req.GovernorateID
	}
	if req.AreaType != "" {
		citizen.AreaType = req.AreaType
	}
	if req.AreaName != "" {
		citizen.AreaName = req.AreaName
	}
	if req.Address != "" {
		citizen.Address = req.Address
	}

	if err := h.citizenRepo.UpdateCitizen(ctx, citizen); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(id.AccountID),
		ActionType:  models.ActionProfileUpdate,
		Description: "تحديث الملف الشخصي",
		RelatedKind: models.KindCitizen,
		RelatedID:   ptr(citizen.ID),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "تم تحديث الملف الشخصي بنجاح",
		"citizen": citizen,
	})
}
