package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

type VotingHandler struct {
	candidateRepo repository.CandidateRepo
	citizenRepo   repository.CitizenRepo
	voteRepo      repository.VoteRepo
	ratingRepo    repository.RatingRepo
	activityRepo  repository.ActivityRepo
}

func NewVotingHandler(cr repository.CandidateRepo, cir repository.CitizenRepo, vr repository.VoteRepo, rr repository.RatingRepo, actr repository.ActivityRepo) *VotingHandler {
	return &VotingHandler{candidateRepo: cr, citizenRepo: cir, voteRepo: vr, ratingRepo: rr, activityRepo: actr}
}

// callerCitizen resolves the calling citizen's profile; voting and
// rating are citizen-only.
func (h *VotingHandler) callerCitizen(w http.ResponseWriter, r *http.Request) *models.Citizen {
	id := identityFrom(r.Context())
	if id == nil || id.Role != models.RoleCitizen {
		apiError(w, http.StatusForbidden, "التصويت متاح للمواطنين فقط")
		return nil
	}

	citizen, err := h.citizenRepo.GetCitizenByAccountID(r.Context(), id.AccountID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return nil
	}
	if citizen == nil {
		apiError(w, http.StatusNotFound, "الملف الشخصي غير موجود")
		return nil
	}
	return citizen
}

func (h *VotingHandler) targetCandidate(w http.ResponseWriter, r *http.Request) *models.Candidate {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return nil
	}

	candidate, err := h.candidateRepo.GetCandidateByID(r.Context(), id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return nil
	}
	if candidate == nil {
		apiError(w, http.StatusNotFound, "المرشح غير موجود")
		return nil
	}
	return candidate
}

type voteRequest struct {
	VoteType string `json:"vote_type"`
}

var voteActionMessages = map[string]string{
	models.VoteActionCreated: "تم تسجيل صوتك",
	models.VoteActionUpdated: "تم تغيير صوتك",
	models.VoteActionRemoved: "تم إلغاء صوتك",
}

var voteActionTypes = map[string]string{
	models.VoteActionCreated: models.ActionVoteCast,
	models.VoteActionUpdated: models.ActionVoteUpdated,
	models.VoteActionRemoved: models.ActionVoteRemoved,
}

// Vote toggles the citizen's vote: first submission creates it, the
// same type again removes it, the opposite type flips it.
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	citizen := h.callerCitizen(w, r)
	if citizen == nil {
		return
	}
	candidate := h.targetCandidate(w, r)
	if candidate == nil {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}
	if req.VoteType != models.VoteApprove && req.VoteType != models.VoteDisapprove {
		apiError(w, http.StatusBadRequest, "نوع التصويت غير صالح")
		return
	}

	ctx := r.Context()
	action, err := h.voteRepo.ToggleVote(ctx, candidate.ID, citizen.ID, req.VoteType)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(citizen.AccountID),
		ActionType:  voteActionTypes[action],
		Description: fmt.Sprintf("تصويت %s للمرشح %s", req.VoteType, candidate.Name),
		RelatedKind: models.KindCandidate,
		RelatedID:   ptr(candidate.ID),
	})

	stats, err := h.candidateRepo.CandidateStats(ctx, candidate.ID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"action":  action,
		"message": voteActionMessages[action],
		"stats":   stats,
	})
}

type rateRequest struct {
	Stars   int64  `json:"stars"`
	Comment string `json:"comment"`
}

// Rate creates or replaces the citizen's rating of the candidate.
func (h *VotingHandler) Rate(w http.ResponseWriter, r *http.Request) {
	citizen := h.callerCitizen(w, r)
	if citizen == nil {
		return
	}
	candidate := h.targetCandidate(w, r)
	if candidate == nil {
		return
	}

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}
	if req.Stars < 1 || req.Stars > 5 {
		apiError(w, http.StatusBadRequest, "التقييم يجب أن يكون بين 1 و 5 نجوم")
		return
	}

	ctx := r.Context()
	rating := models.Rating{
		CandidateID: candidate.ID,
		CitizenID:   citizen.ID,
		Stars:       req.Stars,
		Comment:     req.Comment,
	}
	action, err := h.ratingRepo.UpsertRating(ctx, &rating)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	actionType := models.ActionRatingGiven
	message := "تم تسجيل تقييمك"
	if action == models.VoteActionUpdated {
		actionType = models.ActionRatingUpdated
		message = "تم تحديث تقييمك"
	}

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(citizen.AccountID),
		ActionType:  actionType,
		Description: fmt.Sprintf("تقييم %d نجوم للمرشح %s", req.Stars, candidate.Name),
		RelatedKind: models.KindCandidate,
		RelatedID:   ptr(candidate.ID),
	})

	stats, err := h.candidateRepo.CandidateStats(ctx, candidate.ID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"action":  action,
		"message": message,
		"stats":   stats,
	})
}

type ratingReplyRequest struct {
	Content string `json:"content"`
}

// ReplyToRating lets the rated candidate attach a single public reply;
// a new reply replaces the old one.
func (h *VotingHandler) ReplyToRating(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	if id == nil || id.Role != models.RoleCandidate {
		apiError(w, http.StatusForbidden, "الرد متاح للمرشحين فقط")
		return
	}

	ratingID, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return
	}

	var req ratingReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		apiError(w, http.StatusBadRequest, "نص الرد مطلوب")
		return
	}

	ctx := r.Context()
	candidate, err := h.candidateRepo.GetCandidateByAccountID(ctx, id.AccountID)
	if err != nil || candidate == nil {
		apiError(w, http.StatusNotFound, "الملف الانتخابي غير موجود")
		return
	}

	rating, err := h.ratingRepo.GetRatingByID(ctx, ratingID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	if rating == nil || rating.CandidateID != candidate.ID {
		apiError(w, http.StatusNotFound, "التقييم غير موجود")
		return
	}

	reply := models.RatingReply{
		RatingID:    ratingID,
		CandidateID: candidate.ID,
		Content:     req.Content,
	}
	if _, err := h.ratingRepo.UpsertRatingReply(ctx, &reply); err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(candidate.AccountID),
		ActionType:  models.ActionRatingReply,
		Description: "رد على تقييم",
		RelatedKind: models.KindRating,
		RelatedID:   ptr(ratingID),
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "تم إرسال الرد"})
}
