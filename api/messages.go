package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

const (
	maxSubjectLen = 300
	maxContentLen = 5000
)

type MessagesHandler struct {
	candidateRepo repository.CandidateRepo
	messageRepo   repository.MessageRepo
	accountRepo   repository.AccountRepo
	activityRepo  repository.ActivityRepo
	pageSize      int
}

func NewMessagesHandler(cr repository.CandidateRepo, mr repository.MessageRepo, ar repository.AccountRepo, actr repository.ActivityRepo, pageSize int) *MessagesHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &MessagesHandler{candidateRepo: cr, messageRepo: mr, accountRepo: ar, activityRepo: actr, pageSize: pageSize}
}

type sendMessageRequest struct {
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Attachment  string `json:"attachment"`
}

// SendMessage accepts a message from a logged-in account or, with name
// and a valid email, from an anonymous visitor.
func (h *MessagesHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	candidateID, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "طلب غير صالح")
		return
	}
	if req.Subject == "" || req.Content == "" {
		apiError(w, http.StatusBadRequest, "الموضوع والمحتوى مطلوبان")
		return
	}
	if len(req.Subject) > maxSubjectLen || len(req.Content) > maxContentLen {
		apiError(w, http.StatusBadRequest, "الرسالة أطول من المسموح")
		return
	}

	ctx := r.Context()
	candidate, err := h.candidateRepo.GetCandidateByID(ctx, candidateID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	if candidate == nil {
		apiError(w, http.StatusNotFound, "المرشح غير موجود")
		return
	}

	msg := models.Message{
		CandidateID: candidate.ID,
		Subject:     req.Subject,
		Content:     req.Content,
		Attachment:  req.Attachment,
	}

	caller := identityFrom(ctx)
	if caller != nil {
		account, err := h.accountRepo.GetAccountByID(ctx, caller.AccountID)
		if err != nil || account == nil {
			apiError(w, http.StatusUnauthorized, "الحساب غير موجود")
			return
		}
		msg.SenderAccountID = ptr(account.ID)
		msg.SenderName = account.FirstName + " " + account.LastName
		msg.SenderEmail = account.Email
	} else {
		if req.SenderName == "" || !validEmail(req.SenderEmail) {
			apiError(w, http.StatusBadRequest, "الاسم والبريد الإلكتروني مطلوبان للرسائل بدون حساب")
			return
		}
		msg.SenderName = req.SenderName
		msg.SenderEmail = req.SenderEmail
	}

	msgID, err := h.messageRepo.CreateMessage(ctx, &msg)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	msg.ID = msgID

	activity := models.Activity{
		ActionType:  models.ActionMessageSent,
		Description: fmt.Sprintf("رسالة جديدة إلى المرشح %s: %s", candidate.Name, req.Subject),
		RelatedKind: models.KindMessage,
		RelatedID:   ptr(msgID),
	}
	if caller != nil {
		activity.AccountID = ptr(caller.AccountID)
	}
	record(ctx, h.activityRepo, r, &activity)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message_id": msgID,
		"message":    "تم إرسال رسالتك بنجاح",
	})
}

// ownCandidate resolves the calling candidate's profile row.
func (h *MessagesHandler) ownCandidate(w http.ResponseWriter, r *http.Request) *models.Candidate {
	id := identityFrom(r.Context())
	if id == nil || id.Role != models.RoleCandidate {
		apiError(w, http.StatusForbidden, "صندوق الرسائل متاح للمرشحين فقط")
		return nil
	}

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

// Inbox lists the candidate's inbound messages and marks the unread
// ones read, the way opening the mailbox does.
func (h *MessagesHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	candidate := h.ownCandidate(w, r)
	if candidate == nil {
		return
	}

	ctx := r.Context()
	page := queryInt(r, "page", 1)
	offset := (page - 1) * h.pageSize

	messages, err := h.messageRepo.ListInbox(ctx, candidate.ID, h.pageSize, offset)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	total, err := h.messageRepo.CountInbox(ctx, candidate.ID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	if _, err := h.messageRepo.MarkCandidateMessagesRead(ctx, candidate.ID); err != nil {
		logger.Error("mark messages read", "candidate_id", candidate.ID, "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages":  messages,
		"total":     total,
		"page":      page,
		"page_size": h.pageSize,
	})
}

// Thread returns a message with its replies. Only the sender and the
// owning candidate may read it.
func (h *MessagesHandler) Thread(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return
	}

	ctx := r.Context()
	msg, err := h.messageRepo.GetMessageByID(ctx, id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	if msg == nil {
		apiError(w, http.StatusNotFound, "الرسالة غير موجودة")
		return
	}

	caller := identityFrom(ctx)
	allowed := false
	if caller != nil {
		if msg.SenderAccountID != nil && *msg.SenderAccountID == caller.AccountID {
			allowed = true
		} else if caller.Role == models.RoleCandidate {
			candidate, err := h.candidateRepo.GetCandidateByAccountID(ctx, caller.AccountID)
			if err == nil && candidate != nil && candidate.ID == msg.CandidateID {
				allowed = true
			}
		}
	}
	if !allowed {
		apiError(w, http.StatusForbidden, "غير مصرح لك بالاطلاع على هذه الرسالة")
		return
	}

	replies, err := h.messageRepo.ListReplies(ctx, id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": msg,
		"replies": replies,
	})
}

type replyRequest struct {
	Content string `json:"content"`
}

// Reply creates the candidate's answer in the original's thread. The
// reply is born read; it sits in the citizen's sent view, not an inbox.
func (h *MessagesHandler) Reply(w http.ResponseWriter, r *http.Request) {
	candidate := h.ownCandidate(w, r)
	if candidate == nil {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, http.StatusBadRequest, "معرف غير صالح")
		return
	}

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		apiError(w, http.StatusBadRequest, "نص الرد مطلوب")
		return
	}
	if len(req.Content) > maxContentLen {
		apiError(w, http.StatusBadRequest, "الرسالة أطول من المسموح")
		return
	}

	ctx := r.Context()
	original, err := h.messageRepo.GetMessageByID(ctx, id)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	if original == nil || original.CandidateID != candidate.ID {
		apiError(w, http.StatusNotFound, "الرسالة غير موجودة")
		return
	}
	if original.ReplyTo != nil {
		apiError(w, http.StatusBadRequest, "لا يمكن الرد على رد")
		return
	}

	reply := models.Message{
		CandidateID:     candidate.ID,
		SenderAccountID: ptr(candidate.AccountID),
		SenderName:      candidate.Name,
		Subject:         "رد: " + original.Subject,
		Content:         req.Content,
		IsRead:          true,
		ReplyTo:         ptr(original.ID),
	}
	replyID, err := h.messageRepo.CreateMessage(ctx, &reply)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	reply.ID = replyID

	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(candidate.AccountID),
		ActionType:  models.ActionMessageReply,
		Description: fmt.Sprintf("رد على رسالة: %s", original.Subject),
		RelatedKind: models.KindMessage,
		RelatedID:   ptr(replyID),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"reply":   reply,
		"message": "تم إرسال الرد",
	})
}

// Notifications is the polling endpoint behind the unread badge.
func (h *MessagesHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	candidate := h.ownCandidate(w, r)
	if candidate == nil {
		return
	}

	unread, err := h.messageRepo.CountUnread(r.Context(), candidate.ID)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"unread_messages": unread})
}

// SentMessages lists the caller's outgoing messages.
func (h *MessagesHandler) SentMessages(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	page := queryInt(r, "page", 1)
	offset := (page - 1) * h.pageSize
	messages, err := h.messageRepo.ListSentByAccount(r.Context(), caller.AccountID, h.pageSize, offset)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages":  messages,
		"page":      page,
		"page_size": h.pageSize,
	})
}
