package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/naebak/naebak/internal/backup"
	"github.com/naebak/naebak/pkg/models"
)

const maxBackupUpload = 64 << 20 // 64 MiB

// Backup dumps the database and streams it back as a JSON download.
func (h *AdminHandler) Backup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := backup.Dump(ctx, h.conn)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "تعذر إنشاء النسخة الاحتياطية")
		return
	}

	admin := identityFrom(ctx)
	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(admin.AccountID),
		ActionType:  models.ActionBackupCreated,
		Description: fmt.Sprintf("إنشاء نسخة احتياطية %s", doc.Metadata.ID),
		RelatedKind: models.KindBackup,
	})

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=naebak-backup-%s.json", doc.Metadata.ID))
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		logger.Error("write backup", "err", err)
	}
}

// Restore validates an uploaded dump and replays it. With ?clear=true
// the current data is wiped first.
func (h *AdminHandler) Restore(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBackupUpload))
	if err != nil {
		apiError(w, http.StatusBadRequest, "تعذر قراءة الملف")
		return
	}

	ctx := r.Context()
	doc, err := backup.Validate(ctx, raw)
	if err != nil {
		logger.Error("validate backup", "err", err)
		apiError(w, http.StatusBadRequest, "ملف النسخة الاحتياطية غير صالح")
		return
	}

	clear := r.URL.Query().Get("clear") == "true"
	if err := backup.Restore(ctx, h.conn, doc, clear); err != nil {
		logger.Error("restore backup", "err", err)
		apiError(w, http.StatusInternalServerError, "فشلت عملية الاستعادة")
		return
	}

	admin := identityFrom(ctx)
	record(ctx, h.activityRepo, r, &models.Activity{
		AccountID:   ptr(admin.AccountID),
		ActionType:  models.ActionBackupRestored,
		Description: fmt.Sprintf("استعادة نسخة احتياطية %s", doc.Metadata.ID),
		Severity:    models.SeverityWarning,
		RelatedKind: models.KindBackup,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"backup_id": doc.Metadata.ID,
		"message":   "تمت الاستعادة بنجاح",
	})
}
