package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

// writeJSON encodes v with the JSON content type. Encoding failures are
// logged; headers are already gone at that point.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write json", "err", err)
	}
}

// apiError sends an Arabic error message in the standard envelope.
func apiError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// record writes an activity-log entry with the request's client
// context attached. Log failures never fail the request.
func record(ctx context.Context, repo repository.ActivityRepo, r *http.Request, a *models.Activity) {
	if a.SessionKey == "" {
		a.SessionKey = uuid.NewString()
	}
	a.IPAddress = clientIP(r)
	a.UserAgent = r.UserAgent()
	if _, err := repo.LogActivity(ctx, a); err != nil {
		logger.Error("log activity", "action", a.ActionType, "err", err)
	}
}

func ptr(v int64) *int64 { return &v }

// validEmail is the permissive shape check used on anonymous senders.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	if at < 1 || at == len(s)-1 {
		return false
	}
	dot := strings.LastIndex(s[at:], ".")
	return dot > 1 && at+dot < len(s)-1
}
