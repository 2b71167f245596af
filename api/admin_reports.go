package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/naebak/naebak/internal/governorates"
	"github.com/naebak/naebak/pkg/repository"
)

// systemHealth grades the platform from recent error and critical
// activity volume.
func systemHealth(problemCount int64) string {
	switch {
	case problemCount == 0:
		return "excellent"
	case problemCount < 5:
		return "good"
	case problemCount < 20:
		return "warning"
	default:
		return "critical"
	}
}

// Reports is the admin analytics dashboard.
func (h *AdminHandler) Reports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	days := queryInt(r, "days", 30)
	since := time.Now().UTC().AddDate(0, 0, -days).UnixMilli()

	period, err := h.statsRepo.PeriodStats(ctx, since)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	top, err := h.statsRepo.TopCandidates(ctx, 10)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	byGov, err := h.candidateRepo.CountCandidatesByGovernorate(ctx)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}

	dayAgo := time.Now().UTC().Add(-24 * time.Hour).UnixMilli()
	bySeverity, err := h.activityRepo.CountBySeverity(ctx, dayAgo)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
		return
	}
	problems := bySeverity["error"] + bySeverity["critical"]

	govDist := make([]map[string]any, 0, len(byGov))
	for _, g := range governorates.All() {
		if count, ok := byGov[g.ID]; ok {
			govDist = append(govDist, map[string]any{
				"governorate_id": g.ID,
				"name":           g.NameAr,
				"count":          count,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"period_days":              days,
		"period":                   period,
		"top_candidates":           top,
		"governorate_distribution": govDist,
		"system_health":            systemHealth(problems),
		"problem_count":            problems,
	})
}

// ExportCSV streams a report as CSV. The UTF-8 BOM keeps Arabic headers
// intact when the file lands in a spreadsheet.
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	reportType := mux.Vars(r)["type"]

	ctx := r.Context()
	var header []string
	var rows [][]string

	switch reportType {
	case "candidates":
		all, err := h.candidateRepo.ListCandidatesWithStats(ctx, repository.CandidateFilter{})
		if err != nil {
			apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
			return
		}
		header = []string{"المعرف", "الاسم", "المحافظة", "الدائرة", "الأصوات المؤيدة", "الأصوات المعارضة", "متوسط التقييم", "عدد الرسائل"}
		for _, cs := range all {
			rows = append(rows, []string{
				strconv.FormatInt(cs.Candidate.ID, 10),
				cs.Candidate.Name,
				governorates.NameAr(cs.Candidate.GovernorateID),
				cs.Candidate.Constituency,
				strconv.FormatInt(cs.Stats.ApproveVotes, 10),
				strconv.FormatInt(cs.Stats.DisapproveVotes, 10),
				fmt.Sprintf("%.2f", cs.Stats.AvgRating),
				strconv.FormatInt(cs.Stats.TotalMessages, 10),
			})
		}
	case "users":
		accounts, _, err := h.accountRepo.ListAccounts(ctx, repository.AccountFilter{Limit: 100000})
		if err != nil {
			apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
			return
		}
		header = []string{"المعرف", "اسم المستخدم", "البريد الإلكتروني", "الاسم الأول", "اسم العائلة", "الدور", "نشط"}
		for _, a := range accounts {
			active := "لا"
			if a.IsActive {
				active = "نعم"
			}
			rows = append(rows, []string{
				strconv.FormatInt(a.ID, 10),
				a.Username,
				a.Email,
				a.FirstName,
				a.LastName,
				a.Role,
				active,
			})
		}
	default:
		apiError(w, http.StatusBadRequest, "نوع التقرير غير صالح")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", reportType))
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		logger.Error("write csv bom", "err", err)
		return
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		logger.Error("write csv header", "err", err)
		return
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			logger.Error("write csv row", "err", err)
			return
		}
	}
	cw.Flush()
}

// Charts serves the data series behind the admin graphs.
func (h *AdminHandler) Charts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.URL.Query().Get("type") {
	case "daily_activity":
		counts, err := h.activityRepo.DailyActivityCounts(ctx, 30)
		if err != nil {
			apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"type": "daily_activity", "data": counts})
	case "governorate_distribution":
		byGov, err := h.candidateRepo.CountCandidatesByGovernorate(ctx)
		if err != nil {
			apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
			return
		}
		// top 10 governorates by candidate count
		type govCount struct {
			Name  string `json:"name"`
			Count int64  `json:"count"`
		}
		data := make([]govCount, 0, len(byGov))
		for _, g := range governorates.All() {
			if count, ok := byGov[g.ID]; ok && count > 0 {
				data = append(data, govCount{Name: g.NameAr, Count: count})
			}
		}
		sort.SliceStable(data, func(i, j int) bool { return data[i].Count > data[j].Count })
		if len(data) > 10 {
			data = data[:10]
		}
		writeJSON(w, http.StatusOK, map[string]any{"type": "governorate_distribution", "data": data})
	default:
		apiError(w, http.StatusBadRequest, "نوع الرسم البياني غير صالح")
	}
}
