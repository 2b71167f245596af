package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

const activityColumns = `id, account_id, action_type, description, severity, ip_address, user_agent, session_key, related_kind, related_id, extra_data, created`

func scanActivity(row interface{ Scan(...any) error }) (*models.Activity, error) {
	var a models.Activity
	if err := row.Scan(&a.ID, &a.AccountID, &a.ActionType, &a.Description, &a.Severity, &a.IPAddress, &a.UserAgent, &a.SessionKey, &a.RelatedKind, &a.RelatedID, &a.ExtraData, &a.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func collectActivities(rows *sql.Rows) ([]models.Activity, error) {
	var out []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.AccountID, &a.ActionType, &a.Description, &a.Severity, &a.IPAddress, &a.UserAgent, &a.SessionKey, &a.RelatedKind, &a.RelatedID, &a.ExtraData, &a.Created); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) LogActivity(ctx context.Context, a *models.Activity) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("activity is nil")
	}
	if a.ActionType == "" {
		return 0, fmt.Errorf("action type is required")
	}
	if a.Severity == "" {
		a.Severity = models.SeverityInfo
	}
	if a.Created == 0 {
		a.Created = now()
	}
	// extra_data is NOT NULL; an unset payload is stored as an empty object
	if len(a.ExtraData) == 0 {
		a.ExtraData = json.RawMessage(`{}`)
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO activity_log (account_id, action_type, description, severity, ip_address, user_agent, session_key, related_kind, related_id, extra_data, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.AccountID, a.ActionType, a.Description, a.Severity, a.IPAddress, a.UserAgent, a.SessionKey, a.RelatedKind, a.RelatedID, a.ExtraData, a.Created)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetActivityByID(ctx context.Context, id int64) (*models.Activity, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+activityColumns+` FROM activity_log WHERE id = ?`, id)
	return scanActivity(row)
}

func (r *SQLiteRepo) ListActivities(ctx context.Context, f repository.ActivityFilter) ([]models.Activity, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.ActionType != "" {
		where += ` AND action_type = ?`
		args = append(args, f.ActionType)
	}
	if f.Severity != "" {
		where += ` AND severity = ?`
		args = append(args, f.Severity)
	}
	if f.AccountID > 0 {
		where += ` AND account_id = ?`
		args = append(args, f.AccountID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where += ` AND (description LIKE ? OR ip_address LIKE ?)`
		args = append(args, like, like)
	}

	var total int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM activity_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)
	rows, err := r.conn.QueryRows(ctx, `SELECT `+activityColumns+` FROM activity_log`+where+` ORDER BY created DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectActivities(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *SQLiteRepo) RecentActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn.QueryRows(ctx, `SELECT `+activityColumns+` FROM activity_log ORDER BY created DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

func (r *SQLiteRepo) AccountActivities(ctx context.Context, accountID int64, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn.QueryRows(ctx, `SELECT `+activityColumns+` FROM activity_log WHERE account_id = ? ORDER BY created DESC LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

// SecurityAlerts surfaces the auth-related action types, newest first.
func (r *SQLiteRepo) SecurityAlerts(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 20
	}

	placeholders := strings.Repeat("?,", len(models.SecurityActions))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(models.SecurityActions)+1)
	for _, action := range models.SecurityActions {
		args = append(args, action)
	}
	args = append(args, limit)

	rows, err := r.conn.QueryRows(ctx, `SELECT `+activityColumns+` FROM activity_log WHERE action_type IN (`+placeholders+`) ORDER BY created DESC LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

func (r *SQLiteRepo) CriticalActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.conn.QueryRows(ctx, `SELECT `+activityColumns+` FROM activity_log WHERE severity IN (?, ?) ORDER BY created DESC LIMIT ?`,
		models.SeverityError, models.SeverityCritical, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

func (r *SQLiteRepo) CountBySeverity(ctx context.Context, since int64) (map[string]int64, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT severity, COUNT(*) FROM activity_log WHERE created >= ? GROUP BY severity`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{
		models.SeverityInfo:     0,
		models.SeverityWarning:  0,
		models.SeverityError:    0,
		models.SeverityCritical: 0,
	}
	for rows.Next() {
		var severity string
		var cnt int64
		if err := rows.Scan(&severity, &cnt); err != nil {
			return nil, err
		}
		out[severity] = cnt
	}
	return out, rows.Err()
}

// DailyActivityCounts returns one entry per day for the last N days,
// zero-filled for days with no activity so charts render contiguous
// axes.
func (r *SQLiteRepo) DailyActivityCounts(ctx context.Context, days int) ([]repository.DailyCount, error) {
	if days <= 0 {
		days = 30
	}

	start := time.Now().UTC().AddDate(0, 0, -(days - 1))
	startOfDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	rows, err := r.conn.QueryRows(ctx,
		`SELECT date(created / 1000, 'unixepoch') AS day, COUNT(*) FROM activity_log WHERE created >= ? GROUP BY day`,
		startOfDay.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var day string
		var cnt int64
		if err := rows.Scan(&day, &cnt); err != nil {
			return nil, err
		}
		counts[day] = cnt
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]repository.DailyCount, 0, days)
	for i := 0; i < days; i++ {
		day := startOfDay.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, repository.DailyCount{Date: day, Count: counts[day]})
	}
	return out, nil
}
