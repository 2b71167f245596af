package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

const newsColumns = `id, title, content, status, priority, show_on_homepage, show_on_ticker, ticker_speed, publish_date, expire_date, author_id, views_count, meta_description, tags, created, updated`

func scanNews(row interface{ Scan(...any) error }) (*models.News, error) {
	var n models.News
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Status, &n.Priority, &n.ShowOnHomepage, &n.ShowOnTicker, &n.TickerSpeed, &n.PublishDate, &n.ExpireDate, &n.AuthorID, &n.ViewsCount, &n.MetaDescription, &n.Tags, &n.Created, &n.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *SQLiteRepo) CreateNews(ctx context.Context, n *models.News) (int64, error) {
	if n == nil {
		return 0, fmt.Errorf("news is nil")
	}

	ts := now()
	if n.Status == "" {
		n.Status = models.NewsDraft
	}
	if n.Priority == "" {
		n.Priority = models.PriorityNormal
	}
	if n.TickerSpeed == 0 {
		n.TickerSpeed = 50
	}
	if n.PublishDate == 0 {
		n.PublishDate = ts
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO news (title, content, status, priority, show_on_homepage, show_on_ticker, ticker_speed, publish_date, expire_date, author_id, views_count, meta_description, tags, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		n.Title, n.Content, n.Status, n.Priority, n.ShowOnHomepage, n.ShowOnTicker, n.TickerSpeed, n.PublishDate, n.ExpireDate, n.AuthorID, n.MetaDescription, n.Tags, ts, ts)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetNewsByID(ctx context.Context, id int64) (*models.News, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = ?`, id)
	return scanNews(row)
}

func (r *SQLiteRepo) UpdateNews(ctx context.Context, n *models.News) error {
	if n == nil {
		return fmt.Errorf("news is nil")
	}
	_, err := r.conn.Exec(ctx,
		`UPDATE news SET title = ?, content = ?, status = ?, priority = ?, show_on_homepage = ?, show_on_ticker = ?, ticker_speed = ?, publish_date = ?, expire_date = ?, meta_description = ?, tags = ?, updated = ? WHERE id = ?`,
		n.Title, n.Content, n.Status, n.Priority, n.ShowOnHomepage, n.ShowOnTicker, n.TickerSpeed, n.PublishDate, n.ExpireDate, n.MetaDescription, n.Tags, now(), n.ID)
	return err
}

func (r *SQLiteRepo) DeleteNews(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM news WHERE id = ?`, id)
	return err
}

// ListActiveNews returns published news whose publish window covers the
// current instant, urgent items first, then newest publish date.
func (r *SQLiteRepo) ListActiveNews(ctx context.Context, onlyTicker, onlyHomepage bool, limit, offset int) ([]models.News, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	ts := now()
	query := `SELECT ` + newsColumns + ` FROM news WHERE status = ? AND publish_date <= ? AND (expire_date IS NULL OR expire_date > ?)`
	args := []any{models.NewsPublished, ts, ts}
	if onlyTicker {
		query += ` AND show_on_ticker = 1`
	}
	if onlyHomepage {
		query += ` AND show_on_homepage = 1`
	}
	query += ` ORDER BY CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END, publish_date DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNews(rows)
}

func (r *SQLiteRepo) ListNewsAdmin(ctx context.Context, f repository.NewsFilter) ([]models.News, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where += ` AND (title LIKE ? OR content LIKE ? OR tags LIKE ?)`
		args = append(args, like, like, like)
	}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		where += ` AND priority = ?`
		args = append(args, f.Priority)
	}

	var total int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM news`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)
	rows, err := r.conn.QueryRows(ctx, `SELECT `+newsColumns+` FROM news`+where+` ORDER BY created DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectNews(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *SQLiteRepo) IncrementNewsViews(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE news SET views_count = views_count + 1 WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) CountNews(ctx context.Context) (repository.NewsCounts, error) {
	var c repository.NewsCounts
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'published' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'draft' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN priority = 'urgent' THEN 1 ELSE 0 END), 0)
		FROM news`)
	if err := row.Scan(&c.Total, &c.Published, &c.Draft, &c.Urgent); err != nil {
		return repository.NewsCounts{}, err
	}
	return c, nil
}

func collectNews(rows *sql.Rows) ([]models.News, error) {
	var out []models.News
	for rows.Next() {
		var n models.News
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Status, &n.Priority, &n.ShowOnHomepage, &n.ShowOnTicker, &n.TickerSpeed, &n.PublishDate, &n.ExpireDate, &n.AuthorID, &n.ViewsCount, &n.MetaDescription, &n.Tags, &n.Created, &n.Updated); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
