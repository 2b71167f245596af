package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/naebak/naebak/pkg/models"
)

func (r *SQLiteRepo) CreatePromise(ctx context.Context, p *models.ElectoralPromise) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("promise is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx,
		`INSERT INTO electoral_promises (candidate_id, title, description, display_order, created, updated) VALUES (?, ?, ?, ?, ?, ?)`,
		p.CandidateID, p.Title, p.Description, p.DisplayOrder, ts, ts)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetPromiseByID(ctx context.Context, id int64) (*models.ElectoralPromise, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, candidate_id, title, description, display_order, created, updated FROM electoral_promises WHERE id = ?`, id)
	var p models.ElectoralPromise
	if err := row.Scan(&p.ID, &p.CandidateID, &p.Title, &p.Description, &p.DisplayOrder, &p.Created, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListPromisesByCandidate returns promises in display order, oldest
// first among equal orders.
func (r *SQLiteRepo) ListPromisesByCandidate(ctx context.Context, candidateID int64) ([]models.ElectoralPromise, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, candidate_id, title, description, display_order, created, updated FROM electoral_promises WHERE candidate_id = ? ORDER BY display_order, created`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ElectoralPromise
	for rows.Next() {
		var p models.ElectoralPromise
		if err := rows.Scan(&p.ID, &p.CandidateID, &p.Title, &p.Description, &p.DisplayOrder, &p.Created, &p.Updated); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdatePromise(ctx context.Context, p *models.ElectoralPromise) error {
	if p == nil {
		return fmt.Errorf("promise is nil")
	}
	_, err := r.conn.Exec(ctx,
		`UPDATE electoral_promises SET title = ?, description = ?, display_order = ?, updated = ? WHERE id = ?`,
		p.Title, p.Description, p.DisplayOrder, now(), p.ID)
	return err
}

func (r *SQLiteRepo) DeletePromise(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM electoral_promises WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) CountPromisesByCandidate(ctx context.Context, candidateID int64) (int64, error) {
	var cnt int64
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM electoral_promises WHERE candidate_id = ?`, candidateID)
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) CreateServiceHistory(ctx context.Context, s *models.ServiceHistory) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("service history is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO service_history (candidate_id, start_year, end_year, position, description) VALUES (?, ?, ?, ?, ?)`,
		s.CandidateID, s.StartYear, s.EndYear, s.Position, s.Description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListServiceHistoryByCandidate orders by start year descending, most
// recent service first.
func (r *SQLiteRepo) ListServiceHistoryByCandidate(ctx context.Context, candidateID int64) ([]models.ServiceHistory, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, candidate_id, start_year, end_year, position, description FROM service_history WHERE candidate_id = ? ORDER BY start_year DESC`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ServiceHistory
	for rows.Next() {
		var s models.ServiceHistory
		if err := rows.Scan(&s.ID, &s.CandidateID, &s.StartYear, &s.EndYear, &s.Position, &s.Description); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) DeleteServiceHistory(ctx context.Context, id, candidateID int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM service_history WHERE id = ? AND candidate_id = ?`, id, candidateID)
	return err
}
