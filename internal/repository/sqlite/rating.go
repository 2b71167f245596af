package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/naebak/naebak/pkg/models"
)

const ratingColumns = `id, candidate_id, citizen_id, stars, comment, created, is_read`

func scanRating(row interface{ Scan(...any) error }) (*models.Rating, error) {
	var g models.Rating
	if err := row.Scan(&g.ID, &g.CandidateID, &g.CitizenID, &g.Stars, &g.Comment, &g.Created, &g.IsRead); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// UpsertRating creates the rating or overwrites the existing one for
// the (candidate, citizen) pair. The reported action distinguishes the
// two so callers can log and respond accordingly.
func (r *SQLiteRepo) UpsertRating(ctx context.Context, g *models.Rating) (string, error) {
	if g == nil {
		return "", fmt.Errorf("rating is nil")
	}
	if g.Stars < 1 || g.Stars > 5 {
		return "", fmt.Errorf("stars must be between 1 and 5")
	}

	existing, err := r.GetRating(ctx, g.CandidateID, g.CitizenID)
	if err != nil {
		return "", err
	}

	_, err = r.conn.Exec(ctx,
		`INSERT INTO ratings (candidate_id, citizen_id, stars, comment, created, is_read) VALUES (?, ?, ?, ?, ?, 0)
		 ON CONFLICT(candidate_id, citizen_id) DO UPDATE SET stars = excluded.stars, comment = excluded.comment, created = excluded.created, is_read = 0`,
		g.CandidateID, g.CitizenID, g.Stars, g.Comment, now())
	if err != nil {
		return "", err
	}

	if existing != nil {
		return models.VoteActionUpdated, nil
	}
	return models.VoteActionCreated, nil
}

func (r *SQLiteRepo) GetRating(ctx context.Context, candidateID, citizenID int64) (*models.Rating, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE candidate_id = ? AND citizen_id = ?`, candidateID, citizenID)
	return scanRating(row)
}

func (r *SQLiteRepo) GetRatingByID(ctx context.Context, id int64) (*models.Rating, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE id = ?`, id)
	return scanRating(row)
}

func (r *SQLiteRepo) ListRatingsByCandidate(ctx context.Context, candidateID int64, limit, offset int) ([]models.Rating, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryRows(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE candidate_id = ? ORDER BY created DESC LIMIT ? OFFSET ?`,
		candidateID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Rating
	for rows.Next() {
		var g models.Rating
		if err := rows.Scan(&g.ID, &g.CandidateID, &g.CitizenID, &g.Stars, &g.Comment, &g.Created, &g.IsRead); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpsertRatingReply replaces any prior reply to the rating; a candidate
// keeps at most one reply per rating.
func (r *SQLiteRepo) UpsertRatingReply(ctx context.Context, rr *models.RatingReply) (int64, error) {
	if rr == nil {
		return 0, fmt.Errorf("rating reply is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO rating_replies (rating_id, candidate_id, content, created) VALUES (?, ?, ?, ?)
		 ON CONFLICT(rating_id) DO UPDATE SET content = excluded.content, created = excluded.created`,
		rr.RatingID, rr.CandidateID, rr.Content, now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetRatingReply(ctx context.Context, ratingID int64) (*models.RatingReply, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, rating_id, candidate_id, content, created FROM rating_replies WHERE rating_id = ?`, ratingID)
	var rr models.RatingReply
	if err := row.Scan(&rr.ID, &rr.RatingID, &rr.CandidateID, &rr.Content, &rr.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rr, nil
}
