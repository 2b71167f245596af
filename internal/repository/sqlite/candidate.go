package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

const candidateColumns = `id, account_id, name, role, governorate_id, constituency, profile_picture, banner_image, bio, electoral_program, message_to_voters, youtube_video_url, facebook_url, twitter_url, website_url, phone_number, is_featured, election_symbol, election_number, created, updated`

func scanCandidateFields(row interface{ Scan(...any) error }, c *models.Candidate, extra ...any) error {
	dest := []any{&c.ID, &c.AccountID, &c.Name, &c.Role, &c.GovernorateID, &c.Constituency, &c.ProfilePicture, &c.BannerImage, &c.Bio, &c.ElectoralProg, &c.MessageToVoters, &c.YoutubeVideoURL, &c.FacebookURL, &c.TwitterURL, &c.WebsiteURL, &c.PhoneNumber, &c.IsFeatured, &c.ElectionSymbol, &c.ElectionNumber, &c.Created, &c.Updated}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

// CreateCandidateAccount creates the account and the candidate profile
// in one transaction. Duplicate username/email fails on the unique
// constraints before any row survives.
func (r *SQLiteRepo) CreateCandidateAccount(ctx context.Context, a *models.Account, c *models.Candidate) (int64, int64, error) {
	if a == nil || c == nil {
		return 0, 0, fmt.Errorf("account and candidate are required")
	}

	ts := now()
	var accountID, candidateID int64
	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (username, email, password_hash, first_name, last_name, role, is_active, created) VALUES (?, ?, ?, ?, ?, ?, 1, ?)`,
			a.Username, a.Email, a.PasswordHash, a.FirstName, a.LastName, models.RoleCandidate, ts)
		if err != nil {
			return fmt.Errorf("insert account: %w", err)
		}
		accountID, err = res.LastInsertId()
		if err != nil {
			return err
		}

		role := c.Role
		if role == "" {
			role = "مرشح مجلس النواب"
		}
		res, err = tx.ExecContext(ctx,
			`INSERT INTO candidates (account_id, name, role, governorate_id, constituency, bio, electoral_program, message_to_voters, election_symbol, election_number, is_featured, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			accountID, c.Name, role, c.GovernorateID, c.Constituency, c.Bio, c.ElectoralProg, c.MessageToVoters, c.ElectionSymbol, c.ElectionNumber, c.IsFeatured, ts, ts)
		if err != nil {
			return fmt.Errorf("insert candidate: %w", err)
		}
		candidateID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return accountID, candidateID, nil
}

func (r *SQLiteRepo) GetCandidateByID(ctx context.Context, id int64) (*models.Candidate, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id)
	var c models.Candidate
	if err := scanCandidateFields(row, &c); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteRepo) GetCandidateByAccountID(ctx context.Context, accountID int64) (*models.Candidate, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE account_id = ?`, accountID)
	var c models.Candidate
	if err := scanCandidateFields(row, &c); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteRepo) UpdateCandidate(ctx context.Context, c *models.Candidate) error {
	if c == nil {
		return fmt.Errorf("candidate is nil")
	}
	_, err := r.conn.Exec(ctx,
		`UPDATE candidates SET name = ?, role = ?, governorate_id = ?, constituency = ?, profile_picture = ?, banner_image = ?, bio = ?, electoral_program = ?, message_to_voters = ?, youtube_video_url = ?, facebook_url = ?, twitter_url = ?, website_url = ?, phone_number = ?, is_featured = ?, election_symbol = ?, election_number = ?, updated = ? WHERE id = ?`,
		c.Name, c.Role, c.GovernorateID, c.Constituency, c.ProfilePicture, c.BannerImage, c.Bio, c.ElectoralProg, c.MessageToVoters, c.YoutubeVideoURL, c.FacebookURL, c.TwitterURL, c.WebsiteURL, c.PhoneNumber, c.IsFeatured, c.ElectionSymbol, c.ElectionNumber, now(), c.ID)
	return err
}

// DeleteCandidateAccount deletes the underlying account; the candidate
// row, promises, service history, messages, ratings, and votes follow
// by cascade.
func (r *SQLiteRepo) DeleteCandidateAccount(ctx context.Context, candidateID int64) error {
	c, err := r.GetCandidateByID(ctx, candidateID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("candidate %d not found", candidateID)
	}
	_, err = r.conn.Exec(ctx, `DELETE FROM accounts WHERE id = ?`, c.AccountID)
	return err
}

const candidateStatsSelect = `
	(SELECT COUNT(*) FROM votes v WHERE v.candidate_id = c.id) AS total_votes,
	(SELECT COUNT(*) FROM votes v WHERE v.candidate_id = c.id AND v.vote_type = 'approve') AS approve_votes,
	(SELECT COUNT(*) FROM votes v WHERE v.candidate_id = c.id AND v.vote_type = 'disapprove') AS disapprove_votes,
	(SELECT COALESCE(AVG(stars), 0) FROM ratings g WHERE g.candidate_id = c.id) AS avg_rating,
	(SELECT COUNT(*) FROM ratings g WHERE g.candidate_id = c.id) AS total_ratings,
	(SELECT COUNT(*) FROM messages m WHERE m.candidate_id = c.id) AS total_messages`

// ListCandidatesWithStats computes the aggregates for the whole
// filtered set in one query; sort order and paging are the caller's
// concern so statistics always cover the full set.
func (r *SQLiteRepo) ListCandidatesWithStats(ctx context.Context, f repository.CandidateFilter) ([]repository.CandidateWithStats, error) {
	query := `SELECT ` + candidateColumns + `,` + candidateStatsSelect + ` FROM candidates c WHERE 1=1`
	args := []any{}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query += ` AND (c.name LIKE ? OR c.constituency LIKE ? OR c.bio LIKE ? OR c.electoral_program LIKE ?)`
		args = append(args, like, like, like, like)
	}
	if f.GovernorateID > 0 {
		query += ` AND c.governorate_id = ?`
		args = append(args, f.GovernorateID)
	}
	query += ` ORDER BY c.name`

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.CandidateWithStats
	for rows.Next() {
		var cs repository.CandidateWithStats
		s := &cs.Stats
		if err := scanCandidateFields(rows, &cs.Candidate, &s.TotalVotes, &s.ApproveVotes, &s.DisapproveVotes, &s.AvgRating, &s.TotalRatings, &s.TotalMessages); err != nil {
			return nil, err
		}
		s.TotalActivity = s.TotalVotes + s.TotalRatings + s.TotalMessages
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) CandidateStats(ctx context.Context, candidateID int64) (*models.CandidateStats, error) {
	row := r.conn.QueryRow(ctx, `SELECT`+candidateStatsSelect+` FROM candidates c WHERE c.id = ?`, candidateID)
	var s models.CandidateStats
	if err := row.Scan(&s.TotalVotes, &s.ApproveVotes, &s.DisapproveVotes, &s.AvgRating, &s.TotalRatings, &s.TotalMessages); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.TotalActivity = s.TotalVotes + s.TotalRatings + s.TotalMessages
	return &s, nil
}

func (r *SQLiteRepo) RatingDistribution(ctx context.Context, candidateID int64) (map[int64]int64, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT stars, COUNT(*) FROM ratings WHERE candidate_id = ? GROUP BY stars`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := map[int64]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for rows.Next() {
		var stars, cnt int64
		if err := rows.Scan(&stars, &cnt); err != nil {
			return nil, err
		}
		dist[stars] = cnt
	}
	return dist, rows.Err()
}

func (r *SQLiteRepo) CountCandidatesByGovernorate(ctx context.Context) (map[int64]int64, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT governorate_id, COUNT(*) FROM candidates GROUP BY governorate_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]int64)
	for rows.Next() {
		var gov, cnt int64
		if err := rows.Scan(&gov, &cnt); err != nil {
			return nil, err
		}
		out[gov] = cnt
	}
	return out, rows.Err()
}
