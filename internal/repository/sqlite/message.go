package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/naebak/naebak/pkg/models"
)

const messageColumns = `id, candidate_id, sender_account_id, sender_name, sender_email, subject, content, attachment, created, is_read, reply_to`

func scanMessage(row interface{ Scan(...any) error }) (*models.Message, error) {
	var m models.Message
	if err := row.Scan(&m.ID, &m.CandidateID, &m.SenderAccountID, &m.SenderName, &m.SenderEmail, &m.Subject, &m.Content, &m.Attachment, &m.Created, &m.IsRead, &m.ReplyTo); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *SQLiteRepo) CreateMessage(ctx context.Context, m *models.Message) (int64, error) {
	if m == nil {
		return 0, fmt.Errorf("message is nil")
	}
	if m.Created == 0 {
		m.Created = now()
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO messages (candidate_id, sender_account_id, sender_name, sender_email, subject, content, attachment, created, is_read, reply_to) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.CandidateID, m.SenderAccountID, m.SenderName, m.SenderEmail, m.Subject, m.Content, m.Attachment, m.Created, m.IsRead, m.ReplyTo)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	return scanMessage(row)
}

// ListInbox returns inbound messages for the candidate, newest first.
// Replies the candidate sent are excluded.
func (r *SQLiteRepo) ListInbox(ctx context.Context, candidateID int64, limit, offset int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryRows(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE candidate_id = ? AND reply_to IS NULL ORDER BY created DESC LIMIT ? OFFSET ?`,
		candidateID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

func (r *SQLiteRepo) CountInbox(ctx context.Context, candidateID int64) (int64, error) {
	var cnt int64
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE candidate_id = ? AND reply_to IS NULL`, candidateID)
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) CountUnread(ctx context.Context, candidateID int64) (int64, error) {
	var cnt int64
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE candidate_id = ? AND reply_to IS NULL AND is_read = 0`, candidateID)
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

// MarkCandidateMessagesRead is the explicit form of the inbox-view side
// effect: every unread inbound message for the candidate becomes read.
func (r *SQLiteRepo) MarkCandidateMessagesRead(ctx context.Context, candidateID int64) (int64, error) {
	res, err := r.conn.Exec(ctx, `UPDATE messages SET is_read = 1 WHERE candidate_id = ? AND reply_to IS NULL AND is_read = 0`, candidateID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepo) ListReplies(ctx context.Context, messageID int64) ([]models.Message, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+messageColumns+` FROM messages WHERE reply_to = ? ORDER BY created`, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

func (r *SQLiteRepo) ListSentByAccount(ctx context.Context, accountID int64, limit, offset int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryRows(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE sender_account_id = ? ORDER BY created DESC LIMIT ? OFFSET ?`,
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]models.Message, error) {
	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.CandidateID, &m.SenderAccountID, &m.SenderName, &m.SenderEmail, &m.Subject, &m.Content, &m.Attachment, &m.Created, &m.IsRead, &m.ReplyTo); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
