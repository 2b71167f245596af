package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

const accountColumns = `id, username, email, password_hash, first_name, last_name, role, is_active, created, last_login`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.Role, &a.IsActive, &a.Created, &a.LastLogin); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *SQLiteRepo) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *SQLiteRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	return scanAccount(row)
}

func (r *SQLiteRepo) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	return scanAccount(row)
}

func (r *SQLiteRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var cnt int
	row := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM accounts WHERE username = ?`, username)
	if err := row.Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *SQLiteRepo) UpdateLastLogin(ctx context.Context, id, ts int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE accounts SET last_login = ? WHERE id = ?`, ts, id)
	return err
}

func (r *SQLiteRepo) ListAccounts(ctx context.Context, f repository.AccountFilter) ([]models.Account, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where += ` AND (username LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)`
		args = append(args, like, like, like, like)
	}
	switch f.Role {
	case models.RoleCitizen, models.RoleCandidate, models.RoleAdmin:
		where += ` AND role = ?`
		args = append(args, f.Role)
	}
	switch f.Status {
	case "active":
		where += ` AND is_active = 1`
	case "inactive":
		where += ` AND is_active = 0`
	}

	var total int64
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`+where, args...)
	if err := row.Scan(&total); err != nil {
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

	rows, err := r.conn.QueryRows(ctx, `SELECT `+accountColumns+` FROM accounts`+where+` ORDER BY created DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.Role, &a.IsActive, &a.Created, &a.LastLogin); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepo) DeleteAccount(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %d not found", id)
	}
	return nil
}
