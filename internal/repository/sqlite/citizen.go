package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/naebak/naebak/pkg/models"
)

const citizenColumns = `id, account_id, first_name, last_name, email, phone_number, governorate_id, area_type, area_name, address, created, updated`

func scanCitizen(row interface{ Scan(...any) error }) (*models.Citizen, error) {
	var c models.Citizen
	if err := row.Scan(&c.ID, &c.AccountID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber, &c.GovernorateID, &c.AreaType, &c.AreaName, &c.Address, &c.Created, &c.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// RegisterCitizen creates the account row and the citizen profile in a
// single transaction so a failed profile insert leaves no orphan
// account behind.
func (r *SQLiteRepo) RegisterCitizen(ctx context.Context, a *models.Account, c *models.Citizen) (int64, int64, error) {
	if a == nil || c == nil {
		return 0, 0, fmt.Errorf("account and citizen are required")
	}

	ts := now()
	var accountID, citizenID int64
	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (username, email, password_hash, first_name, last_name, role, is_active, created) VALUES (?, ?, ?, ?, ?, ?, 1, ?)`,
			a.Username, a.Email, a.PasswordHash, a.FirstName, a.LastName, models.RoleCitizen, ts)
		if err != nil {
			return fmt.Errorf("insert account: %w", err)
		}
		accountID, err = res.LastInsertId()
		if err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx,
			`INSERT INTO citizens (account_id, first_name, last_name, email, phone_number, governorate_id, area_type, area_name, address, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			accountID, c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.GovernorateID, c.AreaType, c.AreaName, c.Address, ts, ts)
		if err != nil {
			return fmt.Errorf("insert citizen: %w", err)
		}
		citizenID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return accountID, citizenID, nil
}

func (r *SQLiteRepo) GetCitizenByAccountID(ctx context.Context, accountID int64) (*models.Citizen, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+citizenColumns+` FROM citizens WHERE account_id = ?`, accountID)
	return scanCitizen(row)
}

func (r *SQLiteRepo) UpdateCitizen(ctx context.Context, c *models.Citizen) error {
	if c == nil {
		return fmt.Errorf("citizen is nil")
	}
	_, err := r.conn.Exec(ctx,
		`UPDATE citizens SET first_name = ?, last_name = ?, phone_number = ?, governorate_id = ?, area_type = ?, area_name = ?, address = ?, updated = ? WHERE id = ?`,
		c.FirstName, c.LastName, c.PhoneNumber, c.GovernorateID, c.AreaType, c.AreaName, c.Address, now(), c.ID)
	return err
}

// FindCitizensByPhone matches the quick-login lookup: exact phone match
// plus case-insensitive substring match of the first-name token. All
// matches are returned so the caller can reject ambiguous ones.
func (r *SQLiteRepo) FindCitizensByPhone(ctx context.Context, phone, nameToken string) ([]models.Citizen, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT `+citizenColumns+` FROM citizens WHERE phone_number = ? AND LOWER(first_name) LIKE ? ORDER BY id`,
		phone, "%"+strings.ToLower(nameToken)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Citizen
	for rows.Next() {
		var c models.Citizen
		if err := rows.Scan(&c.ID, &c.AccountID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber, &c.GovernorateID, &c.AreaType, &c.AreaName, &c.Address, &c.Created, &c.Updated); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
