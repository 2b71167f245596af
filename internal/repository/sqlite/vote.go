package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/naebak/naebak/pkg/models"
)

// ToggleVote applies the vote state machine for the (candidate,
// citizen) pair inside one transaction: no vote -> created, same type
// again -> removed, opposite type -> updated. The UNIQUE constraint on
// the pair backstops concurrent submissions.
func (r *SQLiteRepo) ToggleVote(ctx context.Context, candidateID, citizenID int64, voteType string) (string, error) {
	if voteType != models.VoteApprove && voteType != models.VoteDisapprove {
		return "", fmt.Errorf("invalid vote type %q", voteType)
	}

	var action string
	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		var existingType string
		err := tx.QueryRowContext(ctx, `SELECT vote_type FROM votes WHERE candidate_id = ? AND citizen_id = ?`, candidateID, citizenID).Scan(&existingType)
		switch {
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO votes (candidate_id, citizen_id, vote_type, created) VALUES (?, ?, ?, ?)`,
				candidateID, citizenID, voteType, now()); err != nil {
				return fmt.Errorf("insert vote: %w", err)
			}
			action = models.VoteActionCreated
			return nil
		case err != nil:
			return err
		case existingType == voteType:
			if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE candidate_id = ? AND citizen_id = ?`, candidateID, citizenID); err != nil {
				return fmt.Errorf("delete vote: %w", err)
			}
			action = models.VoteActionRemoved
			return nil
		default:
			if _, err := tx.ExecContext(ctx,
				`UPDATE votes SET vote_type = ?, created = ? WHERE candidate_id = ? AND citizen_id = ?`,
				voteType, now(), candidateID, citizenID); err != nil {
				return fmt.Errorf("update vote: %w", err)
			}
			action = models.VoteActionUpdated
			return nil
		}
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

func (r *SQLiteRepo) GetVote(ctx context.Context, candidateID, citizenID int64) (*models.Vote, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, candidate_id, citizen_id, vote_type, created FROM votes WHERE candidate_id = ? AND citizen_id = ?`, candidateID, citizenID)
	var v models.Vote
	if err := row.Scan(&v.ID, &v.CandidateID, &v.CitizenID, &v.VoteType, &v.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
