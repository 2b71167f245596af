package sqlite

import (
	"context"
	"sort"

	"github.com/naebak/naebak/pkg/repository"
)

func (r *SQLiteRepo) Totals(ctx context.Context) (repository.Totals, error) {
	var t repository.Totals
	row := r.conn.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM accounts),
		(SELECT COUNT(*) FROM candidates),
		(SELECT COUNT(*) FROM messages),
		(SELECT COUNT(*) FROM ratings),
		(SELECT COUNT(*) FROM votes),
		(SELECT COUNT(*) FROM news)`)
	if err := row.Scan(&t.Accounts, &t.Candidates, &t.Messages, &t.Ratings, &t.Votes, &t.News); err != nil {
		return repository.Totals{}, err
	}
	return t, nil
}

func (r *SQLiteRepo) PeriodStats(ctx context.Context, since int64) (repository.PeriodStats, error) {
	var p repository.PeriodStats
	row := r.conn.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM accounts WHERE created >= ?),
		(SELECT COUNT(*) FROM messages WHERE created >= ?),
		(SELECT COUNT(*) FROM ratings WHERE created >= ?),
		(SELECT COUNT(*) FROM votes WHERE created >= ?)`,
		since, since, since, since)
	if err := row.Scan(&p.NewAccounts, &p.NewMessages, &p.NewRatings, &p.NewVotes); err != nil {
		return repository.PeriodStats{}, err
	}
	return p, nil
}

// TopCandidates ranks by total engagement (votes + ratings + messages),
// highest first.
func (r *SQLiteRepo) TopCandidates(ctx context.Context, limit int) ([]repository.CandidateWithStats, error) {
	if limit <= 0 {
		limit = 10
	}

	all, err := r.ListCandidatesWithStats(ctx, repository.CandidateFilter{})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Stats.TotalActivity > all[j].Stats.TotalActivity
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
