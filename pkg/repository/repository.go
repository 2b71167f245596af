package repository

import (
	"context"

	"github.com/naebak/naebak/pkg/models"
)

// Repository interfaces for domain entities. These are the public
// contracts consumers should depend on; concrete implementations live
// under internal/.

// CandidateWithStats pairs a candidate with the aggregates the list and
// report views display.
type CandidateWithStats struct {
	Candidate models.Candidate      `json:"candidate"`
	Stats     models.CandidateStats `json:"stats"`
}

// CandidateFilter narrows candidate listings. Search is a
// case-insensitive substring over name, constituency, bio, and
// electoral program; GovernorateID of zero means no filter.
type CandidateFilter struct {
	Search        string
	GovernorateID int64
}

// AccountFilter narrows the admin user listing.
type AccountFilter struct {
	Search string
	Role   string // citizen, candidate, admin, or empty
	Status string // active, inactive, or empty
	Limit  int
	Offset int
}

// NewsFilter narrows the admin news listing.
type NewsFilter struct {
	Search   string
	Status   string
	Priority string
	Limit    int
	Offset   int
}

// NewsCounts summarizes the news table for the admin dashboard.
type NewsCounts struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Draft     int64 `json:"draft"`
	Urgent    int64 `json:"urgent"`
}

// ActivityFilter narrows activity-log reads.
type ActivityFilter struct {
	ActionType string
	Severity   string
	AccountID  int64 // zero means no filter
	Search     string
	Limit      int
	Offset     int
}

// Totals is the admin overview counter set.
type Totals struct {
	Accounts   int64 `json:"accounts"`
	Candidates int64 `json:"candidates"`
	Messages   int64 `json:"messages"`
	Ratings    int64 `json:"ratings"`
	Votes      int64 `json:"votes"`
	News       int64 `json:"news"`
}

// PeriodStats are the counters restricted to rows created after a
// cutoff, for the reports dashboard.
type PeriodStats struct {
	NewAccounts int64 `json:"new_accounts"`
	NewMessages int64 `json:"new_messages"`
	NewRatings  int64 `json:"new_ratings"`
	NewVotes    int64 `json:"new_votes"`
}

// DailyCount is one day's activity total for chart data.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type AccountRepo interface {
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, id, ts int64) error
	ListAccounts(ctx context.Context, f AccountFilter) ([]models.Account, int64, error)
	DeleteAccount(ctx context.Context, id int64) error
}

type CitizenRepo interface {
	// RegisterCitizen creates the account and the citizen profile in one
	// transaction; nothing is written when either insert fails.
	RegisterCitizen(ctx context.Context, a *models.Account, c *models.Citizen) (accountID, citizenID int64, err error)
	GetCitizenByAccountID(ctx context.Context, accountID int64) (*models.Citizen, error)
	UpdateCitizen(ctx context.Context, c *models.Citizen) error
	// FindCitizensByPhone returns citizens whose phone matches exactly
	// and whose first name contains nameToken (case-insensitive).
	FindCitizensByPhone(ctx context.Context, phone, nameToken string) ([]models.Citizen, error)
}

type CandidateRepo interface {
	// CreateCandidateAccount creates the account and the candidate
	// profile in one transaction.
	CreateCandidateAccount(ctx context.Context, a *models.Account, c *models.Candidate) (accountID, candidateID int64, err error)
	GetCandidateByID(ctx context.Context, id int64) (*models.Candidate, error)
	GetCandidateByAccountID(ctx context.Context, accountID int64) (*models.Candidate, error)
	UpdateCandidate(ctx context.Context, c *models.Candidate) error
	// DeleteCandidateAccount removes the underlying account; the
	// candidate row and its children go with it by cascade.
	DeleteCandidateAccount(ctx context.Context, candidateID int64) error
	// ListCandidatesWithStats returns the WHOLE filtered set with
	// aggregates attached; sorting and paging happen in the caller so
	// statistics are complete before any page is cut.
	ListCandidatesWithStats(ctx context.Context, f CandidateFilter) ([]CandidateWithStats, error)
	CandidateStats(ctx context.Context, candidateID int64) (*models.CandidateStats, error)
	// RatingDistribution returns counts of ratings per star value 1..5.
	RatingDistribution(ctx context.Context, candidateID int64) (map[int64]int64, error)
	CountCandidatesByGovernorate(ctx context.Context) (map[int64]int64, error)
}

type PromiseRepo interface {
	CreatePromise(ctx context.Context, p *models.ElectoralPromise) (int64, error)
	GetPromiseByID(ctx context.Context, id int64) (*models.ElectoralPromise, error)
	ListPromisesByCandidate(ctx context.Context, candidateID int64) ([]models.ElectoralPromise, error)
	UpdatePromise(ctx context.Context, p *models.ElectoralPromise) error
	DeletePromise(ctx context.Context, id int64) error
	CountPromisesByCandidate(ctx context.Context, candidateID int64) (int64, error)
}

type ServiceHistoryRepo interface {
	CreateServiceHistory(ctx context.Context, s *models.ServiceHistory) (int64, error)
	ListServiceHistoryByCandidate(ctx context.Context, candidateID int64) ([]models.ServiceHistory, error)
	DeleteServiceHistory(ctx context.Context, id, candidateID int64) error
}

type MessageRepo interface {
	CreateMessage(ctx context.Context, m *models.Message) (int64, error)
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	ListInbox(ctx context.Context, candidateID int64, limit, offset int) ([]models.Message, error)
	CountInbox(ctx context.Context, candidateID int64) (int64, error)
	CountUnread(ctx context.Context, candidateID int64) (int64, error)
	// MarkCandidateMessagesRead flips is_read on every unread inbound
	// message for the candidate and reports how many were flipped.
	MarkCandidateMessagesRead(ctx context.Context, candidateID int64) (int64, error)
	ListReplies(ctx context.Context, messageID int64) ([]models.Message, error)
	ListSentByAccount(ctx context.Context, accountID int64, limit, offset int) ([]models.Message, error)
}

type RatingRepo interface {
	// UpsertRating creates or overwrites the (candidate, citizen) rating
	// and reports which of the two happened.
	UpsertRating(ctx context.Context, r *models.Rating) (action string, err error)
	GetRating(ctx context.Context, candidateID, citizenID int64) (*models.Rating, error)
	GetRatingByID(ctx context.Context, id int64) (*models.Rating, error)
	ListRatingsByCandidate(ctx context.Context, candidateID int64, limit, offset int) ([]models.Rating, error)
	// UpsertRatingReply replaces any prior reply to the rating.
	UpsertRatingReply(ctx context.Context, rr *models.RatingReply) (int64, error)
	GetRatingReply(ctx context.Context, ratingID int64) (*models.RatingReply, error)
}

type VoteRepo interface {
	// ToggleVote applies the vote state machine for the pair in a single
	// transaction and returns the resulting action: created when no vote
	// existed, removed when the same type was submitted again, updated
	// when the opposite type flipped the stored vote.
	ToggleVote(ctx context.Context, candidateID, citizenID int64, voteType string) (action string, err error)
	GetVote(ctx context.Context, candidateID, citizenID int64) (*models.Vote, error)
}

type NewsRepo interface {
	CreateNews(ctx context.Context, n *models.News) (int64, error)
	GetNewsByID(ctx context.Context, id int64) (*models.News, error)
	UpdateNews(ctx context.Context, n *models.News) error
	DeleteNews(ctx context.Context, id int64) error
	// ListActiveNews returns currently visible news (see models.News
	// IsActive), optionally restricted to ticker or homepage items.
	ListActiveNews(ctx context.Context, onlyTicker, onlyHomepage bool, limit, offset int) ([]models.News, error)
	ListNewsAdmin(ctx context.Context, f NewsFilter) ([]models.News, int64, error)
	IncrementNewsViews(ctx context.Context, id int64) error
	CountNews(ctx context.Context) (NewsCounts, error)
}

type ActivityRepo interface {
	LogActivity(ctx context.Context, a *models.Activity) (int64, error)
	GetActivityByID(ctx context.Context, id int64) (*models.Activity, error)
	ListActivities(ctx context.Context, f ActivityFilter) ([]models.Activity, int64, error)
	RecentActivities(ctx context.Context, limit int) ([]models.Activity, error)
	AccountActivities(ctx context.Context, accountID int64, limit int) ([]models.Activity, error)
	SecurityAlerts(ctx context.Context, limit int) ([]models.Activity, error)
	CriticalActivities(ctx context.Context, limit int) ([]models.Activity, error)
	CountBySeverity(ctx context.Context, since int64) (map[string]int64, error)
	DailyActivityCounts(ctx context.Context, days int) ([]DailyCount, error)
}

type StatsRepo interface {
	Totals(ctx context.Context) (Totals, error)
	PeriodStats(ctx context.Context, since int64) (PeriodStats, error)
	TopCandidates(ctx context.Context, limit int) ([]CandidateWithStats, error)
}
