package models

import "encoding/json"

// Domain models matching the database schema in db/migrations/0001_init.sql.
// All timestamps are unix milliseconds (UTC).

// Account roles.
const (
	RoleCitizen   = "citizen"
	RoleCandidate = "candidate"
	RoleAdmin     = "admin"
)

type Account struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FirstName    string `json:"first_name" db:"first_name"`
	LastName     string `json:"last_name" db:"last_name"`
	Role         string `json:"role" db:"role"`
	IsActive     bool   `json:"is_active" db:"is_active"`
	Created      int64  `json:"created" db:"created"`
	LastLogin    *int64 `json:"last_login,omitempty" db:"last_login"`
}

type Citizen struct {
	ID            int64  `json:"id" db:"id"`
	AccountID     int64  `json:"account_id" db:"account_id"`
	FirstName     string `json:"first_name" db:"first_name"`
	LastName      string `json:"last_name" db:"last_name"`
	Email         string `json:"email" db:"email"`
	PhoneNumber   string `json:"phone_number,omitempty" db:"phone_number"`
	GovernorateID int64  `json:"governorate_id" db:"governorate_id"`
	AreaType      string `json:"area_type,omitempty" db:"area_type"`
	AreaName      string `json:"area_name,omitempty" db:"area_name"`
	Address       string `json:"address,omitempty" db:"address"`
	Created       int64  `json:"created" db:"created"`
	Updated       int64  `json:"updated" db:"updated"`
}

type Candidate struct {
	ID              int64  `json:"id" db:"id"`
	AccountID       int64  `json:"account_id" db:"account_id"`
	Name            string `json:"name" db:"name"`
	Role            string `json:"role" db:"role"`
	GovernorateID   int64  `json:"governorate_id" db:"governorate_id"`
	Constituency    string `json:"constituency" db:"constituency"`
	ProfilePicture  string `json:"profile_picture,omitempty" db:"profile_picture"`
	BannerImage     string `json:"banner_image,omitempty" db:"banner_image"`
	Bio             string `json:"bio,omitempty" db:"bio"`
	ElectoralProg   string `json:"electoral_program,omitempty" db:"electoral_program"`
	MessageToVoters string `json:"message_to_voters,omitempty" db:"message_to_voters"`
	YoutubeVideoURL string `json:"youtube_video_url,omitempty" db:"youtube_video_url"`
	FacebookURL     string `json:"facebook_url,omitempty" db:"facebook_url"`
	TwitterURL      string `json:"twitter_url,omitempty" db:"twitter_url"`
	WebsiteURL      string `json:"website_url,omitempty" db:"website_url"`
	PhoneNumber     string `json:"phone_number,omitempty" db:"phone_number"`
	IsFeatured      bool   `json:"is_featured" db:"is_featured"`
	ElectionSymbol  string `json:"election_symbol,omitempty" db:"election_symbol"`
	ElectionNumber  string `json:"election_number,omitempty" db:"election_number"`
	Created         int64  `json:"created" db:"created"`
	Updated         int64  `json:"updated" db:"updated"`
}

// CandidateStats carries the per-candidate aggregates computed for the
// list and detail views. Governorate names are derived lookups against
// the static table, never stored.
type CandidateStats struct {
	TotalVotes      int64   `json:"total_votes"`
	ApproveVotes    int64   `json:"approve_votes"`
	DisapproveVotes int64   `json:"disapprove_votes"`
	AvgRating       float64 `json:"avg_rating"`
	TotalRatings    int64   `json:"total_ratings"`
	TotalMessages   int64   `json:"total_messages"`
	TotalActivity   int64   `json:"total_activity"`
}

type ElectoralPromise struct {
	ID           int64  `json:"id" db:"id"`
	CandidateID  int64  `json:"candidate_id" db:"candidate_id"`
	Title        string `json:"title" db:"title"`
	Description  string `json:"description" db:"description"`
	DisplayOrder int64  `json:"display_order" db:"display_order"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}

type ServiceHistory struct {
	ID          int64  `json:"id" db:"id"`
	CandidateID int64  `json:"candidate_id" db:"candidate_id"`
	StartYear   int64  `json:"start_year" db:"start_year"`
	EndYear     int64  `json:"end_year" db:"end_year"`
	Position    string `json:"position" db:"position"`
	Description string `json:"description,omitempty" db:"description"`
}

type Message struct {
	ID              int64  `json:"id" db:"id"`
	CandidateID     int64  `json:"candidate_id" db:"candidate_id"`
	SenderAccountID *int64 `json:"sender_account_id,omitempty" db:"sender_account_id"`
	SenderName      string `json:"sender_name,omitempty" db:"sender_name"`
	SenderEmail     string `json:"sender_email,omitempty" db:"sender_email"`
	Subject         string `json:"subject" db:"subject"`
	Content         string `json:"content" db:"content"`
	Attachment      string `json:"attachment,omitempty" db:"attachment"`
	Created         int64  `json:"created" db:"created"`
	IsRead          bool   `json:"is_read" db:"is_read"`
	ReplyTo         *int64 `json:"reply_to,omitempty" db:"reply_to"`
}

type Rating struct {
	ID          int64  `json:"id" db:"id"`
	CandidateID int64  `json:"candidate_id" db:"candidate_id"`
	CitizenID   int64  `json:"citizen_id" db:"citizen_id"`
	Stars       int64  `json:"stars" db:"stars"`
	Comment     string `json:"comment,omitempty" db:"comment"`
	Created     int64  `json:"created" db:"created"`
	IsRead      bool   `json:"is_read" db:"is_read"`
}

type RatingReply struct {
	ID          int64  `json:"id" db:"id"`
	RatingID    int64  `json:"rating_id" db:"rating_id"`
	CandidateID int64  `json:"candidate_id" db:"candidate_id"`
	Content     string `json:"content" db:"content"`
	Created     int64  `json:"created" db:"created"`
}

// Vote types.
const (
	VoteApprove    = "approve"
	VoteDisapprove = "disapprove"
)

// Vote toggle outcomes reported back to the caller.
const (
	VoteActionCreated = "created"
	VoteActionUpdated = "updated"
	VoteActionRemoved = "removed"
)

type Vote struct {
	ID          int64  `json:"id" db:"id"`
	CandidateID int64  `json:"candidate_id" db:"candidate_id"`
	CitizenID   int64  `json:"citizen_id" db:"citizen_id"`
	VoteType    string `json:"vote_type" db:"vote_type"`
	Created     int64  `json:"created" db:"created"`
}

// News statuses.
const (
	NewsDraft     = "draft"
	NewsPublished = "published"
	NewsArchived  = "archived"
)

// News priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type News struct {
	ID              int64  `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	Content         string `json:"content" db:"content"`
	Status          string `json:"status" db:"status"`
	Priority        string `json:"priority" db:"priority"`
	ShowOnHomepage  bool   `json:"show_on_homepage" db:"show_on_homepage"`
	ShowOnTicker    bool   `json:"show_on_ticker" db:"show_on_ticker"`
	TickerSpeed     int64  `json:"ticker_speed" db:"ticker_speed"`
	PublishDate     int64  `json:"publish_date" db:"publish_date"`
	ExpireDate      *int64 `json:"expire_date,omitempty" db:"expire_date"`
	AuthorID        int64  `json:"author_id" db:"author_id"`
	ViewsCount      int64  `json:"views_count" db:"views_count"`
	MetaDescription string `json:"meta_description,omitempty" db:"meta_description"`
	Tags            string `json:"tags,omitempty" db:"tags"`
	Created         int64  `json:"created" db:"created"`
	Updated         int64  `json:"updated" db:"updated"`
}

// IsActive reports whether the news item is currently visible:
// published, publish date reached, not expired at the given instant.
func (n *News) IsActive(nowMillis int64) bool {
	if n.Status != NewsPublished {
		return false
	}
	if n.PublishDate > nowMillis {
		return false
	}
	return n.ExpireDate == nil || *n.ExpireDate > nowMillis
}

// Activity severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Closed set of activity action types, carried over from the audit
// trail of the original deployment.
const (
	ActionLogin            = "login"
	ActionLogout           = "logout"
	ActionRegister         = "register"
	ActionProfileUpdate    = "profile_update"
	ActionMessageSent      = "message_sent"
	ActionMessageReply     = "message_reply"
	ActionRatingGiven      = "rating_given"
	ActionRatingUpdated    = "rating_updated"
	ActionRatingReply      = "rating_reply"
	ActionVoteCast         = "vote_cast"
	ActionVoteUpdated      = "vote_updated"
	ActionVoteRemoved      = "vote_removed"
	ActionPromiseCreated   = "promise_created"
	ActionPromiseUpdated   = "promise_updated"
	ActionPromiseDeleted   = "promise_deleted"
	ActionNewsCreated      = "news_created"
	ActionNewsUpdated      = "news_updated"
	ActionNewsDeleted      = "news_deleted"
	ActionNewsPublished    = "news_published"
	ActionCandidateCreated = "candidate_created"
	ActionCandidateUpdated = "candidate_updated"
	ActionCandidateDeleted = "candidate_deleted"
	ActionUserCreated      = "user_created"
	ActionUserUpdated      = "user_updated"
	ActionUserDeleted      = "user_deleted"
	ActionBackupCreated    = "backup_created"
	ActionBackupRestored   = "backup_restored"
	ActionSystemError      = "system_error"
	ActionSecurityAlert    = "security_alert"
)

// SecurityActions are the action types surfaced by the security-alerts
// read path.
var SecurityActions = []string{ActionLogin, ActionLogout, ActionRegister, ActionSecurityAlert}

// Related-entity kinds for the activity log's tagged weak reference.
const (
	KindAccount   = "account"
	KindCitizen   = "citizen"
	KindCandidate = "candidate"
	KindMessage   = "message"
	KindRating    = "rating"
	KindVote      = "vote"
	KindNews      = "news"
	KindPromise   = "promise"
	KindBackup    = "backup"
)

type Activity struct {
	ID          int64           `json:"id" db:"id"`
	AccountID   *int64          `json:"account_id,omitempty" db:"account_id"`
	ActionType  string          `json:"action_type" db:"action_type"`
	Description string          `json:"description" db:"description"`
	Severity    string          `json:"severity" db:"severity"`
	IPAddress   string          `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent   string          `json:"user_agent,omitempty" db:"user_agent"`
	SessionKey  string          `json:"session_key,omitempty" db:"session_key"`
	RelatedKind string          `json:"related_kind,omitempty" db:"related_kind"`
	RelatedID   *int64          `json:"related_id,omitempty" db:"related_id"`
	ExtraData   json.RawMessage `json:"extra_data,omitempty" db:"extra_data"`
	Created     int64           `json:"created" db:"created"`
}
