// Package mock provides an in-memory repository for handler tests.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/naebak/naebak/pkg/models"
	"github.com/naebak/naebak/pkg/repository"
)

// Store keeps everything in slices and hands out copies. Error fields
// force failures for the unhappy paths.
type Store struct {
	Accounts   []models.Account
	Citizens   []models.Citizen
	Candidates []models.Candidate
	Promises   []models.ElectoralPromise
	History    []models.ServiceHistory
	Messages   []models.Message
	Ratings    []models.Rating
	Replies    []models.RatingReply
	Votes      []models.Vote
	News       []models.News
	Activities []models.Activity

	nextID int64

	Err error // returned by every method when set
}

func NewStore() *Store {
	return &Store{nextID: 1000}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func now() int64 { return time.Now().UTC().UnixMilli() }

// AccountRepo

func (s *Store) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			a := s.Accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Accounts {
		if s.Accounts[i].Email == email {
			a := s.Accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Accounts {
		if s.Accounts[i].Username == username {
			a := s.Accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	a, _ := s.GetAccountByUsername(ctx, username)
	return a != nil, nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, id, ts int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			s.Accounts[i].LastLogin = &ts
		}
	}
	return nil
}

func (s *Store) ListAccounts(ctx context.Context, f repository.AccountFilter) ([]models.Account, int64, error) {
	if s.Err != nil {
		return nil, 0, s.Err
	}
	var out []models.Account
	for _, a := range s.Accounts {
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		if f.Status == "active" && !a.IsActive {
			continue
		}
		if f.Status == "inactive" && a.IsActive {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			hay := strings.ToLower(a.Username + " " + a.FirstName + " " + a.LastName + " " + a.Email)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, a)
	}
	total := int64(len(out))
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			out = nil
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			s.Accounts = append(s.Accounts[:i], s.Accounts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("account %d not found", id)
}

// CitizenRepo

func (s *Store) RegisterCitizen(ctx context.Context, a *models.Account, c *models.Citizen) (int64, int64, error) {
	if s.Err != nil {
		return 0, 0, s.Err
	}
	for _, existing := range s.Accounts {
		if existing.Email == a.Email || existing.Username == a.Username {
			return 0, 0, fmt.Errorf("duplicate account")
		}
	}
	accountID := s.id()
	citizenID := s.id()
	acc := *a
	acc.ID = accountID
	acc.Role = models.RoleCitizen
	acc.IsActive = true
	acc.Created = now()
	s.Accounts = append(s.Accounts, acc)

	cit := *c
	cit.ID = citizenID
	cit.AccountID = accountID
	cit.Created = acc.Created
	cit.Updated = acc.Created
	s.Citizens = append(s.Citizens, cit)
	return accountID, citizenID, nil
}

func (s *Store) GetCitizenByAccountID(ctx context.Context, accountID int64) (*models.Citizen, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Citizens {
		if s.Citizens[i].AccountID == accountID {
			c := s.Citizens[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateCitizen(ctx context.Context, c *models.Citizen) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Citizens {
		if s.Citizens[i].ID == c.ID {
			s.Citizens[i] = *c
			return nil
		}
	}
	return fmt.Errorf("citizen %d not found", c.ID)
}

func (s *Store) FindCitizensByPhone(ctx context.Context, phone, nameToken string) ([]models.Citizen, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Citizen
	token := strings.ToLower(nameToken)
	for _, c := range s.Citizens {
		if c.PhoneNumber == phone && strings.Contains(strings.ToLower(c.FirstName), token) {
			out = append(out, c)
		}
	}
	return out, nil
}

// CandidateRepo

func (s *Store) CreateCandidateAccount(ctx context.Context, a *models.Account, c *models.Candidate) (int64, int64, error) {
	if s.Err != nil {
		return 0, 0, s.Err
	}
	for _, existing := range s.Accounts {
		if existing.Email == a.Email || existing.Username == a.Username {
			return 0, 0, fmt.Errorf("duplicate account")
		}
	}
	accountID := s.id()
	candidateID := s.id()
	acc := *a
	acc.ID = accountID
	acc.Role = models.RoleCandidate
	acc.IsActive = true
	acc.Created = now()
	s.Accounts = append(s.Accounts, acc)

	cand := *c
	cand.ID = candidateID
	cand.AccountID = accountID
	cand.Created = acc.Created
	cand.Updated = acc.Created
	s.Candidates = append(s.Candidates, cand)
	return accountID, candidateID, nil
}

func (s *Store) GetCandidateByID(ctx context.Context, id int64) (*models.Candidate, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Candidates {
		if s.Candidates[i].ID == id {
			c := s.Candidates[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) GetCandidateByAccountID(ctx context.Context, accountID int64) (*models.Candidate, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Candidates {
		if s.Candidates[i].AccountID == accountID {
			c := s.Candidates[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateCandidate(ctx context.Context, c *models.Candidate) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Candidates {
		if s.Candidates[i].ID == c.ID {
			s.Candidates[i] = *c
			return nil
		}
	}
	return fmt.Errorf("candidate %d not found", c.ID)
}

func (s *Store) DeleteCandidateAccount(ctx context.Context, candidateID int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Candidates {
		if s.Candidates[i].ID == candidateID {
			accountID := s.Candidates[i].AccountID
			s.Candidates = append(s.Candidates[:i], s.Candidates[i+1:]...)
			_ = s.DeleteAccount(ctx, accountID)
			return nil
		}
	}
	return fmt.Errorf("candidate %d not found", candidateID)
}

func (s *Store) statsFor(candidateID int64) models.CandidateStats {
	var st models.CandidateStats
	var starSum int64
	for _, v := range s.Votes {
		if v.CandidateID != candidateID {
			continue
		}
		st.TotalVotes++
		if v.VoteType == models.VoteApprove {
			st.ApproveVotes++
		} else {
			st.DisapproveVotes++
		}
	}
	for _, g := range s.Ratings {
		if g.CandidateID != candidateID {
			continue
		}
		st.TotalRatings++
		starSum += g.Stars
	}
	if st.TotalRatings > 0 {
		st.AvgRating = float64(starSum) / float64(st.TotalRatings)
	}
	for _, m := range s.Messages {
		if m.CandidateID == candidateID {
			st.TotalMessages++
		}
	}
	st.TotalActivity = st.TotalVotes + st.TotalRatings + st.TotalMessages
	return st
}

func (s *Store) ListCandidatesWithStats(ctx context.Context, f repository.CandidateFilter) ([]repository.CandidateWithStats, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []repository.CandidateWithStats
	for _, c := range s.Candidates {
		if f.GovernorateID > 0 && c.GovernorateID != f.GovernorateID {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			hay := strings.ToLower(c.Name + " " + c.Constituency + " " + c.Bio + " " + c.ElectoralProg)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, repository.CandidateWithStats{Candidate: c, Stats: s.statsFor(c.ID)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Candidate.Name < out[j].Candidate.Name })
	return out, nil
}

func (s *Store) CandidateStats(ctx context.Context, candidateID int64) (*models.CandidateStats, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	st := s.statsFor(candidateID)
	return &st, nil
}

func (s *Store) RatingDistribution(ctx context.Context, candidateID int64) (map[int64]int64, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	dist := map[int64]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, g := range s.Ratings {
		if g.CandidateID == candidateID {
			dist[g.Stars]++
		}
	}
	return dist, nil
}

func (s *Store) CountCandidatesByGovernorate(ctx context.Context) (map[int64]int64, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[int64]int64)
	for _, c := range s.Candidates {
		out[c.GovernorateID]++
	}
	return out, nil
}

// PromiseRepo

func (s *Store) CreatePromise(ctx context.Context, p *models.ElectoralPromise) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	promise := *p
	promise.ID = s.id()
	promise.Created = now()
	promise.Updated = promise.Created
	s.Promises = append(s.Promises, promise)
	return promise.ID, nil
}

func (s *Store) GetPromiseByID(ctx context.Context, id int64) (*models.ElectoralPromise, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Promises {
		if s.Promises[i].ID == id {
			p := s.Promises[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Store) ListPromisesByCandidate(ctx context.Context, candidateID int64) ([]models.ElectoralPromise, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.ElectoralPromise
	for _, p := range s.Promises {
		if p.CandidateID == candidateID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (s *Store) UpdatePromise(ctx context.Context, p *models.ElectoralPromise) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Promises {
		if s.Promises[i].ID == p.ID {
			s.Promises[i] = *p
			return nil
		}
	}
	return fmt.Errorf("promise %d not found", p.ID)
}

func (s *Store) DeletePromise(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Promises {
		if s.Promises[i].ID == id {
			s.Promises = append(s.Promises[:i], s.Promises[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) CountPromisesByCandidate(ctx context.Context, candidateID int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var count int64
	for _, p := range s.Promises {
		if p.CandidateID == candidateID {
			count++
		}
	}
	return count, nil
}

// ServiceHistoryRepo

func (s *Store) CreateServiceHistory(ctx context.Context, e *models.ServiceHistory) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	entry := *e
	entry.ID = s.id()
	s.History = append(s.History, entry)
	return entry.ID, nil
}

func (s *Store) ListServiceHistoryByCandidate(ctx context.Context, candidateID int64) ([]models.ServiceHistory, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.ServiceHistory
	for _, e := range s.History {
		if e.CandidateID == candidateID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartYear > out[j].StartYear })
	return out, nil
}

func (s *Store) DeleteServiceHistory(ctx context.Context, id, candidateID int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.History {
		if s.History[i].ID == id && s.History[i].CandidateID == candidateID {
			s.History = append(s.History[:i], s.History[i+1:]...)
			return nil
		}
	}
	return nil
}

// MessageRepo

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	msg := *m
	msg.ID = s.id()
	if msg.Created == 0 {
		msg.Created = now()
	}
	s.Messages = append(s.Messages, msg)
	return msg.ID, nil
}

func (s *Store) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			m := s.Messages[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (s *Store) ListInbox(ctx context.Context, candidateID int64, limit, offset int) ([]models.Message, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Message
	for _, m := range s.Messages {
		if m.CandidateID == candidateID && m.ReplyTo == nil {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created > out[j].Created })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountInbox(ctx context.Context, candidateID int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var count int64
	for _, m := range s.Messages {
		if m.CandidateID == candidateID && m.ReplyTo == nil {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountUnread(ctx context.Context, candidateID int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var count int64
	for _, m := range s.Messages {
		if m.CandidateID == candidateID && m.ReplyTo == nil && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Store) MarkCandidateMessagesRead(ctx context.Context, candidateID int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	var flipped int64
	for i := range s.Messages {
		m := &s.Messages[i]
		if m.CandidateID == candidateID && m.ReplyTo == nil && !m.IsRead {
			m.IsRead = true
			flipped++
		}
	}
	return flipped, nil
}

func (s *Store) ListReplies(ctx context.Context, messageID int64) ([]models.Message, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Message
	for _, m := range s.Messages {
		if m.ReplyTo != nil && *m.ReplyTo == messageID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created < out[j].Created })
	return out, nil
}

func (s *Store) ListSentByAccount(ctx context.Context, accountID int64, limit, offset int) ([]models.Message, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Message
	for _, m := range s.Messages {
		if m.SenderAccountID != nil && *m.SenderAccountID == accountID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created > out[j].Created })
	return out, nil
}

// RatingRepo

func (s *Store) UpsertRating(ctx context.Context, g *models.Rating) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if g.Stars < 1 || g.Stars > 5 {
		return "", fmt.Errorf("stars must be between 1 and 5")
	}
	for i := range s.Ratings {
		r := &s.Ratings[i]
		if r.CandidateID == g.CandidateID && r.CitizenID == g.CitizenID {
			r.Stars = g.Stars
			r.Comment = g.Comment
			r.Created = now()
			r.IsRead = false
			return models.VoteActionUpdated, nil
		}
	}
	rating := *g
	rating.ID = s.id()
	rating.Created = now()
	s.Ratings = append(s.Ratings, rating)
	return models.VoteActionCreated, nil
}

func (s *Store) GetRating(ctx context.Context, candidateID, citizenID int64) (*models.Rating, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Ratings {
		if s.Ratings[i].CandidateID == candidateID && s.Ratings[i].CitizenID == citizenID {
			g := s.Ratings[i]
			return &g, nil
		}
	}
	return nil, nil
}

func (s *Store) GetRatingByID(ctx context.Context, id int64) (*models.Rating, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Ratings {
		if s.Ratings[i].ID == id {
			g := s.Ratings[i]
			return &g, nil
		}
	}
	return nil, nil
}

func (s *Store) ListRatingsByCandidate(ctx context.Context, candidateID int64, limit, offset int) ([]models.Rating, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Rating
	for _, g := range s.Ratings {
		if g.CandidateID == candidateID {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created > out[j].Created })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UpsertRatingReply(ctx context.Context, rr *models.RatingReply) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	for i := range s.Replies {
		if s.Replies[i].RatingID == rr.RatingID {
			s.Replies[i].Content = rr.Content
			s.Replies[i].Created = now()
			return s.Replies[i].ID, nil
		}
	}
	reply := *rr
	reply.ID = s.id()
	reply.Created = now()
	s.Replies = append(s.Replies, reply)
	return reply.ID, nil
}

func (s *Store) GetRatingReply(ctx context.Context, ratingID int64) (*models.RatingReply, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Replies {
		if s.Replies[i].RatingID == ratingID {
			rr := s.Replies[i]
			return &rr, nil
		}
	}
	return nil, nil
}

// VoteRepo

func (s *Store) ToggleVote(ctx context.Context, candidateID, citizenID int64, voteType string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if voteType != models.VoteApprove && voteType != models.VoteDisapprove {
		return "", fmt.Errorf("invalid vote type %q", voteType)
	}
	for i := range s.Votes {
		v := &s.Votes[i]
		if v.CandidateID == candidateID && v.CitizenID == citizenID {
			if v.VoteType == voteType {
				s.Votes = append(s.Votes[:i], s.Votes[i+1:]...)
				return models.VoteActionRemoved, nil
			}
			v.VoteType = voteType
			v.Created = now()
			return models.VoteActionUpdated, nil
		}
	}
	s.Votes = append(s.Votes, models.Vote{
		ID:          s.id(),
		CandidateID: candidateID,
		CitizenID:   citizenID,
		VoteType:    voteType,
		Created:     now(),
	})
	return models.VoteActionCreated, nil
}

func (s *Store) GetVote(ctx context.Context, candidateID, citizenID int64) (*models.Vote, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Votes {
		if s.Votes[i].CandidateID == candidateID && s.Votes[i].CitizenID == citizenID {
			v := s.Votes[i]
			return &v, nil
		}
	}
	return nil, nil
}

// NewsRepo

func (s *Store) CreateNews(ctx context.Context, n *models.News) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	item := *n
	item.ID = s.id()
	if item.Status == "" {
		item.Status = models.NewsDraft
	}
	if item.Priority == "" {
		item.Priority = models.PriorityNormal
	}
	if item.PublishDate == 0 {
		item.PublishDate = now()
	}
	item.Created = now()
	item.Updated = item.Created
	s.News = append(s.News, item)
	return item.ID, nil
}

func (s *Store) GetNewsByID(ctx context.Context, id int64) (*models.News, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.News {
		if s.News[i].ID == id {
			n := s.News[i]
			return &n, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateNews(ctx context.Context, n *models.News) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.News {
		if s.News[i].ID == n.ID {
			s.News[i] = *n
			return nil
		}
	}
	return fmt.Errorf("news %d not found", n.ID)
}

func (s *Store) DeleteNews(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.News {
		if s.News[i].ID == id {
			s.News = append(s.News[:i], s.News[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) ListActiveNews(ctx context.Context, onlyTicker, onlyHomepage bool, limit, offset int) ([]models.News, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	ts := now()
	var out []models.News
	for _, n := range s.News {
		if !n.IsActive(ts) {
			continue
		}
		if onlyTicker && !n.ShowOnTicker {
			continue
		}
		if onlyHomepage && !n.ShowOnHomepage {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PublishDate > out[j].PublishDate })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListNewsAdmin(ctx context.Context, f repository.NewsFilter) ([]models.News, int64, error) {
	if s.Err != nil {
		return nil, 0, s.Err
	}
	var out []models.News
	for _, n := range s.News {
		if f.Status != "" && n.Status != f.Status {
			continue
		}
		if f.Priority != "" && n.Priority != f.Priority {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(n.Title+" "+n.Content+" "+n.Tags), q) {
				continue
			}
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (s *Store) IncrementNewsViews(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	for i := range s.News {
		if s.News[i].ID == id {
			s.News[i].ViewsCount++
		}
	}
	return nil
}

func (s *Store) CountNews(ctx context.Context) (repository.NewsCounts, error) {
	if s.Err != nil {
		return repository.NewsCounts{}, s.Err
	}
	var c repository.NewsCounts
	for _, n := range s.News {
		c.Total++
		if n.Status == models.NewsPublished {
			c.Published++
		}
		if n.Status == models.NewsDraft {
			c.Draft++
		}
		if n.Priority == models.PriorityUrgent {
			c.Urgent++
		}
	}
	return c, nil
}

// ActivityRepo

func (s *Store) LogActivity(ctx context.Context, a *models.Activity) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	activity := *a
	activity.ID = s.id()
	if activity.Severity == "" {
		activity.Severity = models.SeverityInfo
	}
	if activity.Created == 0 {
		activity.Created = now()
	}
	if len(activity.ExtraData) == 0 {
		activity.ExtraData = json.RawMessage(`{}`)
	}
	s.Activities = append(s.Activities, activity)
	return activity.ID, nil
}

func (s *Store) GetActivityByID(ctx context.Context, id int64) (*models.Activity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Activities {
		if s.Activities[i].ID == id {
			a := s.Activities[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Store) ListActivities(ctx context.Context, f repository.ActivityFilter) ([]models.Activity, int64, error) {
	if s.Err != nil {
		return nil, 0, s.Err
	}
	var out []models.Activity
	for _, a := range s.Activities {
		if f.ActionType != "" && a.ActionType != f.ActionType {
			continue
		}
		if f.Severity != "" && a.Severity != f.Severity {
			continue
		}
		if f.AccountID > 0 && (a.AccountID == nil || *a.AccountID != f.AccountID) {
			continue
		}
		if f.Search != "" && !strings.Contains(a.Description+" "+a.IPAddress, f.Search) {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (s *Store) RecentActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := append([]models.Activity(nil), s.Activities...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created > out[j].Created })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) AccountActivities(ctx context.Context, accountID int64, limit int) ([]models.Activity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Activity
	for _, a := range s.Activities {
		if a.AccountID != nil && *a.AccountID == accountID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) SecurityAlerts(ctx context.Context, limit int) ([]models.Activity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Activity
	for _, a := range s.Activities {
		for _, action := range models.SecurityActions {
			if a.ActionType == action {
				out = append(out, a)
				break
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CriticalActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Activity
	for _, a := range s.Activities {
		if a.Severity == models.SeverityError || a.Severity == models.SeverityCritical {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CountBySeverity(ctx context.Context, since int64) (map[string]int64, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := map[string]int64{
		models.SeverityInfo:     0,
		models.SeverityWarning:  0,
		models.SeverityError:    0,
		models.SeverityCritical: 0,
	}
	for _, a := range s.Activities {
		if a.Created >= since {
			out[a.Severity]++
		}
	}
	return out, nil
}

func (s *Store) DailyActivityCounts(ctx context.Context, days int) ([]repository.DailyCount, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if days <= 0 {
		days = 30
	}
	start := time.Now().UTC().AddDate(0, 0, -(days - 1))
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	counts := make(map[string]int64)
	for _, a := range s.Activities {
		day := time.UnixMilli(a.Created).UTC().Format("2006-01-02")
		counts[day]++
	}

	out := make([]repository.DailyCount, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, repository.DailyCount{Date: day, Count: counts[day]})
	}
	return out, nil
}

// StatsRepo

func (s *Store) Totals(ctx context.Context) (repository.Totals, error) {
	if s.Err != nil {
		return repository.Totals{}, s.Err
	}
	return repository.Totals{
		Accounts:   int64(len(s.Accounts)),
		Candidates: int64(len(s.Candidates)),
		Messages:   int64(len(s.Messages)),
		Ratings:    int64(len(s.Ratings)),
		Votes:      int64(len(s.Votes)),
		News:       int64(len(s.News)),
	}, nil
}

func (s *Store) PeriodStats(ctx context.Context, since int64) (repository.PeriodStats, error) {
	if s.Err != nil {
		return repository.PeriodStats{}, s.Err
	}
	var p repository.PeriodStats
	for _, a := range s.Accounts {
		if a.Created >= since {
			p.NewAccounts++
		}
	}
	for _, m := range s.Messages {
		if m.Created >= since {
			p.NewMessages++
		}
	}
	for _, g := range s.Ratings {
		if g.Created >= since {
			p.NewRatings++
		}
	}
	for _, v := range s.Votes {
		if v.Created >= since {
			p.NewVotes++
		}
	}
	return p, nil
}

func (s *Store) TopCandidates(ctx context.Context, limit int) ([]repository.CandidateWithStats, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	all, err := s.ListCandidatesWithStats(ctx, repository.CandidateFilter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Stats.TotalActivity > all[j].Stats.TotalActivity })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
