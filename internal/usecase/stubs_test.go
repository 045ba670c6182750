package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/betresult"
	"github.com/riskibarqy/prediction-league/internal/domain/bot"
	"github.com/riskibarqy/prediction-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/standing"
	"github.com/riskibarqy/prediction-league/internal/prediction"
)

var testNow = time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)

type fakeLeagueRepo struct {
	leagues map[string]league.League
	members map[string][]league.Member
}

func newFakeLeagueRepo(leagues ...league.League) *fakeLeagueRepo {
	r := &fakeLeagueRepo{
		leagues: make(map[string]league.League),
		members: make(map[string][]league.Member),
	}
	for _, lg := range leagues {
		r.leagues[lg.ID] = lg
	}
	return r
}

func (r *fakeLeagueRepo) join(leagueID string, userIDs ...string) {
	for _, userID := range userIDs {
		r.members[leagueID] = append(r.members[leagueID], league.Member{
			LeagueID: leagueID,
			UserID:   userID,
			JoinedAt: testNow.Add(-30 * 24 * time.Hour),
		})
	}
}

func (r *fakeLeagueRepo) joinBot(leagueID, userID string) {
	r.members[leagueID] = append(r.members[leagueID], league.Member{
		LeagueID: leagueID,
		UserID:   userID,
		IsBot:    true,
		JoinedAt: testNow.Add(-30 * 24 * time.Hour),
	})
}

func (r *fakeLeagueRepo) leave(leagueID, userID string) {
	left := testNow.Add(-time.Hour)
	for i := range r.members[leagueID] {
		if r.members[leagueID][i].UserID == userID {
			r.members[leagueID][i].LeftAt = &left
		}
	}
}

func (r *fakeLeagueRepo) rejoin(leagueID, userID string) {
	for i := range r.members[leagueID] {
		if r.members[leagueID][i].UserID == userID {
			r.members[leagueID][i].LeftAt = nil
		}
	}
}

func (r *fakeLeagueRepo) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	lg, ok := r.leagues[leagueID]
	return lg, ok, nil
}

func (r *fakeLeagueRepo) ListBotsEnabled(_ context.Context) ([]league.League, error) {
	out := make([]league.League, 0)
	for _, lg := range r.leagues {
		if lg.BotsEnabled {
			out = append(out, lg)
		}
	}
	return out, nil
}

func (r *fakeLeagueRepo) GetMember(_ context.Context, leagueID, userID string) (league.Member, bool, error) {
	for _, m := range r.members[leagueID] {
		if m.UserID == userID {
			return m, true, nil
		}
	}
	return league.Member{}, false, nil
}

func (r *fakeLeagueRepo) ListActiveMembers(_ context.Context, leagueID string) ([]league.Member, error) {
	out := make([]league.Member, 0)
	for _, m := range r.members[leagueID] {
		if m.IsActive() {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeMatchRepo struct {
	matches map[string]match.Match
}

func newFakeMatchRepo(items ...match.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[string]match.Match)}
	for _, m := range items {
		r.matches[m.ID] = m
	}
	return r
}

func (r *fakeMatchRepo) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	m, ok := r.matches[matchID]
	return m, ok, nil
}

func (r *fakeMatchRepo) ListByIDs(_ context.Context, matchIDs []string) ([]match.Match, error) {
	out := make([]match.Match, 0, len(matchIDs))
	for _, id := range matchIDs {
		if m, ok := r.matches[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListUpcoming(_ context.Context, from, to time.Time) ([]match.Match, error) {
	out := make([]match.Match, 0)
	for _, m := range r.matches {
		if !m.KickoffAt.Before(from) && !m.KickoffAt.After(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeBetRepo struct {
	mu   sync.Mutex
	bets map[string]bet.Bet
}

func newFakeBetRepo(items ...bet.Bet) *fakeBetRepo {
	r := &fakeBetRepo{bets: make(map[string]bet.Bet)}
	for _, b := range items {
		r.bets[b.ID] = b
	}
	return r
}

func (r *fakeBetRepo) GetByID(_ context.Context, leagueID, betID string) (bet.Bet, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bets[betID]
	if !ok || b.LeagueID != leagueID {
		return bet.Bet{}, false, nil
	}
	return b, true, nil
}

func (r *fakeBetRepo) GetByKey(_ context.Context, leagueID, userID, matchID string) (bet.Bet, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bets {
		if b.LeagueID == leagueID && b.UserID == userID && b.MatchID == matchID {
			return b, true, nil
		}
	}
	return bet.Bet{}, false, nil
}

func (r *fakeBetRepo) Upsert(_ context.Context, b bet.Bet) (bet.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.bets {
		if existing.LeagueID == b.LeagueID && existing.UserID == b.UserID && existing.MatchID == b.MatchID {
			existing.HomeScore = b.HomeScore
			existing.AwayScore = b.AwayScore
			existing.UpdatedAt = b.UpdatedAt
			r.bets[id] = existing
			return existing, nil
		}
	}
	r.bets[b.ID] = b
	return b, nil
}

func (r *fakeBetRepo) Delete(_ context.Context, leagueID, betID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bets[betID]; ok && b.LeagueID == leagueID {
		delete(r.bets, betID)
	}
	return nil
}

func (r *fakeBetRepo) list(keep func(bet.Bet) bool) []bet.Bet {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bet.Bet, 0)
	for _, b := range r.bets {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeBetRepo) ListByUser(_ context.Context, leagueID, userID string) ([]bet.Bet, error) {
	return r.list(func(b bet.Bet) bool { return b.LeagueID == leagueID && b.UserID == userID }), nil
}

func (r *fakeBetRepo) ListByLeagueAndMatch(_ context.Context, leagueID, matchID string) ([]bet.Bet, error) {
	return r.list(func(b bet.Bet) bool { return b.LeagueID == leagueID && b.MatchID == matchID }), nil
}

func (r *fakeBetRepo) ListByMatch(_ context.Context, matchID string) ([]bet.Bet, error) {
	return r.list(func(b bet.Bet) bool { return b.MatchID == matchID }), nil
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results map[string]betresult.Result
	upserts int
}

func newFakeResultRepo(items ...betresult.Result) *fakeResultRepo {
	r := &fakeResultRepo{results: make(map[string]betresult.Result)}
	for _, item := range items {
		r.results[item.BetID] = item
	}
	return r
}

func (r *fakeResultRepo) GetByBetID(_ context.Context, betID string) (betresult.Result, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.results[betID]
	return item, ok, nil
}

func (r *fakeResultRepo) Upsert(_ context.Context, result betresult.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.results[result.BetID] = result
	return nil
}

func (r *fakeResultRepo) ListByLeague(_ context.Context, leagueID string) ([]betresult.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]betresult.Result, 0)
	for _, item := range r.results {
		if item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BetID < out[j].BetID })
	return out, nil
}

func (r *fakeResultRepo) ListByBetIDs(_ context.Context, betIDs []string) ([]betresult.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]betresult.Result, 0, len(betIDs))
	for _, id := range betIDs {
		if item, ok := r.results[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeResultRepo) MarkApplied(_ context.Context, applied map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for betID, revision := range applied {
		item, ok := r.results[betID]
		if !ok {
			continue
		}
		item.AppliedRevision = revision
		r.results[betID] = item
	}
	return nil
}

// fakeStandingRepo marks folded revisions on results when ApplyResults
// commits. applyErrs are returned, one per call, before anything is written.
type fakeStandingRepo struct {
	mu        sync.Mutex
	rows      map[string]map[string]standing.Standing
	fail      map[string]error
	applyErrs []error
	results   *fakeResultRepo
}

func newFakeStandingRepo(results *fakeResultRepo) *fakeStandingRepo {
	return &fakeStandingRepo{
		rows:    make(map[string]map[string]standing.Standing),
		fail:    make(map[string]error),
		results: results,
	}
}

func (r *fakeStandingRepo) ListByLeague(_ context.Context, leagueID string) ([]standing.Standing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[leagueID]; err != nil {
		return nil, err
	}
	out := make([]standing.Standing, 0, len(r.rows[leagueID]))
	for _, row := range r.rows[leagueID] {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *fakeStandingRepo) UpsertMany(_ context.Context, rows []standing.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		if r.rows[row.LeagueID] == nil {
			r.rows[row.LeagueID] = make(map[string]standing.Standing)
		}
		row.Rank = 0
		r.rows[row.LeagueID][row.UserID] = row
	}
	return nil
}

func (r *fakeStandingRepo) ApplyResults(ctx context.Context, rows []standing.Standing, applied map[string]int) error {
	r.mu.Lock()
	if len(r.applyErrs) > 0 {
		err := r.applyErrs[0]
		r.applyErrs = r.applyErrs[1:]
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	if r.results != nil {
		if err := r.results.MarkApplied(ctx, applied); err != nil {
			return err
		}
	}
	return r.UpsertMany(ctx, rows)
}

func (r *fakeStandingRepo) get(leagueID, userID string) (standing.Standing, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[leagueID][userID]
	return row, ok
}

type fakeBotRepo struct {
	mu      sync.Mutex
	bots    []bot.Bot
	touched map[string]time.Time
}

func newFakeBotRepo(items ...bot.Bot) *fakeBotRepo {
	return &fakeBotRepo{bots: items, touched: make(map[string]time.Time)}
}

func (r *fakeBotRepo) ListActiveByUserIDs(_ context.Context, userIDs []string) ([]bot.Bot, error) {
	want := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		want[id] = struct{}{}
	}
	out := make([]bot.Bot, 0)
	for _, b := range r.bots {
		if _, ok := want[b.UserID]; ok && b.Active {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBotRepo) TouchActivity(_ context.Context, botID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched[botID] = at
	return nil
}

type fakeUserRepo struct {
	users map[string]bool
}

func (r *fakeUserRepo) Exists(_ context.Context, userID string) (bool, error) {
	return r.users[userID], nil
}

type queuedJob struct {
	path    string
	payload any
	delay   time.Duration
	dedupID string
}

type recordingJobQueue struct {
	mu    sync.Mutex
	calls []queuedJob
	err   error
}

func (q *recordingJobQueue) Enqueue(_ context.Context, path string, payload any, delay time.Duration, dedupID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.calls = append(q.calls, queuedJob{path: path, payload: payload, delay: delay, dedupID: dedupID})
	return nil
}

type stubDispatchRepository struct {
	mu     sync.Mutex
	events []jobscheduler.DispatchEvent
}

func (r *stubDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *stubDispatchRepository) GetByDispatchID(_ context.Context, dispatchID string) (jobscheduler.DispatchEvent, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].DispatchID == dispatchID {
			return r.events[i], true, nil
		}
	}
	return jobscheduler.DispatchEvent{}, false, nil
}

type fixedStrategy struct {
	kind  prediction.Kind
	score prediction.Score
	err   error
}

func (s fixedStrategy) Kind() prediction.Kind { return s.kind }

func (s fixedStrategy) Predict(_ context.Context, _ match.Match, _ prediction.Config) (prediction.Score, error) {
	return s.score, s.err
}

type mapResolver map[string]prediction.Strategy

func (r mapResolver) Resolve(id string) prediction.Strategy {
	if s, ok := r[id]; ok {
		return s
	}
	return fixedStrategy{kind: prediction.KindRandom, score: prediction.Score{Home: 0, Away: 0}}
}

var errBoom = errors.New("boom")

func testLeague(id string) league.League {
	return league.League{
		ID:                     id,
		OwnerUserID:            "owner",
		Name:                   "League " + id,
		MaxMembers:             20,
		PointsExactMatch:       3,
		PointsCorrectResult:    1,
		BettingDeadlineMinutes: 15,
		CreatedAt:              testNow.Add(-60 * 24 * time.Hour),
	}
}

func upcomingMatch(id string, kickoff time.Time) match.Match {
	return match.Match{
		ID:            id,
		CompetitionID: "PL",
		Season:        "2025",
		HomeTeamID:    "home-" + id,
		AwayTeamID:    "away-" + id,
		KickoffAt:     kickoff,
		Status:        match.StatusScheduled,
	}
}

func finishedMatch(id string, kickoff time.Time, home, away int) match.Match {
	m := upcomingMatch(id, kickoff)
	m.Status = match.StatusFinished
	m.HomeScore = &home
	m.AwayScore = &away
	return m
}
