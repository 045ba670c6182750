package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/betresult"
	"github.com/riskibarqy/prediction-league/internal/domain/signal"
	"github.com/riskibarqy/prediction-league/internal/domain/standing"
)

var seedNow = time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)

func TestBetRepository_UpsertKeepsIdentity(t *testing.T) {
	t.Parallel()

	repo := NewBetRepository()
	ctx := context.Background()

	first, err := repo.Upsert(ctx, bet.Bet{ID: "b1", LeagueID: "l1", UserID: "u1", MatchID: "m1", HomeScore: 1, AwayScore: 0, PlacedAt: seedNow})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	updated := seedNow.Add(time.Hour)
	second, err := repo.Upsert(ctx, bet.Bet{ID: "b2", LeagueID: "l1", UserID: "u1", MatchID: "m1", HomeScore: 2, AwayScore: 2, PlacedAt: updated, UpdatedAt: &updated})
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if second.ID != first.ID || !second.PlacedAt.Equal(seedNow) || second.HomeScore != 2 {
		t.Fatalf("expected stored identity with new scores, got %+v", second)
	}

	if _, ok, _ := repo.GetByID(ctx, "l2", "b1"); ok {
		t.Fatalf("bet must not be visible from another league")
	}
	if err := repo.Delete(ctx, "l1", "b1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.GetByKey(ctx, "l1", "u1", "m1"); ok {
		t.Fatalf("expected key to be released after delete")
	}
}

func TestBetResultRepository_ListAndMarkApplied(t *testing.T) {
	t.Parallel()

	repo := NewBetResultRepository()
	ctx := context.Background()
	_ = repo.Upsert(ctx, betresult.Result{BetID: "b2", LeagueID: "l1", MatchID: "m2", MatchKickoffAt: seedNow, Revision: 1})
	_ = repo.Upsert(ctx, betresult.Result{BetID: "b1", LeagueID: "l1", MatchID: "m1", MatchKickoffAt: seedNow.Add(-time.Hour), Revision: 2})
	_ = repo.Upsert(ctx, betresult.Result{BetID: "b3", LeagueID: "l2", MatchID: "m1", MatchKickoffAt: seedNow, Revision: 1})

	got, err := repo.ListByLeague(ctx, "l1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].BetID != "b1" || got[1].BetID != "b2" {
		t.Fatalf("expected replay order, got %+v", got)
	}

	if err := repo.MarkApplied(ctx, map[string]int{"b1": 2, "missing": 1}); err != nil {
		t.Fatalf("mark applied: %v", err)
	}
	b1, _, _ := repo.GetByBetID(ctx, "b1")
	if b1.AppliedRevision != 2 || b1.IsPending() {
		t.Fatalf("unexpected applied state: %+v", b1)
	}
}

func TestStandingRepository_UpsertManyKeepsOtherRows(t *testing.T) {
	t.Parallel()

	repo := NewStandingRepository(nil)
	ctx := context.Background()
	_ = repo.UpsertMany(ctx, []standing.Standing{
		{LeagueID: "l1", UserID: "bob", TotalPoints: 1},
		{LeagueID: "l1", UserID: "alice", TotalPoints: 2, Rank: 1},
	})
	_ = repo.UpsertMany(ctx, []standing.Standing{{LeagueID: "l1", UserID: "alice", TotalPoints: 5}})

	rows, err := repo.ListByLeague(ctx, "l1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].UserID != "alice" || rows[0].TotalPoints != 5 || rows[0].Rank != 0 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestStandingRepository_ApplyResultsMarksRevisions(t *testing.T) {
	t.Parallel()

	results := NewBetResultRepository()
	repo := NewStandingRepository(results)
	ctx := context.Background()
	_ = results.Upsert(ctx, betresult.Result{BetID: "b1", LeagueID: "l1", UserID: "alice", Revision: 1})

	err := repo.ApplyResults(ctx, []standing.Standing{{LeagueID: "l1", UserID: "alice", TotalPoints: 3, BetsPlaced: 1}}, map[string]int{"b1": 1})
	if err != nil {
		t.Fatalf("apply results: %v", err)
	}

	rows, _ := repo.ListByLeague(ctx, "l1")
	if len(rows) != 1 || rows[0].TotalPoints != 3 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	b1, _, _ := results.GetByBetID(ctx, "b1")
	if b1.IsPending() || b1.AppliedRevision != 1 {
		t.Fatalf("expected result marked applied, got %+v", b1)
	}
}

func TestStandingRepository_ApplyResultsWithoutResultStore(t *testing.T) {
	t.Parallel()

	repo := NewStandingRepository(nil)
	ctx := context.Background()
	err := repo.ApplyResults(ctx, []standing.Standing{{LeagueID: "l1", UserID: "alice", TotalPoints: 3}}, map[string]int{"b1": 1})
	if err == nil {
		t.Fatalf("expected error without result store")
	}
	if rows, _ := repo.ListByLeague(ctx, "l1"); len(rows) != 0 {
		t.Fatalf("expected no rows written, got %+v", rows)
	}
}

func TestLeagueRepository_ActiveMembers(t *testing.T) {
	t.Parallel()

	repo := NewLeagueRepository(SeedLeagues(seedNow), SeedMembers(seedNow))
	ctx := context.Background()
	repo.Leave(LeagueIDOffice, "user-bob", seedNow)

	members, err := repo.ListActiveMembers(ctx, LeagueIDOffice)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	for _, m := range members {
		if m.UserID == "user-bob" {
			t.Fatalf("departed member listed as active")
		}
	}
	if m, ok, _ := repo.GetMember(ctx, LeagueIDOffice, "user-bob"); !ok || m.IsActive() {
		t.Fatalf("expected departed member to be retained, got %+v", m)
	}

	leagues, _ := repo.ListBotsEnabled(ctx)
	if len(leagues) != 1 || leagues[0].ID != LeagueIDOffice {
		t.Fatalf("unexpected bot leagues: %+v", leagues)
	}
}

func TestMatchRepository_ListUpcoming(t *testing.T) {
	t.Parallel()

	repo := NewMatchRepository(SeedMatches(seedNow))
	got, err := repo.ListUpcoming(context.Background(), seedNow, seedNow.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(got) != 2 || !got[0].KickoffAt.Before(got[1].KickoffAt) {
		t.Fatalf("unexpected upcoming matches: %+v", got)
	}
}

func TestSignalStore_AvailabilityFollowsData(t *testing.T) {
	t.Parallel()

	store := NewSignalStore()
	ctx := context.Background()

	flags, _ := store.GetDataAvailability(ctx)
	for _, c := range signal.Categories() {
		if flags.Has(c) {
			t.Fatalf("expected empty store to report %s unavailable", c)
		}
	}

	SeedSignals(store, seedNow)
	flags, _ = store.GetDataAvailability(ctx)
	if !flags.Has(signal.CategoryForm) || !flags.Has(signal.CategoryOdds) || flags.Has(signal.CategoryInjuries) {
		t.Fatalf("unexpected flags after seeding: %v", flags)
	}
	if _, err := store.GetTeamInjuries(ctx, "team-ars"); !errors.Is(err, signal.ErrNoData) {
		t.Fatalf("expected no data, got %v", err)
	}
	form, err := store.GetForm(ctx, "team-ars", CompetitionPremierLeague, 5)
	if err != nil || form.Streak != 3 {
		t.Fatalf("unexpected form: %+v err=%v", form, err)
	}
}
