package tui

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/theirongolddev/crowdscope/internal/model"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
)

func loaded(name string, goal, balance int64) model.Campaign {
	return model.Campaign{
		Address: "0x" + name,
		Name:    name,
		Funding: model.FundingState{
			Goal:    big.NewInt(goal),
			Balance: big.NewInt(balance),
		},
		GoalStatus:    model.ReadLoaded,
		BalanceStatus: model.ReadLoaded,
	}
}

func names(campaigns []model.Campaign) []string {
	out := make([]string, len(campaigns))
	for i, c := range campaigns {
		out[i] = c.Name
	}
	return out
}

func TestFilterCampaignsBySearch(t *testing.T) {
	campaigns := []model.Campaign{
		loaded("Solar Farm", 100, 10),
		loaded("Reef Restoration", 100, 50),
		loaded("Community Garden", 100, 100),
	}

	if got := filterCampaignsBySearch(campaigns, "  "); len(got) != len(campaigns) {
		t.Fatalf("blank query returned %d campaigns, want %d", len(got), len(campaigns))
	}

	got := names(filterCampaignsBySearch(campaigns, "reef"))
	if diff := cmp.Diff([]string{"Reef Restoration"}, got); diff != "" {
		t.Errorf("search mismatch (-want +got):\n%s", diff)
	}

	if got := filterCampaignsBySearch(campaigns, "zzz"); len(got) != 0 {
		t.Errorf("unmatched query returned %v", names(got))
	}
}

func TestMoveCursorStaysInRange(t *testing.T) {
	var s campaignsState

	s.moveCursor(-1, 5)
	if s.cursor != 0 {
		t.Fatalf("cursor = %d after moving before start, want 0", s.cursor)
	}
	s.moveCursor(3, 5)
	if s.cursor != 3 {
		t.Fatalf("cursor = %d, want 3", s.cursor)
	}
	s.moveCursor(3, 5)
	if s.cursor != 3 {
		t.Fatalf("cursor = %d after moving past end, want 3", s.cursor)
	}
	s.moveCursor(1, 5)
	if s.cursor != 4 {
		t.Fatalf("cursor = %d, want 4", s.cursor)
	}
}

func TestNextSortKeyCycles(t *testing.T) {
	k := pipeline.SortKeys[0]
	seen := map[pipeline.SortKey]bool{}
	for range pipeline.SortKeys {
		seen[k] = true
		k = nextSortKey(k)
	}
	if k != pipeline.SortKeys[0] {
		t.Errorf("cycle ended at %q, want %q", k, pipeline.SortKeys[0])
	}
	if len(seen) != len(pipeline.SortKeys) {
		t.Errorf("visited %d sort keys, want %d", len(seen), len(pipeline.SortKeys))
	}
	if got := nextSortKey("bogus"); got != pipeline.SortKeys[0] {
		t.Errorf("nextSortKey(bogus) = %q", got)
	}
}

func TestProgressDistribution(t *testing.T) {
	pending := loaded("Pending", 100, 0)
	pending.Funding.Balance = nil
	pending.BalanceStatus = model.ReadLoading

	campaigns := []model.Campaign{
		loaded("a", 100, 10),  // 10%
		loaded("b", 100, 24),  // 24%
		loaded("c", 100, 60),  // 60%
		loaded("d", 100, 99),  // 99%
		loaded("e", 100, 250), // capped at 100%
		pending,
	}

	got := progressDistribution(campaigns)
	want := []float64{2, 0, 1, 1, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}
}

func TestRecomputeClampsCursor(t *testing.T) {
	a := App{
		campaigns: []model.Campaign{
			loaded("Solar Farm", 100, 10),
			loaded("Reef Restoration", 100, 50),
		},
		sortKey: pipeline.SortName,
	}
	a.campState.cursor = 7
	a.recompute()

	if a.campState.cursor != 1 {
		t.Errorf("cursor = %d, want 1", a.campState.cursor)
	}
	if diff := cmp.Diff([]string{"Reef Restoration", "Solar Farm"}, names(a.filtered)); diff != "" {
		t.Errorf("sorted mismatch (-want +got):\n%s", diff)
	}
	if a.stats.Campaigns != 2 {
		t.Errorf("stats.Campaigns = %d, want 2", a.stats.Campaigns)
	}
}
