package pipeline

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/theirongolddev/crowdscope/internal/model"
)

func camp(addr, owner, name string, goal, balance *big.Int) model.Campaign {
	return model.Campaign{
		Address: addr,
		Owner:   owner,
		Name:    name,
		Funding: model.FundingState{Goal: goal, Balance: balance},
	}
}

func n(v int64) *big.Int { return big.NewInt(v) }

func addresses(cs []model.Campaign) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Address)
	}
	return out
}

func fixture() []model.Campaign {
	return []model.Campaign{
		camp("0x1", "0xAA", "Coral Reef", n(1000), n(1000)), // funded, 100%
		camp("0x2", "0xaa", "Bee Hives", n(1000), n(250)),   // active, 25%
		camp("0x3", "0xbb", "Solar Roof", n(4000), nil),     // unknown
		camp("0x4", "0xbb", "reef cleanup", n(200), n(150)), // active, 75%
		camp("0x5", "0xcc", "", nil, n(40)),                 // unknown
	}
}

func TestAggregate(t *testing.T) {
	stats := Aggregate(fixture())

	if stats.Campaigns != 5 || stats.Funded != 1 || stats.Active != 2 || stats.Unknown != 2 {
		t.Fatalf("counts = %+v", stats)
	}
	if stats.TotalRaised.Int64() != 1000+250+150+40 {
		t.Errorf("TotalRaised = %s", stats.TotalRaised)
	}
	if stats.TotalGoal.Int64() != 1000+1000+4000+200 {
		t.Errorf("TotalGoal = %s", stats.TotalGoal)
	}
	// Complete campaigns only: 1400 of 2200.
	if stats.Progress.Percentage != 63 || stats.Progress.IsGoalReached {
		t.Errorf("Progress = %+v, want 63%% not reached", stats.Progress)
	}
}

func TestAggregate_Empty(t *testing.T) {
	stats := Aggregate(nil)
	if stats.Campaigns != 0 || stats.TotalRaised.Sign() != 0 || stats.Progress.Percentage != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Progress.IsGoalReached {
		t.Fatal("empty marketplace reported goal reached")
	}
}

func TestFilters(t *testing.T) {
	cs := fixture()

	if diff := cmp.Diff([]string{"0x1", "0x2"}, addresses(FilterByOwner(cs, "0xaa"))); diff != "" {
		t.Errorf("FilterByOwner (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"0x1", "0x4"}, addresses(FilterByName(cs, "REEF"))); diff != "" {
		t.Errorf("FilterByName (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"0x2", "0x4"}, addresses(FilterByStatus(cs, model.StatusActive))); diff != "" {
		t.Errorf("FilterByStatus active (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"0x3", "0x5"}, addresses(FilterByStatus(cs, model.StatusUnknown))); diff != "" {
		t.Errorf("FilterByStatus unknown (-want +got):\n%s", diff)
	}
	if got := FilterByOwner(cs, ""); len(got) != len(cs) {
		t.Errorf("empty owner filter dropped campaigns")
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortProgress, []string{"0x1", "0x4", "0x2", "0x5", "0x3"}},
		{SortRaised, []string{"0x1", "0x2", "0x4", "0x5", "0x3"}},
		{SortGoal, []string{"0x3", "0x1", "0x2", "0x4", "0x5"}},
		{SortName, []string{"0x2", "0x1", "0x4", "0x3", "0x5"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			cs := fixture()
			Sort(cs, tt.key)
			if diff := cmp.Diff(tt.want, addresses(cs)); diff != "" {
				t.Errorf("Sort(%s) (-want +got):\n%s", tt.key, diff)
			}
		})
	}
}

func TestTopDoesNotMutate(t *testing.T) {
	cs := fixture()
	top := Top(cs, 2)
	if diff := cmp.Diff([]string{"0x1", "0x4"}, addresses(top)); diff != "" {
		t.Errorf("Top (-want +got):\n%s", diff)
	}
	if cs[0].Address != "0x1" || cs[1].Address != "0x2" {
		t.Error("Top reordered its input")
	}
}

func TestParseSortKeyAndStatus(t *testing.T) {
	if k, err := ParseSortKey(""); err != nil || k != SortProgress {
		t.Errorf("ParseSortKey(\"\") = %q, %v", k, err)
	}
	if k, err := ParseSortKey(" Raised "); err != nil || k != SortRaised {
		t.Errorf("ParseSortKey(Raised) = %q, %v", k, err)
	}
	if _, err := ParseSortKey("date"); err == nil {
		t.Error("ParseSortKey(date) accepted")
	}
	if s, err := ParseStatus("FUNDED"); err != nil || s != model.StatusFunded {
		t.Errorf("ParseStatus(FUNDED) = %q, %v", s, err)
	}
	if _, err := ParseStatus("paused"); err == nil {
		t.Error("ParseStatus(paused) accepted")
	}
}

func TestAggregateOwners(t *testing.T) {
	owners := AggregateOwners(fixture())
	if len(owners) != 4 {
		t.Fatalf("got %d owners, want 4 (0xAA and 0xaa are distinct keys)", len(owners))
	}
	first := owners[0]
	if first.Owner != "0xAA" || first.Funded != 1 || first.TotalRaised.Int64() != 1000 {
		t.Errorf("top owner = %+v", first)
	}
	var bb model.OwnerStats
	for _, o := range owners {
		if o.Owner == "0xbb" {
			bb = o
		}
	}
	if bb.Campaigns != 2 || bb.TotalGoal.Int64() != 4200 || bb.TotalRaised.Int64() != 150 {
		t.Errorf("0xbb = %+v", bb)
	}
}
