package theme

import (
	"testing"

	"github.com/theirongolddev/crowdscope/internal/model"
)

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("tokyo-night"); got.Name != "tokyo-night" {
		t.Fatalf("ByName(tokyo-night) = %s", got.Name)
	}
	if got := ByName("solarized"); got.Name != FlexokiDark.Name {
		t.Fatalf("unknown theme resolved to %s", got.Name)
	}
}

func TestNamesAndValid(t *testing.T) {
	names := Names()
	if len(names) != len(All) {
		t.Fatalf("Names() = %v", names)
	}
	for _, n := range names {
		if !Valid(n) {
			t.Errorf("Valid(%q) = false", n)
		}
	}
	if Valid("") || Valid("Flexoki-Dark") {
		t.Error("Valid accepted an unknown name")
	}
}

func TestSetActive(t *testing.T) {
	defer SetActive(FlexokiDark.Name)

	SetActive("terminal")
	if Active.Name != "terminal" {
		t.Fatalf("Active = %s", Active.Name)
	}
}

func TestStatusColor(t *testing.T) {
	th := CatppuccinMocha
	tests := []struct {
		status model.CampaignStatus
		want   string
	}{
		{model.StatusFunded, string(th.Funded)},
		{model.StatusActive, string(th.Raising)},
		{model.StatusUnknown, string(th.TextMuted)},
	}
	for _, tt := range tests {
		if got := string(th.StatusColor(tt.status)); got != tt.want {
			t.Errorf("StatusColor(%s) = %s, want %s", tt.status, got, tt.want)
		}
	}
}
