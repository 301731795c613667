package cli

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/crowdscope/internal/model"
)

func state(goal, balance int64) model.FundingState {
	return model.FundingState{Goal: big.NewInt(goal), Balance: big.NewInt(balance)}
}

func TestRenderFundingBar(t *testing.T) {
	bar := RenderFundingBar(state(100, 50), 10)
	if !strings.Contains(bar, "█████░░░░░") || !strings.HasSuffix(bar, "50%") {
		t.Fatalf("half bar = %q", bar)
	}

	over := RenderFundingBar(state(100, 500), 10)
	if !strings.Contains(over, strings.Repeat("█", 10)) || !strings.HasSuffix(over, "100%") {
		t.Fatalf("over-funded bar = %q", over)
	}

	none := RenderFundingBar(model.FundingState{Goal: big.NewInt(100)}, 4)
	if !strings.Contains(none, "no data") || strings.Contains(none, "█") {
		t.Fatalf("absent bar = %q", none)
	}
}

func TestRenderStatus(t *testing.T) {
	tests := []struct {
		s    model.FundingState
		want string
	}{
		{state(100, 100), "Funded"},
		{state(100, 99), "Active"},
		{state(0, 0), "Active"},
		{model.FundingState{}, "Unknown"},
	}
	for _, tt := range tests {
		if got := RenderStatus(tt.s); !strings.Contains(got, tt.want) {
			t.Errorf("RenderStatus(%v/%v) = %q, want %s", tt.s.Goal, tt.s.Balance, got, tt.want)
		}
	}
}

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Name", "Raised"},
		Rows: [][]string{
			{"Reef", "$1.5K"},
			{"---"},
			{mutedStyle.Render("Untitled"), "$0"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	w := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != w {
			t.Errorf("line %d width = %d, want %d: %q", i, lipgloss.Width(l), w, l)
		}
	}
	if !strings.Contains(lines[3], "$1.5K") {
		t.Errorf("row = %q", lines[3])
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Fatalf("empty table = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 50, 100}); got != "▁▄█" {
		t.Fatalf("sparkline = %q", got)
	}
	if got := RenderSparkline([]float64{0, 0}); got != "▁▁" {
		t.Fatalf("flat sparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Fatal("nil sparkline not empty")
	}
}

func TestBigSeries(t *testing.T) {
	huge, _ := new(big.Int).SetString("1000000000000000000000", 10)
	got := BigSeries([]*big.Int{big.NewInt(5), nil, huge})
	if got[0] != 5 || got[1] != 0 || got[2] != 1e21 {
		t.Fatalf("BigSeries = %v", got)
	}
}

func TestFormatters(t *testing.T) {
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %q", got)
	}
	if got := FormatProgress(state(200, 150)); got != "75%" {
		t.Errorf("FormatProgress = %q", got)
	}
	if got := FormatProgress(model.FundingState{Balance: big.NewInt(1)}); got != "n/a" {
		t.Errorf("FormatProgress(absent) = %q", got)
	}
	if got := FormatAge(time.Time{}); got != "never" {
		t.Errorf("FormatAge(zero) = %q", got)
	}
	if got := FormatEther(big.NewInt(1_500_000_000_000_000_000)); got != "1.5000 ETH" {
		t.Errorf("FormatEther = %q", got)
	}
	if got := ShortAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"); got != "0x5FbD…0aa3" {
		t.Errorf("ShortAddress = %q", got)
	}
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		cur, prev int64
		want      string
	}{
		{1500, 0, "+$1.5K"},
		{100, 2100, "-$2.0K"},
		{7, 7, "±$0"},
	}
	for _, tt := range tests {
		if got := FormatDelta(big.NewInt(tt.cur), big.NewInt(tt.prev)); got != tt.want {
			t.Errorf("FormatDelta(%d, %d) = %q, want %q", tt.cur, tt.prev, got, tt.want)
		}
	}
	if got := FormatDelta(nil, big.NewInt(1)); got != "" {
		t.Errorf("FormatDelta(nil) = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{900 * time.Millisecond, "0s"},
		{45 * time.Second, "45s"},
		{2 * time.Minute, "2m"},
		{125 * time.Second, "2m 5s"},
		{3725 * time.Second, "1h 2m"},
		{50 * time.Hour, "2d 2h"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
