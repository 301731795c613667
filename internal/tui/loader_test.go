package tui

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/chain/chaintest"
	"github.com/theirongolddev/crowdscope/internal/model"
)

func TestLoaderStream_QuitWithFullChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := loader{ctx: ctx, noCache: true}

	sub := make(chan tea.Msg, 1)
	sub <- ProgressMsg{Current: 1, Total: 4}
	cancel()

	done := make(chan struct{})
	go func() {
		l.stream(sub)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream blocked after the app context was canceled")
	}
}

func TestLoaderStream_DeliversResult(t *testing.T) {
	l := loader{ctx: context.Background(), noCache: true}
	sub := make(chan tea.Msg, 1)

	go l.stream(sub)

	raw := recvLoadMsg(context.Background(), sub)
	msg, ok := raw.(DataLoadedMsg)
	if !ok {
		t.Fatalf("got %T, want DataLoadedMsg", raw)
	}
	if !errors.Is(msg.Err, chain.ErrNoEndpoint) {
		t.Fatalf("Err = %v, want ErrNoEndpoint without a reader", msg.Err)
	}
}

func TestRecvLoadMsg_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if msg := recvLoadMsg(ctx, make(chan tea.Msg)); msg != nil {
		t.Fatalf("msg = %v, want nil after cancel", msg)
	}
}

func listedApp(t *testing.T, n int) App {
	t.Helper()
	listed := make([]model.Campaign, n)
	for i := range listed {
		listed[i] = chain.Pending(chain.CampaignRecord{CampaignAddress: chaintest.Addr(int64(10 + i)), Name: "listed"})
	}
	a := App{width: 150, ctx: context.Background(), loadSub: make(chan tea.Msg, 1)}
	m, cmd := a.Update(CampaignsListedMsg{Campaigns: listed})
	if cmd == nil {
		t.Fatal("listing should keep waiting for load messages")
	}
	return m.(App)
}

func fetchedApp(t *testing.T, a App, idx int) App {
	t.Helper()
	c := a.pending[idx]
	c.Funding = model.FundingState{Goal: big.NewInt(100), Balance: big.NewInt(int64(idx))}
	c.GoalStatus, c.BalanceStatus = model.ReadLoaded, model.ReadLoaded
	m, _ := a.Update(CampaignFetchedMsg{Index: idx, Campaign: c})
	return m.(App)
}

func previewAddrs(a App) []string {
	var addrs []string
	for _, c := range a.loadingPreview() {
		addrs = append(addrs, c.Address)
	}
	return addrs
}

func TestLoadingPreviewFollowsFrontier(t *testing.T) {
	a := listedApp(t, 6)
	if a.progressMax != 6 {
		t.Fatalf("progressMax = %d, want 6", a.progressMax)
	}
	addr := func(i int) string { return chaintest.Addr(int64(10 + i)).Hex() }

	// 150 columns fit four cards.
	if diff := cmp.Diff([]string{addr(0), addr(1), addr(2), addr(3)}, previewAddrs(a)); diff != "" {
		t.Fatalf("initial preview (-want +got):\n%s", diff)
	}

	a = fetchedApp(t, a, 0)
	a = fetchedApp(t, a, 1)
	if diff := cmp.Diff([]string{addr(2), addr(3), addr(4), addr(5)}, previewAddrs(a)); diff != "" {
		t.Fatalf("preview after two fetched (-want +got):\n%s", diff)
	}
	if !a.pending[1].Settled() || a.pending[2].Settled() {
		t.Fatal("fetched campaign not recorded in place")
	}

	for i := 2; i < 5; i++ {
		a = fetchedApp(t, a, i)
	}
	preview := a.loadingPreview()
	if len(preview) != 4 || preview[3].Settled() || !preview[0].Settled() {
		t.Fatalf("preview should end at the last in-flight campaign: %+v", preview)
	}

	a = fetchedApp(t, a, 5)
	if got := a.loadingPreview(); got != nil {
		t.Fatalf("preview = %+v, want nil once every campaign settled", got)
	}
}

func TestCampaignFetchedOutOfRangeIgnored(t *testing.T) {
	a := listedApp(t, 2)
	m, _ := a.Update(CampaignFetchedMsg{Index: 5, Campaign: model.Campaign{Address: "0xbad"}})
	got := m.(App)
	if len(got.pending) != 2 || got.pending[0].Settled() || got.pending[1].Settled() {
		t.Fatalf("pending = %+v, want listing unchanged", got.pending)
	}
}

func TestDataLoadedClearsPending(t *testing.T) {
	a := listedApp(t, 2)
	a.needSetup = false
	m, _ := a.Update(DataLoadedMsg{})
	if got := m.(App); got.pending != nil {
		t.Fatalf("pending = %+v, want nil after load", got.pending)
	}
}
