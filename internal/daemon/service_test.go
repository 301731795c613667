package daemon

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/chain/chaintest"
	"github.com/theirongolddev/crowdscope/internal/model"
)

var (
	testFactory = chaintest.Addr(1)
	campaignA   = chaintest.Addr(10)
	campaignB   = chaintest.Addr(11)
)

func newTestService(t *testing.T, r *chaintest.Reader) *Service {
	t.Helper()
	return New(Config{
		Reader:       r,
		Factory:      testFactory,
		Interval:     time.Hour,
		Addr:         "127.0.0.1:0",
		EventsBuffer: 50,
		Logger:       zap.NewNop(),
	})
}

func eventTypes(evs []Event) []string {
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Type)
	}
	return out
}

func TestDiffCampaigns(t *testing.T) {
	prev := []CampaignView{
		{Address: "0xa", Balance: "10", Progress: model.FundingProgress{Percentage: 10}},
		{Address: "0xc", Balance: "5"},
	}
	curr := []CampaignView{
		{Address: "0xa", Balance: "100", Progress: model.FundingProgress{Percentage: 100, IsGoalReached: true}},
		{Address: "0xb", Balance: "1"},
		{Address: "0xc", Balance: ""},
	}

	events := diffCampaigns(prev, curr)
	want := []string{EventBalanceChanged, EventGoalReached, EventCampaignAdded}
	if diff := cmp.Diff(want, eventTypes(events)); diff != "" {
		t.Fatalf("event types (-want +got):\n%s", diff)
	}
	if events[0].PreviousBalance != "10" || events[0].Campaign.Balance != "100" {
		t.Errorf("balance_changed = %+v", events[0])
	}
	if events[2].Campaign.Address != "0xb" {
		t.Errorf("campaign_added for %s", events[2].Campaign.Address)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnce_GoalReachedOnce(t *testing.T) {
	r := chaintest.New()
	r.SetFactory(testFactory, chain.CampaignRecord{CampaignAddress: campaignA, Name: "Reef"})
	r.SetCampaign(campaignA, "Reef", "", big.NewInt(100), big.NewInt(50))
	s := newTestService(t, r)
	ctx := context.Background()

	s.pollOnce(ctx)
	r.Set(campaignA, chain.MethodBalance, big.NewInt(100))
	s.pollOnce(ctx)
	s.pollOnce(ctx)
	r.Set(campaignA, chain.MethodBalance, big.NewInt(150))
	s.pollOnce(ctx)

	r.SetFactory(testFactory,
		chain.CampaignRecord{CampaignAddress: campaignA, Name: "Reef"},
		chain.CampaignRecord{CampaignAddress: campaignB, Name: "Bees"},
	)
	r.SetCampaign(campaignB, "Bees", "", big.NewInt(10), big.NewInt(0))
	s.pollOnce(ctx)

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	polls := s.pollCount
	s.mu.RUnlock()

	want := []string{
		EventSnapshot,
		EventBalanceChanged, EventGoalReached,
		EventBalanceChanged,
		EventCampaignAdded,
	}
	if diff := cmp.Diff(want, eventTypes(events)); diff != "" {
		t.Fatalf("event types (-want +got):\n%s", diff)
	}
	for i, ev := range events {
		if ev.ID != int64(i+1) {
			t.Errorf("event %d ID = %d", i, ev.ID)
		}
	}
	if polls != 5 {
		t.Errorf("pollCount = %d, want 5", polls)
	}
	last := events[len(events)-1].Snapshot
	if last.Campaigns != 2 || last.Funded != 1 || last.Active != 1 {
		t.Errorf("snapshot = %+v", last)
	}
	if last.TotalRaisedLabel != "$150" {
		t.Errorf("TotalRaisedLabel = %q", last.TotalRaisedLabel)
	}
}

func TestPollOnce_ErrorRecorded(t *testing.T) {
	r := chaintest.New()
	r.Fail(testFactory, chain.MethodAllCampaigns, chain.ErrUnreachable)
	s := newTestService(t, r)

	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.PollCount != 1 || !strings.Contains(st.LastError, "unreachable") {
		t.Fatalf("status = %+v", st)
	}
	if st.EventCount != 0 {
		t.Fatalf("EventCount = %d, want 0 after failed poll", st.EventCount)
	}
}

func TestHandlers(t *testing.T) {
	r := chaintest.New()
	r.SetFactory(testFactory,
		chain.CampaignRecord{CampaignAddress: campaignA},
		chain.CampaignRecord{CampaignAddress: campaignB},
	)
	r.SetCampaign(campaignA, "Reef", "", big.NewInt(1000), big.NewInt(1500))
	r.SetCampaign(campaignB, "Bees", "", big.NewInt(2_000_000), nil)
	s := newTestService(t, r)
	s.pollOnce(context.Background())
	h := s.Handler()

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	if rec := get("/healthz"); rec.Body.String() != "ok\n" {
		t.Errorf("healthz = %q", rec.Body.String())
	}

	var views []CampaignView
	rec := get("/v1/campaigns")
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatalf("decode campaigns: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d campaigns", len(views))
	}
	a := views[0]
	if a.Progress.Percentage != 100 || !a.Progress.IsGoalReached || a.BalanceLabel != "$1.5K" || a.Status != model.StatusFunded {
		t.Errorf("campaign A = %+v", a)
	}
	b := views[1]
	if b.Balance != "" || b.BalanceLabel != "$0" || b.GoalLabel != "$2.0M" || b.Status != model.StatusUnknown {
		t.Errorf("campaign B = %+v", b)
	}

	views = nil
	rec = get("/v1/campaigns?status=unknown")
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].Address != campaignB.Hex() {
		t.Errorf("unknown filter = %+v", views)
	}

	if rec := get("/v1/campaigns?status=paused"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad status code = %d", rec.Code)
	}

	var st Status
	if err := json.NewDecoder(get("/v1/status").Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.PollCount != 1 || st.Summary.Campaigns != 2 || st.Factory != testFactory.Hex() {
		t.Errorf("status = %+v", st)
	}

	var events []Event
	if err := json.NewDecoder(get("/v1/events").Body).Decode(&events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != EventSnapshot {
		t.Errorf("events = %+v", events)
	}
}

type flushRecorder struct {
	*httptest.ResponseRecorder
	flushed chan struct{}
}

func (f *flushRecorder) Flush() {
	f.ResponseRecorder.Flush()
	f.flushed <- struct{}{}
}

func TestStream(t *testing.T) {
	s := newTestService(t, chaintest.New())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &flushRecorder{ResponseRecorder: httptest.NewRecorder(), flushed: make(chan struct{}, 4)}
	req := httptest.NewRequest(http.MethodGet, "/v1/stream", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.handleStream(rec, req)
	}()

	<-rec.flushed
	s.publishEvent(Event{ID: 7, Type: EventGoalReached})
	<-rec.flushed
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: snapshot\ndata: ") {
		t.Errorf("stream did not open with a snapshot: %q", body)
	}
	if !strings.Contains(body, "event: goal_reached\ndata: {\"id\":7") {
		t.Errorf("stream missing published event: %q", body)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}
	if s.snapshotStatus().SubscriberCount != 0 {
		t.Error("subscriber not removed after disconnect")
	}
}

func TestRun_StopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := chaintest.New()
	r.SetFactory(testFactory)
	s := newTestService(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for s.snapshotStatus().PollCount == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
