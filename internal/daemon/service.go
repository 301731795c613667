// Package daemon provides the long-running background campaign monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/funding"
	"github.com/theirongolddev/crowdscope/internal/model"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
)

// Event types.
const (
	EventSnapshot       = "snapshot"
	EventCampaignAdded  = "campaign_added"
	EventBalanceChanged = "balance_changed"
	EventGoalReached    = "goal_reached"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Reader       chain.Reader
	Factory      common.Address
	Cache        pipeline.Cache // optional
	RPCURL       string
	Workers      int
	OwnerFilter  string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       *zap.Logger
}

// CampaignView is one campaign as served by the API, with derived progress
// and display labels. Goal and Balance are base-10 strings, empty when absent.
type CampaignView struct {
	Address      string                `json:"address"`
	Owner        string                `json:"owner"`
	Name         string                `json:"name"`
	Description  string                `json:"description,omitempty"`
	Goal         string                `json:"goal,omitempty"`
	Balance      string                `json:"balance,omitempty"`
	GoalLabel    string                `json:"goal_label"`
	BalanceLabel string                `json:"balance_label"`
	Progress     model.FundingProgress `json:"progress"`
	Status       model.CampaignStatus  `json:"status"`
	Stale        bool                  `json:"stale,omitempty"`
	FetchedAt    time.Time             `json:"fetched_at"`
}

// Snapshot is the compact marketplace state for status and event payloads.
type Snapshot struct {
	At               time.Time             `json:"at"`
	Campaigns        int                   `json:"campaigns"`
	Funded           int                   `json:"funded"`
	Active           int                   `json:"active"`
	Unknown          int                   `json:"unknown"`
	TotalRaised      string                `json:"total_raised"`
	TotalGoal        string                `json:"total_goal"`
	TotalRaisedLabel string                `json:"total_raised_label"`
	TotalGoalLabel   string                `json:"total_goal_label"`
	Progress         model.FundingProgress `json:"progress"`
}

// Event is emitted when the marketplace or one campaign changes.
type Event struct {
	ID              int64         `json:"id"`
	Type            string        `json:"type"`
	Timestamp       time.Time     `json:"timestamp"`
	Snapshot        Snapshot      `json:"snapshot"`
	Campaign        *CampaignView `json:"campaign,omitempty"`
	PreviousBalance string        `json:"previous_balance,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	RPCURL          string    `json:"rpc_url,omitempty"`
	Factory         string    `json:"factory"`
	OwnerFilter     string    `json:"owner_filter,omitempty"`
	Summary         Snapshot  `json:"summary"`
	Offline         bool      `json:"offline,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *zap.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	offline     bool
	hasSnapshot bool
	snapshot    Snapshot
	campaigns   []CampaignView
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		log:       logger.Named("daemon"),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/campaigns", s.handleCampaigns)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("listening", zap.String("addr", s.cfg.Addr), zap.Duration("interval", s.cfg.Interval))

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.log.Info("shutting down")
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) load(ctx context.Context) (*pipeline.LoadResult, error) {
	if s.cfg.Cache != nil {
		cr, err := pipeline.LoadWithCache(ctx, s.cfg.Reader, s.cfg.Factory, s.cfg.Cache, s.cfg.Workers, nil)
		if cr == nil {
			return nil, err
		}
		if cr.CacheErrors > 0 {
			s.log.Warn("cache write failures", zap.Int("count", cr.CacheErrors))
		}
		return &cr.LoadResult, err
	}
	return pipeline.Load(ctx, s.cfg.Reader, s.cfg.Factory, s.cfg.Workers, nil)
}

func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	result, err := s.load(ctx)
	if ctx.Err() != nil {
		return
	}
	if result == nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", zap.Error(err))
		return
	}

	campaigns := pipeline.FilterByOwner(result.Campaigns, s.cfg.OwnerFilter)
	now := time.Now()
	snap := snapshotFromStats(pipeline.Aggregate(campaigns), now)
	views := make([]CampaignView, len(campaigns))
	for i, c := range campaigns {
		views[i] = viewOf(c)
	}

	var pending []Event

	s.mu.Lock()
	prev := s.campaigns
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.campaigns = views
	s.lastPollAt = now
	s.pollCount++
	s.offline = result.Offline
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}

	if !prevExists {
		pending = []Event{{Type: EventSnapshot}}
	} else {
		pending = diffCampaigns(prev, views)
	}
	for i := range pending {
		s.nextEventID++
		pending[i].ID = s.nextEventID
		pending[i].Timestamp = now
		pending[i].Snapshot = snap
	}
	s.mu.Unlock()

	for _, ev := range pending {
		s.publishEvent(ev)
	}

	s.log.Debug("poll complete",
		zap.Int("campaigns", snap.Campaigns),
		zap.Int("events", len(pending)),
		zap.Bool("offline", result.Offline),
		zap.Duration("took", time.Since(start)),
	)
	if err != nil {
		s.log.Warn("serving cached snapshot", zap.Error(err))
	}
}

// diffCampaigns returns the per-campaign events between two polls, in
// listing order. IDs, timestamps, and snapshots are filled by the caller.
func diffCampaigns(prev, curr []CampaignView) []Event {
	byAddr := make(map[string]CampaignView, len(prev))
	for _, v := range prev {
		byAddr[v.Address] = v
	}

	var events []Event
	for i := range curr {
		c := curr[i]
		old, ok := byAddr[c.Address]
		if !ok {
			events = append(events, Event{Type: EventCampaignAdded, Campaign: &c})
			continue
		}
		if c.Balance != "" && c.Balance != old.Balance {
			events = append(events, Event{Type: EventBalanceChanged, Campaign: &c, PreviousBalance: old.Balance})
		}
		if c.Progress.IsGoalReached && !old.Progress.IsGoalReached {
			events = append(events, Event{Type: EventGoalReached, Campaign: &c})
		}
	}
	return events
}

func viewOf(c model.Campaign) CampaignView {
	v := CampaignView{
		Address:      c.Address,
		Owner:        c.Owner,
		Name:         c.DisplayName(),
		Description:  c.Description,
		GoalLabel:    funding.FormatAmount(c.Funding.Goal),
		BalanceLabel: funding.FormatAmount(c.Funding.Balance),
		Progress:     funding.Compute(c.Funding),
		Status:       funding.Classify(c.Funding),
		Stale:        c.Stale,
		FetchedAt:    c.FetchedAt,
	}
	if c.Funding.Goal != nil {
		v.Goal = c.Funding.Goal.String()
	}
	if c.Funding.Balance != nil {
		v.Balance = c.Funding.Balance.String()
	}
	return v
}

func snapshotFromStats(stats model.MarketplaceStats, at time.Time) Snapshot {
	return Snapshot{
		At:               at,
		Campaigns:        stats.Campaigns,
		Funded:           stats.Funded,
		Active:           stats.Active,
		Unknown:          stats.Unknown,
		TotalRaised:      stats.TotalRaised.String(),
		TotalGoal:        stats.TotalGoal.String(),
		TotalRaisedLabel: funding.FormatAmount(stats.TotalRaised),
		TotalGoalLabel:   funding.FormatAmount(stats.TotalGoal),
		Progress:         stats.Progress,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()

	if ev.Campaign != nil {
		s.log.Info("campaign event",
			zap.String("type", ev.Type),
			zap.String("address", ev.Campaign.Address),
			zap.String("balance", ev.Campaign.BalanceLabel),
			zap.Int("percentage", ev.Campaign.Progress.Percentage),
		)
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		RPCURL:          s.cfg.RPCURL,
		Factory:         s.cfg.Factory.Hex(),
		OwnerFilter:     s.cfg.OwnerFilter,
		Summary:         s.snapshot,
		Offline:         s.offline,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

// handleCampaigns serves the latest campaign views, optionally filtered
// by ?status=funded|active|unknown.
func (s *Service) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	status, err := pipeline.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	views := make([]CampaignView, 0, len(s.campaigns))
	for _, v := range s.campaigns {
		if status == "" || v.Status == status {
			views = append(views, v)
		}
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
