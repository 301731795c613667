// Package tui provides the interactive Bubble Tea dashboard for crowdscope.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/cli"
	"github.com/theirongolddev/crowdscope/internal/config"
	"github.com/theirongolddev/crowdscope/internal/model"
	"github.com/theirongolddev/crowdscope/internal/pipeline"
	"github.com/theirongolddev/crowdscope/internal/store"
	"github.com/theirongolddev/crowdscope/internal/tui/components"
	"github.com/theirongolddev/crowdscope/internal/tui/theme"
)

// Tab indexes, matching components.Tabs.
const (
	tabCampaigns = iota
	tabOverview
	tabOwners
	tabSettings
)

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	Campaigns []model.Campaign
	Offline   bool
	Err       error
	LoadTime  time.Duration
}

// ProgressMsg reports campaign fetch progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// CampaignsListedMsg carries the factory listing, every campaign still
// loading, during the initial load.
type CampaignsListedMsg struct {
	Campaigns []model.Campaign
}

// CampaignFetchedMsg carries one campaign whose reads settled during the
// initial load. Index is its position in the listing.
type CampaignFetchedMsg struct {
	Index    int
	Campaign model.Campaign
}

// RefreshDataMsg is sent when a background data refresh completes.
type RefreshDataMsg struct {
	Campaigns []model.Campaign
	Offline   bool
	Err       error
	LoadTime  time.Duration
}

// HistoryMsg carries the cached balance history of one campaign.
type HistoryMsg struct {
	Address string
	Points  []store.BalancePoint
	Err     error
}

// Options configures the dashboard.
type Options struct {
	Reader  chain.Reader
	Factory common.Address
	RPCURL  string
	Workers int
	Owner   string
	Sort    pipeline.SortKey
	NoCache bool
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	campaigns []model.Campaign
	loaded    bool
	loadTime  time.Duration
	loadErr   error
	offline   bool

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// Pre-computed for current filter
	filtered []model.Campaign
	stats    model.MarketplaceStats
	owners   []model.OwnerStats
	stale    int

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Filter state
	owner   string
	sortKey pipeline.SortKey

	// Per-tab state
	campState campaignsState
	settings  settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	pending     []model.Campaign // listing while the initial load runs
	loadSub     chan tea.Msg

	// Chain access
	ctx     context.Context
	cancel  context.CancelFunc
	reader  chain.Reader
	factory common.Address
	rpcURL  string
	workers int
	noCache bool
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	maxSkeletonCards = 6
	loadSubBuffer    = 16
)

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	needSetup := !config.Exists()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	cfg := loadConfigOrDefault()

	sortKey := opts.Sort
	if sortKey == "" {
		sortKey = pipeline.SortProgress
	}

	ctx, cancel := context.WithCancel(context.Background())

	return App{
		needSetup:       needSetup,
		owner:           opts.Owner,
		sortKey:         sortKey,
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: cfg.TUI.RefreshInterval(),
		spinner:         sp,
		loadSub:         make(chan tea.Msg, loadSubBuffer),
		ctx:             ctx,
		cancel:          cancel,
		reader:          opts.Reader,
		factory:         opts.Factory,
		rpcURL:          opts.RPCURL,
		workers:         opts.Workers,
		noCache:         opts.NoCache,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.loader(), a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a *App) recompute() {
	filtered := a.campaigns
	if a.owner != "" {
		filtered = pipeline.FilterByOwner(filtered, a.owner)
	}
	filtered = append([]model.Campaign(nil), filtered...)
	pipeline.Sort(filtered, a.sortKey)

	a.filtered = filtered
	a.stats = pipeline.Aggregate(filtered)
	a.owners = pipeline.AggregateOwners(filtered)

	a.stale = 0
	for _, c := range filtered {
		if c.Stale {
			a.stale++
		}
	}

	visible := a.visibleCampaigns()
	if a.campState.cursor >= len(visible) {
		a.campState.cursor = len(visible) - 1
	}
	if a.campState.cursor < 0 {
		a.campState.cursor = 0
	}
}

func (a App) quit() (tea.Model, tea.Cmd) {
	if a.cancel != nil {
		a.cancel()
	}
	return a, tea.Quit
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.pending = nil
		a.campaigns = msg.Campaigns
		a.offline = msg.Offline
		a.loadErr = msg.Err
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		a.recompute()

		if a.needSetup {
			vals := defaultSetupValues(loadConfigOrDefault())
			a.setupVals = &vals
			a.setupForm = newSetupForm(len(a.campaigns), a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.ctx, a.loadSub)

	case CampaignsListedMsg:
		a.pending = msg.Campaigns
		a.progressMax = len(msg.Campaigns)
		return a, waitForLoadMsg(a.ctx, a.loadSub)

	case CampaignFetchedMsg:
		if msg.Index >= 0 && msg.Index < len(a.pending) {
			pending := append([]model.Campaign(nil), a.pending...)
			pending[msg.Index] = msg.Campaign
			a.pending = pending
		}
		return a, waitForLoadMsg(a.ctx, a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.loader()))
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		a.loadErr = msg.Err
		if msg.Campaigns != nil || msg.Err == nil {
			a.campaigns = msg.Campaigns
			a.offline = msg.Offline
			a.loadTime = msg.LoadTime
			a.recompute()
		}
		return a, nil

	case HistoryMsg:
		if msg.Address == a.campState.historyFor {
			a.campState.history = msg.Points
			a.campState.historyErr = msg.Err
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabCampaigns && !a.campState.searching {
			a.campState.moveCursor(-a.gridColumns(), len(a.visibleCampaigns()))
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabCampaigns && !a.campState.searching {
			a.campState.moveCursor(a.gridColumns(), len(a.visibleCampaigns()))
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a.quit()
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == tabCampaigns && a.campState.searching {
		return a.updateCampaignSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabCampaigns:
		if m, cmd, handled := a.updateCampaignsKey(key); handled {
			return m, cmd
		}
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a.quit()
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.loader())
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		cfg := loadConfigOrDefault()
		cfg.TUI.AutoRefresh = a.autoRefresh
		_ = config.Save(cfg)
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		changed := a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		if changed && !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.loader())
		}
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  crowdscope needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ crowdscope"))
	b.WriteString(subtitleStyle.Render(" · Campaign Funding"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := 40
		if barW > w-30 {
			barW = w - 30
		}
		if barW < 20 {
			barW = 20
		}
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Reading campaign contracts\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Listing campaigns..."))
	}

	card := cardStyle.Render(b.String())

	// Campaigns at the loading frontier: finished ones as cards, in-flight
	// ones as skeletons.
	if preview := a.loadingPreview(); len(preview) > 0 {
		widths := components.LayoutRow(a.contentWidth(), len(preview))
		cards := make([]string, len(preview))
		for i, c := range preview {
			cards[i] = components.CampaignCard(c, widths[i], false)
		}
		card = lipgloss.JoinVertical(lipgloss.Center, card, "", components.CardRow(cards))
	}

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// loadingPreview returns up to one row of listed campaigns starting at the
// first one still loading, or nil when none is.
func (a App) loadingPreview() []model.Campaign {
	first := -1
	for i, c := range a.pending {
		if !c.Settled() {
			first = i
			break
		}
	}
	if first < 0 {
		return nil
	}

	n := min(maxSkeletonCards, a.gridColumns(), len(a.pending))
	if first+n > len(a.pending) {
		first = len(a.pending) - n
	}
	return a.pending[first : first+n]
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Address).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"c o w x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"h j k l", "Move through the campaign grid"},
			{"g G", "First / Last campaign"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"/", "Search campaigns by name"},
			{"s", "Cycle sort order"},
			{"Enter", "Campaign detail / Edit setting"},
			{"Esc", "Back / Clear search"},
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + filter pill
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	filterStr := pillStyle.Render(" factory ") + accentStyle.Render(cli.ShortAddress(a.factory.Hex())) +
		pillStyle.Render(" │ sort ") + accentStyle.Render(string(a.sortKey))
	if a.owner != "" {
		filterStr += pillStyle.Render(" │ owner ") + accentStyle.Render(cli.ShortAddress(a.owner))
	}
	if q := a.campState.searchQuery; q != "" {
		filterStr += pillStyle.Render(" │ search ") + accentStyle.Render(q)
	}
	filterStr += pillStyle.Render(" ")

	filterRowStyle := lipgloss.NewStyle().Background(t.Surface).Width(w)
	header := components.RenderTabBar(a.activeTab, w) + "\n" + filterRowStyle.Render(filterStr)

	// 2. Status bar
	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		DataAge:     fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Offline:     a.offline,
		Stale:       a.stale,
	})

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabCampaigns:
		content = a.renderCampaignsTab(cw, contentH)
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabOwners:
		content = a.renderOwnersTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines, fill backgrounds, center.
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderLoadError renders the banner shown when the last load failed.
func (a App) renderLoadError(cw int) string {
	if a.loadErr == nil {
		return ""
	}
	t := theme.Active
	warn := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := warn.Render(components.Truncate(a.loadErr.Error(), components.CardInnerWidth(cw)))
	if a.offline {
		body += "\n" + muted.Render("Showing the last cached snapshot.")
	}
	return components.ContentCard("Chain unavailable", body, cw) + "\n"
}

// ─── Loading ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loader captures what one pipeline run needs, so commands never read
// App state from another goroutine.
type loader struct {
	ctx     context.Context
	reader  chain.Reader
	factory common.Address
	workers int
	noCache bool
}

func (a App) loader() loader {
	return loader{
		ctx:     a.ctx,
		reader:  a.reader,
		factory: a.factory,
		workers: a.workers,
		noCache: a.noCache,
	}
}

// run loads campaigns through the cache when one can be opened, falling
// back to a live-only load.
func (l loader) run(obs pipeline.Observer) (*pipeline.LoadResult, error) {
	if l.reader == nil {
		return l.cached(chain.ErrNoEndpoint)
	}
	if !l.noCache {
		if cache, err := store.Open(pipeline.CachePath()); err == nil {
			defer func() { _ = cache.Close() }()
			cr, err := pipeline.LoadWithCacheObserved(l.ctx, l.reader, l.factory, cache, l.workers, obs)
			if cr == nil {
				return nil, err
			}
			return &cr.LoadResult, err
		}
	}
	return pipeline.LoadObserved(l.ctx, l.reader, l.factory, l.workers, obs)
}

// cached serves the last snapshot when the chain cannot be used at all.
func (l loader) cached(cause error) (*pipeline.LoadResult, error) {
	if l.noCache {
		return nil, cause
	}
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return nil, cause
	}
	defer func() { _ = cache.Close() }()

	res, err := pipeline.LoadCached(cache)
	if err != nil {
		return nil, cause
	}
	res.Offline = true
	return res, cause
}

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams the listing, settled campaigns, ProgressMsg updates and a
// final DataLoadedMsg through sub.
func loadDataCmd(l loader, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go l.stream(sub)
		return recvLoadMsg(l.ctx, sub)
	}
}

// stream runs the load and sends its result to sub. It gives up on the
// final send once ctx is done, so a quit never strands the goroutine.
func (l loader) stream(sub chan<- tea.Msg) {
	start := time.Now()

	// Worker sends never block; DataLoadedMsg carries every campaign anyway.
	trySend := func(msg tea.Msg) {
		select {
		case sub <- msg:
		default:
		}
	}
	obs := pipeline.Observer{
		Listed: func(records []chain.CampaignRecord) {
			listed := make([]model.Campaign, len(records))
			for i, rec := range records {
				listed[i] = chain.Pending(rec)
			}
			select {
			case sub <- CampaignsListedMsg{Campaigns: listed}:
			case <-l.ctx.Done():
			}
		},
		Fetched: func(idx int, c model.Campaign) {
			trySend(CampaignFetchedMsg{Index: idx, Campaign: c})
		},
		Progress: func(current, total int) {
			trySend(ProgressMsg{Current: current, Total: total})
		},
	}

	res, err := l.run(obs)
	msg := DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
	if res != nil {
		msg.Campaigns = res.Campaigns
		msg.Offline = res.Offline
	}
	select {
	case sub <- msg:
	case <-l.ctx.Done():
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(ctx context.Context, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return recvLoadMsg(ctx, sub)
	}
}

func recvLoadMsg(ctx context.Context, sub <-chan tea.Msg) tea.Msg {
	select {
	case msg := <-sub:
		return msg
	case <-ctx.Done():
		return nil
	}
}

// refreshDataCmd refreshes campaign data in the background (no progress UI).
func refreshDataCmd(l loader) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		res, err := l.run(pipeline.Observer{})
		msg := RefreshDataMsg{Err: err, LoadTime: time.Since(start)}
		if res != nil {
			msg.Campaigns = res.Campaigns
			msg.Offline = res.Offline
		}
		return msg
	}
}

// historyCmd reads a campaign's cached balance history.
func historyCmd(address string, noCache bool) tea.Cmd {
	return func() tea.Msg {
		if noCache {
			return HistoryMsg{Address: address}
		}
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			return HistoryMsg{Address: address, Err: err}
		}
		defer func() { _ = cache.Close() }()
		points, err := cache.BalanceHistory(address, 60)
		return HistoryMsg{Address: address, Points: points, Err: err}
	}
}

// ─── Layout helpers ─────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}
