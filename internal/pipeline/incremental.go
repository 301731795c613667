package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/model"
)

// Cache is the snapshot store used by LoadWithCache. *store.Cache satisfies it.
type Cache interface {
	SaveCampaign(model.Campaign) (bool, error)
	LoadCampaign(address string) (model.Campaign, bool, error)
	LoadCampaigns() ([]model.Campaign, error)
}

// ErrNoSnapshot is returned by LoadCached when nothing has been cached yet.
var ErrNoSnapshot = errors.New("no cached campaigns")

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	Saved       int
	HistoryRows int
	CacheErrors int
}

// LoadWithCache runs Load, saves every fetched campaign, and fills funding
// values whose live read failed from the last cached snapshot. When the
// factory cannot be listed at all, it falls back to the cached snapshots
// and reports Offline along with the listing error.
func LoadWithCache(ctx context.Context, r chain.Reader, factory common.Address, cache Cache, workers int, progressFn ProgressFunc) (*CachedLoadResult, error) {
	return LoadWithCacheObserved(ctx, r, factory, cache, workers, Observer{Progress: progressFn})
}

// LoadWithCacheObserved is LoadWithCache reporting to obs. Fetched sees
// live reads, before cached values are filled in.
func LoadWithCacheObserved(ctx context.Context, r chain.Reader, factory common.Address, cache Cache, workers int, obs Observer) (*CachedLoadResult, error) {
	live, err := LoadObserved(ctx, r, factory, workers, obs)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		cached, cerr := LoadCached(cache)
		if cerr != nil {
			return nil, err
		}
		cached.Offline = true
		return &CachedLoadResult{LoadResult: *cached}, err
	}

	result := &CachedLoadResult{LoadResult: *live}
	for i, c := range result.Campaigns {
		wrote, err := cache.SaveCampaign(c)
		if err != nil {
			result.CacheErrors++
			continue
		}
		result.Saved++
		if wrote {
			result.HistoryRows++
		}

		if c.Funding.Complete() {
			continue
		}
		prev, ok, err := cache.LoadCampaign(c.Address)
		if err != nil {
			result.CacheErrors++
			continue
		}
		if ok {
			result.Campaigns[i] = MergeStale(c, prev)
		}
	}

	result.count()
	return result, nil
}

// MergeStale fills absent funding values of live from the cached prev and
// marks the result Stale when it did.
func MergeStale(live, prev model.Campaign) model.Campaign {
	if live.Funding.Goal == nil && prev.Funding.Goal != nil {
		live.Funding.Goal = prev.Funding.Goal
		live.GoalStatus = model.ReadLoaded
		live.Stale = true
	}
	if live.Funding.Balance == nil && prev.Funding.Balance != nil {
		live.Funding.Balance = prev.Funding.Balance
		live.BalanceStatus = model.ReadLoaded
		live.Stale = true
	}
	return live
}

// LoadCached returns the last cached snapshot of every campaign, all
// marked Stale.
func LoadCached(cache Cache) (*LoadResult, error) {
	campaigns, err := cache.LoadCampaigns()
	if err != nil {
		return nil, fmt.Errorf("loading cached campaigns: %w", err)
	}
	if len(campaigns) == 0 {
		return nil, ErrNoSnapshot
	}
	for i := range campaigns {
		campaigns[i].Stale = true
	}

	result := &LoadResult{Campaigns: campaigns, Total: len(campaigns)}
	result.count()
	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "crowdscope")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "crowdscope")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "campaigns.db")
}
