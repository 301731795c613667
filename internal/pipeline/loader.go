package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/model"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Campaigns []model.Campaign
	Total     int
	Complete  int // goal and balance both present
	Partial   int // at least one funding read failed
	Stale     int // missing values filled from the cache
	Offline   bool
}

// ProgressFunc is called during loading to report progress.
// current is the number of campaigns fetched so far, total is the total count.
type ProgressFunc func(current, total int)

// Observer receives load events as they happen. Nil fields are skipped.
// Fetched and Progress are called from worker goroutines.
type Observer struct {
	// Listed receives the factory listing before any campaign is fetched.
	Listed   func(records []chain.CampaignRecord)
	Fetched  func(idx int, c model.Campaign)
	Progress ProgressFunc
}

// Load lists the factory's campaigns and fetches each one's funding state.
// It uses a bounded worker pool of at most workers goroutines; a
// non-positive workers means GOMAXPROCS. A canceled ctx discards
// everything fetched so far.
func Load(ctx context.Context, r chain.Reader, factory common.Address, workers int, progressFn ProgressFunc) (*LoadResult, error) {
	return LoadObserved(ctx, r, factory, workers, Observer{Progress: progressFn})
}

// LoadObserved is Load reporting to obs. Fetched indexes refer to the
// order of the records passed to Listed.
func LoadObserved(ctx context.Context, r chain.Reader, factory common.Address, workers int, obs Observer) (*LoadResult, error) {
	records, err := chain.ListCampaigns(ctx, r, factory)
	if err != nil {
		return nil, err
	}
	if obs.Listed != nil {
		obs.Listed(records)
	}

	result := &LoadResult{Total: len(records)}
	if len(records) == 0 {
		return result, nil
	}

	campaigns, err := fetchAll(ctx, r, records, workers, obs)
	if err != nil {
		return nil, err
	}

	result.Campaigns = campaigns
	result.count()
	return result, nil
}

func fetchAll(ctx context.Context, r chain.Reader, records []chain.CampaignRecord, workers int, obs Observer) ([]model.Campaign, error) {
	numWorkers := runtime.GOMAXPROCS(0)
	if workers > 0 && workers < numWorkers {
		numWorkers = workers
	}
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(records) {
		numWorkers = len(records)
	}

	work := make(chan int, len(records))
	results := make([]model.Campaign, len(records))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range records {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					return
				}
				results[idx] = chain.FetchCampaign(ctx, r, records[idx])
				if ctx.Err() != nil {
					return
				}
				if obs.Fetched != nil {
					obs.Fetched(idx, results[idx])
				}
				n := processed.Add(1)
				if obs.Progress != nil {
					obs.Progress(int(n), len(records))
				}
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetching campaigns: %w", err)
	}
	return results, nil
}

func (lr *LoadResult) count() {
	lr.Complete, lr.Partial, lr.Stale = 0, 0, 0
	for _, c := range lr.Campaigns {
		if c.Funding.Complete() {
			lr.Complete++
		}
		if c.GoalStatus == model.ReadErrored || c.BalanceStatus == model.ReadErrored {
			lr.Partial++
		}
		if c.Stale {
			lr.Stale++
		}
	}
}
