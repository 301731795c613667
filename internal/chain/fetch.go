package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/theirongolddev/crowdscope/internal/model"
)

// ListCampaigns returns every campaign registered with the factory.
func ListCampaigns(ctx context.Context, r Reader, factory common.Address) ([]CampaignRecord, error) {
	res := r.Read(ctx, factory, MethodAllCampaigns)
	if res.Status != model.ReadLoaded {
		err := res.Err
		if err == nil {
			err = ErrNoContract
		}
		return nil, fmt.Errorf("listing campaigns from %s: %w", factory.Hex(), err)
	}

	records, ok := res.Value.([]CampaignRecord)
	if !ok {
		return nil, fmt.Errorf("%w: getAllCampaigns returned %T", ErrDecode, res.Value)
	}
	return records, nil
}

// FetchCampaign reads a campaign's name, description, goal and balance
// concurrently. A failed read leaves that field absent and marks it
// errored; it never fails the campaign as a whole.
//
// If ctx is canceled before the reads settle, their results are
// discarded and the campaign is returned with both funding reads still
// loading.
func FetchCampaign(ctx context.Context, r Reader, rec CampaignRecord) model.Campaign {
	c := Pending(rec)

	var (
		wg                        sync.WaitGroup
		name, desc, goal, balance Result
	)
	read := func(m Method, dst *Result) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			*dst = r.Read(ctx, rec.CampaignAddress, m)
		}()
	}
	read(MethodName, &name)
	read(MethodDescription, &desc)
	read(MethodGoal, &goal)
	read(MethodBalance, &balance)
	wg.Wait()

	if ctx.Err() != nil {
		return c
	}

	if s, ok := stringValue(name); ok && s != "" {
		c.Name = s
	}
	if s, ok := stringValue(desc); ok {
		c.Description = s
	}
	c.Funding.Goal, c.GoalStatus = bigValue(goal)
	c.Funding.Balance, c.BalanceStatus = bigValue(balance)
	c.FetchedAt = time.Now()
	return c
}

// Pending returns the listed campaign with both funding reads in flight.
func Pending(rec CampaignRecord) model.Campaign {
	return model.Campaign{
		Address:       rec.CampaignAddress.Hex(),
		Owner:         rec.Owner.Hex(),
		Name:          rec.Name,
		GoalStatus:    model.ReadLoading,
		BalanceStatus: model.ReadLoading,
	}
}

// FetchCampaignAt fetches a single campaign by address, without a factory
// record. The name comes from the campaign contract itself.
func FetchCampaignAt(ctx context.Context, r Reader, address common.Address) model.Campaign {
	return FetchCampaign(ctx, r, CampaignRecord{CampaignAddress: address})
}

func stringValue(res Result) (string, bool) {
	if res.Status != model.ReadLoaded {
		return "", false
	}
	s, ok := res.Value.(string)
	return s, ok
}

// bigValue copies a uint256 result. Anything else collapses to absent.
func bigValue(res Result) (*big.Int, model.ReadStatus) {
	if res.Status != model.ReadLoaded {
		return nil, model.ReadErrored
	}
	v, ok := res.Value.(*big.Int)
	if !ok || v == nil {
		return nil, model.ReadErrored
	}
	return new(big.Int).Set(v), model.ReadLoaded
}
