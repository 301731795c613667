package pipeline

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/theirongolddev/crowdscope/internal/chain"
	"github.com/theirongolddev/crowdscope/internal/chain/chaintest"
	"github.com/theirongolddev/crowdscope/internal/model"
)

func benchReader(b *testing.B, n int) *chaintest.Reader {
	b.Helper()
	r := chaintest.New()
	recs := make([]chain.CampaignRecord, n)
	for i := range recs {
		addr := chaintest.Addr(int64(1000 + i))
		recs[i] = chain.CampaignRecord{CampaignAddress: addr, Owner: chaintest.Addr(7), Name: fmt.Sprintf("c%d", i)}
		r.SetCampaign(addr, recs[i].Name, "", big.NewInt(int64(10_000+i)), big.NewInt(int64(i*37)))
	}
	r.SetFactory(chaintest.Addr(1), recs...)
	return r
}

func BenchmarkLoad(b *testing.B) {
	r := benchReader(b, 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := Load(context.Background(), r, chaintest.Addr(1), 0, nil)
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

func BenchmarkAggregateAndSort(b *testing.B) {
	r := benchReader(b, 2000)
	result, err := Load(context.Background(), r, chaintest.Addr(1), 0, nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		campaigns := make([]model.Campaign, len(result.Campaigns))
		copy(campaigns, result.Campaigns)
		_ = Aggregate(campaigns)
		Sort(campaigns, SortProgress)
	}
}
