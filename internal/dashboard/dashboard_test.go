package dashboard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto_dash/internal/domain"
	"crypto_dash/internal/filter"
)

type fakeMarket struct {
	mu    sync.Mutex
	state domain.MarketState
}

func (f *fakeMarket) State() domain.MarketState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeMarket) set(s domain.MarketState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

var twoCoins = []domain.CoinRecord{
	{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", MarketCapRank: 1, CurrentPrice: 50000, MarketCap: 1e12, PriceChangePercentage24h: 2.5},
	{ID: "ethereum", Symbol: "eth", Name: "Ethereum", MarketCapRank: 2, CurrentPrice: 3000, MarketCap: 4e11, PriceChangePercentage24h: -1.2},
}

func TestDashboard_EmptyView(t *testing.T) {
	d := New(&fakeMarket{state: domain.MarketState{Loading: true}})

	v := d.View()
	assert.True(t, v.Loading)
	assert.Empty(t, v.Filtered)
	assert.Nil(t, v.Summary.BiggestGainer)
	assert.Equal(t, filter.DefaultCriteria(), v.Criteria)
	assert.Equal(t, filter.PriceRange{Min: 0, Max: 100000}, v.Bounds)
}

func TestDashboard_ViewAutoExpandsAndSummarises(t *testing.T) {
	d := New(&fakeMarket{state: domain.MarketState{Coins: twoCoins}})

	v := d.View()
	assert.Equal(t, filter.PriceRange{Min: 3000, Max: 50000}, v.Criteria.Price)
	assert.Len(t, v.Filtered, 2)
	assert.InDelta(t, 1.4e12, v.Summary.TotalMarketCap, 1)
	require.NotNil(t, v.Summary.BiggestGainer)
	assert.Equal(t, "bitcoin", v.Summary.BiggestGainer.ID)
	assert.Len(t, v.Charts.MarketCap, 2)
}

func TestDashboard_SummaryUsesFullList(t *testing.T) {
	d := New(&fakeMarket{state: domain.MarketState{Coins: twoCoins}})
	search := "eth"
	d.UpdateFilters(filter.Patch{Search: &search})

	v := d.View()
	require.Len(t, v.Filtered, 1)
	assert.Equal(t, "ethereum", v.Filtered[0].ID)
	assert.InDelta(t, 1.4e12, v.Summary.TotalMarketCap, 1)
	require.Len(t, v.Charts.PriceChange, 1)
	assert.Equal(t, "ETH", v.Charts.PriceChange[0].Name)
}

func TestDashboard_ErrorKeepsCoins(t *testing.T) {
	m := &fakeMarket{state: domain.MarketState{Coins: twoCoins}}
	d := New(m)
	d.View()

	m.set(domain.MarketState{Coins: twoCoins, Error: "fetch markets: HTTP error! status: 500"})
	v := d.View()
	assert.Equal(t, "fetch markets: HTTP error! status: 500", v.Error)
	assert.Len(t, v.Coins, 2)
}

func TestDashboard_ConcurrentAccess(t *testing.T) {
	d := New(&fakeMarket{state: domain.MarketState{Coins: twoCoins}})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.View()
		}()
		go func(i int) {
			defer wg.Done()
			v := float64(i * 100)
			d.UpdateFilters(filter.Patch{MaxPrice: &v})
		}(i)
	}
	wg.Wait()

	c := d.Criteria()
	assert.LessOrEqual(t, c.Price.Min, c.Price.Max)
}

func TestDashboard_MinPatchAfterLoadKeepsDataRange(t *testing.T) {
	coins := []domain.CoinRecord{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", MarketCapRank: 1, CurrentPrice: 112000},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", MarketCapRank: 2, CurrentPrice: 4000},
	}
	d := New(&fakeMarket{state: domain.MarketState{Coins: coins}})

	minPrice := 1.0
	c := d.UpdateFilters(filter.Patch{MinPrice: &minPrice})
	assert.Equal(t, filter.PriceRange{Min: 1, Max: 112000}, c.Price)

	v := d.View()
	require.Len(t, v.Filtered, 2)
	assert.Equal(t, "bitcoin", v.Filtered[0].ID)
}

func TestDashboard_MinPatchBeforeLoad(t *testing.T) {
	m := &fakeMarket{}
	d := New(m)

	minPrice := 10.0
	d.UpdateFilters(filter.Patch{MinPrice: &minPrice})

	m.set(domain.MarketState{Coins: []domain.CoinRecord{
		{ID: "bitcoin", CurrentPrice: 112000, MarketCapRank: 1},
		{ID: "dogecoin", CurrentPrice: 0.2, MarketCapRank: 9},
	}})
	v := d.View()
	assert.Equal(t, filter.PriceRange{Min: 10, Max: 112000}, v.Criteria.Price)
	require.Len(t, v.Filtered, 1)
	assert.Equal(t, "bitcoin", v.Filtered[0].ID)
}

func TestDashboard_MaxPatchBeforeLoadWins(t *testing.T) {
	m := &fakeMarket{}
	d := New(m)

	maxPrice := 5000.0
	d.UpdateFilters(filter.Patch{MaxPrice: &maxPrice})

	m.set(domain.MarketState{Coins: twoCoins})
	v := d.View()
	assert.Equal(t, filter.PriceRange{Min: 0, Max: 5000}, v.Criteria.Price)
	require.Len(t, v.Filtered, 1)
	assert.Equal(t, "ethereum", v.Filtered[0].ID)
}
