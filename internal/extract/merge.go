package extract

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/ppiankov/tierscope/internal/model"
)

// Merge combines per-chunk results into one extraction.
//
// cheapest is the lowest-priced cheapest candidate and most_expensive the
// highest-priced most_expensive candidate; candidates without a numeric price
// rank last and ties keep the earliest. middle is the median of every tier
// with a numeric price.
func Merge(results []model.ChunkResult) (*model.Extraction, error) {
	var (
		cheapest, mostExpensive *model.PricingTier
		haveCheapest, haveMost  bool
		lowest, highest         float64
	)

	for _, r := range results {
		if r.HasCheapest {
			p := priceOr(r.Cheapest, math.Inf(1))
			if !haveCheapest || p < lowest {
				cheapest, lowest = r.Cheapest, p
			}
			haveCheapest = true
		}
		if r.HasMostExpensive {
			p := priceOr(r.MostExpensive, math.Inf(-1))
			if !haveMost || p > highest {
				mostExpensive, highest = r.MostExpensive, p
			}
			haveMost = true
		}
	}

	if !haveCheapest || !haveMost {
		return nil, eris.Wrapf(ErrNoPricing, "merge %d chunk results", len(results))
	}

	return &model.Extraction{
		Cheapest:      cloneTier(cheapest),
		MostExpensive: cloneTier(mostExpensive),
		Middle:        cloneTier(median(results)),
	}, nil
}

// median returns the tier at index len/2 of all priced tiers sorted ascending
func median(results []model.ChunkResult) *model.PricingTier {
	var pool []*model.PricingTier
	for _, r := range results {
		for _, t := range []*model.PricingTier{r.Cheapest, r.Middle, r.MostExpensive} {
			if _, ok := numeric(t); ok {
				pool = append(pool, t)
			}
		}
	}
	if len(pool) == 0 {
		return nil
	}

	sort.SliceStable(pool, func(i, j int) bool {
		a, _ := numeric(pool[i])
		b, _ := numeric(pool[j])
		return a < b
	})
	return pool[len(pool)/2]
}

func numeric(t *model.PricingTier) (float64, bool) {
	if t == nil {
		return 0, false
	}
	return t.Price.Numeric()
}

func priceOr(t *model.PricingTier, fallback float64) float64 {
	if v, ok := numeric(t); ok {
		return v
	}
	return fallback
}

func cloneTier(t *model.PricingTier) *model.PricingTier {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Features = append([]string(nil), t.Features...)
	return &cp
}
