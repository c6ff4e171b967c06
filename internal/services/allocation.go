package services

import (
	"fmt"
	"sort"

	"github.com/leaf-logistics/rfq-service/internal/models"
)

// Allocate computes the reference allocation for a bid set: quotes sorted by
// ascending price (earlier submission wins ties) are partitioned into
// price-equal groups labeled L1, L2, ... and each group receives trucks in
// proportion to offered capacity, capped by remaining demand. The function is
// pure; callers persist the result in one batch.
func Allocate(quotes []models.Quote, requiredTrucks int) []models.Allocation {
	if requiredTrucks <= 0 || len(quotes) == 0 {
		return nil
	}

	sorted := make([]models.Quote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Price != sorted[j].Price {
			return sorted[i].Price < sorted[j].Price
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	result := make([]models.Allocation, 0, len(sorted))
	totalAllotted := 0
	labelCounter := 1
	i := 0

	for i < len(sorted) && totalAllotted < requiredTrucks {
		// Collect the equal-price group. Within it the quotes are already in
		// creation order, which is the remainder-distribution order.
		j := i
		offered := 0
		for j < len(sorted) && sorted[j].Price == sorted[i].Price {
			offered += sorted[j].NumberOfTrucks
			j++
		}
		group := sorted[i:j]
		label := fmt.Sprintf("L%d", labelCounter)

		remaining := requiredTrucks - totalAllotted
		groupCap := offered
		if groupCap > remaining {
			groupCap = remaining
		}

		allotted := make([]int, len(group))
		groupTotal := 0
		if offered > 0 {
			for k, quote := range group {
				share := quote.NumberOfTrucks * groupCap / offered
				if share > quote.NumberOfTrucks {
					share = quote.NumberOfTrucks
				}
				allotted[k] = share
				groupTotal += share
			}

			// Floor rounding may leave part of groupCap unassigned; hand it
			// out to earlier bidders first, bounded by spare capacity.
			rem := groupCap - groupTotal
			for k := range group {
				if rem == 0 {
					break
				}
				spare := group[k].NumberOfTrucks - allotted[k]
				if spare > 0 {
					add := spare
					if add > rem {
						add = rem
					}
					allotted[k] += add
					groupTotal += add
					rem -= add
				}
			}
		}

		for k, quote := range group {
			result = append(result, models.Allocation{
				QuoteID:        quote.ID,
				VendorId:       quote.VendorId,
				Price:          quote.Price,
				Label:          label,
				TrucksAllotted: allotted[k],
			})
		}

		totalAllotted += groupTotal
		labelCounter++
		i = j
	}

	for ; i < len(sorted); i++ {
		result = append(result, models.Allocation{
			QuoteID:        sorted[i].ID,
			VendorId:       sorted[i].VendorId,
			Price:          sorted[i].Price,
			Label:          models.UnallottedLabel,
			TrucksAllotted: 0,
		})
	}

	return result
}

// lowestQuote returns the quote with the lowest price, earliest submission
// winning ties, or nil for an empty set.
func lowestQuote(quotes []models.Quote) *models.Quote {
	var lowest *models.Quote
	for i := range quotes {
		q := &quotes[i]
		if lowest == nil || q.Price < lowest.Price ||
			(q.Price == lowest.Price && q.CreatedAt.Before(lowest.CreatedAt)) {
			lowest = q
		}
	}
	return lowest
}
