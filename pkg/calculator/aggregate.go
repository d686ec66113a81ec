package calculator

import (
	"fmt"
	"time"

	apperrors "rfm-segmentation/pkg/errors"
	"rfm-segmentation/pkg/models"
)

// DefaultAnalysisDate = max(last_order_date) + offsetDays, utilisée quand aucune date n'est configurée.
func DefaultAnalysisDate(records []models.EnrichedRecord, offsetDays int) time.Time {
	var latest time.Time
	for _, r := range records {
		if r.LastOrderAt.After(latest) {
			latest = r.LastOrderAt
		}
	}
	return latest.AddDate(0, 0, offsetDays)
}

type group struct {
	profile models.Profile
	last    time.Time
}

// Aggregate regroupe par master_id (ordre de première apparition) et calcule recency / frequency / monetary.
//
// AggregationSum additionne fréquence et montant ; catégories et canal viennent de la ligne la plus récente.
// AggregationStrict refuse un identifiant répété.
func Aggregate(records []models.EnrichedRecord, analysisDate time.Time, mode models.AggregationMode) ([]models.Profile, error) {
	ref := dayUTC(analysisDate)

	index := make(map[string]int, len(records))
	groups := make([]group, 0, len(records))
	for _, r := range records {
		i, seen := index[r.MasterID]
		if !seen {
			index[r.MasterID] = len(groups)
			groups = append(groups, group{
				profile: models.Profile{
					MasterID:             r.MasterID,
					OrderChannel:         r.OrderChannel,
					Frequency:            r.TotalTransactionCount,
					Monetary:             r.TotalSpend,
					InterestedCategories: r.InterestedCategories,
				},
				last: r.LastOrderAt,
			})
			continue
		}

		if mode == models.AggregationStrict {
			return nil, apperrors.NewDuplicateCustomerError(r.MasterID)
		}
		g := &groups[i]
		g.profile.Frequency += r.TotalTransactionCount
		g.profile.Monetary += r.TotalSpend
		if r.LastOrderAt.After(g.last) {
			g.last = r.LastOrderAt
			g.profile.OrderChannel = r.OrderChannel
			g.profile.InterestedCategories = r.InterestedCategories
		}
	}

	profiles := make([]models.Profile, len(groups))
	for i, g := range groups {
		if ref.Before(g.last) {
			return nil, apperrors.NewInvalidAnalysisDateError(fmt.Sprintf("analysis date %s precedes last order %s of customer %s",
				ref.Format("2006-01-02"), g.last.Format("2006-01-02"), g.profile.MasterID))
		}
		g.profile.Recency = int(ref.Sub(g.last).Hours() / 24)
		profiles[i] = g.profile
	}
	return profiles, nil
}

func dayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
