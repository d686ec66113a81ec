// Package scoring turns raw recency, frequency and monetary metrics into quintile scores and segments.
package scoring

import (
	apperrors "rfm-segmentation/pkg/errors"
	"rfm-segmentation/pkg/models"
)

// Score fills the three scores, the composite code and the segment of every profile in place.
// Recency is inverted (smallest recency gets 5); frequency and monetary are direct.
func Score(profiles []models.Profile) error {
	n := len(profiles)
	if n < Bins {
		return apperrors.NewInsufficientPopulationError(n)
	}

	recency := make([]float64, n)
	frequency := make([]float64, n)
	monetary := make([]float64, n)
	for i, p := range profiles {
		recency[i] = float64(p.Recency)
		frequency[i] = float64(p.Frequency)
		monetary[i] = p.Monetary
	}

	for _, m := range []struct {
		name   string
		values []float64
	}{
		{"recency", recency},
		{"frequency", frequency},
		{"monetary", monetary},
	} {
		if distinctCount(m.values) < 2 {
			return apperrors.NewDegenerateDistributionError(m.name)
		}
	}

	rBins := Quintiles(recency)
	fBins := Quintiles(frequency)
	mBins := Quintiles(monetary)

	for i := range profiles {
		p := &profiles[i]
		p.RecencyScore = Bins + 1 - rBins[i]
		p.FrequencyScore = fBins[i]
		p.MonetaryScore = mBins[i]
		p.CompositeCode = CompositeCode(p.RecencyScore, p.FrequencyScore)

		segment, err := SegmentFor(p.RecencyScore, p.FrequencyScore)
		if err != nil {
			return err
		}
		p.Segment = segment
	}
	return nil
}
