package scoring

import (
	"fmt"

	apperrors "rfm-segmentation/pkg/errors"
	"rfm-segmentation/pkg/models"
)

// DigitRange is an inclusive range of score digits.
type DigitRange struct {
	Lo, Hi int
}

func (d DigitRange) Contains(v int) bool {
	return v >= d.Lo && v <= d.Hi
}

// Rule maps a (recency, frequency) digit rectangle to a segment.
type Rule struct {
	Recency   DigitRange
	Frequency DigitRange
	Segment   models.Segment
}

func (r Rule) Matches(recency, frequency int) bool {
	return r.Recency.Contains(recency) && r.Frequency.Contains(frequency)
}

// Rules is evaluated top to bottom; the first match wins. Together the rectangles tile 1..5 x 1..5.
var Rules = []Rule{
	{DigitRange{1, 2}, DigitRange{1, 2}, models.SegmentHibernating},
	{DigitRange{1, 2}, DigitRange{3, 4}, models.SegmentAtRisk},
	{DigitRange{1, 2}, DigitRange{5, 5}, models.SegmentCantLoose},
	{DigitRange{3, 3}, DigitRange{1, 2}, models.SegmentAboutToSleep},
	{DigitRange{3, 3}, DigitRange{3, 3}, models.SegmentNeedAttention},
	{DigitRange{3, 4}, DigitRange{4, 5}, models.SegmentLoyalCustomers},
	{DigitRange{4, 4}, DigitRange{1, 1}, models.SegmentPromising},
	{DigitRange{5, 5}, DigitRange{1, 1}, models.SegmentNewCustomers},
	{DigitRange{4, 5}, DigitRange{2, 3}, models.SegmentPotentialLoyalists},
	{DigitRange{5, 5}, DigitRange{4, 5}, models.SegmentChampions},
}

// Segments lists every segment in rule order.
func Segments() []models.Segment {
	out := make([]models.Segment, len(Rules))
	for i, r := range Rules {
		out[i] = r.Segment
	}
	return out
}

// CompositeCode renders the recency digit followed by the frequency digit.
func CompositeCode(recency, frequency int) string {
	return fmt.Sprintf("%d%d", recency, frequency)
}

// SegmentFor returns the segment of a recency/frequency score pair.
func SegmentFor(recency, frequency int) (models.Segment, error) {
	for _, rule := range Rules {
		if rule.Matches(recency, frequency) {
			return rule.Segment, nil
		}
	}
	return "", apperrors.NewUnmatchedSegmentError(CompositeCode(recency, frequency))
}

// Classify returns the segment of a two-digit composite code such as "41".
func Classify(code string) (models.Segment, error) {
	if len(code) != 2 || code[0] < '0' || code[0] > '9' || code[1] < '0' || code[1] > '9' {
		return "", apperrors.NewUnmatchedSegmentError(code)
	}
	return SegmentFor(int(code[0]-'0'), int(code[1]-'0'))
}
