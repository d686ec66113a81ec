// Package selection holds the targeting rules applied to the segmented profile table.
package selection

import (
	"strings"

	apperrors "rfm-segmentation/pkg/errors"
	"rfm-segmentation/pkg/models"
)

const (
	RuleHighValueWomen     = "high_value_women"
	RuleWinbackMenChildren = "winback_men_children"
)

// Names lists the registered rules in export order.
func Names() []string {
	return []string{RuleHighValueWomen, RuleWinbackMenChildren}
}

var winbackSegments = map[models.Segment]bool{
	models.SegmentCantLoose:    true,
	models.SegmentHibernating:  true,
	models.SegmentNewCustomers: true,
}

type Selector struct {
	markers    models.CategoryMarkers
	precedence models.Precedence
}

func New(markers models.CategoryMarkers, precedence models.Precedence) *Selector {
	return &Selector{markers: markers, precedence: precedence}
}

// HasCategory reports whether one element of categories equals marker, ignoring case.
// An empty marker matches nothing.
func HasCategory(categories []string, marker string) bool {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return false
	}
	for _, c := range categories {
		if strings.EqualFold(strings.TrimSpace(c), marker) {
			return true
		}
	}
	return false
}

// HighValueWomen evaluates rule A.
// Literal precedence: champions OR (loyal_customers AND women).
// Grouped precedence: (champions OR loyal_customers) AND women.
func (s *Selector) HighValueWomen(p models.Profile) bool {
	women := HasCategory(p.InterestedCategories, s.markers.Women)
	if s.precedence == models.PrecedenceGrouped {
		return (p.Segment == models.SegmentChampions || p.Segment == models.SegmentLoyalCustomers) && women
	}
	return p.Segment == models.SegmentChampions || (p.Segment == models.SegmentLoyalCustomers && women)
}

// WinbackMenChildren evaluates rule B.
func (s *Selector) WinbackMenChildren(p models.Profile) bool {
	if !winbackSegments[p.Segment] {
		return false
	}
	return HasCategory(p.InterestedCategories, s.markers.Men) || HasCategory(p.InterestedCategories, s.markers.Children)
}

// Select runs one named rule over profiles, keeping table order. profiles is not modified.
func (s *Selector) Select(name string, profiles []models.Profile) (models.Selection, error) {
	var match func(models.Profile) bool
	switch name {
	case RuleHighValueWomen:
		match = s.HighValueWomen
	case RuleWinbackMenChildren:
		match = s.WinbackMenChildren
	default:
		return models.Selection{}, apperrors.NewUnknownSelectionError(name)
	}

	ids := []string{}
	for _, p := range profiles {
		if match(p) {
			ids = append(ids, p.MasterID)
		}
	}
	return models.Selection{Rule: name, CustomerIDs: ids}, nil
}

// Apply runs every registered rule.
func (s *Selector) Apply(profiles []models.Profile) ([]models.Selection, error) {
	out := make([]models.Selection, 0, len(Names()))
	for _, name := range Names() {
		sel, err := s.Select(name, profiles)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}
