// Package report builds the descriptive summaries printed by the analysis next to the id lists.
package report

import (
	"sort"
	"time"

	"rfm-segmentation/pkg/models"
)

type SegmentSummary struct {
	Segment       models.Segment `json:"segment"`
	Customers     int            `json:"customers"`
	MeanRecency   float64        `json:"mean_recency"`
	MeanFrequency float64        `json:"mean_frequency"`
	MeanMonetary  float64        `json:"mean_monetary"`
}

type ChannelSummary struct {
	Channel           string  `json:"channel"`
	Customers         int     `json:"customers"`
	TotalTransactions int     `json:"total_transactions"`
	TotalSpend        float64 `json:"total_spend"`
}

type TopCustomer struct {
	MasterID  string         `json:"master_id"`
	Frequency int            `json:"frequency"`
	Monetary  float64        `json:"monetary"`
	Segment   models.Segment `json:"segment"`
}

// Report is the JSON document written at the end of a run.
type Report struct {
	RunID          string             `json:"run_id"`
	GeneratedAt    time.Time          `json:"generated_at"`
	AnalysisDate   string             `json:"analysis_date"`
	RecordsRead    int                `json:"records_read"`
	Customers      int                `json:"customers"`
	Segments       []SegmentSummary   `json:"segments"`
	Channels       []ChannelSummary   `json:"channels"`
	TopByMonetary  []TopCustomer      `json:"top_by_monetary"`
	TopByFrequency []TopCustomer      `json:"top_by_frequency"`
	Selections     []models.Selection `json:"selections"`
}

// Build assembles the full report of a run.
func Build(result *models.Result, order []models.Segment, topN int) Report {
	return Report{
		RunID:          result.RunID,
		GeneratedAt:    time.Now().UTC(),
		AnalysisDate:   result.AnalysisDate.Format("2006-01-02"),
		RecordsRead:    result.RecordsRead,
		Customers:      len(result.Profiles),
		Segments:       SummarizeSegments(result.Profiles, order),
		Channels:       SummarizeChannels(result.Profiles),
		TopByMonetary:  TopByMonetary(result.Profiles, topN),
		TopByFrequency: TopByFrequency(result.Profiles, topN),
		Selections:     result.Selections,
	}
}

// SummarizeSegments returns one row per segment in the given order, empty segments included.
func SummarizeSegments(profiles []models.Profile, order []models.Segment) []SegmentSummary {
	idx := make(map[models.Segment]int, len(order))
	out := make([]SegmentSummary, len(order))
	for i, s := range order {
		idx[s] = i
		out[i].Segment = s
	}

	for _, p := range profiles {
		i, ok := idx[p.Segment]
		if !ok {
			continue
		}
		out[i].Customers++
		out[i].MeanRecency += float64(p.Recency)
		out[i].MeanFrequency += float64(p.Frequency)
		out[i].MeanMonetary += p.Monetary
	}
	for i := range out {
		if n := float64(out[i].Customers); n > 0 {
			out[i].MeanRecency /= n
			out[i].MeanFrequency /= n
			out[i].MeanMonetary /= n
		}
	}
	return out
}

// SummarizeChannels groups profiles by order channel, sorted by channel name.
func SummarizeChannels(profiles []models.Profile) []ChannelSummary {
	byChannel := map[string]*ChannelSummary{}
	for _, p := range profiles {
		c, ok := byChannel[p.OrderChannel]
		if !ok {
			c = &ChannelSummary{Channel: p.OrderChannel}
			byChannel[p.OrderChannel] = c
		}
		c.Customers++
		c.TotalTransactions += p.Frequency
		c.TotalSpend += p.Monetary
	}

	out := make([]ChannelSummary, 0, len(byChannel))
	for _, c := range byChannel {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

type less func(a, b models.Profile) bool

func byMonetary(a, b models.Profile) bool  { return a.Monetary > b.Monetary }
func byFrequency(a, b models.Profile) bool { return a.Frequency > b.Frequency }

// topCustomers returns the first n profiles under the ordering; ties keep table order.
func topCustomers(profiles []models.Profile, n int, cmp less) []TopCustomer {
	sorted := append([]models.Profile(nil), profiles...)
	sort.SliceStable(sorted, func(i, j int) bool { return cmp(sorted[i], sorted[j]) })
	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}

	out := make([]TopCustomer, n)
	for i := 0; i < n; i++ {
		p := sorted[i]
		out[i] = TopCustomer{MasterID: p.MasterID, Frequency: p.Frequency, Monetary: p.Monetary, Segment: p.Segment}
	}
	return out
}

func TopByMonetary(profiles []models.Profile, n int) []TopCustomer {
	return topCustomers(profiles, n, byMonetary)
}

func TopByFrequency(profiles []models.Profile, n int) []TopCustomer {
	return topCustomers(profiles, n, byFrequency)
}
