package calculator

import (
	"strings"
	"time"

	apperrors "rfm-segmentation/pkg/errors"
	"rfm-segmentation/pkg/models"
)

// Formats de date acceptés, du plus courant (export FLO) au plus complet (scan SQL).
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// Derive enrichit chaque enregistrement (1:1). Première date illisible → arrêt de l'exécution.
func Derive(records []models.PurchaseRecord) ([]models.EnrichedRecord, error) {
	out := make([]models.EnrichedRecord, 0, len(records))
	for i, r := range records {
		e, err := DeriveRecord(i, r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// DeriveRecord calcule les totaux omnicanal et normalise les quatre dates au jour UTC.
// row ne sert qu'au message d'erreur.
func DeriveRecord(row int, r models.PurchaseRecord) (models.EnrichedRecord, error) {
	e := models.EnrichedRecord{
		PurchaseRecord:        r,
		TotalTransactionCount: r.OrderNumOnline + r.OrderNumOffline,
		TotalSpend:            r.ValueOnline + r.ValueOffline,
	}

	dates := []struct {
		column string
		raw    string
		dst    *time.Time
	}{
		{"first_order_date", r.FirstOrderDate, &e.FirstOrderAt},
		{"last_order_date", r.LastOrderDate, &e.LastOrderAt},
		{"last_order_date_online", r.LastOrderDateOnline, &e.LastOrderOnlineAt},
		{"last_order_date_offline", r.LastOrderDateOffline, &e.LastOrderOfflineAt},
	}
	for _, d := range dates {
		t, ok := parseDate(d.raw)
		if !ok {
			return models.EnrichedRecord{}, apperrors.NewInvalidDateError(row, r.MasterID, d.column, d.raw)
		}
		*d.dst = t
	}
	return e, nil
}

// parseDate → minuit UTC du jour calendaire
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
