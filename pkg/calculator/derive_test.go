package calculator

import (
	"errors"
	"testing"
	"time"

	apperrors "rfm-segmentation/pkg/errors"
	"rfm-segmentation/pkg/models"
)

func purchase(id string) models.PurchaseRecord {
	return models.PurchaseRecord{
		MasterID:             id,
		OrderChannel:         "Android App",
		LastOrderChannel:     "Offline",
		FirstOrderDate:       "2020-10-30",
		LastOrderDate:        "2021-02-26",
		LastOrderDateOnline:  "2021-02-21",
		LastOrderDateOffline: "2021-02-26",
		OrderNumOnline:       4,
		OrderNumOffline:      1,
		ValueOnline:          799.38,
		ValueOffline:         139.99,
		InterestedCategories: []string{"KADIN"},
	}
}

func TestDeriveRecord_Totals(t *testing.T) {
	e, err := DeriveRecord(0, purchase("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.TotalTransactionCount != 5 {
		t.Fatalf("got %d transactions, want 5", e.TotalTransactionCount)
	}
	if diff := e.TotalSpend - 939.37; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("got spend %v, want 939.37", e.TotalSpend)
	}
	want := time.Date(2021, 2, 26, 0, 0, 0, 0, time.UTC)
	if !e.LastOrderAt.Equal(want) {
		t.Fatalf("got %v, want %v", e.LastOrderAt, want)
	}
}

func TestDeriveRecord_Idempotent(t *testing.T) {
	first, err := DeriveRecord(0, purchase("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := DeriveRecord(0, first.PurchaseRecord)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTransactionCount != again.TotalTransactionCount || first.TotalSpend != again.TotalSpend {
		t.Fatalf("derive not idempotent: %+v vs %+v", first, again)
	}
	if !first.FirstOrderAt.Equal(again.FirstOrderAt) || !first.LastOrderAt.Equal(again.LastOrderAt) {
		t.Fatalf("dates changed on second derive")
	}
}

func TestParseDate_Layouts(t *testing.T) {
	want := time.Date(2021, 2, 26, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2021-02-26", "2021-02-26 17:45:00", "2021-02-26T17:45:00Z", " 2021-02-26 "} {
		got, ok := parseDate(s)
		if !ok {
			t.Fatalf("%q: not parsed", s)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: got %v, want %v", s, got, want)
		}
	}
}

func TestDerive_AbortsOnBadDate(t *testing.T) {
	bad := purchase("b")
	bad.LastOrderDateOnline = "26/02/2021"

	_, err := Derive([]models.PurchaseRecord{purchase("a"), bad})
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidDate) {
		t.Fatalf("expected INVALID_DATE, got %v", err)
	}
	var stdErr *apperrors.StandardError
	if !errors.As(err, &stdErr) || stdErr.Metadata["row"] != 1 || stdErr.Metadata["column"] != "last_order_date_online" {
		t.Fatalf("unexpected metadata: %v", err)
	}
}

func TestDerive_EmptyDateIsInvalid(t *testing.T) {
	r := purchase("a")
	r.FirstOrderDate = ""
	if _, err := Derive([]models.PurchaseRecord{r}); err == nil {
		t.Fatal("expected error for empty date, got nil")
	}
}
