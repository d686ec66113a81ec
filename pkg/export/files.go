package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rfm-segmentation/pkg/models"
)

// ProfileColumns is the header of the profile table CSV.
var ProfileColumns = []string{
	"master_id", "order_channel", "recency", "frequency", "monetary", "interested_in_categories_12",
	"recency_score", "frequency_score", "monetary_score", "rf_score", "segment",
}

// ExportJSON writes data as indented JSON, creating the parent folder.
func ExportJSON(filename string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return file.Close()
}

// TimestampedFilename returns <baseDir>/<name>_<YYYYMMDD_HHMMSS>.json.
func TimestampedFilename(baseDir, name string, now time.Time) string {
	return filepath.Join(baseDir, fmt.Sprintf("%s_%s.json", name, now.Format("20060102_150405")))
}

// WriteProfilesCSV writes the scored profile table.
func WriteProfilesCSV(filename string, profiles []models.Profile) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(ProfileColumns); err != nil {
		return err
	}
	for _, p := range profiles {
		row := []string{
			p.MasterID,
			p.OrderChannel,
			strconv.Itoa(p.Recency),
			strconv.Itoa(p.Frequency),
			strconv.FormatFloat(p.Monetary, 'f', 2, 64),
			"[" + strings.Join(p.InterestedCategories, ", ") + "]",
			strconv.Itoa(p.RecencyScore),
			strconv.Itoa(p.FrequencyScore),
			strconv.Itoa(p.MonetaryScore),
			p.CompositeCode,
			string(p.Segment),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}
