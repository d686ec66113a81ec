package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	apperrors "rfm-segmentation/pkg/errors"
	"rfm-segmentation/pkg/models"
)

// CSVSource reads purchase records from a FLO-layout CSV file.
type CSVSource struct {
	path string
}

// NewCSVSource creates a CSV source for the given file
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Name identifies the source in logs.
func (s *CSVSource) Name() string {
	return "csv:" + s.path
}

// Load reads every row. The header must carry exactly the columns of models.Columns, in any order.
func (s *CSVSource) Load(ctx context.Context) ([]models.PurchaseRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, apperrors.NewLoadFailedError(s.path, errors.WithStack(err))
	}
	defer file.Close()

	return ReadCSV(ctx, file)
}

// ReadCSV parses FLO-layout CSV from r.
func ReadCSV(ctx context.Context, r io.Reader) ([]models.PurchaseRecord, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewLoadFailedError("csv header", errors.WithStack(err))
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []models.PurchaseRecord
	lineNum := 1

	for {
		row, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, apperrors.NewLoadFailedError(fmt.Sprintf("csv line %d", lineNum+1), errors.WithStack(readErr))
		}
		lineNum++

		if lineNum%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, parseErr := parseRow(row, index, lineNum)
		if parseErr != nil {
			return nil, parseErr
		}
		records = append(records, record)
	}

	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	var extra []string
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; dup {
			return nil, apperrors.NewSchemaMismatchError(fmt.Sprintf("duplicate column %q", name))
		}
		index[name] = i
		if !isKnownColumn(name) {
			extra = append(extra, name)
		}
	}

	var missing []string
	for _, col := range models.Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(extra)
		return nil, apperrors.NewSchemaMismatchError(fmt.Sprintf("missing columns %v, unexpected columns %v", missing, extra))
	}
	return index, nil
}

func isKnownColumn(name string) bool {
	for _, col := range models.Columns {
		if col == name {
			return true
		}
	}
	return false
}

func parseRow(row []string, index map[string]int, lineNum int) (models.PurchaseRecord, error) {
	get := func(col string) string {
		return row[index[col]]
	}

	onlineCount, err := ParseCount(get("order_num_total_ever_online"))
	if err != nil {
		return models.PurchaseRecord{}, fieldError(lineNum, "order_num_total_ever_online", err)
	}
	offlineCount, err := ParseCount(get("order_num_total_ever_offline"))
	if err != nil {
		return models.PurchaseRecord{}, fieldError(lineNum, "order_num_total_ever_offline", err)
	}
	onlineValue, err := ParseAmount(get("customer_value_total_ever_online"))
	if err != nil {
		return models.PurchaseRecord{}, fieldError(lineNum, "customer_value_total_ever_online", err)
	}
	offlineValue, err := ParseAmount(get("customer_value_total_ever_offline"))
	if err != nil {
		return models.PurchaseRecord{}, fieldError(lineNum, "customer_value_total_ever_offline", err)
	}

	id := strings.TrimSpace(get("master_id"))
	if id == "" {
		return models.PurchaseRecord{}, apperrors.NewSchemaMismatchError(fmt.Sprintf("line %d: empty master_id", lineNum))
	}

	return models.PurchaseRecord{
		MasterID:             id,
		OrderChannel:         get("order_channel"),
		LastOrderChannel:     get("last_order_channel"),
		FirstOrderDate:       get("first_order_date"),
		LastOrderDate:        get("last_order_date"),
		LastOrderDateOnline:  get("last_order_date_online"),
		LastOrderDateOffline: get("last_order_date_offline"),
		OrderNumOnline:       onlineCount,
		OrderNumOffline:      offlineCount,
		ValueOnline:          onlineValue,
		ValueOffline:         offlineValue,
		InterestedCategories: ParseCategories(get("interested_in_categories_12")),
	}, nil
}

func fieldError(lineNum int, column string, err error) error {
	return apperrors.NewSchemaMismatchError(fmt.Sprintf("line %d column %s: %v", lineNum, column, err))
}
