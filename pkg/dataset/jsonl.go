package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	apperrors "rfm-segmentation/pkg/errors"
	"rfm-segmentation/pkg/models"
)

// recordSchema is the JSON schema every line of a JSON-lines input must satisfy.
const recordSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": [
    "master_id", "order_channel", "last_order_channel",
    "first_order_date", "last_order_date", "last_order_date_online", "last_order_date_offline",
    "order_num_total_ever_online", "order_num_total_ever_offline",
    "customer_value_total_ever_offline", "customer_value_total_ever_online",
    "interested_in_categories_12"
  ],
  "properties": {
    "master_id":                         {"type": "string", "minLength": 1},
    "order_channel":                     {"type": "string"},
    "last_order_channel":                {"type": "string"},
    "first_order_date":                  {"type": "string"},
    "last_order_date":                   {"type": "string"},
    "last_order_date_online":            {"type": "string"},
    "last_order_date_offline":           {"type": "string"},
    "order_num_total_ever_online":       {"type": "integer", "minimum": 0},
    "order_num_total_ever_offline":      {"type": "integer", "minimum": 0},
    "customer_value_total_ever_offline": {"type": "number"},
    "customer_value_total_ever_online":  {"type": "number"},
    "interested_in_categories_12":       {"type": "array", "items": {"type": "string"}}
  }
}`

type jsonRecord struct {
	MasterID             string   `json:"master_id"`
	OrderChannel         string   `json:"order_channel"`
	LastOrderChannel     string   `json:"last_order_channel"`
	FirstOrderDate       string   `json:"first_order_date"`
	LastOrderDate        string   `json:"last_order_date"`
	LastOrderDateOnline  string   `json:"last_order_date_online"`
	LastOrderDateOffline string   `json:"last_order_date_offline"`
	OrderNumOnline       float64  `json:"order_num_total_ever_online"`
	OrderNumOffline      float64  `json:"order_num_total_ever_offline"`
	ValueOffline         float64  `json:"customer_value_total_ever_offline"`
	ValueOnline          float64  `json:"customer_value_total_ever_online"`
	InterestedCategories []string `json:"interested_in_categories_12"`
}

// JSONLSource reads purchase records from a JSON-lines file, one object per line.
type JSONLSource struct {
	path string
}

func NewJSONLSource(path string) *JSONLSource {
	return &JSONLSource{path: path}
}

func (s *JSONLSource) Name() string {
	return "jsonl:" + s.path
}

func (s *JSONLSource) Load(ctx context.Context) ([]models.PurchaseRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, apperrors.NewLoadFailedError(s.path, errors.WithStack(err))
	}
	defer file.Close()

	return ReadJSONL(ctx, file)
}

// ReadJSONL validates and decodes every non-blank line of r.
func ReadJSONL(ctx context.Context, r io.Reader) ([]models.PurchaseRecord, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(recordSchema))
	if err != nil {
		return nil, errors.Wrap(err, "compile record schema")
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var records []models.PurchaseRecord
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if lineNum%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		result, err := schema.Validate(gojsonschema.NewBytesLoader(line))
		if err != nil {
			return nil, apperrors.NewSchemaMismatchError(fmt.Sprintf("line %d: %v", lineNum, err))
		}
		if !result.Valid() {
			errs := make([]string, len(result.Errors()))
			for i, desc := range result.Errors() {
				errs[i] = desc.String()
			}
			return nil, apperrors.NewSchemaMismatchError(fmt.Sprintf("line %d: %s", lineNum, strings.Join(errs, "; ")))
		}

		var jr jsonRecord
		if err := json.Unmarshal(line, &jr); err != nil {
			return nil, apperrors.NewSchemaMismatchError(fmt.Sprintf("line %d: %v", lineNum, err))
		}
		record, err := jr.toModel()
		if err != nil {
			return nil, apperrors.NewSchemaMismatchError(fmt.Sprintf("line %d: %v", lineNum, err))
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewLoadFailedError("jsonl", errors.WithStack(err))
	}

	return records, nil
}

func (jr jsonRecord) toModel() (models.PurchaseRecord, error) {
	online, err := CountFromFloat(jr.OrderNumOnline)
	if err != nil {
		return models.PurchaseRecord{}, err
	}
	offline, err := CountFromFloat(jr.OrderNumOffline)
	if err != nil {
		return models.PurchaseRecord{}, err
	}
	categories := jr.InterestedCategories
	if categories == nil {
		categories = []string{}
	}
	return models.PurchaseRecord{
		MasterID:             jr.MasterID,
		OrderChannel:         jr.OrderChannel,
		LastOrderChannel:     jr.LastOrderChannel,
		FirstOrderDate:       jr.FirstOrderDate,
		LastOrderDate:        jr.LastOrderDate,
		LastOrderDateOnline:  jr.LastOrderDateOnline,
		LastOrderDateOffline: jr.LastOrderDateOffline,
		OrderNumOnline:       online,
		OrderNumOffline:      offline,
		ValueOnline:          jr.ValueOnline,
		ValueOffline:         jr.ValueOffline,
		InterestedCategories: categories,
	}, nil
}
