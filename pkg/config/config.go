// pkg/config/config.go
package config

import (
	"time"

	"rfm-segmentation/pkg/models"
)

const dateLayout = "2006-01-02"

// Config is the main application configuration struct.
type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Input     InputConfig     `mapstructure:"input"`
	Output    OutputConfig    `mapstructure:"output"`
	Selection SelectionConfig `mapstructure:"selection"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AnalysisConfig holds the reference date and aggregation policy.
type AnalysisConfig struct {
	Date        string `mapstructure:"date"`        // YYYY-MM-DD; empty = last observed purchase + offset_days
	OffsetDays  int    `mapstructure:"offset_days"` // used only when date is empty
	Aggregation string `mapstructure:"aggregation"` // sum | strict
}

// InputConfig selects the record source: a file (csv, jsonl) or a SQL table.
type InputConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
	DSN    string `mapstructure:"dsn"`
	Table  string `mapstructure:"table"`
}

// OutputConfig holds the export destinations.
type OutputConfig struct {
	Dir      string      `mapstructure:"dir"`
	Profiles bool        `mapstructure:"profiles"`
	Report   bool        `mapstructure:"report"`
	TopN     int         `mapstructure:"top_n"`
	Redis    RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// SelectionConfig holds the category markers and Rule A precedence.
type SelectionConfig struct {
	WomenCategory    string `mapstructure:"women_category"`
	MenCategory      string `mapstructure:"men_category"`
	ChildrenCategory string `mapstructure:"children_category"`
	RuleAPrecedence  string `mapstructure:"rule_a_precedence"` // literal | grouped
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds the optional Pushgateway target.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// AnalysisDate parses analysis.date; the zero time means "derive from the data".
func (a AnalysisConfig) AnalysisDate() (time.Time, error) {
	if a.Date == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, a.Date, time.UTC)
}

// Pipeline converts the file configuration into the parameters of one pipeline run.
func (c *Config) Pipeline(verbose bool) (models.Config, error) {
	date, err := c.Analysis.AnalysisDate()
	if err != nil {
		return models.Config{}, err
	}
	return models.Config{
		AnalysisDate:    date,
		AnalysisOffset:  c.Analysis.OffsetDays,
		Aggregation:     models.AggregationMode(c.Analysis.Aggregation),
		RuleAPrecedence: models.Precedence(c.Selection.RuleAPrecedence),
		Markers: models.CategoryMarkers{
			Women:    c.Selection.WomenCategory,
			Men:      c.Selection.MenCategory,
			Children: c.Selection.ChildrenCategory,
		},
		Verbose: verbose,
	}, nil
}
