// pkg/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "rfm-segmentation/pkg/errors"
)

const envPrefix = "RFM"

// Load reads config.yaml from ./configs or the working directory, or the file at path when given.
// A missing default file is not an error; defaults and RFM_* environment variables still apply.
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// RFM_ANALYSIS_DATE -> analysis.date
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found between the working directory and the project root.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, p := range possiblePaths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("analysis.date", "")
	v.SetDefault("analysis.offset_days", 2)
	v.SetDefault("analysis.aggregation", "sum")

	v.SetDefault("input.path", "datasets/flo_data_20k.csv")
	v.SetDefault("input.format", "csv")
	v.SetDefault("input.dsn", "")
	v.SetDefault("input.table", "flo_customers")

	v.SetDefault("output.dir", "out")
	v.SetDefault("output.profiles", true)
	v.SetDefault("output.report", true)
	v.SetDefault("output.top_n", 10)
	v.SetDefault("output.redis.address", "")
	v.SetDefault("output.redis.password", "")
	v.SetDefault("output.redis.db", 0)
	v.SetDefault("output.redis.key_prefix", "rfm")

	v.SetDefault("selection.women_category", "WOMEN")
	v.SetDefault("selection.men_category", "MEN")
	v.SetDefault("selection.children_category", "CHILDREN")
	v.SetDefault("selection.rule_a_precedence", "literal")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "rfm_segmentation")
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if _, err := cfg.Analysis.AnalysisDate(); err != nil {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("analysis.date %q: expected YYYY-MM-DD", cfg.Analysis.Date))
	}
	if cfg.Analysis.OffsetDays < 1 {
		return apperrors.NewInvalidConfigError("analysis.offset_days must be >= 1")
	}

	switch cfg.Analysis.Aggregation {
	case "sum", "strict":
	default:
		return apperrors.NewInvalidConfigError(fmt.Sprintf("analysis.aggregation %q: expected sum or strict", cfg.Analysis.Aggregation))
	}

	switch cfg.Selection.RuleAPrecedence {
	case "literal", "grouped":
	default:
		return apperrors.NewInvalidConfigError(fmt.Sprintf("selection.rule_a_precedence %q: expected literal or grouped", cfg.Selection.RuleAPrecedence))
	}

	if cfg.Selection.WomenCategory == "" || cfg.Selection.MenCategory == "" || cfg.Selection.ChildrenCategory == "" {
		return apperrors.NewInvalidConfigError("selection category markers are required")
	}

	if cfg.Input.DSN == "" {
		if cfg.Input.Path == "" {
			return apperrors.NewInvalidConfigError("input.path or input.dsn is required")
		}
		switch cfg.Input.Format {
		case "csv", "jsonl":
		default:
			return apperrors.NewInvalidConfigError(fmt.Sprintf("input.format %q: expected csv or jsonl", cfg.Input.Format))
		}
	}

	if cfg.Output.Dir == "" {
		return apperrors.NewInvalidConfigError("output.dir is required")
	}
	if cfg.Output.TopN < 0 {
		return apperrors.NewInvalidConfigError("output.top_n must be >= 0")
	}

	return nil
}

// Validate re-checks the configuration after command-line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}
