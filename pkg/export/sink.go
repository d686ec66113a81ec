// Package export writes selections, profiles and reports to durable sinks.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"rfm-segmentation/pkg/config"
	apperrors "rfm-segmentation/pkg/errors"
)

// CSVSink writes each selection to <dir>/<rule>.csv, one master_id per row.
type CSVSink struct {
	dir string
}

func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{dir: dir}
}

func (s *CSVSink) Name() string {
	return "csv:" + s.dir
}

// Path returns the file a rule is written to.
func (s *CSVSink) Path(rule string) string {
	return filepath.Join(s.dir, rule+".csv")
}

func (s *CSVSink) Write(ctx context.Context, rule string, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeIDs(s.Path(rule), ids); err != nil {
		return apperrors.NewExportFailedError(s.Name(), err)
	}
	return nil
}

func writeIDs(path string, ids []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"master_id"}); err != nil {
		return err
	}
	for _, id := range ids {
		if err := w.Write([]string{id}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

// NewRedisClient builds a client from the output.redis settings.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// RedisSink stores each selection as a list at <prefix>:<rule>.
type RedisSink struct {
	client *redis.Client
	prefix string
}

func NewRedisSink(client *redis.Client, prefix string) *RedisSink {
	return &RedisSink{client: client, prefix: prefix}
}

func (s *RedisSink) Name() string {
	return "redis:" + s.prefix
}

func (s *RedisSink) Key(rule string) string {
	if s.prefix == "" {
		return rule
	}
	return s.prefix + ":" + rule
}

// Write replaces the list in a MULTI/EXEC block so readers never see a partial selection.
func (s *RedisSink) Write(ctx context.Context, rule string, ids []string) error {
	key := s.Key(rule)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(ids) > 0 {
			values := make([]interface{}, len(ids))
			for i, id := range ids {
				values[i] = id
			}
			pipe.RPush(ctx, key, values...)
		}
		return nil
	})
	if err != nil {
		return apperrors.NewExportFailedError(s.Name(), fmt.Errorf("redis write %s: %w", key, err))
	}
	return nil
}

// Ping checks the connection before the pipeline starts.
func (s *RedisSink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperrors.NewExportFailedError(s.Name(), fmt.Errorf("redis ping failed: %w", err))
	}
	return nil
}

func (s *RedisSink) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
