package calculator

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"rfm-segmentation/pkg/logger"
	"rfm-segmentation/pkg/metrics"
	"rfm-segmentation/pkg/models"
	"rfm-segmentation/pkg/scoring"
	"rfm-segmentation/pkg/selection"
)

// Source fournit les enregistrements bruts (fichier CSV/JSONL ou table SQL).
type Source interface {
	Load(ctx context.Context) ([]models.PurchaseRecord, error)
	Name() string
}

// Sink reçoit la liste d'identifiants d'une règle de ciblage.
type Sink interface {
	Write(ctx context.Context, rule string, ids []string) error
	Name() string
}

var stages = []string{"load", "derive", "aggregate", "score", "select", "export"}

type Pipeline struct {
	source   Source
	sinks    []Sink
	cfg      models.Config
	log      logger.Logger
	metrics  *metrics.Recorder
	progress io.Writer
}

func New(source Source, sinks []Sink, cfg models.Config, log logger.Logger, rec *metrics.Recorder) *Pipeline {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	progress := io.Discard
	if cfg.Verbose {
		progress = os.Stderr
	}
	return &Pipeline{source: source, sinks: sinks, cfg: cfg, log: log, metrics: rec, progress: progress}
}

/*
LOAD → DERIVE → AGGREGATE → SCORE → SELECT → EXPORT
Chaque étape consomme la table complète de la précédente ; toute erreur arrête l'exécution.
*/

func (p *Pipeline) Run(ctx context.Context) (*models.Result, error) {
	runID := uuid.New().String()
	log := p.log.WithFields(map[string]interface{}{"runId": runID, "source": p.source.Name()})
	bar := progressbar.NewOptions(len(stages),
		progressbar.OptionSetWriter(p.progress),
		progressbar.OptionSetDescription("rfm"),
		progressbar.OptionShowCount(),
	)

	start := time.Now()
	raw, err := p.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	p.step(bar, log, "load", start, map[string]interface{}{"records": len(raw)})
	p.metrics.RecordsLoaded.Set(float64(len(raw)))

	start = time.Now()
	enriched, err := Derive(raw)
	if err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}
	p.step(bar, log, "derive", start, nil)

	start = time.Now()
	analysisDate := p.cfg.AnalysisDate
	if analysisDate.IsZero() {
		analysisDate = DefaultAnalysisDate(enriched, p.cfg.AnalysisOffset)
		log.Info("analysis date derived from data", map[string]interface{}{
			"analysisDate": analysisDate.Format("2006-01-02"),
			"offsetDays":   p.cfg.AnalysisOffset,
		})
	}
	profiles, err := Aggregate(enriched, analysisDate, p.cfg.Aggregation)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	p.step(bar, log, "aggregate", start, map[string]interface{}{"customers": len(profiles)})
	p.metrics.Profiles.Set(float64(len(profiles)))

	start = time.Now()
	if err := scoring.Score(profiles); err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	p.metrics.SetSegments(segmentCounts(profiles))
	p.step(bar, log, "score", start, nil)

	start = time.Now()
	selector := selection.New(p.cfg.Markers, p.cfg.RuleAPrecedence)
	selections, err := selector.Apply(profiles)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	for _, s := range selections {
		p.metrics.SetSelected(s.Rule, len(s.CustomerIDs))
		log.Info("selection computed", map[string]interface{}{"rule": s.Rule, "customers": len(s.CustomerIDs)})
	}
	p.step(bar, log, "select", start, nil)

	start = time.Now()
	for _, s := range selections {
		for _, sink := range p.sinks {
			if err := sink.Write(ctx, s.Rule, s.CustomerIDs); err != nil {
				return nil, fmt.Errorf("export %s: %w", s.Rule, err)
			}
			log.Debug("selection exported", map[string]interface{}{"rule": s.Rule, "sink": sink.Name()})
		}
	}
	p.step(bar, log, "export", start, map[string]interface{}{"sinks": len(p.sinks)})
	_ = bar.Finish()

	return &models.Result{
		RunID:        runID,
		AnalysisDate: analysisDate,
		RecordsRead:  len(raw),
		Profiles:     profiles,
		Selections:   selections,
	}, nil
}

func (p *Pipeline) step(bar *progressbar.ProgressBar, log logger.Logger, stage string, start time.Time, fields map[string]interface{}) {
	p.metrics.ObserveStage(stage, start)
	_ = bar.Add(1)
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["stage"] = stage
	fields["elapsed"] = time.Since(start).String()
	log.Debug("stage done", fields)
}

func segmentCounts(profiles []models.Profile) map[string]int {
	counts := make(map[string]int, len(scoring.Rules))
	for _, p := range profiles {
		counts[string(p.Segment)]++
	}
	return counts
}
