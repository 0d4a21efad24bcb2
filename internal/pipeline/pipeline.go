// Package pipeline implements the buyer signal extraction and scoring
// pipeline: source resolution, fetch with fallback, search enrichment,
// normalization, rule-driven field extraction with evidence capture,
// temporal filtering, urgency classification, provenance grading,
// composite scoring and baseline diffing.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/buyer-signals/internal/config"
	"github.com/sells-group/buyer-signals/internal/fetcher"
	"github.com/sells-group/buyer-signals/internal/model"
	"github.com/sells-group/buyer-signals/internal/registry"
	"github.com/sells-group/buyer-signals/internal/report"
	"github.com/sells-group/buyer-signals/internal/store"
	"github.com/sells-group/buyer-signals/pkg/brave"
)

// searchQueryFmt is the fixed secondary-enrichment query per buyer.
const searchQueryFmt = "%s infrastructure allocation mandate leadership statement"

// Pipeline executes one signal run across the configured buyer roster.
type Pipeline struct {
	cfg     *config.Config
	reg     *registry.Registry
	fetcher *fetcher.Client
	search  brave.Client
	store   store.Store

	// now is swappable for temporal-filter tests.
	now func() time.Time
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, reg *registry.Registry, fc *fetcher.Client, search brave.Client, st store.Store) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		reg:     reg,
		fetcher: fc,
		search:  search,
		store:   st,
		now:     time.Now,
	}
}

// Run executes the full pipeline once: every buyer is processed
// independently (bounded concurrency), diffed against the latest
// persisted run, assembled into a new immutable Run and persisted as JSON
// plus a Markdown summary. Per-buyer failures degrade to statuses inside
// that buyer's record; only config, registry and store problems are
// fatal.
func (p *Pipeline) Run(ctx context.Context) (*model.Run, error) {
	release, err := p.store.Lock(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: acquire run lock")
	}
	defer release()

	prior, err := p.store.LatestRun(ctx)
	if err != nil {
		zap.L().Warn("pipeline: failed to load prior run, starting fresh baseline", zap.Error(err))
		prior = nil
	}
	var priorRows map[string]*model.BuyerSignalRecord
	if prior != nil {
		priorRows = prior.RowsByBuyer()
		zap.L().Info("pipeline: baseline loaded",
			zap.String("run_id", prior.ID),
			zap.Time("generated_at", prior.GeneratedAt),
		)
	}

	start := time.Now()
	buyers := p.reg.Buyers
	rows := make([]model.BuyerSignalRecord, len(buyers))

	maxConcurrent := p.cfg.Pipeline.MaxConcurrentBuyers
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	// Buyers share no mutable state; output order stays registry order
	// because each goroutine writes only its own slot.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, src := range buyers {
		g.Go(func() error {
			rows[i] = p.processBuyer(gCtx, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: buyer loop")
	}

	// Diff against the baseline after all other processing, so only
	// final, cleaned values are compared.
	for i := range rows {
		rows[i].ChangedFields = ChangedFields(&rows[i], priorRows[rows[i].Buyer])
	}

	run := &model.Run{
		ID:          uuid.New().String(),
		GeneratedAt: p.now().UTC(),
		Rows:        rows,
	}

	summary := report.Summary(run)
	if err := p.store.SaveRun(ctx, run, summary); err != nil {
		return nil, eris.Wrap(err, "pipeline: persist run")
	}

	zap.L().Info("pipeline: run complete",
		zap.String("run_id", run.ID),
		zap.Int("buyers", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return run, nil
}

// processBuyer runs the per-buyer pipeline: resolve candidates, fetch
// with fallback, enrich via search, build the corpus and extract, filter,
// classify and score. Every failure mode lands as a status or sentinel in
// the returned record; this function has no error path.
func (p *Pipeline) processBuyer(ctx context.Context, src model.BuyerSource) model.BuyerSignalRecord {
	log := zap.L().With(zap.String("buyer", src.ID))

	candidates := src.Candidates()
	fetched := p.fetcher.FetchWithFallback(ctx, candidates)
	search := p.search.Search(ctx, fmt.Sprintf(searchQueryFmt, src.ID))

	corpus := BuildCorpus(fetched, search)
	rule := p.reg.RuleFor(src.ID)
	fields := ExtractFields(corpus, rule)

	rec := model.BuyerSignalRecord{
		Buyer:            src.ID,
		SourceTried:      candidates,
		SourceUsed:       fetched.URL,
		LeadershipSource: src.LeadershipURL,
		FetchStatus:      fetched.Status,
		BraveStatus:      search.Status,

		CapitalAmount:       fields.CapitalAmount.OrMissing(),
		Sector:              fields.Sector.OrMissing(),
		Geography:           fields.Geography.OrMissing(),
		MandateLanguage:     fields.MandateLanguage.OrMissing(),
		LeadershipStatement: fields.LeadershipStatement.OrMissing(),

		UrgencyIndicator: Urgency(corpus),
	}
	if rec.SourceUsed == "" {
		rec.SourceUsed = src.PressURL
	}

	// Temporal validity: a parseable date too far from now is downgraded
	// to absent, with the evidence slot explaining the rejection.
	rec.Date = fields.Date.OrMissing()
	dateEvidence := fields.Date.EvidenceOrMissing()
	if fields.Date.Found {
		if parsed, ok := ParseDate(fields.Date.Value); ok && IsStale(parsed, p.now()) {
			rec.Date = model.Missing
			rec.StaleDateFiltered = true
			dateEvidence = model.StaleDateEvidence
			log.Debug("pipeline: stale date filtered", zap.String("date", fields.Date.Value))
		}
	}

	rec.Evidence = map[string]string{
		"date":                dateEvidence,
		"capitalAmount":       fields.CapitalAmount.EvidenceOrMissing(),
		"sector":              fields.Sector.EvidenceOrMissing(),
		"geography":           fields.Geography.EvidenceOrMissing(),
		"mandateLanguage":     fields.MandateLanguage.EvidenceOrMissing(),
		"leadershipStatement": fields.LeadershipStatement.EvidenceOrMissing(),
	}

	rec.SignalScore = SignalScore(&rec)

	rec.FieldProvenance = make(map[string]model.Provenance, len(model.SignalFields))
	for _, f := range model.SignalFields {
		rec.FieldProvenance[f] = ClassifyProvenance(rec.FieldValue(f), fetched.OK, search.OK)
	}
	rec.OverallConfidence = RollupConfidence(rec.FieldProvenance)
	rec.ComputeMissingInputs()

	log.Info("pipeline: buyer processed",
		zap.String("fetch_status", rec.FetchStatus),
		zap.String("brave_status", rec.BraveStatus),
		zap.Float64("signal_score", rec.SignalScore),
		zap.Int("urgency", rec.UrgencyIndicator),
		zap.Int("missing", len(rec.MissingInputs)),
	)
	return rec
}
