package query

import (
	"context"
	"fmt"
	"log/slog"

	"observatory/app/cache"
	"observatory/app/stories"
	"observatory/app/values"
)

// Pipeline runs the derived row stages in order, memoizing every stage output
// under a key made of the row-set fingerprint and the chained stage keys.
type Pipeline struct {
	stages      []PipelineStage
	cache       *cache.Cache
	fingerprint string
	cacheConfig CacheConfig
}

// NewPipeline creates a pipeline over the row set identified by fingerprint.
// A nil cache disables memoization.
func NewPipeline(fingerprint string, c *cache.Cache, config CacheConfig) *Pipeline {
	return &Pipeline{
		fingerprint: fingerprint,
		cache:       c,
		cacheConfig: config,
	}
}

// AddStage adds a pipeline stage
func (p *Pipeline) AddStage(stage PipelineStage) {
	p.stages = append(p.stages, stage)
}

// Stages returns a copy of the pipeline stages
func (p *Pipeline) Stages() []PipelineStage {
	stages := make([]PipelineStage, len(p.stages))
	copy(stages, p.stages)
	return stages
}

func (p *Pipeline) cacheEnabled() bool {
	return p.cache != nil && p.cacheConfig.EnableStageCache && p.fingerprint != ""
}

// Execute runs the pipeline over rows
func (p *Pipeline) Execute(ctx context.Context, rows []Row) (*Result, error) {
	current := &StageResult{Rows: rows}

	if p.cacheEnabled() {
		fullKey := BuildCacheKey(p.fingerprint, p.stages)
		if entry, found := p.cache.Get(fullKey); found {
			slog.Debug("pipeline cache hit", "key", fullKey, "rows", len(entry.Result.Rows))
			res := entry.Result
			return newResult(&res, true), nil
		}
	}

	cached := false
	executed := make([]PipelineStage, 0, len(p.stages))
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		executed = append(executed, stage)
		stageKey := BuildCacheKey(p.fingerprint, executed)

		if p.cacheEnabled() && stage.CanCache() {
			if entry, found := p.cache.Get(stageKey); found {
				slog.Debug("stage cache hit", "stage", stage.Name(), "key", stageKey, "rows", len(entry.Result.Rows))
				res := entry.Result
				current = &res
				cached = true
				continue
			}
		}

		out, err := stage.Execute(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("stage %s failed: %w", stage.Name(), err)
		}
		cached = false

		if p.cacheEnabled() && stage.CanCache() {
			p.cache.Store(stageKey, out)
			slog.Debug("stage cached", "stage", stage.Name(), "key", stageKey, "rows", len(out.Rows))
		}
		current = out
	}

	return newResult(current, cached), nil
}

func newResult(r *StageResult, cached bool) *Result {
	res := &Result{
		Rows:          r.Rows,
		FilteredCount: len(r.Rows),
		TotalPages:    1,
		Page:          1,
		PageSize:      len(r.Rows),
		Cached:        cached,
	}
	if r.Paged {
		res.FilteredCount = r.FilteredCount
		res.TotalPages = r.TotalPages
		res.Page = r.Page
		res.PageSize = r.PageSize
	}
	if res.Rows == nil {
		res.Rows = []Row{}
	}
	return res
}

// PipelineBuilder helps construct the derived row pipeline in its fixed order
type PipelineBuilder struct {
	pipeline *Pipeline
}

// NewPipelineBuilder creates a new pipeline builder
func NewPipelineBuilder(fingerprint string, c *cache.Cache, config CacheConfig) *PipelineBuilder {
	return &PipelineBuilder{pipeline: NewPipeline(fingerprint, c, config)}
}

// AddQuickFilter adds the quick filter stage
func (b *PipelineBuilder) AddQuickFilter(id string, logic stories.Logic) *PipelineBuilder {
	b.pipeline.AddStage(NewQuickFilterStage(id, logic))
	return b
}

// AddColumnFilters adds the column filter stage
func (b *PipelineBuilder) AddColumnFilters(filters map[string]ValueSet) *PipelineBuilder {
	b.pipeline.AddStage(NewColumnFilterStage(filters))
	return b
}

// AddSort adds the sort stage
func (b *PipelineBuilder) AddSort(cfg SortConfig, cmp *values.Comparator) *PipelineBuilder {
	b.pipeline.AddStage(NewSortStage(cfg, cmp))
	return b
}

// AddPage adds the page stage
func (b *PipelineBuilder) AddPage(page, pageSize int) *PipelineBuilder {
	b.pipeline.AddStage(NewPageStage(page, pageSize))
	return b
}

// Build returns the constructed pipeline
func (b *PipelineBuilder) Build() *Pipeline {
	return b.pipeline
}
