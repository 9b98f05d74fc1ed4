package worker

import (
	"context"

	"github.com/openconsult/consultsum/internal/model"
)

// Summariser is the subset of the service layer the batch runner needs.
type Summariser interface {
	SummariseOrganisation(ctx context.Context, responseID string, useCache bool) (*model.OrganisationSummary, error)
	SummariseQuestion(ctx context.Context, questionID string, useCache bool) (*model.QuestionSummary, error)
}

// OrganisationJob summarises one organisation
type OrganisationJob struct {
	ResponseID string
	Service    Summariser
	UseCache   bool
	Limiter    *Limiter
}

// Execute executes the summary job
func (j *OrganisationJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx); err != nil {
			return &OrganisationResult{ResponseID: j.ResponseID, Error: err}
		}
	}

	summary, err := j.Service.SummariseOrganisation(ctx, j.ResponseID, j.UseCache)
	return &OrganisationResult{ResponseID: j.ResponseID, Summary: summary, Error: err}
}

// OrganisationResult represents the result of an organisation summary job
type OrganisationResult struct {
	ResponseID string
	Summary    *model.OrganisationSummary
	Error      error
}

// GetError returns the error from the result
func (r *OrganisationResult) GetError() error {
	return r.Error
}

// QuestionJob summarises one question
type QuestionJob struct {
	QuestionID string
	Service    Summariser
	UseCache   bool
	Limiter    *Limiter
}

// Execute executes the summary job
func (j *QuestionJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx); err != nil {
			return &QuestionResult{QuestionID: j.QuestionID, Error: err}
		}
	}

	summary, err := j.Service.SummariseQuestion(ctx, j.QuestionID, j.UseCache)
	return &QuestionResult{QuestionID: j.QuestionID, Summary: summary, Error: err}
}

// QuestionResult represents the result of a question summary job
type QuestionResult struct {
	QuestionID string
	Summary    *model.QuestionSummary
	Error      error
}

// GetError returns the error from the result
func (r *QuestionResult) GetError() error {
	return r.Error
}

// BatchProcessor runs many summary jobs concurrently with shared request
// pacing. Cached hits also pass through the limiter; the simplicity is worth
// the occasional wasted token.
type BatchProcessor struct {
	service  Summariser
	workers  int
	limiter  *Limiter
	useCache bool
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(service Summariser, cfg model.ConcurrencyConfig, useCache bool) *BatchProcessor {
	return &BatchProcessor{
		service:  service,
		workers:  cfg.Workers,
		limiter:  NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		useCache: useCache,
	}
}

// ProcessOrganisations summarises multiple organisations concurrently
func (b *BatchProcessor) ProcessOrganisations(ctx context.Context, responseIDs []string) []*OrganisationResult {
	if len(responseIDs) == 0 {
		return []*OrganisationResult{}
	}

	pool := NewSizedPool(ctx, b.workers, len(responseIDs))
	pool.Start()

	for _, id := range responseIDs {
		pool.Submit(&OrganisationJob{
			ResponseID: id,
			Service:    b.service,
			UseCache:   b.useCache,
			Limiter:    b.limiter,
		})
	}

	results := pool.Wait()

	out := make([]*OrganisationResult, len(results))
	for i, result := range results {
		out[i] = result.(*OrganisationResult)
	}
	return out
}

// ProcessQuestions summarises multiple questions concurrently
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questionIDs []string) []*QuestionResult {
	if len(questionIDs) == 0 {
		return []*QuestionResult{}
	}

	pool := NewSizedPool(ctx, b.workers, len(questionIDs))
	pool.Start()

	for _, id := range questionIDs {
		pool.Submit(&QuestionJob{
			QuestionID: id,
			Service:    b.service,
			UseCache:   b.useCache,
			Limiter:    b.limiter,
		})
	}

	results := pool.Wait()

	out := make([]*QuestionResult, len(results))
	for i, result := range results {
		out[i] = result.(*QuestionResult)
	}
	return out
}
