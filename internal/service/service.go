// Package service orchestrates ingestion, summarisation, and caching behind
// one façade shared by the CLI commands and the batch workers.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/openconsult/consultsum/internal/cache"
	"github.com/openconsult/consultsum/internal/ingest"
	"github.com/openconsult/consultsum/internal/llm"
	"github.com/openconsult/consultsum/internal/model"
	"github.com/openconsult/consultsum/internal/summarise"
)

// Service wires the configured provider and cache around the prepared
// dataset. Safe for concurrent use: the dataset loads once and is read-only
// afterwards, and summary calls share nothing.
type Service struct {
	cfg      *model.Config
	provider llm.Provider
	store    cache.Cache

	prepareOnce sync.Once
	prepared    model.PreparedData
	prepareErr  error
}

// New creates a service. store may be nil when caching is disabled.
func New(cfg *model.Config, provider llm.Provider, store cache.Cache) *Service {
	return &Service{cfg: cfg, provider: provider, store: store}
}

// Prepared lazily loads and preprocesses the source CSV once per service
// instance.
func (s *Service) Prepared() (model.PreparedData, error) {
	s.prepareOnce.Do(func() {
		data, err := ingest.LoadCSV(s.cfg.Data.CSVPath)
		if err != nil {
			s.prepareErr = err
			return
		}
		s.prepared, s.prepareErr = ingest.PrepareData(data, s.cfg.Data.ExcerptChars, s.cfg.Data.SectionMappingPath)
	})
	return s.prepared, s.prepareErr
}

// ListOrganisations returns selectable organisation options.
func (s *Service) ListOrganisations() ([]ingest.Option, error) {
	prepared, err := s.Prepared()
	if err != nil {
		return nil, err
	}
	return ingest.Organisations(prepared), nil
}

// ListQuestions returns selectable question options.
func (s *Service) ListQuestions() ([]ingest.Option, error) {
	prepared, err := s.Prepared()
	if err != nil {
		return nil, err
	}
	return ingest.QuestionOptions(prepared), nil
}

// SummariseOrganisation generates or loads a cached per-organisation summary.
func (s *Service) SummariseOrganisation(ctx context.Context, responseID string, useCache bool) (*model.OrganisationSummary, error) {
	prepared, err := s.Prepared()
	if err != nil {
		return nil, err
	}

	key := s.cacheKey("approach_1", responseID)
	if useCache {
		var cached model.OrganisationSummary
		if s.cacheGet(key, &cached) {
			s.logVerbose("Cache hit for organisation %s\n", responseID)
			return &cached, nil
		}
	}

	catalog, err := ingest.CatalogFor(prepared, responseID)
	if err != nil {
		return nil, err
	}

	result, err := summarise.Organisation(ctx, s.provider, s.cfg, catalog)
	if err != nil {
		return nil, err
	}

	s.cacheSet(key, result)
	return result, nil
}

// SummariseQuestion generates or loads a cached per-question summary.
func (s *Service) SummariseQuestion(ctx context.Context, questionID string, useCache bool) (*model.QuestionSummary, error) {
	prepared, err := s.Prepared()
	if err != nil {
		return nil, err
	}

	key := s.cacheKey("approach_2", questionID)
	if useCache {
		var cached model.QuestionSummary
		if s.cacheGet(key, &cached) {
			s.logVerbose("Cache hit for question %s\n", questionID)
			return &cached, nil
		}
	}

	slice, err := ingest.SliceFor(prepared, questionID)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	for _, item := range prepared.Items {
		seen[item.ResponseID] = struct{}{}
	}

	result := summarise.Question(ctx, s.provider, s.cfg, slice, len(seen))
	s.cacheSet(key, result)
	return result, nil
}

func (s *Service) cacheKey(approach, targetID string) string {
	return cache.Key(approach, targetID, s.cfg.LLM.ModelIdentity(), fingerprint(s.cfg.Data.CSVPath))
}

func (s *Service) cacheGet(key string, out any) bool {
	if s.store == nil {
		return false
	}
	raw, found := s.store.Get(key)
	if !found {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// A corrupt entry reads as a miss and gets overwritten.
		return false
	}
	return true
}

func (s *Service) cacheSet(key string, value any) {
	if s.store == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.store.Set(key, raw, s.cfg.Cache.MemoryTTL); err != nil {
		fmt.Printf("Warning: failed to cache summary: %v\n", err)
	}
}

func (s *Service) logVerbose(format string, args ...any) {
	if s.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// fingerprint ties cache keys to the source dataset state so entries go
// stale the moment the file changes.
func fingerprint(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "unknown"
	}

	raw := fmt.Sprintf("%s|%d|%d", abs, info.Size(), info.ModTime().Unix())
	hash := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(hash[:])[:16]
}
