// Package query runs AI-assisted legal queries through pluggable analyzers.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"lexdesk/internal/capabilities"
	"lexdesk/internal/config"
	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/events"
	"lexdesk/internal/service/versionchain"
)

// Options bounds background analysis
type Options struct {
	Timeout     time.Duration
	Concurrency int64
}

// Service implements services.QueryService.
// Background analyses run on their own context; Close cancels them and waits.
type Service struct {
	queries   repositories.QueryRepository
	clients   repositories.ClientRepository
	analyzer  services.Analyzer
	catalogue *capabilities.Registry
	bus       events.Bus
	locker    *versionchain.Locker
	logger    *slog.Logger

	timeout time.Duration
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
	baseCtx context.Context
	cancel  context.CancelFunc
}

var _ services.QueryService = (*Service)(nil)

// NewService creates a new query service
func NewService(
	queries repositories.QueryRepository,
	clients repositories.ClientRepository,
	analyzer services.Analyzer,
	catalogue *capabilities.Registry,
	bus events.Bus,
	opts Options,
	logger *slog.Logger,
) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		queries:   queries,
		clients:   clients,
		analyzer:  analyzer,
		catalogue: catalogue,
		bus:       bus,
		locker:    versionchain.NewLocker(),
		logger:    logger,
		timeout:   opts.Timeout,
		sem:       semaphore.NewWeighted(opts.Concurrency),
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// SubmitQuery stores a pending query and analyzes it in the background
func (s *Service) SubmitQuery(ctx context.Context, req *services.SubmitQueryRequest) (*models.LegalQuery, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Model == "" {
		req.Model = s.catalogue.Default().ID
	}
	if err := s.validateSubmitQueryRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	client, err := s.clients.Get(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	attachments := req.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	q := &models.LegalQuery{
		ID:           "query-" + uuid.NewString(),
		ClientID:     client.ID,
		ClientName:   client.Name,
		Prompt:       req.Prompt,
		Topic:        req.Topic,
		Model:        req.Model,
		Tags:         []string{},
		Attachments:  attachments,
		Sections:     models.QuerySections{Issues: []string{}, ClausesToWatch: []string{}},
		Status:       models.QueryStatusPending,
		CreatedAt:    time.Now().UTC(),
		VersionStamp: 1,
	}
	if err := s.queries.Create(ctx, q); err != nil {
		return nil, err
	}

	s.logger.Info("query submitted", "id", q.ID, "client_id", q.ClientID, "model", q.Model, "topic", q.Topic)
	s.publish(ctx, events.TopicQuerySubmitted, q, "")

	s.wg.Add(1)
	go func(id string) {
		defer s.wg.Done()
		if err := s.sem.Acquire(s.baseCtx, 1); err != nil {
			return
		}
		defer s.sem.Release(1)

		if _, err := s.analyze(s.baseCtx, id); err != nil {
			s.logger.Warn("background analysis failed", "query_id", id, "error", err)
		}
	}(q.ID)

	return q, nil
}

// GetQuery retrieves a query by ID
func (s *Service) GetQuery(ctx context.Context, id string) (*models.LegalQuery, error) {
	return s.queries.Get(ctx, id)
}

// ListQueries lists queries matching the filter
func (s *Service) ListQueries(ctx context.Context, filter models.QueryFilter) ([]models.LegalQuery, error) {
	return s.queries.List(ctx, filter)
}

// AnalyzeQuery runs analysis for a pending query within the caller's context.
// The configured timeout covers the wait for a free analysis slot as well as the analysis.
func (s *Service) AnalyzeQuery(ctx context.Context, id string) (*models.LegalQuery, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	q, err := s.queries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != models.QueryStatusPending {
		return nil, fmt.Errorf("%w: query %s is %s", domain.ErrInvalidTransition, id, q.Status)
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrQueryTimeout, id)
	}
	defer s.sem.Release(1)

	return s.analyze(ctx, id)
}

// analyze runs the analyzer and completes the query.
// Timeouts and failures leave the query pending and untouched.
func (s *Service) analyze(ctx context.Context, id string) (*models.LegalQuery, error) {
	q, err := s.queries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != models.QueryStatusPending {
		return q, nil
	}

	actx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	analysis, err := s.analyzer.Analyze(actx, &services.AnalysisRequest{
		QueryID:    q.ID,
		ClientName: q.ClientName,
		Prompt:     q.Prompt,
		Topic:      q.Topic,
		Model:      q.Model,
	})
	if err != nil {
		if actx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %s", domain.ErrQueryTimeout, id)
		}
		s.publish(context.WithoutCancel(ctx), events.TopicQueryFailed, q, err.Error())
		return nil, err
	}

	unlock := s.locker.Lock(id)
	done, err := s.completeLocked(ctx, id, analysis)
	unlock()
	if err != nil {
		return nil, err
	}
	if done.Status != models.QueryStatusCompleted {
		// archived while the analyzer was running
		s.logger.Info("analysis discarded", "query_id", id, "status", done.Status)
		return done, nil
	}

	s.logger.Info("query analyzed", "id", id, "model", done.Model, "duration", time.Since(start))
	s.publish(ctx, events.TopicQueryCompleted, done, "")
	return done, nil
}

func (s *Service) completeLocked(ctx context.Context, id string, a *models.Analysis) (*models.LegalQuery, error) {
	q, err := s.queries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != models.QueryStatusPending {
		return q, nil
	}

	now := time.Now().UTC()
	q.Sections = a.Sections
	q.FullAnswer = a.FullAnswer
	q.Tags = a.Tags
	q.Status = models.QueryStatusCompleted
	q.CompletedAt = &now
	q.VersionStamp++

	if err := s.queries.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ArchiveQuery moves a pending or completed query to archived
func (s *Service) ArchiveQuery(ctx context.Context, id string, ifMatch *int64) (*models.LegalQuery, error) {
	unlock := s.locker.Lock(id)
	q, err := s.archiveLocked(ctx, id, ifMatch)
	unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Info("query archived", "id", id)
	s.publish(ctx, events.TopicQueryArchived, q, "")
	return q, nil
}

func (s *Service) archiveLocked(ctx context.Context, id string, ifMatch *int64) (*models.LegalQuery, error) {
	q, err := s.queries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVersionStamp(q.ID, q.VersionStamp, ifMatch); err != nil {
		return nil, err
	}
	if q.Status == models.QueryStatusArchived {
		return nil, fmt.Errorf("%w: query %s is already archived", domain.ErrInvalidTransition, id)
	}

	q.Status = models.QueryStatusArchived
	q.VersionStamp++
	if err := s.queries.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ListModels returns the selectable analysis models
func (s *Service) ListModels() []models.ModelOption {
	return s.catalogue.List()
}

// Wait blocks until every background analysis has finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels background analyses and waits for them to return
func (s *Service) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

func (s *Service) publish(ctx context.Context, topic events.Topic, q *models.LegalQuery, errMsg string) {
	e := events.New(topic, q.ID, events.QueryPayload{Query: q.Clone(), Error: errMsg})
	s.bus.Publish(ctx, e)
}

func (s *Service) validateSubmitQueryRequest(req *services.SubmitQueryRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ClientID, validation.Required),
		validation.Field(&req.Prompt,
			validation.Required,
			validation.Length(1, config.MaxPromptLength),
		),
		validation.Field(&req.Topic,
			validation.Required,
			validation.Length(1, config.MaxTopicLength),
		),
		validation.Field(&req.Model, validation.Required, validation.By(s.knownModel)),
	)
}

func (s *Service) knownModel(value any) error {
	id, _ := value.(string)
	if _, ok := s.catalogue.Get(id); !ok {
		return fmt.Errorf("unknown model %q", id)
	}
	return nil
}
