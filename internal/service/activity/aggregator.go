// Package activity derives the activity feed from domain events.
package activity

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/service/versionchain"
)

// Aggregator implements services.ActivityService and consumes bus events.
type Aggregator struct {
	posts  repositories.ActivityRepository
	locker *versionchain.Locker
	logger *slog.Logger
}

var _ services.ActivityService = (*Aggregator)(nil)

// NewAggregator creates a new activity aggregator
func NewAggregator(posts repositories.ActivityRepository, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		posts:  posts,
		locker: versionchain.NewLocker(),
		logger: logger,
	}
}

// DocumentKey is the replay key for a post about one document version
func DocumentKey(documentID string, version int) string {
	return fmt.Sprintf("document:%s:v%d", documentID, version)
}

// RecordEvent stores a feed post, returning the earlier post if the event was already recorded.
func (a *Aggregator) RecordEvent(ctx context.Context, req *services.RecordEventRequest) (*models.ActivityPost, error) {
	if err := validateRecordEventRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	key := req.DedupKey
	if key == "" && req.DocumentID != nil && req.DocumentVersion != nil {
		key = DocumentKey(*req.DocumentID, *req.DocumentVersion)
	}

	if key != "" {
		existing, err := a.posts.GetByDedupKey(ctx, key)
		if err == nil {
			a.logger.Debug("activity replay ignored", "dedup_key", key, "post_id", existing.ID)
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	createdAt := req.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	post := &models.ActivityPost{
		PostFields: models.PostFields{
			ID:              "activity-" + uuid.NewString(),
			Type:            req.Type,
			Title:           strings.TrimSpace(req.Title),
			Description:     req.Description,
			Content:         req.Content,
			ClientID:        req.ClientID,
			DocumentID:      req.DocumentID,
			DocumentVersion: req.DocumentVersion,
			QueryID:         req.QueryID,
			TemplateID:      req.TemplateID,
			CreatedAt:       createdAt,
		},
		Flags:         slices.Clone(req.Flags),
		Opportunities: slices.Clone(req.Opportunities),
		DedupKey:      key,
	}

	if err := a.posts.Create(ctx, post); err != nil {
		// lost a race with a concurrent replay of the same event
		if key != "" && errors.Is(err, domain.ErrConflict) {
			return a.posts.GetByDedupKey(ctx, key)
		}
		return nil, err
	}

	a.logger.Info("activity recorded",
		"id", post.ID,
		"type", post.Type,
		"client_id", post.ClientID,
		"dedup_key", key,
	)
	return post, nil
}

// AttachThread appends a reply to a top-level post
func (a *Aggregator) AttachThread(ctx context.Context, req *services.AttachThreadRequest) (*models.ActivityPost, error) {
	if err := validateAttachThreadRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	unlock := a.locker.Lock(req.ParentID)
	defer unlock()

	parent, err := a.posts.Get(ctx, req.ParentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrParentNotFound, req.ParentID)
		}
		return nil, err
	}

	parent.ThreadPosts = append(parent.ThreadPosts, models.ThreadPost{
		PostFields: models.PostFields{
			ID:          "thread-" + uuid.NewString(),
			Type:        req.Type,
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Content:     req.Content,
			ClientID:    parent.ClientID,
			DocumentID:  req.DocumentID,
			QueryID:     req.QueryID,
			TemplateID:  req.TemplateID,
			CreatedAt:   time.Now().UTC(),
		},
		Author: req.Author,
	})

	if err := a.posts.Update(ctx, parent); err != nil {
		return nil, err
	}

	a.logger.Info("thread post attached", "parent_id", parent.ID, "thread_len", len(parent.ThreadPosts))
	return parent, nil
}

// ListFeed yields posts newest-first; posts created at the same instant keep insertion order.
// Each range over the returned sequence reads a fresh snapshot of the store.
func (a *Aggregator) ListFeed(ctx context.Context, filter models.FeedFilter) iter.Seq2[models.ActivityPost, error] {
	return func(yield func(models.ActivityPost, error) bool) {
		posts, err := a.posts.List(ctx, filter)
		if err != nil {
			yield(models.ActivityPost{}, err)
			return
		}

		slices.SortStableFunc(posts, func(x, y models.ActivityPost) int {
			return y.CreatedAt.Compare(x.CreatedAt)
		})

		for i, p := range posts {
			if filter.Limit > 0 && i >= filter.Limit {
				return
			}
			if err := ctx.Err(); err != nil {
				yield(models.ActivityPost{}, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

// Collect drains a feed sequence into a slice
func Collect(seq iter.Seq2[models.ActivityPost, error]) ([]models.ActivityPost, error) {
	out := []models.ActivityPost{}
	for p, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

var activityTypes = []any{
	models.ActivityInitialDraft,
	models.ActivityFirstTurn,
	models.ActivityNegotiationTurn,
	models.ActivityLegalQuery,
	models.ActivityExecutedDocument,
	models.ActivityTemplateUsed,
	models.ActivityDraftSent,
	models.ActivityTurnReceived,
	models.ActivityCancelled,
	models.ActivityQueryAnswered,
}

func validateRecordEventRequest(req *services.RecordEventRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Type, validation.Required, validation.In(activityTypes...)),
		validation.Field(&req.Title, validation.Required),
		validation.Field(&req.ClientID, validation.Required),
	)
}

func validateAttachThreadRequest(req *services.AttachThreadRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ParentID, validation.Required),
		validation.Field(&req.Type, validation.Required, validation.In(activityTypes...)),
		validation.Field(&req.Title, validation.Required),
	)
}
