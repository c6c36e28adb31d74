package eligibility

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/solventa/promo-api/internal/models"
	"github.com/solventa/promo-api/internal/repository"
)

// Rand is the random source used for decay draws and the final pick. Tests
// inject a deterministic implementation.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Engine decides which notification, if any, a visitor session should see on
// a given page or content item, and records the resulting view.
type Engine interface {
	SelectForPage(ctx context.Context, page models.Page, sessionID string) *models.Notification
	SelectForContent(ctx context.Context, contentType string, contentID int64, sessionID string) *models.Notification
}

type engine struct {
	notifications repository.NotificationRepository
	views         repository.ViewRepository
	logger        zerolog.Logger
	rng           Rand
}

// Option configures the engine.
type Option func(*engine)

// WithRand replaces the default random source.
func WithRand(r Rand) Option {
	return func(e *engine) {
		e.rng = r
	}
}

func NewEngine(notifications repository.NotificationRepository, views repository.ViewRepository, logger zerolog.Logger, opts ...Option) Engine {
	e := &engine{
		notifications: notifications,
		views:         views,
		logger:        logger.With().Str("component", "eligibility_engine").Logger(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ShowProbability is the decay formula: the chance that a notification with
// the given view count and per-session maximum survives a randomized draw.
// It is 1 before the first view and decreases linearly toward the cap, which
// itself is enforced unconditionally before any draw.
func ShowProbability(count, max int) float64 {
	if max <= 0 || count >= max {
		return 0
	}
	if count <= 0 {
		return 1
	}
	return 1 - float64(count)/float64(max)
}

// SelectForPage answers "which notification should be shown on this page to
// this session right now". Store failures are logged and reported as no
// notification; a promotional popup is never allowed to break page rendering.
func (e *engine) SelectForPage(ctx context.Context, page models.Page, sessionID string) *models.Notification {
	return e.selectFrom(ctx, sessionID, func(n *models.Notification) bool {
		return n.TargetScope == models.TargetScopePages && n.ShowOnPages.For(page)
	})
}

// SelectForContent is the narrower lookup for notifications targeting
// specific content items rather than whole pages.
func (e *engine) SelectForContent(ctx context.Context, contentType string, contentID int64, sessionID string) *models.Notification {
	return e.selectFrom(ctx, sessionID, func(n *models.Notification) bool {
		return n.TargetsContent(contentType, contentID)
	})
}

func (e *engine) selectFrom(ctx context.Context, sessionID string, matches func(*models.Notification) bool) *models.Notification {
	active, err := e.notifications.ListActive(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to load active notifications; suppressing popup")
		return nil
	}

	var candidates []models.Notification
	for i := range active {
		notif := &active[i]
		if !matches(notif) {
			continue
		}
		eligible, err := e.eligible(ctx, notif, sessionID)
		if err != nil {
			e.logger.Error().Err(err).Int64("notification_id", notif.ID).Msg("failed to evaluate throttling; suppressing popup")
			return nil
		}
		if eligible {
			candidates = append(candidates, *notif)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Flat pick among survivors, not weighted by count or recency.
	chosen := candidates[e.rng.Intn(len(candidates))]

	if err := e.views.RecordView(ctx, sessionID, chosen.ID); err != nil {
		e.logger.Error().Err(err).Int64("notification_id", chosen.ID).Msg("failed to record view; suppressing popup")
		return nil
	}

	e.logger.Debug().
		Int64("notification_id", chosen.ID).
		Str("session_id", sessionID).
		Int("candidates", len(candidates)).
		Msg("notification selected")
	return &chosen
}

// eligible applies the throttling predicate for one candidate.
func (e *engine) eligible(ctx context.Context, n *models.Notification, sessionID string) (bool, error) {
	if !n.LimitShows {
		return true, nil
	}
	count, err := e.views.GetCount(ctx, sessionID, n.ID)
	if err != nil {
		return false, err
	}
	if count == 0 {
		return true, nil
	}
	if count >= n.MaxShowsPerSession {
		// Hard cap, independent of randomization.
		return false, nil
	}
	if !n.ShowRandomly {
		return true, nil
	}
	return e.rng.Float64() < ShowProbability(count, n.MaxShowsPerSession), nil
}
