package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-client/internal/auth"
	"github.com/spec-kit/helpdesk-client/internal/domain"
	"github.com/spec-kit/helpdesk-client/internal/events"
	"github.com/spec-kit/helpdesk-client/internal/observability"
	"github.com/spec-kit/helpdesk-client/internal/persistence"
	"github.com/spec-kit/helpdesk-client/internal/remote"
	"github.com/spec-kit/helpdesk-client/internal/store"
)

// Session is the explicit per-login context: the actor, the coordinator,
// and the reference-data cache. Constructed at login, passed by handle to
// callers, invalidated by Close. Nothing here is ambient global state.
type Session struct {
	grant       *auth.Grant
	coordinator *Coordinator
	refdata     *store.ReferenceData
	logger      *zap.Logger
}

// Options bundles session collaborators. Snapshots and Dispatcher may be
// nil.
type Options struct {
	Remote      remote.Service
	Snapshots   *persistence.Redis
	SnapshotTTL time.Duration
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// Open starts a session for an authenticated grant.
func Open(grant *auth.Grant, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		grant: grant,
		coordinator: NewCoordinator(CoordinatorDependencies{
			Remote:     opts.Remote,
			Dispatcher: opts.Dispatcher,
			Metrics:    opts.Metrics,
			Logger:     logger,
		}),
		refdata: store.NewReferenceData(opts.Remote, opts.Snapshots, opts.SnapshotTTL, opts.Dispatcher, logger),
		logger:  logger,
	}
}

// Actor returns the session's authenticated actor.
func (s *Session) Actor() domain.Actor {
	return s.grant.Actor
}

// Coordinator returns the ticket lifecycle coordinator.
func (s *Session) Coordinator() *Coordinator {
	return s.coordinator
}

// Reference returns the reference-data cache.
func (s *Session) Reference() *store.ReferenceData {
	return s.refdata
}

// Expired reports whether the grant has lapsed.
func (s *Session) Expired(now time.Time) bool {
	return s.grant.Expired(now)
}

// Close invalidates all session-scoped caches, as on logout.
func (s *Session) Close() {
	s.coordinator.reset()
	s.refdata.Invalidate()
	s.logger.Info("session closed", zap.String("actor_id", s.grant.Actor.ID))
}
