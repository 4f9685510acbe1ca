package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"inventory-backoffice/internal/composer"
	"inventory-backoffice/internal/domain"
	"inventory-backoffice/internal/eventbus"
	"inventory-backoffice/internal/navigation"
	"inventory-backoffice/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultSessionTTL is how long an untouched composition session is kept
	DefaultSessionTTL = 2 * time.Hour
)

var (
	ErrSessionNotFound = errors.New("sale composition session not found")
)

// CompositionSession is one open sale-composition screen.
// The engine is owned exclusively by the session.
type CompositionSession struct {
	ID        uuid.UUID
	Engine    *composer.Engine
	Navigator *navigation.Recorder
	CreatedAt time.Time

	lastUsed time.Time
}

// CompositionService defines the interface for sale composition sessions
type CompositionService interface {
	Start(ctx context.Context) (*CompositionSession, error)
	Get(id uuid.UUID) (*CompositionSession, error)
	Submit(ctx context.Context, id uuid.UUID) (*domain.Sale, *CompositionSession, error)
	Discard(id uuid.UUID) error
}

// CompositionConfig tunes session lifetime and engine policies
type CompositionConfig struct {
	SessionTTL     time.Duration
	StockPolicy    composer.StockPolicy
	DiscountPolicy composer.DiscountPolicy
}

type compositionService struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*CompositionSession

	productRepo repository.ProductRepository
	creator     composer.ResourceCreator
	publisher   eventbus.Publisher
	config      CompositionConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewCompositionService creates a new instance of CompositionService
func NewCompositionService(
	productRepo repository.ProductRepository,
	creator composer.ResourceCreator,
	publisher eventbus.Publisher,
	config CompositionConfig,
	logger *zap.Logger,
) CompositionService {
	if config.SessionTTL <= 0 {
		config.SessionTTL = DefaultSessionTTL
	}

	return &compositionService{
		sessions:    make(map[uuid.UUID]*CompositionSession),
		productRepo: productRepo,
		creator:     creator,
		publisher:   publisher,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// Start loads the product snapshot and opens a session with an empty draft
func (s *compositionService) Start(ctx context.Context) (*CompositionSession, error) {
	snapshot, err := s.productRepo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start sale composition: %w", err)
	}

	recorder := navigation.NewRecorder("")
	engine := composer.New(
		snapshot,
		s.creator,
		recorder,
		s.logger,
		composer.WithStockPolicy(s.config.StockPolicy),
		composer.WithDiscountPolicy(s.config.DiscountPolicy),
	)

	now := s.now()
	session := &CompositionSession{
		ID:        uuid.New(),
		Engine:    engine,
		Navigator: recorder,
		CreatedAt: now,
		lastUsed:  now,
	}

	s.mu.Lock()
	s.evictExpiredLocked(now)
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("Sale composition started",
		zap.String("session_id", session.ID.String()),
		zap.Int("products", len(snapshot)),
	)

	return session, nil
}

// Get returns an open session and marks it as used
func (s *compositionService) Get(id uuid.UUID) (*CompositionSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpiredLocked(now)

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.lastUsed = now
	return session, nil
}

// Submit submits the session's draft. On success the session is closed and a
// sale-submitted event is published; publish failures are only logged.
func (s *compositionService) Submit(ctx context.Context, id uuid.UUID) (*domain.Sale, *CompositionSession, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}

	sale, err := session.Engine.Submit(ctx)
	if err != nil {
		return nil, session, err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	event := eventbus.NewSaleSubmittedEvent(sale, s.now())
	if err := s.publisher.PublishSaleSubmitted(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("Failed to publish sale submitted event",
			zap.Int64("sale_id", sale.ID),
			zap.Error(err),
		)
	}

	return sale, session, nil
}

// Discard abandons the session's draft and closes the session
func (s *compositionService) Discard(id uuid.UUID) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	session.Engine.Discard()
	s.logger.Info("Sale composition discarded", zap.String("session_id", id.String()))
	return nil
}

// evictExpiredLocked discards sessions idle for longer than the TTL.
// Sessions with a submission in flight are kept.
func (s *compositionService) evictExpiredLocked(now time.Time) {
	for id, session := range s.sessions {
		if now.Sub(session.lastUsed) <= s.config.SessionTTL {
			continue
		}
		if session.Engine.State() == composer.StateSubmitting {
			continue
		}
		session.Engine.Discard()
		delete(s.sessions, id)
		s.logger.Info("Sale composition expired", zap.String("session_id", id.String()))
	}
}
