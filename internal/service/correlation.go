package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"netograph/internal/correlate"
	"netograph/internal/domain"
	"netograph/internal/repository"
)

// CorrelationService runs correlation passes. Passes are serialized:
// two concurrent triggers queue behind the mutex rather than racing on
// the same host rows, and each pass runs inside one transaction so a
// failing phase persists nothing.
type CorrelationService struct {
	store    repository.Store
	tx       repository.TxRunner
	eventBus *EventBus

	mu sync.Mutex
}

// NewCorrelationService creates the correlation service
func NewCorrelationService(store repository.Store, tx repository.TxRunner, eventBus *EventBus) *CorrelationService {
	return &CorrelationService{store: store, tx: tx, eventBus: eventBus}
}

// Correlate runs one full correlation pass
func (s *CorrelationService) Correlate(ctx context.Context) (*correlate.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *correlate.Result
	err := s.tx.InTx(ctx, func(store repository.Store) error {
		var runErr error
		result, runErr = correlate.New(store).Run(ctx)
		return runErr
	})
	if err != nil {
		return nil, fmt.Errorf("correlation pass: %w", err)
	}

	s.eventBus.Publish(Event{Type: EventCorrelationCompleted, Payload: result})
	if result.ConflictsDetected > 0 {
		conflicts, err := s.store.ListConflicts(ctx, true)
		if err != nil {
			log.Printf("Failed to list conflicts after pass: %v", err)
		} else {
			s.eventBus.Publish(Event{Type: EventConflictDetected, Payload: conflicts})
		}
	}
	return result, nil
}

// MergeHosts merges one host into another on operator request
func (s *CorrelationService) MergeHosts(ctx context.Context, primaryID, secondaryID string) (*domain.Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.tx.InTx(ctx, func(store repository.Store) error {
		return correlate.New(store).MergeHosts(ctx, primaryID, secondaryID)
	})
	if err != nil {
		return nil, fmt.Errorf("merge %s into %s: %w", secondaryID, primaryID, err)
	}

	merged, err := s.store.GetHost(ctx, primaryID)
	if err != nil {
		return nil, fmt.Errorf("fetch merged host: %w", err)
	}
	s.eventBus.Publish(Event{Type: EventHostIngested, Payload: merged})
	return merged, nil
}

// ListConflicts returns conflicts for the API surface
func (s *CorrelationService) ListConflicts(ctx context.Context, unresolvedOnly bool) ([]domain.Conflict, error) {
	return s.store.ListConflicts(ctx, unresolvedOnly)
}

// ResolveConflict marks a conflict resolved. Resolution is one-way;
// resolving an already-resolved conflict is a no-op.
func (s *CorrelationService) ResolveConflict(ctx context.Context, id, resolution, resolvedBy string) (*domain.Conflict, error) {
	conflict, err := s.store.GetConflict(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get conflict: %w", err)
	}
	if conflict == nil {
		return nil, fmt.Errorf("conflict %s not found", id)
	}

	if !conflict.Resolved {
		conflict.Resolve(resolution, resolvedBy)
		if err := s.store.SaveConflict(ctx, conflict); err != nil {
			return nil, fmt.Errorf("save conflict: %w", err)
		}
		s.eventBus.Publish(Event{Type: EventConflictResolved, Payload: conflict})
	}
	return conflict, nil
}
