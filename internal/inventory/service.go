// Package inventory is the item-mutation engine. Every mutating operation
// runs as one storage transaction spanning state lookup, diff computation,
// change-record insertion, and notification insertion with retention
// pruning; broadcast events are published strictly after a successful
// commit, so observers never see a rolled-back mutation.
package inventory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"stockd/internal/hub"
	"stockd/internal/ident"
	"stockd/internal/models"
	"stockd/pkg/bus"
)

// Service owns the mutation paths over the relational store and the
// broadcast hub. It is safe for concurrent use.
type Service struct {
	orm   *gorm.DB
	hub   *hub.Hub
	bus   *bus.Bus
	alloc ident.Allocator
	log   zerolog.Logger

	// allocMu serializes the read-last/compute-next/insert sequence of item
	// code allocation. The unique index on items.item_id is the backstop for
	// multi-replica deployments; see CreateOrMerge.
	allocMu sync.Mutex
}

// Options configures optional Service collaborators.
type Options struct {
	// Bus, when set, mirrors every broadcast event onto NATS.
	Bus *bus.Bus
	// IdentifierWidth selects the item code width; zero means the default.
	IdentifierWidth int
	Logger          zerolog.Logger
}

// NewService wires the engine. orm and h are required.
func NewService(orm *gorm.DB, h *hub.Hub, opts Options) *Service {
	return &Service{
		orm:   orm,
		hub:   h,
		bus:   opts.Bus,
		alloc: ident.New(opts.IdentifierWidth),
		log:   opts.Logger,
	}
}

// DB exposes the underlying gorm handle for read-only collaborators.
func (s *Service) DB() *gorm.DB { return s.orm }

// publish fans an event out to connected observers and, when a bus is
// configured, mirrors it onto NATS. Bus failures are logged and swallowed;
// delivery failures never propagate to the request path.
func (s *Service) publish(ctx context.Context, eventType string, data map[string]any) {
	s.hub.Publish(eventType, data)

	if s.bus == nil {
		return
	}
	if err := s.bus.PublishEvent(ctx, eventType, data); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("mirror event to bus")
	}
}

// AllocateIdentifier returns the next free item code without reserving it.
// Creation paths allocate inside their own transaction instead; this exists
// for label pre-printing workflows.
func (s *Service) AllocateIdentifier(ctx context.Context) (string, error) {
	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	last, err := s.lastCode(s.orm.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return s.alloc.Next(last), nil
}

// lastCode returns the highest-ranked allocated item code, or "" when no
// item carries one. Codes rank by the allocator's alphabet (a-z then 0-9),
// which is not byte order, so the maximum is computed here rather than with
// ORDER BY.
func (s *Service) lastCode(tx *gorm.DB) (string, error) {
	var codes []string
	if err := tx.Model(&models.Item{}).Pluck("item_id", &codes).Error; err != nil {
		return "", err
	}

	best := ""
	bestRank := -1
	for _, code := range codes {
		if r := s.alloc.Rank(code); r > bestRank {
			best, bestRank = code, r
		}
	}
	return best, nil
}

// customLabels resolves display names for the given custom-data keys.
func customLabels(tx *gorm.DB, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var fields []models.CustomField
	if err := tx.Where("field_key IN ?", keys).Find(&fields).Error; err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(fields))
	for _, f := range fields {
		labels[f.FieldKey] = f.Name
	}
	return labels, nil
}
