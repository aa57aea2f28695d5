package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/schedule"
	"github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// Snapshot is everything a backend holds
type Snapshot struct {
	Factories  []*factory.Factory
	TaxRecords []*tax.Record
	Payments   []*tax.Payment
	Invoices   []*invoice.Invoice
	Cursors    []schedule.Cursor
}

// Changes are the records touched since the last flush
type Changes struct {
	Factories         []*factory.Factory
	DeletedFactories  []string
	TaxRecords        []*tax.Record
	DeletedTaxRecords []string
	Payments          []*tax.Payment
	Invoices          []*invoice.Invoice
	Cursors           []schedule.Cursor
}

// Len counts the records in the change set
func (c *Changes) Len() int {
	return len(c.Factories) + len(c.DeletedFactories) + len(c.TaxRecords) + len(c.DeletedTaxRecords) +
		len(c.Payments) + len(c.Invoices) + len(c.Cursors)
}

// Backend is a durable snapshot store (GORM tables or YAML files)
type Backend interface {
	Load(ctx context.Context) (*Snapshot, error)
	Apply(ctx context.Context, changes *Changes) error
}

// Store keeps every entity in memory and tracks which ones changed, so a flush
// writes only dirty records. Repository views share the same maps.
type Store struct {
	mu sync.RWMutex

	factories map[string]*factory.Factory
	records   map[string]*tax.Record
	payments  []*tax.Payment
	invoices  map[uuid.UUID]*invoice.Invoice
	cursors   map[string]schedule.Cursor

	dirtyFactories   map[string]struct{}
	deletedFactories map[string]struct{}
	dirtyRecords     map[string]struct{}
	deletedRecords   map[string]struct{}
	newPayments      []*tax.Payment
	dirtyInvoices    map[uuid.UUID]struct{}
	dirtyCursors     map[string]struct{}

	backend     Backend
	retryConfig retry.Config
}

// New creates an empty store. backend may be nil for a purely in-memory store.
func New(backend Backend) *Store {
	s := &Store{
		backend: backend,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  50 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.factories = make(map[string]*factory.Factory)
	s.records = make(map[string]*tax.Record)
	s.payments = nil
	s.invoices = make(map[uuid.UUID]*invoice.Invoice)
	s.cursors = make(map[string]schedule.Cursor)
	s.clearDirty()
}

func (s *Store) clearDirty() {
	s.dirtyFactories = make(map[string]struct{})
	s.deletedFactories = make(map[string]struct{})
	s.dirtyRecords = make(map[string]struct{})
	s.deletedRecords = make(map[string]struct{})
	s.newPayments = nil
	s.dirtyInvoices = make(map[uuid.UUID]struct{})
	s.dirtyCursors = make(map[string]struct{})
}

// Load replaces the in-memory state with the backend snapshot
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	snapshot, err := retry.New[*Snapshot](s.retryConfig).Do(ctx, func(ctx context.Context) (*Snapshot, error) {
		return s.backend.Load(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	for _, f := range snapshot.Factories {
		s.factories[f.ID()] = f
	}
	for _, r := range snapshot.TaxRecords {
		s.records[r.FactoryID()] = r
	}
	s.payments = append(s.payments, snapshot.Payments...)
	for _, inv := range snapshot.Invoices {
		s.invoices[inv.ID()] = inv
	}
	for _, c := range snapshot.Cursors {
		s.cursors[c.Name] = c
	}
	return nil
}

// Dirty reports how many records wait for a flush
func (s *Store) Dirty() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dirtyFactories) + len(s.deletedFactories) + len(s.dirtyRecords) + len(s.deletedRecords) +
		len(s.newPayments) + len(s.dirtyInvoices) + len(s.dirtyCursors)
}

// Flush writes dirty records to the backend. On failure the records stay dirty
// and are retried by the next flush.
func (s *Store) Flush(ctx context.Context) (int, error) {
	if s.backend == nil {
		return 0, nil
	}

	changes := s.takeChanges()
	if changes.Len() == 0 {
		return 0, nil
	}

	_, err := retry.New[struct{}](s.retryConfig).Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.backend.Apply(ctx, changes)
	})
	if err != nil {
		s.restoreChanges(changes)
		return 0, fmt.Errorf("failed to flush %d records: %w", changes.Len(), err)
	}
	return changes.Len(), nil
}

func (s *Store) takeChanges() *Changes {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes := &Changes{}
	for id := range s.dirtyFactories {
		if f, ok := s.factories[id]; ok {
			changes.Factories = append(changes.Factories, f)
		}
	}
	for id := range s.deletedFactories {
		changes.DeletedFactories = append(changes.DeletedFactories, id)
	}
	for id := range s.dirtyRecords {
		if r, ok := s.records[id]; ok {
			changes.TaxRecords = append(changes.TaxRecords, r)
		}
	}
	for id := range s.deletedRecords {
		changes.DeletedTaxRecords = append(changes.DeletedTaxRecords, id)
	}
	changes.Payments = append(changes.Payments, s.newPayments...)
	for id := range s.dirtyInvoices {
		if inv, ok := s.invoices[id]; ok {
			changes.Invoices = append(changes.Invoices, inv)
		}
	}
	for name := range s.dirtyCursors {
		if c, ok := s.cursors[name]; ok {
			changes.Cursors = append(changes.Cursors, c)
		}
	}

	s.clearDirty()
	return changes
}

// restoreChanges marks a failed change set dirty again. Records changed or
// deleted after the take keep their newer marks.
func (s *Store) restoreChanges(changes *Changes) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range changes.Factories {
		if _, deleted := s.deletedFactories[f.ID()]; !deleted {
			s.dirtyFactories[f.ID()] = struct{}{}
		}
	}
	for _, id := range changes.DeletedFactories {
		if _, recreated := s.factories[id]; !recreated {
			s.deletedFactories[id] = struct{}{}
		}
	}
	for _, r := range changes.TaxRecords {
		if _, deleted := s.deletedRecords[r.FactoryID()]; !deleted {
			s.dirtyRecords[r.FactoryID()] = struct{}{}
		}
	}
	for _, id := range changes.DeletedTaxRecords {
		if _, recreated := s.records[id]; !recreated {
			s.deletedRecords[id] = struct{}{}
		}
	}
	s.newPayments = append(changes.Payments, s.newPayments...)
	for _, inv := range changes.Invoices {
		s.dirtyInvoices[inv.ID()] = struct{}{}
	}
	for _, c := range changes.Cursors {
		s.dirtyCursors[c.Name] = struct{}{}
	}
}
