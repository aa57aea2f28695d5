package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/schedule"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// Factories returns the factory repository view
func (s *Store) Factories() factory.FactoryRepository { return &factoryRepository{s} }

// TaxRecords returns the tax record repository view
func (s *Store) TaxRecords() tax.RecordRepository { return &recordRepository{s} }

// Payments returns the tax receipt repository view
func (s *Store) Payments() tax.PaymentRepository { return &paymentRepository{s} }

// Invoices returns the invoice repository view
func (s *Store) Invoices() invoice.InvoiceRepository { return &invoiceRepository{s} }

// Cursors returns the scheduler cursor repository view
func (s *Store) Cursors() schedule.CursorRepository { return &cursorRepository{s} }

type factoryRepository struct{ s *Store }

func (r *factoryRepository) Get(ctx context.Context, id string) (*factory.Factory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.factories[id]
	if !ok {
		return nil, factory.NewFactoryNotFoundError(id)
	}
	return f, nil
}

func (r *factoryRepository) List(ctx context.Context) ([]*factory.Factory, error) {
	return r.filter(func(*factory.Factory) bool { return true }), nil
}

func (r *factoryRepository) ListByOwner(ctx context.Context, player shared.PlayerID) ([]*factory.Factory, error) {
	return r.filter(func(f *factory.Factory) bool { return f.IsOwnedBy(player) }), nil
}

func (r *factoryRepository) filter(keep func(*factory.Factory) bool) []*factory.Factory {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*factory.Factory, 0, len(r.s.factories))
	for _, f := range r.s.factories {
		if keep(f) {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

func (r *factoryRepository) Save(ctx context.Context, f *factory.Factory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.factories[f.ID()] = f
	r.s.dirtyFactories[f.ID()] = struct{}{}
	delete(r.s.deletedFactories, f.ID())
	return nil
}

func (r *factoryRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.factories[id]; !ok {
		return nil
	}
	delete(r.s.factories, id)
	delete(r.s.dirtyFactories, id)
	r.s.deletedFactories[id] = struct{}{}
	return nil
}

type recordRepository struct{ s *Store }

func (r *recordRepository) Get(ctx context.Context, factoryID string) (*tax.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	record, ok := r.s.records[factoryID]
	if !ok {
		return nil, tax.NewRecordNotFoundError(factoryID)
	}
	return record, nil
}

func (r *recordRepository) List(ctx context.Context) ([]*tax.Record, error) {
	return r.filter(func(*tax.Record) bool { return true }), nil
}

func (r *recordRepository) ListByOwner(ctx context.Context, owner shared.PlayerID) ([]*tax.Record, error) {
	return r.filter(func(record *tax.Record) bool { return record.Owner().Equals(owner) }), nil
}

func (r *recordRepository) filter(keep func(*tax.Record) bool) []*tax.Record {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*tax.Record, 0, len(r.s.records))
	for _, record := range r.s.records {
		if keep(record) {
			result = append(result, record)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FactoryID() < result[j].FactoryID() })
	return result
}

func (r *recordRepository) Save(ctx context.Context, record *tax.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.records[record.FactoryID()] = record
	r.s.dirtyRecords[record.FactoryID()] = struct{}{}
	delete(r.s.deletedRecords, record.FactoryID())
	return nil
}

func (r *recordRepository) Delete(ctx context.Context, factoryID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.records[factoryID]; !ok {
		return nil
	}
	delete(r.s.records, factoryID)
	delete(r.s.dirtyRecords, factoryID)
	r.s.deletedRecords[factoryID] = struct{}{}
	return nil
}

type paymentRepository struct{ s *Store }

func (r *paymentRepository) Append(ctx context.Context, payment *tax.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.payments = append(r.s.payments, payment)
	r.s.newPayments = append(r.s.newPayments, payment)
	return nil
}

func (r *paymentRepository) ListByOwner(ctx context.Context, owner shared.PlayerID) ([]*tax.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*tax.Payment
	for _, p := range r.s.payments {
		if p.Owner.Equals(owner) {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	return result, nil
}

type invoiceRepository struct{ s *Store }

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, invoice.NewInvoiceNotFoundError(id)
	}
	return inv, nil
}

func (r *invoiceRepository) ListByOwner(ctx context.Context, owner shared.PlayerID, filter invoice.Filter) ([]*invoice.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*invoice.Invoice
	for _, inv := range r.s.invoices {
		if inv.Owner().Equals(owner) && filter.Matches(inv) {
			result = append(result, inv)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueDate().Equal(result[j].DueDate()) {
			return result[i].DueDate().Before(result[j].DueDate())
		}
		return result[i].ID().String() < result[j].ID().String()
	})
	return result, nil
}

func (r *invoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.invoices[inv.ID()] = inv
	r.s.dirtyInvoices[inv.ID()] = struct{}{}
	return nil
}

type cursorRepository struct{ s *Store }

func (r *cursorRepository) Get(ctx context.Context, name string) (schedule.Cursor, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cursors[name]
	return c, ok, nil
}

func (r *cursorRepository) Save(ctx context.Context, cursor schedule.Cursor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.cursors[cursor.Name] = cursor
	r.s.dirtyCursors[cursor.Name] = struct{}{}
	return nil
}
