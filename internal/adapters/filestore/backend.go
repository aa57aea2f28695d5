package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/factory-economy/internal/adapters/memstore"
)

const (
	factoriesDir  = "factories"
	taxRecordsDir = "tax_records"
	invoicesDir   = "invoices"
	paymentsDir   = "payments"
	cursorsFile   = "cursors.yaml"
	fileExt       = ".yaml"
)

// Backend stores one YAML document per entity under root
type Backend struct {
	root string
}

func NewBackend(root string) *Backend {
	return &Backend{root: root}
}

// Root returns the storage root directory
func (b *Backend) Root() string {
	return b.root
}

// Initialize creates the directory layout
func (b *Backend) Initialize() error {
	for _, dir := range []string{factoriesDir, taxRecordsDir, invoicesDir, paymentsDir} {
		if err := os.MkdirAll(filepath.Join(b.root, dir), 0700); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}
	return nil
}

// resolvePath keeps entity files directly inside their directory
func (b *Backend) resolvePath(dir, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("id cannot be empty")
	}
	baseDir := filepath.Join(b.root, dir)
	cleanPath := filepath.Clean(filepath.Join(baseDir, id+fileExt))
	if filepath.Dir(cleanPath) != baseDir || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("invalid id for file storage: %q", id)
	}
	return cleanPath, nil
}

// Load reads every document under root
func (b *Backend) Load(ctx context.Context) (*memstore.Snapshot, error) {
	if err := b.Initialize(); err != nil {
		return nil, err
	}
	snapshot := &memstore.Snapshot{}

	if err := loadDir(ctx, b.root, factoriesDir, func(doc *factoryDocument) error {
		f, err := doc.toDomain()
		if err == nil {
			snapshot.Factories = append(snapshot.Factories, f)
		}
		return err
	}); err != nil {
		return nil, err
	}

	if err := loadDir(ctx, b.root, taxRecordsDir, func(doc *taxRecordDocument) error {
		r, err := doc.toDomain()
		if err == nil {
			snapshot.TaxRecords = append(snapshot.TaxRecords, r)
		}
		return err
	}); err != nil {
		return nil, err
	}

	if err := loadDir(ctx, b.root, paymentsDir, func(doc *paymentDocument) error {
		p, err := doc.toDomain()
		if err == nil {
			snapshot.Payments = append(snapshot.Payments, p)
		}
		return err
	}); err != nil {
		return nil, err
	}
	sort.SliceStable(snapshot.Payments, func(i, j int) bool {
		return snapshot.Payments[i].Timestamp.Before(snapshot.Payments[j].Timestamp)
	})

	if err := loadDir(ctx, b.root, invoicesDir, func(doc *invoiceDocument) error {
		inv, err := doc.toDomain()
		if err == nil {
			snapshot.Invoices = append(snapshot.Invoices, inv)
		}
		return err
	}); err != nil {
		return nil, err
	}

	cursors, err := b.readCursors()
	if err != nil {
		return nil, err
	}
	snapshot.Cursors = cursorsFromDocument(cursors)

	return snapshot, nil
}

// Apply writes changed documents and removes deleted ones
func (b *Backend) Apply(ctx context.Context, changes *memstore.Changes) error {
	if err := b.Initialize(); err != nil {
		return err
	}

	for _, f := range changes.Factories {
		if err := b.write(factoriesDir, f.ID(), newFactoryDocument(f)); err != nil {
			return err
		}
	}
	for _, id := range changes.DeletedFactories {
		if err := b.remove(factoriesDir, id); err != nil {
			return err
		}
	}
	for _, r := range changes.TaxRecords {
		if err := b.write(taxRecordsDir, r.FactoryID(), newTaxRecordDocument(r)); err != nil {
			return err
		}
	}
	for _, id := range changes.DeletedTaxRecords {
		if err := b.remove(taxRecordsDir, id); err != nil {
			return err
		}
	}
	for _, p := range changes.Payments {
		if err := b.write(paymentsDir, p.ID.String(), newPaymentDocument(p)); err != nil {
			return err
		}
	}
	for _, inv := range changes.Invoices {
		if err := b.write(invoicesDir, inv.ID().String(), newInvoiceDocument(inv)); err != nil {
			return err
		}
	}

	if len(changes.Cursors) > 0 {
		doc, err := b.readCursors()
		if err != nil {
			return err
		}
		for _, c := range changes.Cursors {
			doc.Cursors[c.Name] = c.LastRun
		}
		if err := writeYAML(filepath.Join(b.root, cursorsFile), doc); err != nil {
			return err
		}
	}

	return ctx.Err()
}

func (b *Backend) readCursors() (*cursorsDocument, error) {
	doc := &cursorsDocument{}
	// #nosec G304 -- fixed file name under the storage root
	data, err := os.ReadFile(filepath.Join(b.root, cursorsFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read cursors: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cursors: %w", err)
		}
	}
	if doc.Cursors == nil {
		doc.Cursors = make(map[string]time.Time)
	}
	return doc, nil
}

func (b *Backend) write(dir, id string, doc interface{}) error {
	path, err := b.resolvePath(dir, id)
	if err != nil {
		return err
	}
	return writeYAML(path, doc)
}

func (b *Backend) remove(dir, id string) error {
	path, err := b.resolvePath(dir, id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// writeYAML replaces path atomically so a crash never leaves half a document
func writeYAML(path string, doc interface{}) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func loadDir[T any](ctx context.Context, root, dir string, add func(doc *T) error) error {
	entries, err := os.ReadDir(filepath.Join(root, dir))
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExt {
			continue
		}

		path := filepath.Join(root, dir, entry.Name())
		// #nosec G304 -- path is built from a directory listing under the storage root
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var doc T
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
		if err := add(&doc); err != nil {
			return fmt.Errorf("invalid document %s: %w", path, err)
		}
	}
	return nil
}
