package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"vendzone/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu      sync.Mutex
	zones   *memTable[model.Zone]
	vendors *memTable[model.Vendor]
	reports *memTable[model.HygieneReport]
}

func NewMemory() *Memory {
	return &Memory{
		zones:   newMemTable(zoneEntity),
		vendors: newMemTable(vendorEntity),
		reports: newMemTable(reportEntity),
	}
}

// memTable keeps JSON documents in insertion order, the same shape the
// Postgres tables store, so filters and partial updates behave alike.
type memTable[T any] struct {
	ent   entity[T]
	docs  map[string]map[string]any
	order []string
}

func newMemTable[T any](ent entity[T]) *memTable[T] {
	return &memTable[T]{ent: ent, docs: map[string]map[string]any{}}
}

func (t *memTable[T]) list(filter map[string]any) ([]T, error) {
	out := []T{}
	for _, id := range t.order {
		doc := t.docs[id]
		if filter != nil && !matches(doc, filter) {
			continue
		}
		rec, err := fromDoc[T](doc)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", t.ent.table, id, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (t *memTable[T]) create(rec T) (T, error) {
	id := t.ent.id(&rec)
	if *id == "" {
		*id = uuid.New().String()
	}
	if _, dup := t.docs[*id]; dup {
		var zero T
		return zero, fmt.Errorf("%s: duplicate id %s", t.ent.table, *id)
	}
	doc, err := toDoc(rec)
	if err != nil {
		var zero T
		return zero, err
	}
	t.docs[*id] = doc
	t.order = append(t.order, *id)
	return rec, nil
}

func (t *memTable[T]) update(id string, fields map[string]any) (T, error) {
	var zero T
	doc, ok := t.docs[id]
	if !ok {
		return zero, ErrNotFound
	}
	patch, err := patchOf(fields)
	if err != nil {
		return zero, err
	}
	next := make(map[string]any, len(doc)+len(patch))
	for k, v := range doc {
		next[k] = v
	}
	for k, v := range patch {
		next[k] = v
	}
	rec, err := fromDoc[T](next)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", t.ent.table, id, err)
	}
	t.docs[id] = next
	return rec, nil
}

func (t *memTable[T]) save(rec T) error {
	id := *t.ent.id(&rec)
	if id == "" {
		return fmt.Errorf("%s: save needs an id", t.ent.table)
	}
	doc, err := toDoc(rec)
	if err != nil {
		return err
	}
	if _, ok := t.docs[id]; !ok {
		t.order = append(t.order, id)
	}
	t.docs[id] = doc
	return nil
}

func (m *Memory) ListZones(ctx context.Context) ([]model.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zones.list(nil)
}

func (m *Memory) FilterZones(ctx context.Context, fields map[string]any) ([]model.Zone, error) {
	f, err := normalize(fields)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zones.list(f)
}

func (m *Memory) CreateZone(ctx context.Context, z model.Zone) (model.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zones.create(z)
}

func (m *Memory) UpdateZone(ctx context.Context, id string, fields map[string]any) (model.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zones.update(id, fields)
}

func (m *Memory) SaveZone(ctx context.Context, z model.Zone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zones.save(z)
}

func (m *Memory) ListVendors(ctx context.Context) ([]model.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vendors.list(nil)
}

func (m *Memory) FilterVendors(ctx context.Context, fields map[string]any) ([]model.Vendor, error) {
	f, err := normalize(fields)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vendors.list(f)
}

func (m *Memory) CreateVendor(ctx context.Context, v model.Vendor) (model.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vendors.create(v)
}

func (m *Memory) UpdateVendor(ctx context.Context, id string, fields map[string]any) (model.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vendors.update(id, fields)
}

func (m *Memory) SaveVendor(ctx context.Context, v model.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vendors.save(v)
}

func (m *Memory) ListReports(ctx context.Context) ([]model.HygieneReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reports.list(nil)
}

func (m *Memory) FilterReports(ctx context.Context, fields map[string]any) ([]model.HygieneReport, error) {
	f, err := normalize(fields)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reports.list(f)
}

func (m *Memory) CreateReport(ctx context.Context, r model.HygieneReport) (model.HygieneReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reports.create(r)
}

func (m *Memory) UpdateReport(ctx context.Context, id string, fields map[string]any) (model.HygieneReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reports.update(id, fields)
}

func (m *Memory) SaveReport(ctx context.Context, r model.HygieneReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reports.save(r)
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
