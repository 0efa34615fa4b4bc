package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Client used by engine tests and local runs.
// It honors the same filter and conflict-key semantics as the real store,
// records every mutation in an op log, and supports per-operation fault
// injection.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][]Row

	// Ops records each mutating call as "op:table" in execution order, so
	// tests can assert write ordering and write minimality.
	Ops []string

	// FailOn maps "op:table" (e.g. "upsert:games") to the error the next
	// matching call should return.
	FailOn map[string]error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string][]Row),
		FailOn: make(map[string]error),
	}
}

func (m *MemoryStore) Select(ctx context.Context, table string, f Filter) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("select", table); err != nil {
		return nil, err
	}
	var out []Row
	for _, row := range m.tables[table] {
		if matches(row, f) {
			out = append(out, cloneRow(row))
		}
	}
	return out, nil
}

func (m *MemoryStore) Insert(ctx context.Context, table string, rows []Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("insert", table); err != nil {
		return err
	}
	m.Ops = append(m.Ops, "insert:"+table)
	for _, row := range rows {
		if row["id"] != nil && m.findConflict(table, row, []string{"id"}) >= 0 {
			return fmt.Errorf("insert %s: duplicate id %v", table, row["id"])
		}
		m.tables[table] = append(m.tables[table], cloneRow(row))
	}
	return nil
}

func (m *MemoryStore) Upsert(ctx context.Context, table string, rows []Row, conflictCols []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("upsert", table); err != nil {
		return err
	}
	m.Ops = append(m.Ops, "upsert:"+table)
	for _, row := range rows {
		if i := m.findConflict(table, row, conflictCols); i >= 0 {
			m.tables[table][i] = cloneRow(row)
		} else {
			m.tables[table] = append(m.tables[table], cloneRow(row))
		}
	}
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, table string, patch Row, f Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("update", table); err != nil {
		return err
	}
	m.Ops = append(m.Ops, "update:"+table)
	for i, row := range m.tables[table] {
		if !matches(row, f) {
			continue
		}
		next := cloneRow(row)
		for k, v := range patch {
			next[k] = v
		}
		m.tables[table][i] = next
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, table string, f Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("delete", table); err != nil {
		return err
	}
	m.Ops = append(m.Ops, "delete:"+table)
	var kept []Row
	for _, row := range m.tables[table] {
		if !matches(row, f) {
			kept = append(kept, row)
		}
	}
	m.tables[table] = kept
	return nil
}

// Count returns the number of rows currently held for a table.
func (m *MemoryStore) Count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

// Seed inserts rows without logging, for test fixtures.
func (m *MemoryStore) Seed(table string, rows ...Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		m.tables[table] = append(m.tables[table], cloneRow(row))
	}
}

func (m *MemoryStore) failure(op, table string) error {
	if err, ok := m.FailOn[op+":"+table]; ok {
		return fmt.Errorf("%s %s: %w", op, table, err)
	}
	return nil
}

func (m *MemoryStore) findConflict(table string, row Row, conflictCols []string) int {
	for i, existing := range m.tables[table] {
		hit := true
		for _, c := range conflictCols {
			if fmt.Sprint(existing[c]) != fmt.Sprint(row[c]) {
				hit = false
				break
			}
		}
		if hit {
			return i
		}
	}
	return -1
}

func matches(row Row, f Filter) bool {
	if f.Scope != "" && fmt.Sprint(row["user_id"]) != f.Scope {
		return false
	}
	if len(f.IDs) > 0 && !containsString(f.IDs, fmt.Sprint(row["id"])) {
		return false
	}
	for col, want := range f.Eq {
		if fmt.Sprint(row[col]) != fmt.Sprint(want) {
			return false
		}
	}
	for col, wants := range f.In {
		if !containsString(wants, fmt.Sprint(row[col])) {
			return false
		}
	}
	return true
}

func containsString(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
