package store

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore implements Client on top of a GORM connection. All rows travel
// as maps so the store stays schema-agnostic; the dialect (MySQL, SQLite)
// is whatever the connection was opened with.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open GORM connection as a Client.
func NewGormStore(db *gorm.DB) Client {
	return &gormStore{db: db}
}

func (s *gormStore) Select(ctx context.Context, table string, f Filter) ([]Row, error) {
	var rows []map[string]any
	tx := applyFilter(s.db.WithContext(ctx).Table(table), f)
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row(r)
	}
	return out, nil
}

func (s *gormStore) Insert(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Table(table).Create(asMaps(rows)).Error; err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (s *gormStore) Upsert(ctx context.Context, table string, rows []Row, conflictCols []string) error {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]clause.Column, len(conflictCols))
	for i, c := range conflictCols {
		cols[i] = clause.Column{Name: c}
	}
	err := s.db.WithContext(ctx).Table(table).Clauses(clause.OnConflict{
		Columns:   cols,
		DoUpdates: clause.AssignmentColumns(updateColumns(rows[0], conflictCols)),
	}).Create(asMaps(rows)).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (s *gormStore) Update(ctx context.Context, table string, patch Row, f Filter) error {
	tx := applyFilter(s.db.WithContext(ctx).Table(table), f)
	if err := tx.Updates(map[string]any(patch)).Error; err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

func (s *gormStore) Delete(ctx context.Context, table string, f Filter) error {
	tx := applyFilter(s.db.WithContext(ctx).Table(table), f)
	if err := tx.Delete(nil).Error; err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func applyFilter(tx *gorm.DB, f Filter) *gorm.DB {
	if f.Scope != "" {
		tx = tx.Where("user_id = ?", f.Scope)
	}
	if len(f.IDs) > 0 {
		tx = tx.Where("id IN ?", f.IDs)
	}
	// Iterate sorted so generated SQL is stable for tests and logs.
	for _, col := range sortedKeys(f.Eq) {
		tx = tx.Where(col+" = ?", f.Eq[col])
	}
	for _, col := range sortedKeysIn(f.In) {
		tx = tx.Where(col+" IN ?", f.In[col])
	}
	return tx
}

// updateColumns lists the columns an upsert overwrites on conflict: every
// column of the row except the conflict key itself.
func updateColumns(row Row, conflictCols []string) []string {
	skip := make(map[string]struct{}, len(conflictCols))
	for _, c := range conflictCols {
		skip[c] = struct{}{}
	}
	cols := make([]string, 0, len(row))
	for c := range row {
		if _, ok := skip[c]; ok {
			continue
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func asMaps(rows []Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = map[string]any(r)
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysIn(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
