package memstore

import (
	"encoding/json"
	"fmt"
	"time"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/repository"

	"github.com/google/uuid"
)

// table keeps rows in insertion order.
type table[T any] struct {
	singular string
	rows     map[string]T
	order    []string
}

func newTable[T any](singular string) *table[T] {
	return &table[T]{singular: singular, rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, error) {
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, apperr.NotFound(t.singular)
	}
	return row, nil
}

func (t *table[T]) put(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// all returns rows matching keep, in insertion order.
func (t *table[T]) all(keep func(T) bool) []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// stamp assigns an id and created_at the way the database defaults would,
// and drops embedded relations so only columns are stored.
func stamp[T any](row T, now time.Time, embedded ...string) (T, string, error) {
	m, err := toColumns(row)
	if err != nil {
		return row, "", err
	}
	id, _ := m["id"].(string)
	if id == "" {
		id = uuid.NewString()
		m["id"] = id
	}
	if _, ok := m["created_at"]; !ok {
		m["created_at"] = now.UTC()
	}
	for _, k := range embedded {
		delete(m, k)
	}
	out, err := fromColumns[T](m)
	return out, id, err
}

// applyColumns merges cols over row by column name, mirroring a PATCH.
func applyColumns[T any](row T, cols repository.Columns) (T, error) {
	m, err := toColumns(row)
	if err != nil {
		return row, err
	}
	for k, v := range cols {
		if k == "id" {
			continue
		}
		m[k] = v
	}
	return fromColumns[T](m)
}

func toColumns(row any) (map[string]any, error) {
	b, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return m, nil
}

func fromColumns[T any](m map[string]any) (T, error) {
	var out T
	b, err := json.Marshal(m)
	if err != nil {
		return out, fmt.Errorf("encode columns: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode columns: %w", err)
	}
	return out, nil
}
