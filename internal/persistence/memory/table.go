package memory

import "sort"

type row[T any] struct {
	seq   uint64
	value T
}

// table is one collection keyed by id. seq records insertion order so lists
// can break timestamp ties deterministically.
type table[T any] struct {
	rows map[string]row[T]
	next uint64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]row[T])}
}

func (t *table[T]) insert(id string, value T) bool {
	if _, ok := t.rows[id]; ok {
		return false
	}
	t.next++
	t.rows[id] = row[T]{seq: t.next, value: value}
	return true
}

func (t *table[T]) replace(id string, value T) bool {
	existing, ok := t.rows[id]
	if !ok {
		return false
	}
	t.rows[id] = row[T]{seq: existing.seq, value: value}
	return true
}

func (t *table[T]) get(id string) (T, bool) {
	r, ok := t.rows[id]
	return r.value, ok
}

// rowsMatching returns rows accepted by keep in insertion order. A nil keep accepts all.
func (t *table[T]) rowsMatching(keep func(T) bool) []row[T] {
	out := make([]row[T], 0, len(t.rows))
	for _, r := range t.rows {
		if keep == nil || keep(r.value) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (t *table[T]) values(keep func(T) bool) []T {
	rows := t.rowsMatching(keep)
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.value
	}
	return out
}

// clone copies the index. Stored values are replaced, never edited in place,
// so sharing them between the copies is safe.
func (t *table[T]) clone() *table[T] {
	rows := make(map[string]row[T], len(t.rows))
	for id, r := range t.rows {
		rows[id] = r
	}
	return &table[T]{rows: rows, next: t.next}
}
