package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type rec struct {
	ID    string
	Value int
}

func (r rec) Key() string { return r.ID }

func TestByKey(t *testing.T) {
	tests := []struct {
		name        string
		prev        []rec
		next        []rec
		wantUpserts []rec
		wantDeletes []string
	}{
		{
			name: "both empty",
		},
		{
			name:        "all new",
			next:        []rec{{"a", 1}, {"b", 2}},
			wantUpserts: []rec{{"a", 1}, {"b", 2}},
		},
		{
			name:        "all removed",
			prev:        []rec{{"a", 1}, {"b", 2}},
			wantDeletes: []string{"a", "b"},
		},
		{
			name: "unchanged",
			prev: []rec{{"a", 1}, {"b", 2}},
			next: []rec{{"a", 1}, {"b", 2}},
		},
		{
			name:        "changed record upserts",
			prev:        []rec{{"a", 1}, {"b", 2}},
			next:        []rec{{"a", 1}, {"b", 3}},
			wantUpserts: []rec{{"b", 3}},
		},
		{
			name:        "mixed",
			prev:        []rec{{"a", 1}, {"b", 2}, {"c", 3}},
			next:        []rec{{"c", 9}, {"d", 4}, {"a", 1}},
			wantUpserts: []rec{{"c", 9}, {"d", 4}},
			wantDeletes: []string{"b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ByKey(tt.prev, tt.next)
			assert.Equal(t, tt.wantUpserts, got.Upserts)
			assert.Equal(t, tt.wantDeletes, got.Deletes)
		})
	}
}

func TestByKeyOrderFollowsInputs(t *testing.T) {
	prev := []rec{{"z", 1}, {"m", 1}, {"a", 1}}
	next := []rec{{"q", 1}, {"b", 1}}

	got := ByKey(prev, next)
	// Upserts in next order, deletes in prev order, regardless of key order.
	assert.Equal(t, []rec{{"q", 1}, {"b", 1}}, got.Upserts)
	assert.Equal(t, []string{"z", "m", "a"}, got.Deletes)
}

func TestDiffIdempotence(t *testing.T) {
	list := []rec{{"a", 1}, {"b", 2}}
	assert.True(t, ByKey(list, list).Empty())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(rec{"a", 1}, rec{"a", 1}))
	assert.False(t, Equal(rec{"a", 1}, rec{"a", 2}))
	assert.True(t, Equal([]string{"x"}, []string{"x"}))
}
