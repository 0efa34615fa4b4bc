package diff

import "reflect"

// Keyed is any record with a stable string identity.
type Keyed interface {
	Key() string
}

// Diff is the change set between two lists of the same record kind.
type Diff[T Keyed] struct {
	// Upserts are the records present only in next, or present in both but
	// structurally different. Order follows the next list.
	Upserts []T

	// Deletes are the identities present only in prev. Order follows the
	// prev list.
	Deletes []string
}

// Empty reports whether the diff contains no work.
func (d Diff[T]) Empty() bool {
	return len(d.Upserts) == 0 && len(d.Deletes) == 0
}

// ByKey computes the change set between prev and next, keyed by identity.
// Two records with the same key are compared by deep structural equality.
// The function performs no I/O and runs in O(len(prev)+len(next)).
func ByKey[T Keyed](prev, next []T) Diff[T] {
	prevByKey := make(map[string]T, len(prev))
	for _, p := range prev {
		prevByKey[p.Key()] = p
	}
	nextKeys := make(map[string]struct{}, len(next))

	var out Diff[T]
	for _, n := range next {
		nextKeys[n.Key()] = struct{}{}
		p, ok := prevByKey[n.Key()]
		if !ok || !reflect.DeepEqual(p, n) {
			out.Upserts = append(out.Upserts, n)
		}
	}
	for _, p := range prev {
		if _, ok := nextKeys[p.Key()]; !ok {
			out.Deletes = append(out.Deletes, p.Key())
		}
	}
	return out
}

// Equal reports whether two values are structurally identical. It is the
// same comparison ByKey uses for matched identities.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
