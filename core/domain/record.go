package domain

import "maps"

// Record is a persisted entity keyed by field name.
type Record map[string]any

// Filter selects records by field equality.
type Filter map[string]string

const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

func (r Record) ID() string {
	return r.String(FieldID)
}

func (r Record) String(key string) string {
	v, _ := r[key].(string)
	return v
}

func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Merge returns a copy of r overlaid with the keys of patch.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}
	maps.Copy(out, patch)
	return out
}

// Without returns a copy of r with the given keys removed.
func (r Record) Without(keys ...string) Record {
	out := r.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
