package mmgrid

import (
	"fmt"
	"sort"
)

// MaterialKey identifies a physical material by id and density.
// Densities are compared exactly as the geometry reports them; they are
// never re-derived or rounded.
type MaterialKey struct {
	ID      int
	Density float64
}

// VoidKey is the vacuum material. It is present in every registry.
var VoidKey = MaterialKey{ID: VoidID}

// IsVoid reports whether k is the void material, whatever its density.
func (k MaterialKey) IsVoid() bool { return k.ID == VoidID }

func (k MaterialKey) less(o MaterialKey) bool {
	if k.ID != o.ID {
		return k.ID < o.ID
	}
	return k.Density < o.Density
}

func (k MaterialKey) String() string {
	return fmt.Sprintf("m%d/%g", k.ID, k.Density)
}

// Registry assigns dense indices [0, Len()) to the materials of a geometry,
// ordered by (ID, Density). It is immutable once built.
type Registry struct {
	keys  []MaterialKey
	index map[MaterialKey]int
	void  int
}

// NewRegistry builds a registry from keys plus the void key. Duplicates are
// dropped and the result does not depend on the order of keys.
func NewRegistry(keys ...MaterialKey) *Registry {
	set := map[MaterialKey]struct{}{VoidKey: {}}
	for _, k := range keys {
		if k.IsVoid() {
			k = VoidKey
		}
		set[k] = struct{}{}
	}
	r := &Registry{
		keys:  make([]MaterialKey, 0, len(set)),
		index: make(map[MaterialKey]int, len(set)),
	}
	for k := range set {
		r.keys = append(r.keys, k)
	}
	sort.Slice(r.keys, func(a, b int) bool { return r.keys[a].less(r.keys[b]) })
	for i, k := range r.keys {
		r.index[k] = i
	}
	r.void = r.index[VoidKey]
	return r
}

// RegisterAll enumerates the materials of every region of g, not only the
// regions the mesh will cover.
func RegisterAll(g Geometry) (*Registry, error) {
	if g == nil {
		return nil, ErrEmptyGeometry
	}
	regions := g.Regions()
	if len(regions) == 0 {
		return nil, ErrEmptyGeometry
	}
	keys := make([]MaterialKey, 0, len(regions))
	for _, region := range regions {
		k, ok := g.RegionMaterial(region)
		if !ok {
			return nil, fmt.Errorf("mmgrid: region %d reports no material", region)
		}
		keys = append(keys, k)
	}
	r := NewRegistry(keys...)
	DebugLog("Registered %d materials from %d regions: %v", r.Len(), len(regions), r.keys)
	return r, nil
}

// IndexOf returns the dense index of (id, density). The void id always
// resolves to the void entry.
func (r *Registry) IndexOf(id int, density float64) (int, bool) {
	if id == VoidID {
		return r.void, true
	}
	i, ok := r.index[MaterialKey{ID: id, Density: density}]
	return i, ok
}

// Lookup is IndexOf for a key.
func (r *Registry) Lookup(k MaterialKey) (int, bool) { return r.IndexOf(k.ID, k.Density) }

// Void returns the index of the void material.
func (r *Registry) Void() int { return r.void }

func (r *Registry) Len() int { return len(r.keys) }

func (r *Registry) Key(i int) MaterialKey { return r.keys[i] }

// Keys returns a copy of the keys in index order.
func (r *Registry) Keys() []MaterialKey {
	return append([]MaterialKey(nil), r.keys...)
}
