package domain

import (
	"fmt"
	"strings"
)

// Package is the decoded, in-memory form of a zip-archived XML document.
// A Package is never mutated once built: With and Without return new
// snapshots that share the parts they did not touch.
type Package struct {
	order []string
	parts map[string]Part
}

// NewPackage builds a Package from parts in the given order.
// Paths are normalised; a duplicate path is an error.
func NewPackage(parts ...Part) (*Package, error) {
	p := &Package{
		order: make([]string, 0, len(parts)),
		parts: make(map[string]Part, len(parts)),
	}
	for _, part := range parts {
		key := NormalizePath(part.Path)
		if key == "" {
			return nil, fmt.Errorf("%w: empty part path", ErrInvalidInput)
		}
		if _, exists := p.parts[key]; exists {
			return nil, fmt.Errorf("%w: duplicate part %s", ErrInvalidInput, key)
		}
		p.order = append(p.order, key)
		p.parts[key] = Part{Path: key, Data: part.Data, Kind: ClassifyPart(key)}
	}
	return p, nil
}

// Len returns the number of parts.
func (p *Package) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// Paths returns part paths in package order.
func (p *Package) Paths() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Parts returns all parts in package order.
func (p *Package) Parts() []Part {
	if p == nil {
		return nil
	}
	out := make([]Part, 0, len(p.order))
	for _, key := range p.order {
		out = append(out, p.parts[key])
	}
	return out
}

// Part returns the part stored at path.
func (p *Package) Part(path string) (Part, bool) {
	if p == nil {
		return Part{}, false
	}
	part, ok := p.parts[NormalizePath(path)]
	return part, ok
}

// Has returns true if a part exists at path.
func (p *Package) Has(path string) bool {
	_, ok := p.Part(path)
	return ok
}

// Lookup finds a part whose path matches path ignoring ASCII case,
// which is how part names compare.
func (p *Package) Lookup(path string) (Part, bool) {
	if part, ok := p.Part(path); ok {
		return part, true
	}
	if p == nil {
		return Part{}, false
	}
	want := NormalizePath(path)
	for _, key := range p.order {
		if strings.EqualFold(key, want) {
			return p.parts[key], true
		}
	}
	return Part{}, false
}

// PartsOfKind returns parts of the given kind in package order.
func (p *Package) PartsOfKind(kind PartKind) []Part {
	if p == nil {
		return nil
	}
	var out []Part
	for _, key := range p.order {
		if part := p.parts[key]; part.Kind == kind {
			out = append(out, part)
		}
	}
	return out
}

// With returns a new Package with the part at path set to data.
// An existing part keeps its position; a new part is appended.
func (p *Package) With(path string, data []byte) *Package {
	key := NormalizePath(path)
	next := p.clone()
	if _, exists := next.parts[key]; !exists {
		next.order = append(next.order, key)
	}
	next.parts[key] = Part{Path: key, Data: data, Kind: ClassifyPart(key)}
	return next
}

// Without returns a new Package lacking the part at path.
func (p *Package) Without(path string) *Package {
	key := NormalizePath(path)
	next := p.clone()
	if _, exists := next.parts[key]; !exists {
		return next
	}
	delete(next.parts, key)
	for i, k := range next.order {
		if k == key {
			next.order = append(next.order[:i], next.order[i+1:]...)
			break
		}
	}
	return next
}

func (p *Package) clone() *Package {
	next := &Package{
		order: make([]string, 0, p.Len()+1),
		parts: make(map[string]Part, p.Len()+1),
	}
	if p == nil {
		return next
	}
	next.order = append(next.order, p.order...)
	for k, v := range p.parts {
		next.parts[k] = v
	}
	return next
}
