// Package domain contains the core domain models for compiling, caching and
// loading tusk configuration sources.
package domain

import (
	"iter"
	"slices"
	"sync"
)

// DependencyGraph records which source files import which. Cycles are legal:
// every traversal is guarded by a visited set, so a cycle is simply one
// invalidation group.
type DependencyGraph struct {
	mu           sync.RWMutex
	dependencies map[InternedString]map[InternedString]struct{}
	dependents   map[InternedString]map[InternedString]struct{}
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		dependencies: make(map[InternedString]map[InternedString]struct{}),
		dependents:   make(map[InternedString]map[InternedString]struct{}),
	}
}

// SetDependencies replaces the outgoing edges of path.
func (g *DependencyGraph) SetDependencies(path string, deps []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	from := NewInternedString(path)
	for old := range g.dependencies[from] {
		if set := g.dependents[old]; set != nil {
			delete(set, from)
			if len(set) == 0 {
				delete(g.dependents, old)
			}
		}
	}
	delete(g.dependencies, from)

	if len(deps) == 0 {
		return
	}
	out := make(map[InternedString]struct{}, len(deps))
	for _, d := range deps {
		to := NewInternedString(d)
		out[to] = struct{}{}
		in := g.dependents[to]
		if in == nil {
			in = make(map[InternedString]struct{})
			g.dependents[to] = in
		}
		in[from] = struct{}{}
	}
	g.dependencies[from] = out
}

// AddDependent records a reverse edge only. It is used when restoring
// persisted metadata whose forward edges are not known yet.
func (g *DependencyGraph) AddDependent(path, dependent string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	to := NewInternedString(path)
	in := g.dependents[to]
	if in == nil {
		in = make(map[InternedString]struct{})
		g.dependents[to] = in
	}
	in[NewInternedString(dependent)] = struct{}{}
}

// Dependencies returns the direct imports of path, sorted.
func (g *DependencyGraph) Dependencies(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedNames(g.dependencies[NewInternedString(path)])
}

// Dependents returns the files that directly import path, sorted.
func (g *DependencyGraph) Dependents(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedNames(g.dependents[NewInternedString(path)])
}

// Closure yields path followed by every file that transitively depends on it,
// in breadth-first order. Each path is yielded once even when the graph has cycles.
func (g *DependencyGraph) Closure(path string) iter.Seq[string] {
	return func(yield func(string) bool) {
		g.mu.RLock()
		start := NewInternedString(path)
		visited := map[InternedString]struct{}{start: {}}
		order := []InternedString{start}
		for i := 0; i < len(order); i++ {
			for dep := range g.dependents[order[i]] {
				if _, seen := visited[dep]; seen {
					continue
				}
				visited[dep] = struct{}{}
				order = append(order, dep)
			}
		}
		g.mu.RUnlock()

		for _, p := range order {
			if !yield(p.String()) {
				return
			}
		}
	}
}

// Paths returns every path that has at least one edge, sorted.
func (g *DependencyGraph) Paths() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	set := make(map[InternedString]struct{}, len(g.dependencies)+len(g.dependents))
	for p := range g.dependencies {
		set[p] = struct{}{}
	}
	for p := range g.dependents {
		set[p] = struct{}{}
	}
	return sortedNames(set)
}

// Remove drops every edge touching path.
func (g *DependencyGraph) Remove(path string) {
	g.SetDependencies(path, nil)

	g.mu.Lock()
	defer g.mu.Unlock()
	node := NewInternedString(path)
	for from := range g.dependents[node] {
		if out := g.dependencies[from]; out != nil {
			delete(out, node)
			if len(out) == 0 {
				delete(g.dependencies, from)
			}
		}
	}
	delete(g.dependents, node)
}

func sortedNames(set map[InternedString]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n.String())
	}
	slices.Sort(out)
	return out
}
