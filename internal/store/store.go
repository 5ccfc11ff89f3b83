package store

import (
	"sync"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// CustomStore is a graph.Store whose vertex properties can be changed after insertion.
// The drawer uses it to attach weights and labels to stages once their metrics are known.
type CustomStore[K comparable, T any] interface {
	graph.Store[K, T]
	UpdateVertex(k K, options ...func(*graph.VertexProperties)) error
}

type vertex[T any] struct {
	value      T
	properties *graph.VertexProperties
}

// MemoryStore keeps a graph in memory. It is safe for concurrent use.
type MemoryStore[K comparable, T any] struct {
	mu       sync.RWMutex
	vertices map[K]vertex[T]
	// children and parents index the same edges by source and by target.
	children map[K]map[K]graph.Edge[K]
	parents  map[K]map[K]graph.Edge[K]
}

func NewMemoryStore[K comparable, T any]() CustomStore[K, T] {
	return &MemoryStore[K, T]{
		vertices: make(map[K]vertex[T]),
		children: make(map[K]map[K]graph.Edge[K]),
		parents:  make(map[K]map[K]graph.Edge[K]),
	}
}

func (s *MemoryStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}

	s.vertices[k] = vertex[T]{value: t, properties: &p}

	return nil
}

func (s *MemoryStore[K, T]) ListVertices() ([]K, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]K, 0, len(s.vertices))
	for k := range s.vertices {
		keys = append(keys, k)
	}

	return keys, nil
}

func (s *MemoryStore[K, T]) VertexCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.vertices), nil
}

func (s *MemoryStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		var zero T

		return zero, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return v.value, *v.properties, nil
}

// UpdateVertex applies options to the properties of the vertex k.
func (s *MemoryStore[K, T]) UpdateVertex(k K, options ...func(*graph.VertexProperties)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vertices[k]
	if !ok {
		return graph.ErrVertexNotFound
	}

	for _, opt := range options {
		opt(v.properties)
	}

	return nil
}

// RemoveVertex refuses to remove a vertex that still has edges.
func (s *MemoryStore[K, T]) RemoveVertex(k K) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vertices[k]; !ok {
		return graph.ErrVertexNotFound
	}

	if len(s.parents[k]) > 0 || len(s.children[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.parents, k)
	delete(s.children, k)
	delete(s.vertices, k)

	return nil
}

func (s *MemoryStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setEdge(sourceHash, targetHash, edge)

	return nil
}

func (s *MemoryStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.children[sourceHash][targetHash]; !ok {
		return graph.ErrEdgeNotFound
	}

	s.setEdge(sourceHash, targetHash, edge)

	return nil
}

func (s *MemoryStore[K, T]) setEdge(sourceHash, targetHash K, edge graph.Edge[K]) {
	if s.children[sourceHash] == nil {
		s.children[sourceHash] = make(map[K]graph.Edge[K])
	}

	if s.parents[targetHash] == nil {
		s.parents[targetHash] = make(map[K]graph.Edge[K])
	}

	s.children[sourceHash][targetHash] = edge
	s.parents[targetHash][sourceHash] = edge
}

// RemoveEdge is a no-op when the edge does not exist.
func (s *MemoryStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.parents[targetHash], sourceHash)
	delete(s.children[sourceHash], targetHash)

	return nil
}

func (s *MemoryStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edge, ok := s.children[sourceHash][targetHash]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

func (s *MemoryStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := []graph.Edge[K]{}

	for _, edges := range s.children {
		for _, edge := range edges {
			res = append(res, edge)
		}
	}

	return res, nil
}

// CreatesCycle reports whether an edge from source to target would close a cycle,
// that is whether target is already an ancestor of source.
func (s *MemoryStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, k := range []K{source, target} {
		if _, ok := s.vertices[k]; !ok {
			return false, errors.Wrapf(graph.ErrVertexNotFound, "unable to get vertex %v", k)
		}
	}

	visited := map[K]bool{}
	pending := []K{source}

	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if current == target {
			return true, nil
		}

		if visited[current] {
			continue
		}

		visited[current] = true

		for parent := range s.parents[current] {
			pending = append(pending, parent)
		}
	}

	return false, nil
}
