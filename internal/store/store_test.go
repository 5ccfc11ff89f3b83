package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-lazypipe/internal/store"
)

func TestMemoryStoreVertices(t *testing.T) {
	t.Parallel()

	str := store.NewMemoryStore[string, string]()

	require.NoError(t, str.AddVertex("a", "a", graph.VertexProperties{Attributes: map[string]string{}}))
	require.ErrorIs(t, str.AddVertex("a", "a", graph.VertexProperties{}), graph.ErrVertexAlreadyExists)

	count, err := str.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, str.UpdateVertex("a", graph.VertexWeight(3), graph.VertexAttribute("color", "red")))
	require.ErrorIs(t, str.UpdateVertex("b"), graph.ErrVertexNotFound)

	_, properties, err := str.Vertex("a")
	require.NoError(t, err)
	assert.Equal(t, 3, properties.Weight)
	assert.Equal(t, "red", properties.Attributes["color"])

	require.NoError(t, str.RemoveVertex("a"))
	require.ErrorIs(t, str.RemoveVertex("a"), graph.ErrVertexNotFound)
}

func TestMemoryStoreEdges(t *testing.T) {
	t.Parallel()

	str := store.NewMemoryStore[string, string]()
	g := graph.NewWithStore(graph.StringHash, graph.Store[string, string](str), graph.Directed())

	require.NoError(t, g.AddVertex("a"))
	require.NoError(t, g.AddVertex("b"))
	require.NoError(t, g.AddVertex("c"))
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))

	edges, err := str.ListEdges()
	require.NoError(t, err)
	assert.Len(t, edges, 2)

	mem, ok := str.(*store.MemoryStore[string, string])
	require.True(t, ok)

	cycle, err := mem.CreatesCycle("c", "a")
	require.NoError(t, err)
	assert.True(t, cycle)

	cycle, err = mem.CreatesCycle("a", "c")
	require.NoError(t, err)
	assert.False(t, cycle)

	_, err = mem.CreatesCycle("a", "z")
	require.ErrorIs(t, err, graph.ErrVertexNotFound)

	require.ErrorIs(t, str.UpdateEdge("a", "c", graph.Edge[string]{}), graph.ErrEdgeNotFound)
	require.NoError(t, str.UpdateEdge("a", "b", graph.Edge[string]{Source: "a", Target: "b", Properties: graph.EdgeProperties{Weight: 4}}))

	edge, err := str.Edge("a", "b")
	require.NoError(t, err)
	assert.Equal(t, 4, edge.Properties.Weight)

	require.ErrorIs(t, str.RemoveVertex("b"), graph.ErrVertexHasEdges)
	require.NoError(t, str.RemoveEdge("a", "b"))

	_, err = str.Edge("a", "b")
	require.ErrorIs(t, err, graph.ErrEdgeNotFound)
}
