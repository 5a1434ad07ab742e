// Package graph implements cycle detection over a firm's task dependency
// edges. Edges point from a task to the tasks it depends on.
package graph

import "github.com/mkowalczyk/praxis/internal/domain"

// Graph is an in-memory adjacency view of one firm's dependency edges.
type Graph struct {
	adj map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[string][]string)}
}

// Build creates a graph from existing dependency edges.
func Build(edges []domain.Dependency) *Graph {
	g := New()
	for _, e := range edges {
		g.AddEdge(e.TaskID, e.DependsOnTaskID)
	}
	return g
}

// AddEdge records that from depends on to.
func (g *Graph) AddEdge(from, to string) {
	g.adj[from] = append(g.adj[from], to)
}

// WouldCreateCycle reports whether adding an edge "from depends on to" would
// close a cycle: true iff from is already reachable from to along existing
// depends-on edges, or the edge is a self-loop.
//
// Iterative DFS with a single visited set; O(V+E) over the firm's edges.
func (g *Graph) WouldCreateCycle(from, to string) bool {
	if from == to {
		return true
	}

	visited := make(map[string]bool, len(g.adj))
	stack := []string{to}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == from {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		stack = append(stack, g.adj[cur]...)
	}
	return false
}
