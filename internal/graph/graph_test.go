package graph

import (
	"fmt"
	"testing"

	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestWouldCreateCycle_SelfLoop(t *testing.T) {
	g := New()
	assert.True(t, g.WouldCreateCycle("a", "a"))
}

func TestWouldCreateCycle_DirectCycle(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	assert.True(t, g.WouldCreateCycle("b", "a"), "b->a closes the a->b edge")
	assert.False(t, g.WouldCreateCycle("a", "b"), "duplicate direction is not a cycle")
}

func TestWouldCreateCycle_Transitive(t *testing.T) {
	g := Build([]domain.Dependency{
		{TaskID: "a", DependsOnTaskID: "b"},
		{TaskID: "b", DependsOnTaskID: "c"},
	})
	assert.True(t, g.WouldCreateCycle("c", "a"), "c->a closes a->b->c")
	assert.False(t, g.WouldCreateCycle("a", "c"))
}

func TestWouldCreateCycle_DiamondIsNotACycle(t *testing.T) {
	g := Build([]domain.Dependency{
		{TaskID: "a", DependsOnTaskID: "b"},
		{TaskID: "a", DependsOnTaskID: "c"},
		{TaskID: "b", DependsOnTaskID: "d"},
		{TaskID: "c", DependsOnTaskID: "d"},
	})
	assert.False(t, g.WouldCreateCycle("a", "d"))
	assert.True(t, g.WouldCreateCycle("d", "a"))
}

func TestWouldCreateCycle_LongChain(t *testing.T) {
	g := New()
	for i := 0; i < 1000; i++ {
		g.AddEdge(fmt.Sprintf("t%d", i), fmt.Sprintf("t%d", i+1))
	}
	assert.True(t, g.WouldCreateCycle("t1000", "t0"))
	assert.False(t, g.WouldCreateCycle("t0", "t1000"))
}

func TestWouldCreateCycle_DisconnectedNodes(t *testing.T) {
	g := Build([]domain.Dependency{{TaskID: "a", DependsOnTaskID: "b"}})
	assert.False(t, g.WouldCreateCycle("x", "y"))
	assert.False(t, g.WouldCreateCycle("x", "a"))
}
