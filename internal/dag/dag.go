// Package dag provides directed graph operations for module import graphs.
// An edge from A to B means module A imports module B. Unlike a build DAG the
// graph may contain cycles, including self-loops; finding them is the point.
package dag

import (
	"fmt"
	"sort"
)

// Node represents a module in the graph.
type Node struct {
	// ID is the unique identifier (project-relative module path)
	ID string
	// Data holds arbitrary node data
	Data any
}

// Graph represents a directed import graph.
type Graph struct {
	nodes   map[string]*Node
	edges   map[string][]string // importer -> imported, in insertion order
	parents map[string][]string // imported -> importers
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a node to the graph, replacing its data if it already exists.
func (g *Graph) AddNode(id string, data any) {
	if node, exists := g.nodes[id]; exists {
		node.Data = data
		return
	}
	g.nodes[id] = &Node{ID: id, Data: data}
	g.edges[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge records that from imports to. Both nodes must exist.
// Self-loops are kept; duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) error {
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("importer node %q does not exist", from)
	}
	if _, exists := g.nodes[to]; !exists {
		return fmt.Errorf("imported node %q does not exist", to)
	}

	if !contains(g.edges[from], to) {
		g.edges[from] = append(g.edges[from], to)
	}
	if !contains(g.parents[to], from) {
		g.parents[to] = append(g.parents[to], from)
	}
	return nil
}

// HasEdge reports whether from imports to.
func (g *Graph) HasEdge(from, to string) bool {
	return contains(g.edges[from], to)
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, exists := g.nodes[id]
	return exists
}

// GetParents returns the modules that import id.
func (g *Graph) GetParents(id string) []string {
	return g.parents[id]
}

// GetChildren returns the modules imported by id, in insertion order.
func (g *Graph) GetChildren(id string) []string {
	return g.edges[id]
}

// NodeIDs returns all node IDs in sorted order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with the cycle
// path. The path starts and ends with the same node. Nodes are visited in
// sorted order so the reported cycle is stable.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, childID := range g.edges[id] {
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	for _, id := range g.NodeIDs() {
		if !visited[id] && dfs(id) {
			return true, cyclePath
		}
	}
	return false, nil
}

// TopologicalSort returns nodes with every module after the modules it
// imports. Returns an error if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	visited := make(map[string]bool)
	var result []*Node

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, childID := range g.edges[id] {
			visit(childID)
		}
		result = append(result, g.nodes[id])
	}

	for _, id := range g.NodeIDs() {
		visit(id)
	}
	return result, nil
}

// GetAffectedNodes returns the given modules plus every module that
// transitively imports one of them.
func (g *Graph) GetAffectedNodes(changedIDs []string) []string {
	affected := make(map[string]bool)
	queue := make([]string, 0, len(changedIDs))
	for _, id := range changedIDs {
		if _, exists := g.nodes[id]; exists && !affected[id] {
			affected[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, parentID := range g.parents[id] {
			if !affected[parentID] {
				affected[parentID] = true
				queue = append(queue, parentID)
			}
		}
	}
	return sortedSet(affected)
}

// GetRoots returns modules that no other module imports.
func (g *Graph) GetRoots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// GetLeaves returns modules that import no project module.
func (g *Graph) GetLeaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.edges[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Subgraph returns a new graph containing only the specified nodes and the
// edges between them.
func (g *Graph) Subgraph(nodeIDs []string) *Graph {
	subgraph := NewGraph()
	nodeSet := make(map[string]bool)

	for _, id := range nodeIDs {
		if node, exists := g.nodes[id]; exists {
			nodeSet[id] = true
			subgraph.AddNode(id, node.Data)
		}
	}
	for _, id := range nodeIDs {
		for _, childID := range g.edges[id] {
			if nodeSet[childID] {
				_ = subgraph.AddEdge(id, childID)
			}
		}
	}
	return subgraph
}

func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}

func sortedSet(set map[string]bool) []string {
	result := make([]string, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}
