package dag

import "sort"

// Cycle is a strongly connected component that contains at least one cycle.
type Cycle struct {
	// Nodes holds the members of the component, sorted.
	Nodes []string
	// Path is one closed walk through the smallest member, starting and
	// ending with it, e.g. [a b c a]. A self-import is [a a].
	Path []string
}

// StronglyConnectedComponents returns the strongly connected components of
// the graph using Tarjan's algorithm. Members of each component are sorted.
// Components are emitted in Tarjan order: a component appears before every
// component that imports it.
//
// The traversal keeps an explicit stack, so deep import chains cannot
// overflow the goroutine stack.
func (g *Graph) StronglyConnectedComponents() [][]string {
	type frame struct {
		id   string
		next int
	}

	index := make(map[string]int, len(g.nodes))
	low := make(map[string]int, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))
	var stack []string
	var components [][]string
	counter := 0

	push := func(id string) {
		index[id] = counter
		low[id] = counter
		counter++
		stack = append(stack, id)
		onStack[id] = true
	}

	for _, root := range g.NodeIDs() {
		if _, seen := index[root]; seen {
			continue
		}

		push(root)
		calls := []frame{{id: root}}
		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			children := g.edges[top.id]

			if top.next < len(children) {
				child := children[top.next]
				top.next++
				if _, seen := index[child]; !seen {
					push(child)
					calls = append(calls, frame{id: child})
				} else if onStack[child] && index[child] < low[top.id] {
					low[top.id] = index[child]
				}
				continue
			}

			id := top.id
			calls = calls[:len(calls)-1]
			if len(calls) > 0 {
				parent := calls[len(calls)-1].id
				if low[id] < low[parent] {
					low[parent] = low[id]
				}
			}

			if low[id] == index[id] {
				var component []string
				for {
					n := len(stack) - 1
					member := stack[n]
					stack = stack[:n]
					onStack[member] = false
					component = append(component, member)
					if member == id {
						break
					}
				}
				sort.Strings(component)
				components = append(components, component)
			}
		}
	}

	return components
}

// ComponentIndex maps every node to the position of its component in the
// result of StronglyConnectedComponents. Two nodes can lie on a common cycle
// only when their indices are equal.
func (g *Graph) ComponentIndex() map[string]int {
	result := make(map[string]int, len(g.nodes))
	for i, component := range g.StronglyConnectedComponents() {
		for _, id := range component {
			result[id] = i
		}
	}
	return result
}

// Cycles returns every component that contains a cycle: components with more
// than one member, and single modules that import themselves. Cycles are
// sorted by their smallest member.
func (g *Graph) Cycles() []Cycle {
	var cycles []Cycle
	for _, component := range g.StronglyConnectedComponents() {
		start := component[0]
		if len(component) == 1 && !g.HasEdge(start, start) {
			continue
		}
		cycles = append(cycles, Cycle{
			Nodes: component,
			Path:  g.shortestCycle(start, component),
		})
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Nodes[0] < cycles[j].Nodes[0]
	})
	return cycles
}

// shortestCycle returns the shortest closed walk through start that stays
// inside members.
func (g *Graph) shortestCycle(start string, members []string) []string {
	if g.HasEdge(start, start) {
		return []string{start, start}
	}

	inside := make(map[string]bool, len(members))
	for _, m := range members {
		inside[m] = true
	}
	allow := func(_, to string) bool { return inside[to] }

	var best []string
	for _, child := range g.edges[start] {
		if !inside[child] {
			continue
		}
		path := g.ShortestPath(child, start, allow, 0)
		if path != nil && (best == nil || len(path)+1 < len(best)) {
			best = append([]string{start}, path...)
		}
	}
	return best
}

// ShortestPath returns the shortest chain of imports from one module to
// another as a list of nodes [from ... to], or nil when to is unreachable.
// Edges are explored in insertion order, so among equally short chains the
// one that follows earlier imports wins. allow, when non-nil, filters the
// edges that may be followed. maxLen bounds the number of edges; zero or
// less means unbounded.
func (g *Graph) ShortestPath(from, to string, allow func(from, to string) bool, maxLen int) []string {
	if _, exists := g.nodes[from]; !exists {
		return nil
	}
	if from == to {
		return []string{from}
	}

	prev := map[string]string{from: ""}
	depth := map[string]int{from: 0}
	queue := []string{from}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if maxLen > 0 && depth[id] >= maxLen {
			continue
		}

		for _, child := range g.edges[id] {
			if _, seen := prev[child]; seen {
				continue
			}
			if allow != nil && !allow(id, child) {
				continue
			}
			prev[child] = id
			depth[child] = depth[id] + 1
			if child == to {
				path := []string{to}
				for curr := id; curr != from; curr = prev[curr] {
					path = append(path, curr)
				}
				path = append(path, from)
				reverse(path)
				return path
			}
			queue = append(queue, child)
		}
	}
	return nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
