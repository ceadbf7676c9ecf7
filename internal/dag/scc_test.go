package dag

import (
	"fmt"
	"reflect"
	"testing"
)

func TestStronglyConnectedComponents(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  [][]string
	}{
		{
			name:  "acyclic chain",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  [][]string{{"c"}, {"b"}, {"a"}},
		},
		{
			name:  "two cycle",
			nodes: []string{"a", "b"},
			edges: [][2]string{{"a", "b"}, {"b", "a"}},
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "two components joined by a bridge",
			nodes: []string{"a", "b", "c", "d", "e"},
			edges: [][2]string{
				{"a", "b"}, {"b", "a"},
				{"b", "c"},
				{"c", "d"}, {"d", "e"}, {"e", "c"},
			},
			want: [][]string{{"c", "d", "e"}, {"a", "b"}},
		},
		{
			name:  "self loop",
			nodes: []string{"a", "b"},
			edges: [][2]string{{"a", "a"}, {"a", "b"}},
			want:  [][]string{{"b"}, {"a"}},
		},
		{
			name:  "empty graph",
			nodes: nil,
			edges: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes, tt.edges)
			got := g.StronglyConnectedComponents()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStronglyConnectedComponents_DeepChain(t *testing.T) {
	// A long ring must not exhaust the stack.
	const n = 100000
	g := NewGraph()
	for i := 0; i < n; i++ {
		g.AddNode(fmt.Sprintf("m%06d", i), nil)
	}
	for i := 0; i < n; i++ {
		if err := g.AddEdge(fmt.Sprintf("m%06d", i), fmt.Sprintf("m%06d", (i+1)%n)); err != nil {
			t.Fatal(err)
		}
	}

	components := g.StronglyConnectedComponents()
	if len(components) != 1 || len(components[0]) != n {
		t.Errorf("expected one component of %d nodes, got %d components", n, len(components))
	}
}

func TestComponentIndex(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "a"}, {"b", "c"}})
	idx := g.ComponentIndex()

	if idx["a"] != idx["b"] {
		t.Error("a and b share a cycle and should share a component")
	}
	if idx["a"] == idx["c"] {
		t.Error("c is not on a cycle with a")
	}
}

func TestCycles(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d", "e", "f"}, [][2]string{
		{"d", "e"}, {"e", "f"}, {"f", "d"}, {"d", "f"},
		{"a", "b"}, {"b", "a"},
		{"c", "c"},
		{"a", "d"},
	})

	got := g.Cycles()
	want := []Cycle{
		{Nodes: []string{"a", "b"}, Path: []string{"a", "b", "a"}},
		{Nodes: []string{"c"}, Path: []string{"c", "c"}},
		{Nodes: []string{"d", "e", "f"}, Path: []string{"d", "f", "d"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestCycles_Acyclic(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	if cycles := g.Cycles(); len(cycles) != 0 {
		t.Errorf("expected no cycles, got %v", cycles)
	}
}

func TestShortestPath(t *testing.T) {
	// a -> b -> c -> d and a shortcut a -> x -> d
	g := build(t, []string{"a", "b", "c", "d", "x"}, [][2]string{
		{"a", "b"}, {"b", "c"}, {"c", "d"},
		{"a", "x"}, {"x", "d"},
	})

	tests := []struct {
		name   string
		from   string
		to     string
		allow  func(from, to string) bool
		maxLen int
		want   []string
	}{
		{name: "shortest wins", from: "a", to: "d", want: []string{"a", "x", "d"}},
		{name: "same node", from: "a", to: "a", want: []string{"a"}},
		{name: "unreachable", from: "d", to: "a", want: nil},
		{name: "unknown start", from: "zz", to: "a", want: nil},
		{
			name:  "filtered edge",
			from:  "a",
			to:    "d",
			allow: func(_, to string) bool { return to != "x" },
			want:  []string{"a", "b", "c", "d"},
		},
		{name: "within bound", from: "a", to: "d", maxLen: 2, want: []string{"a", "x", "d"}},
		{name: "beyond bound", from: "a", to: "d", maxLen: 1, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.ShortestPath(tt.from, tt.to, tt.allow, tt.maxLen)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
