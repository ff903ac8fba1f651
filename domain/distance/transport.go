package distance

import "math"

// flowEdge is one arc of the residual graph.
type flowEdge struct {
	to   int
	rev  int
	cap  int64
	cost int64
}

type flowGraph struct {
	adj [][]flowEdge
}

func newFlowGraph(n int) *flowGraph {
	return &flowGraph{adj: make([][]flowEdge, n)}
}

func (g *flowGraph) addEdge(from, to int, capacity, cost int64) {
	g.adj[from] = append(g.adj[from], flowEdge{to: to, rev: len(g.adj[to]), cap: capacity, cost: cost})
	g.adj[to] = append(g.adj[to], flowEdge{to: from, rev: len(g.adj[from]) - 1, cap: 0, cost: -cost})
}

// minCostFlow pushes up to limit units from s to t along successive shortest
// paths (Bellman-Ford, so negative residual costs are fine) and returns the
// flow moved and its total cost.
func (g *flowGraph) minCostFlow(s, t int, limit int64) (int64, int64) {
	n := len(g.adj)
	var flow, cost int64
	dist := make([]int64, n)
	inQueue := make([]bool, n)
	prevNode := make([]int, n)
	prevEdge := make([]int, n)

	for flow < limit {
		for i := range dist {
			dist[i] = math.MaxInt64
			prevNode[i] = -1
		}
		dist[s] = 0
		queue := []int{s}
		inQueue[s] = true
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			inQueue[u] = false
			for i, e := range g.adj[u] {
				if e.cap > 0 && dist[u]+e.cost < dist[e.to] {
					dist[e.to] = dist[u] + e.cost
					prevNode[e.to] = u
					prevEdge[e.to] = i
					if !inQueue[e.to] {
						queue = append(queue, e.to)
						inQueue[e.to] = true
					}
				}
			}
		}
		if dist[t] == math.MaxInt64 {
			break
		}

		push := limit - flow
		for v := t; v != s; v = prevNode[v] {
			if c := g.adj[prevNode[v]][prevEdge[v]].cap; c < push {
				push = c
			}
		}
		for v := t; v != s; v = prevNode[v] {
			e := &g.adj[prevNode[v]][prevEdge[v]]
			e.cap -= push
			g.adj[v][e.rev].cap += push
		}
		flow += push
		cost += push * dist[t]
	}
	return flow, cost
}

// transport solves the balanced-or-oversupplied integer transportation problem:
// every unit of demand is met from supply at minimal total cost and leftover
// supply stays put at no cost. It requires sum(supply) >= sum(demand).
func transport(supply, demand []int64, cost [][]int64) int64 {
	n, m := len(supply), len(demand)
	source, sink := n+m, n+m+1
	g := newFlowGraph(n + m + 2)

	var total int64
	for i, s := range supply {
		if s > 0 {
			g.addEdge(source, i, s, 0)
		}
	}
	for j, d := range demand {
		if d > 0 {
			g.addEdge(n+j, sink, d, 0)
			total += d
		}
	}
	for i, s := range supply {
		if s <= 0 {
			continue
		}
		for j, d := range demand {
			if d <= 0 {
				continue
			}
			g.addEdge(i, n+j, math.MaxInt64/4, cost[i][j])
		}
	}

	_, c := g.minCostFlow(source, sink, total)
	return c
}
