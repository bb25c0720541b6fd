//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package graph

// Order computes an execution order for nodes using Kahn's algorithm.
//
// Only edges whose endpoints both exist are considered. Nodes with no
// incoming edges are seeded in the order they appear in nodes, so ties are
// broken by node list order. When a cycle prevents some nodes from being
// ordered, the order of the remaining nodes is returned together with a
// *CycleError naming the unresolved ones.
func Order(nodes []Node, edges []Edge) ([]string, error) {
	ids := make([]string, 0, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	adjacency := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		if _, dup := inDegree[n.ID]; dup {
			continue
		}
		ids = append(ids, n.ID)
		inDegree[n.ID] = 0
	}

	for _, e := range edges {
		if _, ok := inDegree[e.Source]; !ok {
			continue
		}
		if _, ok := inDegree[e.Target]; !ok {
			continue
		}
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		inDegree[e.Target]++
	}

	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(ids))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, next := range adjacency[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) == len(ids) {
		return order, nil
	}
	var unresolved []string
	for _, id := range ids {
		if inDegree[id] > 0 {
			unresolved = append(unresolved, id)
		}
	}
	return order, &CycleError{Unresolved: unresolved}
}
