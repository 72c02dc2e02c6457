package epimesh

// Validate checks the structural invariants of m and returns an
// [InvariantError] describing the first violation found:
//
//   - every half-edge references live vertices and a live face, and is not
//     a loop;
//   - the half-edges of every face form a single closed ring: each vertex
//     of the face is entered once and left once, and following targets
//     from any half-edge visits all of them;
//   - no face owns two half-edges with the same source and target;
//   - a half-edge has at most one opposite, and opposites are symmetric.
//
// Validate does not look at positions or derived geometry.
func (m *Mesh) Validate() error {
	perFace := make(map[FaceID][]EdgeID)
	for h := range m.Edges() {
		if !m.HasVert(h.Srce) || !m.HasVert(h.Trgt) {
			return invariant(ErrDanglingRef, "edge %d (%d→%d) references a removed vertex", h.ID, h.Srce, h.Trgt)
		}
		if !m.HasFace(h.Face) {
			return invariant(ErrDanglingRef, "edge %d references removed face %d", h.ID, h.Face)
		}
		if h.Srce == h.Trgt {
			return invariant(ErrDanglingRef, "edge %d is a loop at vertex %d", h.ID, h.Srce)
		}
		perFace[h.Face] = append(perFace[h.Face], h.ID)
	}

	for _, f := range sortedKeys(perFace) {
		edges := perFace[f]
		balance := make(map[VertID]int)
		seen := make(map[vertPair]EdgeID)
		bySrce := make(map[VertID][]EdgeID)
		for _, e := range edges {
			h := m.edges[e]
			k := vertPair{h.Srce, h.Trgt}
			if d, dup := seen[k]; dup {
				return invariant(ErrDuplicateEdge, "face %d owns edges %d and %d, both %d→%d", f, d, e, h.Srce, h.Trgt)
			}
			seen[k] = e
			balance[h.Srce]++
			balance[h.Trgt]--
			bySrce[h.Srce] = append(bySrce[h.Srce], e)
		}
		for _, v := range sortedKeys(balance) {
			if balance[v] != 0 {
				return invariant(ErrRingOpen, "face %d: vertex %d is left %+d more times than entered", f, v, balance[v])
			}
		}
		for _, v := range sortedKeys(bySrce) {
			if n := len(bySrce[v]); n > 1 {
				return invariant(ErrRingOpen, "face %d: ring passes %d times through vertex %d", f, n, v)
			}
		}
		e, steps := edges[0], 0
		for {
			e = bySrce[m.edges[e].Trgt][0]
			steps++
			if e == edges[0] {
				break
			}
		}
		if steps != len(edges) {
			return invariant(ErrRingOpen, "face %d: ring through edge %d has %d of its %d edges", f, edges[0], steps, len(edges))
		}
	}

	for h := range m.Edges() {
		opps := m.pairs[vertPair{h.Trgt, h.Srce}]
		if len(opps) > 1 {
			return invariant(ErrOppositeBroken, "edge %d has %d opposites %v", h.ID, len(opps), opps)
		}
		if len(opps) == 1 {
			o := opps[0]
			if m.Opposite(o) != h.ID {
				return invariant(ErrOppositeBroken, "edge %d has opposite %d whose opposite is %d", h.ID, o, m.Opposite(o))
			}
		}
	}
	return nil
}
