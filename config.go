package epimesh

// VertexSpec holds the attributes given to vertices created by
// [Mesh.AddVert]. Vertices created by edits copy their attributes from an
// existing vertex instead.
type VertexSpec struct {
	// Active marks the vertex as participating in the dynamics.
	// Default true.
	Active bool
	// Viscosity is the friction coefficient used by the dynamics.
	// Default 1.
	Viscosity float64
}

// EdgeSpec holds the attributes given to half-edges created by
// [Mesh.AddEdge].
type EdgeSpec struct {
	// LineTension is the line tension parameter of the energy model.
	// Default 0.12.
	LineTension float64
}

// FaceSpec holds the model parameters given to faces created by
// [Mesh.AddFace]. Daughter faces produced by [Mesh.FaceDivision] copy the
// mother's parameters instead.
type FaceSpec struct {
	// Elasticity of the face area. Default 1.
	Elasticity float64
	// Contractility of the face perimeter. Default 0.04.
	Contractility float64
	// PrefArea is the preferred area. Default 1.
	PrefArea float64
}

// TopologyConfig holds the tolerances of topology edits and of proximity
// detection and resolution.
type TopologyConfig struct {
	// Epsilon inflates an edge's bounding box in every direction for the
	// broad phase of [Mesh.SwapDetection]. Default 0.1.
	Epsilon float64
	// DMin is the distance below which a vertex is considered to collide
	// with an edge. Default 0.1.
	DMin float64
	// DSep is the separation used when a vertex is resolved near an
	// edge endpoint, and the spacing of reconnected neighbors. Default 0.01.
	DSep float64
	// AllowTwoSided disables the guard of [Mesh.CollapseEdge] against
	// faces with fewer than three sides. Default false.
	AllowTwoSided bool
}

// Config collects the per-element defaults and the topology tolerances.
type Config struct {
	Vertex   VertexSpec
	Edge     EdgeSpec
	Face     FaceSpec
	Topology TopologyConfig
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Vertex: VertexSpec{
			Active:    true,
			Viscosity: 1,
		},
		Edge: EdgeSpec{
			LineTension: 0.12,
		},
		Face: FaceSpec{
			Elasticity:    1,
			Contractility: 0.04,
			PrefArea:      1,
		},
		Topology: DefaultTopologyConfig(),
	}
}

// DefaultTopologyConfig returns the default topology tolerances.
func DefaultTopologyConfig() TopologyConfig {
	return TopologyConfig{
		Epsilon: 0.1,
		DMin:    0.1,
		DSep:    0.01,
	}
}
