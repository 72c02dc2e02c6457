// Package epimesh maintains the topology of planar polygonal meshes, the
// kind used by vertex models of epithelial tissue, and provides the local
// edits that let cells exchange neighbors, divide and fuse.
//
// # Meshes
//
// A [Mesh] is a half-edge structure. Every face is a ring of directed
// half-edges, counter-clockwise for positive area, and every half-edge
// names its source and target vertex and the face it bounds. Two half-edges
// running between the same vertices in opposite directions are each
// other's opposites; a half-edge with no opposite lies on the boundary of
// the mesh.
//
// Vertices, half-edges and faces are identified by small integers
// ([VertID], [EdgeID], [FaceID]). Ids of removed elements are not handed
// out again until [Mesh.Reindex] is called, so ids held by a caller stay
// meaningful across a sequence of edits.
//
// # Derived geometry
//
// Edge vectors, lengths, face centroids and areas are derived from vertex
// positions by a [Geometry], usually [PlanarGeometry]. Every edit marks
// the derived quantities stale, and accessors such as [Mesh.EdgeGeom] and
// [Mesh.FaceGeom] fail with [ErrStale] until [Geometry.UpdateAll] has run
// again. Operations that read derived geometry say so in their
// documentation.
//
// # Edits
//
// The elementary edits are
//
//   - inserting a vertex into a half-edge and its opposites ([Mesh.PutVert]),
//   - collapsing a half-edge into its smaller-id endpoint ([Mesh.CollapseEdge]),
//   - splitting a vertex in two along a face ([Mesh.SplitVert]).
//
// They compose into face surgery: [Mesh.FaceDivision] cuts a face along a
// chord, [Mesh.DivideFace] and [Mesh.LateralSplit] divide a cell through
// its centroid.
//
// # T3 transitions
//
// When a boundary vertex drifts close to a boundary edge of another cell,
// the two must be joined before they cross. [Mesh.SwapDetection] and
// [Mesh.ZoneDetection] find candidate vertices with a k-d tree
// ([ProximityIndex]), [Mesh.ClassifyT3] locates the vertex relative to the
// edge, and [Mesh.T3Swap] pushes the pair apart, merges the vertex into an
// end of the edge, or inserts it into the edge and reconnects its neighbors
// along it ([Mesh.ResolveLocal]). [Mesh.T3Sweep] repeats this over a whole
// mesh.
//
// # Errors
//
// Errors are wrapped around a small set of sentinel values and can be
// tested with errors.Is. [Kind] tells apart invalid arguments
// ([KindPrecondition]), configurations an edit cannot handle
// ([KindDegeneracy]) and broken meshes ([KindInvariant]). Edits that fail
// with a precondition or degeneracy error leave the mesh untouched;
// [Mesh.Validate] checks the structural invariants.
//
// # Related packages
//
// Package meshtext reads and writes meshes in a small text format,
// meshsvg draws them and snapshot keeps the states of a simulation in a
// badger database.
package epimesh
