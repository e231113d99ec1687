// Package terrain builds heightfield meshes from a noise field and scatters
// vegetation placements across them. Everything here is pure computation:
// callers pass data in and receive plain data back, and the same inputs always
// produce the same outputs.
package terrain

import (
	m "github.com/Faultbox/terragen/pkg/math"
)

// Vertex attribute counts for a heightfield of a given half size are fixed:
// (2h+1)^2 vertices and 2*(2h)^2 triangles.

// Mesh holds heightfield geometry ready for an external renderer.
type Mesh struct {
	Positions []m.Vec3
	Normals   []m.Vec3
	Tangents  []Tangent // empty until GenerateTangents runs
	UVs       []m.Vec2
	Indices   []uint32
	Bounds    Bounds
}

// Tangent is a tangent-space basis vector with handedness in W.
type Tangent struct {
	X, Y, Z, W float32
}

// Bounds is the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min m.Vec3
	Max m.Vec3
}

// VertexCount returns the number of vertices.
func (mesh *Mesh) VertexCount() int {
	return len(mesh.Positions)
}

// TriangleCount returns the number of triangles.
func (mesh *Mesh) TriangleCount() int {
	return len(mesh.Indices) / 3
}

// Placement is one scattered vegetation instance.
type Placement struct {
	Translation m.Vec3
	Scale       float32
	Rotation    m.Quat
	// Variant indexes the interchangeable visual representations registered
	// with the asset collaborator.
	Variant int
}
