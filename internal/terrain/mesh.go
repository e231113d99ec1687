package terrain

import (
	"fmt"
	"math"

	m "github.com/Faultbox/terragen/pkg/math"
)

// HeightSampler supplies world-space terrain height for horizontal positions.
type HeightSampler interface {
	HeightAt(x, z float32) float32
}

// Generate builds the terrain mesh for the given noise field: a regular plane
// of 2*halfSize world units per side with 2*halfSize subdivisions per axis,
// displaced vertically by the sampler, with smooth normals. Tangents and the
// whole-mesh yaw are separate steps since not every consumer needs them.
// halfSize must be positive; config validation enforces that before this runs.
func Generate(field HeightSampler, halfSize uint32) *Mesh {
	mesh := NewPlane(halfSize)

	for i := range mesh.Positions {
		p := &mesh.Positions[i]
		// Horizontal coordinates stay put; only the up axis is displaced.
		p.Y = field.HeightAt(p.X, p.Z)
	}

	// Normals of the flat plane are meaningless after displacement.
	mesh.ComputeSmoothNormals()
	mesh.computeBounds()
	return mesh
}

// NewPlane builds a flat regular grid plane centered at the origin with a
// 0..1 UV unwrap and consistent counter-clockwise winding seen from above.
func NewPlane(halfSize uint32) *Mesh {
	side := 2 * halfSize // quads per axis, world units per side
	verts := int(side+1) * int(side+1)

	mesh := &Mesh{
		Positions: make([]m.Vec3, 0, verts),
		Normals:   make([]m.Vec3, 0, verts),
		UVs:       make([]m.Vec2, 0, verts),
		Indices:   make([]uint32, 0, 6*int(side)*int(side)),
	}

	for row := uint32(0); row <= side; row++ {
		for col := uint32(0); col <= side; col++ {
			x := float32(col) - float32(halfSize)
			z := float32(row) - float32(halfSize)
			mesh.Positions = append(mesh.Positions, m.Vec3{X: x, Y: 0, Z: z})
			mesh.Normals = append(mesh.Normals, m.Up)
			mesh.UVs = append(mesh.UVs, m.Vec2{
				X: float32(col) / float32(side),
				Y: float32(row) / float32(side),
			})
		}
	}

	width := side + 1
	for row := uint32(0); row < side; row++ {
		for col := uint32(0); col < side; col++ {
			i0 := row*width + col
			i1 := i0 + 1
			i2 := i0 + width
			i3 := i2 + 1
			mesh.Indices = append(mesh.Indices,
				i0, i2, i1,
				i1, i2, i3,
			)
		}
	}

	mesh.computeBounds()
	return mesh
}

// ComputeSmoothNormals recomputes per-vertex normals as the area-weighted
// average of adjacent face normals.
func (mesh *Mesh) ComputeSmoothNormals() {
	for i := range mesh.Normals {
		mesh.Normals[i] = m.Vec3{}
	}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := mesh.Positions[mesh.Indices[i]]
		b := mesh.Positions[mesh.Indices[i+1]]
		c := mesh.Positions[mesh.Indices[i+2]]

		// Unnormalized cross product weights by triangle area.
		face := b.Sub(a).Cross(c.Sub(a))

		mesh.Normals[mesh.Indices[i]] = mesh.Normals[mesh.Indices[i]].Add(face)
		mesh.Normals[mesh.Indices[i+1]] = mesh.Normals[mesh.Indices[i+1]].Add(face)
		mesh.Normals[mesh.Indices[i+2]] = mesh.Normals[mesh.Indices[i+2]].Add(face)
	}

	for i := range mesh.Normals {
		n := mesh.Normals[i]
		if n.Length() < 1e-6 {
			mesh.Normals[i] = m.Up
			continue
		}
		mesh.Normals[i] = n.Normalize()
	}
}

// GenerateTangents computes per-vertex tangents from positions, normals, and
// UVs (Lengyel's method). Returns an error on degenerate UV layouts instead of
// skipping silently, since a bad tangent basis corrupts normal-mapped lighting.
func (mesh *Mesh) GenerateTangents() error {
	if len(mesh.UVs) != len(mesh.Positions) {
		return fmt.Errorf("generate tangents: %d uvs for %d positions", len(mesh.UVs), len(mesh.Positions))
	}

	tan := make([]m.Vec3, len(mesh.Positions))
	bitan := make([]m.Vec3, len(mesh.Positions))

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]

		e1 := mesh.Positions[i1].Sub(mesh.Positions[i0])
		e2 := mesh.Positions[i2].Sub(mesh.Positions[i0])
		duv1 := mesh.UVs[i1].Sub(mesh.UVs[i0])
		duv2 := mesh.UVs[i2].Sub(mesh.UVs[i0])

		det := duv1.X*duv2.Y - duv2.X*duv1.Y
		if float32(math.Abs(float64(det))) < 1e-12 {
			return fmt.Errorf("generate tangents: degenerate uv triangle at index %d", i/3)
		}
		r := 1.0 / det

		t := m.Vec3{
			X: (duv2.Y*e1.X - duv1.Y*e2.X) * r,
			Y: (duv2.Y*e1.Y - duv1.Y*e2.Y) * r,
			Z: (duv2.Y*e1.Z - duv1.Y*e2.Z) * r,
		}
		b := m.Vec3{
			X: (duv1.X*e2.X - duv2.X*e1.X) * r,
			Y: (duv1.X*e2.Y - duv2.X*e1.Y) * r,
			Z: (duv1.X*e2.Z - duv2.X*e1.Z) * r,
		}

		for _, idx := range []uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			bitan[idx] = bitan[idx].Add(b)
		}
	}

	mesh.Tangents = make([]Tangent, len(mesh.Positions))
	for i := range mesh.Positions {
		n := mesh.Normals[i]
		t := tan[i]

		// Gram-Schmidt orthogonalize against the normal.
		t = t.Sub(n.Scale(n.Dot(t)))
		if t.Length() < 1e-6 {
			return fmt.Errorf("generate tangents: zero tangent at vertex %d", i)
		}
		t = t.Normalize()

		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		mesh.Tangents[i] = Tangent{X: t.X, Y: t.Y, Z: t.Z, W: w}
	}
	return nil
}

// RotateYaw applies a rigid rotation about the up axis to the whole mesh,
// positions and direction attributes alike.
func (mesh *Mesh) RotateYaw(angle float32) {
	if angle == 0 {
		return
	}
	rot := m.RotateY(angle)

	for i := range mesh.Positions {
		mesh.Positions[i] = rot.TransformVec3(mesh.Positions[i])
	}
	for i := range mesh.Normals {
		mesh.Normals[i] = rot.TransformDirection(mesh.Normals[i])
	}
	for i := range mesh.Tangents {
		t := mesh.Tangents[i]
		d := rot.TransformDirection(m.Vec3{X: t.X, Y: t.Y, Z: t.Z})
		mesh.Tangents[i] = Tangent{X: d.X, Y: d.Y, Z: d.Z, W: t.W}
	}
	mesh.computeBounds()
}

func (mesh *Mesh) computeBounds() {
	if len(mesh.Positions) == 0 {
		mesh.Bounds = Bounds{}
		return
	}
	min := mesh.Positions[0]
	max := mesh.Positions[0]
	for _, p := range mesh.Positions[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	mesh.Bounds = Bounds{Min: min, Max: max}
}
