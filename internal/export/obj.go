// Package export writes generated terrain and placements to disk: Wavefront
// OBJ for the mesh and a yaml document for the instance list.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/terragen/internal/terrain"
)

// WriteOBJ writes the mesh as Wavefront OBJ with positions, texture
// coordinates, and normals. OBJ indices are 1-based.
func WriteOBJ(w io.Writer, mesh *terrain.Mesh) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# terragen heightfield")
	fmt.Fprintf(bw, "# %d vertices, %d triangles\n", mesh.VertexCount(), mesh.TriangleCount())
	fmt.Fprintln(bw, "o terrain")

	for _, p := range mesh.Positions {
		fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z)
	}
	for _, uv := range mesh.UVs {
		fmt.Fprintf(bw, "vt %g %g\n", uv.X, uv.Y)
	}
	for _, n := range mesh.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := mesh.Indices[i] + 1
		b := mesh.Indices[i+1] + 1
		c := mesh.Indices[i+2] + 1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing obj: %w", err)
	}
	return nil
}

// WriteOBJFile writes the mesh to path, creating parent directories.
func WriteOBJFile(path string, mesh *terrain.Mesh) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteOBJ(f, mesh); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
