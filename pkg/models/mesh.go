// Package models builds the orb as a standalone wire mesh and moves it in and
// out of glTF.
package models

import (
	"math"

	"github.com/taigrr/wireorb/pkg/math3d"
	"github.com/taigrr/wireorb/pkg/orb"
)

// WireMesh is a set of vertices joined by line segments.
type WireMesh struct {
	Name     string
	Vertices []math3d.Vec3
	Lines    [][2]int // Indices into Vertices

	// Bounding box (calculated on build and load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewWireMesh creates an empty mesh.
func NewWireMesh(name string) *WireMesh {
	return &WireMesh{Name: name}
}

// OrbMesh builds the sphere the renderer draws: Rings-1 closed latitude
// rings and Segs pole-to-pole meridians, rotated by rot. Vertices are shared,
// so each pole appears once.
//
// Vertex 0 is the top pole (phi = 0), vertex 1 the bottom pole, followed by
// Segs vertices per ring.
func OrbMesh(topo orb.Topology, radius float64, rot orb.Rotation) *WireMesh {
	if !topo.Valid() {
		topo = orb.DefaultTopology
	}
	m := NewWireMesh("orb")
	ringVerts := (topo.Rings - 1) * topo.Segs
	m.Vertices = make([]math3d.Vec3, 0, 2+ringVerts)
	m.Lines = make([][2]int, 0, ringVerts+topo.Segs*topo.Rings)

	m.Vertices = append(m.Vertices,
		orb.Rotate(math3d.Spherical(radius, 0, 0), rot),
		orb.Rotate(math3d.Spherical(radius, math.Pi, 0), rot),
	)
	for ri := 1; ri < topo.Rings; ri++ {
		phi := float64(ri) / float64(topo.Rings) * math.Pi
		for si := range topo.Segs {
			theta := float64(si) / float64(topo.Segs) * 2 * math.Pi
			m.Vertices = append(m.Vertices, orb.Rotate(math3d.Spherical(radius, phi, theta), rot))
		}
	}

	at := func(ri, si int) int {
		switch ri {
		case 0:
			return 0
		case topo.Rings:
			return 1
		}
		return 2 + (ri-1)*topo.Segs + si%topo.Segs
	}

	for ri := 1; ri < topo.Rings; ri++ {
		for si := range topo.Segs {
			m.Lines = append(m.Lines, [2]int{at(ri, si), at(ri, si+1)})
		}
	}
	for si := range topo.Segs {
		for ri := range topo.Rings {
			m.Lines = append(m.Lines, [2]int{at(ri, si), at(ri+1, si)})
		}
	}

	m.CalculateBounds()
	return m
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *WireMesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0]
	m.BoundsMax = m.Vertices[0]

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// Center returns the center of the bounding box.
func (m *WireMesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *WireMesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// VertexCount returns the number of vertices.
func (m *WireMesh) VertexCount() int {
	return len(m.Vertices)
}

// LineCount returns the number of line segments.
func (m *WireMesh) LineCount() int {
	return len(m.Lines)
}
