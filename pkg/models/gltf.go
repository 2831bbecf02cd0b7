package models

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/wireorb/pkg/math3d"
)

const generator = "wireorb"

// SaveGLTF writes mesh as a glTF 2.0 asset with a single LINES primitive.
// A .glb path is written as binary glTF; anything else as JSON with the
// buffer embedded as a data URI.
func SaveGLTF(mesh *WireMesh, path string) error {
	doc, err := BuildDocument(mesh)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".glb") {
		if err := gltf.SaveBinary(doc, path); err != nil {
			return fmt.Errorf("save glb: %w", err)
		}
		return nil
	}

	doc.Buffers[0].EmbeddedResource()
	if err := gltf.Save(doc, path); err != nil {
		return fmt.Errorf("save gltf: %w", err)
	}
	return nil
}

// BuildDocument lays mesh out as one buffer holding float positions followed
// by indices. Indices are uint16 when every vertex fits, uint32 otherwise.
func BuildDocument(mesh *WireMesh) (*gltf.Document, error) {
	if mesh == nil || len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("empty mesh")
	}
	for i, l := range mesh.Lines {
		if l[0] < 0 || l[0] >= len(mesh.Vertices) || l[1] < 0 || l[1] >= len(mesh.Vertices) {
			return nil, fmt.Errorf("line %d references missing vertex: %v", i, l)
		}
	}

	mesh.CalculateBounds()

	posLen := len(mesh.Vertices) * 12
	wide := len(mesh.Vertices) > math.MaxUint16
	indexSize, indexType := 2, gltf.ComponentUshort
	if wide {
		indexSize, indexType = 4, gltf.ComponentUint
	}
	idxLen := len(mesh.Lines) * 2 * indexSize

	data := make([]byte, 0, posLen+idxLen)
	for _, v := range mesh.Vertices {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(v.X)))
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(v.Y)))
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(v.Z)))
	}
	for _, l := range mesh.Lines {
		for _, i := range l {
			if wide {
				data = binary.LittleEndian.AppendUint32(data, uint32(i))
			} else {
				data = binary.LittleEndian.AppendUint16(data, uint16(i))
			}
		}
	}

	name := mesh.Name
	if name == "" {
		name = "mesh"
	}

	doc := &gltf.Document{
		Asset: gltf.Asset{Version: "2.0", Generator: generator},
		Scene: ptr(0),
		Scenes: []*gltf.Scene{
			{Name: name, Nodes: []int{0}},
		},
		Nodes: []*gltf.Node{
			{Name: name, Mesh: ptr(0)},
		},
		Buffers: []*gltf.Buffer{
			{ByteLength: len(data), Data: data},
		},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: posLen, Target: gltf.TargetArrayBuffer},
		},
		Accessors: []*gltf.Accessor{
			{
				BufferView:    ptr(0),
				ComponentType: gltf.ComponentFloat,
				Count:         len(mesh.Vertices),
				Type:          gltf.AccessorVec3,
				Min:           vecBound(mesh.BoundsMin),
				Max:           vecBound(mesh.BoundsMax),
			},
		},
	}

	prim := &gltf.Primitive{
		Mode:       gltf.PrimitiveLines,
		Attributes: map[string]int{gltf.POSITION: 0},
	}
	if len(mesh.Lines) > 0 {
		doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
			Buffer:     0,
			ByteOffset: posLen,
			ByteLength: idxLen,
			Target:     gltf.TargetElementArrayBuffer,
		})
		doc.Accessors = append(doc.Accessors, &gltf.Accessor{
			BufferView:    ptr(1),
			ComponentType: indexType,
			Count:         len(mesh.Lines) * 2,
			Type:          gltf.AccessorScalar,
		})
		prim.Indices = ptr(1)
	}
	doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{prim}}}

	return doc, nil
}

// LoadWireGLTF loads every LINES primitive of a glTF or GLB file into one
// wire mesh. Triangle and point primitives are ignored.
func LoadWireGLTF(path string) (*WireMesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewWireMesh(filepath.Base(path))
	for _, m := range doc.Meshes {
		if err := processLines(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	mesh.CalculateBounds()

	return mesh, nil
}

// processLines extracts line geometry from a glTF mesh.
func processLines(doc *gltf.Document, m *gltf.Mesh, mesh *WireMesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveLines {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		base := len(mesh.Vertices)
		mesh.Vertices = append(mesh.Vertices, positions...)

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices: consecutive vertex pairs
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+1 < len(indices); i += 2 {
			a, b := indices[i], indices[i+1]
			if a >= len(positions) || b >= len(positions) {
				return fmt.Errorf("index out of range: %d/%d of %d", a, b, len(positions))
			}
			mesh.Lines = append(mesh.Lines, [2]int{base + a, base + b})
		}
	}

	return nil
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v/%v", accessor.Type, accessor.ComponentType)
	}

	buf, start, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		off := start + i*stride
		result[i] = math3d.V3(
			float64(readFloat32(buf[off:])),
			float64(readFloat32(buf[off+4:])),
			float64(readFloat32(buf[off+8:])),
		)
	}
	return result, nil
}

// readIndices reads index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	buf, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		off := start + i*stride
		switch size {
		case 1:
			result[i] = int(buf[off])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(buf[off:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(buf[off:]))
		}
	}
	return result, nil
}

// accessorBytes resolves the buffer backing accessor and checks that count
// elements of elemSize bytes fit in it.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) (buf []byte, start, stride int, err error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}
	view := doc.BufferViews[*accessor.BufferView]
	if view.Buffer >= len(doc.Buffers) {
		return nil, 0, 0, fmt.Errorf("buffer %d out of range", view.Buffer)
	}

	// gltf.Open decodes GLB chunks and data URIs into Data.
	buf = doc.Buffers[view.Buffer].Data
	if buf == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	start = view.ByteOffset + accessor.ByteOffset
	stride = view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if end > len(buf) {
			return nil, 0, 0, fmt.Errorf("accessor reads past buffer end (%d > %d)", end, len(buf))
		}
	}
	return buf, start, stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func vecBound(v math3d.Vec3) []float64 {
	return []float64{float64(float32(v.X)), float64(float32(v.Y)), float64(float32(v.Z))}
}

func ptr(i int) *int {
	return &i
}
