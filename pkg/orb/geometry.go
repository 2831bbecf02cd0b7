package orb

import (
	"math"

	"github.com/taigrr/wireorb/pkg/math3d"
)

// Stroke alpha banding.
const (
	baseAlpha      = 0.06
	bandAlpha      = 0.12
	bandDim        = 0.4
	ringBandEvery  = 3
	meridianBright = 0.18
	meridianEvery  = 4
)

// Kind distinguishes latitude rings from longitude meridians.
type Kind int

const (
	KindRing Kind = iota
	KindMeridian
)

func (k Kind) String() string {
	switch k {
	case KindRing:
		return "ring"
	case KindMeridian:
		return "meridian"
	default:
		return "unknown"
	}
}

// Polyline is one projected ring or meridian ready to be stroked.
type Polyline struct {
	Kind   Kind
	Index  int // ri for rings, si for meridians
	Points []math3d.Vec2
	Alpha  float64
	Width  float64
}

// Rotate turns v about Y by rot.Y and then about X by rot.X.
func Rotate(v math3d.Vec3, rot Rotation) math3d.Vec3 {
	return math3d.YawPitch(rot.X, rot.Y).MulVec3Dir(v)
}

// Project maps a rotated point to screen space around the viewport centre.
// ok is false when the point sits at or behind the eye (fov + z <= 0).
func Project(v math3d.Vec3, vp Viewport, fov float64) (p math3d.Vec2, ok bool) {
	d := fov + v.Z
	if d <= 0 {
		return math3d.Vec2{}, false
	}
	scale := fov / d
	cx, cy := vp.Center()
	p = math3d.V2(cx+v.X*scale, cy+v.Y*scale)
	return p, p.IsFinite()
}

// RingAlpha is the stroke opacity of latitude ring ri.
func RingAlpha(ri int) float64 {
	if ri%ringBandEvery == 0 {
		return baseAlpha + bandAlpha
	}
	return baseAlpha + bandAlpha*bandDim
}

// MeridianAlpha is the stroke opacity of meridian si.
func MeridianAlpha(si int) float64 {
	if si%meridianEvery == 0 {
		return meridianBright
	}
	return baseAlpha
}

// BuildMesh projects the sphere for the given rotation and viewport. It is a
// pure function of its arguments. Rings come first (ri = 1..Rings-1, each
// closed with Segs+1 samples), then meridians (si = 0..Segs-1, Rings+1
// samples pole to pole). A polyline is split where a sample cannot be
// projected. An empty viewport yields nil.
func BuildMesh(rot Rotation, vp Viewport, params Params) []Polyline {
	if vp.Empty() {
		return nil
	}
	params = params.withDefaults()
	topo := params.Topology
	r := vp.Radius(params.RadiusFactor)
	m := math3d.YawPitch(rot.X, rot.Y)

	b := meshBuilder{
		vp:  vp,
		fov: params.FOV,
		out: make([]Polyline, 0, topo.Rings-1+topo.Segs),
	}

	for ri := 1; ri < topo.Rings; ri++ {
		phi := float64(ri) / float64(topo.Rings) * math.Pi
		b.begin(KindRing, ri, RingAlpha(ri), params.RingWidth, topo.Segs+1)
		for si := 0; si <= topo.Segs; si++ {
			theta := float64(si) / float64(topo.Segs) * 2 * math.Pi
			b.add(m.MulVec3Dir(math3d.Spherical(r, phi, theta)))
		}
		b.end()
	}

	for si := 0; si < topo.Segs; si++ {
		theta := float64(si) / float64(topo.Segs) * 2 * math.Pi
		b.begin(KindMeridian, si, MeridianAlpha(si), params.MeridianWidth, topo.Rings+1)
		for ri := 0; ri <= topo.Rings; ri++ {
			phi := float64(ri) / float64(topo.Rings) * math.Pi
			b.add(m.MulVec3Dir(math3d.Spherical(r, phi, theta)))
		}
		b.end()
	}

	return b.out
}

// meshBuilder accumulates move-to/line-to runs into polylines.
type meshBuilder struct {
	vp  Viewport
	fov float64
	out []Polyline
	cur Polyline
}

func (b *meshBuilder) begin(kind Kind, index int, alpha, width float64, capacity int) {
	b.cur = Polyline{
		Kind:   kind,
		Index:  index,
		Alpha:  alpha,
		Width:  width,
		Points: make([]math3d.Vec2, 0, capacity),
	}
}

func (b *meshBuilder) add(v math3d.Vec3) {
	p, ok := Project(v, b.vp, b.fov)
	if !ok {
		// Break the run; the next visible sample starts a new move-to.
		b.flush()
		return
	}
	b.cur.Points = append(b.cur.Points, p)
}

func (b *meshBuilder) end() {
	b.flush()
}

func (b *meshBuilder) flush() {
	if len(b.cur.Points) >= 2 {
		b.out = append(b.out, b.cur)
	}
	b.cur.Points = nil
}
