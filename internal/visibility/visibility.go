// Package visibility implements Component F: the portal-flood
// algorithm that turns a viewpoint and facing direction into a
// per-visleaf shroud mask.
package visibility

import (
	"math"

	"github.com/darthryking/projectvis/internal/bsptree"
	"github.com/darthryking/projectvis/internal/geometry"
	"github.com/darthryking/projectvis/internal/portal"
	"github.com/darthryking/projectvis/internal/shroud"
	"github.com/darthryking/projectvis/internal/visierr"
	"github.com/darthryking/projectvis/internal/vismatrix"
)

const twoPi = 2 * math.Pi

// DefaultFOV is the default field of view, 135 degrees in radians.
const DefaultFOV = 135 * math.Pi / 180

// Options controls a single Flood call.
type Options struct {
	// FOV is the full field of view in radians; halved to produce the
	// two cone rays. Zero means DefaultFOV.
	FOV float64

	// BlockSize is the rasterizer's quadtree seed cell size. Zero
	// means shroud.DefaultBlockSize.
	BlockSize int

	// DebugRayHook, if set, is called once per visleaf popped off the
	// flood stack with the cone rays used to rasterize it, before
	// they're narrowed by any outgoing portal. It exists purely for
	// observability; it never affects flood correctness.
	DebugRayHook func(leaf bsptree.ID, left, right geometry.Ray)

	// UsePVS, when true and a PVS matrix has been loaded via
	// vismatrix.Load, skips traversing a portal whose far leaf is
	// already known unreachable from the current leaf. Purely an
	// optimization hint: with no matrix loaded this is a no-op.
	UsePVS bool
}

type stackEntry struct {
	leaf             bsptree.ID
	leftRay, rightRay geometry.Ray
}

// Flood runs the portal-flood visibility algorithm from viewPos facing
// viewTarget and returns a shroud mask for every visleaf it reaches.
func Flood(tree *bsptree.Tree, portals *portal.Registry, viewPos, viewTarget geometry.Point, opts Options) (map[bsptree.ID]*shroud.Mask, error) {
	startLeaf, err := tree.LeafFromCoords(viewPos.X, viewPos.Y)
	if err != nil {
		return nil, err
	}
	if tree.LeafSolid(startLeaf) {
		return nil, visierr.New(visierr.PreconditionViolation, "visibility: viewpoint lies in a solid leaf")
	}

	fov := opts.FOV
	if fov == 0 {
		fov = DefaultFOV
	}
	blockSize := opts.BlockSize
	if blockSize == 0 {
		blockSize = shroud.DefaultBlockSize
	}

	// viewVector deliberately swaps dx/dy to match the source this
	// algorithm was distilled from; see spec note on §4.6.
	viewVector := geometry.Vector{
		X: float64(viewTarget.Y - viewPos.Y),
		Y: float64(viewTarget.X - viewPos.X),
	}
	viewAngle := math.Mod(math.Atan2(viewVector.Y, viewVector.X), twoPi)
	if viewAngle < 0 {
		viewAngle += twoPi
	}
	halfFOV := fov / 2

	start := geometry.FPoint{X: float64(viewPos.X), Y: float64(viewPos.Y)}
	leftRay := geometry.Ray{
		Start: start,
		End: geometry.FPoint{
			X: start.X + math.Sin(viewAngle+halfFOV),
			Y: start.Y + math.Cos(viewAngle+halfFOV),
		},
	}
	rightRay := geometry.Ray{
		Start: start,
		End: geometry.FPoint{
			X: start.X + math.Sin(viewAngle-halfFOV),
			Y: start.Y + math.Cos(viewAngle-halfFOV),
		},
	}

	result := make(map[bsptree.ID]*shroud.Mask)
	seenPortals := make(map[int]bool)

	stack := []stackEntry{{startLeaf, leftRay, rightRay}}

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v := entry.leaf

		mask, ok := result[v]
		if !ok {
			bounds := tree.Bounds(v)
			mask = shroud.NewMask(bounds.Width(), bounds.Height())
			result[v] = mask
		}

		if opts.DebugRayHook != nil {
			opts.DebugRayHook(v, entry.leftRay, entry.rightRay)
		}

		bounds := tree.Bounds(v)
		topLeft := bounds.TopLeft()
		rebasedLeft := geometry.RebaseRay(entry.leftRay, topLeft)
		rebasedRight := geometry.RebaseRay(entry.rightRay, topLeft)
		shroud.FillWithinViewcone(mask, rebasedLeft, rebasedRight, blockSize)

		for _, handle := range tree.LeafPortalHandles(v) {
			if seenPortals[handle] {
				continue
			}
			p := portals.Portals()[handle]
			far := p.OtherSide(v)

			if opts.UsePVS && !vismatrix.FilterByPVS(tree, v, far) {
				continue
			}
			if !portalWithinViewcone(p, entry.leftRay, entry.rightRay) {
				continue
			}
			seenPortals[handle] = true

			newLeft, newRight := restrictViewcone(p, entry.leftRay, entry.rightRay)
			stack = append(stack, stackEntry{far, newLeft, newRight})
		}
	}

	return result, nil
}

func portalLine(p portal.Portal) geometry.Line {
	return geometry.Line{
		Start: toFPoint(p.Start),
		End:   toFPoint(p.End),
	}
}

func toFPoint(p geometry.Point) geometry.FPoint {
	return geometry.FPoint{X: float64(p.X), Y: float64(p.Y)}
}

// clampToPortal clamps ip componentwise to the portal's endpoint
// rectangle.
func clampToPortal(ip geometry.FPoint, p portal.Portal) geometry.FPoint {
	minX, maxX := minMax(float64(p.Start.X), float64(p.End.X))
	minY, maxY := minMax(float64(p.Start.Y), float64(p.End.Y))
	return geometry.FPoint{
		X: clamp(ip.X, minX, maxX),
		Y: clamp(ip.Y, minY, maxY),
	}
}

func minMax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// portalWithinViewcone implements the portal-in-cone test of §4.6.
func portalWithinViewcone(p portal.Portal, leftRay, rightRay geometry.Ray) bool {
	line := portalLine(p)

	li, lok := geometry.IntersectLineRay(line, leftRay)
	ri, rok := geometry.IntersectLineRay(line, rightRay)

	if lok && rok {
		li = clampToPortal(li, p)
		ri = clampToPortal(ri, p)
		return li != ri
	}
	return lok != rok
}

// restrictViewcone implements the cone-restriction table of §4.6,
// narrowing each ray to the portal it's passing through.
func restrictViewcone(p portal.Portal, leftRay, rightRay geometry.Ray) (geometry.Ray, geometry.Ray) {
	line := portalLine(p)

	newLeft := geometry.Ray{Start: leftRay.Start, End: restrictEndpoint(p, line, leftRay, true)}
	newRight := geometry.Ray{Start: rightRay.Start, End: restrictEndpoint(p, line, rightRay, false)}
	return newLeft, newRight
}

func restrictEndpoint(p portal.Portal, line geometry.Line, ray geometry.Ray, isLeft bool) geometry.FPoint {
	if ip, ok := geometry.IntersectLineRay(line, ray); ok {
		return clampToPortal(ip, p)
	}

	portalStart := toFPoint(p.Start)
	portalEnd := toFPoint(p.End)

	switch p.Orientation {
	case bsptree.Vertical:
		if ray.Start.X < portalStart.X {
			if isLeft {
				return portalStart
			}
			return portalEnd
		}
		if isLeft {
			return portalEnd
		}
		return portalStart
	default: // Horizontal
		if ray.Start.Y < portalStart.Y {
			if isLeft {
				return portalEnd
			}
			return portalStart
		}
		if isLeft {
			return portalStart
		}
		return portalEnd
	}
}
