package shroud

import "github.com/darthryking/projectvis/internal/geometry"

// DefaultBlockSize is the quadtree seed cell size (B in spec.md
// §4.7); surface dimensions must be a multiple of it.
const DefaultBlockSize = 32

type quadBlock struct {
	size, x, y int
}

// FillWithinViewcone fills surface with the lit sentinel wherever the
// ray-origin-to-pixel vector lies on the interior side of both cone
// rays (leftRay, rightRay must share a common Start). Deterministic:
// identical inputs always produce an identical mask.
func FillWithinViewcone(surface Surface, leftRay, rightRay geometry.Ray, blockSize int) {
	origin := leftRay.Start

	nL := geometry.NormalOfSegment(geometry.Segment{Start: leftRay.Start, End: leftRay.End})
	nR := geometry.NormalOfSegment(geometry.Segment{Start: rightRay.Start, End: rightRay.End})

	// The central direction of the cone, used only to reject corners
	// that lie behind the viewpoint — the two half-plane tests alone
	// cannot distinguish "in front, within the angle" from "directly
	// behind" once the cone spans more than a straight angle.
	forward := geometry.Vector{
		X: (leftRay.End.X - leftRay.Start.X) + (rightRay.End.X - rightRay.Start.X),
		Y: (leftRay.End.Y - leftRay.Start.Y) + (rightRay.End.Y - rightRay.Start.Y),
	}

	classify := func(x, y int) (signL, signR int, behind bool) {
		vec := geometry.Vector{X: float64(x) - origin.X, Y: float64(y) - origin.Y}
		signL = geometry.Sign(geometry.Dot(nL, vec))
		signR = geometry.Sign(geometry.Dot(nR, vec))
		behind = geometry.Dot(forward, vec) < 0
		return
	}

	width, height := surface.Width(), surface.Height()
	var stack []quadBlock
	for y := 0; y < height; y += blockSize {
		for x := 0; x < width; x += blockSize {
			stack = append(stack, quadBlock{blockSize, x, y})
		}
	}

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if b.size == 1 {
			signL, signR, _ := classify(b.x, b.y)
			if signL == -1 && signR == 1 {
				surface.SetPixel(b.x, b.y)
			}
			continue
		}

		corners := [4][2]int{
			{b.x, b.y}, {b.x + b.size, b.y},
			{b.x, b.y + b.size}, {b.x + b.size, b.y + b.size},
		}

		firstL, firstR, anyBehind := classify(corners[0][0], corners[0][1])
		uniform := true
		for _, c := range corners[1:] {
			sl, sr, behind := classify(c[0], c[1])
			anyBehind = anyBehind || behind
			if sl != firstL || sr != firstR {
				uniform = false
			}
		}

		if uniform && !anyBehind {
			if firstL == -1 && firstR == 1 {
				surface.FillRect(b.x, b.y, b.size, b.size)
			}
			continue
		}

		half := b.size / 2
		stack = append(stack,
			quadBlock{half, b.x, b.y},
			quadBlock{half, b.x + half, b.y},
			quadBlock{half, b.x, b.y + half},
			quadBlock{half, b.x + half, b.y + half},
		)
	}
}
