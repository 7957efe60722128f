// Package ridge extracts the distance ridge from an EDT output: the subset
// of foreground voxels whose ball is not fully covered by any 26-neighbor's
// ball, using a precomputed integer-grid ball-inclusion template so the
// covering check never needs a square root at scan time.
package ridge

import (
	"fmt"
	"math"
	"sort"

	"github.com/MeKo-Tech/localthickness/internal/volume"
	"github.com/MeKo-Tech/localthickness/internal/worker"
)

// DistanceIndex maps observed integer squared distances to a dense row
// position, so the ridge Template can be stored as a compact 3xN table
// instead of one row per possible squared radius.
type DistanceIndex struct {
	Values []int64
	lookup map[int64]int
	// RSqMax is floor(distMax^2+0.5)+1, the upper bound on squared radius
	// named in the data model; kept for introspection and logging, not
	// required by the ridge test itself.
	RSqMax int64
}

// Pos returns the row position of rSq, or false if rSq was never observed.
func (idx *DistanceIndex) Pos(rSq int64) (int, bool) {
	p, ok := idx.lookup[rSq]
	return p, ok
}

// BuildDistanceIndex scans every voxel of an EDT distance volume and
// collects the ascending, de-duplicated set of occurring squared distances,
// each rounded with the floor(d^2+0.5) integer-coercion rule.
func BuildDistanceIndex(edtOut *volume.FloatVolume) *DistanceIndex {
	var distMax float64
	seen := make(map[int64]struct{})
	for _, v := range edtOut.Values {
		d := float64(v)
		if d > distMax {
			distMax = d
		}
		seen[roundRSq(d)] = struct{}{}
	}

	values := make([]int64, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	lookup := make(map[int64]int, len(values))
	for i, v := range values {
		lookup[v] = i
	}

	rSqMax := int64(math.Floor(distMax*distMax+0.5)) + 1
	return &DistanceIndex{Values: values, lookup: lookup, RSqMax: rSqMax}
}

func roundRSq(d float64) int64 {
	return int64(math.Floor(d*d + 0.5))
}

// Template is the 3xN ball-inclusion table: Rows[class][pos] is the minimum
// neighbor squared radius (r1Sq) that fully covers a ball of squared radius
// Index.Values[pos] centered one unit-displacement class away.
type Template struct {
	Index *DistanceIndex
	Rows  [3][]int64
}

// classDisplacements holds one representative offset per displacement
// class: class 0 (face, one nonzero component), class 1 (edge, two), class
// 2 (corner, three). By lattice symmetry these three cover all 26 neighbors
// within their class.
var classDisplacements = [3][3]int{
	{1, 0, 0},
	{1, 1, 0},
	{1, 1, 1},
}

// BuildTemplate computes the ball-inclusion table for every squared
// distance observed in idx.
func BuildTemplate(idx *DistanceIndex) *Template {
	t := &Template{Index: idx}
	for class := 0; class < 3; class++ {
		dx, dy, dz := classDisplacements[class][0], classDisplacements[class][1], classDisplacements[class][2]
		row := make([]int64, len(idx.Values))
		for i, rSq := range idx.Values {
			row[i] = minCoveringR1Sq(rSq, dx, dy, dz)
		}
		t.Rows[class] = row
	}
	return t
}

// minCoveringR1Sq computes the smallest integer r1Sq such that the
// integer-grid lattice points inside a ball of squared radius r1Sq centered
// at the unit displacement (dx,dy,dz) contain every lattice point inside
// the ball of squared radius rSq at the origin.
func minCoveringR1Sq(rSq int64, dx, dy, dz int) int64 {
	r := int64(1) + isqrt(rSq)
	var best int64
	absDx, absDy, absDz := int64(abs(dx)), int64(abs(dy)), int64(abs(dz))
	for k := int64(0); k <= r; k++ {
		if k*k > rSq {
			continue
		}
		for j := int64(0); j <= r; j++ {
			if k*k+j*j > rSq {
				continue
			}
			rem := rSq - k*k - j*j
			iPlus := isqrt(rem) + absDx
			kTerm := k - absDz
			jTerm := j - absDy
			val := kTerm*kTerm + jTerm*jTerm + iPlus*iPlus
			if val > best {
				best = val
			}
		}
	}
	return best
}

func isqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return int64(math.Sqrt(float64(n)))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Compute extracts the distance ridge: voxels whose ball is not covered by
// any 26-neighbor's ball keep their EDT distance; every other voxel
// (including background) is 0.
func Compute(edtOut *volume.FloatVolume, workers int) (*volume.FloatVolume, error) {
	if edtOut == nil {
		return nil, volume.ErrNullInput
	}
	if edtOut.W <= 0 || edtOut.H <= 0 || edtOut.D <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", volume.ErrInvalidShape, edtOut.W, edtOut.H, edtOut.D)
	}

	idx := BuildDistanceIndex(edtOut)
	tmpl := BuildTemplate(idx)

	w, h, d := edtOut.W, edtOut.H, edtOut.D
	out, err := volume.NewFloatVolume(w, h, d)
	if err != nil {
		return nil, err
	}
	workers = worker.Count(workers)

	err = worker.Run(d, workers, func(zs []int) {
		for _, z := range zs {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					dv := edtOut.At(x, y, z)
					if dv <= 0 {
						continue
					}
					rSqV := roundRSq(float64(dv))
					posV, ok := idx.Pos(rSqV)
					if !ok {
						continue
					}
					if !coveredByNeighbor(edtOut, tmpl, posV, x, y, z, w, h, d) {
						out.Set(x, y, z, dv)
					}
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// coveredByNeighbor reports whether any of v's 26 in-bounds neighbors has a
// ball that fully covers v's ball, short-circuiting on the first match.
func coveredByNeighbor(edtOut *volume.FloatVolume, tmpl *Template, posV, x, y, z, w, h, d int) bool {
	for dz := -1; dz <= 1; dz++ {
		nz := z + dz
		if nz < 0 || nz >= d {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			ny := y + dy
			if ny < 0 || ny >= h {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				nx := x + dx
				if nx < 0 || nx >= w {
					continue
				}
				class := abs(dx) + abs(dy) + abs(dz) - 1
				dn := edtOut.At(nx, ny, nz)
				rSqN := roundRSq(float64(dn))
				if rSqN >= tmpl.Rows[class][posV] {
					return true
				}
			}
		}
	}
	return false
}
