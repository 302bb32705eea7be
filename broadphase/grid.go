// Package broadphase finds the pairs of bodies whose boxes overlap, before any
// hierarchy is traversed.
package broadphase

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akmonengine/bvh/volume"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey - integer coordinates of a grid cell
type CellKey struct {
	X, Y, Z int
}

// cell - indices of the boxes overlapping a hashed cell
type cell struct {
	indices []int
}

// Pair - two boxes that may collide, A < B
type Pair struct {
	A, B int
}

// SpatialGrid - uniform grid hashed into a fixed number of buckets
type SpatialGrid struct {
	cellSize float64
	cells    []cell
	cellMask int
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid - numCells is rounded up to a power of two.
// It panics unless cellSize is positive and finite.
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	if !(cellSize > 0) || math.IsInf(cellSize, 1) {
		panic(fmt.Sprintf("broadphase: invalid cell size %v", cellSize))
	}
	numCells = nextPowerOfTwo(numCells)

	cells := make([]cell, numCells)
	for i := range cells {
		cells[i].indices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// AutoCellSize returns the mean largest extent of the boxes, 1 when there is none
func AutoCellSize(boxes []volume.AABB) float64 {
	sum, n := 0.0, 0
	for _, b := range boxes {
		if b.IsEmpty() {
			continue
		}
		e := b.Max.Sub(b.Min)
		sum += math.Max(e.X(), math.Max(e.Y(), e.Z()))
		n++
	}
	if n == 0 || sum == 0 {
		return 1
	}
	return sum / float64(n)
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

func (sg *SpatialGrid) CellSize() float64 {
	return sg.cellSize
}

// Insert - registers index in every cell touched by box
func (sg *SpatialGrid) Insert(index int, box volume.AABB) {
	sg.forEachCell(box, func(cellIdx int) {
		sg.cells[cellIdx].indices = append(sg.cells[cellIdx].indices, index)
	})
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].indices = sg.cells[i].indices[:0]
	}
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].indices) > 1 {
			sort.Ints(sg.cells[i].indices)
		}
	}
}

// Rebuild - clears the grid and inserts every box under its slice index
func (sg *SpatialGrid) Rebuild(boxes []volume.AABB) {
	sg.Clear()
	for i, box := range boxes {
		if !box.IsEmpty() {
			sg.Insert(i, box)
		}
	}
	sg.SortCells()
}

// FindPairs - sequential version, every candidate goes through policy
func (sg *SpatialGrid) FindPairs(boxes []volume.AABB, policy *StampedPolicy, results *[]Pair) {
	policy.Reset(results)

	for idx, box := range boxes {
		if box.IsEmpty() {
			continue
		}
		sg.forEachCell(box, func(cellIdx int) {
			for _, other := range sg.cells[cellIdx].indices {
				policy.Report(idx, other, boxes, results)
			}
		})
	}
}

// FindPairsParallel - splits the boxes between workers and streams the pairs.
// The channel is closed once every worker is done.
func (sg *SpatialGrid) FindPairsParallel(boxes []volume.AABB, numWorkers int) <-chan Pair {
	numWorkers = max(1, numWorkers)

	var wg sync.WaitGroup
	pairsChan := make(chan Pair, numWorkers*10)

	perWorker := len(boxes) / numWorkers
	if perWorker == 0 {
		perWorker = 1
	}

	for w := 0; w < numWorkers; w++ {
		start := w * perWorker
		end := start + perWorker
		if w == numWorkers-1 {
			end = len(boxes)
		}
		if start >= len(boxes) {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			seen := make([]bool, len(boxes))
			for idx := start; idx < end; idx++ {
				box := boxes[idx]
				if box.IsEmpty() {
					continue
				}
				clear(seen)

				sg.forEachCell(box, func(cellIdx int) {
					for _, other := range sg.cells[cellIdx].indices {
						// Deterministic order, and each pair once
						if other <= idx || seen[other] {
							continue
						}
						seen[other] = true

						if box.Overlaps(boxes[other]) {
							pairsChan <- Pair{A: idx, B: other}
						}
					}
				})
			}
		}(start, end)
	}

	go func() {
		wg.Wait()
		close(pairsChan)
	}()

	return pairsChan
}

func (sg *SpatialGrid) forEachCell(box volume.AABB, fn func(cellIdx int)) {
	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

// worldToCell - world position to cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell - prime number hash of a cell into the bucket array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
