package cpu

import (
	"math"
	"time"

	"github.com/achilleasa/tiletrace/log"
	"github.com/achilleasa/tiletrace/scene"
	"github.com/achilleasa/tiletrace/types"
)

const (
	// The BVH builder will not attempt to calculate split candidates
	// if the node bbox along an axis is less than this threshold.
	minSideLength float32 = 1e-3

	// If the split step is less than this threshold the BVH builder will
	// not evaluate split candidates along that axis.
	minSplitStep float32 = 1e-5

	// Number of split candidates evaluated along each axis at depth 0.
	// Deeper nodes evaluate proportionally fewer candidates.
	splitCandidates = 64
)

// A bvh node. Leaf nodes have a non-zero count and reference the range
// [first, first+count) of the bvh item list; inner nodes reference their
// children.
type bvhNode struct {
	min types.Vec3
	max types.Vec3

	left  int32
	right int32

	first int32
	count int32
}

// A bounding volume hierarchy over the spherical scene instances.
type bvh struct {
	nodes []bvhNode

	// Instance indices ordered by leaf.
	items []int
}

type bvhItem struct {
	instance int
	min      types.Vec3
	max      types.Vec3
	center   types.Vec3
}

type bvhSplitCandidate struct {
	axis                  int
	splitPoint            float32
	leftCount, rightCount int
	score                 float32
}

type bvhBuilder struct {
	logger log.Logger

	tree *bvh

	// The maximum number of items that are stored in a leaf.
	minLeafItems int

	// Score result chan
	scoreChan chan bvhSplitCandidate

	maxDepth int
}

// Construct a BVH over a set of instances.
//
// The builder uses SAH for scoring splits:
// score = num_items * node bbox face area.
func buildBVH(instances []scene.Instance, minLeafItems int) *bvh {
	workList := make([]bvhItem, len(instances))
	for index, inst := range instances {
		extent := types.XYZ(inst.Radius, inst.Radius, inst.Radius)
		workList[index] = bvhItem{
			instance: index,
			min:      inst.Center.Sub(extent),
			max:      inst.Center.Add(extent),
			center:   inst.Center,
		}
	}

	builder := &bvhBuilder{
		logger:       log.New("bvh builder"),
		tree:         &bvh{items: make([]int, 0, len(instances))},
		minLeafItems: minLeafItems,
		scoreChan:    make(chan bvhSplitCandidate),
	}

	start := time.Now()
	if len(workList) > 0 {
		builder.partition(workList, 0)
	}
	builder.logger.Debugf(
		"bvh build time: %d us, items: %d, nodes: %d, maxDepth: %d",
		time.Since(start).Microseconds(), len(workList), len(builder.tree.nodes), builder.maxDepth,
	)
	return builder.tree
}

// Partition worklist and return node index.
func (b *bvhBuilder) partition(workList []bvhItem, depth int) int32 {
	if depth > b.maxDepth {
		b.maxDepth = depth
	}

	node := bvhNode{
		min: types.XYZ(math.MaxFloat32, math.MaxFloat32, math.MaxFloat32),
		max: types.XYZ(-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32),
	}
	for _, item := range workList {
		node.min = types.MinVec3(node.min, item.min)
		node.max = types.MaxVec3(node.max, item.max)
	}

	// Do we have enough items for partitioning? If not create a leaf
	if len(workList) <= b.minLeafItems {
		return b.createLeaf(node, workList)
	}

	side := node.max.Sub(node.min)
	bestScore := float32(len(workList)) * surfaceArea(side)
	var bestSplit *bvhSplitCandidate

	// Run axis split tests in parallel
	pendingScores := 0
	for axis := 0; axis < 3; axis++ {
		if side[axis] < minSideLength {
			continue
		}

		// Split steps become coarser the deeper we go
		numSteps := max(2, splitCandidates/(depth+1))
		splitStep := side[axis] / float32(numSteps)
		if splitStep < minSplitStep {
			continue
		}

		// Candidates are derived from the step index as repeatedly adding a
		// small step to a large coordinate may not advance it.
		lastPoint := node.min[axis]
		for step := 1; step < numSteps; step++ {
			splitPoint := node.min[axis] + side[axis]*float32(step)/float32(numSteps)
			if splitPoint <= lastPoint || splitPoint >= node.max[axis] {
				continue
			}
			lastPoint = splitPoint

			candidate := bvhSplitCandidate{
				axis:       axis,
				splitPoint: splitPoint,
			}
			pendingScores++
			go candidate.evaluate(workList, b.scoreChan)
		}
	}

	// Process all scores and pick the best split
	for ; pendingScores > 0; pendingScores-- {
		candidate := <-b.scoreChan
		if candidate.score < bestScore {
			bestScore = candidate.score
			bestSplit = &candidate
		}
	}

	// If we can't find a split that improves the current node score create a leaf
	if bestSplit == nil {
		return b.createLeaf(node, workList)
	}

	leftWorkList := make([]bvhItem, 0, bestSplit.leftCount)
	rightWorkList := make([]bvhItem, 0, bestSplit.rightCount)
	for _, item := range workList {
		if item.center[bestSplit.axis] < bestSplit.splitPoint {
			leftWorkList = append(leftWorkList, item)
		} else {
			rightWorkList = append(rightWorkList, item)
		}
	}

	nodeIndex := int32(len(b.tree.nodes))
	b.tree.nodes = append(b.tree.nodes, node)

	left := b.partition(leftWorkList, depth+1)
	right := b.partition(rightWorkList, depth+1)
	b.tree.nodes[nodeIndex].left = left
	b.tree.nodes[nodeIndex].right = right

	return nodeIndex
}

// Calculate the score for splitting the workList with this split candidate
// and report the result to the supplied channel.
func (c bvhSplitCandidate) evaluate(workList []bvhItem, resChan chan<- bvhSplitCandidate) {
	lmin := types.XYZ(math.MaxFloat32, math.MaxFloat32, math.MaxFloat32)
	rmin := lmin
	lmax := types.XYZ(-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32)
	rmax := lmax

	for _, item := range workList {
		if item.center[c.axis] < c.splitPoint {
			c.leftCount++
			lmin = types.MinVec3(lmin, item.min)
			lmax = types.MaxVec3(lmax, item.max)
		} else {
			c.rightCount++
			rmin = types.MinVec3(rmin, item.min)
			rmax = types.MaxVec3(rmax, item.max)
		}
	}

	if c.leftCount == 0 || c.rightCount == 0 {
		c.score = math.MaxFloat32
		resChan <- c
		return
	}

	c.score = float32(c.leftCount)*surfaceArea(lmax.Sub(lmin)) +
		float32(c.rightCount)*surfaceArea(rmax.Sub(rmin))
	resChan <- c
}

// Append a leaf containing all items in the work list and return its index.
func (b *bvhBuilder) createLeaf(node bvhNode, workList []bvhItem) int32 {
	node.first = int32(len(b.tree.items))
	node.count = int32(len(workList))
	for _, item := range workList {
		b.tree.items = append(b.tree.items, item.instance)
	}

	nodeIndex := int32(len(b.tree.nodes))
	b.tree.nodes = append(b.tree.nodes, node)
	return nodeIndex
}

func surfaceArea(side types.Vec3) float32 {
	return side[0]*side[1] + side[1]*side[2] + side[0]*side[2]
}

// Find the closest instance hit by r. The ray direction must be normalized.
func (tree *bvh) closestHit(r ray, instances []scene.Instance) (hit, bool) {
	best := hit{dist: maxHitDist, instance: -1}
	if len(tree.nodes) == 0 {
		return best, false
	}

	invDir := types.XYZ(1/r.dir[0], 1/r.dir[1], 1/r.dir[2])
	var stack [64]int32
	stack[0] = 0
	top := 1
	for top > 0 {
		top--
		node := &tree.nodes[stack[top]]
		if !intersectBox(r.origin, invDir, node.min, node.max, best.dist) {
			continue
		}

		if node.count > 0 {
			for _, index := range tree.items[node.first : node.first+node.count] {
				if t := intersectSphere(r, &instances[index], best.dist); t > 0 {
					best.dist = t
					best.instance = index
				}
			}
			continue
		}

		if top+2 > len(stack) {
			// Degenerate tree; fall back to testing everything.
			return closestHit(r, instances)
		}
		stack[top] = node.left
		stack[top+1] = node.right
		top += 2
	}

	if best.instance < 0 {
		return best, false
	}

	best.point = r.origin.Add(r.dir.Mul(best.dist))
	best.normal = best.point.Sub(instances[best.instance].Center).Normalize()
	return best, true
}

// Slab test against an axis aligned box.
func intersectBox(origin, invDir, boxMin, boxMax types.Vec3, maxDist float32) bool {
	tMin, tMax := float32(0), maxDist
	for axis := 0; axis < 3; axis++ {
		t0 := (boxMin[axis] - origin[axis]) * invDir[axis]
		t1 := (boxMax[axis] - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tMin {
			return false
		}
	}
	return true
}
