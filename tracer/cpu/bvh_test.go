package cpu

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/achilleasa/tiletrace/scene"
	"github.com/achilleasa/tiletrace/types"
)

func TestBVHLeafPartitioning(t *testing.T) {
	instances := []scene.Instance{
		{Center: types.XYZ(-1.5, 0.5, -1.5), Radius: 0.5},
		{Center: types.XYZ(1.5, 0.5, -1.5), Radius: 0.5},
		{Center: types.XYZ(-1.5, 0.5, 1.5), Radius: 0.5},
		{Center: types.XYZ(1.5, 0.5, 1.5), Radius: 0.5},
	}

	type spec struct {
		minLeafItems int
		expLeafs     int
		expNodes     int
	}
	specs := []spec{
		{1, 4, 7},
		{2, 2, 3},
		{4, 1, 1},
	}

	for index, s := range specs {
		tree := buildBVH(instances, s.minLeafItems)
		if len(tree.nodes) != s.expNodes {
			t.Fatalf("[spec %d] expected bvh tree to have %d nodes; got %d", index, s.expNodes, len(tree.nodes))
		}

		leafs := 0
		for _, node := range tree.nodes {
			if node.count == 0 {
				continue
			}
			leafs++
			if int(node.count) > s.minLeafItems {
				t.Fatalf("[spec %d] expected at most %d items per leaf; got %d", index, s.minLeafItems, node.count)
			}
		}
		if leafs != s.expLeafs {
			t.Fatalf("[spec %d] expected %d leafs; got %d", index, s.expLeafs, leafs)
		}
		if len(tree.items) != len(instances) {
			t.Fatalf("[spec %d] expected every instance to be stored in a leaf; got %d items", index, len(tree.items))
		}
	}
}

func TestBVHClosestHitMatchesLinearSearch(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	instances := make([]scene.Instance, 40)
	for index := range instances {
		instances[index] = scene.Instance{
			Center: types.XYZ(rng.Float32()*20-10, rng.Float32()*20-10, rng.Float32()*20-10),
			Radius: 0.2 + rng.Float32(),
		}
	}
	tree := buildBVH(instances, 2)

	for index := 0; index < 500; index++ {
		r := ray{
			origin: types.XYZ(rng.Float32()*30-15, rng.Float32()*30-15, rng.Float32()*30-15),
			dir:    types.XYZ(rng.Float32()*2-1, rng.Float32()*2-1, rng.Float32()*2-1).Normalize(),
		}

		expHit, expOk := closestHit(r, instances)
		gotHit, gotOk := tree.closestHit(r, instances)
		if expOk != gotOk {
			t.Fatalf("[ray %d] expected hit %t; got %t", index, expOk, gotOk)
		}
		if expOk && (expHit.instance != gotHit.instance || expHit.dist != gotHit.dist) {
			t.Fatalf("[ray %d] expected hit with instance %d at %f; got instance %d at %f", index, expHit.instance, expHit.dist, gotHit.instance, gotHit.dist)
		}
	}
}

func TestBVHEmptyScene(t *testing.T) {
	tree := buildBVH(nil, 2)
	if _, ok := tree.closestHit(ray{dir: types.XYZ(0, 0, -1)}, nil); ok {
		t.Fatalf("expected no hits for an empty scene")
	}
}

func TestBVHBuildFarFromOrigin(t *testing.T) {
	instances := []scene.Instance{
		{Center: types.XYZ(1000, 0, 0), Radius: 0.0006},
		{Center: types.XYZ(1000, 0, 1), Radius: 0.0006},
		{Center: types.XYZ(1000, 0, 2), Radius: 0.0006},
	}

	done := make(chan *bvh, 1)
	go func() {
		done <- buildBVH(instances, 1)
	}()

	select {
	case tree := <-done:
		if len(tree.items) != len(instances) {
			t.Fatalf("expected every instance to be stored in a leaf; got %d items", len(tree.items))
		}
		if len(tree.nodes) != 5 {
			t.Fatalf("expected bvh tree to have 5 nodes; got %d", len(tree.nodes))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for bvh build to complete")
	}
}
