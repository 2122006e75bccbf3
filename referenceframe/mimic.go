package referenceframe

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// mimicLink makes a follower track driver*multiplier + offset, component-wise.
type mimicLink struct {
	driver     int64
	multiplier float64
	offset     float64
}

// AddMimic makes follower track driver: on every update of driver, each follower component is set
// to driver*multiplier + offset through the normal setter path. Chains of mimics are followed
// breadth-first. A follower has at most one driver; adding a second replaces the first.
func (t *Tree) AddMimic(driver, follower string, multiplier, offset float64) error {
	driverIdx, err := t.jointIndex(driver)
	if err != nil {
		return err
	}
	followerIdx, err := t.jointIndex(follower)
	if err != nil {
		return err
	}
	if driverIdx == followerIdx {
		return errors.Errorf("joint %q cannot mimic itself", driver)
	}
	dDoF, fDoF := t.frames[driverIdx].joint.DoF(), t.frames[followerIdx].joint.DoF()
	if dDoF != fDoF || dDoF == 0 {
		return NewMimicArityError(driver, follower, dDoF, fDoF)
	}

	fid := int64(followerIdx)
	if prev, ok := t.mimicOf[fid]; ok {
		t.mimics.RemoveEdge(prev.driver, fid)
	}
	t.mimics.SetEdge(simple.Edge{F: simple.Node(driverIdx), T: simple.Node(followerIdx)})
	t.mimicOf[fid] = mimicLink{driver: int64(driverIdx), multiplier: multiplier, offset: offset}
	t.generation++

	t.logger.Debugw("added mimic", "tree", t.name, "driver", driver, "follower", follower,
		"multiplier", multiplier, "offset", offset)

	t.propagateMimics(driverIdx)
	return nil
}

// RemoveMimic detaches follower from its driver, leaving its current value in place.
func (t *Tree) RemoveMimic(follower string) error {
	idx, err := t.jointIndex(follower)
	if err != nil {
		return err
	}
	fid := int64(idx)
	link, ok := t.mimicOf[fid]
	if !ok {
		return errors.Errorf("joint %q does not mimic another joint", follower)
	}
	t.mimics.RemoveEdge(link.driver, fid)
	delete(t.mimicOf, fid)
	t.generation++
	return nil
}

// MimicDriver returns the name of the joint driving follower, if any.
func (t *Tree) MimicDriver(follower string) (string, bool) {
	idx, err := t.jointIndex(follower)
	if err != nil {
		return "", false
	}
	link, ok := t.mimicOf[int64(idx)]
	if !ok {
		return "", false
	}
	return t.frames[link.driver].name, true
}

// propagateMimics pushes driver's value to its followers, breadth-first, so every follower is
// updated after its own driver. It reports whether any follower changed.
func (t *Tree) propagateMimics(driver int) bool {
	if t.mimics.Node(int64(driver)) == nil {
		return false
	}
	changed := false
	var bfs traverse.BreadthFirst
	bfs.Walk(t.mimics, simple.Node(driver), func(n graph.Node, _ int) bool {
		if n.ID() == int64(driver) {
			return false
		}
		link := t.mimicOf[n.ID()]
		src := t.frames[link.driver].joint.value
		u := make(Update, len(src))
		for i, v := range src {
			u[i] = Set(v*link.multiplier + link.offset)
		}
		// arity was checked when the link was added
		//nolint:errcheck
		c, _ := t.frames[n.ID()].joint.SetValue(u)
		if c {
			t.markStale(int(n.ID()))
			changed = true
		}
		return false
	})
	return changed
}

// remapMimics rewrites the mimic graph after the arena is compacted. remap[old] is the new
// index, or -1 for a removed frame.
func (t *Tree) remapMimics(remap []int) {
	old := t.mimicOf
	t.mimics = simple.NewDirectedGraph()
	t.mimicOf = make(map[int64]mimicLink, len(old))
	for fid, link := range old {
		f, d := remap[fid], remap[link.driver]
		if f < 0 || d < 0 {
			continue
		}
		link.driver = int64(d)
		t.mimics.SetEdge(simple.Edge{F: simple.Node(d), T: simple.Node(f)})
		t.mimicOf[int64(f)] = link
	}
}
