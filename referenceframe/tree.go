package referenceframe

import (
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/graph/simple"

	"go.viam.com/jointmotion/logging"
	spatial "go.viam.com/jointmotion/spatialmath"
)

// World is the name of the root frame of every tree.
const World = "world"

// frame is one node of the tree arena. Exactly one of joint or offset describes its local pose.
type frame struct {
	name     string
	parent   int
	children []int
	joint    *Joint
	offset   spatial.Pose
	geometry spatial.Geometry

	world spatial.Pose
	stale bool
}

func (f *frame) localPose() spatial.Pose {
	if f.joint != nil {
		return f.joint.LocalPose()
	}
	return f.offset
}

// Tree owns a hierarchy of named frames rooted at World. Frames live in an arena and refer to
// each other by index. World poses are cached per frame and recomputed lazily after a joint
// in their ancestry changes.
//
// A Tree is not safe for concurrent use; it is meant to be driven by a single caller.
type Tree struct {
	name   string
	logger logging.Logger

	frames []*frame
	byName map[string]int

	// mimic edges point from driver to follower; mimicOf holds each follower's relation
	mimics  *simple.DirectedGraph
	mimicOf map[int64]mimicLink

	generation uint64
}

// NewTree returns a tree containing only the World frame.
func NewTree(name string, logger logging.Logger) *Tree {
	root := &frame{name: World, parent: -1, offset: spatial.NewZeroPose(), world: spatial.NewZeroPose()}
	return &Tree{
		name:    name,
		logger:  logger,
		frames:  []*frame{root},
		byName:  map[string]int{World: 0},
		mimics:  simple.NewDirectedGraph(),
		mimicOf: map[int64]mimicLink{},
	}
}

// Name returns the name of the tree.
func (t *Tree) Name() string { return t.name }

// Root returns the name of the root frame.
func (t *Tree) Root() string { return World }

// Generation increases every time the tree's structure, geometry or mimic graph changes.
func (t *Tree) Generation() uint64 { return t.generation }

func (t *Tree) lookup(name string) (int, bool) {
	idx, ok := t.byName[name]
	return idx, ok
}

func (t *Tree) jointIndex(name string) (int, error) {
	idx, ok := t.lookup(name)
	if !ok || t.frames[idx].joint == nil {
		return -1, NewUnknownJointError(name)
	}
	return idx, nil
}

func (t *Tree) addFrame(parent string, f *frame) error {
	if _, ok := t.lookup(f.name); ok {
		return NewDuplicateFrameError(f.name)
	}
	parentIdx, ok := t.lookup(parent)
	if !ok {
		return NewUnknownFrameError(parent)
	}
	f.parent = parentIdx
	f.stale = true
	idx := len(t.frames)
	t.frames = append(t.frames, f)
	t.byName[f.name] = idx
	t.frames[parentIdx].children = append(t.frames[parentIdx].children, idx)
	t.generation++
	return nil
}

// AddLink adds a structural frame at a fixed offset from parent. A nil offset is the zero pose.
func (t *Tree) AddLink(name, parent string, offset spatial.Pose) error {
	if offset == nil {
		offset = spatial.NewZeroPose()
	}
	return t.addFrame(parent, &frame{name: name, offset: offset})
}

// AddJoint adds j as a child of parent. The tree takes ownership of j.
func (t *Tree) AddJoint(parent string, j *Joint) error {
	if j == nil {
		return errors.New("cannot add a nil joint")
	}
	return t.addFrame(parent, &frame{name: j.Name(), joint: j})
}

// SetGeometry attaches renderable extent to a frame, expressed in that frame. A nil geometry detaches it.
func (t *Tree) SetGeometry(name string, g spatial.Geometry) error {
	idx, ok := t.lookup(name)
	if !ok {
		return NewUnknownFrameError(name)
	}
	t.frames[idx].geometry = g
	t.generation++
	return nil
}

// RemoveFrame removes the named frame and all of its descendants. Mimic relations involving any
// removed joint are dropped. The root cannot be removed.
func (t *Tree) RemoveFrame(name string) error {
	idx, ok := t.lookup(name)
	if !ok {
		return NewUnknownFrameError(name)
	}
	if idx == 0 {
		return errors.Errorf("cannot remove the %s frame", World)
	}

	removed := make(map[int]bool)
	t.walkFrom(idx, func(i int) bool {
		removed[i] = true
		return true
	})

	parent := t.frames[t.frames[idx].parent]
	for i, c := range parent.children {
		if c == idx {
			parent.children = append(parent.children[:i:i], parent.children[i+1:]...)
			break
		}
	}

	// Rebuild the arena without the removed frames so indices stay dense.
	remap := make([]int, len(t.frames))
	kept := make([]*frame, 0, len(t.frames)-len(removed))
	for i, f := range t.frames {
		if removed[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, f)
	}
	t.byName = make(map[string]int, len(kept))
	for i, f := range kept {
		if f.parent >= 0 {
			f.parent = remap[f.parent]
		}
		for ci, c := range f.children {
			f.children[ci] = remap[c]
		}
		t.byName[f.name] = i
	}
	t.frames = kept
	t.remapMimics(remap)
	t.generation++

	t.logger.Debugw("removed frame subtree", "tree", t.name, "frame", name, "count", len(removed))
	return nil
}

// walkFrom visits idx and its descendants in depth-first pre-order. Returning false from fn
// skips that frame's descendants.
func (t *Tree) walkFrom(idx int, fn func(int) bool) {
	stack := []int{idx}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		children := t.frames[cur].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// markStale flags a frame and its subtree for recomputation. A stale frame's descendants are
// always stale too, so already-stale subtrees are skipped.
func (t *Tree) markStale(idx int) {
	t.walkFrom(idx, func(i int) bool {
		if t.frames[i].stale {
			return false
		}
		t.frames[i].stale = true
		return true
	})
}

func (t *Tree) worldPose(idx int) spatial.Pose {
	f := t.frames[idx]
	if !f.stale {
		return f.world
	}
	parentPose := spatial.NewZeroPose()
	if f.parent >= 0 {
		parentPose = t.worldPose(f.parent)
	}
	f.world = spatial.Compose(parentPose, f.localPose())
	f.stale = false
	return f.world
}

// WorldPose returns the pose of the named frame relative to World.
func (t *Tree) WorldPose(name string) (spatial.Pose, error) {
	idx, ok := t.lookup(name)
	if !ok {
		return nil, NewUnknownFrameError(name)
	}
	return t.worldPose(idx), nil
}

// Joint returns a read-only view of the named joint.
func (t *Tree) Joint(name string) (JointReader, error) {
	idx, err := t.jointIndex(name)
	if err != nil {
		return nil, err
	}
	return t.frames[idx].joint, nil
}

// HasJoint reports whether the tree holds a joint with the given name.
func (t *Tree) HasJoint(name string) bool {
	_, err := t.jointIndex(name)
	return err == nil
}

// HasFrame reports whether the tree holds a frame, joint or link, with the given name.
func (t *Tree) HasFrame(name string) bool {
	_, ok := t.lookup(name)
	return ok
}

// Parent returns the name of the named frame's parent. The root has no parent.
func (t *Tree) Parent(name string) (string, error) {
	idx, ok := t.lookup(name)
	if !ok {
		return "", NewUnknownFrameError(name)
	}
	if idx == 0 {
		return "", errors.Errorf("%s has no parent", World)
	}
	return t.frames[t.frames[idx].parent].name, nil
}

// SetJointValue applies u to the named joint and propagates the change to its mimic followers.
// It reports whether any joint value changed. An unknown name, a mismatched arity or a mimic
// follower leaves the tree untouched.
func (t *Tree) SetJointValue(name string, u Update) (bool, error) {
	idx, err := t.writableJoint(name, u)
	if err != nil {
		return false, err
	}
	return t.setJoint(idx, u)
}

// SetJointValues applies every update, validating all names and arities before mutating anything.
// Updates are applied in tree order, and mimic followers may not be written directly.
// It reports whether any joint value changed.
func (t *Tree) SetJointValues(updates map[string]Update) (bool, error) {
	indices := make([]int, 0, len(updates))
	var errs error
	for name, u := range updates {
		idx, err := t.writableJoint(name, u)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		indices = append(indices, idx)
	}
	if errs != nil {
		return false, errs
	}
	sort.Ints(indices)

	changed := false
	for _, idx := range indices {
		c, err := t.setJoint(idx, updates[t.frames[idx].name])
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}
	return changed, nil
}

// writableJoint resolves name to a joint that accepts u directly.
func (t *Tree) writableJoint(name string, u Update) (int, error) {
	idx, err := t.jointIndex(name)
	if err != nil {
		return -1, err
	}
	if link, ok := t.mimicOf[int64(idx)]; ok {
		return -1, NewMimicFollowerError(name, t.frames[link.driver].name)
	}
	if dof := t.frames[idx].joint.DoF(); len(u) != dof {
		return -1, NewInvalidArityError(name, len(u), dof)
	}
	return idx, nil
}

func (t *Tree) setJoint(idx int, u Update) (bool, error) {
	changed, err := t.frames[idx].joint.SetValue(u)
	if err != nil || !changed {
		return false, err
	}
	t.markStale(idx)
	t.propagateMimics(idx)
	return true, nil
}

// SetIgnoreLimits toggles clamping for the named joint. Re-enabling limits clamps the current value.
// A mimic follower is re-derived from its driver under the new setting.
func (t *Tree) SetIgnoreLimits(name string, ignore bool) (bool, error) {
	idx, err := t.jointIndex(name)
	if err != nil {
		return false, err
	}
	changed := t.frames[idx].joint.SetIgnoreLimits(ignore)
	if changed {
		t.markStale(idx)
	}
	if link, ok := t.mimicOf[int64(idx)]; ok {
		if t.propagateMimics(int(link.driver)) {
			changed = true
		}
	} else if changed {
		t.propagateMimics(idx)
	}
	return changed, nil
}

// ResetAll sets every joint that is not a mimic follower to zero, clamped to its limits, and
// lets mimic relations derive the followers. It reports whether any value changed.
func (t *Tree) ResetAll() bool {
	changed := false
	for idx, f := range t.frames {
		if f.joint == nil || f.joint.DoF() == 0 {
			continue
		}
		if _, follower := t.mimicOf[int64(idx)]; follower {
			continue
		}
		//nolint:errcheck
		c, _ := t.setJoint(idx, FullUpdate(make([]float64, f.joint.DoF())...))
		changed = changed || c
	}
	return changed
}

// JointValues returns a snapshot of every joint's values, fixed joints included.
func (t *Tree) JointValues() JointValues {
	out := make(JointValues)
	for _, f := range t.frames {
		if f.joint != nil {
			out[f.name] = f.joint.Value()
		}
	}
	return out
}

// FrameInfo describes one frame of a tree at the time it was visited.
type FrameInfo struct {
	Name     string
	Parent   string
	Children []string
	// Joint is nil for links.
	Joint    JointReader
	Geometry spatial.Geometry
	// Depth is the number of non-fixed joints on the path from the root to this frame, inclusive.
	Depth int
}

// Frame describes the named frame.
func (t *Tree) Frame(name string) (FrameInfo, error) {
	idx, ok := t.lookup(name)
	if !ok {
		return FrameInfo{}, NewUnknownFrameError(name)
	}
	return t.info(idx, t.depth(idx)), nil
}

func (t *Tree) depth(idx int) int {
	depth := 0
	for i := idx; i >= 0; i = t.frames[i].parent {
		if j := t.frames[i].joint; j != nil && j.Type() != FixedJoint {
			depth++
		}
	}
	return depth
}

func (t *Tree) info(idx, depth int) FrameInfo {
	f := t.frames[idx]
	fi := FrameInfo{Name: f.name, Geometry: f.geometry, Depth: depth}
	if f.parent >= 0 {
		fi.Parent = t.frames[f.parent].name
	}
	if f.joint != nil {
		fi.Joint = f.joint
	}
	for _, c := range f.children {
		fi.Children = append(fi.Children, t.frames[c].name)
	}
	return fi
}

// Walk calls fn for every frame in depth-first pre-order, children in insertion order.
// Walking stops at the first error, which is returned.
func (t *Tree) Walk(fn func(FrameInfo) error) error {
	depths := make([]int, len(t.frames))
	var err error
	t.walkFrom(0, func(idx int) bool {
		if err != nil {
			return false
		}
		f := t.frames[idx]
		if f.parent >= 0 {
			depths[idx] = depths[f.parent]
		}
		if f.joint != nil && f.joint.Type() != FixedJoint {
			depths[idx]++
		}
		err = fn(t.info(idx, depths[idx]))
		return err == nil
	})
	return err
}

// FrameNames returns every frame name in traversal order, starting with World.
func (t *Tree) FrameNames() []string {
	names := make([]string, 0, len(t.frames))
	t.walkFrom(0, func(idx int) bool {
		names = append(names, t.frames[idx].name)
		return true
	})
	return names
}

// JointNames returns every joint name in traversal order.
func (t *Tree) JointNames() []string {
	var names []string
	t.walkFrom(0, func(idx int) bool {
		if t.frames[idx].joint != nil {
			names = append(names, t.frames[idx].name)
		}
		return true
	})
	return names
}
