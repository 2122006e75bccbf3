// Package tcp locates the tool center point of an articulated tree: the working point of its
// end effector, expressed as an offset from an automatically chosen terminal frame.
package tcp

import (
	"math"
	"sync"
	"weak"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/jointmotion/logging"
	"go.viam.com/jointmotion/referenceframe"
	spatial "go.viam.com/jointmotion/spatialmath"
)

// ErrNoKinematicChain is returned when a tree has no movable joints to attach a tool to.
var ErrNoKinematicChain = errors.New("tree has no kinematic chain")

const (
	// distanceBonus weighs a candidate's distance from the origin when breaking depth ties.
	distanceBonus = 1e-3
	// maxDistanceBonus keeps the distance bonus below one joint of depth.
	maxDistanceBonus = 0.5
)

// reference is the frame a tool offset is measured from, and the joint it pivots about.
type reference struct {
	frame string
	// pivot is the nearest non-fixed joint at or above frame, empty when there is none.
	pivot string
}

type cacheEntry struct {
	tree       weak.Pointer[referenceframe.Tree]
	generation uint64
	ref        reference
}

// Resolver finds tool center points. It remembers the reference frame chosen for the most
// recently resolved tree without keeping that tree alive, and chooses again whenever a different
// tree is passed or the tree's structure has changed since.
type Resolver struct {
	mu     sync.Mutex
	cfg    Config
	cache  *cacheEntry
	logger logging.Logger
}

// NewResolver returns a Resolver whose ResolveConfigured uses cfg.
func NewResolver(cfg Config, logger logging.Logger) *Resolver {
	return &Resolver{cfg: cfg, logger: logger}
}

// ResolveConfigured resolves the tool center point with the configured offset.
func (r *Resolver) ResolveConfigured(tree *referenceframe.Tree) (spatial.Pose, error) {
	return r.Resolve(tree, r.cfg.Offset)
}

// Reference returns the frame chosen the last time a tree was resolved, if any.
func (r *Resolver) Reference() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		return "", false
	}
	return r.cache.ref.frame, true
}

// Resolve returns the world pose of the tool center point of tree. When the reference frame's
// geometry has corners, the tip is the corner farthest from the joint the frame pivots about;
// otherwise it is the geometry's (or frame's) own position. offset is rotated into the reference
// orientation and added to the tip.
func (r *Resolver) Resolve(tree *referenceframe.Tree, offset r3.Vector) (spatial.Pose, error) {
	if tree == nil {
		return nil, errors.New("cannot resolve the tool center point of a nil tree")
	}
	ref, err := r.reference(tree)
	if err != nil {
		return nil, err
	}

	framePose, err := tree.WorldPose(ref.frame)
	if err != nil {
		return nil, err
	}
	info, err := tree.Frame(ref.frame)
	if err != nil {
		return nil, err
	}
	tipPose := framePose
	var vertices []r3.Vector
	if info.Geometry != nil {
		geom := info.Geometry.Transform(framePose)
		tipPose = geom.Pose()
		vertices = geom.Vertices()
	}
	tip := tipPose.Point()
	if len(vertices) > 0 {
		pivot := r3.Vector{}
		if ref.pivot != "" {
			pivotPose, err := tree.WorldPose(ref.pivot)
			if err != nil {
				return nil, err
			}
			pivot = pivotPose.Point()
		}
		tip = farthestFrom(vertices, pivot)
	}

	orientation := tipPose.Orientation()
	position := tip.Add(spatial.RotateVector(orientation, offset))
	return spatial.NewPoseFromOrientation(position, orientation), nil
}

// reference returns the cached reference for tree, choosing it again if the cache is stale.
func (r *Resolver) reference(tree *referenceframe.Tree) (reference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ptr := weak.Make(tree)
	if r.cache != nil && r.cache.tree == ptr && r.cache.generation == tree.Generation() {
		return r.cache.ref, nil
	}
	ref, err := chooseReference(tree)
	if err != nil {
		r.cache = nil
		return reference{}, err
	}
	r.cache = &cacheEntry{tree: ptr, generation: tree.Generation(), ref: ref}
	r.logger.Debugw("selected tool reference frame", "tree", tree.Name(), "frame", ref.frame, "pivot", ref.pivot)
	return ref, nil
}

// chooseReference picks the deepest frame that carries geometry, preferring frames further from
// the origin among equally deep ones. Without any geometry it falls back to the first child of the
// last movable joint.
func chooseReference(tree *referenceframe.Tree) (reference, error) {
	var (
		best      reference
		bestScore = math.Inf(-1)
		lastJoint referenceframe.FrameInfo
		movable   bool
		pivots    = map[string]string{}
	)
	err := tree.Walk(func(info referenceframe.FrameInfo) error {
		pivots[info.Name] = pivots[info.Parent]
		if info.Joint != nil && info.Joint.Type() != referenceframe.FixedJoint {
			pivots[info.Name] = info.Name
			lastJoint = info
			movable = true
		}
		if info.Geometry == nil {
			return nil
		}
		pose, err := tree.WorldPose(info.Name)
		if err != nil {
			return err
		}
		center := info.Geometry.Transform(pose).Pose().Point()
		score := float64(info.Depth) + math.Min(distanceBonus*center.Norm(), maxDistanceBonus)
		if score > bestScore {
			bestScore = score
			best = reference{frame: info.Name, pivot: pivots[info.Name]}
		}
		return nil
	})
	if err != nil {
		return reference{}, err
	}
	if !movable {
		return reference{}, errors.Wrapf(ErrNoKinematicChain, "%q", tree.Name())
	}
	if best.frame != "" {
		return best, nil
	}
	ref := reference{frame: lastJoint.Name, pivot: lastJoint.Name}
	if len(lastJoint.Children) > 0 {
		ref.frame = lastJoint.Children[0]
	}
	return ref, nil
}

// farthestFrom returns the vertex with the greatest distance from p.
func farthestFrom(vertices []r3.Vector, p r3.Vector) r3.Vector {
	best := p
	bestDist := -1.0
	for _, v := range vertices {
		if d := v.Sub(p).Norm2(); d > bestDist {
			best, bestDist = v, d
		}
	}
	return best
}
