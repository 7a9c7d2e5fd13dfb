package broadphase

import (
	"fmt"
	"io"
	"iter"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/broadphase/internal/geom"
	"github.com/san-kum/broadphase/internal/tree"
	"github.com/sirupsen/logrus"
)

// PairFunc receives one candidate pair. a belongs to the lower handle.
type PairFunc[S comparable] func(a, b S)

type Options struct {
	Tree tree.Options `yaml:"tree"`
	// MaxPairs bounds the potential pair buffer of a single
	// ComputeOverlappingPairs call, duplicates included. Zero means unbounded.
	MaxPairs int `yaml:"max_pairs"`

	Logger logrus.FieldLogger `yaml:"-"`
}

func DefaultOptions() Options {
	return Options{Tree: tree.DefaultOptions()}
}

// Stats is a snapshot of the coordinator's size and tree quality.
type Stats struct {
	Proxies    int
	Nodes      int
	Moved      int
	Height     int
	MaxBalance int
	AreaRatio  float64
}

// BroadPhase maps shape references onto tree proxies and reports the
// candidate pairs touched by proxies that moved since the previous step.
type BroadPhase[S comparable] struct {
	tree *tree.Tree

	handles map[S]geom.Handle
	shapes  map[geom.Handle]S

	// moved lists handles to re-test; movedAt indexes into it
	moved   []geom.Handle
	movedAt map[geom.Handle]int

	pairs    []geom.Pair
	maxPairs int

	log logrus.FieldLogger
}

func New[S comparable](opts Options) *BroadPhase[S] {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &BroadPhase[S]{
		tree:     tree.New(opts.Tree),
		handles:  make(map[S]geom.Handle),
		shapes:   make(map[geom.Handle]S),
		movedAt:  make(map[geom.Handle]int),
		maxPairs: max(opts.MaxPairs, 0),
		log:      log.WithField("component", "broadphase"),
	}
}

// AddShape creates a proxy for ref and marks it moved so the next
// ComputeOverlappingPairs tests it against everything present.
func (bp *BroadPhase[S]) AddShape(ref S, box geom.AABB) (geom.Handle, error) {
	if _, ok := bp.handles[ref]; ok {
		return geom.NullHandle, fmt.Errorf("add %v: %w", ref, ErrDuplicateShape)
	}

	h, err := bp.tree.Insert(box)
	if err != nil {
		return geom.NullHandle, fmt.Errorf("add %v: %w", ref, err)
	}
	bp.handles[ref] = h
	bp.shapes[h] = ref
	bp.markMoved(h)

	bp.log.WithFields(logrus.Fields{"shape": ref, "handle": h}).Debug("proxy added")
	return h, nil
}

// RemoveShape destroys the proxy of ref. Pending re-tests of the proxy are
// dropped with it.
func (bp *BroadPhase[S]) RemoveShape(ref S) error {
	h, ok := bp.handles[ref]
	if !ok {
		return fmt.Errorf("remove %v: %w", ref, ErrUnknownShape)
	}
	if err := bp.tree.Remove(h); err != nil {
		return fmt.Errorf("remove %v: %w", ref, err)
	}

	bp.unmarkMoved(h)
	delete(bp.handles, ref)
	delete(bp.shapes, h)

	bp.log.WithFields(logrus.Fields{"shape": ref, "handle": h}).Debug("proxy removed")
	return nil
}

// UpdateShape moves the proxy of ref to box. Every change of a shape's world
// box must go through here, whatever caused it. The proxy is marked moved
// only when the tree had to reinsert it; the returned bool reports that.
func (bp *BroadPhase[S]) UpdateShape(ref S, box geom.AABB, displacement mgl64.Vec3) (bool, error) {
	h, ok := bp.handles[ref]
	if !ok {
		return false, fmt.Errorf("update %v: %w", ref, ErrUnknownShape)
	}

	changed, err := bp.tree.Update(h, box, displacement)
	if err != nil {
		return false, fmt.Errorf("update %v: %w", ref, err)
	}
	if changed {
		bp.markMoved(h)
		bp.log.WithFields(logrus.Fields{"shape": ref, "handle": h}).Debug("proxy reinserted")
	}
	return changed, nil
}

// TouchShape schedules ref for re-testing without changing its box.
func (bp *BroadPhase[S]) TouchShape(ref S) error {
	h, ok := bp.handles[ref]
	if !ok {
		return fmt.Errorf("touch %v: %w", ref, ErrUnknownShape)
	}
	bp.markMoved(h)
	return nil
}

// ComputeOverlappingPairs queries the tree with the fat box of every moved
// proxy, collapses the hits into unique ordered pairs and clears the moved
// set. fn, when non-nil, is called once per pair after the moved set is
// cleared, so it may add, move or remove shapes for the next step. Shape refs
// are resolved before the first call; a shape removed by fn is still reported
// for the rest of this step's pairs under its old ref.
//
// The returned slice is owned by the caller and is not touched again by the
// coordinator. On error nothing is reported and the moved set is kept.
func (bp *BroadPhase[S]) ComputeOverlappingPairs(fn PairFunc[S]) ([]geom.Pair, error) {
	buf := bp.pairs[:0]
	overflow := false

	for _, h := range bp.moved {
		fat, err := bp.tree.FatAABB(h)
		if err != nil {
			// moved only ever holds live handles
			return nil, fmt.Errorf("compute pairs: %w", err)
		}
		bp.tree.QueryFunc(fat, func(other geom.Handle) bool {
			if other == h {
				return true
			}
			if bp.maxPairs > 0 && len(buf) >= bp.maxPairs {
				overflow = true
				return false
			}
			buf = append(buf, geom.MakePair(h, other))
			return true
		})
		if overflow {
			bp.pairs = buf[:0]
			bp.log.WithFields(logrus.Fields{"moved": len(bp.moved), "max_pairs": bp.maxPairs}).Warn("pair buffer full")
			return nil, fmt.Errorf("compute pairs: more than %d potential pairs: %w", bp.maxPairs, ErrCapacity)
		}
	}

	slices.SortFunc(buf, geom.Pair.Compare)
	buf = slices.Compact(buf)
	bp.pairs = buf[:0]

	out := slices.Clone(buf)
	var refs [][2]S
	if fn != nil {
		// handles freed by fn get reused, so look refs up now
		refs = make([][2]S, len(out))
		for i, p := range out {
			refs[i] = [2]S{bp.shapes[p.A], bp.shapes[p.B]}
		}
	}
	moved := len(bp.moved)
	bp.clearMoved()

	bp.log.WithFields(logrus.Fields{"moved": moved, "pairs": len(out)}).Debug("pairs computed")

	for _, r := range refs {
		fn(r[0], r[1])
	}
	return out, nil
}

// TestOverlap reports whether the fat boxes of two shapes overlap.
func (bp *BroadPhase[S]) TestOverlap(a, b S) (bool, error) {
	boxA, err := bp.FatAABB(a)
	if err != nil {
		return false, err
	}
	boxB, err := bp.FatAABB(b)
	if err != nil {
		return false, err
	}
	return boxA.Overlaps(boxB), nil
}

func (bp *BroadPhase[S]) FatAABB(ref S) (geom.AABB, error) {
	h, ok := bp.handles[ref]
	if !ok {
		return geom.AABB{}, fmt.Errorf("fat aabb %v: %w", ref, ErrUnknownShape)
	}
	return bp.tree.FatAABB(h)
}

func (bp *BroadPhase[S]) Handle(ref S) (geom.Handle, bool) {
	h, ok := bp.handles[ref]
	return h, ok
}

func (bp *BroadPhase[S]) Shape(h geom.Handle) (S, bool) {
	ref, ok := bp.shapes[h]
	return ref, ok
}

// Query yields every shape whose fat box overlaps box.
func (bp *BroadPhase[S]) Query(box geom.AABB) iter.Seq[S] {
	return func(yield func(S) bool) {
		bp.tree.QueryFunc(box, func(h geom.Handle) bool {
			return yield(bp.shapes[h])
		})
	}
}

// Len returns the number of live proxies.
func (bp *BroadPhase[S]) Len() int { return bp.tree.Len() }

// MovedLen returns the number of proxies waiting to be re-tested.
func (bp *BroadPhase[S]) MovedLen() int { return len(bp.moved) }

func (bp *BroadPhase[S]) Height() int { return bp.tree.Height() }

func (bp *BroadPhase[S]) Stats() Stats {
	return Stats{
		Proxies:    bp.tree.Len(),
		Nodes:      bp.tree.NodeCount(),
		Moved:      len(bp.moved),
		Height:     bp.tree.Height(),
		MaxBalance: bp.tree.MaxBalance(),
		AreaRatio:  bp.tree.AreaRatio(),
	}
}

// Validate checks the tree and the bookkeeping around it.
func (bp *BroadPhase[S]) Validate() error {
	if err := bp.tree.Validate(); err != nil {
		return err
	}
	if len(bp.handles) != bp.tree.Len() || len(bp.shapes) != bp.tree.Len() {
		return fmt.Errorf("%w: %d refs, %d handles, %d leaves", tree.ErrCorrupt, len(bp.handles), len(bp.shapes), bp.tree.Len())
	}
	for ref, h := range bp.handles {
		if back, ok := bp.shapes[h]; !ok || back != ref || !bp.tree.Contains(h) {
			return fmt.Errorf("%w: shape %v maps to dead handle %d", tree.ErrCorrupt, ref, h)
		}
	}
	if len(bp.movedAt) != len(bp.moved) {
		return fmt.Errorf("%w: moved index out of sync", tree.ErrCorrupt)
	}
	for i, h := range bp.moved {
		if bp.movedAt[h] != i || !bp.tree.Contains(h) {
			return fmt.Errorf("%w: moved handle %d is stale", tree.ErrCorrupt, h)
		}
	}
	return nil
}

func (bp *BroadPhase[S]) markMoved(h geom.Handle) {
	if _, ok := bp.movedAt[h]; ok {
		return
	}
	bp.movedAt[h] = len(bp.moved)
	bp.moved = append(bp.moved, h)
}

// unmarkMoved swaps the last entry into h's slot.
func (bp *BroadPhase[S]) unmarkMoved(h geom.Handle) {
	i, ok := bp.movedAt[h]
	if !ok {
		return
	}
	last := len(bp.moved) - 1
	if i != last {
		bp.moved[i] = bp.moved[last]
		bp.movedAt[bp.moved[i]] = i
	}
	bp.moved = bp.moved[:last]
	delete(bp.movedAt, h)
}

func (bp *BroadPhase[S]) clearMoved() {
	bp.moved = bp.moved[:0]
	clear(bp.movedAt)
}
