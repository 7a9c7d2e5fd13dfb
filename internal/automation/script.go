package automation

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/broadphase/internal/broadphase"
	"github.com/san-kum/broadphase/internal/geom"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrExpectation is returned when an operation's outcome differs from what
// the script expects.
var ErrExpectation = errors.New("automation: expectation failed")

// Script is a named sequence of broad-phase operations on string-named
// shapes, each optionally carrying the outcome it expects.
type Script struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Options     Options `yaml:"options"`
	Ops         []Op    `yaml:"ops"`
}

// Options overrides broad-phase defaults for one script. Nil fields keep the
// default.
type Options struct {
	Margin                 *float64 `yaml:"margin"`
	DisplacementMultiplier *float64 `yaml:"displacement_multiplier"`
	MaxNodes               int      `yaml:"max_nodes"`
	MaxPairs               int      `yaml:"max_pairs"`
}

func (o Options) broadphase(log logrus.FieldLogger) broadphase.Options {
	opts := broadphase.DefaultOptions()
	if o.Margin != nil {
		opts.Tree.Margin = *o.Margin
	}
	if o.DisplacementMultiplier != nil {
		opts.Tree.DisplacementMultiplier = *o.DisplacementMultiplier
	}
	opts.Tree.MaxNodes = o.MaxNodes
	opts.MaxPairs = o.MaxPairs
	opts.Logger = log
	return opts
}

// Op is one step of a script.
//
//	add      shape, min, max
//	remove   shape
//	update   shape, min, max, displacement; expect_reinsert
//	touch    shape
//	compute  expect_pairs
//	overlap  shape, other; expect_overlap
//
// expect_error names the error the op must fail with: unknown_shape,
// duplicate_shape, invalid_box or capacity.
type Op struct {
	Op           string     `yaml:"op"`
	Shape        string     `yaml:"shape"`
	Other        string     `yaml:"other"`
	Min          [3]float64 `yaml:"min,flow"`
	Max          [3]float64 `yaml:"max,flow"`
	Displacement [3]float64 `yaml:"displacement,flow"`

	ExpectPairs    *[][2]string `yaml:"expect_pairs"`
	ExpectReinsert *bool        `yaml:"expect_reinsert"`
	ExpectOverlap  *bool        `yaml:"expect_overlap"`
	ExpectError    string       `yaml:"expect_error"`
}

func (op Op) box() geom.AABB {
	return geom.NewAABB(mgl64.Vec3(op.Min), mgl64.Vec3(op.Max))
}

var namedErrors = map[string]error{
	"unknown_shape":   broadphase.ErrUnknownShape,
	"duplicate_shape": broadphase.ErrDuplicateShape,
	"invalid_box":     broadphase.ErrInvalidBox,
	"capacity":        broadphase.ErrCapacity,
}

// OpResult records what one op did.
type OpResult struct {
	Index    int         `yaml:"index"`
	Op       string      `yaml:"op"`
	Shape    string      `yaml:"shape,omitempty"`
	Pairs    [][2]string `yaml:"pairs,omitempty"`
	Reinsert bool        `yaml:"reinsert,omitempty"`
	Overlap  bool        `yaml:"overlap,omitempty"`
	Error    string      `yaml:"error,omitempty"`
}

type Report struct {
	Script  string           `yaml:"script"`
	Results []OpResult       `yaml:"results"`
	Stats   broadphase.Stats `yaml:"stats"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}
	for i, op := range script.Ops {
		switch op.Op {
		case "add", "remove", "update", "touch", "compute", "overlap":
		default:
			return nil, fmt.Errorf("op %d: unknown op %q", i+1, op.Op)
		}
		if op.ExpectError != "" {
			if _, ok := namedErrors[op.ExpectError]; !ok {
				return nil, fmt.Errorf("op %d: unknown error name %q", i+1, op.ExpectError)
			}
		}
	}
	return &script, nil
}

// RunScript executes every op against a fresh broad phase. It stops at the
// first op whose outcome contradicts its expectations and returns the report
// up to and including that op together with an error wrapping
// ErrExpectation. The broad phase is validated after every op.
func RunScript(script *Script, log logrus.FieldLogger) (*Report, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	bp := broadphase.New[string](script.Options.broadphase(log))
	report := &Report{Script: script.Name, Results: make([]OpResult, 0, len(script.Ops))}

	for i, op := range script.Ops {
		res, err := runOp(bp, op)
		res.Index = i + 1
		if err != nil {
			res.Error = err.Error()
		}
		report.Results = append(report.Results, res)

		if failure := check(op, res, err); failure != "" {
			report.Stats = bp.Stats()
			return report, fmt.Errorf("%s: op %d (%s %s): %s: %w", script.Name, i+1, op.Op, op.Shape, failure, ErrExpectation)
		}
		if verr := bp.Validate(); verr != nil {
			report.Stats = bp.Stats()
			return report, fmt.Errorf("%s: op %d: %w", script.Name, i+1, verr)
		}
		log.WithFields(logrus.Fields{"op": op.Op, "shape": op.Shape, "index": i + 1}).Debug("op done")
	}

	report.Stats = bp.Stats()
	return report, nil
}

func runOp(bp *broadphase.BroadPhase[string], op Op) (OpResult, error) {
	res := OpResult{Op: op.Op, Shape: op.Shape}
	var err error

	switch op.Op {
	case "add":
		_, err = bp.AddShape(op.Shape, op.box())
	case "remove":
		err = bp.RemoveShape(op.Shape)
	case "update":
		res.Reinsert, err = bp.UpdateShape(op.Shape, op.box(), mgl64.Vec3(op.Displacement))
	case "touch":
		err = bp.TouchShape(op.Shape)
	case "compute":
		_, err = bp.ComputeOverlappingPairs(func(a, b string) {
			res.Pairs = append(res.Pairs, normalize(a, b))
		})
		slices.SortFunc(res.Pairs, comparePairs)
	case "overlap":
		res.Overlap, err = bp.TestOverlap(op.Shape, op.Other)
	}
	return res, err
}

// check returns a description of the first broken expectation, or "".
func check(op Op, res OpResult, err error) string {
	if op.ExpectError != "" {
		if !errors.Is(err, namedErrors[op.ExpectError]) {
			return fmt.Sprintf("expected %s error, got %v", op.ExpectError, err)
		}
		return ""
	}
	if err != nil {
		return fmt.Sprintf("unexpected error: %v", err)
	}

	if op.ExpectPairs != nil {
		want := make([][2]string, 0, len(*op.ExpectPairs))
		for _, p := range *op.ExpectPairs {
			want = append(want, normalize(p[0], p[1]))
		}
		slices.SortFunc(want, comparePairs)
		if !slices.Equal(want, res.Pairs) {
			return fmt.Sprintf("expected pairs %v, got %v", want, res.Pairs)
		}
	}
	if op.ExpectReinsert != nil && *op.ExpectReinsert != res.Reinsert {
		return fmt.Sprintf("expected reinsert=%v", *op.ExpectReinsert)
	}
	if op.ExpectOverlap != nil && *op.ExpectOverlap != res.Overlap {
		return fmt.Sprintf("expected overlap=%v", *op.ExpectOverlap)
	}
	return ""
}

func normalize(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

func comparePairs(x, y [2]string) int {
	if c := cmp.Compare(x[0], y[0]); c != 0 {
		return c
	}
	return cmp.Compare(x[1], y[1])
}
