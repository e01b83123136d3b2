package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrDegenerate is returned for curves whose shape cannot be evaluated,
	// such as an arc with a non-positive radius.
	ErrDegenerate = errors.New("degenerate curve")
	// ErrNonFinite is returned when a length or coordinate is NaN or infinite.
	ErrNonFinite = errors.New("non-finite geometry")
	// ErrOutOfDomain is returned for parameters outside the curve's domain.
	ErrOutOfDomain = errors.New("parameter out of domain")
)

// domainTolerance absorbs floating point drift at the end of the domain
// when callers step by length/n.
const domainTolerance = 1e-9

// Curve is a boundary segment owned by the host geometry.
type Curve interface {
	// Length returns the arc length of the curve.
	Length() (float64, error)
	// StartParameter returns the parameter of the curve's first point.
	StartParameter() float64
	// EndParameter returns the parameter of the curve's last point.
	EndParameter() float64
	// Evaluate returns the point at parameter param.
	Evaluate(param float64) (Point3D, error)
	// EvaluateNormalized returns the point at t in [0, 1] of the domain.
	EvaluateNormalized(t float64) (Point3D, error)
}

// Line is a straight segment From -> To.
type Line struct {
	From Point3D
	To   Point3D
}

// NewLine returns the segment a -> b.
func NewLine(a, b Point3D) Line {
	return Line{From: a, To: b}
}

// Length implements Curve.
func (l Line) Length() (float64, error) {
	n := r3.Norm(r3.Sub(l.To, l.From))
	if !isFinite(n) {
		return 0, fmt.Errorf("line length: %w", ErrNonFinite)
	}
	return n, nil
}

// StartParameter implements Curve.
func (l Line) StartParameter() float64 { return 0 }

// EndParameter implements Curve.
func (l Line) EndParameter() float64 {
	n, err := l.Length()
	if err != nil {
		return 0
	}
	return n
}

// Evaluate implements Curve.
func (l Line) Evaluate(param float64) (Point3D, error) {
	n, err := l.Length()
	if err != nil {
		return Point3D{}, err
	}
	if n == 0 {
		if math.Abs(param) > domainTolerance {
			return Point3D{}, fmt.Errorf("line parameter %g: %w", param, ErrOutOfDomain)
		}
		return l.From, nil
	}
	return l.EvaluateNormalized(param / n)
}

// EvaluateNormalized implements Curve.
func (l Line) EvaluateNormalized(t float64) (Point3D, error) {
	t, err := clampNormalized(t)
	if err != nil {
		return Point3D{}, err
	}
	p := r3.Add(l.From, r3.Scale(t, r3.Sub(l.To, l.From)))
	if !IsFinite(p) {
		return Point3D{}, fmt.Errorf("line point: %w", ErrNonFinite)
	}
	return p, nil
}

// Arc is a circular arc in the horizontal plane through Center.Z.
// Sweep is signed: positive runs counter-clockwise from StartAngle.
type Arc struct {
	Center     Point3D
	Radius     float64
	StartAngle float64 // radians
	Sweep      float64 // radians
}

// Length implements Curve.
func (a Arc) Length() (float64, error) {
	if !isFinite(a.Radius) || !isFinite(a.Sweep) || !isFinite(a.StartAngle) {
		return 0, fmt.Errorf("arc length: %w", ErrNonFinite)
	}
	if a.Radius <= 0 {
		return 0, fmt.Errorf("arc radius %g: %w", a.Radius, ErrDegenerate)
	}
	return a.Radius * math.Abs(a.Sweep), nil
}

// StartParameter implements Curve.
func (a Arc) StartParameter() float64 { return 0 }

// EndParameter implements Curve.
func (a Arc) EndParameter() float64 {
	n, err := a.Length()
	if err != nil {
		return 0
	}
	return n
}

// Evaluate implements Curve. param is the arc length from the start point.
func (a Arc) Evaluate(param float64) (Point3D, error) {
	n, err := a.Length()
	if err != nil {
		return Point3D{}, err
	}
	if n == 0 {
		if math.Abs(param) > domainTolerance {
			return Point3D{}, fmt.Errorf("arc parameter %g: %w", param, ErrOutOfDomain)
		}
		return a.pointAt(0), nil
	}
	return a.EvaluateNormalized(param / n)
}

// EvaluateNormalized implements Curve.
func (a Arc) EvaluateNormalized(t float64) (Point3D, error) {
	if _, err := a.Length(); err != nil {
		return Point3D{}, err
	}
	t, err := clampNormalized(t)
	if err != nil {
		return Point3D{}, err
	}
	p := a.pointAt(t)
	if !IsFinite(p) {
		return Point3D{}, fmt.Errorf("arc point: %w", ErrNonFinite)
	}
	return p, nil
}

func (a Arc) pointAt(t float64) Point3D {
	theta := a.StartAngle + t*a.Sweep
	return Pt(
		a.Center.X+a.Radius*math.Cos(theta),
		a.Center.Y+a.Radius*math.Sin(theta),
		a.Center.Z,
	)
}

func clampNormalized(t float64) (float64, error) {
	if !isFinite(t) {
		return 0, fmt.Errorf("normalized parameter: %w", ErrNonFinite)
	}
	if t < -domainTolerance || t > 1+domainTolerance {
		return 0, fmt.Errorf("normalized parameter %g: %w", t, ErrOutOfDomain)
	}
	return math.Max(0, math.Min(1, t)), nil
}
