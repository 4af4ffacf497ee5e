package ensemble

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// Objective names accepted by WithObjective.
const (
	SquaredError  = "squared_error"
	AbsoluteError = "absolute_error"
	Huber         = "huber"
)

// Objective is a per-sample boosting loss with its first and second
// derivatives with respect to the prediction.
type Objective interface {
	Gradient(prediction, target float64) float64
	Hessian(prediction, target float64) float64
	Loss(prediction, target float64) float64
	// InitScore is the constant prediction boosting starts from.
	InitScore(targets []float64) float64
	Name() string
}

// ObjectiveByName returns the objective registered under name.
func ObjectiveByName(name string) (Objective, error) {
	switch name {
	case SquaredError, "":
		return squaredError{}, nil
	case AbsoluteError:
		return absoluteError{}, nil
	case Huber:
		return huber{delta: 1}, nil
	default:
		return nil, errors.NewValidationError("objective", "must be squared_error, absolute_error or huber", name)
	}
}

type squaredError struct{}

func (squaredError) Gradient(prediction, target float64) float64 { return prediction - target }
func (squaredError) Hessian(float64, float64) float64             { return 1 }
func (squaredError) Name() string                                 { return SquaredError }

func (squaredError) Loss(prediction, target float64) float64 {
	d := prediction - target
	return d * d
}

func (squaredError) InitScore(targets []float64) float64 {
	return stat.Mean(targets, nil)
}

// absoluteError uses the sign of the residual as gradient and a unit Hessian.
type absoluteError struct{}

func (absoluteError) Hessian(float64, float64) float64 { return 1 }
func (absoluteError) Name() string                     { return AbsoluteError }

func (absoluteError) Gradient(prediction, target float64) float64 {
	switch d := prediction - target; {
	case d > 0:
		return 1
	case d < 0:
		return -1
	}
	return 0
}

func (absoluteError) Loss(prediction, target float64) float64 {
	return math.Abs(prediction - target)
}

func (absoluteError) InitScore(targets []float64) float64 {
	sorted := slices.Clone(targets)
	slices.Sort(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// huber is quadratic within delta of the target and linear beyond it.
type huber struct {
	delta float64
}

func (h huber) Name() string { return Huber }

func (h huber) Gradient(prediction, target float64) float64 {
	d := prediction - target
	if math.Abs(d) <= h.delta {
		return d
	}
	return math.Copysign(h.delta, d)
}

func (h huber) Hessian(prediction, target float64) float64 {
	if math.Abs(prediction-target) <= h.delta {
		return 1
	}
	return 1e-7
}

func (h huber) Loss(prediction, target float64) float64 {
	d := math.Abs(prediction - target)
	if d <= h.delta {
		return 0.5 * d * d
	}
	return h.delta * (d - 0.5*h.delta)
}

func (h huber) InitScore(targets []float64) float64 {
	return stat.Mean(targets, nil)
}
