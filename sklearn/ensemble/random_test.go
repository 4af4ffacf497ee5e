package ensemble

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/pkg/log"
)

// cycle replays fixed draws.
type cycle struct {
	values []float64
	next   int
}

func (c *cycle) Float64() float64 {
	v := c.values[c.next%len(c.values)]
	c.next++
	return v
}

func TestBootstrapIndices(t *testing.T) {
	got := BootstrapIndices(&cycle{values: []float64{0, 0.5, 0.999999, 0.25}}, 4)
	assert.Equal(t, []int{0, 2, 3, 1}, got)

	a := BootstrapIndices(NewRandomSource(1), 50)
	b := BootstrapIndices(NewRandomSource(1), 50)
	assert.Equal(t, a, b)
	assert.True(t, lo.EveryBy(a, func(i int) bool { return i >= 0 && i < 50 }))
}

func TestSubsampleIndices(t *testing.T) {
	got := SubsampleIndices(NewRandomSource(3), 10, 4)
	require.Len(t, got, 4)
	assert.True(t, slices.IsSorted(got))
	assert.Len(t, lo.Uniq(got), 4)

	assert.Len(t, SubsampleIndices(NewRandomSource(3), 5, 9), 5)
	assert.Len(t, SubsampleIndices(NewRandomSource(3), 5, 0), 1)

	k := int(math.Ceil(0.5 * 7))
	assert.Len(t, SubsampleIndices(NewRandomSource(3), 7, k), 4)
}

func TestWeightedIndices(t *testing.T) {
	got := WeightedIndices(NewRandomSource(2), []float64{0, 1, 0})
	assert.Equal(t, []int{1, 1, 1}, got)

	got = WeightedIndices(&cycle{values: []float64{0.1, 0.6}}, []float64{0.5, 0, 0.5})
	assert.Equal(t, []int{0, 2, 0}, got)

	got = WeightedIndices(&cycle{values: []float64{0.9}}, []float64{0, 0})
	assert.Equal(t, []int{1, 1}, got)
}

func TestObjectives(t *testing.T) {
	sq, err := ObjectiveByName(SquaredError)
	require.NoError(t, err)
	assert.Equal(t, 2.0, sq.Gradient(3, 1))
	assert.Equal(t, 1.0, sq.Hessian(3, 1))
	assert.Equal(t, 4.0, sq.Loss(3, 1))
	assert.InDelta(t, 2.0, sq.InitScore([]float64{1, 2, 3}), 1e-12)

	abs, err := ObjectiveByName(AbsoluteError)
	require.NoError(t, err)
	assert.Equal(t, -1.0, abs.Gradient(0, 5))
	assert.Equal(t, 0.0, abs.Gradient(5, 5))
	assert.Equal(t, 2.0, abs.InitScore([]float64{5, 1, 2}))

	h, err := ObjectiveByName(Huber)
	require.NoError(t, err)
	assert.Equal(t, 0.5, h.Gradient(1.5, 1))
	assert.Equal(t, 1.0, h.Gradient(10, 1))
	assert.Equal(t, 1.0, h.Hessian(1.5, 1))
	assert.InDelta(t, 1e-7, h.Hessian(10, 1), 1e-12)
	assert.Equal(t, 8.5, h.Loss(10, 1))

	_, err = ObjectiveByName("poisson")
	assert.Error(t, err)
}

func TestEarlyStopping(t *testing.T) {
	cb := EarlyStopping(2, ValidationLoss)
	env := &CallbackEnv{BestIteration: -1}
	for i, loss := range []float64{3, 2, 2.5, 2.6, 1} {
		env.Iteration = i
		env.EvalResults = map[string]float64{ValidationLoss: loss}
		require.NoError(t, cb(env))
		if env.StopTraining {
			break
		}
	}
	assert.True(t, env.StopTraining)
	assert.Equal(t, 3, env.Iteration)
	assert.Equal(t, 1, env.BestIteration)
}

func TestEarlyStoppingIgnoresMissingMetric(t *testing.T) {
	cb := EarlyStopping(1, ValidationLoss)
	env := &CallbackEnv{BestIteration: -1, EvalResults: map[string]float64{TrainingLoss: 1}}
	for i := 0; i < 5; i++ {
		env.Iteration = i
		require.NoError(t, cb(env))
	}
	assert.False(t, env.StopTraining)
}

func TestEarlyStoppingTruncatesBooster(t *testing.T) {
	// Validation targets disagree with training, so validation loss rises
	// from the first round on and the model is cut back to one tree.
	evalY := lo.Map(lineY.RawMatrix().Data, func(v float64, _ int) float64 { return -v })
	gb, err := NewGradientBoostingRegressor(
		WithNEstimators(40),
		WithEvalSet(lineX, model.ColumnVector(evalY)),
		WithCallbacks(EarlyStopping(3, ValidationLoss)),
	)
	require.NoError(t, err)
	require.NoError(t, gb.Fit(lineX, lineY))

	assert.Len(t, gb.Estimators(), 1)
	assert.Len(t, gb.EvalHistory()[ValidationLoss], 4)
}

func TestTimeLimit(t *testing.T) {
	cb := TimeLimit(time.Second)
	start := time.Now()
	env := &CallbackEnv{Iteration: 0, BeginTime: start, EndTime: start.Add(10 * time.Millisecond)}
	require.NoError(t, cb(env))
	assert.False(t, env.StopTraining)

	env.Iteration = 1
	env.EndTime = start.Add(2 * time.Second)
	require.NoError(t, cb(env))
	assert.True(t, env.StopTraining)
}

func TestLogEvaluation(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	cl := NewCallbackList("GradientBoostingRegressor", LogEvaluation(2, logger))
	for i := 0; i < 5; i++ {
		cl.BeforeIteration(i)
		require.NoError(t, cl.AfterIteration(i, map[string]float64{TrainingLoss: float64(5 - i)}))
	}
	assert.Equal(t, 3, logger.CountMessages("evaluation"))
	assert.True(t, logger.ContainsField(TrainingLoss, 1.0))
	assert.False(t, cl.ShouldStop())
	assert.Equal(t, -1, cl.BestIteration())
}
