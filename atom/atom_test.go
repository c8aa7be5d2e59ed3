package atom

import (
	"math"
	"testing"

	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/port"
	"github.com/vle-forge/irritator-sub000/source"
	"github.com/vle-forge/irritator-sub000/status"
)

type testContext struct {
	sources map[kernel.ID]*source.Source
}

func newTestContext() *testContext { return &testContext{sources: map[kernel.ID]*source.Source{}} }

func (c *testContext) Source(id kernel.ID) (*source.Source, *status.Error) {
	s, ok := c.sources[id]
	if !ok {
		return nil, status.New(status.ErrUnknownSource, "")
	}
	return s, nil
}

// deliver wires a single message onto an input port for one step, mimicking
// the fan-out copy pass without routing through a live simulation.
func deliver(in *port.Input, msg kernel.Message) {
	buf := port.NewMessageBuffer(1)
	buf.Grow(1)
	in.Bind(buf, 0, 1)
	port.Deliver(in, msg)
}

func TestQSS1IntegratorConstantDerivative(t *testing.T) {
	ctx := newTestContext()
	integ := NewQSS1Integrator()
	integ.X, integ.DQ = 0, 0.1
	if err := integ.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	deliver(&integ.In[qssPortXDot], kernel.Message{Value: 1})
	if err := integ.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got := integ.Sigma(); math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("sigma after first derivative = %v, want 0.1", got)
	}

	if err := integ.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if math.Abs(integ.Out[0].Msg.Value-0.1) > 1e-9 {
		t.Fatalf("Out[0].Value = %v, want 0.1 (X extrapolated forward by sigma)", integ.Out[0].Msg.Value)
	}

	integ.In[qssPortXDot].Reset()
	if err := integ.Transition(ctx, 0.1, 0.1, 0); err != nil {
		t.Fatalf("Transition (internal): %v", err)
	}
	if math.Abs(integ.X-0.1) > 1e-9 {
		t.Fatalf("X after internal transition = %v, want 0.1", integ.X)
	}
	if math.Abs(integ.Sigma()-0.1) > 1e-9 {
		t.Fatalf("sigma after requantization = %v, want 0.1", integ.Sigma())
	}
}

func TestQSS1IntegratorRejectsInvalidDQ(t *testing.T) {
	ctx := newTestContext()
	integ := NewQSS1Integrator()
	integ.X, integ.DQ = 0, 0
	err := integ.Initialize(ctx)
	if err == nil || err.Kind != status.ErrAbstractIntegratorDQ {
		t.Fatalf("Initialize error = %v, want ErrAbstractIntegratorDQ", err)
	}
}

func TestCrossDetectsZeroCrossing(t *testing.T) {
	ctx := newTestContext()
	cross := NewCross(0)
	if err := cross.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	deliver(&cross.In[0], kernel.Message{Value: -1})
	if err := cross.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if cross.Sigma() != kernel.TimeInfinity {
		t.Fatalf("sigma after first sample = %v, want +Inf", cross.Sigma())
	}

	cross.In[0].Reset()
	deliver(&cross.In[0], kernel.Message{Value: 1, Slope: 1})
	if err := cross.Transition(ctx, 1, 1, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if cross.Sigma() != kernel.TimeZero {
		t.Fatalf("sigma on crossing = %v, want 0", cross.Sigma())
	}
	if err := cross.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if cross.Out[1].Msg.Value != 1 {
		t.Fatalf("up-port value = %v, want 1", cross.Out[1].Msg.Value)
	}
	if cross.Out[0].Staged() {
		t.Fatalf("down-port should stay unstaged, got %v", cross.Out[0].Msg)
	}
}

func TestCrossWakesUpForProjectedCrossing(t *testing.T) {
	ctx := newTestContext()
	cross := NewCross(0)
	if err := cross.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// A ramp below the threshold: the atom must ring its own wake-up at
	// the projected crossing rather than wait for another message.
	deliver(&cross.In[0], kernel.Message{Value: -1, Slope: 1})
	if err := cross.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got := cross.Sigma(); math.Abs(got-1) > 1e-9 {
		t.Fatalf("sigma after ramp sample = %v, want 1 (projected crossing)", got)
	}

	cross.In[0].Reset()
	if err := cross.Transition(ctx, 1, 1, 0); err != nil {
		t.Fatalf("Transition (wake-up): %v", err)
	}
	if cross.Sigma() != kernel.TimeZero {
		t.Fatalf("sigma at projected crossing = %v, want 0", cross.Sigma())
	}
	cross.Out[1].ClearStaged()
	if err := cross.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if !cross.Out[1].Staged() {
		t.Fatal("up-port must fire at the projected crossing")
	}
}

func TestCompareFlipsBetweenEvents(t *testing.T) {
	ctx := newTestContext()
	cmp := NewCompare(2)
	if err := cmp.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	deliver(&cmp.In[0], kernel.Message{Value: 0, Slope: 1})
	if err := cmp.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if cmp.Sigma() != kernel.TimeZero {
		t.Fatalf("sigma on input = %v, want 0 (re-fire on every change)", cmp.Sigma())
	}

	// The trailing internal transition solves the difference polynomial:
	// value reaches the threshold after two more time units.
	cmp.In[0].Reset()
	if err := cmp.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition (internal): %v", err)
	}
	if got := cmp.Sigma(); math.Abs(got-2) > 1e-9 {
		t.Fatalf("sigma after fire = %v, want 2 (next sign change)", got)
	}

	if err := cmp.Transition(ctx, 2, 2, 0); err != nil {
		t.Fatalf("Transition (wake-up): %v", err)
	}
	if cmp.Sigma() != kernel.TimeZero {
		t.Fatalf("sigma at sign change = %v, want 0", cmp.Sigma())
	}
	if err := cmp.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if cmp.Out[0].Msg.Value != 1 {
		t.Fatalf("compare output = %v, want 1 after the ramp crosses", cmp.Out[0].Msg.Value)
	}
}

func TestQueueDelaysThenEmits(t *testing.T) {
	ctx := newTestContext()
	q := NewQueue(2)
	if err := q.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	deliver(&q.In[0], kernel.Message{Value: 5})
	if err := q.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition (enqueue): %v", err)
	}
	if got := q.Sigma(); math.Abs(got-2) > 1e-9 {
		t.Fatalf("sigma after enqueue = %v, want 2", got)
	}

	q.In[0].Reset()
	if err := q.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if q.Out[0].Msg.Value != 5 {
		t.Fatalf("Out[0].Value = %v, want 5", q.Out[0].Msg.Value)
	}

	if err := q.Transition(ctx, 2, 2, 0); err != nil {
		t.Fatalf("Transition (dequeue): %v", err)
	}
	if q.Sigma() != kernel.TimeInfinity {
		t.Fatalf("sigma after drain = %v, want +Inf", q.Sigma())
	}
}

func TestPriorityQueueReordersByDelay(t *testing.T) {
	driver := source.NewDriver(1)
	providerID := driver.Register(&source.ConstantProvider{Values: []float64{30, 10, 20}})
	src, err := driver.Mount(source.KindConstant, providerID, 0)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := driver.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	ctx := newTestContext()
	srcID := kernel.ID(1)
	ctx.sources[srcID] = src

	pq := NewPriorityQueue(srcID)
	if err := pq.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	steps := []struct {
		t     kernel.Time
		value float64
	}{{0, 100}, {1, 200}, {2, 300}}
	for _, step := range steps {
		deliver(&pq.In[0], kernel.Message{Value: step.value})
		if serr := pq.Transition(ctx, step.t, 0, 0); serr != nil {
			t.Fatalf("Transition at t=%v: %v", step.t, serr)
		}
		pq.In[0].Reset()
	}

	if len(pq.pending) != 3 {
		t.Fatalf("pending length = %d, want 3", len(pq.pending))
	}
	wantOrder := []float64{200, 300, 100}
	for i, want := range wantOrder {
		if pq.pending[i].Value != want {
			t.Fatalf("pending[%d].Value = %v, want %v (order %v)", i, pq.pending[i].Value, want, pq.pending)
		}
	}
}

func TestSumAddsCurrentInputs(t *testing.T) {
	ctx := newTestContext()
	sum := NewSum(2)
	if err := sum.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	deliver(&sum.In[0], kernel.Message{Value: 2})
	deliver(&sum.In[1], kernel.Message{Value: 3})
	if err := sum.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := sum.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if sum.Out[0].Msg.Value != 5 {
		t.Fatalf("sum = %v, want 5", sum.Out[0].Msg.Value)
	}
}

func TestWSumRejectsNonFiniteCoefficient(t *testing.T) {
	ctx := newTestContext()
	ws := NewWSum([]float64{1, math.NaN()})
	err := ws.Initialize(ctx)
	if err == nil || err.Kind != status.ErrAbstractWSumCoeff {
		t.Fatalf("Initialize error = %v, want ErrAbstractWSumCoeff", err)
	}
}

func TestInverseRejectsZeroInput(t *testing.T) {
	ctx := newTestContext()
	inv := NewInverse()
	if err := inv.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	deliver(&inv.In[0], kernel.Message{Value: 0})
	if err := inv.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	err := inv.Lambda(ctx)
	if err == nil || err.Kind != status.ErrInverseInput {
		t.Fatalf("Lambda error = %v, want ErrInverseInput", err)
	}
}

func TestCounterSaturatesAtMaxInt64(t *testing.T) {
	ctx := newTestContext()
	c := NewCounter()
	if err := c.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	c.Number = math.MaxInt64 - 1

	buf := port.NewMessageBuffer(2)
	buf.Grow(2)
	c.In[0].Bind(buf, 0, 2)
	port.Deliver(&c.In[0], kernel.Message{Value: 1})
	port.Deliver(&c.In[0], kernel.Message{Value: 1})

	if err := c.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if c.Number != math.MaxInt64 {
		t.Fatalf("Number = %v, want saturated at MaxInt64", c.Number)
	}
}

func TestConstantValidatesOffsetAndValue(t *testing.T) {
	ctx := newTestContext()
	c := NewConstant(1, -1)
	err := c.Initialize(ctx)
	if err == nil || err.Kind != status.ErrConstantOffset {
		t.Fatalf("Initialize error = %v, want ErrConstantOffset", err)
	}

	c2 := NewConstant(math.NaN(), 0)
	err = c2.Initialize(ctx)
	if err == nil || err.Kind != status.ErrConstantValue {
		t.Fatalf("Initialize error = %v, want ErrConstantValue", err)
	}
}

func TestConstantFiresOnceAtOffset(t *testing.T) {
	ctx := newTestContext()
	c := NewConstant(42, 5)
	if err := c.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := c.Sigma(); got != 5 {
		t.Fatalf("sigma = %v, want 5", got)
	}
	if err := c.Transition(ctx, 5, 5, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if c.Sigma() != kernel.TimeInfinity {
		t.Fatalf("sigma after firing = %v, want +Inf", c.Sigma())
	}
}

func TestLogicalAnd2(t *testing.T) {
	ctx := newTestContext()
	g := NewLogicalAnd2()
	if err := g.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	deliver(&g.In[0], kernel.Message{Value: 1})
	deliver(&g.In[1], kernel.Message{Value: 0})
	if err := g.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := g.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if g.Out[0].Msg.Value != 0 {
		t.Fatalf("AND(1,0) = %v, want 0", g.Out[0].Msg.Value)
	}

	g.In[1].Reset()
	deliver(&g.In[1], kernel.Message{Value: 1})
	if err := g.Transition(ctx, 1, 1, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := g.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if g.Out[0].Msg.Value != 1 {
		t.Fatalf("AND(1,1) = %v, want 1", g.Out[0].Msg.Value)
	}
}

func TestGeneratorPullsValueAndTAFromConstantSources(t *testing.T) {
	driver := source.NewDriver(2)
	valueProvider := driver.Register(&source.ConstantProvider{Values: []float64{10, 20}})
	taProvider := driver.Register(&source.ConstantProvider{Values: []float64{1}})
	valueSrc, err := driver.Mount(source.KindConstant, valueProvider, 0)
	if err != nil {
		t.Fatalf("Mount value: %v", err)
	}
	taSrc, err := driver.Mount(source.KindConstant, taProvider, 0)
	if err != nil {
		t.Fatalf("Mount ta: %v", err)
	}
	if err := driver.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	ctx := newTestContext()
	valueID, taID := kernel.ID(1), kernel.ID(2)
	ctx.sources[valueID] = valueSrc
	ctx.sources[taID] = taSrc

	gen := NewGenerator()
	gen.ValueSource = valueID
	gen.TASource = taID
	if err := gen.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if gen.Sigma() != 1 {
		t.Fatalf("sigma = %v, want 1", gen.Sigma())
	}
	if err := gen.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if gen.Out[0].Msg.Value != 10 {
		t.Fatalf("first value = %v, want 10", gen.Out[0].Msg.Value)
	}

	if err := gen.Transition(ctx, 1, 1, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := gen.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if gen.Out[0].Msg.Value != 20 {
		t.Fatalf("second value = %v, want 20", gen.Out[0].Msg.Value)
	}
}
