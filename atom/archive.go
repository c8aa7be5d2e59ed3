package atom

import (
	"bytes"
	"encoding/binary"

	"github.com/vle-forge/irritator-sub000/hsm"
	"github.com/vle-forge/irritator-sub000/kernel"
)

// This file implements encoding.BinaryMarshaler/BinaryUnmarshaler on every
// concrete Dynamics type, so the archive package can persist and restore
// each atom's full state (exported and unexported alike) without reaching
// across the package boundary. Grounded on the per-dynamics
// do_serialize_dynamics overloads of original_source/lib/src/archiver.cpp:
// one function per atom kind, writing its fields in declaration order.

type archWriter struct {
	buf bytes.Buffer
}

func (w *archWriter) f64(v float64)    { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *archWriter) i64(v int64)      { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *archWriter) u64(v uint64)     { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *archWriter) int_(v int)       { w.i64(int64(v)) }
func (w *archWriter) id(v kernel.ID)   { w.u64(uint64(v)) }
func (w *archWriter) time_(v kernel.Time) { w.f64(v) }

func (w *archWriter) bool_(v bool) {
	var b byte
	if v {
		b = 1
	}
	w.buf.WriteByte(b)
}

func (w *archWriter) u8(v uint8) { w.buf.WriteByte(v) }

func (w *archWriter) msg(m kernel.Message) {
	w.f64(m.Value)
	w.f64(m.Slope)
	w.f64(m.Curvature)
}

func (w *archWriter) dated(d kernel.DatedMessage) {
	w.time_(d.WakeupTime)
	w.f64(d.Value)
	w.f64(d.Slope)
	w.f64(d.Curvature)
}

func (w *archWriter) f64slice(s []float64) {
	w.int_(len(s))
	for _, v := range s {
		w.f64(v)
	}
}

func (w *archWriter) boolSlice(s []bool) {
	w.int_(len(s))
	for _, v := range s {
		w.bool_(v)
	}
}

func (w *archWriter) msgSlice(s []kernel.Message) {
	w.int_(len(s))
	for _, v := range s {
		w.msg(v)
	}
}

func (w *archWriter) datedSlice(s []kernel.DatedMessage) {
	w.int_(len(s))
	for _, d := range s {
		w.dated(d)
	}
}

func (w *archWriter) bytes() []byte { return w.buf.Bytes() }

type archReader struct {
	r   *bytes.Reader
	err error
}

func newArchReader(data []byte) *archReader {
	return &archReader{r: bytes.NewReader(data)}
}

func (r *archReader) read(v interface{}) {
	if r.err != nil {
		return
	}
	r.err = binary.Read(r.r, binary.LittleEndian, v)
}

func (r *archReader) f64() float64 {
	var v float64
	r.read(&v)
	return v
}

func (r *archReader) i64() int64 {
	var v int64
	r.read(&v)
	return v
}

func (r *archReader) u64() uint64 {
	var v uint64
	r.read(&v)
	return v
}

func (r *archReader) int_() int     { return int(r.i64()) }
func (r *archReader) id() kernel.ID { return kernel.ID(r.u64()) }
func (r *archReader) time_() kernel.Time { return r.f64() }

func (r *archReader) bool_() bool {
	if r.err != nil {
		return false
	}
	b, err := r.r.ReadByte()
	if err != nil {
		r.err = err
		return false
	}
	return b != 0
}

func (r *archReader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	b, err := r.r.ReadByte()
	if err != nil {
		r.err = err
		return 0
	}
	return b
}

func (r *archReader) msg() kernel.Message {
	return kernel.Message{Value: r.f64(), Slope: r.f64(), Curvature: r.f64()}
}

func (r *archReader) dated() kernel.DatedMessage {
	return kernel.DatedMessage{WakeupTime: r.time_(), Value: r.f64(), Slope: r.f64(), Curvature: r.f64()}
}

func (r *archReader) f64slice() []float64 {
	n := r.int_()
	if n <= 0 || r.err != nil {
		return nil
	}
	s := make([]float64, n)
	for i := range s {
		s[i] = r.f64()
	}
	return s
}

func (r *archReader) boolSlice() []bool {
	n := r.int_()
	if n <= 0 || r.err != nil {
		return nil
	}
	s := make([]bool, n)
	for i := range s {
		s[i] = r.bool_()
	}
	return s
}

func (r *archReader) msgSlice() []kernel.Message {
	n := r.int_()
	if n <= 0 || r.err != nil {
		return nil
	}
	s := make([]kernel.Message, n)
	for i := range s {
		s[i] = r.msg()
	}
	return s
}

func (r *archReader) datedSlice() []kernel.DatedMessage {
	n := r.int_()
	if n <= 0 || r.err != nil {
		return nil
	}
	s := make([]kernel.DatedMessage, n)
	for i := range s {
		s[i] = r.dated()
	}
	return s
}

func (r *archReader) error() error { return r.err }

// --- QSS integrators ---

func (m *QSS1Integrator) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.f64(m.X)
	w.f64(m.DQ)
	w.f64(m.q)
	w.f64(m.u)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *QSS1Integrator) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(2, 1)
	m.X = r.f64()
	m.DQ = r.f64()
	m.q = r.f64()
	m.u = r.f64()
	m.sigma = r.time_()
	return r.error()
}

func (m *QSS2Integrator) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.f64(m.X)
	w.f64(m.DQ)
	w.f64(m.q)
	w.f64(m.u)
	w.f64(m.mu)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *QSS2Integrator) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(2, 1)
	m.X = r.f64()
	m.DQ = r.f64()
	m.q = r.f64()
	m.u = r.f64()
	m.mu = r.f64()
	m.sigma = r.time_()
	return r.error()
}

func (m *QSS3Integrator) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.f64(m.X)
	w.f64(m.DQ)
	w.f64(m.q)
	w.f64(m.u)
	w.f64(m.mu)
	w.f64(m.pu)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *QSS3Integrator) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(2, 1)
	m.X = r.f64()
	m.DQ = r.f64()
	m.q = r.f64()
	m.u = r.f64()
	m.mu = r.f64()
	m.pu = r.f64()
	m.sigma = r.time_()
	return r.error()
}

// --- counters ---

func (m *Counter) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.i64(m.Number)
	return w.bytes(), nil
}

func (m *Counter) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(1, 0)
	m.Number = r.i64()
	return r.error()
}

func (m *Constant) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.f64(m.Value)
	w.time_(m.Offset)
	w.time_(m.sigma)
	w.bool_(m.fired)
	return w.bytes(), nil
}

func (m *Constant) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(0, 1)
	m.Value = r.f64()
	m.Offset = r.time_()
	m.sigma = r.time_()
	m.fired = r.bool_()
	return r.error()
}

func (m *TimeFunc) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.u8(uint8(m.Kind))
	w.time_(m.Timestep)
	w.f64(m.elapsed)
	return w.bytes(), nil
}

func (m *TimeFunc) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(0, 1)
	m.Kind = TimeFuncKind(r.u8())
	m.Timestep = r.time_()
	m.elapsed = r.f64()
	return r.error()
}

func (m *Accumulator) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.int_(m.n)
	w.f64slice(m.values)
	w.boolSlice(m.enabled)
	w.f64(m.total)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *Accumulator) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.n = r.int_()
	m.Ports = NewPorts(2*m.n, 1)
	m.values = r.f64slice()
	m.enabled = r.boolSlice()
	m.total = r.f64()
	m.sigma = r.time_()
	return r.error()
}

// --- arithmetic ---

func (m *Sum) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.msgSlice(m.state)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *Sum) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.state = r.msgSlice()
	m.Ports = NewPorts(len(m.state), 1)
	m.sigma = r.time_()
	return r.error()
}

func (m *WSum) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.f64slice(m.Coeff)
	w.msgSlice(m.state)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *WSum) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Coeff = r.f64slice()
	m.state = r.msgSlice()
	m.Ports = NewPorts(len(m.Coeff), 1)
	m.sigma = r.time_()
	return r.error()
}

func (m *Multiplier) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.msg(m.a)
	w.msg(m.b)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *Multiplier) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(2, 1)
	m.a = r.msg()
	m.b = r.msg()
	m.sigma = r.time_()
	return r.error()
}

// marshalState/unmarshalState hold the part of unaryChain shared by every
// wrapper type (Gain/Power/Inverse/Exp/Log/Sin/Cos/Integer); fn/dfn are
// reconstructed by each wrapper's own constructor, never serialized.
func (m *unaryChain) marshalState(w *archWriter) {
	w.msg(m.in)
	w.time_(m.sigma)
}

func (m *unaryChain) unmarshalState(r *archReader) {
	m.in = r.msg()
	m.sigma = r.time_()
}

func (m *Gain) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.f64(m.K)
	m.unaryChain.marshalState(w)
	return w.bytes(), nil
}

func (m *Gain) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	k := r.f64()
	*m = *NewGain(k)
	m.unaryChain.unmarshalState(r)
	return r.error()
}

func (m *Power) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.int_(m.N)
	m.unaryChain.marshalState(w)
	return w.bytes(), nil
}

func (m *Power) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	n := r.int_()
	*m = *NewPower(n)
	m.unaryChain.unmarshalState(r)
	return r.error()
}

func (m *Inverse) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	m.unaryChain.marshalState(w)
	return w.bytes(), nil
}

func (m *Inverse) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	*m = *NewInverse()
	m.unaryChain.unmarshalState(r)
	return r.error()
}

func (m *Exp) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	m.unaryChain.marshalState(w)
	return w.bytes(), nil
}

func (m *Exp) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	*m = *NewExp()
	m.unaryChain.unmarshalState(r)
	return r.error()
}

func (m *Log) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	m.unaryChain.marshalState(w)
	return w.bytes(), nil
}

func (m *Log) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	*m = *NewLog()
	m.unaryChain.unmarshalState(r)
	return r.error()
}

func (m *Sin) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	m.unaryChain.marshalState(w)
	return w.bytes(), nil
}

func (m *Sin) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	*m = *NewSin()
	m.unaryChain.unmarshalState(r)
	return r.error()
}

func (m *Cos) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	m.unaryChain.marshalState(w)
	return w.bytes(), nil
}

func (m *Cos) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	*m = *NewCos()
	m.unaryChain.unmarshalState(r)
	return r.error()
}

func (m *Integer) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	m.unaryChain.marshalState(w)
	return w.bytes(), nil
}

func (m *Integer) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	*m = *NewInteger()
	m.unaryChain.unmarshalState(r)
	return r.error()
}

// --- cross/filter ---

func (m *Cross) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.f64(m.Threshold)
	w.f64(m.value)
	w.f64(m.slope)
	w.bool_(m.above)
	w.bool_(m.started)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *Cross) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(1, 2)
	m.Threshold = r.f64()
	m.value = r.f64()
	m.slope = r.f64()
	m.above = r.bool_()
	m.started = r.bool_()
	m.sigma = r.time_()
	return r.error()
}

func (m *Filter) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.f64(m.Lower)
	w.f64(m.Upper)
	w.f64(m.value)
	w.f64(m.slope)
	w.bool_(m.started)
	w.bool_(m.hitUpper)
	w.bool_(m.hitLower)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *Filter) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(1, 3)
	m.Lower = r.f64()
	m.Upper = r.f64()
	m.value = r.f64()
	m.slope = r.f64()
	m.started = r.bool_()
	m.hitUpper = r.bool_()
	m.hitLower = r.bool_()
	m.sigma = r.time_()
	return r.error()
}

func (m *Flipflop) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.f64(m.latched)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *Flipflop) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(2, 1)
	m.latched = r.f64()
	m.sigma = r.time_()
	return r.error()
}

func (m *Compare) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.f64(m.Threshold)
	w.f64(m.value)
	w.f64(m.slope)
	w.bool_(m.result)
	w.bool_(m.started)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *Compare) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(1, 1)
	m.Threshold = r.f64()
	m.value = r.f64()
	m.slope = r.f64()
	m.result = r.bool_()
	m.started = r.bool_()
	m.sigma = r.time_()
	return r.error()
}

// --- logic gates ---

func (m *logicGate) marshalState(w *archWriter) {
	w.boolSlice(m.state)
	w.time_(m.sigma)
}

func (m *logicGate) unmarshalState(r *archReader) {
	m.state = r.boolSlice()
	m.sigma = r.time_()
}

func (m *LogicalAnd2) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	m.logicGate.marshalState(w)
	return w.bytes(), nil
}

func (m *LogicalAnd2) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	*m = *NewLogicalAnd2()
	m.logicGate.unmarshalState(r)
	return r.error()
}

func (m *LogicalAnd3) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	m.logicGate.marshalState(w)
	return w.bytes(), nil
}

func (m *LogicalAnd3) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	*m = *NewLogicalAnd3()
	m.logicGate.unmarshalState(r)
	return r.error()
}

func (m *LogicalOr2) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	m.logicGate.marshalState(w)
	return w.bytes(), nil
}

func (m *LogicalOr2) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	*m = *NewLogicalOr2()
	m.logicGate.unmarshalState(r)
	return r.error()
}

func (m *LogicalOr3) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	m.logicGate.marshalState(w)
	return w.bytes(), nil
}

func (m *LogicalOr3) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	*m = *NewLogicalOr3()
	m.logicGate.unmarshalState(r)
	return r.error()
}

func (m *LogicalInvert) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	m.logicGate.marshalState(w)
	return w.bytes(), nil
}

func (m *LogicalInvert) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	*m = *NewLogicalInvert()
	m.logicGate.unmarshalState(r)
	return r.error()
}

// --- generator/queue family ---

func (m *Generator) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.id(m.ValueSource)
	w.id(m.TASource)
	w.f64(m.ConstValue)
	w.time_(m.ConstTA)
	w.f64(m.r)
	w.f64(m.pendingValue)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *Generator) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(4, 1)
	m.ValueSource = r.id()
	m.TASource = r.id()
	m.ConstValue = r.f64()
	m.ConstTA = r.time_()
	m.r = r.f64()
	m.pendingValue = r.f64()
	m.sigma = r.time_()
	return r.error()
}

func (m *Queue) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.time_(m.TA)
	w.datedSlice(m.pending)
	w.time_(m.nextDue)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *Queue) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(1, 1)
	m.TA = r.time_()
	m.pending = r.datedSlice()
	m.nextDue = r.time_()
	m.sigma = r.time_()
	return r.error()
}

func (m *DynamicQueue) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.id(m.TASource)
	w.datedSlice(m.pending)
	w.time_(m.nextDue)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *DynamicQueue) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(1, 1)
	m.TASource = r.id()
	m.pending = r.datedSlice()
	m.nextDue = r.time_()
	m.sigma = r.time_()
	return r.error()
}

func (m *PriorityQueue) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	w.id(m.TASource)
	w.datedSlice(m.pending)
	w.time_(m.nextDue)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *PriorityQueue) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(1, 1)
	m.TASource = r.id()
	m.pending = r.datedSlice()
	m.nextDue = r.time_()
	m.sigma = r.time_()
	return r.error()
}

// --- HSM wrapper ---

func marshalAction(w *archWriter, a hsm.Action) {
	w.u8(uint8(a.Type))
	w.u8(uint8(a.Dest))
	w.u8(uint8(a.Left))
	w.u8(uint8(a.Right))
	w.int_(a.Port)
	w.f64(a.Value)
}

func unmarshalAction(r *archReader) hsm.Action {
	return hsm.Action{
		Type:  hsm.ActionType(r.u8()),
		Dest:  hsm.Variable(r.u8()),
		Left:  hsm.Variable(r.u8()),
		Right: hsm.Variable(r.u8()),
		Port:  r.int_(),
		Value: r.f64(),
	}
}

func marshalActions(w *archWriter, as []hsm.Action) {
	w.int_(len(as))
	for _, a := range as {
		marshalAction(w, a)
	}
}

func unmarshalActions(r *archReader) []hsm.Action {
	n := r.int_()
	if n <= 0 {
		return nil
	}
	out := make([]hsm.Action, n)
	for i := range out {
		out[i] = unmarshalAction(r)
	}
	return out
}

func marshalCondition(w *archWriter, c hsm.Condition) {
	w.u8(uint8(c.Type))
	w.int_(c.Port)
	w.i64(c.Mask)
	w.u8(uint8(c.Left))
	w.u8(uint8(c.Right))
}

func unmarshalCondition(r *archReader) hsm.Condition {
	return hsm.Condition{
		Type:  hsm.ConditionType(r.u8()),
		Port:  r.int_(),
		Mask:  r.i64(),
		Left:  hsm.Variable(r.u8()),
		Right: hsm.Variable(r.u8()),
	}
}

func marshalTable(w *archWriter, t *hsm.Table) {
	if t == nil {
		w.int_(0)
		w.int_(hsm.NoState)
		return
	}
	w.int_(len(t.States))
	w.int_(t.TopState)
	for _, st := range t.States {
		marshalActions(w, st.EnterActions)
		marshalActions(w, st.ExitActions)
		marshalActions(w, st.IfActions)
		marshalActions(w, st.ElseActions)
		marshalCondition(w, st.Condition)
		w.int_(st.IfTransition)
		w.int_(st.ElseTransition)
		w.int_(st.Super)
		w.int_(st.Sub)
	}
}

func unmarshalTable(r *archReader) *hsm.Table {
	n := r.int_()
	top := r.int_()
	t := &hsm.Table{TopState: top, States: make([]hsm.State, n)}
	for i := range t.States {
		st := &t.States[i]
		st.EnterActions = unmarshalActions(r)
		st.ExitActions = unmarshalActions(r)
		st.IfActions = unmarshalActions(r)
		st.ElseActions = unmarshalActions(r)
		st.Condition = unmarshalCondition(r)
		st.IfTransition = r.int_()
		st.ElseTransition = r.int_()
		st.Super = r.int_()
		st.Sub = r.int_()
	}
	return t
}

func marshalExecution(w *archWriter, e hsm.Execution) {
	w.i64(e.I1)
	w.i64(e.I2)
	w.f64(e.R1)
	w.f64(e.R2)
	w.time_(e.Timer)
	for _, v := range e.PortValues {
		w.i64(v)
	}
	for _, v := range e.PortValid {
		w.bool_(v)
	}
	w.int_(e.OutputCount)
	for i := 0; i < e.OutputCount; i++ {
		w.int_(e.Outputs[i].Port)
		w.msg(e.Outputs[i].Value)
	}
	w.int_(e.CurrentState)
	w.int_(e.NextState)
	w.int_(e.SourceState)
	w.int_(e.PreviousState)
	w.bool_(e.DisallowTransition)
}

func unmarshalExecution(r *archReader) hsm.Execution {
	var e hsm.Execution
	e.I1 = r.i64()
	e.I2 = r.i64()
	e.R1 = r.f64()
	e.R2 = r.f64()
	e.Timer = r.time_()
	for i := range e.PortValues {
		e.PortValues[i] = r.i64()
	}
	for i := range e.PortValid {
		e.PortValid[i] = r.bool_()
	}
	e.OutputCount = r.int_()
	for i := 0; i < e.OutputCount; i++ {
		e.Outputs[i] = hsm.OutputMessage{Port: r.int_(), Value: r.msg()}
	}
	e.CurrentState = r.int_()
	e.NextState = r.int_()
	e.SourceState = r.int_()
	e.PreviousState = r.int_()
	e.DisallowTransition = r.bool_()
	return e
}

func (m *HSMWrapper) MarshalBinary() ([]byte, error) {
	w := &archWriter{}
	marshalTable(w, m.Table)
	w.bool_(m.Engine.AllowUnconfiguredSource)
	for _, v := range m.Constants.HSM {
		w.f64(v)
	}
	w.i64(m.Constants.IntegerLiteral)
	w.f64(m.Constants.RealLiteral)
	w.id(m.Source)
	marshalExecution(w, m.exec)
	w.time_(m.sigma)
	return w.bytes(), nil
}

func (m *HSMWrapper) UnmarshalBinary(data []byte) error {
	r := newArchReader(data)
	m.Ports = NewPorts(hsmMaxPorts, hsmMaxPorts)
	m.Table = unmarshalTable(r)
	m.Engine = hsm.Engine{AllowUnconfiguredSource: r.bool_()}
	for i := range m.Constants.HSM {
		m.Constants.HSM[i] = r.f64()
	}
	m.Constants.IntegerLiteral = r.i64()
	m.Constants.RealLiteral = r.f64()
	m.Source = r.id()
	m.exec = unmarshalExecution(r)
	m.sigma = r.time_()
	return r.error()
}
