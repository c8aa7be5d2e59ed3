package hsm

import (
	"math"

	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/source"
	"github.com/vle-forge/irritator-sub000/status"
)

// Event enumerates the dispatch events the wrapper atom raises against the
// engine, per spec.md §4.6's event table.
type Event uint8

const (
	EventEnter Event = iota
	EventExit
	EventInputChanged
	EventInternal
	EventWakeUp
)

// Engine runs Start/Dispatch against a Table and Execution. AllowUnconfiguredSource
// resolves Open Question 3: by default a Source-variable read with no source
// mounted is a hard error; setting this true falls back to 0 instead.
type Engine struct {
	AllowUnconfiguredSource bool
}

// Constants bundles the per-HSM literal set: eight hsm_constant_0..7 slots
// plus the single integer/real constant operands an action or condition can
// reference directly.
type Constants struct {
	HSM            [8]float64
	IntegerLiteral int64
	RealLiteral    float64
}

// Start clears exec and descends from table.TopState into the innermost
// initial sub-state, running enter-actions at each level along the way.
// Fails with ErrTopState if TopState is unset.
func (e *Engine) Start(table *Table, exec *Execution, consts Constants, src *source.Source) *status.Error {
	if table.TopState < 0 || table.TopState >= len(table.States) {
		return status.New(status.ErrTopState, "")
	}
	exec.Reset()

	state := table.TopState
	for {
		exec.CurrentState = state
		if err := e.runEnter(table, exec, consts, src, state); err != nil {
			return err
		}
		st := &table.States[state]
		if st.Sub == NoState {
			break
		}
		state = st.Sub
	}
	return nil
}

func (e *Engine) runEnter(table *Table, exec *Execution, consts Constants, src *source.Source, state int) *status.Error {
	exec.DisallowTransition = true
	defer func() { exec.DisallowTransition = false }()
	for _, a := range table.States[state].EnterActions {
		if err := e.runAction(exec, consts, src, a); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) runExit(table *Table, exec *Execution, consts Constants, src *source.Source, state int) *status.Error {
	exec.DisallowTransition = true
	defer func() { exec.DisallowTransition = false }()
	for _, a := range table.States[state].ExitActions {
		if err := e.runAction(exec, consts, src, a); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch runs event against exec.CurrentState. Any event is refused with
// ErrTransitionDisallowed while DisallowTransition is set (inside an enter
// or exit action list). Otherwise it evaluates the state's Condition, runs
// the matching if/else action list, then, when that branch names a
// transition target, walks exit-actions up to the least common ancestor and
// enter-actions back down. Returns true when a transition was taken, and
// otherwise whether the condition matched.
func (e *Engine) Dispatch(table *Table, exec *Execution, consts Constants, src *source.Source, event Event) (bool, *status.Error) {
	if exec.DisallowTransition {
		return false, status.New(status.ErrTransitionDisallowed, "")
	}
	if exec.CurrentState < 0 || exec.CurrentState >= len(table.States) {
		return false, status.New(status.ErrTopState, "")
	}

	state := exec.CurrentState
	st := &table.States[state]

	matched, err := e.evaluate(exec, consts, src, st.Condition, event)
	if err != nil {
		return false, err
	}

	actions := st.ElseActions
	target := st.ElseTransition
	if matched {
		actions = st.IfActions
		target = st.IfTransition
	}
	for _, a := range actions {
		if err := e.runAction(exec, consts, src, a); err != nil {
			return false, err
		}
	}

	if target == NoState {
		return matched, nil
	}

	exec.PreviousState = state
	exec.SourceState = state
	exec.NextState = target
	if err := e.transition(table, exec, consts, src, state, target); err != nil {
		return false, err
	}
	return true, nil
}

// transition exits state up to the least common ancestor of state and
// target, then enters down from the ancestor to target.
func (e *Engine) transition(table *Table, exec *Execution, consts Constants, src *source.Source, from, to int) *status.Error {
	ancestor := leastCommonAncestor(table, from, to)

	for s := from; s != ancestor; s = table.States[s].Super {
		if err := e.runExit(table, exec, consts, src, s); err != nil {
			return err
		}
	}

	path := ancestorPath(table, to, ancestor)
	for i := len(path) - 1; i >= 0; i-- {
		if err := e.runEnter(table, exec, consts, src, path[i]); err != nil {
			return err
		}
	}

	exec.CurrentState = to
	return nil
}

// ancestorPath returns the chain of states from (exclusive) ancestor down
// to (inclusive) to, in child-to-ancestor order (caller walks it reversed
// to enter top-down).
func ancestorPath(table *Table, to, ancestor int) []int {
	var path []int
	for s := to; s != ancestor; s = table.States[s].Super {
		path = append(path, s)
		if table.States[s].Super == NoState {
			break
		}
	}
	return path
}

// leastCommonAncestor walks both states' super chains to find where they
// first meet, returning NoState if the two states share no ancestor (they
// are in disjoint trees, which a well-formed single-root table never
// produces).
func leastCommonAncestor(table *Table, a, b int) int {
	depthOf := func(s int) int {
		d := 0
		for s != NoState {
			d++
			s = table.States[s].Super
		}
		return d
	}
	da, db := depthOf(a), depthOf(b)
	for da > db {
		a = table.States[a].Super
		da--
	}
	for db > da {
		b = table.States[b].Super
		db--
	}
	for a != b {
		a = table.States[a].Super
		b = table.States[b].Super
	}
	return a
}

func (e *Engine) evaluate(exec *Execution, consts Constants, src *source.Source, cond Condition, event Event) (bool, *status.Error) {
	switch cond.Type {
	case ConditionNone:
		return true, nil
	case ConditionPort:
		if cond.Port < 0 || cond.Port >= maxPorts {
			return false, nil
		}
		return exec.PortValid[cond.Port] && exec.PortValues[cond.Port]&cond.Mask != 0, nil
	case ConditionSigma:
		return event == EventWakeUp, nil
	default:
		left, err := e.readVar(exec, consts, src, cond.Left)
		if err != nil {
			return false, err
		}
		right, err := e.readVar(exec, consts, src, cond.Right)
		if err != nil {
			return false, err
		}
		switch cond.Type {
		case ConditionEqual:
			return left == right, nil
		case ConditionNotEqual:
			return left != right, nil
		case ConditionGreater:
			return left > right, nil
		case ConditionGreaterEqual:
			return left >= right, nil
		case ConditionLess:
			return left < right, nil
		case ConditionLessEqual:
			return left <= right, nil
		default:
			return false, nil
		}
	}
}

func (e *Engine) runAction(exec *Execution, consts Constants, src *source.Source, a Action) *status.Error {
	switch a.Type {
	case ActionNone:
		return nil
	case ActionPortSet:
		exec.SetPort(a.Port, 1)
		return nil
	case ActionPortUnset:
		exec.SetPort(a.Port, 0)
		return nil
	case ActionPortReset:
		if a.Port >= 0 && a.Port < maxPorts {
			exec.PortValid[a.Port] = false
			exec.PortValues[a.Port] = 0
		}
		return nil
	case ActionOutput:
		exec.QueueOutput(a.Port, kernel.Message{Value: a.Value})
		return nil
	}

	left, err := e.readVar(exec, consts, src, a.Left)
	if err != nil {
		return err
	}

	var result float64
	switch a.Type {
	case ActionAffect:
		result = left
	case ActionNegate:
		result = -left
	case ActionBitNot:
		result = float64(^int64(left))
	default:
		right, err := e.readVar(exec, consts, src, a.Right)
		if err != nil {
			return err
		}
		switch a.Type {
		case ActionPlus:
			result = left + right
		case ActionMinus:
			result = left - right
		case ActionTimes:
			result = left * right
		case ActionDivide:
			// Division by zero yields ±∞ in the affected variable, not a
			// failure (spec.md §4.6/§7).
			result = left / right
		case ActionModulo:
			if right == 0 {
				result = math.Copysign(math.Inf(1), left)
			} else {
				li, ri := int64(left), int64(right)
				result = float64(li % ri)
			}
		case ActionBitAnd:
			result = float64(int64(left) & int64(right))
		case ActionBitOr:
			result = float64(int64(left) | int64(right))
		case ActionBitXor:
			result = float64(int64(left) ^ int64(right))
		default:
			return nil
		}
	}

	e.writeVar(exec, a.Dest, result)
	return nil
}

func (e *Engine) readVar(exec *Execution, consts Constants, src *source.Source, v Variable) (float64, *status.Error) {
	switch v {
	case VarNone:
		return 0, nil
	case VarPort0, VarPort1, VarPort2, VarPort3:
		idx := int(v - VarPort0)
		return float64(exec.PortValues[idx]), nil
	case VarI1:
		return float64(exec.I1), nil
	case VarI2:
		return float64(exec.I2), nil
	case VarR1:
		return exec.R1, nil
	case VarR2:
		return exec.R2, nil
	case VarTimer:
		return exec.Timer, nil
	case VarIntegerConstant:
		return float64(consts.IntegerLiteral), nil
	case VarRealConstant:
		return consts.RealLiteral, nil
	case VarHSMConstant0, VarHSMConstant1, VarHSMConstant2, VarHSMConstant3,
		VarHSMConstant4, VarHSMConstant5, VarHSMConstant6, VarHSMConstant7:
		return consts.HSM[int(v-VarHSMConstant0)], nil
	case VarSource:
		if src == nil {
			if e.AllowUnconfiguredSource {
				return 0, nil
			}
			return 0, status.New(status.ErrSourceUnconfigured, "")
		}
		return src.Next()
	default:
		return 0, nil
	}
}

func (e *Engine) writeVar(exec *Execution, v Variable, value float64) {
	switch v {
	case VarI1:
		exec.I1 = int64(value)
	case VarI2:
		exec.I2 = int64(value)
	case VarR1:
		exec.R1 = value
	case VarR2:
		exec.R2 = value
	case VarTimer:
		exec.Timer = value
	case VarPort0, VarPort1, VarPort2, VarPort3:
		idx := int(v - VarPort0)
		exec.PortValues[idx] = int64(value)
		exec.PortValid[idx] = true
	}
}
