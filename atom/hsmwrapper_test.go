package atom

import (
	"testing"

	"github.com/vle-forge/irritator-sub000/hsm"
	"github.com/vle-forge/irritator-sub000/kernel"
)

// newToggleTable builds the two-state toggle machine used by
// hsm.engine_test.go, reused here to exercise the wrapper atom driving it
// through the DEVS port/lambda contract instead of calling Dispatch directly.
func newToggleTable() *hsm.Table {
	return &hsm.Table{
		TopState: 0,
		States: []hsm.State{
			{Super: hsm.NoState, Sub: 1},
			{
				Super:     0,
				Sub:       hsm.NoState,
				Condition: hsm.Condition{Type: hsm.ConditionPort, Port: 0, Mask: 1},
				IfActions: []hsm.Action{{Type: hsm.ActionOutput, Port: 0, Value: 1}},
				IfTransition:   2,
				ElseTransition: hsm.NoState,
			},
			{
				Super:     0,
				Sub:       hsm.NoState,
				Condition: hsm.Condition{Type: hsm.ConditionPort, Port: 0, Mask: 1},
				IfActions: []hsm.Action{{Type: hsm.ActionOutput, Port: 0, Value: 0}},
				IfTransition:   1,
				ElseTransition: hsm.NoState,
			},
		},
	}
}

func TestHSMWrapperTogglesOnPortInput(t *testing.T) {
	ctx := newTestContext()
	w := NewHSMWrapper(newToggleTable(), hsm.Constants{})
	if err := w.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if w.Sigma() != kernel.TimeInfinity {
		t.Fatalf("sigma before any input = %v, want +Inf", w.Sigma())
	}

	deliver(&w.In[0], kernel.Message{Value: 1})
	if err := w.Transition(ctx, 1, 1, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if w.Sigma() != kernel.TimeZero {
		t.Fatalf("sigma after toggle = %v, want 0", w.Sigma())
	}
	if err := w.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if w.Out[0].Msg.Value != 1 {
		t.Fatalf("Out[0].Value = %v, want 1", w.Out[0].Msg.Value)
	}

	w.In[0].Reset()
	deliver(&w.In[0], kernel.Message{Value: 1})
	if err := w.Transition(ctx, 2, 1, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := w.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if w.Out[0].Msg.Value != 0 {
		t.Fatalf("Out[0].Value = %v, want 0", w.Out[0].Msg.Value)
	}
}
