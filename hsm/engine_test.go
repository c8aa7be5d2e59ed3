package hsm_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vle-forge/irritator-sub000/hsm"
	"github.com/vle-forge/irritator-sub000/source"
)

var _ = Describe("Engine", func() {
	var engine *hsm.Engine

	BeforeEach(func() {
		engine = &hsm.Engine{}
	})

	It("fails Start when TopState is unset", func() {
		table := &hsm.Table{States: []hsm.State{{}}, TopState: -1}
		exec := &hsm.Execution{}
		err := engine.Start(table, exec, hsm.Constants{}, nil)
		Expect(err).NotTo(BeNil())
	})

	It("descends through the initial sub-state chain on Start", func() {
		table := &hsm.Table{
			TopState: 0,
			States: []hsm.State{
				{Sub: 1, Super: hsm.NoState, EnterActions: []hsm.Action{
					{Type: hsm.ActionAffect, Dest: hsm.VarI1, Left: hsm.VarIntegerConstant},
				}},
				{Sub: hsm.NoState, Super: 0},
			},
		}
		exec := &hsm.Execution{}
		err := engine.Start(table, exec, hsm.Constants{IntegerLiteral: 7}, nil)
		Expect(err).To(BeNil())
		Expect(exec.CurrentState).To(Equal(1))
		Expect(exec.I1).To(Equal(int64(7)))
	})

	Describe("the two-state toggle scenario", func() {
		// State 0 is a root with no actions; states 1 (A) and 2 (B) are its
		// children, both gated by the same port-0/mask-0x1 condition, each
		// emitting the opposite bit on its if-branch before swapping to the
		// other state (spec.md §8 scenario 4).
		newToggleTable := func() *hsm.Table {
			return &hsm.Table{
				TopState: 0,
				States: []hsm.State{
					{Sub: 1, Super: hsm.NoState},
					{
						Sub:            hsm.NoState,
						Super:          0,
						Condition:      hsm.Condition{Type: hsm.ConditionPort, Port: 0, Mask: 0x1},
						IfTransition:   2,
						ElseTransition: hsm.NoState,
						IfActions:      []hsm.Action{{Type: hsm.ActionOutput, Port: 0, Value: 1}},
					},
					{
						Sub:            hsm.NoState,
						Super:          0,
						Condition:      hsm.Condition{Type: hsm.ConditionPort, Port: 0, Mask: 0x1},
						IfTransition:   1,
						ElseTransition: hsm.NoState,
						IfActions:      []hsm.Action{{Type: hsm.ActionOutput, Port: 0, Value: 0}},
					},
				},
			}
		}

		It("emits 1, 0, 1 across three toggles and walks back and forth between A and B", func() {
			table := newToggleTable()
			exec := &hsm.Execution{}
			Expect(engine.Start(table, exec, hsm.Constants{}, nil)).To(BeNil())
			Expect(exec.CurrentState).To(Equal(1))

			var emitted []float64
			for i := 0; i < 3; i++ {
				exec.SetPort(0, 1)
				handled, err := engine.Dispatch(table, exec, hsm.Constants{}, nil, hsm.EventInputChanged)
				Expect(err).To(BeNil())
				Expect(handled).To(BeTrue())
				for _, out := range exec.DrainOutputs() {
					emitted = append(emitted, out.Value.Value)
				}
				exec.ClearPorts()
			}

			Expect(emitted).To(Equal([]float64{1, 0, 1}))
			Expect(exec.CurrentState).To(Equal(2))
		})

		It("does not transition when the port condition does not match", func() {
			table := newToggleTable()
			exec := &hsm.Execution{}
			Expect(engine.Start(table, exec, hsm.Constants{}, nil)).To(BeNil())

			handled, err := engine.Dispatch(table, exec, hsm.Constants{}, nil, hsm.EventInputChanged)
			Expect(err).To(BeNil())
			Expect(handled).To(BeFalse())
			Expect(exec.CurrentState).To(Equal(1))
			Expect(exec.DrainOutputs()).To(BeEmpty())
		})
	})

	It("only matches a sigma condition on EventWakeUp", func() {
		table := &hsm.Table{
			TopState: 0,
			States: []hsm.State{
				{Sub: hsm.NoState, Super: hsm.NoState, Condition: hsm.Condition{Type: hsm.ConditionSigma}, IfTransition: hsm.NoState, ElseTransition: hsm.NoState,
					IfActions: []hsm.Action{{Type: hsm.ActionAffect, Dest: hsm.VarI1, Left: hsm.VarIntegerConstant}}},
			},
		}
		exec := &hsm.Execution{}
		engine.Start(table, exec, hsm.Constants{IntegerLiteral: 1}, nil)

		handled, err := engine.Dispatch(table, exec, hsm.Constants{IntegerLiteral: 1}, nil, hsm.EventInternal)
		Expect(err).To(BeNil())
		Expect(handled).To(BeFalse())
		Expect(exec.I1).To(Equal(int64(0)))

		handled, err = engine.Dispatch(table, exec, hsm.Constants{IntegerLiteral: 1}, nil, hsm.EventWakeUp)
		Expect(err).To(BeNil())
		Expect(handled).To(BeTrue())
		Expect(exec.I1).To(Equal(int64(1)))
	})

	It("rejects Dispatch while a transition is mid-flight", func() {
		table := &hsm.Table{States: []hsm.State{{}}, TopState: 0}
		exec := &hsm.Execution{CurrentState: 0, DisallowTransition: true}

		_, err := engine.Dispatch(table, exec, hsm.Constants{}, nil, hsm.EventInternal)
		Expect(err).NotTo(BeNil())
	})

	It("produces signed infinity on division and modulo by zero instead of failing", func() {
		table := &hsm.Table{
			TopState: 0,
			States: []hsm.State{
				{Sub: hsm.NoState, Super: hsm.NoState, IfTransition: hsm.NoState, ElseTransition: hsm.NoState,
					IfActions: []hsm.Action{
						{Type: hsm.ActionDivide, Dest: hsm.VarR1, Left: hsm.VarIntegerConstant, Right: hsm.VarNone},
					}},
			},
		}
		exec := &hsm.Execution{}
		consts := hsm.Constants{IntegerLiteral: 5}
		engine.Start(table, exec, consts, nil)

		_, err := engine.Dispatch(table, exec, consts, nil, hsm.EventInternal)
		Expect(err).To(BeNil())
		Expect(math.IsInf(exec.R1, 1)).To(BeTrue())
	})

	It("raises ErrSourceUnconfigured reading the source variable with none mounted unless AllowUnconfiguredSource", func() {
		table := &hsm.Table{
			TopState: 0,
			States: []hsm.State{
				{Sub: hsm.NoState, Super: hsm.NoState, IfTransition: hsm.NoState, ElseTransition: hsm.NoState,
					IfActions: []hsm.Action{{Type: hsm.ActionAffect, Dest: hsm.VarR1, Left: hsm.VarSource}}},
			},
		}
		exec := &hsm.Execution{}
		engine.Start(table, exec, hsm.Constants{}, nil)

		_, err := engine.Dispatch(table, exec, hsm.Constants{}, nil, hsm.EventInternal)
		Expect(err).NotTo(BeNil())

		engine.AllowUnconfiguredSource = true
		_, err = engine.Dispatch(table, exec, hsm.Constants{}, nil, hsm.EventInternal)
		Expect(err).To(BeNil())
		Expect(exec.R1).To(Equal(0.0))
	})

	It("reads a mounted source variable via Source.Next", func() {
		p := &source.ConstantProvider{Values: []float64{42}}
		d := source.NewDriver(1)
		id := d.Register(p)
		d.Prepare()
		src, _ := d.Mount(source.KindConstant, id, 0)

		table := &hsm.Table{
			TopState: 0,
			States: []hsm.State{
				{Sub: hsm.NoState, Super: hsm.NoState, IfTransition: hsm.NoState, ElseTransition: hsm.NoState,
					IfActions: []hsm.Action{{Type: hsm.ActionAffect, Dest: hsm.VarR1, Left: hsm.VarSource}}},
			},
		}
		exec := &hsm.Execution{}
		engine.Start(table, exec, hsm.Constants{}, src)

		_, err := engine.Dispatch(table, exec, hsm.Constants{}, src, hsm.EventInternal)
		Expect(err).To(BeNil())
		Expect(exec.R1).To(Equal(42.0))
	})
})
