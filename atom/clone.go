package atom

import "github.com/vle-forge/irritator-sub000/status"

// newLike allocates a zero-value instance of dyn's concrete type, ready
// for UnmarshalBinary to populate.
func newLike(dyn Dynamics) Dynamics {
	switch dyn.(type) {
	case *QSS1Integrator:
		return &QSS1Integrator{}
	case *QSS2Integrator:
		return &QSS2Integrator{}
	case *QSS3Integrator:
		return &QSS3Integrator{}
	case *Counter:
		return &Counter{}
	case *Constant:
		return &Constant{}
	case *TimeFunc:
		return &TimeFunc{}
	case *Accumulator:
		return &Accumulator{}
	case *Sum:
		return &Sum{}
	case *WSum:
		return &WSum{}
	case *Multiplier:
		return &Multiplier{}
	case *Gain:
		return &Gain{}
	case *Power:
		return &Power{}
	case *Inverse:
		return &Inverse{}
	case *Exp:
		return &Exp{}
	case *Log:
		return &Log{}
	case *Sin:
		return &Sin{}
	case *Cos:
		return &Cos{}
	case *Integer:
		return &Integer{}
	case *Cross:
		return &Cross{}
	case *Filter:
		return &Filter{}
	case *Flipflop:
		return &Flipflop{}
	case *Compare:
		return &Compare{}
	case *LogicalAnd2:
		return &LogicalAnd2{}
	case *LogicalAnd3:
		return &LogicalAnd3{}
	case *LogicalOr2:
		return &LogicalOr2{}
	case *LogicalOr3:
		return &LogicalOr3{}
	case *LogicalInvert:
		return &LogicalInvert{}
	case *Generator:
		return &Generator{}
	case *Queue:
		return &Queue{}
	case *DynamicQueue:
		return &DynamicQueue{}
	case *PriorityQueue:
		return &PriorityQueue{}
	case *HSMWrapper:
		return &HSMWrapper{}
	default:
		return nil
	}
}

type binaryCodec interface {
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error
}

// Clone duplicates dyn into a fresh instance of the same concrete type,
// carrying its full internal state, by round-tripping through the binary
// codec every dynamics implements. The clone owns its own port block, so
// it starts with no connections regardless of how the original is wired.
func Clone(dyn Dynamics) (Dynamics, *status.Error) {
	fresh := newLike(dyn)
	if fresh == nil {
		return nil, status.New(status.ErrUnknownModel, "clone: unsupported dynamics")
	}
	data, err := dyn.(binaryCodec).MarshalBinary()
	if err != nil {
		return nil, status.New(status.ErrUnknownModel, "clone: "+err.Error())
	}
	if err := fresh.(binaryCodec).UnmarshalBinary(data); err != nil {
		return nil, status.New(status.ErrUnknownModel, "clone: "+err.Error())
	}
	return fresh, nil
}
