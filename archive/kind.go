// Package archive implements the simulation's save/restore format: a
// tagged binary stream carrying every mounted source, every model's
// dynamics, and the connection graph, so a Simulation can be serialized and
// rebuilt byte-for-byte. Grounded on spec.md §6 and the
// archiver/dearchiver routines of original_source/lib/src/archiver.cpp.
package archive

import "github.com/vle-forge/irritator-sub000/atom"

// Kind tags which concrete atom.Dynamics type a model record holds, taking
// the place of the original implementation's in-buffer type discriminant
// (spec.md §9's "tagged inline payload" pattern, realized here as an
// explicit enum rather than a union tag read off raw bytes).
type Kind uint8

const (
	KindQSS1Integrator Kind = iota
	KindQSS2Integrator
	KindQSS3Integrator
	KindCounter
	KindConstant
	KindTimeFunc
	KindAccumulator
	KindSum
	KindWSum
	KindMultiplier
	KindGain
	KindPower
	KindInverse
	KindExp
	KindLog
	KindSin
	KindCos
	KindInteger
	KindCross
	KindFilter
	KindFlipflop
	KindCompare
	KindLogicalAnd2
	KindLogicalAnd3
	KindLogicalOr2
	KindLogicalOr3
	KindLogicalInvert
	KindGenerator
	KindQueue
	KindDynamicQueue
	KindPriorityQueue
	KindHSMWrapper
)

// binaryCodec is the narrow interface every atom.Dynamics concrete type
// implements (see atom/archive.go) so this package can (de)serialize each
// one's full state without reaching past atom's package boundary into its
// unexported fields.
type binaryCodec interface {
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error
}

// kindOf returns the Kind tag for dyn's concrete type.
func kindOf(dyn atom.Dynamics) (Kind, bool) {
	switch dyn.(type) {
	case *atom.QSS1Integrator:
		return KindQSS1Integrator, true
	case *atom.QSS2Integrator:
		return KindQSS2Integrator, true
	case *atom.QSS3Integrator:
		return KindQSS3Integrator, true
	case *atom.Counter:
		return KindCounter, true
	case *atom.Constant:
		return KindConstant, true
	case *atom.TimeFunc:
		return KindTimeFunc, true
	case *atom.Accumulator:
		return KindAccumulator, true
	case *atom.Sum:
		return KindSum, true
	case *atom.WSum:
		return KindWSum, true
	case *atom.Multiplier:
		return KindMultiplier, true
	case *atom.Gain:
		return KindGain, true
	case *atom.Power:
		return KindPower, true
	case *atom.Inverse:
		return KindInverse, true
	case *atom.Exp:
		return KindExp, true
	case *atom.Log:
		return KindLog, true
	case *atom.Sin:
		return KindSin, true
	case *atom.Cos:
		return KindCos, true
	case *atom.Integer:
		return KindInteger, true
	case *atom.Cross:
		return KindCross, true
	case *atom.Filter:
		return KindFilter, true
	case *atom.Flipflop:
		return KindFlipflop, true
	case *atom.Compare:
		return KindCompare, true
	case *atom.LogicalAnd2:
		return KindLogicalAnd2, true
	case *atom.LogicalAnd3:
		return KindLogicalAnd3, true
	case *atom.LogicalOr2:
		return KindLogicalOr2, true
	case *atom.LogicalOr3:
		return KindLogicalOr3, true
	case *atom.LogicalInvert:
		return KindLogicalInvert, true
	case *atom.Generator:
		return KindGenerator, true
	case *atom.Queue:
		return KindQueue, true
	case *atom.DynamicQueue:
		return KindDynamicQueue, true
	case *atom.PriorityQueue:
		return KindPriorityQueue, true
	case *atom.HSMWrapper:
		return KindHSMWrapper, true
	default:
		return 0, false
	}
}

// newByKind allocates a zero-value instance of the dynamics type kind
// names, ready for UnmarshalBinary to populate (including its own Ports).
func newByKind(kind Kind) (atom.Dynamics, bool) {
	switch kind {
	case KindQSS1Integrator:
		return &atom.QSS1Integrator{}, true
	case KindQSS2Integrator:
		return &atom.QSS2Integrator{}, true
	case KindQSS3Integrator:
		return &atom.QSS3Integrator{}, true
	case KindCounter:
		return &atom.Counter{}, true
	case KindConstant:
		return &atom.Constant{}, true
	case KindTimeFunc:
		return &atom.TimeFunc{}, true
	case KindAccumulator:
		return &atom.Accumulator{}, true
	case KindSum:
		return &atom.Sum{}, true
	case KindWSum:
		return &atom.WSum{}, true
	case KindMultiplier:
		return &atom.Multiplier{}, true
	case KindGain:
		return &atom.Gain{}, true
	case KindPower:
		return &atom.Power{}, true
	case KindInverse:
		return &atom.Inverse{}, true
	case KindExp:
		return &atom.Exp{}, true
	case KindLog:
		return &atom.Log{}, true
	case KindSin:
		return &atom.Sin{}, true
	case KindCos:
		return &atom.Cos{}, true
	case KindInteger:
		return &atom.Integer{}, true
	case KindCross:
		return &atom.Cross{}, true
	case KindFilter:
		return &atom.Filter{}, true
	case KindFlipflop:
		return &atom.Flipflop{}, true
	case KindCompare:
		return &atom.Compare{}, true
	case KindLogicalAnd2:
		return &atom.LogicalAnd2{}, true
	case KindLogicalAnd3:
		return &atom.LogicalAnd3{}, true
	case KindLogicalOr2:
		return &atom.LogicalOr2{}, true
	case KindLogicalOr3:
		return &atom.LogicalOr3{}, true
	case KindLogicalInvert:
		return &atom.LogicalInvert{}, true
	case KindGenerator:
		return &atom.Generator{}, true
	case KindQueue:
		return &atom.Queue{}, true
	case KindDynamicQueue:
		return &atom.DynamicQueue{}, true
	case KindPriorityQueue:
		return &atom.PriorityQueue{}, true
	case KindHSMWrapper:
		return &atom.HSMWrapper{}, true
	default:
		return nil, false
	}
}
