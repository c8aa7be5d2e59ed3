package atom

// signalClass partitions port signals into the two families the wiring
// compatibility matrix distinguishes: continuous QSS polynomial streams
// and discrete logical levels.
type signalClass uint8

const (
	signalQSS signalClass = iota
	signalLogical
)

// outputClass returns the signal family carried by src's portIdx-th
// output. Logic gates and the HSM wrapper emit logical levels; the side
// ports of cross and filter (index >= 1) report threshold hits and are
// logical as well. Everything else emits a QSS polynomial.
func outputClass(src Dynamics, portIdx int) signalClass {
	switch src.(type) {
	case *LogicalAnd2, *LogicalAnd3, *LogicalOr2, *LogicalOr3, *LogicalInvert:
		return signalLogical
	case *HSMWrapper:
		return signalLogical
	case *Cross, *Filter:
		if portIdx >= 1 {
			return signalLogical
		}
	}
	return signalQSS
}

// acceptsInput reports whether dst's portIdx-th input accepts the given
// signal family. Logic gates take only logical-family signals; counter and
// HSM event lines count or dispatch any message regardless of family; the
// flipflop's event line (port 1) likewise triggers on either. All other
// inputs expect a QSS polynomial.
func acceptsInput(dst Dynamics, portIdx int, class signalClass) bool {
	switch dst.(type) {
	case *LogicalAnd2, *LogicalAnd3, *LogicalOr2, *LogicalOr3, *LogicalInvert:
		return class == signalLogical
	case *Counter, *HSMWrapper:
		return true
	case *Flipflop:
		if portIdx == 1 {
			return true
		}
	}
	return class == signalQSS
}

// CanConnect is the wiring compatibility matrix: QSS outputs interconnect
// freely except into logic gates, logic gates accept only logical-family
// outputs (other gates, the HSM wrapper, cross/filter side ports), and
// counter/HSM inputs accept either family.
func CanConnect(src Dynamics, srcPort int, dst Dynamics, dstPort int) bool {
	return acceptsInput(dst, dstPort, outputClass(src, srcPort))
}
