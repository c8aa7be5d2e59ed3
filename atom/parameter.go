package atom

import (
	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/status"
)

// Parameter is the flat parameter value applied to a model before the
// simulation initializes: four reals and four integers whose meaning each
// dynamics type assigns itself. A host builds one with the per-type Set*
// helpers, then applies it with CopyTo; validation of the resulting fields
// happens in the dynamics' own Initialize, where the typed errors live.
type Parameter struct {
	Reals    [4]float64
	Integers [4]int64
}

// SetQSSIntegrator fills the slots a QSS1/2/3 integrator reads: the
// initial state X and the quantum dQ.
func (p *Parameter) SetQSSIntegrator(x, dq float64) {
	p.Reals[0] = x
	p.Reals[1] = dq
}

// SetConstant fills the slots Constant reads: the emitted value and the
// emission offset.
func (p *Parameter) SetConstant(value float64, offset kernel.Time) {
	p.Reals[0] = value
	p.Reals[1] = float64(offset)
}

// SetGain fills the slot Gain reads: the multiplier K.
func (p *Parameter) SetGain(k float64) {
	p.Reals[0] = k
}

// SetPower fills the slot Power reads: the exponent N.
func (p *Parameter) SetPower(n int64) {
	p.Integers[0] = n
}

// SetWSum fills the per-input coefficients a WSum reads, one per real
// slot.
func (p *Parameter) SetWSum(coeff [4]float64) {
	p.Reals = coeff
}

// SetCross fills the slot Cross reads: the crossing threshold.
func (p *Parameter) SetCross(threshold float64) {
	p.Reals[0] = threshold
}

// SetCompare fills the slot Compare reads: the comparison threshold.
func (p *Parameter) SetCompare(threshold float64) {
	p.Reals[0] = threshold
}

// SetFilter fills the slots Filter reads: the lower and upper bounds.
func (p *Parameter) SetFilter(lower, upper float64) {
	p.Reals[0] = lower
	p.Reals[1] = upper
}

// SetTimeFunc fills the slots TimeFunc reads: the waveform kind and the
// sampling timestep.
func (p *Parameter) SetTimeFunc(kind TimeFuncKind, timestep kernel.Time) {
	p.Integers[0] = int64(kind)
	p.Reals[0] = float64(timestep)
}

// SetQueue fills the slot Queue reads: the default hold delay.
func (p *Parameter) SetQueue(ta kernel.Time) {
	p.Reals[0] = float64(ta)
}

// SetGenerator fills the slots Generator reads when no external source is
// mounted: the constant value and constant time-advance.
func (p *Parameter) SetGenerator(value float64, ta kernel.Time) {
	p.Reals[0] = value
	p.Reals[1] = float64(ta)
}

// CopyTo interprets the parameter slots for dyn's concrete type and writes
// them into its fields. Types with no parameters ignore the call. Gain and
// Power are rebuilt through their constructors so the captured closure
// matches the new value; their port blocks are preserved so existing
// connections survive.
func (p *Parameter) CopyTo(dyn Dynamics) *status.Error {
	switch d := dyn.(type) {
	case *QSS1Integrator:
		d.X, d.DQ = p.Reals[0], p.Reals[1]
	case *QSS2Integrator:
		d.X, d.DQ = p.Reals[0], p.Reals[1]
	case *QSS3Integrator:
		d.X, d.DQ = p.Reals[0], p.Reals[1]
	case *Constant:
		d.Value, d.Offset = p.Reals[0], kernel.Time(p.Reals[1])
	case *Gain:
		ports := d.Ports
		*d = *NewGain(p.Reals[0])
		if len(ports.In) > 0 {
			d.Ports = ports
		}
	case *Power:
		ports := d.Ports
		*d = *NewPower(int(p.Integers[0]))
		if len(ports.In) > 0 {
			d.Ports = ports
		}
	case *WSum:
		for i := range d.Coeff {
			if i >= len(p.Reals) {
				break
			}
			d.Coeff[i] = p.Reals[i]
		}
	case *Cross:
		d.Threshold = p.Reals[0]
	case *Compare:
		d.Threshold = p.Reals[0]
	case *Filter:
		d.Lower, d.Upper = p.Reals[0], p.Reals[1]
	case *TimeFunc:
		d.Kind = TimeFuncKind(p.Integers[0])
		d.Timestep = kernel.Time(p.Reals[0])
	case *Queue:
		d.TA = kernel.Time(p.Reals[0])
	case *Generator:
		d.ConstValue = p.Reals[0]
		d.ConstTA = kernel.Time(p.Reals[1])
	}
	return nil
}
