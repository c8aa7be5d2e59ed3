package atom

import (
	"math"
	"testing"

	"github.com/vle-forge/irritator-sub000/kernel"
)

func TestQSS2IntegratorAdvanceHalvesCurvatureTerm(t *testing.T) {
	integ := NewQSS2Integrator()
	integ.X, integ.u, integ.mu = 0, 1, 2

	integ.advance(1)

	// X += u*e + (mu/2)*e^2 = 0 + 1*1 + (2/2)*1 = 2, not 0+1+2=3.
	if math.Abs(integ.X-2) > 1e-9 {
		t.Fatalf("advance(1) X = %v, want 2 (mu term must be halved)", integ.X)
	}
}

func TestQSS2IntegratorRampingDerivative(t *testing.T) {
	ctx := newTestContext()
	integ := NewQSS2Integrator()
	integ.X, integ.DQ = 0, 0.1
	if err := integ.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// A ramping derivative: u=1, mu=2 (non-zero curvature), delivered with
	// no elapsed time so advance is a no-op and the quantum-crossing
	// solve is exercised directly.
	deliver(&integ.In[qssPortXDot], kernel.Message{Value: 1, Slope: 2})
	if err := integ.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	wantSigma, ok := nextQuantumCrossing(0, integ.mu/2, integ.u, integ.X, integ.q, integ.DQ)
	if !ok {
		t.Fatalf("nextQuantumCrossing found no crossing for u=%v mu=%v", integ.u, integ.mu)
	}
	if math.Abs(integ.Sigma()-wantSigma) > 1e-9 {
		t.Fatalf("sigma = %v, want %v (mu/2, not raw mu, must feed the crossing solve)", integ.Sigma(), wantSigma)
	}

	if err := integ.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	s := integ.Sigma()
	wantValue := integ.X + integ.u*s + integ.mu*s*s/2
	wantSlope := integ.u + integ.mu*s
	if math.Abs(integ.Out[0].Msg.Value-wantValue) > 1e-9 {
		t.Fatalf("Out[0].Value = %v, want %v (extrapolated by pending sigma)", integ.Out[0].Msg.Value, wantValue)
	}
	if math.Abs(integ.Out[0].Msg.Slope-wantSlope) > 1e-9 {
		t.Fatalf("Out[0].Slope = %v, want %v", integ.Out[0].Msg.Slope, wantSlope)
	}

	// Fire the internal transition at the due time: u must be advanced by
	// mu*e before the next crossing is resolved, or the following sigma
	// would be solved with a stale slope.
	integ.In[qssPortXDot].Reset()
	uBefore, muBefore, eAt := integ.u, integ.mu, integ.Sigma()
	if err := integ.Transition(ctx, eAt, eAt, 0); err != nil {
		t.Fatalf("Transition (internal): %v", err)
	}
	wantU := uBefore + muBefore*eAt
	if math.Abs(integ.u-wantU) > 1e-9 {
		t.Fatalf("u after internal transition = %v, want %v (u += mu*sigma)", integ.u, wantU)
	}
}

func TestQSS3IntegratorAdvanceScalesCurvatureAndJerkTerms(t *testing.T) {
	integ := NewQSS3Integrator()
	integ.X, integ.u, integ.mu, integ.pu = 0, 1, 2, 3

	integ.advance(1)

	// X += u*e + (mu/2)*e^2 + (pu/3)*e^3 = 0 + 1 + 1 + 1 = 3, not 0+1+2+3=6.
	if math.Abs(integ.X-3) > 1e-9 {
		t.Fatalf("advance(1) X = %v, want 3 (mu/pu terms must be scaled by 1/2 and 1/3)", integ.X)
	}
}

func TestQSS3IntegratorRampingDerivative(t *testing.T) {
	ctx := newTestContext()
	integ := NewQSS3Integrator()
	integ.X, integ.DQ = 0, 0.1
	if err := integ.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	deliver(&integ.In[qssPortXDot], kernel.Message{Value: 1, Slope: 2, Curvature: 3})
	if err := integ.Transition(ctx, 0, 0, 0); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	wantSigma, ok := nextQuantumCrossing(integ.pu/3, integ.mu/2, integ.u, integ.X, integ.q, integ.DQ)
	if !ok {
		t.Fatalf("nextQuantumCrossing found no crossing for u=%v mu=%v pu=%v", integ.u, integ.mu, integ.pu)
	}
	if math.Abs(integ.Sigma()-wantSigma) > 1e-9 {
		t.Fatalf("sigma = %v, want %v (mu/2 and pu/3, not raw mu/pu, must feed the crossing solve)", integ.Sigma(), wantSigma)
	}

	if err := integ.Lambda(ctx); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	s := integ.Sigma()
	s2 := s * s
	wantValue := integ.X + integ.u*s + integ.mu*s2/2 + integ.pu*s2*s/3
	wantSlope := integ.u + integ.mu*s + integ.pu*s2
	wantCurvature := integ.mu/2 + integ.pu*s
	if math.Abs(integ.Out[0].Msg.Value-wantValue) > 1e-9 {
		t.Fatalf("Out[0].Value = %v, want %v (extrapolated by pending sigma)", integ.Out[0].Msg.Value, wantValue)
	}
	if math.Abs(integ.Out[0].Msg.Slope-wantSlope) > 1e-9 {
		t.Fatalf("Out[0].Slope = %v, want %v", integ.Out[0].Msg.Slope, wantSlope)
	}
	if math.Abs(integ.Out[0].Msg.Curvature-wantCurvature) > 1e-9 {
		t.Fatalf("Out[0].Curvature = %v, want %v", integ.Out[0].Msg.Curvature, wantCurvature)
	}

	// Fire the internal transition at the due time: both u and mu must be
	// advanced (u += mu*e + pu*e^2, then mu += 2*pu*e) before the next
	// crossing is resolved.
	integ.In[qssPortXDot].Reset()
	uBefore, muBefore, puBefore, eAt := integ.u, integ.mu, integ.pu, integ.Sigma()
	if err := integ.Transition(ctx, eAt, eAt, 0); err != nil {
		t.Fatalf("Transition (internal): %v", err)
	}
	wantU := uBefore + muBefore*eAt + puBefore*eAt*eAt
	wantMu := muBefore + 2*puBefore*eAt
	if math.Abs(integ.u-wantU) > 1e-9 {
		t.Fatalf("u after internal transition = %v, want %v (u += mu*sigma + pu*sigma^2)", integ.u, wantU)
	}
	if math.Abs(integ.mu-wantMu) > 1e-9 {
		t.Fatalf("mu after internal transition = %v, want %v (mu += 2*pu*sigma)", integ.mu, wantMu)
	}
}
