// Command constantramp wires a constant-derivative source into a QSS1
// integrator, runs it partway, archives the simulation, dearchives it into
// a fresh Simulation, and resumes the run there — printing the original
// trajectory and the restored one to show the second run picking up
// exactly where the first stopped.
package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"

	"github.com/vle-forge/irritator-sub000/archive"
	"github.com/vle-forge/irritator-sub000/atom"
	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/observer"
	"github.com/vle-forge/irritator-sub000/simulation"
	"github.com/vle-forge/irritator-sub000/status"
)

func build() (*simulation.Simulation, *observer.Observer) {
	sim := simulation.New(simulation.Limits{Begin: 0, End: 10}, simulation.DefaultReserve(), 0)

	derivative := atom.NewConstant(1, 0)
	integrator := atom.NewQSS1Integrator()
	integrator.X = 0
	integrator.DQ = 0.05

	srcID := sim.AddModel(derivative)
	dstID := sim.AddModel(integrator)
	must(sim.Connect(srcID, 0, dstID, 0))

	obs := observer.NewObserver(256, 0, observer.InterpolationNone, 0)
	must(sim.AddObserver(dstID, obs))
	must(sim.Initialize())
	return sim, obs
}

func must(err error) {
	if se, ok := err.(*status.Error); ok && se == nil {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
}

func runUntil(sim *simulation.Simulation, end float64) {
	for sim.T() < end {
		must(sim.Run())
	}
}

func printTrajectory(title string, obs *observer.Observer) {
	t := table.NewWriter()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"time", "X", "X'"})
	for i := 0; i < obs.RawLen(); i++ {
		s := obs.RawAt(i)
		t.AppendRow(table.Row{s.Time, s.X, s.XPrime})
	}
	fmt.Println(t.Render())
}

// integratorID returns the id of the one *atom.QSS1Integrator model in sim,
// relying on model iteration order being stable within a single run.
func integratorID(sim *simulation.Simulation) kernel.ID {
	var found kernel.ID = kernel.InvalidID
	sim.IterateModels(func(id kernel.ID, m *simulation.Model) bool {
		if _, ok := m.Dynamics.(*atom.QSS1Integrator); ok {
			found = id
		}
		return true
	})
	return found
}

func main() {
	sim, obs := build()
	runUntil(sim, 4)
	printTrajectory("original, t in [0,4]", obs)

	_, data, err := archive.Archive(sim)
	must(err)

	restored, derr := archive.Dearchive(data, sim.Limits, simulation.DefaultReserve(), 0)
	if derr != nil {
		must(derr)
	}

	restoredObs := observer.NewObserver(256, 0, observer.InterpolationNone, 0)
	must(restored.AddObserver(integratorID(restored), restoredObs))

	runUntil(restored, 10)
	printTrajectory("restored, resumes to t=10", restoredObs)
	atexit.Exit(0)
}
