package port_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/port"
	"github.com/vle-forge/irritator-sub000/status"
)

var _ = Describe("Fabric", func() {
	var (
		fabric *port.Fabric
		out    *port.Output
		always func(kernel.ID) bool
	)

	BeforeEach(func() {
		fabric = port.NewFabric(2, 0)
		out = &port.Output{}
		always = func(kernel.ID) bool { return true }
	})

	It("fills the static array before allocating overflow", func() {
		for i := 0; i < 4; i++ {
			Expect(fabric.Connect(out, kernel.ID(i), 0)).To(BeNil())
		}
		var seen []kernel.ID
		fabric.Iterate(out, always, func(target kernel.ID, p int) {
			seen = append(seen, target)
		})
		Expect(seen).To(HaveLen(4))
	})

	It("spills into overflow blocks past the static capacity", func() {
		for i := 0; i < 9; i++ {
			Expect(fabric.Connect(out, kernel.ID(i), 0)).To(BeNil())
		}
		count := 0
		fabric.Iterate(out, always, func(target kernel.ID, p int) { count++ })
		Expect(count).To(Equal(9))
	})

	It("rejects a duplicate edge", func() {
		Expect(fabric.Connect(out, kernel.ID(1), 2)).To(BeNil())
		err := fabric.Connect(out, kernel.ID(1), 2)
		Expect(err).NotTo(BeNil())
		Expect(err.Kind).To(Equal(status.ErrConnectionAlreadyExists))
	})

	It("round-trips connect then disconnect back to the prior fan-out", func() {
		for i := 0; i < 6; i++ {
			Expect(fabric.Connect(out, kernel.ID(i), 0)).To(BeNil())
		}
		before := collectEdges(fabric, out, always)

		Expect(fabric.Connect(out, kernel.ID(99), 1)).To(BeNil())
		Expect(fabric.Disconnect(out, kernel.ID(99), 1)).To(BeNil())

		after := collectEdges(fabric, out, always)
		Expect(after).To(ConsistOf(before))
	})

	It("sweeps stale edges during iteration", func() {
		Expect(fabric.Connect(out, kernel.ID(1), 0)).To(BeNil())
		Expect(fabric.Connect(out, kernel.ID(2), 0)).To(BeNil())

		dead := map[kernel.ID]bool{kernel.ID(1): true}
		aliveFn := func(id kernel.ID) bool { return !dead[id] }

		var seen []kernel.ID
		fabric.Iterate(out, aliveFn, func(target kernel.ID, p int) {
			seen = append(seen, target)
		})
		Expect(seen).To(Equal([]kernel.ID{kernel.ID(2)}))

		// Second pass with everything alive must not see the swept edge.
		seen = nil
		fabric.Iterate(out, always, func(target kernel.ID, p int) {
			seen = append(seen, target)
		})
		Expect(seen).To(Equal([]kernel.ID{kernel.ID(2)}))
	})

	It("frees empty overflow blocks as soon as they are observed", func() {
		for i := 0; i < 9; i++ {
			Expect(fabric.Connect(out, kernel.ID(i), 0)).To(BeNil())
		}
		for i := 4; i < 9; i++ {
			Expect(fabric.Disconnect(out, kernel.ID(i), 0)).To(BeNil())
		}
		count := 0
		fabric.Iterate(out, always, func(target kernel.ID, p int) { count++ })
		Expect(count).To(Equal(4))
	})
})

func collectEdges(f *port.Fabric, out *port.Output, alive func(kernel.ID) bool) []kernel.ID {
	var ids []kernel.ID
	f.Iterate(out, alive, func(target kernel.ID, p int) {
		ids = append(ids, target)
	})
	return ids
}
