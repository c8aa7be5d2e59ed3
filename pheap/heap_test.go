package pheap_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vle-forge/irritator-sub000/kernel"
	"github.com/vle-forge/irritator-sub000/pheap"
)

var _ = Describe("Heap", func() {
	It("pops handles in tn order", func() {
		h := pheap.New(8)
		times := []kernel.Time{5, 1, 3, 2, 4}
		handles := make([]pheap.Handle, len(times))
		for i, t := range times {
			handles[i] = h.Alloc(t, kernel.ID(i))
		}

		var gotOrder []kernel.Time
		for !h.Empty() {
			top := h.Pop()
			gotOrder = append(gotOrder, h.Tn(top))
		}
		Expect(gotOrder).To(Equal([]kernel.Time{1, 2, 3, 4, 5}))
	})

	It("pops ties together when Decrease collapses them onto the same tn", func() {
		h := pheap.New(8)
		a := h.Alloc(10, kernel.ID(1))
		b := h.Alloc(20, kernel.ID(2))
		h.Decrease(10, b)

		Expect(h.Tn(h.Top())).To(Equal(kernel.Time(10)))
		top := h.Pop()
		Expect(top == a || top == b).To(BeTrue())
	})

	It("reports is-in-tree per the root-or-linked invariant", func() {
		h := pheap.New(4)
		a := h.Alloc(1, kernel.ID(1))
		b := h.Alloc(2, kernel.ID(2))

		Expect(h.IsInTree(a)).To(BeTrue())
		Expect(h.IsInTree(b)).To(BeTrue())

		h.Remove(b)
		Expect(h.IsInTree(b)).To(BeFalse())

		h.Reintegrate(5, b)
		Expect(h.IsInTree(b)).To(BeTrue())
	})

	It("supports increase-key by re-melding at the new tn", func() {
		h := pheap.New(4)
		a := h.Alloc(1, kernel.ID(1))
		b := h.Alloc(2, kernel.ID(2))

		h.Increase(100, a)
		Expect(h.Tn(h.Top())).To(Equal(kernel.Time(2)))
		Expect(h.Top()).To(Equal(b))
		Expect(h.Tn(a)).To(Equal(kernel.Time(100)))
	})

	It("merges two independent trees", func() {
		h1 := pheap.New(4)
		h2 := pheap.New(4)
		h1.Alloc(3, kernel.ID(1))
		h2.Alloc(1, kernel.ID(2))
		h2.Alloc(2, kernel.ID(3))

		h1.Merge(h2)
		Expect(h2.Empty()).To(BeTrue())

		var order []kernel.Time
		for !h1.Empty() {
			order = append(order, h1.Tn(h1.Pop()))
		}
		Expect(order).To(Equal([]kernel.Time{1, 2, 3}))
	})

	It("handles a larger randomized-ish sequence in sorted order", func() {
		h := pheap.New(32)
		values := []kernel.Time{9, 3, 7, 1, 8, 2, 6, 4, 5, 0}
		for i, v := range values {
			h.Alloc(v, kernel.ID(i))
		}
		var order []kernel.Time
		for !h.Empty() {
			order = append(order, h.Tn(h.Pop()))
		}
		Expect(order).To(Equal([]kernel.Time{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
	})
})
