package flow_test

import (
	"sync"

	"github.com/benchfarm/devmatch/internal/flow"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Queue", func() {
	It("should pop values in the order they were pushed", func() {
		q := flow.NewQueue[int]()
		q.Push(1)
		q.Push(2)
		q.Push(3)

		for _, want := range []int{1, 2, 3} {
			v, ok := q.TryPop()
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(want))
		}
	})

	It("should report empty without blocking", func() {
		q := flow.NewQueue[string]()

		_, ok := q.TryPop()
		Expect(ok).To(BeFalse())
	})

	It("should track its length", func() {
		q := flow.NewQueue[int]()
		Expect(q.Len()).To(Equal(0))

		q.Push(1)
		q.Push(2)
		Expect(q.Len()).To(Equal(2))

		q.TryPop()
		Expect(q.Len()).To(Equal(1))
	})

	It("should accept concurrent pushes", func() {
		q := flow.NewQueue[int]()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				q.Push(n)
			}(i)
		}
		wg.Wait()

		Expect(q.Len()).To(Equal(16))
	})

	It("should act as a sink", func() {
		q := flow.NewQueue[string]()
		var sink flow.Sink[string] = q

		Expect(sink.Submit("event")).To(Succeed())

		v, ok := q.TryPop()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("event"))
	})

	It("should collect fanned out values when subscribed", func() {
		f := flow.NewFanout[int]()
		defer f.Close()

		q := flow.NewQueue[int]()
		cancel := f.Subscribe(q)
		defer cancel()

		Expect(f.Submit(7)).To(Succeed())

		Eventually(q.Len).Should(Equal(1))
		v, ok := q.TryPop()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(7))
	})
})
