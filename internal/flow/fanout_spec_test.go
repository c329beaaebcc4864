package flow_test

import (
	"sync"

	"github.com/benchfarm/devmatch/internal/flow"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Fanout", func() {
	Context("creation", func() {
		It("should create a new Fanout without buffer", func() {
			fanout := flow.NewFanout[string]()
			Expect(fanout).NotTo(BeNil())
			fanout.Close()
		})

		It("should create a new Fanout with buffer", func() {
			fanout := flow.NewFanout(flow.Buffered[string](2))
			Expect(fanout).NotTo(BeNil())
			fanout.Close()
		})
	})

	Context("registration", func() {
		var f *flow.Fanout[string]

		BeforeEach(func() {
			f = flow.NewFanout[string]()
		})

		AfterEach(func() {
			f.Close()
		})

		It("should register a new output channel", func() {
			in := make(chan string)
			cancel := f.Subscribe(flow.SinkFromChan(in))
			Expect(in).NotTo(BeNil())
			Expect(cancel).NotTo(BeNil())
			cancel()
		})

		It("should support multiple registrations", func() {
			in1 := make(chan string)
			in2 := make(chan string)
			in3 := make(chan string)
			cancel1 := f.Subscribe(flow.SinkFromChan(in1))
			cancel2 := f.Subscribe(flow.SinkFromChan(in2))
			cancel3 := f.Subscribe(flow.SinkFromChan(in3))

			Expect(in1).NotTo(BeNil())
			Expect(in2).NotTo(BeNil())
			Expect(in3).NotTo(BeNil())

			cancel1()
			cancel2()
			cancel3()
		})

		It("should allow unregistration using cancel function", func() {
			in := make(chan string)
			cancel := f.Subscribe(flow.SinkFromChan(in))
			Expect(in).NotTo(BeNil())

			// Unregister
			cancel()

			// Submit a value
			f.Submit("test")

			// Verify channel doesn't receive the value
			Consistently(in).ShouldNot(Receive())
		})
	})

	Context("submission", func() {
		var f *flow.Fanout[string]

		BeforeEach(func() {
			f = flow.NewFanout(flow.WithLogger[string](GinkgoLogr))
		})

		AfterEach(func() {
			f.Close()
		})

		It("should distribute values to all registered outputs", func() {
			in1 := make(chan string)
			in2 := make(chan string)
			cancel1 := f.Subscribe(flow.SinkFromChan(in1))
			cancel2 := f.Subscribe(flow.SinkFromChan(in2))
			defer cancel1()
			defer cancel2()

			go func() {
				f.Submit("hello")
			}()

			Eventually(in1).Should(Receive(Equal("hello")))
			Eventually(in2).Should(Receive(Equal("hello")))
		})

		It("should handle multiple submissions", func() {
			in := make(chan string)
			cancel := f.Subscribe(flow.SinkFromChan(in))
			defer cancel()

			go func() {
				f.Submit("one")
				f.Submit("two")
				f.Submit("three")
			}()

			Eventually(in).Should(Receive(Equal("one")))
			Eventually(in).Should(Receive(Equal("two")))
			Eventually(in).Should(Receive(Equal("three")))
		})
	})

	Context("buffering", func() {
		It("should deliver through a buffered subscriber channel", func() {
			f := flow.NewFanout[int]()
			defer f.Close()

			in := make(chan int, 2)
			cancel := f.Subscribe(flow.SinkFromChan(in))
			defer cancel()

			f.Submit(1)
			f.Submit(2)

			Eventually(in).Should(Receive(Equal(1)))
			Eventually(in).Should(Receive(Equal(2)))
		})

		It("should absorb submissions up to the input buffer size", func() {
			f := flow.NewFanout(flow.Buffered[int](2))
			defer f.Close()

			in := make(chan int)
			cancel := f.Subscribe(flow.SinkFromChan(in))
			defer cancel()

			var wg sync.WaitGroup
			wg.Add(1)
			// This goroutine will block after 2 submissions
			go func() {
				defer wg.Done()
				for i := 0; i < 3; i++ {
					f.Submit(i)
				}
			}()

			Eventually(in).Should(Receive(Equal(0)))
			Eventually(in).Should(Receive(Equal(1)))
			Eventually(in).Should(Receive(Equal(2)))

			wg.Wait()
		})
	})

	Context("closing", func() {
		It("should properly clean up when closed", func() {
			f := flow.NewFanout[string]()
			in1 := make(chan string)
			in2 := make(chan string)
			f.Subscribe(flow.SinkFromChan(in1))
			f.Subscribe(flow.SinkFromChan(in2))

			f.Close()

			// Channels should eventually close
			Eventually(func() bool {
				_, ok := <-in1
				return ok
			}).Should(BeFalse())

			Eventually(func() bool {
				_, ok := <-in2
				return ok
			}).Should(BeFalse())
		})
	})
})
