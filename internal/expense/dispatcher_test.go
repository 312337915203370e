package expense_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appErrors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/expense"
)

// gatedSubmitter blocks every Submit until release is closed.
type gatedSubmitter struct {
	mu      sync.Mutex
	order   []string
	started chan string
	release chan struct{}
}

func newGatedSubmitter() *gatedSubmitter {
	return &gatedSubmitter{
		started: make(chan string, 10),
		release: make(chan struct{}),
	}
}

func (g *gatedSubmitter) Submit(ctx context.Context, form *expense.EntryForm) (*expense.SubmitResult, error) {
	g.started <- form.Amount
	<-g.release
	g.mu.Lock()
	g.order = append(g.order, form.Amount)
	g.mu.Unlock()
	if form.Amount == "bad" {
		return nil, errors.New("rejected")
	}
	return &expense.SubmitResult{Message: "ok " + form.Amount}, nil
}

func (g *gatedSubmitter) Order() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.order...)
}

var _ = Describe("Dispatcher", func() {
	var (
		submitter  *gatedSubmitter
		dispatcher *expense.Dispatcher
	)

	BeforeEach(func() {
		submitter = newGatedSubmitter()
		dispatcher = expense.NewDispatcher(submitter, expense.DispatcherConfig{QueueSize: 4}, testLogger)
	})

	AfterEach(func() {
		select {
		case <-submitter.release:
		default:
			close(submitter.release)
		}
		dispatcher.Shutdown()
	})

	It("is busy while a submission is in flight", func() {
		Expect(dispatcher.Busy()).To(BeFalse())

		done := make(chan *expense.SubmitResult, 1)
		go func() {
			defer GinkgoRecover()
			res, err := dispatcher.Submit(context.Background(), &expense.EntryForm{Amount: "1"})
			Expect(err).NotTo(HaveOccurred())
			done <- res
		}()

		Eventually(submitter.started).Should(Receive(Equal("1")))
		Expect(dispatcher.Busy()).To(BeTrue())

		close(submitter.release)
		Eventually(done).Should(Receive(HaveField("Message", "ok 1")))
		Eventually(dispatcher.Busy).Should(BeFalse())
	})

	It("runs submissions one at a time in arrival order", func() {
		var wg sync.WaitGroup
		for _, amount := range []string{"1", "2", "3"} {
			wg.Add(1)
			go func(a string) {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := dispatcher.Submit(context.Background(), &expense.EntryForm{Amount: a})
				Expect(err).NotTo(HaveOccurred())
			}(amount)
			time.Sleep(10 * time.Millisecond)
		}

		Eventually(submitter.started).Should(Receive(Equal("1")))
		Consistently(submitter.started, 50*time.Millisecond).ShouldNot(Receive())

		close(submitter.release)
		wg.Wait()
		Expect(submitter.Order()).To(Equal([]string{"1", "2", "3"}))
	})

	It("returns the submitter's error", func() {
		close(submitter.release)
		_, err := dispatcher.Submit(context.Background(), &expense.EntryForm{Amount: "bad"})
		Expect(err).To(MatchError("rejected"))
	})

	It("refuses work after shutdown", func() {
		close(submitter.release)
		dispatcher.Shutdown()

		_, err := dispatcher.Submit(context.Background(), &expense.EntryForm{Amount: "1"})
		Expect(err).To(MatchError(expense.ErrDispatcherClosed))
		Expect(dispatcher.Busy()).To(BeFalse())

		appErr, ok := appErrors.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusServiceUnavailable))
		Expect(appErr.Code).To(Equal(appErrors.ErrCodeShuttingDown))
		Expect(err.Error()).To(Equal(expense.MsgShuttingDown))
	})

	It("fails queued submissions with the shutdown error", func() {
		results := make(chan error, 2)
		for _, amount := range []string{"1", "2"} {
			go func(a string) {
				_, err := dispatcher.Submit(context.Background(), &expense.EntryForm{Amount: a})
				results <- err
			}(amount)
			if amount == "1" {
				Eventually(submitter.started).Should(Receive(Equal("1")))
			}
		}
		Eventually(dispatcher.Busy).Should(BeTrue())

		stopped := make(chan struct{})
		go func() {
			dispatcher.Shutdown()
			close(stopped)
		}()
		close(submitter.release)
		Eventually(stopped).Should(BeClosed())

		var errs []error
		for i := 0; i < 2; i++ {
			var err error
			Eventually(results).Should(Receive(&err))
			errs = append(errs, err)
		}
		Expect(errs).To(ContainElement(BeNil()))
		Expect(dispatcher.Busy()).To(BeFalse())
	})
})
