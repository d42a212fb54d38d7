package executor

// Poll is the result of polling a future.
type Poll int

const (
	// Pending means the future cannot make progress until its waker fires.
	Pending Poll = iota
	// Ready means the future has completed and must not be polled again.
	Ready
)

// String implements fmt.Stringer.
func (p Poll) String() string {
	if p == Ready {
		return "ready"
	}
	return "pending"
}

// Waker schedules a task to be polled again.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to the Waker interface.
type WakerFunc func()

// Wake calls f.
func (f WakerFunc) Wake() { f() }

// Noop is a waker that does nothing.
var Noop Waker = WakerFunc(func() {})

// Future is an asynchronous computation driven by polling.
// Spurious polls must be tolerated: a future may be polled even though its
// waker has not fired.
type Future interface {
	Poll(w Waker) Poll
}

// FutureFunc adapts a poll function to the Future interface.
type FutureFunc func(w Waker) Poll

// Poll calls f.
func (f FutureFunc) Poll(w Waker) Poll { return f(w) }

// Canceler is implemented by futures that hold resources which must be
// released when the executor drops them without completing them.
type Canceler interface {
	Cancel()
}

// WakerSet collects wakers and fires all of them at once.
// The zero value is ready to use. It is not safe for concurrent use on its own.
type WakerSet struct {
	wakers []Waker
}

// Add registers w.
func (s *WakerSet) Add(w Waker) {
	if w != nil {
		s.wakers = append(s.wakers, w)
	}
}

// Take removes and returns the registered wakers.
func (s *WakerSet) Take() []Waker {
	ws := s.wakers
	s.wakers = nil
	return ws
}

// WakeAll fires and clears every registered waker.
func WakeAll(wakers []Waker) {
	for _, w := range wakers {
		w.Wake()
	}
}
