package mux

// result is what an awaiter resolves with. Exactly one send ever happens on
// an awaiter's channel; value may legitimately be nil for a null/OK
// response, so err is the only field a caller should branch on.
type result struct {
	value any
	err   error
}

// awaiter is the one-shot completion primitive installed under a slot id.
// ch is buffered by one so the resolving side never blocks on a caller
// that has stopped waiting (e.g. after a context cancellation the spec
// says this engine does not implement, but a future caller-side timeout
// wrapper might).
type awaiter struct {
	ch      chan result
	spanPtr uint64
}

func newAwaiter() *awaiter {
	return &awaiter{ch: make(chan result, 1)}
}

func (a *awaiter) resolve(value any) {
	a.ch <- result{value: value}
}

func (a *awaiter) fail(err error) {
	a.ch <- result{err: err}
}
