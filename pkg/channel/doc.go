// Package channel provides an unbounded, mutex-guarded FIFO queue split into a
// Sender and a Receiver half.
//
// Unlike Go channels, sends never block and the receiving side is polled rather
// than waited on, which is what a cooperative executor needs: a waker may push a
// task id from any goroutine (including the one currently polling) without risking
// a deadlock, and the executor drains whatever is queued when it gets around to it.
//
// Basic usage:
//
//	tx, rx := channel.New[int]()
//	tx.Send(1)
//	tx.Send(2)
//	items := rx.Drain() // [1 2]
//
// Closing the receiver tells producers that nobody is listening anymore:
//
//	rx.Close()
//	ok := tx.Send(3) // false
//
// A receiver can register a notify hook that runs after every successful send.
// The hook runs on the sending goroutine, outside the queue lock.
package channel
