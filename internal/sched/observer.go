package sched

import "github.com/noahkrem/kernelsim/internal/proc"

// Observer receives scheduling notifications as the core mutates the
// queue set, letting a caller track dispatch/block/unblock/message events
// without parsing log lines.
type Observer interface {
	ObserveDispatch(pid int)
	ObserveBlock(pid int, reason proc.WaitReason)
	ObserveUnblock(pid int)
	ObserveMessage(kind string, from, to int, text string)
}

// NoOpObserver discards every notification. It is the default when a
// Scheduler is built without an explicit Observer.
type NoOpObserver struct{}

func (NoOpObserver) ObserveDispatch(pid int)                            {}
func (NoOpObserver) ObserveBlock(pid int, reason proc.WaitReason)        {}
func (NoOpObserver) ObserveUnblock(pid int)                             {}
func (NoOpObserver) ObserveMessage(kind string, from, to int, text string) {}
