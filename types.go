package kernelsim

import (
	"github.com/noahkrem/kernelsim/internal/proc"
	"github.com/noahkrem/kernelsim/internal/sched"
)

// Priority orders the three ready queues. PriorityInit is reserved for the
// singleton idle process and is never a valid argument to Create.
type Priority = proc.Priority

const (
	PriorityHigh   = proc.PriorityHigh
	PriorityNormal = proc.PriorityNormal
	PriorityLow    = proc.PriorityLow
	PriorityInit   = proc.PriorityInit
)

// State is the coarse scheduling state of a process.
type State = proc.State

const (
	StateRunning = proc.StateRunning
	StateReady   = proc.StateReady
	StateBlocked = proc.StateBlocked
)

// WaitReason names why a blocked process is blocked.
type WaitReason = proc.WaitReason

const (
	WaitNone              = proc.WaitNone
	WaitAwaitingReceive   = proc.WaitAwaitingReceive
	WaitAwaitingReply     = proc.WaitAwaitingReply
	WaitAwaitingSemaphore = proc.WaitAwaitingSemaphore
)

// Message is a delivered-but-unconsumed send or reply.
type Message = proc.Message

// ProcInfo is a point-in-time snapshot of one process, as returned by
// Simulator.ProcInfo and embedded throughout TotalInfo.
type ProcInfo = sched.ProcInfoResult

// TotalInfo is a snapshot of the current process plus every queue, as
// returned by Simulator.TotalInfo.
type TotalInfo = sched.TotalInfoResult

// Observer receives scheduling notifications as the simulator mutates its
// queue set.
type Observer = sched.Observer

// NoOpObserver discards every notification. It is the default when a
// Simulator is built without an explicit Observer.
type NoOpObserver = sched.NoOpObserver
