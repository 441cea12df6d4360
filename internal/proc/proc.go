// Package proc defines the process control block and the process table
// that allocates and looks them up, grounded on the original source's
// PCB.h/PCB.c and refined per the design notes recorded there: every PCB
// carries a Residence tag naming its exact current queue membership, so
// callers never need to search every queue to find where a pid lives.
package proc

// Priority orders the three ready queues. PriorityInit is reserved for the
// singleton idle process and is never requested by create().
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityNormal
	PriorityLow
	PriorityInit
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	case PriorityInit:
		return "init"
	default:
		return "unknown"
	}
}

// State is the coarse scheduling state of a PCB.
type State int

const (
	StateRunning State = iota
	StateReady
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateReady:
		return "ready"
	case StateBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// WaitReason is defined only when State == StateBlocked.
type WaitReason int

const (
	WaitNone WaitReason = iota
	WaitAwaitingReceive
	WaitAwaitingReply
	WaitAwaitingSemaphore
)

func (w WaitReason) String() string {
	switch w {
	case WaitNone:
		return "none"
	case WaitAwaitingReceive:
		return "awaiting_receive"
	case WaitAwaitingReply:
		return "awaiting_reply"
	case WaitAwaitingSemaphore:
		return "awaiting_semaphore"
	default:
		return "unknown"
	}
}

// Message is a delivered-but-unconsumed send or reply, owned by the PCB
// whose Inbox or Reply slot holds it.
type Message struct {
	Source int
	Text   string
}

// ResidenceKind names which collection, if any, currently holds a PCB.
type ResidenceKind int

const (
	// ResidenceNone marks the init sentinel: never enqueued anywhere.
	ResidenceNone ResidenceKind = iota
	ResidenceCurrent
	ResidenceReady
	ResidenceWaitSend
	ResidenceWaitReceive
	ResidenceWaitSem
)

// Residence is the tagged union recording a PCB's exact current queue
// membership, so a primitive can detach a PCB without scanning every
// queue looking for it.
type Residence struct {
	Kind     ResidenceKind
	Priority Priority // valid iff Kind == ResidenceReady
	SemID    int      // valid iff Kind == ResidenceWaitSem
}

// PCB is a process control block: the per-process bookkeeping record the
// simulator schedules and queues.
type PCB struct {
	Pid        int
	Priority   Priority
	State      State
	WaitReason WaitReason
	WaitSemID  int // valid iff WaitReason == WaitAwaitingSemaphore
	Inbox      *Message
	Reply      *Message
	Residence  Residence
}

// Table allocates and frees PCBs, assigning monotonically increasing pids
// starting at 1 (pid 0 is reserved for the singleton init process).
type Table struct {
	procs   map[int]*PCB
	nextPid int
}

// NewTable creates an empty process table.
func NewTable() *Table {
	return &Table{procs: make(map[int]*PCB), nextPid: 1}
}

// Alloc creates a fresh PCB with the next monotonic pid, state ready, and
// empty message slots.
func (t *Table) Alloc(priority Priority) *PCB {
	p := &PCB{
		Pid:        t.nextPid,
		Priority:   priority,
		State:      StateReady,
		WaitReason: WaitNone,
		WaitSemID:  -1,
	}
	t.procs[p.Pid] = p
	t.nextPid++
	return p
}

// InsertInit registers the singleton init PCB (pid 0) without consuming a
// pid from the monotonic counter.
func (t *Table) InsertInit(p *PCB) {
	t.procs[p.Pid] = p
}

// Find looks up a PCB by pid, including the init process and the current
// running process.
func (t *Table) Find(pid int) (*PCB, bool) {
	p, ok := t.procs[pid]
	return p, ok
}

// Release frees the PCB's table entry. Callers must not release pid 0.
func (t *Table) Release(pid int) {
	delete(t.procs, pid)
}

// Count returns the number of live PCBs, including init.
func (t *Table) Count() int {
	return len(t.procs)
}

// All returns every live PCB's pid, for introspection walks that need a
// stable snapshot of table membership.
func (t *Table) All() []int {
	pids := make([]int, 0, len(t.procs))
	for pid := range t.procs {
		pids = append(pids, pid)
	}
	return pids
}
