package kernelsim

import (
	"time"

	"github.com/noahkrem/kernelsim/internal/logging"
	"github.com/noahkrem/kernelsim/internal/sched"
)

// Simulator is the single stateful instance of the process-control
// simulator: one scheduler, one metrics surface, one logger. All global
// state lives here; running two simulations in parallel means building
// two Simulators, never sharing one.
type Simulator struct {
	core   *sched.Scheduler
	stats  *Stats
	logger *logging.Logger
}

// statsObserver forwards every scheduling notification to a caller's
// Observer while separately tallying dispatch counts into Stats.
type statsObserver struct {
	stats *Stats
	inner Observer
}

func (o *statsObserver) ObserveDispatch(pid int) {
	o.stats.IncrementDispatch()
	o.inner.ObserveDispatch(pid)
}

func (o *statsObserver) ObserveBlock(pid int, reason WaitReason) {
	o.inner.ObserveBlock(pid, reason)
}

func (o *statsObserver) ObserveUnblock(pid int) {
	o.inner.ObserveUnblock(pid)
}

func (o *statsObserver) ObserveMessage(kind string, from, to int, text string) {
	o.inner.ObserveMessage(kind, from, to, text)
}

// NewSimulator builds a Simulator from cfg. logger defaults to
// logging.Default() and obs to NoOpObserver when nil.
func NewSimulator(cfg Config, logger *logging.Logger, obs Observer) (*Simulator, error) {
	if obs == nil {
		obs = NoOpObserver{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	stats := NewStats()
	core, err := sched.NewScheduler(cfg, logger, &statsObserver{stats: stats, inner: obs})
	if err != nil {
		return nil, err
	}
	return &Simulator{core: core, stats: stats, logger: logger}, nil
}

// Stats returns a snapshot of the simulator's metrics.
func (s *Simulator) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

// CurrentPid returns the pid of the process presently running.
func (s *Simulator) CurrentPid() int {
	return s.core.CurrentPid()
}

func timed[T any](s *Simulator, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	s.stats.RecordOp(op, uint64(time.Since(start).Nanoseconds()), err)
	return result, err
}

func timedErr(s *Simulator, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.stats.RecordOp(op, uint64(time.Since(start).Nanoseconds()), err)
	return err
}

// Create allocates a process at priority and either preempts the idle
// init process or enqueues it on its priority's ready queue.
func (s *Simulator) Create(priority Priority) (int, error) {
	return timed(s, "create", func() (int, error) { return s.core.Create(priority) })
}

// Fork spawns a twin of the current process at the same priority.
func (s *Simulator) Fork() (int, error) {
	return timed(s, "fork", func() (int, error) { return s.core.Fork() })
}

// Kill removes and frees the process named by pid, wherever it resides.
func (s *Simulator) Kill(pid int) error {
	return timedErr(s, "kill", func() error { return s.core.Kill(pid) })
}

// ExitProc is equivalent to Kill(CurrentPid()).
func (s *Simulator) ExitProc() error {
	return timedErr(s, "exit_proc", func() error { return s.core.ExitProc() })
}

// Quantum ends the current process's time slice.
func (s *Simulator) Quantum() error {
	return timedErr(s, "quantum", func() error { return s.core.Quantum() })
}

// Send deposits msg into target's inbox and blocks the current process
// awaiting a reply.
func (s *Simulator) Send(targetPid int, text string) error {
	return timedErr(s, "send", func() error { return s.core.Send(targetPid, text) })
}

// Receive consumes a pending inbox message, or blocks awaiting a send.
func (s *Simulator) Receive() (*Message, error) {
	return timed(s, "receive", func() (*Message, error) { return s.core.Receive() })
}

// Reply deposits msg into target's reply slot and readies it.
func (s *Simulator) Reply(targetPid int, text string) error {
	return timedErr(s, "reply", func() error { return s.core.Reply(targetPid, text) })
}

// NewSem initializes semaphore sid with value initValue.
func (s *Simulator) NewSem(sid, initValue int) error {
	return timedErr(s, "new_sem", func() error { return s.core.NewSem(sid, initValue) })
}

// SemP is the classical P (wait) operation.
func (s *Simulator) SemP(sid int) error {
	return timedErr(s, "sem_p", func() error { return s.core.SemP(sid) })
}

// SemV is the classical V (signal) operation.
func (s *Simulator) SemV(sid int) error {
	return timedErr(s, "sem_v", func() error { return s.core.SemV(sid) })
}

// ProcInfo looks up pid, including init and the current running process.
func (s *Simulator) ProcInfo(pid int) (*ProcInfo, error) {
	return s.core.ProcInfo(pid)
}

// TotalInfo snapshots the current process plus every queue.
func (s *Simulator) TotalInfo() *TotalInfo {
	return s.core.TotalInfo()
}
