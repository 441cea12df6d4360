// Package sched implements the queue set, the scheduler, the IPC
// subsystem, the semaphore subsystem, and the process lifecycle
// primitives — the core state machine of the simulator. It is grounded on
// the original source's PCB.c, refined per the design notes recorded
// there: every PCB's Residence tag tells a primitive exactly which queue
// to detach it from, so nothing here ever scans every queue hunting for a
// pid.
package sched

import (
	"fmt"

	"github.com/noahkrem/kernelsim/internal/dlist"
	"github.com/noahkrem/kernelsim/internal/kerrors"
	"github.com/noahkrem/kernelsim/internal/logging"
	"github.com/noahkrem/kernelsim/internal/proc"
)

// Semaphore is one of the NumSemaphore counting-semaphore slots.
type Semaphore struct {
	Initialized bool
	Value       int
	Wait        *dlist.List[*proc.PCB]
}

// Scheduler owns the queue set — the ready lists, the IPC wait lists, the
// semaphore table, the current slot, and the init sentinel — and
// implements every primitive operation over it.
type Scheduler struct {
	cfg   Config
	pool  *dlist.Pool[*proc.PCB]
	table *proc.Table

	ready       []*dlist.List[*proc.PCB]
	waitSend    *dlist.List[*proc.PCB]
	waitReceive *dlist.List[*proc.PCB]
	sems        []*Semaphore

	current *proc.PCB
	init    *proc.PCB

	logger *logging.Logger
	obs    Observer
}

// NewScheduler builds a Scheduler from cfg, with the init process
// installed as the singleton current process. logger and obs may be nil;
// they default to logging.Default() and NoOpObserver.
func NewScheduler(cfg Config, logger *logging.Logger, obs Observer) (*Scheduler, error) {
	if cfg.NumReadyList != 3 {
		return nil, kerrors.New("new_scheduler", kerrors.ErrCodeInvalidArgument, "the priority model requires exactly 3 ready lists")
	}
	if cfg.NumWaitingList != 2 {
		return nil, kerrors.New("new_scheduler", kerrors.ErrCodeInvalidArgument, "the IPC model requires exactly 2 waiting lists")
	}
	if cfg.NumSemaphore < 1 {
		return nil, kerrors.New("new_scheduler", kerrors.ErrCodeInvalidArgument, "at least one semaphore slot is required")
	}
	// Every base queue (3 ready + 2 IPC wait + N semaphore wait) needs one
	// header; fail fast with a clear message rather than a cryptic nil List.
	headsNeeded := cfg.NumReadyList + cfg.NumWaitingList + cfg.NumSemaphore
	if cfg.ListMaxNumHeads < headsNeeded {
		return nil, kerrors.New("new_scheduler", kerrors.ErrCodeResourceExhausted,
			fmt.Sprintf("list header pool (%d) cannot hold the %d base queues", cfg.ListMaxNumHeads, headsNeeded))
	}

	if logger == nil {
		logger = logging.Default()
	}
	if obs == nil {
		obs = NoOpObserver{}
	}

	pool := dlist.NewPool[*proc.PCB](cfg.ListMaxNumNodes, cfg.ListMaxNumHeads)

	s := &Scheduler{
		cfg:         cfg,
		pool:        pool,
		table:       proc.NewTable(),
		ready:       make([]*dlist.List[*proc.PCB], cfg.NumReadyList),
		waitSend:    dlist.Create(pool),
		waitReceive: dlist.Create(pool),
		sems:        make([]*Semaphore, cfg.NumSemaphore),
		logger:      logger,
		obs:         obs,
	}
	for i := range s.ready {
		s.ready[i] = dlist.Create(pool)
	}
	for i := range s.sems {
		s.sems[i] = &Semaphore{Wait: dlist.Create(pool)}
	}

	init := &proc.PCB{
		Pid:        0,
		Priority:   proc.PriorityInit,
		State:      proc.StateRunning,
		WaitReason: proc.WaitNone,
		WaitSemID:  -1,
		Residence:  proc.Residence{Kind: proc.ResidenceCurrent},
	}
	s.table.InsertInit(init)
	s.init = init
	s.current = init

	return s, nil
}

// CurrentPid returns the pid of the process presently running.
func (s *Scheduler) CurrentPid() int {
	return s.current.Pid
}

func resetToStart[T any](l *dlist.List[T]) {
	l.First()
	l.Prev()
}

func matchPid(item *proc.PCB, arg any) bool {
	return item.Pid == arg.(int)
}

func detachPid(list *dlist.List[*proc.PCB], pid int) (*proc.PCB, bool) {
	resetToStart(list)
	if _, ok := dlist.Search(list, matchPid, pid); !ok {
		return nil, false
	}
	return list.Remove()
}

func (s *Scheduler) notifyDispatch(pid int) {
	s.obs.ObserveDispatch(pid)
	s.logger.Infof("dispatch: pid %d now running", pid)
}

func (s *Scheduler) notifyBlock(pid int, reason proc.WaitReason) {
	s.obs.ObserveBlock(pid, reason)
	s.logger.Infof("block: pid %d %s", pid, reason)
}

func (s *Scheduler) notifyUnblock(pid int) {
	s.obs.ObserveUnblock(pid)
	s.logger.Infof("unblock: pid %d now ready", pid)
}

func (s *Scheduler) notifyMessage(kind string, from, to int, text string) {
	s.obs.ObserveMessage(kind, from, to, text)
	s.logger.Debugf("%s: from=%d to=%d text=%q", kind, from, to, text)
}

// deliverPendingReply prints (via notifyMessage) and clears a dispatched
// PCB's pending reply, per the scheduler's dispatching rule.
func (s *Scheduler) deliverPendingReply(p *proc.PCB) {
	if p.Reply == nil {
		return
	}
	msg := p.Reply
	p.Reply = nil
	s.notifyMessage("reply", msg.Source, p.Pid, msg.Text)
}

// nextProcess pops the head of the highest-priority non-empty ready list,
// or falls back to init if all three are empty.
func (s *Scheduler) nextProcess() *proc.PCB {
	for _, rl := range s.ready {
		if rl.Count() == 0 {
			continue
		}
		rl.First()
		p, _ := rl.Remove()
		p.State = proc.StateRunning
		p.Residence = proc.Residence{Kind: proc.ResidenceCurrent}
		s.deliverPendingReply(p)
		return p
	}
	s.init.State = proc.StateRunning
	s.init.Residence = proc.Residence{Kind: proc.ResidenceCurrent}
	return s.init
}

func (s *Scheduler) dispatch() {
	s.current = s.nextProcess()
	s.notifyDispatch(s.current.Pid)
}

// enqueueReady must never be called with priority == PriorityInit: s.ready
// only has NumReadyList slots (high/normal/low) and init is never enqueued
// on any wait or ready queue.
func (s *Scheduler) enqueueReady(p *proc.PCB, priority proc.Priority) {
	s.ready[priority].Append(p)
	p.State = proc.StateReady
	p.WaitReason = proc.WaitNone
	p.Residence = proc.Residence{Kind: proc.ResidenceReady, Priority: priority}
}

func (s *Scheduler) blockOn(list *dlist.List[*proc.PCB], p *proc.PCB, reason proc.WaitReason, residence proc.Residence) {
	list.Append(p)
	p.State = proc.StateBlocked
	p.WaitReason = reason
	p.Residence = residence
	s.notifyBlock(p.Pid, reason)
}

// detachFromResidence removes p from whichever queue its Residence tag
// names. Detaching from a semaphore wait queue bumps that semaphore's
// value, per the kill-in-a-wait-queue design decision.
func (s *Scheduler) detachFromResidence(p *proc.PCB) {
	switch p.Residence.Kind {
	case proc.ResidenceReady:
		detachPid(s.ready[p.Residence.Priority], p.Pid)
	case proc.ResidenceWaitSend:
		detachPid(s.waitSend, p.Pid)
	case proc.ResidenceWaitReceive:
		detachPid(s.waitReceive, p.Pid)
	case proc.ResidenceWaitSem:
		sem := s.sems[p.Residence.SemID]
		detachPid(sem.Wait, p.Pid)
		sem.Value++
	}
	p.Residence = proc.Residence{Kind: proc.ResidenceNone}
}

func (s *Scheduler) releasePCB(p *proc.PCB) {
	p.Inbox = nil
	p.Reply = nil
	p.WaitReason = proc.WaitNone
	p.Residence = proc.Residence{Kind: proc.ResidenceNone}
	s.table.Release(p.Pid)
}

// Create allocates a PCB at priority and either preempts the idle init
// process or enqueues it on its priority's ready list.
func (s *Scheduler) Create(priority proc.Priority) (int, error) {
	const op = "create"
	if priority != proc.PriorityHigh && priority != proc.PriorityNormal && priority != proc.PriorityLow {
		return 0, kerrors.New(op, kerrors.ErrCodeInvalidArgument, "priority out of range")
	}

	preempting := s.current.Pid == s.init.Pid
	if !preempting && !s.pool.HasNodeCapacity() {
		return 0, kerrors.New(op, kerrors.ErrCodeResourceExhausted, "list node pool exhausted")
	}

	pcb := s.table.Alloc(priority)
	if preempting {
		s.init.State = proc.StateReady
		pcb.State = proc.StateRunning
		pcb.Residence = proc.Residence{Kind: proc.ResidenceCurrent}
		s.current = pcb
		s.logger.Infof("%s: pid %d preempts init, now running", op, pcb.Pid)
		s.notifyDispatch(pcb.Pid)
	} else {
		s.enqueueReady(pcb, priority)
		s.logger.Infof("%s: pid %d ready on priority %s", op, pcb.Pid, priority)
	}
	return pcb.Pid, nil
}

// Fork spawns a twin of the current process at the same priority, ready
// to run. The current process may not be init.
func (s *Scheduler) Fork() (int, error) {
	const op = "fork"
	if s.current.Pid == s.init.Pid {
		return 0, kerrors.NewProc(op, s.current.Pid, kerrors.ErrCodePrecondition, "init cannot fork")
	}
	if !s.pool.HasNodeCapacity() {
		return 0, kerrors.New(op, kerrors.ErrCodeResourceExhausted, "list node pool exhausted")
	}
	twin := s.table.Alloc(s.current.Priority)
	s.enqueueReady(twin, twin.Priority)
	s.logger.Infof("%s: pid %d spawned from pid %d, ready on priority %s", op, twin.Pid, s.current.Pid, twin.Priority)
	return twin.Pid, nil
}

// kill is the shared implementation behind Kill and ExitProc, parameterized
// by the operation name so log lines and errors attribute correctly.
func (s *Scheduler) kill(op string, pid int) error {
	if pid == s.init.Pid {
		return kerrors.NewProc(op, pid, kerrors.ErrCodePrecondition, "cannot kill init")
	}
	target, ok := s.table.Find(pid)
	if !ok {
		return kerrors.NewProc(op, pid, kerrors.ErrCodeNotFound, "no such pid")
	}

	wasCurrent := target.Pid == s.current.Pid
	if !wasCurrent {
		s.detachFromResidence(target)
	}
	s.releasePCB(target)
	if wasCurrent {
		s.dispatch()
	}
	s.logger.Infof("%s: pid %d released", op, pid)
	return nil
}

// Kill removes and frees the PCB named by pid, wherever it resides.
func (s *Scheduler) Kill(pid int) error {
	return s.kill("kill", pid)
}

// ExitProc is equivalent to Kill(current pid). Disallowed if current is
// init.
func (s *Scheduler) ExitProc() error {
	const op = "exit_proc"
	if s.current.Pid == s.init.Pid {
		return kerrors.NewProc(op, s.current.Pid, kerrors.ErrCodePrecondition, "init cannot exit")
	}
	return s.kill(op, s.current.Pid)
}

// Quantum requeues the current process at the tail of its priority ready
// list (a no-op for init) and dispatches.
func (s *Scheduler) Quantum() error {
	const op = "quantum"
	if s.current.Pid == s.init.Pid {
		s.logger.Debugf("%s: init has no quantum to yield", op)
		return nil
	}
	if !s.pool.HasNodeCapacity() {
		return kerrors.New(op, kerrors.ErrCodeResourceExhausted, "list node pool exhausted")
	}
	expired := s.current
	s.enqueueReady(expired, expired.Priority)
	s.logger.Infof("%s: pid %d requeued on priority %s", op, expired.Pid, expired.Priority)
	s.dispatch()
	return nil
}

// Send deposits msg into target's inbox and blocks current awaiting a
// reply, dispatching the next runnable process.
func (s *Scheduler) Send(targetPid int, text string) error {
	const op = "send"
	if targetPid == s.current.Pid {
		return kerrors.NewProc(op, targetPid, kerrors.ErrCodePrecondition, "cannot send to self")
	}
	target, ok := s.table.Find(targetPid)
	if !ok {
		return kerrors.NewProc(op, targetPid, kerrors.ErrCodeNotFound, "no such pid")
	}
	if target.Inbox != nil {
		return kerrors.NewProc(op, targetPid, kerrors.ErrCodePrecondition, "target inbox occupied")
	}
	if s.current.Pid == s.init.Pid {
		if target.State != proc.StateBlocked || target.WaitReason != proc.WaitAwaitingReceive {
			return kerrors.NewProc(op, targetPid, kerrors.ErrCodePrecondition, "init must not block: target is not waiting on receive")
		}
	}
	if s.current.Inbox != nil && s.current.Inbox.Source == targetPid {
		return kerrors.NewProc(op, targetPid, kerrors.ErrCodePrecondition, "send would cycle back to a pending inbox sender")
	}
	if !s.pool.HasNodeCapacity() {
		return kerrors.New(op, kerrors.ErrCodeResourceExhausted, "list node pool exhausted")
	}

	target.Inbox = &proc.Message{Source: s.current.Pid, Text: text}
	s.notifyMessage("send", s.current.Pid, targetPid, text)

	targetWasWaitingReceive := target.State == proc.StateBlocked && target.WaitReason == proc.WaitAwaitingReceive
	if targetWasWaitingReceive {
		s.detachFromResidence(target)
	}

	// init must never be enqueued on any wait queue. When init is the
	// sender, the precondition above already guarantees the target was
	// waiting on a receive, so hand the CPU straight to it instead of
	// readying it and blocking init.
	if s.current.Pid == s.init.Pid {
		target.State = proc.StateRunning
		target.Residence = proc.Residence{Kind: proc.ResidenceCurrent}
		s.deliverPendingReply(target)
		s.current = target
		s.notifyUnblock(target.Pid)
		s.notifyDispatch(target.Pid)
		return nil
	}

	if targetWasWaitingReceive {
		s.enqueueReady(target, target.Priority)
		s.notifyUnblock(target.Pid)
	}

	sender := s.current
	s.blockOn(s.waitSend, sender, proc.WaitAwaitingReply, proc.Residence{Kind: proc.ResidenceWaitSend})
	s.dispatch()
	return nil
}

// Receive consumes a pending inbox message if one is present; otherwise
// it blocks current awaiting a send. The init process may only call
// Receive when it already has an inbox message pending.
func (s *Scheduler) Receive() (*proc.Message, error) {
	const op = "receive"
	if s.current.Pid == s.init.Pid && s.current.Inbox == nil {
		return nil, kerrors.NewProc(op, s.current.Pid, kerrors.ErrCodePrecondition, "init must not block")
	}
	if s.current.Inbox != nil {
		msg := s.current.Inbox
		s.current.Inbox = nil
		s.notifyMessage(op, msg.Source, s.current.Pid, msg.Text)
		return msg, nil
	}
	if !s.pool.HasNodeCapacity() {
		return nil, kerrors.New(op, kerrors.ErrCodeResourceExhausted, "list node pool exhausted")
	}
	receiver := s.current
	s.blockOn(s.waitReceive, receiver, proc.WaitAwaitingReceive, proc.Residence{Kind: proc.ResidenceWaitReceive})
	s.dispatch()
	return nil, nil
}

// Reply deposits msg into target's reply slot and readies it. The reply
// is actually delivered to the target when it's next dispatched.
func (s *Scheduler) Reply(targetPid int, text string) error {
	const op = "reply"
	if targetPid == s.current.Pid {
		return kerrors.NewProc(op, targetPid, kerrors.ErrCodePrecondition, "cannot reply to self")
	}
	target, ok := s.table.Find(targetPid)
	if !ok {
		return kerrors.NewProc(op, targetPid, kerrors.ErrCodeNotFound, "no such pid")
	}
	if target.State != proc.StateBlocked || target.WaitReason != proc.WaitAwaitingReply {
		return kerrors.NewProc(op, targetPid, kerrors.ErrCodePrecondition, "target is not awaiting a reply")
	}
	if target.Reply != nil {
		return kerrors.NewProc(op, targetPid, kerrors.ErrCodePrecondition, "target reply slot occupied")
	}

	target.Reply = &proc.Message{Source: s.current.Pid, Text: text}
	s.detachFromResidence(target)
	s.enqueueReady(target, target.Priority)
	s.notifyUnblock(target.Pid)
	s.logger.Infof("%s: reply queued for pid %d, delivered at next dispatch", op, targetPid)
	return nil
}

func (s *Scheduler) semRef(op string, sid int) (*Semaphore, error) {
	if sid < 0 || sid >= len(s.sems) {
		return nil, kerrors.NewSem(op, sid, kerrors.ErrCodeInvalidArgument, "semaphore id out of range")
	}
	return s.sems[sid], nil
}

// NewSem initializes semaphore sid with value initValue.
func (s *Scheduler) NewSem(sid, initValue int) error {
	const op = "new_sem"
	sem, err := s.semRef(op, sid)
	if err != nil {
		return err
	}
	if sem.Initialized {
		return kerrors.NewSem(op, sid, kerrors.ErrCodeResourceExhausted, "semaphore already initialized")
	}
	if initValue < 0 {
		return kerrors.NewSem(op, sid, kerrors.ErrCodeInvalidArgument, "initial value must be non-negative")
	}
	sem.Initialized = true
	sem.Value = initValue
	s.logger.Infof("%s: sem %d initialized to %d", op, sid, initValue)
	return nil
}

// SemP is the classical P operation: decrement, blocking current if the
// semaphore goes negative. Init may never block.
func (s *Scheduler) SemP(sid int) error {
	const op = "sem_p"
	sem, err := s.semRef(op, sid)
	if err != nil {
		return err
	}
	if !sem.Initialized {
		return kerrors.NewSem(op, sid, kerrors.ErrCodePrecondition, "semaphore uninitialized")
	}
	if s.current.Pid == s.init.Pid {
		return kerrors.NewProc(op, s.current.Pid, kerrors.ErrCodePrecondition, "init cannot block on a semaphore")
	}
	if sem.Value > 0 {
		sem.Value--
		s.logger.Infof("%s: sem %d decremented to %d, pid %d continues", op, sid, sem.Value, s.current.Pid)
		return nil
	}
	if !s.pool.HasNodeCapacity() {
		return kerrors.New(op, kerrors.ErrCodeResourceExhausted, "list node pool exhausted")
	}
	sem.Value--
	waiter := s.current
	s.blockOn(sem.Wait, waiter, proc.WaitAwaitingSemaphore, proc.Residence{Kind: proc.ResidenceWaitSem, SemID: sid})
	waiter.WaitSemID = sid
	s.dispatch()
	return nil
}

// SemV is the classical V operation: increment, unblocking one waiter if
// the semaphore's value is still non-positive after the increment.
func (s *Scheduler) SemV(sid int) error {
	const op = "sem_v"
	sem, err := s.semRef(op, sid)
	if err != nil {
		return err
	}
	if !sem.Initialized {
		return kerrors.NewSem(op, sid, kerrors.ErrCodePrecondition, "semaphore uninitialized")
	}
	sem.Value++
	if sem.Value <= 0 {
		waiter, ok := sem.Wait.First()
		if ok {
			sem.Wait.Remove()
			waiter.WaitSemID = -1
			if s.current.Pid == s.init.Pid {
				s.init.State = proc.StateReady
				waiter.State = proc.StateRunning
				waiter.WaitReason = proc.WaitNone
				waiter.Residence = proc.Residence{Kind: proc.ResidenceCurrent}
				s.current = waiter
				s.notifyDispatch(waiter.Pid)
			} else {
				s.enqueueReady(waiter, waiter.Priority)
			}
			s.notifyUnblock(waiter.Pid)
		}
	}
	s.logger.Infof("%s: sem %d incremented to %d", op, sid, sem.Value)
	return nil
}

// ProcInfoResult is a point-in-time snapshot of a PCB for introspection.
type ProcInfoResult struct {
	Pid        int
	Priority   proc.Priority
	State      proc.State
	WaitReason proc.WaitReason
	Inbox      *proc.Message
	Reply      *proc.Message
}

func snapshotPCB(p *proc.PCB) ProcInfoResult {
	return ProcInfoResult{
		Pid:        p.Pid,
		Priority:   p.Priority,
		State:      p.State,
		WaitReason: p.WaitReason,
		Inbox:      p.Inbox,
		Reply:      p.Reply,
	}
}

// ProcInfo looks up pid, including init and the current running process.
func (s *Scheduler) ProcInfo(pid int) (*ProcInfoResult, error) {
	const op = "procinfo"
	p, ok := s.table.Find(pid)
	if !ok {
		return nil, kerrors.NewProc(op, pid, kerrors.ErrCodeNotFound, "no such pid")
	}
	info := snapshotPCB(p)
	return &info, nil
}

// TotalInfoResult is a snapshot of the current process plus every queue.
type TotalInfoResult struct {
	Current     ProcInfoResult
	Ready       [][]ProcInfoResult
	WaitSend    []ProcInfoResult
	WaitReceive []ProcInfoResult
	Semaphores  map[int][]ProcInfoResult
}

// snapshotList walks list non-destructively from the head, leaving the
// cursor at after-end, and returns every element's snapshot in order.
func snapshotList(l *dlist.List[*proc.PCB]) []ProcInfoResult {
	out := make([]ProcInfoResult, 0, l.Count())
	resetToStart(l)
	for p, ok := l.Next(); ok; p, ok = l.Next() {
		out = append(out, snapshotPCB(p))
	}
	return out
}

// TotalInfo emits current, then every ready queue, every IPC wait queue,
// and every initialized semaphore's wait queue, in order.
func (s *Scheduler) TotalInfo() *TotalInfoResult {
	result := &TotalInfoResult{
		Current:    snapshotPCB(s.current),
		Ready:      make([][]ProcInfoResult, len(s.ready)),
		Semaphores: make(map[int][]ProcInfoResult),
	}
	for i, rl := range s.ready {
		result.Ready[i] = snapshotList(rl)
	}
	result.WaitSend = snapshotList(s.waitSend)
	result.WaitReceive = snapshotList(s.waitReceive)
	for sid, sem := range s.sems {
		if sem.Initialized {
			result.Semaphores[sid] = snapshotList(sem.Wait)
		}
	}
	return result
}
