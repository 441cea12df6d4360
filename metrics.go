package kernelsim

import "sync/atomic"

type opCounter struct {
	ops  atomic.Uint64
	errs atomic.Uint64
}

// Stats accumulates atomic-counter metrics and a coarse latency histogram
// across every primitive call made through a Simulator. All methods are
// safe for concurrent use even though the underlying scheduler is not,
// since a caller may want to read metrics from a different goroutine than
// the one driving the simulation (e.g. a status endpoint).
type Stats struct {
	create, fork, kill, exit, quantum opCounter
	send, receive, reply              opCounter
	newSem, semP, semV                opCounter
	dispatchOps                       atomic.Uint64

	totalLatencyNs atomic.Uint64
	opCount        atomic.Uint64
	latencyBuckets [8]atomic.Uint64 // upper bounds: 1us,4us,16us,64us,256us,1ms,4ms,+Inf
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) counterFor(op string) *opCounter {
	switch op {
	case "create":
		return &s.create
	case "fork":
		return &s.fork
	case "kill":
		return &s.kill
	case "exit_proc":
		return &s.exit
	case "quantum":
		return &s.quantum
	case "send":
		return &s.send
	case "receive":
		return &s.receive
	case "reply":
		return &s.reply
	case "new_sem":
		return &s.newSem
	case "sem_p":
		return &s.semP
	case "sem_v":
		return &s.semV
	default:
		return nil
	}
}

// RecordOp tallies one call to op, its latency, and whether it failed.
func (s *Stats) RecordOp(op string, latencyNs uint64, err error) {
	if c := s.counterFor(op); c != nil {
		c.ops.Add(1)
		if err != nil {
			c.errs.Add(1)
		}
	}
	s.totalLatencyNs.Add(latencyNs)
	s.opCount.Add(1)
	s.recordLatency(latencyNs)
}

func (s *Stats) recordLatency(latencyNs uint64) {
	us := latencyNs / 1000
	bucket, threshold := 0, uint64(1)
	for bucket < len(s.latencyBuckets)-1 && us >= threshold {
		threshold *= 4
		bucket++
	}
	s.latencyBuckets[bucket].Add(1)
}

// IncrementDispatch tallies one scheduling dispatch.
func (s *Stats) IncrementDispatch() {
	s.dispatchOps.Add(1)
}

// StatsSnapshot is a point-in-time read of Stats.
type StatsSnapshot struct {
	CreateOps, CreateErrs   uint64
	ForkOps, ForkErrs       uint64
	KillOps, KillErrs       uint64
	ExitOps, ExitErrs       uint64
	QuantumOps, QuantumErrs uint64
	SendOps, SendErrs       uint64
	ReceiveOps, ReceiveErrs uint64
	ReplyOps, ReplyErrs     uint64
	NewSemOps, NewSemErrs   uint64
	SemPOps, SemPErrs       uint64
	SemVOps, SemVErrs       uint64
	DispatchOps             uint64
	TotalLatencyNs, OpCount uint64
	LatencyBuckets          [8]uint64
}

// Snapshot reads every counter into a StatsSnapshot.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		CreateOps: s.create.ops.Load(), CreateErrs: s.create.errs.Load(),
		ForkOps: s.fork.ops.Load(), ForkErrs: s.fork.errs.Load(),
		KillOps: s.kill.ops.Load(), KillErrs: s.kill.errs.Load(),
		ExitOps: s.exit.ops.Load(), ExitErrs: s.exit.errs.Load(),
		QuantumOps: s.quantum.ops.Load(), QuantumErrs: s.quantum.errs.Load(),
		SendOps: s.send.ops.Load(), SendErrs: s.send.errs.Load(),
		ReceiveOps: s.receive.ops.Load(), ReceiveErrs: s.receive.errs.Load(),
		ReplyOps: s.reply.ops.Load(), ReplyErrs: s.reply.errs.Load(),
		NewSemOps: s.newSem.ops.Load(), NewSemErrs: s.newSem.errs.Load(),
		SemPOps: s.semP.ops.Load(), SemPErrs: s.semP.errs.Load(),
		SemVOps: s.semV.ops.Load(), SemVErrs: s.semV.errs.Load(),
		DispatchOps:    s.dispatchOps.Load(),
		TotalLatencyNs: s.totalLatencyNs.Load(),
		OpCount:        s.opCount.Load(),
	}
	for i := range s.latencyBuckets {
		snap.LatencyBuckets[i] = s.latencyBuckets[i].Load()
	}
	return snap
}
