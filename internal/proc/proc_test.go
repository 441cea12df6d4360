package proc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocAssignsMonotonicPidsStartingAtOne(t *testing.T) {
	table := NewTable()
	p1 := table.Alloc(PriorityNormal)
	p2 := table.Alloc(PriorityHigh)

	require.Equal(t, 1, p1.Pid)
	require.Equal(t, 2, p2.Pid)
	require.Equal(t, StateReady, p1.State)
	require.Equal(t, WaitNone, p1.WaitReason)
	require.Equal(t, -1, p1.WaitSemID)
}

func TestInsertInitReservesPidZero(t *testing.T) {
	table := NewTable()
	init := &PCB{Pid: 0, Priority: PriorityInit, State: StateRunning, WaitSemID: -1}
	table.InsertInit(init)

	found, ok := table.Find(0)
	require.True(t, ok)
	require.Same(t, init, found)

	p1 := table.Alloc(PriorityLow)
	require.Equal(t, 1, p1.Pid, "init registration must not consume the pid counter")
}

func TestFindMissingPid(t *testing.T) {
	table := NewTable()
	_, ok := table.Find(42)
	require.False(t, ok)
}

func TestReleaseRemovesFromTable(t *testing.T) {
	table := NewTable()
	p := table.Alloc(PriorityNormal)
	table.Release(p.Pid)

	_, ok := table.Find(p.Pid)
	require.False(t, ok)
	require.Equal(t, 0, table.Count())
}

func TestAllReturnsEveryLivePid(t *testing.T) {
	table := NewTable()
	p1 := table.Alloc(PriorityHigh)
	p2 := table.Alloc(PriorityLow)

	pids := table.All()
	require.ElementsMatch(t, []int{p1.Pid, p2.Pid}, pids)
}

func TestPriorityAndStateStringers(t *testing.T) {
	require.Equal(t, "high", PriorityHigh.String())
	require.Equal(t, "init", PriorityInit.String())
	require.Equal(t, "running", StateRunning.String())
	require.Equal(t, "blocked", StateBlocked.String())
	require.Equal(t, "awaiting_semaphore", WaitAwaitingSemaphore.String())
}
