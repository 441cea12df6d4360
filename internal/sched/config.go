package sched

import "github.com/noahkrem/kernelsim/internal/constants"

// Config sizes the pools and queue set a Scheduler builds. NumReadyList and
// NumWaitingList are structural: the priority model assumes exactly three
// ready bands and the IPC model exactly two wait queues, so NewScheduler
// validates them rather than letting them vary. NumSemaphore, by contrast,
// is a genuine tuning knob.
type Config struct {
	ListMaxNumNodes int `toml:"list_max_num_nodes"`
	ListMaxNumHeads int `toml:"list_max_num_heads"`
	NumSemaphore    int `toml:"num_semaphore"`
	NumReadyList    int `toml:"num_ready_list"`
	NumWaitingList  int `toml:"num_waiting_list"`
}

// DefaultConfig returns the capacities named in the configuration constants.
func DefaultConfig() Config {
	return Config{
		ListMaxNumNodes: constants.ListMaxNumNodes,
		ListMaxNumHeads: constants.ListMaxNumHeads,
		NumSemaphore:    constants.NumSemaphore,
		NumReadyList:    constants.NumReadyList,
		NumWaitingList:  constants.NumWaitingList,
	}
}
