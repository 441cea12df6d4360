package kernelsim

import (
	"bytes"

	"github.com/noahkrem/kernelsim/internal/logging"
)

// NewTestConfig returns a Config with small pool capacities, so tests that
// want to provoke ErrCodeResourceExhausted don't need to create thousands
// of processes first.
func NewTestConfig() Config {
	cfg := DefaultConfig()
	cfg.ListMaxNumNodes = 32
	cfg.ListMaxNumHeads = 16
	return cfg
}

// NewSimulatorForTest builds a Simulator from NewTestConfig, a silent
// logger, and a NoOpObserver, panicking on construction failure since the
// default test config is always valid — a caller that gets a panic here
// has passed a broken cfg override, not hit a runtime condition.
func NewSimulatorForTest() *Simulator {
	logger := logging.NewLogger(&logging.Config{Level: logging.LevelError, Output: &bytes.Buffer{}})
	sim, err := NewSimulator(NewTestConfig(), logger, NoOpObserver{})
	if err != nil {
		panic(err)
	}
	return sim
}

// NewSimulatorWithConfigForTest builds a Simulator from cfg with a silent
// logger and a NoOpObserver, for tests that need to override pool
// capacities or semaphore count.
func NewSimulatorWithConfigForTest(cfg Config) (*Simulator, error) {
	logger := logging.NewLogger(&logging.Config{Level: logging.LevelError, Output: &bytes.Buffer{}})
	return NewSimulator(cfg, logger, NoOpObserver{})
}
