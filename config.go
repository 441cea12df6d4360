package kernelsim

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/noahkrem/kernelsim/internal/sched"
)

// Config sizes the simulator's pools and queue set. The ready-list and
// waiting-list counts are structural (the model assumes exactly 3 ready bands
// and 2 IPC wait queues) while the pool capacities and semaphore count are
// genuine tuning knobs, letting an operator shrink them for
// failure-injection tests or grow them for a larger simulation.
type Config = sched.Config

// DefaultConfig returns the capacities named by the built-in configuration
// constants.
func DefaultConfig() Config {
	return sched.DefaultConfig()
}

// LoadConfig decodes a Config from a TOML file at path, starting from
// DefaultConfig and overriding whichever fields the file sets.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, WrapError("load_config", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, WrapError("load_config", err)
	}
	return cfg, nil
}
