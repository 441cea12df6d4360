package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	kernelsim "github.com/noahkrem/kernelsim"
	"github.com/noahkrem/kernelsim/internal/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a TOML config file (defaults built in if omitted)")
		verbose    = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	cfg := kernelsim.DefaultConfig()
	if *configPath != "" {
		loaded, err := kernelsim.LoadConfig(*configPath)
		if err != nil {
			logger.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	sim, err := kernelsim.NewSimulator(cfg, logger, &consoleObserver{logger: logger})
	if err != nil {
		logger.Error("failed to build simulator", "error", err)
		os.Exit(1)
	}

	logger.Info("simulator ready", "ready_queues", cfg.NumReadyList, "semaphores", cfg.NumSemaphore)
	fmt.Println("kernelsim console — type 'help' for commands, 'quit' to exit")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		<-sigCh
		fmt.Println("\nreceived shutdown signal, final state:")
		printTotalInfo(sim.TotalInfo())
		close(done)
		os.Exit(0)
	}()

	runREPL(sim, os.Stdin, os.Stdout)
}

// consoleObserver prints scheduling events to the log as they happen, the
// way a kernel's tracepoints would.
type consoleObserver struct {
	logger *logging.Logger
}

func (o *consoleObserver) ObserveDispatch(pid int) {
	o.logger.Debug("dispatch", "pid", pid)
}

func (o *consoleObserver) ObserveBlock(pid int, reason kernelsim.WaitReason) {
	o.logger.Debug("block", "pid", pid, "reason", reason)
}

func (o *consoleObserver) ObserveUnblock(pid int) {
	o.logger.Debug("unblock", "pid", pid)
}

func (o *consoleObserver) ObserveMessage(kind string, from, to int, text string) {
	o.logger.Debug("message", "kind", kind, "from", from, "to", to, "text", text)
}

func runREPL(sim *kernelsim.Simulator, in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if quit := dispatch(sim, out, line); quit {
				return
			}
		}
		fmt.Fprint(out, "> ")
	}
}

func dispatch(sim *kernelsim.Simulator, out *os.File, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "quit", "exit_console":
		return true
	case "help":
		printHelp(out)
	case "create":
		priority, err := parsePriority(args)
		if err != nil {
			fmt.Fprintf(out, "Failure: %v\n", err)
			return false
		}
		pid, err := sim.Create(priority)
		report(out, err, "created pid %d", pid)
	case "fork":
		pid, err := sim.Fork()
		report(out, err, "forked pid %d", pid)
	case "kill":
		pid, err := parseInt(args, 0, "pid")
		if err != nil {
			fmt.Fprintf(out, "Failure: %v\n", err)
			return false
		}
		err = sim.Kill(pid)
		report(out, err, "killed pid %d", pid)
	case "exit":
		err := sim.ExitProc()
		report(out, err, "exited current process")
	case "quantum":
		err := sim.Quantum()
		report(out, err, "quantum expired")
	case "send":
		pid, text, err := parseSend(cmd, args)
		if err != nil {
			fmt.Fprintf(out, "Failure: %v\n", err)
			return false
		}
		err = sim.Send(pid, text)
		report(out, err, "sent to pid %d", pid)
	case "receive":
		msg, err := sim.Receive()
		if err != nil {
			fmt.Fprintf(out, "Failure: %v\n", err)
			return false
		}
		if msg == nil {
			fmt.Fprintf(out, "Success: blocked awaiting a send, pid %d now running\n", sim.CurrentPid())
			return false
		}
		fmt.Fprintf(out, "Success: received %q from pid %d\n", msg.Text, msg.Source)
	case "reply":
		pid, text, err := parseSend(cmd, args)
		if err != nil {
			fmt.Fprintf(out, "Failure: %v\n", err)
			return false
		}
		err = sim.Reply(pid, text)
		report(out, err, "replied to pid %d", pid)
	case "newsem":
		sid, value, err := parseTwoInts(args, "sid", "initial value")
		if err != nil {
			fmt.Fprintf(out, "Failure: %v\n", err)
			return false
		}
		err = sim.NewSem(sid, value)
		report(out, err, "initialized semaphore %d", sid)
	case "semp":
		sid, err := parseInt(args, 0, "sid")
		if err != nil {
			fmt.Fprintf(out, "Failure: %v\n", err)
			return false
		}
		err = sim.SemP(sid)
		report(out, err, "P(%d) completed", sid)
	case "semv":
		sid, err := parseInt(args, 0, "sid")
		if err != nil {
			fmt.Fprintf(out, "Failure: %v\n", err)
			return false
		}
		err = sim.SemV(sid)
		report(out, err, "V(%d) completed", sid)
	case "procinfo":
		pid, err := parseInt(args, 0, "pid")
		if err != nil {
			fmt.Fprintf(out, "Failure: %v\n", err)
			return false
		}
		info, err := sim.ProcInfo(pid)
		if err != nil {
			fmt.Fprintf(out, "Failure: %v\n", err)
			return false
		}
		printProcInfo(out, *info)
	case "totalinfo":
		printTotalInfo(sim.TotalInfo())
	case "stats":
		printStats(out, sim.Stats())
	default:
		fmt.Fprintf(out, "Failure: unknown command %q (try 'help')\n", cmd)
	}
	return false
}

func report(out *os.File, err error, format string, args ...any) {
	if err != nil {
		fmt.Fprintf(out, "Failure: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Success: "+format+"\n", args...)
}

func parsePriority(args []string) (kernelsim.Priority, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: create <high|normal|low>")
	}
	switch strings.ToLower(args[0]) {
	case "high":
		return kernelsim.PriorityHigh, nil
	case "normal":
		return kernelsim.PriorityNormal, nil
	case "low":
		return kernelsim.PriorityLow, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", args[0])
	}
}

func parseInt(args []string, idx int, name string) (int, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("missing %s argument", name)
	}
	v, err := strconv.Atoi(args[idx])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, args[idx])
	}
	return v, nil
}

func parseTwoInts(args []string, name1, name2 string) (int, int, error) {
	a, err := parseInt(args, 0, name1)
	if err != nil {
		return 0, 0, err
	}
	b, err := parseInt(args, 1, name2)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func parseSend(cmd string, args []string) (int, string, error) {
	if len(args) < 2 {
		return 0, "", fmt.Errorf("usage: %s <pid> <text...>", cmd)
	}
	pid, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, "", fmt.Errorf("invalid pid %q", args[0])
	}
	return pid, strings.Join(args[1:], " "), nil
}

func printHelp(out *os.File) {
	fmt.Fprint(out, `commands:
  create <high|normal|low>   allocate a process at the given priority
  fork                       clone the current process at its own priority
  kill <pid>                 remove and free a process wherever it resides
  exit                       kill the current process
  quantum                    end the current process's time slice
  send <pid> <text>          deposit a message and block for a reply
  receive                    consume a pending inbox message, or block
  reply <pid> <text>         deposit a reply and ready the target
  newsem <sid> <value>       initialize a semaphore
  semp <sid>                 P (wait) on a semaphore
  semv <sid>                 V (signal) on a semaphore
  procinfo <pid>             snapshot one process
  totalinfo                  snapshot the current process and every queue
  stats                      print accumulated operation counters
  quit                       exit the console
`)
}

func printProcInfo(out *os.File, info kernelsim.ProcInfo) {
	fmt.Fprintf(out, "pid=%d priority=%v state=%v wait_reason=%v\n",
		info.Pid, info.Priority, info.State, info.WaitReason)
}

func printTotalInfo(info *kernelsim.TotalInfo) {
	fmt.Printf("current: pid=%d priority=%v state=%v\n",
		info.Current.Pid, info.Current.Priority, info.Current.State)
	for i, ready := range info.Ready {
		fmt.Printf("ready[%d]: %d process(es)\n", i, len(ready))
	}
	fmt.Printf("wait_send: %d process(es)\n", len(info.WaitSend))
	fmt.Printf("wait_receive: %d process(es)\n", len(info.WaitReceive))
	for sid, waiters := range info.Semaphores {
		fmt.Printf("semaphore[%d] waiters: %d\n", sid, len(waiters))
	}
}

func printStats(out *os.File, snap kernelsim.StatsSnapshot) {
	fmt.Fprintf(out, "create=%d/%d fork=%d/%d kill=%d/%d exit=%d/%d quantum=%d/%d\n",
		snap.CreateOps, snap.CreateErrs, snap.ForkOps, snap.ForkErrs,
		snap.KillOps, snap.KillErrs, snap.ExitOps, snap.ExitErrs,
		snap.QuantumOps, snap.QuantumErrs)
	fmt.Fprintf(out, "send=%d/%d receive=%d/%d reply=%d/%d\n",
		snap.SendOps, snap.SendErrs, snap.ReceiveOps, snap.ReceiveErrs,
		snap.ReplyOps, snap.ReplyErrs)
	fmt.Fprintf(out, "new_sem=%d/%d sem_p=%d/%d sem_v=%d/%d dispatches=%d\n",
		snap.NewSemOps, snap.NewSemErrs, snap.SemPOps, snap.SemPErrs,
		snap.SemVOps, snap.SemVErrs, snap.DispatchOps)
}
