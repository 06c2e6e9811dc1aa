package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/config"
	"github.com/theirongolddev/finboard/internal/logging"
	"github.com/theirongolddev/finboard/internal/watch"

	"github.com/spf13/cobra"
)

const watchStopTimeout = 8 * time.Second

var (
	flagWatchAddr         string
	flagWatchInterval     time.Duration
	flagWatchDetach       bool
	flagWatchStateFile    string
	flagWatchLogFile      string
	flagWatchEventsBuffer int
	flagWatchChild        bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the backend in the background and serve status over HTTP",
	Long: "Refreshes the dashboard snapshot on a schedule, logs new budget alerts and " +
		"serves /healthz, /v1/status and /v1/events for scripts and status bars.",
	RunE: runWatch,
}

var watchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running watcher and its latest snapshot",
	RunE:  runWatchStatus,
}

var watchStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running watcher",
	RunE:  runWatchStop,
}

func init() {
	watchCmd.PersistentFlags().StringVar(&flagWatchAddr, "addr", "127.0.0.1:8788", "HTTP listen address")
	watchCmd.PersistentFlags().DurationVar(&flagWatchInterval, "interval", 0, "Polling interval (default: tui.refresh_interval_sec)")
	watchCmd.PersistentFlags().StringVar(&flagWatchStateFile, "state-file", filepath.Join(config.CacheDir(), "watch.json"), "Runtime state file of the watcher")
	watchCmd.PersistentFlags().StringVar(&flagWatchLogFile, "log-file", filepath.Join(config.CacheDir(), "watch.log"), "Log file for --detach")
	watchCmd.PersistentFlags().IntVar(&flagWatchEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	watchCmd.Flags().BoolVar(&flagWatchDetach, "detach", false, "Run the watcher as a background process")
	watchCmd.Flags().BoolVar(&flagWatchChild, "child", false, "Internal: mark detached child process")
	_ = watchCmd.Flags().MarkHidden("child")

	watchCmd.AddCommand(watchStatusCmd, watchStopCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	if flagWatchDetach && flagWatchChild {
		return errors.New("--detach cannot be combined with --child")
	}
	if err := claimWatchState(flagWatchStateFile); err != nil {
		return err
	}
	if flagWatchDetach {
		return spawnWatcher()
	}
	return serveWatcher()
}

// childArgs rebuilds the invocation for the detached process from the parsed
// flags, so it polls the same backend with the same settings.
func childArgs() []string {
	args := []string{
		"watch", "--child",
		"--addr", flagWatchAddr,
		"--state-file", flagWatchStateFile,
		"--events-buffer", strconv.Itoa(flagWatchEventsBuffer),
	}
	if flagWatchInterval > 0 {
		args = append(args, "--interval", flagWatchInterval.String())
	}
	if flagAPIURL != "" {
		args = append(args, "--api-url", flagAPIURL)
	}
	if flagTimeout > 0 {
		args = append(args, "--timeout", flagTimeout.String())
	}
	return args
}

func spawnWatcher() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagWatchLogFile), 0o750); err != nil {
		return fmt.Errorf("create watcher log dir: %w", err)
	}
	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(flagWatchLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open watcher log: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, childArgs()...) //nolint:gosec // re-executes this binary
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	fmt.Printf("  Started watcher (pid %d)\n", child.Process.Pid)
	fmt.Printf("  Status: finboard watch status\n")
	fmt.Printf("  Log: %s\n", flagWatchLogFile)
	return child.Process.Release()
}

func serveWatcher() error {
	cfg, client, err := setup()
	if err != nil {
		return err
	}

	interval := flagWatchInterval
	if interval <= 0 {
		interval = cfg.RefreshInterval()
	}

	// Stderr is the log file when detached.
	logger := logging.New(os.Stderr, cfg.Log.Level)
	svc := watch.New(watch.Config{
		Backend:      client.BaseURL(),
		Interval:     interval,
		Addr:         flagWatchAddr,
		EventsBuffer: flagWatchEventsBuffer,
		FetchTimeout: 3 * cfg.Timeout(),
	}, client, logger)

	st := watchState{
		PID:       os.Getpid(),
		Addr:      flagWatchAddr,
		Backend:   client.BaseURL(),
		Schedule:  svc.Schedule(),
		StartedAt: time.Now(),
	}
	if err := st.save(flagWatchStateFile); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagWatchStateFile) }()

	if !flagWatchChild {
		fmt.Printf("  Watching %s (%s)\n", st.Backend, st.Schedule)
		fmt.Printf("  Status API: http://%s/v1/status\n", st.Addr)
	}

	ctx, cancel := commandContext()
	defer cancel()
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runWatchStatus(_ *cobra.Command, _ []string) error {
	st, err := readWatchState(flagWatchStateFile)
	if errors.Is(err, errNoWatcher) {
		fmt.Println("  Watcher: not running")
		return nil
	}
	if err != nil {
		return err
	}
	if !st.alive() {
		fmt.Printf("  Watcher: not running (stale state from pid %d)\n", st.PID)
		return nil
	}

	fmt.Printf("  Watcher: pid %d, up since %s\n", st.PID, cli.FormatTimestamp(st.StartedAt.Local()))
	fmt.Printf("  Backend: %s (%s)\n", st.Backend, st.Schedule)

	live, err := fetchWatchStatus(st.Addr)
	if err != nil {
		fmt.Printf("  Status API: %v\n", err)
		return nil
	}

	cfg, _ := loadConfig()
	money := cli.NewMoney(cfg.General.Locale, cfg.General.Currency)
	fmt.Printf("  Last poll: %s (generation %d, %d polls)\n",
		cli.FormatClock(live.LastPollAt.Local()), live.Generation, live.PollCount)
	fmt.Printf("  Balance: %s\n", money.Format(live.Summary.TotalBalance))
	fmt.Printf("  Income: %s  Expenses: %s\n",
		money.Format(live.Summary.MonthlyIncome), money.Format(live.Summary.MonthlyExpenses))
	fmt.Printf("  Budget used: %s (%d alerts)\n", cli.FormatPercent(live.Summary.BudgetPercentage), live.Summary.AlertCount)
	if live.LastError != "" {
		fmt.Printf("  Last error: %s\n", cli.Sanitize(live.LastError))
	}
	return nil
}

func fetchWatchStatus(addr string) (watch.Status, error) {
	var st watch.Status
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response: %w", err)
	}
	return st, nil
}

func runWatchStop(_ *cobra.Command, _ []string) error {
	st, err := readWatchState(flagWatchStateFile)
	if err != nil {
		return err
	}
	if !st.alive() {
		_ = os.Remove(flagWatchStateFile)
		return errNoWatcher
	}

	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return fmt.Errorf("find watcher process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal watcher: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), watchStopTimeout)
	defer cancel()
	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("watcher (pid %d) did not exit within %s", st.PID, watchStopTimeout)
		case <-tick.C:
			if !st.alive() {
				_ = os.Remove(flagWatchStateFile)
				fmt.Printf("  Stopped watcher (pid %d)\n", st.PID)
				return nil
			}
		}
	}
}
