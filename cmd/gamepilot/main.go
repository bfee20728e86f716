package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gamepilot/internal/action"
	"gamepilot/internal/config"
	"gamepilot/internal/container"
	"gamepilot/internal/coordinator"
	"gamepilot/internal/progress"
	"gamepilot/internal/result"
	"gamepilot/internal/run"
	"gamepilot/internal/stats"
	"gamepilot/internal/stub"
)

const (
	ExitSuccess   = 0
	ExitRunFailed = 1
	ExitError     = 2
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "gamepilot",
		Short:   "Behavioral test driver for interactive web games",
		Long:    `gamepilot executes declarative input sequences against live game sessions, choosing between DOM-native and AI-driven execution per step, and streams progress into a machine-readable result document.`,
		Version: version,
	}
	rootCmd.AddCommand(newValidateCmd(), newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <spec.yaml>...",
		Short: "Validate test specs without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			for _, path := range args {
				_, warnings, err := config.Load(path)
				for _, w := range warnings {
					color.Yellow("%s: warning: %s", path, w)
				}
				if err != nil {
					failed = true
					color.Red("%s: %v", path, err)
					continue
				}
				color.Green("%s: ok", path)
			}
			if failed {
				os.Exit(ExitRunFailed)
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var (
		outDir      string
		quiet       bool
		verbose     bool
		dryRun      bool
		abortOnFail bool
		gameState   string
	)

	cmd := &cobra.Command{
		Use:   "run <spec.yaml>...",
		Short: "Execute test specs; several specs run in parallel sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dryRun {
				// Real browser-driver and CUA backends plug in through the
				// container; this binary ships with stub collaborators only.
				return fmt.Errorf("only --dry-run sessions are available in this build")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Fprintln(os.Stderr, "\nreceived interrupt, shutting down...")
				cancel()
			}()

			coord := coordinator.New()
			for _, path := range args {
				spec, warnings, err := config.Load(path)
				for _, w := range warnings {
					color.Yellow("%s: warning: %s", path, w)
				}
				if err != nil {
					return err
				}

				runDir := filepath.Join(outDir, specDirName(path))
				orch, err := buildDryRun(ctx, spec, runDir, quiet, verbose, abortOnFail, gameState)
				if err != nil {
					return err
				}
				coord.Spawn(ctx, path, func(ctx context.Context) (*result.TestResult, error) {
					doc, err := orch.Run(ctx)
					if cerr := orch.Session.Close(context.WithoutCancel(ctx)); cerr != nil {
						fmt.Fprintf(os.Stderr, "warning: closing session: %v\n", cerr)
					}
					return doc, err
				})
			}

			failed := false
			for _, outcome := range coord.Wait() {
				if !printOutcome(outcome) {
					failed = true
				}
			}
			if failed {
				os.Exit(ExitRunFailed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "runs", "output directory for result documents and screenshots")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output during the run")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable per-action debug output")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "execute against stub collaborators instead of a live session")
	cmd.Flags().BoolVar(&abortOnFail, "abort-on-failure", false, "abort the remaining sequence when a step fails fatally")
	cmd.Flags().StringVar(&gameState, "game-state", "", "JSON file answering observe state queries in dry runs")
	return cmd
}

func buildDryRun(ctx context.Context, spec *config.TestSpec, runDir string, quiet, verbose, abortOnFail bool, gameState string) (*run.Orchestrator, error) {
	session := &stub.Session{}
	if gameState != "" {
		state, err := os.ReadFile(gameState)
		if err != nil {
			return nil, fmt.Errorf("reading game state: %w", err)
		}
		session.State = state
	}

	var debug *action.DebugLogger
	if verbose {
		debug = action.NewDebugLogger(os.Stderr)
	}

	return container.Build(ctx, container.Options{
		Spec:               spec,
		Session:            session,
		Capture:            &stub.Capture{Dir: filepath.Join(runDir, "screenshots")},
		CUA:                &stub.CUA{},
		OutDir:             runDir,
		Progress:           progress.NewProgress(quiet),
		Debug:              debug,
		AbortOnStepFailure: abortOnFail,
	})
}

// printOutcome renders one run's terminal state and returns whether it passed.
func printOutcome(o coordinator.Outcome) bool {
	if o.Err != nil {
		color.Red("FAIL %s: %v", o.Name, o.Err)
		return false
	}
	doc := o.Result
	if doc == nil {
		color.Red("FAIL %s: no result document", o.Name)
		return false
	}

	summary := stats.Compute(doc.ActionTimings)
	line := fmt.Sprintf("%s: %d actions (dom %d, cua %d, none %d), %.1f%% succeeded",
		o.Name, summary.TotalActions, summary.Methods.DOM, summary.Methods.CUA,
		summary.Methods.None, summary.SuccessRate)

	if doc.Success != nil && *doc.Success {
		color.Green("PASS " + line)
		return true
	}
	color.Red("FAIL " + line)
	return false
}

// specDirName derives a per-spec output directory from the spec filename.
func specDirName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
