package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/iishyfishyy/recall/internal/config"
	"github.com/iishyfishyy/recall/internal/history"
	"github.com/iishyfishyy/recall/internal/server"
	"github.com/iishyfishyy/recall/internal/ui"
)

var (
	// version is set by goreleaser at build time
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// CLI flags
	debug      bool
	threshold  float64
	cutoff     int
	dimensions int
	persist    bool

	copyAnswer    bool
	questionsFile string
	demoDelay     time.Duration
	serveAddr     string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Errors returned by commands are
// printed once by main, not by cobra.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recall",
		Short:         "Answer questions from a semantic cache or a routed model",
		Long:          "recall answers a question from earlier similar answers when it can, and otherwise routes it to a model chosen by question length",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	flags.Float64Var(&threshold, "threshold", 0, "Similarity threshold for a cache hit (overrides config)")
	flags.IntVar(&cutoff, "cutoff", 0, "Word count at which the advanced model is used (overrides config)")
	flags.IntVar(&dimensions, "dimensions", 0, "Embedding dimensions (overrides config)")
	flags.BoolVar(&persist, "persist", false, "Keep records in the SQLite journal (overrides config)")

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	askCmd.Flags().BoolVarP(&copyAnswer, "copy", "c", false, "Copy the answer to the clipboard")

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively until an empty line",
		RunE:  runChat,
	}

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a list of FAQ questions, repeats included, through the cache",
		RunE:  runDemo,
	}
	demoCmd.Flags().StringVarP(&questionsFile, "questions", "q", "", "YAML file with a questions list")
	demoCmd.Flags().DurationVar(&demoDelay, "delay", 0, "Pause between questions")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")

	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "List stored question/answer records",
		RunE:  runRecords,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List past questions and how they were answered",
		RunE:  runHistory,
	}

	configureCmd := &cobra.Command{
		Use:   "configure",
		Short: "Edit the recall configuration",
		RunE:  runConfigure,
	}

	rootCmd.AddCommand(askCmd, chatCmd, demoCmd, serveCmd, recordsCmd, historyCmd, configureCmd)

	return rootCmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.orch.Ask(cmd.Context(), question)
	a.recordHistory(question, res, err)
	if err != nil {
		return err
	}

	ui.ShowResult(res)

	if copyAnswer {
		if err := clipboard.WriteAll(res.Answer); err != nil {
			ui.ShowError(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		} else {
			ui.ShowSuccess("Answer copied to clipboard!")
		}
	}

	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	next := lineReader(os.Stdin)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		next = ui.PromptQuestion
	}

	for {
		question, err := next()
		if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		question = strings.TrimSpace(question)
		if question == "" {
			break
		}

		res, err := a.orch.Ask(cmd.Context(), question)
		a.recordHistory(question, res, err)
		if err != nil {
			ui.ShowError(err.Error())
			continue
		}
		ui.ShowResult(res)
	}

	showStats(a)
	return nil
}

// lineReader reads questions from non-interactive input, one per line
func lineReader(r io.Reader) func() (string, error) {
	scanner := bufio.NewScanner(r)
	return func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return scanner.Text(), nil
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	questions := defaultQuestions
	if questionsFile != "" {
		loaded, err := loadQuestions(questionsFile)
		if err != nil {
			return err
		}
		questions = loaded
	}

	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	for idx, question := range questions {
		if idx > 0 && demoDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(demoDelay):
			}
		}

		fmt.Printf("\n[%d] User asks: '%s'\n", idx+1, question)
		res, err := a.orch.Ask(ctx, question)
		a.recordHistory(question, res, err)
		if err != nil {
			ui.ShowError(err.Error())
			continue
		}
		ui.ShowResult(res)
	}

	showStats(a)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.ShowInfo(fmt.Sprintf("Serving on %s (Ctrl-C to stop)", addr))
	return server.New(a.orch, a.logger).Run(ctx, addr)
}

func runRecords(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.journal == nil {
		ui.ShowWarning("Persistence is disabled, so records only live for one run")
		ui.ShowInfo("Enable it with --persist or 'recall configure'")
		return nil
	}

	records := a.orch.Store().Records()
	if len(records) == 0 {
		ui.ShowInfo(fmt.Sprintf("No records in %s", a.journal.Path()))
		return nil
	}

	ui.ShowSection(fmt.Sprintf("Records (%d)", len(records)))
	gray := color.New(color.FgHiBlack)
	for i, rec := range records {
		fmt.Printf("\n%d. %s\n", i+1, rec.Question)
		fmt.Printf("   %s\n", rec.Answer)
		gray.Printf("   %s, %s\n", rec.Model, formatAge(rec.CreatedAt))
	}
	fmt.Println()

	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, err := history.GetHistoryPath()
	if err != nil {
		return err
	}

	hist, err := history.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(hist.Entries) == 0 {
		ui.ShowInfo("No questions asked yet")
		return nil
	}

	ui.ShowSection("History")
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	for _, e := range hist.Entries {
		switch {
		case e.Error != "":
			red.Printf("  ✗ ")
		case e.Hit:
			green.Printf("  ✓ ")
		default:
			yellow.Printf("  → ")
		}
		fmt.Printf("%s (%s)\n", e.Question, formatAge(e.Timestamp))
	}

	hits, misses, failures := hist.Summary()
	fmt.Printf("\n%d hits, %d misses, %d failures\n", hits, misses, failures)
	return nil
}

func runConfigure(cmd *cobra.Command, args []string) error {
	ui.ShowSection("Recall Configuration")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	exists, err := config.Exists()
	if err != nil {
		return err
	}
	if !exists {
		ui.ShowInfo("No configuration found, starting from defaults.\n")
	}

	edited, err := ui.ConfigureSettings(cfg)
	if err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			ui.ShowInfo("Cancelled")
			return nil
		}
		return err
	}
	if err := edited.Validate(); err != nil {
		return err
	}

	save, err := ui.PromptYesNo("Save configuration?", true)
	if err != nil {
		return err
	}
	if !save {
		ui.ShowInfo("Cancelled")
		return nil
	}

	if err := config.Save(edited); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	configPath, _ := config.GetConfigPath()
	ui.ShowSuccess(fmt.Sprintf("Configuration saved to %s", configPath))
	return nil
}

func showStats(a *app) {
	st := a.orch.Stats()
	fmt.Println()
	ui.ShowInfo(fmt.Sprintf("%d hits, %d misses, %d failures, %d records stored",
		st.Hits, st.Misses, st.Failures, a.orch.Store().Count()))
	a.logger.Debug("session finished",
		zap.Int("hits", st.Hits),
		zap.Int("misses", st.Misses),
		zap.Int("failures", st.Failures))
}

// formatAge formats a time.Time as "X ago"
func formatAge(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(duration.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
