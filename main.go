package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"timeismoney/internal"
	"timeismoney/internal/clock"
	"timeismoney/internal/config"
	"timeismoney/internal/money"
	"timeismoney/internal/session"
	"timeismoney/internal/state"
)

var (
	configPath string

	startLabelID        string
	startParticipantIDs []string

	rootCmd = &cobra.Command{
		Use:   "timeismoney",
		Short: "Track time and what it is worth",
		Long: `timeismoney is a terminal time tracker. Pick personal or business mode,
start a session, and on finish the elapsed time becomes a monetary amount
in your activity log.`,
		RunE: runTUI,
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the current mode, rates and active session",
		RunE:  runStatus,
	}

	startCmd = &cobra.Command{
		Use:   "start [activity-name]",
		Short: "Start tracking a session without the TUI",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStart,
	}

	finishCmd = &cobra.Command{
		Use:   "finish [override-name]",
		Short: "Finish the active session and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFinish,
	}

	cancelCmd = &cobra.Command{
		Use:   "cancel",
		Short: "Discard the active session without recording it",
		RunE:  runCancel,
	}

	logCmd = &cobra.Command{
		Use:   "log",
		Short: "List recorded activities, most recent first",
		RunE:  runLog,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file")
	startCmd.Flags().StringVar(&startLabelID, "label", "", "Label id to tag the session with")
	startCmd.Flags().StringSliceVar(&startParticipantIDs, "participant", nil, "Participant id (repeatable, business mode)")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(logCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore loads the config and opens the snapshot store it points at. A
// fresh store gets the configured default currency.
func openStore() (*state.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	store, err := state.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if store.Fresh() && cfg.DefaultCurrency != "" {
		store.SetCurrency(cfg.DefaultCurrency)
	}
	return store, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	m := internal.NewModel(store, clock.System())
	p := tea.NewProgram(m, tea.WithAltScreen())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			p.Send(internal.MsgTick{})
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	st := store.State()
	fmt.Printf("Mode: %s\n", st.Mode)
	fmt.Printf("Currency: %s\n", st.Currency)
	if st.Mode == state.ModePersonal {
		fmt.Printf("Hourly rate: %s\n", money.FormatAmount(st.PersonalSettings.HourlyRate, st.Currency))
	} else {
		fmt.Printf("Participants: %d\n", len(st.Participants))
		for _, p := range st.Participants {
			fmt.Printf("  - %s (%s): %s/hr\n", p.Name, p.ID, money.FormatAmount(p.HourlyRate, st.Currency))
		}
	}
	for _, l := range st.Labels {
		fmt.Printf("Label: %s (%s)\n", l.Name, l.ID)
	}

	if st.ActiveSession == nil {
		fmt.Println("No active session")
		return nil
	}

	mgr := session.NewManager(store, clock.System())
	elapsed := mgr.Elapsed()
	fmt.Printf("Tracking: %s\n", st.ActiveSession.ActivityName)
	fmt.Printf("Elapsed: %s\n", money.FormatElapsed(elapsed))
	fmt.Printf("Running amount: %s\n",
		money.FormatAmount(money.Amount(elapsed.Minutes(), mgr.CurrentRate()), st.Currency))
	return nil
}

func runStart(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	var labelID *string
	if startLabelID != "" {
		if _, ok := store.State().LabelByID(startLabelID); !ok {
			return fmt.Errorf("label %q not found", startLabelID)
		}
		labelID = &startLabelID
	}

	st := store.State()
	if st.Mode == state.ModeBusiness {
		if len(startParticipantIDs) == 0 {
			return fmt.Errorf("business mode needs at least one --participant id")
		}
		for _, id := range startParticipantIDs {
			if _, ok := st.ParticipantByID(id); !ok {
				return fmt.Errorf("participant %q not found", id)
			}
		}
	}

	mgr := session.NewManager(store, clock.System())
	next, err := mgr.Start(name, labelID, startParticipantIDs)
	if err != nil {
		return err
	}
	fmt.Printf("Tracking %q\n", next.ActiveSession.ActivityName)
	return nil
}

func runFinish(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if store.State().ActiveSession == nil {
		fmt.Println("No active session")
		return nil
	}

	override := ""
	if len(args) > 0 {
		override = args[0]
	}

	mgr := session.NewManager(store, clock.System())
	next := mgr.Finish(override)
	entry := next.Activities[0]
	fmt.Printf("Recorded %q: %s, %s\n",
		entry.ActivityName,
		money.FormatMinutes(entry.DurationMinutes),
		money.FormatAmount(entry.Amount, entry.Currency))
	return nil
}

func runCancel(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if store.State().ActiveSession == nil {
		fmt.Println("No active session")
		return nil
	}

	mgr := session.NewManager(store, clock.System())
	mgr.Cancel()
	fmt.Println("Session discarded")
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	st := store.State()
	if len(st.Activities) == 0 {
		fmt.Println("Nothing recorded yet")
		return nil
	}

	for _, a := range st.Activities {
		line := fmt.Sprintf("%s  %-10s %-10s %s",
			clock.Time(a.EndTime).Format("2006-01-02 15:04"),
			money.FormatMinutes(a.DurationMinutes),
			money.FormatAmount(a.Amount, a.Currency),
			a.ActivityName)
		if len(a.ParticipantNames) > 0 {
			line += " (with " + strings.Join(a.ParticipantNames, ", ") + ")"
		}
		if a.LabelID != nil {
			if l, ok := st.LabelByID(*a.LabelID); ok {
				line += " [" + l.Name + "]"
			}
		}
		fmt.Println(line)
	}
	return nil
}
