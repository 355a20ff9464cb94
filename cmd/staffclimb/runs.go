package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/plus3/staffclimb/config"
	"github.com/plus3/staffclimb/runlog"
)

var flagLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recorded attempts",
	Long: `List the latest attempts and the fastest win under the current
configuration and preset.

Examples:
  staffclimb runs
  staffclimb runs --limit 50 --preset hard`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of attempts to list")
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	store, err := runlog.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return printRuns(os.Stdout, store, cfg, flagLimit)
}

func printRuns(w io.Writer, store *runlog.Store, cfg config.Config, limit int) error {
	runs, err := store.Recent(limit)
	if err != nil {
		return err
	}

	st := newRunStyles(w)
	fmt.Fprintln(w, st.title.Render("Recent attempts"))
	fmt.Fprintln(w)
	if len(runs) == 0 {
		fmt.Fprintln(w, "No attempts recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.dim.Render("Play 'staffclimb play' to record the first one!"))
		return nil
	}

	step := cfg.Physics.FixedTimeStep
	fmt.Fprintln(w, st.dim.Render(fmt.Sprintf("  %-16s  %-9s  %-6s  %8s  %9s  %5s", "Date", "Outcome", "Preset", "Time", "Platforms", "Jumps")))
	for _, r := range runs {
		fmt.Fprintf(w, "  %-16s  %s  %-6s  %8s  %9d  %5d\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), st.outcome(r.Outcome), r.Preset,
			r.Duration(step).Round(100*time.Millisecond), r.Platforms, r.Jumps)
	}

	fingerprint := cfg.Fingerprint()
	sum, err := store.Summarize(fingerprint)
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Current rules (%s, %s): %d attempts, %d won, %d lost, %d abandoned\n",
		cfg.Difficulty.Preset, fingerprint, sum.Runs, sum.Won, sum.Lost, sum.Abandoned)

	best, err := store.Best(fingerprint)
	switch {
	case errors.Is(err, runlog.ErrNotFound):
		fmt.Fprintln(w, "No win yet under these rules.")
	case err != nil:
		return err
	default:
		fmt.Fprintf(w, "Fastest win: %s, %d platforms, %d jumps (%s)\n",
			best.Duration(step).Round(100*time.Millisecond), best.Platforms, best.Jumps, best.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

type runStyles struct {
	title    lipgloss.Style
	dim      lipgloss.Style
	outcomes map[runlog.Outcome]lipgloss.Style
}

// newRunStyles binds the styles to w, so colour is dropped when w is not a
// terminal.
func newRunStyles(w io.Writer) runStyles {
	r := lipgloss.NewRenderer(w)
	cell := r.NewStyle().Width(9)
	return runStyles{
		title: r.NewStyle().Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("245")),
		outcomes: map[runlog.Outcome]lipgloss.Style{
			runlog.OutcomeWon:       cell.Foreground(lipgloss.Color("10")),
			runlog.OutcomeLost:      cell.Foreground(lipgloss.Color("9")),
			runlog.OutcomeAbandoned: cell.Foreground(lipgloss.Color("245")),
		},
	}
}

func (s runStyles) outcome(o runlog.Outcome) string {
	style, ok := s.outcomes[o]
	if !ok {
		return fmt.Sprintf("%-9s", o)
	}
	return style.Render(string(o))
}
