package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
	"github.com/awmpietro/quantum-dilemma/internal/narrative"
	"github.com/awmpietro/quantum-dilemma/internal/particles"
	"github.com/awmpietro/quantum-dilemma/internal/render/terminal"
	"github.com/awmpietro/quantum-dilemma/internal/timeline"
)

const clearScreen = "\033[2J\033[H"

var (
	playSave   string
	playResume string
	playWidth  int
	playColor  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the narrative in the terminal",
	Long: `Each prompt takes a panel letter and a choice number, e.g. "a1" or "b 2".
"r" resets reality once more than one timeline exists and "q" quits.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playSave, "save", "", "Write the final session to this JSON file")
	playCmd.Flags().StringVar(&playResume, "resume", "", "Resume a session saved with --save")
	playCmd.Flags().IntVar(&playWidth, "width", 0, "Drawing width (default: terminal width)")
	playCmd.Flags().BoolVar(&playColor, "color", true, "Use 24-bit colors when stdout is a terminal")
	rootCmd.AddCommand(playCmd)
}

// savedSession is the --save file format.
type savedSession struct {
	Narrative string            `json:"narrative"`
	SavedAt   time.Time         `json:"saved_at"`
	Timelines []timeline.State  `json:"timelines"`
	Snapshot  timeline.Snapshot `json:"snapshot"`
}

func runPlay(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	g, err := loadGraph("")
	if err != nil {
		return err
	}

	opts := []timeline.Option{timeline.WithObserver(timeline.NewTransitionLogger(log.Named("timeline")))}
	var e *timeline.Engine
	if playResume != "" {
		e, err = resume(g, playResume, opts)
	} else {
		e, err = timeline.NewEngine(g, narrative.DefaultPalette, opts...)
	}
	if err != nil {
		return err
	}

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	r := terminal.NewRenderer(terminal.WithWidth(playWidth), terminal.WithColor(playColor && tty))
	field := particles.NewField(particles.DefaultCount, float64(r.Width()), 60, nil)

	if err := loop(cmd.InOrStdin(), cmd.OutOrStdout(), e, r, field, tty); err != nil {
		return err
	}

	if playSave != "" {
		return save(playSave, g, e)
	}
	return nil
}

// loop reads commands until quit or end of input, redrawing after each one.
func loop(in io.Reader, out io.Writer, e *timeline.Engine, r *terminal.Renderer, field *particles.Field, redraw bool) error {
	scanner := bufio.NewScanner(in)
	last := time.Now()
	status := ""

	for {
		if field != nil {
			now := time.Now()
			field.Advance(int(now.Sub(last) / particles.DefaultTick))
			last = now
		}
		if redraw {
			fmt.Fprint(out, clearScreen)
		}
		if err := r.Render(out, e.Snapshot(), field); err != nil {
			return err
		}
		if status != "" {
			fmt.Fprintln(out, status)
		}
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		c, err := terminal.ParseCommand(scanner.Text())
		if err != nil {
			status = err.Error()
			continue
		}
		switch c.Kind {
		case terminal.CommandQuit:
			return nil
		case terminal.CommandHelp:
			status = `type a panel letter and a choice number ("a1"), "r" to reset, "q" to quit`
		case terminal.CommandReset:
			if !terminal.ResetOffered(e.Len()) {
				status = "only one timeline exists; nothing to reset"
				continue
			}
			e.Reset()
			status = "reality reset"
		case terminal.CommandChoose:
			status = choose(e, c)
		}
	}
}

func choose(e *timeline.Engine, c terminal.Command) string {
	views := e.Snapshot().Timelines
	if c.Panel < 0 {
		return "there is no such universe"
	}
	if c.Panel >= len(views) {
		return fmt.Sprintf("there is no universe %s", timeline.Label(c.Panel))
	}
	if c.Choice < 0 || c.Choice >= len(views[c.Panel].Dilemma.Choices) {
		return "that choice no longer applies"
	}
	v := views[c.Panel]
	choice := v.Dilemma.Choices[c.Choice]

	tr, err := e.ApplyChoice(v.ID, choice.ID)
	switch {
	case apperrors.HasCode(err, apperrors.CodeNotFound), apperrors.HasCode(err, apperrors.CodeInvalidArgument):
		return "that choice no longer applies"
	case err != nil:
		return err.Error()
	case tr.Noop:
		return fmt.Sprintf("universe %s: %q leads nowhere further", timeline.Label(c.Panel), choice.Text)
	case tr.Spawned != "":
		return fmt.Sprintf("universe %s chose %q; universe %s splits off", timeline.Label(c.Panel), choice.Text, timeline.Label(tr.Timelines-1))
	default:
		return fmt.Sprintf("universe %s chose %q", timeline.Label(c.Panel), choice.Text)
	}
}

func resume(g *narrative.Graph, path string, opts []timeline.Option) (*timeline.Engine, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s savedSession
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return timeline.Restore(g, narrative.DefaultPalette, s.Timelines, opts...)
}

func save(path string, g *narrative.Graph, e *timeline.Engine) error {
	data, err := sonic.ConfigStd.MarshalIndent(savedSession{
		Narrative: g.Name,
		SavedAt:   time.Now().UTC(),
		Timelines: e.States(),
		Snapshot:  e.Snapshot(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
