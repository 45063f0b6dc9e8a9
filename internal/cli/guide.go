package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/assys/brickguide/pkg/blueprint"
	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/guide"
	"github.com/assys/brickguide/pkg/session"
	"github.com/assys/brickguide/pkg/voxel"
)

var (
	guideStepStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	guideHelpStyle = lipgloss.NewStyle().Foreground(colorDim)
	guideErrStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// guideModel - Interactive step-by-step guide
// =============================================================================

// guideModel walks one operator through blueprints in the terminal. When the
// operator moves past the control position, nextBlueprint supplies the next
// blueprint to build.
type guideModel struct {
	bp       *blueprint.Blueprint
	pos      guide.Position
	grid     brick.Grid
	palette  *brick.Palette
	finished int
	err      error

	nextBlueprint func() (*blueprint.Blueprint, error)
}

func newGuideModel(bp *blueprint.Blueprint, step int, grid brick.Grid, palette *brick.Palette, next func() (*blueprint.Blueprint, error)) guideModel {
	pos := guide.Position{Blueprint: bp.Name, Step: step, Total: bp.Len()}
	return guideModel{
		bp:            bp,
		pos:           pos.Normalize(),
		grid:          grid,
		palette:       palette,
		nextBlueprint: next,
	}
}

func (m guideModel) Init() tea.Cmd {
	return nil
}

func (m guideModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "right", "n", "l", " ", "enter":
		return m.move(guide.Next), nil
	case "left", "b", "h":
		return m.move(guide.Back), nil
	}
	return m, nil
}

func (m guideModel) move(d guide.Direction) guideModel {
	next, restart, err := guide.Apply(m.pos, d)
	if err != nil {
		m.err = err
		return m
	}
	m.err = nil
	if !restart {
		m.pos = next
		return m
	}
	bp, err := m.nextBlueprint()
	if err != nil {
		m.err = err
		return m
	}
	m.finished++
	m.bp = bp
	m.pos = guide.Start(bp.Name, bp.Len())
	return m
}

func (m guideModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.bp.Name))
	b.WriteString("\n")

	if m.pos.InControl() {
		model, err := voxel.Assign(m.grid, m.bp.Steps)
		b.WriteString(guideStepStyle.Render(fmt.Sprintf("Control: %d bricks", m.bp.Len())))
		b.WriteString("\n\n")
		if err != nil {
			b.WriteString(guideErrStyle.Render(err.Error()))
		} else {
			b.WriteString(renderLayers(model, m.palette))
		}
	} else {
		p := m.bp.Steps[m.pos.Step-1]
		b.WriteString(guideStepStyle.Render(fmt.Sprintf("Step %d of %d", m.pos.Step, m.pos.Total)))
		b.WriteString("  ")
		b.WriteString(StyleValue.Render(p.String()))
		b.WriteString("\n\n")
		model, err := voxel.Assign(m.grid, m.bp.Prefix(m.pos.Step))
		if err != nil {
			b.WriteString(guideErrStyle.Render(err.Error()))
		} else {
			layer := model.Membership[m.pos.Step-1]
			b.WriteString(StyleDim.Render(fmt.Sprintf("layer %d", layer)))
			b.WriteString("\n")
			b.WriteString(layerGrid(model.Layers[layer], m.palette))
		}
	}

	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(guideErrStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	help := "←/b back  →/n next  q quit"
	if m.finished > 0 {
		help += fmt.Sprintf("  [%d finished]", m.finished)
	}
	b.WriteString(guideHelpStyle.Render(help))
	return b.String()
}

// =============================================================================
// guide command
// =============================================================================

// guideCommand creates the guide command running the terminal guide.
func (c *CLI) guideCommand() *cobra.Command {
	var (
		step  int
		reset bool
	)

	cmd := &cobra.Command{
		Use:               "guide [blueprint]",
		ValidArgsFunction: c.completeBlueprint,
		Short:             "Walk through a blueprint in the terminal",
		Long: `Walk through a blueprint in the terminal, one brick per step.

Without a blueprint argument the guide resumes where the last run stopped,
or starts a random blueprint. After the last step the finished layers are
shown for checking; moving on starts another random blueprint.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return c.runGuide(cmd.Context(), name, step, reset)
		},
	}

	cmd.Flags().IntVar(&step, "step", 1, "step to start at")
	cmd.Flags().BoolVar(&reset, "reset", false, "forget the saved position")

	return cmd
}

func (c *CLI) runGuide(ctx context.Context, name string, step int, reset bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	e, err := c.openEnv(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer e.close()

	state, err := guideState()
	if err != nil {
		return err
	}
	if reset {
		if err := state.Clear(ctx); err != nil {
			return err
		}
	}

	grid := cfg.Grid()
	random := func() (*blueprint.Blueprint, error) {
		name, err := blueprint.Random(ctx, e.runner.Source, nil)
		if err != nil {
			return nil, err
		}
		return e.runner.Load(ctx, name, grid)
	}

	var bp *blueprint.Blueprint
	switch {
	case name != "":
		bp, err = e.runner.Load(ctx, name, grid)
	default:
		saved, lerr := state.Load(ctx)
		if lerr != nil {
			c.Logger.Warn("ignoring saved guide state", "path", state.Path(), "err", lerr)
		}
		if saved != nil && saved.Position.Blueprint != "" {
			bp, err = e.runner.Load(ctx, saved.Position.Blueprint, grid)
			step = saved.Position.Step
			if err != nil {
				c.Logger.Warn("saved blueprint unavailable", "blueprint", saved.Position.Blueprint, "err", err)
				bp, err = random()
				step = 1
			}
		} else {
			bp, err = random()
		}
	}
	if err != nil {
		return err
	}

	model := newGuideModel(bp, step, grid, e.runner.Palette, random)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}

	m := final.(guideModel)
	if err := state.Save(ctx, session.New("", m.pos, cfg.Sessions.TTL)); err != nil {
		return err
	}
	if m.finished > 0 {
		printSuccess("Finished %d blueprints", m.finished)
	}
	printDetail("Saved position: %s step %d", m.pos.Blueprint, m.pos.Step)
	return nil
}

// guideState opens the store that remembers the terminal guide position.
func guideState() (*session.CLIStore, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return session.NewCLIStore(filepath.Join(dir, "guide"))
}
