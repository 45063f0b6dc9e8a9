package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/voxel"
)

// Cell glyphs for layer grids; every cell is two columns wide so the grid
// stays roughly square in a terminal.
const (
	glyphOccupied  = "██"
	glyphBuildable = "··"
	glyphEmpty     = "  "
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available blueprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			e, err := c.openEnv(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer e.close()

			names, err := e.runner.Source.List(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printWarning("No blueprints found")
				printNextStep("Import one", appName+" import plan.csv")
				return nil
			}

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				bp, err := e.runner.Load(ctx, name, cfg.Grid())
				if err != nil {
					rows = append(rows, []string{name, "-", "-", StyleWarning.Render(err.Error())})
					continue
				}
				model, _ := voxel.Assign(cfg.Grid(), bp.Steps)
				rows = append(rows, []string{name, strconv.Itoa(bp.Len()), strconv.Itoa(model.Depth()), StyleSuccess.Render(iconSuccess)})
			}
			fmt.Println(blueprintTable(rows))
			return nil
		},
	}
}

func blueprintTable(rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Blueprint", "Steps", "Layers", "Valid").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleValue
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		}).
		Render()
}

// inspectCommand creates the inspect command showing a blueprint's layers.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "inspect <blueprint>",
		ValidArgsFunction: c.completeBlueprint,
		Short:             "Show the layers of a blueprint",
		Long: `Show the steps of a blueprint and the layers they stack into.

Occupied cells are drawn in the brick's color, buildable cells (resting on a
brick below) as dots, unsupported cells blank.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			e, err := c.openEnv(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer e.close()

			bp, err := e.runner.Load(ctx, args[0], cfg.Grid())
			if err != nil {
				return err
			}
			model, err := voxel.Assign(cfg.Grid(), bp.Steps)
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(bp.Name))
			printKeyValue("Steps", strconv.Itoa(bp.Len()))
			printKeyValue("Layers", strconv.Itoa(model.Depth()))
			printKeyValue("Conflicts", strconv.Itoa(model.Conflicts()))
			printKeyValue("Hash", bp.Hash()[:12])
			fmt.Println()

			for i, p := range bp.Steps {
				printDetail("%3d  layer %d  %s", i+1, model.Membership[i], p)
			}
			fmt.Println()
			fmt.Println(renderLayers(model, e.runner.Palette))
			return nil
		},
	}
}

// renderLayers draws every layer that holds a brick side by side, ground
// layer first.
func renderLayers(m *voxel.Model, palette *brick.Palette) string {
	var blocks []string
	for i, layer := range m.Layers {
		if layer.OccupiedCount() == 0 {
			continue
		}
		title := StyleDim.Render(fmt.Sprintf("layer %d", i))
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, title, layerGrid(layer, palette)))
	}
	if len(blocks) == 0 {
		return StyleDim.Render("(empty)")
	}
	gap := strings.Repeat(" ", 2)
	parts := make([]string, 0, 2*len(blocks))
	for i, b := range blocks {
		if i > 0 {
			parts = append(parts, gap)
		}
		parts = append(parts, b)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// layerGrid draws one layer top row first, matching the preview image
// where y grows upward.
func layerGrid(layer voxel.Layer, palette *brick.Palette) string {
	grid := layer.Grid()
	dim := lipgloss.NewStyle().Foreground(colorDim)
	rows := make([]string, 0, grid.Height)
	for row := grid.Height - 1; row >= 0; row-- {
		var b strings.Builder
		for col := 0; col < grid.Width; col++ {
			cell := layer.At(row, col)
			switch {
			case cell.IsOccupied():
				hex := brick.Hex(palette.Color(cell.Color))
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(glyphOccupied))
			case cell.IsBuildable():
				b.WriteString(dim.Render(glyphBuildable))
			default:
				b.WriteString(glyphEmpty)
			}
		}
		rows = append(rows, b.String())
	}
	return strings.Join(rows, "\n")
}
