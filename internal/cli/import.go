package cli

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/assys/brickguide/pkg/blueprint"
	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
)

// importCommand creates the import command adding blueprint files to the
// configured store.
func (c *CLI) importCommand() *cobra.Command {
	var (
		name   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Add blueprint files to the blueprint store",
		Long: `Add CSV or YAML blueprint files to the configured blueprint store
(the blueprints directory, or MongoDB when blueprints.mongo_uri is set).

CSV files hold one x,y,width,height,color row per step. YAML files carry a
name and a list of steps. The blueprint name defaults to the YAML name, then
to the file name without extension.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name != "" && len(args) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--name needs exactly one file")
			}
			return c.runImport(cmd.Context(), args, name, dryRun)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "blueprint name (single file only)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate without saving")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, paths []string, name string, dryRun bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	bps := make([]*blueprint.Blueprint, 0, len(paths))
	for _, path := range paths {
		bp, err := readBlueprintFile(path, name, cfg.Grid())
		if err != nil {
			return err
		}
		bps = append(bps, bp)
	}
	if dryRun {
		for _, bp := range bps {
			printSuccess("%s: %d steps", bp.Name, bp.Len())
		}
		printDetail("Dry run, nothing saved")
		return nil
	}

	e, err := c.openEnv(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer e.close()

	spin := newSpinner(ctx, os.Stderr, "Saving blueprints...")
	spin.Start()
	for _, bp := range bps {
		if err := e.store.Save(ctx, bp); err != nil {
			spin.StopWithError("Import failed")
			return err
		}
		if inv, ok := e.runner.Source.(interface {
			Invalidate(context.Context, string) error
		}); ok {
			if err := inv.Invalidate(ctx, bp.Name); err != nil {
				c.Logger.Warn("invalidate cached blueprint", "blueprint", bp.Name, "err", err)
			}
		}
	}
	spin.StopWithSuccess("Imported " + pluralize(len(bps), "blueprint"))

	for _, bp := range bps {
		printDetail("%s (%d steps)", bp.Name, bp.Len())
	}
	printNextStep("Inspect", appName+" inspect "+bps[0].Name)
	return nil
}

// readBlueprintFile parses a CSV or YAML blueprint and validates it against
// grid.
func readBlueprintFile(path, name string, grid brick.Grid) (*blueprint.Blueprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	bp := &blueprint.Blueprint{}
	switch ext {
	case ".csv":
		bp.Steps, err = blueprint.ParseCSV(f)
	case ".yaml", ".yml":
		bp.Name, bp.Steps, err = blueprint.ParseYAML(f)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: unsupported file type %q (want .csv, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "%s", path)
	}

	switch {
	case name != "":
		bp.Name = name
	case bp.Name == "":
		bp.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := errors.ValidateBlueprintName(bp.Name); err != nil {
		return nil, err
	}
	if bp.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidBlueprint, "%s: no steps", path)
	}
	if err := bp.Validate(grid); err != nil {
		return nil, err
	}
	return bp, nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
