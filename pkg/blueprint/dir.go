package blueprint

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/assys/brickguide/pkg/errors"
)

// Extensions DirSource understands, in lookup order.
var extensions = []string{".csv", ".yaml", ".yml"}

// DirSource reads blueprints from files in one directory. The file stem is
// the blueprint name.
type DirSource struct {
	Dir string
}

func NewDirSource(dir string) *DirSource { return &DirSource{Dir: dir} }

func (s *DirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "read blueprint directory")
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !slices.Contains(extensions, ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if errors.ValidateBlueprintName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func (s *DirSource) Load(ctx context.Context, name string) (*Blueprint, error) {
	if err := errors.ValidateBlueprintName(name); err != nil {
		return nil, err
	}
	for _, ext := range extensions {
		f, err := os.Open(filepath.Join(s.Dir, name+ext))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "open blueprint %q", name)
		}
		defer f.Close()

		b := &Blueprint{Name: name}
		if ext == ".csv" {
			b.Steps, err = ParseCSV(f)
		} else {
			_, b.Steps, err = ParseYAML(f)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "%s%s", name, ext)
		}
		return b, nil
	}
	return nil, notFound(name)
}

// Save writes b as <name>.yaml, replacing any file of the same name.
func (s *DirSource) Save(ctx context.Context, b *Blueprint) error {
	if err := errors.ValidateBlueprintName(b.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(s.Dir, b.Name+".yaml"))
	if err != nil {
		return err
	}
	if err := WriteYAML(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var _ Store = (*DirSource)(nil)
