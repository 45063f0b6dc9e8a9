package blueprint

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
)

// ParseCSV reads rows of x,y,width,height,color. Blank lines and lines
// starting with # are skipped, as is a leading header row starting with "x".
func ParseCSV(r io.Reader) ([]brick.Placement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var steps []brick.Placement
	for first := true; ; first = false {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "read csv")
		}
		if first && strings.EqualFold(strings.TrimSpace(rec[0]), "x") {
			continue
		}
		p, err := parseRecord(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "line %d", line)
		}
		steps = append(steps, p)
	}
	return steps, nil
}

func parseRecord(rec []string) (brick.Placement, error) {
	if len(rec) != 5 {
		return brick.Placement{}, errors.New(errors.ErrCodeInvalidBlueprint, "want 5 fields, got %d", len(rec))
	}
	var nums [4]int
	for i := range nums {
		n, err := strconv.Atoi(strings.TrimSpace(rec[i]))
		if err != nil {
			return brick.Placement{}, errors.New(errors.ErrCodeInvalidBlueprint, "field %d: %q is not an integer", i+1, rec[i])
		}
		nums[i] = n
	}
	color := strings.TrimSpace(rec[4])
	if color == "" {
		return brick.Placement{}, errors.New(errors.ErrCodeInvalidBlueprint, "missing color")
	}
	return brick.Placement{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3], Color: color}, nil
}

// WriteCSV writes steps in the format ParseCSV reads.
func WriteCSV(w io.Writer, steps []brick.Placement) error {
	cw := csv.NewWriter(w)
	for _, p := range steps {
		rec := []string{strconv.Itoa(p.X), strconv.Itoa(p.Y), strconv.Itoa(p.Width), strconv.Itoa(p.Height), p.Color}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type yamlDocument struct {
	Name  string            `yaml:"name,omitempty"`
	Steps []brick.Placement `yaml:"steps"`
}

// ParseYAML reads a document of the form
//
//	name: house
//	steps:
//	  - {x: 0, y: 0, width: 2, height: 4, color: red}
//
// Unknown keys are rejected. The returned name is empty when the document
// does not set one.
func ParseYAML(r io.Reader) (string, []brick.Placement, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc yamlDocument
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return "", nil, nil
		}
		return "", nil, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "decode yaml")
	}
	for i, p := range doc.Steps {
		if strings.TrimSpace(p.Color) == "" {
			return "", nil, errors.New(errors.ErrCodeInvalidBlueprint, "step %d: missing color", i+1)
		}
	}
	return doc.Name, doc.Steps, nil
}

// WriteYAML writes b in the format ParseYAML reads.
func WriteYAML(w io.Writer, b *Blueprint) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlDocument{Name: b.Name, Steps: b.Steps}); err != nil {
		return err
	}
	return enc.Close()
}
