// Package scenario evaluates a batch of named room cases read from a YAML or
// JSON file.
package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Agrid-Dev/envelope/internal/envelope"
)

var (
	ErrNoCases       = errors.New("scenario has no cases")
	ErrDuplicateName = errors.New("duplicate case name")
	ErrInvalidCase   = errors.New("invalid case")
)

// File is a scenario document. Defaults apply to every case before the
// case's own values.
type File struct {
	Defaults Case   `yaml:"defaults" json:"defaults"`
	Cases    []Case `yaml:"cases" json:"cases"`
}

// Case describes one room. Params is keyed by parameter name
// (e.g. "wall_u_value"). Presets are applied after Params.
type Case struct {
	Name           string             `yaml:"name" json:"name"`
	Room           Dimensions         `yaml:"room" json:"room"`
	Params         map[string]float64 `yaml:"params" json:"params"`
	Optimize       *bool              `yaml:"optimize" json:"optimize"`
	VerticalOffset string             `yaml:"vertical_offset" json:"vertical_offset"`
	WallPreset     string             `yaml:"wall_preset" json:"wall_preset"`
	WindowPreset   string             `yaml:"window_preset" json:"window_preset"`
	Climate        string             `yaml:"climate" json:"climate"`
	Season         string             `yaml:"season" json:"season"`
}

// Dimensions in metres. Unset values inherit from the defaults; an explicit
// zero is kept and rejected when the case is calculated.
type Dimensions struct {
	Center *envelope.Point `yaml:"center" json:"center"`
	Length *float64        `yaml:"length" json:"length"`
	Width  *float64        `yaml:"width" json:"width"`
	Height *float64        `yaml:"height" json:"height"`
}

// Load reads a scenario file; the format follows the extension.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read scenario: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return File{}, fmt.Errorf("unsupported scenario extension %q", ext)
	}
}

func ParseYAML(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse scenario yaml: %w", err)
	}
	return f, f.validate()
}

func ParseJSON(data []byte) (File, error) {
	var f File
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("parse scenario json: %w", err)
	}
	return f, f.validate()
}

// validate checks the file structure and names unnamed cases "case-N".
func (f *File) validate() error {
	if len(f.Cases) == 0 {
		return ErrNoCases
	}
	seen := make(map[string]bool, len(f.Cases))
	for i := range f.Cases {
		c := &f.Cases[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("case-%d", i+1)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// Resolve merges the defaults and case i into calculator inputs.
func (f File) Resolve(i int) (envelope.Room, envelope.Params, error) {
	c := f.Cases[i]
	d := f.Defaults

	length, width, height := 5.0, 4.0, 2.5
	dims := Dimensions{Length: &length, Width: &width, Height: &height}
	dims = dims.merge(d.Room).merge(c.Room)
	center := envelope.Point{}
	if dims.Center != nil {
		center = *dims.Center
	}
	room := envelope.NewRoom(center, *dims.Length, *dims.Width, *dims.Height)

	p := envelope.DefaultParams()
	for _, layer := range []Case{d, c} {
		if err := layer.apply(&p); err != nil {
			return envelope.Room{}, envelope.Params{}, fmt.Errorf("%w %q: %w", ErrInvalidCase, c.Name, err)
		}
	}
	return room, p, nil
}

func (d Dimensions) merge(o Dimensions) Dimensions {
	if o.Center != nil {
		d.Center = o.Center
	}
	if o.Length != nil {
		d.Length = o.Length
	}
	if o.Width != nil {
		d.Width = o.Width
	}
	if o.Height != nil {
		d.Height = o.Height
	}
	return d
}

func (c Case) apply(p *envelope.Params) error {
	for k, v := range c.Params {
		name, err := envelope.ParseParam(k)
		if err != nil {
			return err
		}
		if err := p.Set(name, v); err != nil {
			return err
		}
	}
	if c.Optimize != nil {
		p.Optimize = *c.Optimize
	}
	if c.VerticalOffset != "" {
		m, err := envelope.ParseOffsetMode(c.VerticalOffset)
		if err != nil {
			return err
		}
		p.VerticalOffset = m
	}
	if c.Climate != "" {
		season := envelope.SeasonWinter
		if c.Season != "" {
			s, err := envelope.ParseSeason(c.Season)
			if err != nil {
				return err
			}
			season = s
		}
		if err := p.ApplyClimate(c.Climate, season); err != nil {
			return err
		}
	}
	if c.WallPreset != "" {
		if err := p.ApplyWallPreset(c.WallPreset); err != nil {
			return err
		}
	}
	if c.WindowPreset != "" {
		if err := p.ApplyWindowPreset(c.WindowPreset); err != nil {
			return err
		}
	}
	return nil
}
