// Package presetfile reads shift preset definitions from TOML files.
//
// A file holds one or more presets:
//
//	[[preset]]
//	name = "Night"
//
//	  [[preset.segment]]
//	  no = 1
//	  start = "22:00"
//	  end = "03:00"
//	  crosses_midnight = true
//	  late_grace_minutes = 5
package presetfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/pelletier/go-toml/v2"
)

var ErrNoPresets = errors.New("preset file defines no presets")

type File struct {
	Presets []Preset `toml:"preset"`
}

type Preset struct {
	Name     string    `toml:"name"`
	TeamID   string    `toml:"team_id"`
	Segments []Segment `toml:"segment"`
}

type Segment struct {
	No               int    `toml:"no"`
	Start            string `toml:"start"`
	End              string `toml:"end"`
	CrossesMidnight  bool   `toml:"crosses_midnight"`
	LateGraceMinutes int    `toml:"late_grace_minutes"`
}

// Load reads and parses the file at path.
func Load(path string) ([]shift.CreateShiftPresetRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset file: %w", err)
	}
	return Parse(data)
}

// Parse decodes preset definitions. Unknown keys are rejected.
func Parse(data []byte) ([]shift.CreateShiftPresetRequest, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("parsing preset file at %d:%d: %w", row, col, err)
		}
		return nil, fmt.Errorf("parsing preset file: %w", err)
	}
	if len(f.Presets) == 0 {
		return nil, ErrNoPresets
	}

	reqs := make([]shift.CreateShiftPresetRequest, 0, len(f.Presets))
	for _, p := range f.Presets {
		req := shift.CreateShiftPresetRequest{Name: p.Name}
		if p.TeamID != "" {
			teamID := p.TeamID
			req.TeamID = &teamID
		}
		for _, s := range p.Segments {
			req.Segments = append(req.Segments, shift.CreateShiftSegmentRequest{
				SegmentNo:        s.No,
				StartTime:        s.Start,
				EndTime:          s.End,
				CrossesMidnight:  s.CrossesMidnight,
				LateGraceMinutes: s.LateGraceMinutes,
			})
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Validate runs each preset's request validation and reports failures by preset.
func Validate(reqs []shift.CreateShiftPresetRequest) error {
	var errs []error
	for i := range reqs {
		if err := reqs[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("preset %d (%q): %w", i+1, reqs[i].Name, err))
		}
	}
	return errors.Join(errs...)
}

// Find returns the preset called name, or the only preset when name is empty.
func Find(reqs []shift.CreateShiftPresetRequest, name string) (shift.CreateShiftPresetRequest, error) {
	if name == "" {
		if len(reqs) == 1 {
			return reqs[0], nil
		}
		return shift.CreateShiftPresetRequest{}, fmt.Errorf("file defines %d presets, choose one with --name", len(reqs))
	}
	for _, r := range reqs {
		if r.Name == name {
			return r, nil
		}
	}
	return shift.CreateShiftPresetRequest{}, fmt.Errorf("preset %q not found in file", name)
}
