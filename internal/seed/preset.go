package seed

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yml
var builtinPresets embed.FS

// Preset describes how much demo data to generate.
type Preset struct {
	Name string `yaml:"name"`
	// Seed makes a run reproducible; zero picks a time-based seed.
	Seed            int64   `yaml:"seed"`
	Users           int     `yaml:"users"`
	Admins          int     `yaml:"admins"`
	PostsPerUser    int     `yaml:"posts_per_user"`
	FollowsPerUser  int     `yaml:"follows_per_user"`
	LikesPerPost    int     `yaml:"likes_per_post"`
	CommentsPerPost int     `yaml:"comments_per_post"`
	ReportedRatio   float64 `yaml:"reported_ratio"`
	ReportsPerPost  int     `yaml:"reports_per_post"`
	ResolvedRatio   float64 `yaml:"resolved_ratio"`
	ProfessionalPct int     `yaml:"professional_pct"`
	MaxDays         int     `yaml:"max_days"`
	Password        string  `yaml:"password"`
}

// DefaultPassword is used for every seeded account unless a preset overrides it.
const DefaultPassword = "password123"

// Validate checks that the preset describes a satisfiable dataset.
func (p *Preset) Validate() error {
	var errs []error
	if p.Users < 1 {
		errs = append(errs, errors.New("users must be at least 1"))
	}
	if p.Admins < 0 || p.Admins > p.Users {
		errs = append(errs, errors.New("admins must be between 0 and users"))
	}
	if p.PostsPerUser < 0 || p.FollowsPerUser < 0 || p.LikesPerPost < 0 || p.CommentsPerPost < 0 || p.ReportsPerPost < 0 {
		errs = append(errs, errors.New("per-entity counts must not be negative"))
	}
	if p.ReportedRatio < 0 || p.ReportedRatio > 1 {
		errs = append(errs, errors.New("reported_ratio must be within [0, 1]"))
	}
	if p.ResolvedRatio < 0 || p.ResolvedRatio > 1 {
		errs = append(errs, errors.New("resolved_ratio must be within [0, 1]"))
	}
	if p.ProfessionalPct < 0 || p.ProfessionalPct > 100 {
		errs = append(errs, errors.New("professional_pct must be within [0, 100]"))
	}
	return errors.Join(errs...)
}

func (p *Preset) withDefaults() {
	if p.Password == "" {
		p.Password = DefaultPassword
	}
	if p.MaxDays <= 0 {
		p.MaxDays = 30
	}
}

// ParsePreset decodes a YAML preset. Unknown keys are rejected.
func ParsePreset(raw []byte) (*Preset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var p Preset
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	p.withDefaults()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preset %q: %w", p.Name, err)
	}
	return &p, nil
}

// LoadPreset resolves name as a built-in preset or, failing that, as a path
// to a YAML file.
func LoadPreset(name string) (*Preset, error) {
	raw, err := builtinPresets.ReadFile("presets/" + name + ".yml")
	if err != nil {
		raw, err = os.ReadFile(filepath.Clean(name))
		if err != nil {
			return nil, fmt.Errorf("preset %q not found (built-in: %s)", name, strings.Join(PresetNames(), ", "))
		}
	}
	return ParsePreset(raw)
}

// PresetNames lists the built-in presets.
func PresetNames() []string {
	entries, err := builtinPresets.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yml"))
	}
	sort.Strings(names)
	return names
}
