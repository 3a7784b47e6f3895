package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/lightcurve/internal/timegrid"
	"github.com/banshee-data/lightcurve/internal/transit"
)

// DefaultConfigPath is the path to the canonical parameter defaults file.
const DefaultConfigPath = "config/lightcurve.defaults.json"

// maxFileSize bounds the size of a parameter file.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// ParamsConfig is the file shape of a light-curve run: the planet and
// orbit, the limb-darkening law, and how to sample it. Omitted fields fall
// back to the Get* defaults, which describe WASP-50 b.
type ParamsConfig struct {
	// Orbit and planet
	T0  *float64 `json:"t0,omitempty" yaml:"t0,omitempty"`   // time of inferior conjunction
	Per *float64 `json:"per,omitempty" yaml:"per,omitempty"` // orbital period
	Rp  *float64 `json:"rp,omitempty" yaml:"rp,omitempty"`   // planet radius in stellar radii
	A   *float64 `json:"a,omitempty" yaml:"a,omitempty"`     // semi-major axis in stellar radii
	Inc *float64 `json:"inc,omitempty" yaml:"inc,omitempty"` // inclination in degrees
	Ecc *float64 `json:"ecc,omitempty" yaml:"ecc,omitempty"`
	W   *float64 `json:"w,omitempty" yaml:"w,omitempty"` // argument of periastron in degrees

	// Limb darkening
	U        []float64 `json:"u,omitempty" yaml:"u,omitempty"`
	LimbDark *string   `json:"limb_dark,omitempty" yaml:"limb_dark,omitempty"`
	LDTable  *string   `json:"ld_table,omitempty" yaml:"ld_table,omitempty"` // overrides u with the table's quadratic means

	// Sampling
	Grid        *string  `json:"grid,omitempty" yaml:"grid,omitempty"` // "start:end:n"
	Workers     *int     `json:"workers,omitempty" yaml:"workers,omitempty"`
	ExpTime     *float64 `json:"exp_time,omitempty" yaml:"exp_time,omitempty"`
	Supersample *int     `json:"supersample,omitempty" yaml:"supersample,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyParamsConfig returns a ParamsConfig with all fields unset.
func EmptyParamsConfig() *ParamsConfig {
	return &ParamsConfig{}
}

// DefaultParamsConfig returns a ParamsConfig with every field set to its
// default.
func DefaultParamsConfig() *ParamsConfig {
	c := EmptyParamsConfig()
	return &ParamsConfig{
		T0:          ptrFloat64(c.GetT0()),
		Per:         ptrFloat64(c.GetPer()),
		Rp:          ptrFloat64(c.GetRp()),
		A:           ptrFloat64(c.GetA()),
		Inc:         ptrFloat64(c.GetInc()),
		Ecc:         ptrFloat64(c.GetEcc()),
		W:           ptrFloat64(c.GetW()),
		U:           c.GetU(),
		LimbDark:    ptrString(string(c.GetLimbDark())),
		Grid:        ptrString(c.GetGrid().String()),
		Workers:     ptrInt(c.GetWorkers()),
		Supersample: ptrInt(c.GetSupersample()),
	}
}

// LoadParamsConfig loads a ParamsConfig from a JSON or YAML file.
// The file must have a .json, .yaml or .yml extension and be under 1MB.
// Fields omitted from the file keep their defaults, so partial configs are
// safe.
func LoadParamsConfig(path string) (*ParamsConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json or .yaml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyParamsConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching upwards from the
// working directory. Panics if the file cannot be loaded; meant for tests.
func MustLoadDefaultConfig() *ParamsConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/lightcurve/ and deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadParamsConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the sampling settings and the physical parameters the
// config resolves to.
func (c *ParamsConfig) Validate() error {
	if c.LimbDark != nil && !transit.Law(*c.LimbDark).IsValid() {
		return fmt.Errorf("limb_dark must be one of %s, got %q", transit.ValidLawsString(), *c.LimbDark)
	}

	if c.Grid != nil && *c.Grid != "" {
		if _, err := timegrid.ParseSpec(*c.Grid); err != nil {
			return fmt.Errorf("invalid grid '%s': %w", *c.Grid, err)
		}
	}

	if c.Workers != nil && *c.Workers < transit.AutoWorkers {
		return fmt.Errorf("workers must be >= %d, got %d", transit.AutoWorkers, *c.Workers)
	}

	if c.Supersample != nil && *c.Supersample < 1 {
		return fmt.Errorf("supersample must be positive, got %d", *c.Supersample)
	}

	if c.GetSupersample() > 1 && c.GetExpTime() <= 0 {
		return fmt.Errorf("exp_time must be positive when supersample > 1, got %f", c.GetExpTime())
	}

	// Coefficients from a table are only known after it is read.
	if c.LDTable != nil && *c.LDTable != "" {
		return nil
	}
	return transit.Validate(c.Params())
}

// Params resolves the config to transit parameters.
func (c *ParamsConfig) Params() transit.Params {
	return transit.NewParams(c.GetT0(), c.GetPer(), c.GetRp(), c.GetA(), c.GetInc(), c.GetEcc(), c.GetW(),
		c.GetLimbDark(), c.GetU()...)
}

// GetT0 returns the t0 value or the default.
func (c *ParamsConfig) GetT0() float64 {
	if c.T0 == nil {
		return 0
	}
	return *c.T0
}

// GetPer returns the per value or the default.
func (c *ParamsConfig) GetPer() float64 {
	if c.Per == nil {
		return 1.955 // days
	}
	return *c.Per
}

// GetRp returns the rp value or the default.
func (c *ParamsConfig) GetRp() float64 {
	if c.Rp == nil {
		return 0.1368
	}
	return *c.Rp
}

// GetA returns the a value or the default.
func (c *ParamsConfig) GetA() float64 {
	if c.A == nil {
		return 7.326
	}
	return *c.A
}

// GetInc returns the inc value or the default.
func (c *ParamsConfig) GetInc() float64 {
	if c.Inc == nil {
		return 84.74
	}
	return *c.Inc
}

// GetEcc returns the ecc value or the default.
func (c *ParamsConfig) GetEcc() float64 {
	if c.Ecc == nil {
		return 0.009
	}
	return *c.Ecc
}

// GetW returns the w value or the default.
func (c *ParamsConfig) GetW() float64 {
	if c.W == nil {
		return 44
	}
	return *c.W
}

// GetU returns a copy of the limb-darkening coefficients or the default
// for the configured law.
func (c *ParamsConfig) GetU() []float64 {
	if c.U != nil {
		return append([]float64(nil), c.U...)
	}
	switch c.GetLimbDark() {
	case transit.LawLinear:
		return []float64{0.6}
	case transit.LawUniform:
		return []float64{}
	default:
		return []float64{0.4, 0.26}
	}
}

// GetLimbDark returns the limb_dark value or the default.
func (c *ParamsConfig) GetLimbDark() transit.Law {
	if c.LimbDark == nil || *c.LimbDark == "" {
		return transit.LawQuadratic
	}
	return transit.Law(*c.LimbDark)
}

// GetLDTable returns the ld_table path, empty when unset.
func (c *ParamsConfig) GetLDTable() string {
	if c.LDTable == nil {
		return ""
	}
	return *c.LDTable
}

// GetGrid returns the parsed grid or the default window around t0.
func (c *ParamsConfig) GetGrid() timegrid.Spec {
	if c.Grid != nil && *c.Grid != "" {
		if spec, err := timegrid.ParseSpec(*c.Grid); err == nil {
			return spec
		}
	}
	t0 := c.GetT0()
	return timegrid.Spec{Start: t0 - 0.07, End: t0 + 0.07, N: 1000}
}

// GetWorkers returns the workers value or the default.
func (c *ParamsConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetExpTime returns the exp_time value, zero when unset.
func (c *ParamsConfig) GetExpTime() float64 {
	if c.ExpTime == nil {
		return 0
	}
	return *c.ExpTime
}

// GetSupersample returns the supersample value or the default.
func (c *ParamsConfig) GetSupersample() int {
	if c.Supersample == nil {
		return 1
	}
	return *c.Supersample
}
