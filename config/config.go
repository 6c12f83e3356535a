// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
// It is built once by Load and treated as read-only afterwards.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Prey       SpeciesConfig    `yaml:"prey"`
	Predator   SpeciesConfig    `yaml:"predator"`
	Resource   ResourceConfig   `yaml:"resource"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Neural     NeuralConfig     `yaml:"neural"`
	Collision  CollisionConfig  `yaml:"collision"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Present    PresentConfig    `yaml:"present"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world bounds and the spatial partition resolution.
// The Presentation Layer must use the same values for its rendering grid.
type WorldConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	GridCols int     `yaml:"grid_cols"`
	GridRows int     `yaml:"grid_rows"`
}

// PopulationConfig holds seed counts, caps and the population floor rules.
type PopulationConfig struct {
	InitialPrey      int `yaml:"initial_prey"`
	InitialPredators int `yaml:"initial_predators"`
	MaxPrey          int `yaml:"max_prey"`      // 0 = unlimited
	MaxPredators     int `yaml:"max_predators"` // 0 = unlimited

	PredatorSpawnThreshold int `yaml:"predator_spawn_threshold"` // prey count that triggers predator injection
	PredatorCohort         int `yaml:"predator_cohort"`

	PreyRescueMaxPredators int `yaml:"prey_rescue_max_predators"`
	PreyRescueThreshold    int `yaml:"prey_rescue_threshold"`
	PreyCohort             int `yaml:"prey_cohort"`

	HallOfFameSize int `yaml:"hall_of_fame_size"` // per species; 0 disables brain reseeding
}

// SpeciesConfig holds the per-species tunables shared by prey and predators.
// Predator-only fields are zero for prey.
type SpeciesConfig struct {
	MaxSpeed             float64 `yaml:"max_speed"`
	MinSpeed             float64 `yaml:"min_speed"` // cruise floor applied after the speed ramp
	Acceleration         float64 `yaml:"acceleration"`
	TurnAngle            float64 `yaml:"turn_angle"`
	MaxEnergy            float64 `yaml:"max_energy"`
	InitialEnergy        float64 `yaml:"initial_energy"`
	EnergyGain           float64 `yaml:"energy_gain"` // forage amount (prey) or kill reward (predator)
	EnergyToReproduce    float64 `yaml:"energy_to_reproduce"`
	ReproductionCooldown int     `yaml:"reproduction_cooldown"` // ticks
	BaseCost             float64 `yaml:"base_cost"`             // energy per tick
	MoveCost             float64 `yaml:"move_cost"`             // energy per tick per unit velocity
	FOVAngle             float64 `yaml:"fov_angle"`             // full cone angle, radians
	FOVDistance          float64 `yaml:"fov_distance"`
	CollisionRadius      float64 `yaml:"collision_radius"`
	OffspringJitter      float64 `yaml:"offspring_jitter"`

	CaptureRadius     float64 `yaml:"capture_radius,omitempty"`
	EatingCooldown    int     `yaml:"eating_cooldown,omitempty"`
	EatingSpeedFactor float64 `yaml:"eating_speed_factor,omitempty"`
}

// ResourceConfig holds resource field parameters.
type ResourceConfig struct {
	MaxEnergy   float64 `yaml:"max_energy"`
	RegenRate   float64 `yaml:"regen_rate"`   // energy per tick per cell
	InitialFill float64 `yaml:"initial_fill"` // fraction of capacity at world creation
	Patchiness  float64 `yaml:"patchiness"`   // 0 = uniform, 1 = capacity fully noise-shaped
	NoiseScale  float64 `yaml:"noise_scale"`  // noise frequency per grid cell
}

// MutationConfig holds reproduction-time mutation parameters.
type MutationConfig struct {
	Chance          float64 `yaml:"chance"`      // probability an offspring mutates at all
	WeightRate      float64 `yaml:"weight_rate"` // per-weight mutation probability
	WeightStep      float64 `yaml:"weight_step"` // uniform(-step, step) perturbation
	ColorStep       int     `yaml:"color_step"`
	FOVAngleStep    float64 `yaml:"fov_angle_step"`
	MinFOVAngle     float64 `yaml:"min_fov_angle"`
	FOVDistanceStep float64 `yaml:"fov_distance_step"`
	MinFOVDistance  float64 `yaml:"min_fov_distance"`
	MaxFOVDistance  float64 `yaml:"max_fov_distance"`
}

// NeuralConfig holds controller dimensions.
type NeuralConfig struct {
	HiddenSize int `yaml:"hidden_size"`
}

// CollisionConfig holds same-species repulsion settings.
type CollisionConfig struct {
	Enabled    bool `yaml:"enabled"`
	BruteForce bool `yaml:"brute_force"` // full scan instead of the 3x3 grid block
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow     int `yaml:"stats_window"` // ticks per stats window
	PerfWindow      int `yaml:"perf_window"`
	BookmarkHistory int `yaml:"bookmark_history"`
}

// PresentConfig holds Presentation Layer bridge settings.
type PresentConfig struct {
	BroadcastEvery int `yaml:"broadcast_every"` // ticks between frames
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CellWidth   float64 // World.Width / GridCols
	CellHeight  float64 // World.Height / GridRows
	MaxDistance float64 // half the diagonal of one grid cell; sensing normalizer
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Clone returns an independent copy, for callers that need to tweak values
// before handing the config to a new simulation.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Refresh recomputes derived values after fields were edited on a clone.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.CellWidth = c.World.Width / float64(c.World.GridCols)
	c.Derived.CellHeight = c.World.Height / float64(c.World.GridRows)
	c.Derived.MaxDistance = math.Hypot(c.Derived.CellWidth, c.Derived.CellHeight) / 2
}

// Validate checks invariants the simulation relies on.
func (c *Config) Validate() error {
	w := c.World
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("%w: world size must be positive, got %vx%v", ErrInvalid, w.Width, w.Height)
	}
	if w.GridCols <= 0 || w.GridRows <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive, got %dx%d", ErrInvalid, w.GridCols, w.GridRows)
	}

	p := c.Population
	for name, v := range map[string]int{
		"initial_prey":              p.InitialPrey,
		"initial_predators":         p.InitialPredators,
		"max_prey":                  p.MaxPrey,
		"max_predators":             p.MaxPredators,
		"predator_spawn_threshold":  p.PredatorSpawnThreshold,
		"predator_cohort":           p.PredatorCohort,
		"prey_rescue_max_predators": p.PreyRescueMaxPredators,
		"prey_rescue_threshold":     p.PreyRescueThreshold,
		"prey_cohort":               p.PreyCohort,
		"hall_of_fame_size":         p.HallOfFameSize,
	} {
		if v < 0 {
			return fmt.Errorf("%w: population.%s must not be negative", ErrInvalid, name)
		}
	}

	// Neighbour queries scan only the 3x3 block around an agent's cell, so
	// no sensing or contact range may exceed one cell.
	reach := math.Min(w.Width/float64(w.GridCols), w.Height/float64(w.GridRows))

	if err := c.Prey.validate("prey", false, reach); err != nil {
		return err
	}
	if err := c.Predator.validate("predator", true, reach); err != nil {
		return err
	}

	r := c.Resource
	if r.MaxEnergy <= 0 {
		return fmt.Errorf("%w: resource.max_energy must be positive", ErrInvalid)
	}
	if r.RegenRate < 0 {
		return fmt.Errorf("%w: resource.regen_rate must not be negative", ErrInvalid)
	}
	if !unit(r.InitialFill) || !unit(r.Patchiness) {
		return fmt.Errorf("%w: resource.initial_fill and resource.patchiness must be in [0,1]", ErrInvalid)
	}

	m := c.Mutation
	if !unit(m.Chance) || !unit(m.WeightRate) {
		return fmt.Errorf("%w: mutation.chance and mutation.weight_rate must be in [0,1]", ErrInvalid)
	}
	if m.WeightStep < 0 || m.ColorStep < 0 || m.FOVAngleStep < 0 || m.FOVDistanceStep < 0 {
		return fmt.Errorf("%w: mutation steps must not be negative", ErrInvalid)
	}
	if m.MinFOVDistance < 0 || m.MaxFOVDistance < m.MinFOVDistance {
		return fmt.Errorf("%w: mutation fov distance bounds are inconsistent", ErrInvalid)
	}
	if m.MaxFOVDistance > reach {
		return fmt.Errorf("%w: mutation.max_fov_distance %v exceeds one grid cell (%v)", ErrInvalid, m.MaxFOVDistance, reach)
	}
	if m.MinFOVAngle < 0 || m.MinFOVAngle > 2*math.Pi {
		return fmt.Errorf("%w: mutation.min_fov_angle must be in [0, 2pi]", ErrInvalid)
	}

	if c.Neural.HiddenSize < 1 {
		return fmt.Errorf("%w: neural.hidden_size must be at least 1", ErrInvalid)
	}
	if c.Telemetry.StatsWindow < 1 {
		return fmt.Errorf("%w: telemetry.stats_window must be at least 1", ErrInvalid)
	}

	return nil
}

func (s SpeciesConfig) validate(name string, predator bool, reach float64) error {
	if s.MaxSpeed <= 0 {
		return fmt.Errorf("%w: %s.max_speed must be positive", ErrInvalid, name)
	}
	if s.MinSpeed < 0 || s.MinSpeed > s.MaxSpeed {
		return fmt.Errorf("%w: %s.min_speed must be in [0, max_speed]", ErrInvalid, name)
	}
	if s.MaxEnergy <= 0 {
		return fmt.Errorf("%w: %s.max_energy must be positive", ErrInvalid, name)
	}
	if s.InitialEnergy < 0 || s.InitialEnergy > s.MaxEnergy {
		return fmt.Errorf("%w: %s.initial_energy must be in [0, max_energy]", ErrInvalid, name)
	}
	if s.EnergyGain < 0 || s.EnergyToReproduce < 0 || s.BaseCost < 0 || s.MoveCost < 0 {
		return fmt.Errorf("%w: %s energy parameters must not be negative", ErrInvalid, name)
	}
	if s.Acceleration < 0 || s.TurnAngle < 0 || s.ReproductionCooldown < 0 {
		return fmt.Errorf("%w: %s motion parameters must not be negative", ErrInvalid, name)
	}
	if s.FOVAngle < 0 || s.FOVDistance < 0 || s.CollisionRadius < 0 || s.OffspringJitter < 0 {
		return fmt.Errorf("%w: %s sensing parameters must not be negative", ErrInvalid, name)
	}
	if s.FOVDistance > reach || s.CollisionRadius > reach {
		return fmt.Errorf("%w: %s.fov_distance and %s.collision_radius must not exceed one grid cell (%v)",
			ErrInvalid, name, name, reach)
	}
	if predator {
		if s.CaptureRadius > reach {
			return fmt.Errorf("%w: %s.capture_radius must not exceed one grid cell (%v)", ErrInvalid, name, reach)
		}
		if s.CaptureRadius < 0 || s.EatingCooldown < 0 {
			return fmt.Errorf("%w: %s capture parameters must not be negative", ErrInvalid, name)
		}
		if !unit(s.EatingSpeedFactor) {
			return fmt.Errorf("%w: %s.eating_speed_factor must be in [0,1]", ErrInvalid, name)
		}
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
