// Package config reads the simulation parameter file: the per-type particle
// and wall physical properties, the contact model selections and the
// position-reconstruction settings. Files use the INI dialect of gcfg, e.g.
//
//	[particle "0"]
//	youngs-modulus = 1e7
//	poisson-ratio = 0.3
//	restitution = 0.9
//	friction = 0.3
//	rolling-friction = 0.1
//	surface-energy = 0.01
//
//	[wall]
//	youngs-modulus = 1e9
//	...
//
//	[model]
//	rolling-resistance = constant_resistance
//	track-boundary-force = true
//	center-of-mass = 0
//	center-of-mass = 0
//	center-of-mass = 0.5
//
//	[reconstruction]
//	cost-function = relative
//	search-mode = local
//	proximity-level = 2
//	tolerance = 0.005
//
// Selection enums are validated at load time; an unknown method name
// refuses to build rather than failing mid-simulation.
package config

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/gcfg.v1"

	"github.com/notargets/DEMKernel/dem"
	"github.com/notargets/DEMKernel/reconstruction"
)

// Material mirrors dem.Material for one particle type or the wall.
type Material struct {
	YoungsModulus   float64 `gcfg:"youngs-modulus"`
	PoissonRatio    float64 `gcfg:"poisson-ratio"`
	Restitution     float64
	Friction        float64
	RollingFriction float64 `gcfg:"rolling-friction"`
	SurfaceEnergy   float64 `gcfg:"surface-energy"`
}

// Model selects the contact model options.
type Model struct {
	RollingResistance  string    `gcfg:"rolling-resistance"`
	TrackBoundaryForce bool      `gcfg:"track-boundary-force"`
	CenterOfMass       []float64 `gcfg:"center-of-mass"` // three repeated values: x, y, z
}

// Reconstruction selects the position-reconstruction options.
type Reconstruction struct {
	CostFunction   string `gcfg:"cost-function"`
	SearchMode     string `gcfg:"search-mode"`
	ProximityLevel int    `gcfg:"proximity-level"`
	Tolerance      float64
}

// Config is the root of the parameter file.
type Config struct {
	Particle       map[string]*Material // subsection name is the type id
	Wall           Material
	Model          Model
	Reconstruction Reconstruction

	rolling      dem.RollingModel
	costFunction reconstruction.CostFunction
	searchMode   reconstruction.SearchMode
}

// Load parses and validates a parameter file.
func Load(filename string) (*Config, error) {
	cfg := &Config{}
	if err := gcfg.ReadFileInto(cfg, filename); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %v", filename, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Particle) == 0 {
		return fmt.Errorf("no [particle] sections defined")
	}
	for name := range c.Particle {
		id, err := strconv.Atoi(name)
		if err != nil {
			return fmt.Errorf("particle subsection %q is not a type id", name)
		}
		if id < 0 || id >= len(c.Particle) {
			return fmt.Errorf("particle type ids must be contiguous from 0, got %d of %d types",
				id, len(c.Particle))
		}
	}

	if c.Model.RollingResistance == "" {
		c.Model.RollingResistance = "no_resistance"
	}
	var err error
	if c.rolling, err = dem.ParseRollingModel(c.Model.RollingResistance); err != nil {
		return err
	}
	if n := len(c.Model.CenterOfMass); n != 0 && n != 3 {
		return fmt.Errorf("center-of-mass needs exactly three values, got %d", n)
	}

	if c.Reconstruction.CostFunction == "" {
		c.Reconstruction.CostFunction = "absolute"
	}
	if c.costFunction, err = reconstruction.ParseCostFunction(c.Reconstruction.CostFunction); err != nil {
		return err
	}
	if c.Reconstruction.SearchMode == "" {
		c.Reconstruction.SearchMode = "global"
	}
	if c.searchMode, err = reconstruction.ParseSearchMode(c.Reconstruction.SearchMode); err != nil {
		return err
	}
	if c.Reconstruction.ProximityLevel == 0 {
		c.Reconstruction.ProximityLevel = 1
	}
	if c.Reconstruction.ProximityLevel < 1 {
		return fmt.Errorf("proximity-level must be >= 1, got %d", c.Reconstruction.ProximityLevel)
	}
	if c.Reconstruction.Tolerance == 0 {
		c.Reconstruction.Tolerance = 0.005
	}
	if c.Reconstruction.Tolerance < 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.Reconstruction.Tolerance)
	}
	return nil
}

// PhysicalProperties assembles the dem property inputs, with particle
// types ordered by id.
func (c *Config) PhysicalProperties() dem.PhysicalProperties {
	props := dem.PhysicalProperties{
		Particle: make([]dem.Material, len(c.Particle)),
		Wall:     material(c.Wall),
	}
	for name, m := range c.Particle {
		id, _ := strconv.Atoi(name)
		props.Particle[id] = material(*m)
	}
	return props
}

func material(m Material) dem.Material {
	return dem.Material{
		YoungsModulus:   m.YoungsModulus,
		PoissonRatio:    m.PoissonRatio,
		Restitution:     m.Restitution,
		Friction:        m.Friction,
		RollingFriction: m.RollingFriction,
		SurfaceEnergy:   m.SurfaceEnergy,
	}
}

// RollingModel returns the validated rolling-resistance selection.
func (c *Config) RollingModel() dem.RollingModel {
	return c.rolling
}

// CenterOfMassPoint returns the boundary-torque reference point.
func (c *Config) CenterOfMassPoint() r3.Vec {
	if len(c.Model.CenterOfMass) != 3 {
		return r3.Vec{}
	}
	return r3.Vec{X: c.Model.CenterOfMass[0], Y: c.Model.CenterOfMass[1], Z: c.Model.CenterOfMass[2]}
}

// SolverConfig returns the validated reconstruction-solver settings.
func (c *Config) SolverConfig() reconstruction.Config {
	return reconstruction.Config{
		CostFunction:   c.costFunction,
		Search:         c.searchMode,
		ProximityLevel: c.Reconstruction.ProximityLevel,
		Tolerance:      c.Reconstruction.Tolerance,
	}
}
