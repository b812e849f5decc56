package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath overrides the default config path.
const EnvPath = "WITCHWOOD_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config/witchwood.toml"

type Config struct {
	Game    GameConfig    `toml:"game"`
	Physics PhysicsConfig `toml:"physics"`
	Spawn   SpawnConfig   `toml:"spawn"`
	AI      AIConfig      `toml:"ai"`
	Player  PlayerConfig  `toml:"player"`
	Logging LoggingConfig `toml:"logging"`
}

type GameConfig struct {
	Map       string        `toml:"map"`
	Kinds     string        `toml:"kinds"` // optional entity kind table
	Seed      string        `toml:"seed"`  // hashed into the RNG seed
	TickRate  time.Duration `toml:"tick_rate"`
	MaxFrames int           `toml:"max_frames"` // 0 = until caught or interrupted
	Rounds    int           `toml:"rounds"`     // games played before quitting
}

type PhysicsConfig struct {
	Gravity          float32 `toml:"gravity"` // along Y, negative is down
	Timestep         float32 `toml:"timestep"`
	SolverIterations int     `toml:"solver_iterations"`
	MaxCCDSubsteps   int     `toml:"max_ccd_substeps"`
	CellSize         float32 `toml:"cell_size"`
}

type SpawnConfig struct {
	Trees       int `toml:"trees"`
	Balls       int `toml:"balls"`
	Witches     int `toml:"witches"`
	EdgeMargin  int `toml:"edge_margin"`
	MaxAttempts int `toml:"max_attempts"`
}

type AIConfig struct {
	ChaseSpeed      float32    `toml:"chase_speed"`
	PatrolSpeed     float32    `toml:"patrol_speed"`
	CatchDistance   float32    `toml:"catch_distance"`
	ArrivalDistance float32    `toml:"arrival_distance"`
	PatrolExtent    float32    `toml:"patrol_extent"`
	PatrolCenter    [2]float32 `toml:"patrol_center"` // X, Z
	ScriptsDir      string     `toml:"scripts_dir"`   // empty disables Lua hooks
}

type PlayerConfig struct {
	Speed            float32 `toml:"speed"`
	MouseSensitivity float32 `toml:"mouse_sensitivity"`
	LinearDamping    float32 `toml:"linear_damping"` // overrides the player kind when > 0
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Path returns the config path, honouring EnvPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults. name is only used in errors.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Game.Map == "":
		return fmt.Errorf("game.map is required")
	case c.Game.TickRate <= 0:
		return fmt.Errorf("game.tick_rate must be positive")
	case c.Physics.Timestep <= 0:
		return fmt.Errorf("physics.timestep must be positive")
	case c.Spawn.Trees < 0 || c.Spawn.Balls < 0 || c.Spawn.Witches < 0:
		return fmt.Errorf("spawn counts must not be negative")
	case c.Spawn.MaxAttempts <= 0:
		return fmt.Errorf("spawn.max_attempts must be positive")
	case c.AI.CatchDistance <= 0:
		return fmt.Errorf("ai.catch_distance must be positive")
	case c.AI.ArrivalDistance <= 0:
		return fmt.Errorf("ai.arrival_distance must be positive")
	case c.Player.LinearDamping < 0:
		return fmt.Errorf("player.linear_damping must not be negative")
	case c.AI.PatrolExtent < 0:
		return fmt.Errorf("ai.patrol_extent must not be negative")
	case c.Player.Speed <= 0:
		return fmt.Errorf("player.speed must be positive")
	}
	return nil
}

// Default is the shipped tuning. Load starts from it.
func Default() *Config {
	return &Config{
		Game: GameConfig{
			Map:      "assets/maps/forest.yaml",
			Kinds:    "assets/kinds.yaml",
			Seed:     "witchwood",
			TickRate: time.Second / 60,
			Rounds:   1,
		},
		Physics: PhysicsConfig{
			Gravity:          -9.81,
			Timestep:         1.0 / 60.0,
			SolverIterations: 4,
			MaxCCDSubsteps:   16,
			CellSize:         4,
		},
		Spawn: SpawnConfig{
			Trees:       25,
			Balls:       4,
			Witches:     1,
			EdgeMargin:  2,
			MaxAttempts: 64,
		},
		AI: AIConfig{
			ChaseSpeed:      3.0,
			PatrolSpeed:     5.0,
			CatchDistance:   1.0,
			ArrivalDistance: 1.0,
			PatrolExtent:    10,
			ScriptsDir:      "scripts",
		},
		Player: PlayerConfig{
			Speed:            4.0,
			MouseSensitivity: 0.003,
			LinearDamping:    4.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
