// Package config loads the bouncer configuration from a TOML file, then
// applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vladimirvolkov/bouncer/internal/game"
	"github.com/vladimirvolkov/bouncer/internal/surface"
)

type Game struct {
	InitialBallSpeed     float64 `toml:"initial_ball_speed"`     // pixels per ms
	IntervalBetweenBalls int64   `toml:"interval_between_balls"` // ms
	MaxBalls             int     `toml:"max_balls"`
	Seed                 int64   `toml:"seed"` // 0 = time based
}

type Board struct {
	Width           int `toml:"width"`
	Height          int `toml:"height"`
	BallSize        int `toml:"ball_size"`
	PaddleLength    int `toml:"paddle_length"`
	PaddleThickness int `toml:"paddle_thickness"`
}

type Server struct {
	Port           string   `toml:"port"`
	StaticDir      string   `toml:"static_dir"`
	AllowedOrigins []string `toml:"allowed_origins"`
	TickRate       int      `toml:"tick_rate"`
	MaxRooms       int      `toml:"max_rooms"`
	MaxConnsPerIP  int      `toml:"max_conns_per_ip"`
	MsgRate        int      `toml:"msg_rate"` // messages per second per IP
}

type Config struct {
	Game   Game   `toml:"game"`
	Board  Board  `toml:"board"`
	Server Server `toml:"server"`
}

// Default is tuned for a browser window in CSS pixels.
func Default() Config {
	return Config{
		Game: Game{
			InitialBallSpeed:     0.003,
			IntervalBetweenBalls: 3000,
		},
		Board: Board{
			Width:           960,
			Height:          540,
			BallSize:        20,
			PaddleLength:    120,
			PaddleThickness: 12,
		},
		Server: Server{
			Port:          "8080",
			StaticDir:     "./web",
			TickRate:      game.TickRate,
			MaxRooms:      100,
			MaxConnsPerIP: 4,
			MsgRate:       240,
		},
	}
}

// Terminal rescales Default for a character grid, where a cell is roughly
// twice as tall as it is wide. Positions are whole cells rounded per tick, so
// the grid ticks slower: at 20 Hz every launch heading moves at least one
// cell per tick on its major axis.
func Terminal() Config {
	c := Default()
	c.Game.InitialBallSpeed = 0.0006
	c.Server.TickRate = 20
	c.Board = Board{
		Width:           80,
		Height:          24,
		BallSize:        1,
		PaddleLength:    10,
		PaddleThickness: 1,
	}
	return c
}

// Load reads path over base (skipped when path is empty), applies env
// overrides and validates.
func Load(path string, base Config) (Config, error) {
	c := base
	if path != "" {
		md, err := toml.DecodeFile(path, &c)
		if err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return Config{}, fmt.Errorf("config: unknown keys in %s: %v", path, undec)
		}
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if port := getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if dir := getenv("STATIC_DIR"); dir != "" {
		c.Server.StaticDir = dir
	}
	if origins := getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}
	if v := getenv("BOUNCER_BALL_SPEED"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: BOUNCER_BALL_SPEED: %w", err)
		}
		c.Game.InitialBallSpeed = f
	}
	if v := getenv("BOUNCER_BALL_INTERVAL"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: BOUNCER_BALL_INTERVAL: %w", err)
		}
		c.Game.IntervalBetweenBalls = n
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Game.InitialBallSpeed <= 0 {
		errs = append(errs, fmt.Errorf("game.initial_ball_speed must be positive, got %v", c.Game.InitialBallSpeed))
	}
	if c.Game.IntervalBetweenBalls < 0 {
		errs = append(errs, fmt.Errorf("game.interval_between_balls must not be negative, got %d", c.Game.IntervalBetweenBalls))
	}
	if c.Game.MaxBalls < 0 {
		errs = append(errs, fmt.Errorf("game.max_balls must not be negative, got %d", c.Game.MaxBalls))
	}
	if c.Board.BallSize <= 0 || c.Board.PaddleLength <= 0 || c.Board.PaddleThickness <= 0 {
		errs = append(errs, errors.New("board sizes must be positive"))
	}
	if c.Server.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("server.tick_rate must be positive, got %d", c.Server.TickRate))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// GameConfig is the simulation tuning.
func (c Config) GameConfig() game.Config {
	return game.Config{
		InitialBallSpeed:     c.Game.InitialBallSpeed,
		IntervalBetweenBalls: c.Game.IntervalBetweenBalls,
		MaxBalls:             c.Game.MaxBalls,
	}
}

// Rand returns the launch-angle source; a zero seed means time based.
func (c Config) Rand() *rand.Rand {
	seed := c.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (c Config) Dimensions() surface.Dimensions {
	return surface.Dimensions{
		BallSize:        c.Board.BallSize,
		PaddleLength:    c.Board.PaddleLength,
		PaddleThickness: c.Board.PaddleThickness,
	}
}

func (c Config) Viewport() game.Size {
	return game.Size{Width: c.Board.Width, Height: c.Board.Height}
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
