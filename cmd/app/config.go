package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Agrid-Dev/envelope/internal/envelope"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys.
const EnvPrefix = "ENVELOPE_"

type Config struct {
	DeviceID    string            `koanf:"device_id"`
	Controllers ControllersConfig `koanf:"controllers"`
	Room        RoomConfig        `koanf:"room"`
	Envelope    EnvelopeConfig    `koanf:"envelope"`
	Log         LogConfig         `koanf:"log"`
}

type ControllersConfig struct {
	HTTP   HTTPConfig   `koanf:"http"`
	MQTT   MQTTConfig   `koanf:"mqtt"`
	Modbus ModbusConfig `koanf:"modbus"`
}

type HTTPConfig struct {
	Enabled        bool    `koanf:"enabled"`
	Addr           string  `koanf:"addr"`
	CalculateRate  float64 `koanf:"calculate_rate"` // requests per second per client, 0 disables
	CalculateBurst int     `koanf:"calculate_burst"`
}

type MQTTConfig struct {
	Enabled         bool          `koanf:"enabled"`
	BrokerURL       string        `koanf:"broker_url"`
	ClientID        string        `koanf:"client_id"`
	BaseTopic       string        `koanf:"base_topic"`
	QoS             byte          `koanf:"qos"`
	RetainSnapshot  bool          `koanf:"retain_snapshot"`
	PublishInterval time.Duration `koanf:"publish_interval"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
}

type ModbusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
	UnitID  byte   `koanf:"unit_id"`
}

type RoomConfig struct {
	Center CenterConfig `koanf:"center"`
	Length float64      `koanf:"length"`
	Width  float64      `koanf:"width"`
	Height float64      `koanf:"height"`
}

type CenterConfig struct {
	X float64 `koanf:"x"`
	Y float64 `koanf:"y"`
	Z float64 `koanf:"z"`
}

// EnvelopeConfig holds the calculation inputs. Presets, when named, override
// the matching explicit values.
type EnvelopeConfig struct {
	WindowPercentage       float64 `koanf:"window_percentage"`
	ExternalTemperature    float64 `koanf:"external_temperature"`
	DesiredTemperature     float64 `koanf:"desired_temperature"`
	WallUValue             float64 `koanf:"wall_u_value"`
	WindowUValue           float64 `koanf:"window_u_value"`
	RoofUValue             float64 `koanf:"roof_u_value"`
	FloorUValue            float64 `koanf:"floor_u_value"`
	InternalGains          float64 `koanf:"internal_gains"`
	SolarGains             float64 `koanf:"solar_gains"`
	TargetHeatLoss         float64 `koanf:"target_heat_loss"`
	Optimize               bool    `koanf:"optimize"`
	VerticalOffset         string  `koanf:"vertical_offset"` // "top" | "symmetric"
	InsulationConductivity float64 `koanf:"insulation_conductivity"`

	WallPreset   string `koanf:"wall_preset"`
	WindowPreset string `koanf:"window_preset"`
	Climate      string `koanf:"climate"`
	Season       string `koanf:"season"` // "winter" | "summer"
}

type LogConfig struct {
	Level    string `koanf:"level"`
	Encoding string `koanf:"encoding"` // "json" | "console"
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	p := envelope.DefaultParams()
	return Config{
		DeviceID: "default",
		Controllers: ControllersConfig{
			HTTP: HTTPConfig{
				Enabled:        true,
				Addr:           ":8080",
				CalculateRate:  5,
				CalculateBurst: 10,
			},
			MQTT: MQTTConfig{
				BrokerURL:       "tcp://localhost:1883",
				PublishInterval: 1 * time.Second,
			},
			Modbus: ModbusConfig{
				Addr:   "127.0.0.1:1502",
				UnitID: 1,
			},
		},
		Room: RoomConfig{Length: 5, Width: 4, Height: 2.5},
		Envelope: EnvelopeConfig{
			WindowPercentage:       p.WindowPercentage,
			ExternalTemperature:    p.ExternalTemperature,
			DesiredTemperature:     p.DesiredTemperature,
			WallUValue:             p.WallUValue,
			WindowUValue:           p.WindowUValue,
			RoofUValue:             p.RoofUValue,
			FloorUValue:            p.FloorUValue,
			InternalGains:          p.InternalGains,
			SolarGains:             p.SolarGains,
			TargetHeatLoss:         p.TargetHeatLoss,
			Optimize:               p.Optimize,
			VerticalOffset:         p.VerticalOffset.String(),
			InsulationConductivity: p.InsulationConductivity,
			Season:                 envelope.SeasonWinter.String(),
		},
		Log: LogConfig{Level: "info", Encoding: "json"},
	}
}

// LoadConfig layers defaults, the optional config file and ENVELOPE_*
// environment variables, in that order. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return Config{}, err
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return envKeyTransform(strings.TrimPrefix(key, EnvPrefix)), value
		},
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if !cfg.Controllers.HTTP.Enabled && !cfg.Controllers.MQTT.Enabled && !cfg.Controllers.Modbus.Enabled {
		cfg.Controllers.HTTP.Enabled = true
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Config file missing → use defaults
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config extension %q", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// sections whose keys sit one level below the section name.
var sections = []string{"room", "envelope", "log"}

// envKeyTransform maps an environment key (prefix already removed) to a
// koanf path: CONTROLLERS_HTTP_ADDR -> controllers.http.addr,
// ENVELOPE_WALL_U_VALUE -> envelope.wall_u_value, DEVICE_ID -> device_id.
func envKeyTransform(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	if k == "" {
		return ""
	}

	if rest, ok := strings.CutPrefix(k, "controllers_"); ok {
		parts := strings.SplitN(rest, "_", 2)
		if len(parts) < 2 {
			return k
		}
		return "controllers." + parts[0] + "." + parts[1]
	}

	if axis, ok := strings.CutPrefix(k, "room_center_"); ok && axis != "" {
		return "room.center." + axis
	}
	for _, s := range sections {
		if rest, ok := strings.CutPrefix(k, s+"_"); ok && rest != "" {
			return s + "." + rest
		}
	}
	return k
}

func (c Config) EnvelopeRoom() envelope.Room {
	center := envelope.Point{X: c.Room.Center.X, Y: c.Room.Center.Y, Z: c.Room.Center.Z}
	return envelope.NewRoom(center, c.Room.Length, c.Room.Width, c.Room.Height)
}

// EnvelopeParams converts the envelope section, applying the climate and construction
// presets on top of the explicit values.
func (c Config) EnvelopeParams() (envelope.Params, error) {
	e := c.Envelope
	p := envelope.Params{
		WindowPercentage:       e.WindowPercentage,
		ExternalTemperature:    e.ExternalTemperature,
		DesiredTemperature:     e.DesiredTemperature,
		WallUValue:             e.WallUValue,
		WindowUValue:           e.WindowUValue,
		RoofUValue:             e.RoofUValue,
		FloorUValue:            e.FloorUValue,
		InternalGains:          e.InternalGains,
		SolarGains:             e.SolarGains,
		TargetHeatLoss:         e.TargetHeatLoss,
		Optimize:               e.Optimize,
		InsulationConductivity: e.InsulationConductivity,
	}

	if e.VerticalOffset != "" {
		m, err := envelope.ParseOffsetMode(e.VerticalOffset)
		if err != nil {
			return envelope.Params{}, err
		}
		p.VerticalOffset = m
	}
	if e.Climate != "" {
		season, err := envelope.ParseSeason(e.Season)
		if err != nil {
			return envelope.Params{}, err
		}
		if err := p.ApplyClimate(e.Climate, season); err != nil {
			return envelope.Params{}, err
		}
	}
	if e.WallPreset != "" {
		if err := p.ApplyWallPreset(e.WallPreset); err != nil {
			return envelope.Params{}, err
		}
	}
	if e.WindowPreset != "" {
		if err := p.ApplyWindowPreset(e.WindowPreset); err != nil {
			return envelope.Params{}, err
		}
	}
	return p, nil
}

// NewLogger builds a production zap logger; verbose forces debug level.
func NewLogger(cfg LogConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	if zc.Encoding == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
