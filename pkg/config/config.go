package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Narrator  NarratorConfig  `yaml:"narrator"`
	Proximity ProximityConfig `yaml:"proximity"`
	Planner   PlannerConfig   `yaml:"planner"`
	Vehicle   VehicleConfig   `yaml:"vehicle"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Images    ImagesConfig    `yaml:"images"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LLMConfig holds settings for the content-generation provider.
type LLMConfig struct {
	Provider string            `yaml:"provider"` // "gemini", "mock"
	Model    string            `yaml:"model"`
	Key      string            `yaml:"key"`
	Profiles map[string]string `yaml:"profiles"` // Map of intent -> model
}

// NarratorConfig holds settings for the tour orchestrator.
type NarratorConfig struct {
	PollInterval Duration `yaml:"poll_interval"`

	TeaserDuration     Duration `yaml:"teaser_duration"`
	DetailedDuration   Duration `yaml:"detailed_duration"`
	GuidedTourDuration Duration `yaml:"guided_tour_duration"`

	TeaserTimeout   Duration `yaml:"teaser_timeout"`
	DetailedTimeout Duration `yaml:"detailed_timeout"`
	VoiceTimeout    Duration `yaml:"voice_timeout"`

	TimingWindowLower Duration `yaml:"timing_window_lower"`
	TimingWindowUpper Duration `yaml:"timing_window_upper"`

	ImagePrefetchLimit int `yaml:"image_prefetch_limit"`
}

// ProximityConfig holds the tunable phase-transition thresholds.
type ProximityConfig struct {
	TeaserWindow   Duration `yaml:"teaser_window"`
	DetailWindow   Duration `yaml:"detail_window"`
	ArrivalRadius  Distance `yaml:"arrival_radius"`
	ApproachRadius Distance `yaml:"approach_radius"`
	RecedingPolls  int      `yaml:"receding_polls"`
}

// PlannerConfig holds EV tour-planning settings.
type PlannerConfig struct {
	SafetyBuffer        float64  `yaml:"safety_buffer"`  // extra battery margin fraction
	ChargeTarget        float64  `yaml:"charge_target"`  // battery fraction after a charging stop
	ChargerSearchRadius Distance `yaml:"charger_search_radius"`
	ChargeDwell         Duration `yaml:"charge_dwell"`
}

// VehicleConfig describes the configured vehicle.
type VehicleConfig struct {
	Name                  string   `yaml:"name"`
	BatteryCapacityKWh    float64  `yaml:"battery_capacity_kwh"`
	ConsumptionKWhPerMile float64  `yaml:"consumption_kwh_per_mile"`
	RatedRangeMiles       float64  `yaml:"rated_range_miles"`
	ChargingPorts         []string `yaml:"charging_ports"`
}

// TelemetryConfig holds settings for the vehicle telemetry source.
type TelemetryConfig struct {
	Provider string         `yaml:"provider"` // "drive" (simulated), future: obd
	Drive    DriveSimConfig `yaml:"drive"`
}

// DriveSimConfig holds settings for the simulated drive.
type DriveSimConfig struct {
	StartLat     float64 `yaml:"start_lat"`
	StartLon     float64 `yaml:"start_lon"`
	SpeedMph     float64 `yaml:"speed_mph"`
	TemperatureF float64 `yaml:"temperature_f"`
}

// ImagesConfig holds image-fetch settings.
type ImagesConfig struct {
	Endpoint string `yaml:"endpoint"` // override for testing
	Language string `yaml:"language"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/roadtrip.db",
		},
		Server: ServerConfig{
			Address: "localhost:1931",
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash-lite",
			Key:      "",
			Profiles: map[string]string{
				"teaser":      "gemini-2.5-flash-lite",
				"detailed":    "gemini-2.5-flash-lite",
				"guided_tour": "gemini-2.5-flash",
			},
		},
		Narrator: NarratorConfig{
			PollInterval:       Duration(5 * time.Second),
			TeaserDuration:     Duration(30 * time.Second),
			DetailedDuration:   Duration(90 * time.Second),
			GuidedTourDuration: Duration(180 * time.Second),
			TeaserTimeout:      Duration(30 * time.Second),
			DetailedTimeout:    Duration(45 * time.Second),
			VoiceTimeout:       Duration(10 * time.Second),
			TimingWindowLower:  Duration(60 * time.Second),
			TimingWindowUpper:  Duration(120 * time.Second),
			ImagePrefetchLimit: 3,
		},
		Proximity: ProximityConfig{
			TeaserWindow:   Duration(4 * time.Minute),
			DetailWindow:   Duration(90 * time.Second),
			ArrivalRadius:  Distance(0.1),
			ApproachRadius: Distance(2.0),
			RecedingPolls:  3,
		},
		Planner: PlannerConfig{
			SafetyBuffer:        0.15,
			ChargeTarget:        0.80,
			ChargerSearchRadius: Distance(50),
			ChargeDwell:         Duration(30 * time.Minute),
		},
		Vehicle: VehicleConfig{
			Name:                  "Generic EV",
			BatteryCapacityKWh:    62,
			ConsumptionKWhPerMile: 0.268,
			RatedRangeMiles:       231,
			ChargingPorts:         []string{"CCS"},
		},
		Telemetry: TelemetryConfig{
			Provider: "drive",
			Drive: DriveSimConfig{
				StartLat:     40.0150,
				StartLon:     -105.2705,
				SpeedMph:     45,
				TemperatureF: 65,
			},
		},
		Images: ImagesConfig{
			Language: "en",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		// Load from Env if empty (as a fallback, but do NOT save back to disk)
		if cfg.LLM.Key == "" {
			if key := os.Getenv("GEMINI_API_KEY"); key != "" {
				cfg.LLM.Key = key
			}
		}

		return cfg, nil
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# RoadTrip Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: mi (miles), km, m (meters), ft

`)
	data = append(header, data...)

	// Inject comments for Enum fields
	reProvider := regexp.MustCompile(`(?m)^(\s+)provider: gemini`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: gemini, mock\n${1}provider: gemini"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
