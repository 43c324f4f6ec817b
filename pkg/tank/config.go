package tank

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gwillem/linetank/pkg/linefollow"
	"github.com/gwillem/linetank/pkg/movement"
)

const DefaultConfigFile = "tank.json"

// Config holds the tank configuration
type Config struct {
	Tracks         TracksConfig    `json:"tracks"`
	Sensor         SensorConfig    `json:"sensor"`
	Follow         FollowConfig    `json:"follow"`
	Departure      DepartureConfig `json:"departure"`
	IdleIntervalMs int             `json:"idle_interval_ms,omitempty"`
}

// TracksConfig holds the servo bus port and track calibration
type TracksConfig struct {
	Port        string      `json:"port"`
	Calibration Calibration `json:"calibration,omitempty"`
}

// IsCalibrated returns true if both tracks have calibration data
func (t *TracksConfig) IsCalibrated() bool {
	for _, name := range AllTracks() {
		if _, ok := t.Calibration[name]; !ok {
			return false
		}
	}
	return true
}

// SensorConfig holds the IR sensor array serial link
type SensorConfig struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate,omitempty"`
}

// FollowConfig holds line following tuning
type FollowConfig struct {
	Hz               int     `json:"hz,omitempty"`
	Speed            float64 `json:"speed,omitempty"`
	Gain             float64 `json:"gain,omitempty"`
	SearchSpeed      float64 `json:"search_speed,omitempty"`
	LostTimeoutMs    int     `json:"lost_timeout_ms,omitempty"`
	SegmentTimeoutMs int     `json:"segment_timeout_ms,omitempty"`
}

// DepartureConfig holds node departure timing
type DepartureConfig struct {
	Speed   float64 `json:"speed,omitempty"`
	ClearMs int     `json:"clear_ms,omitempty"`
	TurnMs  int     `json:"turn_ms,omitempty"`
}

// WithDefaults fills unset fields with defaults
func (c *Config) WithDefaults() *Config {
	if c.Sensor.BaudRate == 0 {
		c.Sensor.BaudRate = 115200
	}
	if c.Follow.Hz == 0 {
		c.Follow.Hz = 50
	}
	if c.Follow.Speed == 0 {
		c.Follow.Speed = 40
	}
	if c.Follow.Gain == 0 {
		c.Follow.Gain = 0.8
	}
	if c.Follow.SearchSpeed == 0 {
		c.Follow.SearchSpeed = 30
	}
	if c.Follow.LostTimeoutMs == 0 {
		c.Follow.LostTimeoutMs = 2000
	}
	if c.Departure.Speed == 0 {
		c.Departure.Speed = 40
	}
	if c.Departure.ClearMs == 0 {
		c.Departure.ClearMs = 300
	}
	if c.Departure.TurnMs == 0 {
		c.Departure.TurnMs = 700
	}
	if c.IdleIntervalMs == 0 {
		c.IdleIntervalMs = 1000
	}
	return c
}

// FollowerConfig converts the follow section for the line follower
func (c *Config) FollowerConfig() linefollow.Config {
	return linefollow.Config{
		Hz:             c.Follow.Hz,
		Speed:          c.Follow.Speed,
		Gain:           c.Follow.Gain,
		SearchSpeed:    c.Follow.SearchSpeed,
		LostTimeout:    ms(c.Follow.LostTimeoutMs),
		SegmentTimeout: ms(c.Follow.SegmentTimeoutMs),
	}
}

// MovementConfig converts the departure section for the movement routines
func (c *Config) MovementConfig() movement.Config {
	return movement.Config{
		Speed: c.Departure.Speed,
		Clear: ms(c.Departure.ClearMs),
		Turn:  ms(c.Departure.TurnMs),
	}
}

// IdleInterval is the pause between checks while in the error state
func (c *Config) IdleInterval() time.Duration {
	return ms(c.IdleIntervalMs)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return cfg.WithDefaults(), nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
