package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir string        `yaml:"data_dir" json:"data_dir"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	View    ViewConfig    `yaml:"view" json:"view"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

type StorageConfig struct {
	// Driver is one of memory, file, sqlite.
	Driver string `yaml:"driver" json:"driver"`
	// Key names the slot holding the task array.
	Key string `yaml:"key" json:"key"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

type ViewConfig struct {
	WeekStart     string `yaml:"week_start" json:"week_start"`
	DefaultStatus string `yaml:"default_status" json:"default_status"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "data"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Key == "" {
		c.Storage.Key = "todo_tasks"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:42069"
	}
	if c.View.WeekStart == "" {
		c.View.WeekStart = "sunday"
	}
	if c.View.DefaultStatus == "" {
		c.View.DefaultStatus = "all"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Load reads the YAML file at path, then applies environment overrides and
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	c.ApplyEnv()
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Driver) {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	if _, err := c.WeekStart(); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.View.DefaultStatus)) {
	case "", "all", "pending", "completed":
	default:
		return fmt.Errorf("view.default_status: expected all, pending or completed, got %q", c.View.DefaultStatus)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: expected json or text, got %q", c.Log.Format)
	}
	return nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekStart is the first day of the weekly time bucket.
func (c *Config) WeekStart() (time.Weekday, error) {
	s := strings.ToLower(strings.TrimSpace(c.View.WeekStart))
	if len(s) >= 3 {
		for name, d := range weekdays {
			if strings.HasPrefix(name, s) {
				return d, nil
			}
		}
	}
	return time.Sunday, fmt.Errorf("view.week_start: unknown weekday %q", c.View.WeekStart)
}
