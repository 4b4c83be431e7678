package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFile exports the variables of a .env file into the process
// environment without overriding variables that are already set. A missing
// file is ignored.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv() {
	setFromEnv(&c.DataDir, "TODO_DATA_DIR")
	setFromEnv(&c.Storage.Driver, "TODO_STORAGE_DRIVER")
	setFromEnv(&c.Storage.Key, "TODO_STORAGE_KEY")
	setFromEnv(&c.Server.Addr, "TODO_ADDR")
	setFromEnv(&c.View.WeekStart, "TODO_WEEK_START")
	setFromEnv(&c.Log.Level, "LOG_LEVEL")
	setFromEnv(&c.Log.Format, "LOG_FORMAT")
}

func setFromEnv(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}
