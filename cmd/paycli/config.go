package main

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   string        `mapstructure:"server"`
	Token    string        `mapstructure:"token"`
	Redirect string        `mapstructure:"redirect"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`

	path string
}

// configPath resolves the file to read and write, $HOME/.paycli.yaml by default.
func configPath(path string) string {
	if path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".paycli.yaml"
	}
	return filepath.Join(home, ".paycli.yaml")
}

// LoadConfig reads the config file and overlays PAYCLI_* environment
// variables. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("interval", 5*time.Second)
	v.SetDefault("timeout", 5*time.Minute)
	v.SetEnvPrefix("PAYCLI")
	v.AutomaticEnv()
	for _, k := range []string{"server", "token", "redirect", "interval", "timeout"} {
		_ = v.BindEnv(k)
	}

	path = configPath(path)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, err
	}

	cfg := Config{path: path}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) requireToken() error {
	if c.Token == "" {
		return errors.New("not logged in: run `paycli login` or set PAYCLI_TOKEN")
	}
	return nil
}

// SaveToken stores token in the config file, keeping the other keys.
func (c *Config) SaveToken(token string) error {
	v := viper.New()
	v.SetConfigFile(c.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return err
	}
	v.Set("token", token)
	if v.GetString("server") == "" {
		v.Set("server", c.Server)
	}
	if err := v.WriteConfigAs(c.path); err != nil {
		return err
	}
	c.Token = token
	return os.Chmod(c.path, 0o600)
}

func isNotExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}
