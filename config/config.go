// Package config loads the start-up settings for the demo.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownFormat = errors.New("unknown config format")
	ErrInvalid       = errors.New("invalid config")
)

// Config uses the camelCase screenWidth/screenHeight/aaSamples/fullscreen
// key names in every format.
type Config struct {
	ScreenWidth  int     `json:"screenWidth" toml:"screenWidth" yaml:"screenWidth"`
	ScreenHeight int     `json:"screenHeight" toml:"screenHeight" yaml:"screenHeight"`
	AASamples    int     `json:"aaSamples" toml:"aaSamples" yaml:"aaSamples"`
	Fullscreen   bool    `json:"fullscreen" toml:"fullscreen" yaml:"fullscreen"`
	Title        string  `json:"title" toml:"title" yaml:"title"`
	FPS          float32 `json:"fps" toml:"fps" yaml:"fps"`
	FOV          float32 `json:"fov" toml:"fov" yaml:"fov"`
	LogLevel     string  `json:"logLevel" toml:"logLevel" yaml:"logLevel"`
	WatchAssets  bool    `json:"watchAssets" toml:"watchAssets" yaml:"watchAssets"`
	AssetDir     string  `json:"assetDir" toml:"assetDir" yaml:"assetDir"`
}

func Default() Config {
	return Config{
		ScreenWidth:  800,
		ScreenHeight: 600,
		AASamples:    4,
		Title:        "Scene Renderer",
		FPS:          60,
		FOV:          math32.Pi / 4,
		LogLevel:     "info",
		AssetDir:     "assets",
	}
}

// Load reads path, picking the decoder from its extension. Fields the file
// leaves out keep their Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &c)
	case ".toml":
		err = toml.Unmarshal(data, &c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	default:
		return Config{}, fmt.Errorf("%q: %w", ext, ErrUnknownFormat)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Find loads the first of config.json, config.toml and config.yaml present in
// dir. With none present it returns Default and an empty path.
func Find(dir string) (Config, string, error) {
	for _, name := range []string{"config.json", "config.toml", "config.yaml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		c, err := Load(path)
		return c, path, err
	}
	return Default(), "", nil
}

func (c Config) Validate() error {
	var errs []error
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		errs = append(errs, fmt.Errorf("screen size %dx%d: %w", c.ScreenWidth, c.ScreenHeight, ErrInvalid))
	}
	if c.AASamples < 0 {
		errs = append(errs, fmt.Errorf("aaSamples %d: %w", c.AASamples, ErrInvalid))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps %v: %w", c.FPS, ErrInvalid))
	}
	return errors.Join(errs...)
}
