package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultStoryTail     = 6
	defaultLogLevel      = "info"
	defaultHookTimeoutMS = 2000
)

type Config struct {
	DataPath  string
	StatePath string
	DBPath    string
	HooksPath string
	LogPath   string
	Settings  Settings
}

// Settings is the optional <data>/settings.yaml.
type Settings struct {
	AutoStartOnSwitch bool   `yaml:"auto_start_on_switch"`
	StoryTail         int    `yaml:"story_tail"`
	LogLevel          string `yaml:"log_level"`
	Seed              int64  `yaml:"seed"`
	HookTimeoutMS     int    `yaml:"hook_timeout_ms"`
}

func DefaultSettings() Settings {
	return Settings{
		AutoStartOnSwitch: true,
		StoryTail:         defaultStoryTail,
		LogLevel:          defaultLogLevel,
		HookTimeoutMS:     defaultHookTimeoutMS,
	}
}

func New(dataPath string) (Config, error) {
	if dataPath == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	settings, err := loadSettings(filepath.Join(dataPath, "settings.yaml"))
	if err != nil {
		return Config{}, err
	}
	return Config{
		DataPath:  dataPath,
		StatePath: filepath.Join(dataPath, "state.json"),
		DBPath:    filepath.Join(dataPath, "flowrpg.db"),
		HooksPath: filepath.Join(dataPath, "hooks", "hooks.json"),
		LogPath:   filepath.Join(dataPath, "flowrpg.log"),
		Settings:  settings,
	}, nil
}

// DefaultDataPath resolves $FLOWRPG_HOME, then the user config dir.
func DefaultDataPath() string {
	if env := strings.TrimSpace(os.Getenv("FLOWRPG_HOME")); env != "" {
		return env
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".flowrpg"
	}
	return filepath.Join(dir, "flowrpg")
}

func loadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if settings.StoryTail <= 0 {
		settings.StoryTail = defaultStoryTail
	}
	if settings.HookTimeoutMS <= 0 {
		settings.HookTimeoutMS = defaultHookTimeoutMS
	}
	switch strings.ToLower(settings.LogLevel) {
	case "trace", "debug", "info", "warn", "error":
		settings.LogLevel = strings.ToLower(settings.LogLevel)
	default:
		settings.LogLevel = defaultLogLevel
	}
	return settings, nil
}
