package config

import (
	"errors"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultOrchestratorAddress = "127.0.0.1:7160"

type CoreConfig struct {
	Orchestrator CoreOrchestratorConfig `toml:"orchestrator"`
	Storage      CoreStorageConfig      `toml:"storage"`
	Logging      CoreLoggingConfig      `toml:"logging"`
	Debug        CoreDebugConfig        `toml:"debug"`
}

type CoreOrchestratorConfig struct {
	Address string `toml:"address"`
	Token   string `toml:"token"`
}

type CoreStorageConfig struct {
	Backend string `toml:"backend"`
}

type CoreLoggingConfig struct {
	Level string `toml:"level"`
}

type CoreDebugConfig struct {
	StreamDebug bool `toml:"stream_debug"`
}

type UIConfig struct {
	Transcript UITranscriptConfig `toml:"transcript"`
	Input      UIInputConfig      `toml:"input"`
}

type UITranscriptConfig struct {
	MaxLines int  `toml:"max_lines"`
	Follow   bool `toml:"follow"`
}

type UIInputConfig struct {
	MultilineMinHeight int `toml:"multiline_min_height"`
	MultilineMaxHeight int `toml:"multiline_max_height"`
}

func DefaultCoreConfig() CoreConfig {
	return CoreConfig{
		Orchestrator: CoreOrchestratorConfig{
			Address: defaultOrchestratorAddress,
		},
		Logging: CoreLoggingConfig{
			Level: "info",
		},
	}
}

func DefaultUIConfig() UIConfig {
	return UIConfig{
		Transcript: UITranscriptConfig{
			MaxLines: 2000,
			Follow:   true,
		},
		Input: UIInputConfig{
			MultilineMinHeight: 3,
			MultilineMaxHeight: 8,
		},
	}
}

func LoadCoreConfig() (CoreConfig, error) {
	path, err := CoreConfigPath()
	if err != nil {
		return CoreConfig{}, err
	}
	return loadCoreConfigFromPath(path)
}

func LoadUIConfig() (UIConfig, error) {
	path, err := UIConfigPath()
	if err != nil {
		return UIConfig{}, err
	}
	cfg := DefaultUIConfig()
	if err := readTOML(path, &cfg); err != nil {
		return UIConfig{}, err
	}
	return cfg, nil
}

func (c CoreConfig) OrchestratorAddress() string {
	addr := strings.TrimSpace(c.Orchestrator.Address)
	if addr == "" {
		return defaultOrchestratorAddress
	}
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultOrchestratorAddress
	}
	return addr
}

func (c CoreConfig) OrchestratorBaseURL() string {
	return "http://" + c.OrchestratorAddress()
}

func (c CoreConfig) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c CoreConfig) StorageBackend() string {
	return strings.ToLower(strings.TrimSpace(c.Storage.Backend))
}

func (c CoreConfig) StreamDebugEnabled() bool {
	return c.Debug.StreamDebug
}

func (c UIConfig) TranscriptMaxLines() int {
	if c.Transcript.MaxLines <= 0 {
		return 2000
	}
	return c.Transcript.MaxLines
}

func (c UIConfig) MultilineInputHeights() (minHeight, maxHeight int) {
	minHeight = c.Input.MultilineMinHeight
	maxHeight = c.Input.MultilineMaxHeight
	if minHeight <= 0 {
		minHeight = 3
	}
	if maxHeight <= 0 {
		maxHeight = 8
	}
	if maxHeight < minHeight {
		maxHeight = minHeight
	}
	return minHeight, maxHeight
}

func loadCoreConfigFromPath(path string) (CoreConfig, error) {
	cfg := DefaultCoreConfig()
	if err := readTOML(path, &cfg); err != nil {
		return CoreConfig{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
