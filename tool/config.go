package tool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SANATANIxAPI/pic/types"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	CurrentConfig types.AppConfig
)

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		BotToken:          "", // no default, bot stays offline until one is configured.
		Port:              8000,
		ModelPath:         "weights/realesrgan_x4plus.onnx",
		TileSize:          400, // bounds per-tile inference memory, not output quality.
		TilePad:           10,
		TempDir:           "temp",
		SessionTTLSeconds: 300,
		JpegQuality:       95,
	}
}

func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file doesn't exist, create with default values
			if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
			}
			DefaultLogger.Infof("Created new config file at %s", path)
			CurrentConfig = cfg
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}

	if cfg.TileSize <= 0 {
		cfg.TileSize = defaultConfig().TileSize
	}
	if cfg.TilePad < 0 {
		cfg.TilePad = defaultConfig().TilePad
	}
	if cfg.JpegQuality <= 0 || cfg.JpegQuality > 100 {
		cfg.JpegQuality = defaultConfig().JpegQuality
	}
	if cfg.SessionTTLSeconds <= 0 {
		cfg.SessionTTLSeconds = defaultConfig().SessionTTLSeconds
	}

	CurrentConfig = cfg
	return cfg, nil
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func GetCurrentConfig() *types.AppConfig {
	return &CurrentConfig
}
