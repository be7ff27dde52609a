package types

// AppConfig is the persisted configuration, loaded from config.yaml.
type AppConfig struct {
	BotToken          string `yaml:"bot_token"`
	Port              int    `yaml:"port"`
	ModelPath         string `yaml:"model_path"`
	TileSize          int    `yaml:"tile_size"`
	TilePad           int    `yaml:"tile_pad"`
	TempDir           string `yaml:"temp_dir"`
	SessionTTLSeconds int    `yaml:"session_ttl_seconds"`
	JpegQuality       int    `yaml:"jpeg_quality"`
}

// Config holds runtime overrides from CLI flags.
type Config struct {
	Log           string
	UseConfigPath string
	UsePort       int
	UseBotToken   string
	UseModelPath  string
	UseTempDir    string
	SkipBot       bool
}
