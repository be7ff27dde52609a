package tool

import (
	"flag"

	"github.com/SANATANIxAPI/pic/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override HTTP API port")
	flag.StringVar(&cfg.UseBotToken, "useBotToken", "", "override Telegram bot token")
	flag.StringVar(&cfg.UseModelPath, "useModelPath", "", "override super-resolution model path")
	flag.StringVar(&cfg.UseTempDir, "useTempDir", "", "override temp folder for uploaded photos")
	flag.BoolVar(&cfg.SkipBot, "skipBot", false, "serve the HTTP API only, without the Telegram bot")
	flag.Parse()
	return cfg
}
