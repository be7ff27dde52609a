package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/SANATANIxAPI/pic/api"
	"github.com/SANATANIxAPI/pic/bot"
	"github.com/SANATANIxAPI/pic/enhance"
	"github.com/SANATANIxAPI/pic/telegram"
	"github.com/SANATANIxAPI/pic/tool"
	"github.com/SANATANIxAPI/pic/upscale"
)

func main() {
	cfg := tool.SetFlags()
	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if cfg.UsePort > 0 {
		appCfg.Port = cfg.UsePort
	}
	if cfg.UseBotToken != "" {
		appCfg.BotToken = cfg.UseBotToken
	}
	if cfg.UseModelPath != "" {
		appCfg.ModelPath = cfg.UseModelPath
	}
	if cfg.UseTempDir != "" {
		appCfg.TempDir = cfg.UseTempDir
	}

	// initialize logger
	tool.InitLogger()
	if cfg.Log == "" {
		tool.DefaultLogger.SetLevel(log.DebugLevel)
	} else {
		switch strings.ToLower(cfg.Log) {
		case "dev":
			tool.DefaultLogger.SetLevel(log.DebugLevel)
		case "prod":
			tool.DefaultLogger.SetLevel(log.InfoLevel)
		case "none":
			tool.DefaultLogger.SetLevel(log.FatalLevel)
		default:
			tool.DefaultLogger.Warnf("Unknown log mode %q, using debug level", cfg.Log)
			tool.DefaultLogger.SetLevel(log.DebugLevel)
		}
	}

	// The engine is required: without the model the 4k tier would fail on
	// every call, so refuse to start instead.
	engine, err := upscale.New(upscale.Config{
		ModelPath: appCfg.ModelPath,
		TileSize:  appCfg.TileSize,
		TilePad:   appCfg.TilePad,
	})
	if err != nil {
		tool.DefaultLogger.Fatalf("Super-resolution engine init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := enhance.NewPipeline(engine, appCfg.JpegQuality)

	apiServer := api.NewServer(appCfg.Port, pipeline)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
		}
	}()

	switch {
	case cfg.SkipBot:
		tool.DefaultLogger.Info("Telegram bot disabled by flag, serving HTTP API only")
	case appCfg.BotToken == "":
		tool.DefaultLogger.Warn("No bot_token configured, serving HTTP API only")
	default:
		client, err := telegram.New(appCfg.BotToken)
		if err != nil {
			tool.DefaultLogger.Fatalf("Telegram bot startup failed: %v", err)
		}
		ttl := time.Duration(appCfg.SessionTTLSeconds) * time.Second
		sessions := bot.NewSessionStore(ttl)
		b := bot.New(client, pipeline, sessions, appCfg.TempDir, ttl)
		go b.Run(ctx)
		tool.DefaultLogger.Info("Telegram bot started")
	}

	<-ctx.Done()
	tool.DefaultLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		tool.DefaultLogger.Warnf("API server shutdown: %v", err)
	}
	engine.Close()
}
