// showcase: backend of the SYNTH-01 model viewer.
// Serves the viewer state, chat and speech over HTTP and websockets.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-synth/internal/config"
	"github.com/teslashibe/go-synth/internal/log"
	"github.com/teslashibe/go-synth/pkg/chat"
	"github.com/teslashibe/go-synth/pkg/clipboard"
	"github.com/teslashibe/go-synth/pkg/hub"
	"github.com/teslashibe/go-synth/pkg/memory"
	"github.com/teslashibe/go-synth/pkg/protocol"
	"github.com/teslashibe/go-synth/pkg/relay"
	"github.com/teslashibe/go-synth/pkg/scene"
	"github.com/teslashibe/go-synth/pkg/speech"
	"github.com/teslashibe/go-synth/pkg/tts"
	"github.com/teslashibe/go-synth/pkg/viewer"
	"github.com/teslashibe/go-synth/pkg/web"
)

var version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config and PORT)")
	preset := flag.String("preset", "", "Scene preset: fixed or dev (overrides config scene)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	engine := flag.String("speech", "", "Speech engine: browser or cloud")
	accessLog := flag.Bool("access-log", false, "Log every HTTP request")
	devMode := flag.Bool("dev", false, "Start in dev mode")
	memoryFile := flag.String("memory", "", "File persisting the camera bookmark and collected layout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "showcase: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *memoryFile != "" {
		cfg.Server.MemoryFile = *memoryFile
	}
	if *engine != "" {
		cfg.Speech.Engine = *engine
	}
	if *preset != "" {
		p, ok := scene.GetPreset(*preset)
		if !ok {
			fmt.Fprintf(os.Stderr, "showcase: unknown preset %q\n", *preset)
			os.Exit(2)
		}
		cfg.Scene = p
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "showcase: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Logging.Level)
	logger := log.L()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger, *accessLog); err != nil {
		logger.Error("showcase stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, accessLog bool) error {
	logger.Info("starting showcase", "version", version, "chat", cfg.Chat.Backend, "speech", cfg.Speech.Engine)

	responder, err := chat.New(ctx, chat.WithConfig(cfg.Chat), chat.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if cfg.Chat.APIKey == "" {
		logger.Warn("no Gemini API key, chat replies will fail", "env", config.EnvGeminiKey)
	}

	poses := hub.New("pose", logger)
	pages := relay.New(logger)

	speechOpts := []speech.Option{speech.WithConfig(cfg.Speech.Config), speech.WithLogger(logger)}
	var eng speech.Engine = pages
	if cfg.Speech.Engine == config.EngineCloud {
		provider, err := tts.NewOpenAI(
			tts.WithAPIKey(cfg.Speech.OpenAIKey),
			tts.WithVoice(cfg.Speech.Voice),
			tts.WithModel(cfg.Speech.Model),
			tts.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("tts: %w", err)
		}
		defer provider.Close()
		eng = speech.NewCloud(provider, poses, speechOpts...)
	}

	seq, err := speech.NewSequencer(eng, speechOpts...)
	if err != nil {
		return fmt.Errorf("speech: %w", err)
	}

	mem := memory.New()
	if cfg.Server.MemoryFile != "" {
		mem, err = memory.NewWithFile(cfg.Server.MemoryFile)
		if err != nil {
			return fmt.Errorf("memory: %w", err)
		}
		defer mem.Close()
	}

	v := viewer.New(viewer.Deps{
		Session:   chat.NewSession(responder, logger),
		Speech:    seq,
		Clipboard: clipboard.System{},
		Publisher: poses,
		Memory:    mem,
	},
		viewer.WithFrameRate(cfg.Server.FrameRate),
		viewer.WithPresets(cfg.Scene),
		viewer.WithRig(cfg.Rig),
		viewer.WithDevMode(cfg.Server.DevMode),
		viewer.WithRestoreLayout(cfg.Server.RestoreLayout),
		viewer.WithLogger(logger),
	)
	defer v.Close()

	pages.OnKey(func(_ string, k *protocol.KeyData) { v.HandleKey(*k) })
	pages.OnMouse(func(_ string, m *protocol.MouseData) { v.HandleMouse(*m) })
	pages.OnJoin(func(pageID string) {
		logger.Debug("page joined", "page", pageID)
		v.PublishState()
	})

	opts := []web.Option{
		web.WithVersion(version),
		web.WithStaticDir(cfg.Server.StaticDir),
		web.WithLogger(logger),
	}
	if accessLog {
		opts = append(opts, web.WithAccessLog(os.Stdout))
	}
	srv := web.NewServer(v, pages, poses, opts...)

	go poses.Run(ctx)
	go v.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		addr := cfg.Server.Addr()
		logger.Info("serving",
			"addr", addr,
			"page_ws", fmt.Sprintf("ws://localhost:%d/ws/page", cfg.Server.Port),
			"pose_ws", fmt.Sprintf("ws://localhost:%d/ws/pose", cfg.Server.Port),
		)
		errCh <- srv.Listen(addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
