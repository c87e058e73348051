package bot

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"audio_bot/config"
	"audio_bot/internal/controller/telegram"
	"audio_bot/internal/metrics"
	"audio_bot/internal/processing"
	"audio_bot/internal/server"
	"audio_bot/pkg/audio_converter"
	"audio_bot/pkg/httpserver"
	"audio_bot/pkg/logger"

	ttrace "audio_bot/internal/telemetry/trace"
)

var name = "audio-bot"

// NewBot ...
func NewBot(cfg *config.Config) *Bot {
	bot := &Bot{}

	bot.InitGlobalProvider(name, cfg)

	return bot
}

type Bot struct {
	traceProviderCloseFn []ttrace.CloseFunc
}

// Run starts the Telegram poller and the ops HTTP server and blocks until
// SIGINT/SIGTERM, a server failure or the end of the update stream.
func (b *Bot) Run(ctx context.Context, cfg *config.Config) error {
	l := logger.New(cfg.Log.Level)

	if err := checkBinaries(cfg.Audio.FFmpegPath, "ffprobe"); err != nil {
		return err
	}
	if cfg.Audio.TempDir != "" {
		if err := os.MkdirAll(cfg.Audio.TempDir, 0o700); err != nil {
			return fmt.Errorf("bot - Run - temp dir: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	client, err := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.Debug)
	if err != nil {
		return fmt.Errorf("bot - Run - telegram.NewClient: %w", err)
	}

	converter := audio_converter.NewAudioConverter(
		audio_converter.FFmpegPath(cfg.Audio.FFmpegPath),
		audio_converter.MP3Bitrate(cfg.Audio.MP3Bitrate),
		audio_converter.PreservePitch(cfg.Audio.PreservePitch),
	)
	usecase := processing.NewAudioUsecase(client, converter, cfg.Audio.TempDir, m, l)
	poller := telegram.NewPoller(client, telegram.NewRouter(usecase, l), cfg.Telegram.PollTimeout, l)

	var serverNotify <-chan error
	var httpServer *httpserver.Server
	if cfg.Server.Port != "" {
		httpServer = httpserver.New(server.NewRouter(cfg.App.Name, cfg.App.Version, reg), httpserver.Port(cfg.Server.Port))
		serverNotify = httpServer.Notify()
		l.Info("ops server serving on port %s", cfg.Server.Port)
	}

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()

	pollDone := make(chan error, 1)
	go func() {
		pollDone <- poller.Run(pollCtx)
	}()

	l.Info("audio bot started")

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	var runErr error
	select {
	case s := <-interrupt:
		l.Info("bot - Run - signal: " + s.String())
	case err := <-serverNotify:
		runErr = fmt.Errorf("bot - Run - httpServer.Notify: %w", err)
		l.Error(runErr)
	case err := <-pollDone:
		pollDone <- err
		if err != nil && err != context.Canceled {
			runErr = fmt.Errorf("bot - Run - poller: %w", err)
			l.Error(runErr)
		}
	}

	stopPolling()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	select {
	case <-pollDone:
	case <-ctxShutDown.Done():
		l.Warn("bot - Run - poller did not stop in time")
	}

	// Shutdown
	if httpServer != nil {
		if err := httpServer.Shutdown(); err != nil {
			l.Error(fmt.Errorf("bot - Run - httpServer.Shutdown: %w", err))
		}
	}

	for _, closeFn := range b.traceProviderCloseFn {
		if err := closeFn(ctxShutDown); err != nil {
			log.Error().Err(err).Msgf("Unable to close trace provider")
		}
	}

	log.Printf("bot exited properly")

	return runErr
}

func checkBinaries(names ...string) error {
	for _, n := range names {
		if _, err := exec.LookPath(n); err != nil {
			return fmt.Errorf("bot - Run - %s not found: %w", n, err)
		}
	}
	return nil
}
