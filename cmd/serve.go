package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/serisow/studio/handlers"
	"github.com/serisow/studio/layers"
	"github.com/serisow/studio/server"
	"github.com/serisow/studio/studio"
	"github.com/serisow/studio/thumbnail"
	"github.com/serisow/studio/video"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local panel API",
	Long:  "Serve the JSON API the studio panels use. It binds to localhost by default and keeps one in-memory session.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !rt.creds.Ready() {
		rt.logger.Warn("No GEMINI_API_KEY configured; select a key through the credential endpoint")
	}

	rt.media.StartCleanup(rt.cfg.MediaRetention, rt.cfg.CleanupEvery)
	defer rt.media.StopCleanup()

	cleanup := video.NewCleanupService(rt.logger, time.Hour)
	cleanup.StartCleanupSchedule(rt.cfg.CleanupEvery)
	defer cleanup.Stop()

	loader := &layers.SourceLoader{Media: rt.media}
	hub := rt.newHub()

	r := server.SetupRoutes(server.Handlers{
		Credential: handlers.NewCredentialHandler(rt.creds, rt.logger),
		Chat:       handlers.NewChatHandler(studio.NewChat(rt.client, rt.logger), rt.logger),
		Image:      handlers.NewImageHandler(layers.NewStudio(rt.client, loader, rt.logger), rt.logger),
		Video:      handlers.NewVideoHandler(hub, rt.media, rt.logger),
		Voice:      handlers.NewVoiceHandler(studio.NewVoiceLab(rt.client), rt.logger),
		Thumbnail: handlers.NewThumbnailHandler(
			thumbnail.NewSession(rt.fonts, loader, thumbnail.NewGenerator(rt.client, rt.logger)), rt.logger),
		Writer: handlers.NewWriterHandler(studio.NewWriter(rt.client), rt.logger),
		Theme:  handlers.NewThemeHandler(rt.prefs, rt.logger),
	})

	rt.logger.Info("Starting studio",
		slog.String("environment", rt.cfg.Environment),
		slog.Duration("poll_interval", rt.cfg.PollInterval))

	return server.Serve(ctx, server.Config{
		Addr:         rt.cfg.Addr(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}, server.SetupNegroni(r), rt.logger)
}
