package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/serisow/studio/config"
	"github.com/serisow/studio/credentials"
	"github.com/serisow/studio/logging"
	"github.com/serisow/studio/media"
	"github.com/serisow/studio/prefs"
	"github.com/serisow/studio/raster"
	"github.com/serisow/studio/services/genai_service"
	"github.com/serisow/studio/timeline"
	"github.com/serisow/studio/video"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "A local creative studio backed by the Gemini API",
	Long: `Studio runs the creative suite locally: chat, layered image editing, a video
timeline with scene extension, voice generation, thumbnails and writing tools.
Use "studio serve" for the panel API or the other commands from a terminal.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(thumbnailCmd)
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(themeCmd)
}

// runtime is what every command shares: configuration, the process logger
// and the stores that outlive a single request.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger
	closer *logging.DailyFileHandler
	creds  *credentials.Store
	media  *media.Store
	client *genai_service.Client
	fonts  *raster.FontRegistry
	prefs  *prefs.Store
	runner video.Runner
	tools  video.Tools
}

func newRuntime() (*runtime, error) {
	cfg := config.Load()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger, handler, err := logging.New(cfg.LogDir, level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	creds := credentials.NewStore(cfg.GeminiAPIKey)
	client, err := genai_service.NewClient(genai_service.Options{
		BaseURL: cfg.GeminiAPIURL,
		Keys:    creds,
		Logger:  logger,
	})
	if err != nil {
		handler.Close()
		return nil, err
	}

	fonts, err := raster.NewFontRegistry()
	if err != nil {
		handler.Close()
		return nil, err
	}
	if cfg.FontDir != "" {
		loaded, err := fonts.LoadDir(cfg.FontDir)
		if err != nil {
			logger.Warn("Failed to load extra fonts", slog.String("dir", cfg.FontDir), slog.String("error", err.Error()))
		} else {
			logger.Debug("Loaded extra fonts", slog.Int("count", loaded))
		}
	}

	return &runtime{
		cfg:    cfg,
		logger: logger,
		closer: handler,
		creds:  creds,
		media:  media.NewStore(logger),
		client: client,
		fonts:  fonts,
		prefs:  prefs.NewStore(cfg.PrefsPath, terminalTheme),
		runner: video.NewExecRunner(logger),
		tools:  video.ToolsFor(cfg.FFmpegPath),
	}, nil
}

func (rt *runtime) Close() {
	rt.closer.Close()
}

func (rt *runtime) newHub() *timeline.Hub {
	return timeline.NewHub(timeline.HubOptions{
		Client:       rt.client,
		Credentials:  rt.creds,
		Media:        rt.media,
		Capturer:     video.NewThumbnailer(rt.runner, rt.tools, rt.logger),
		Joiner:       video.NewExporter(rt.runner, rt.tools, rt.logger),
		PollInterval: rt.cfg.PollInterval,
		Logger:       rt.logger,
	})
}

// terminalTheme follows the terminal background until a theme is saved.
func terminalTheme() prefs.Theme {
	if lipgloss.HasDarkBackground() {
		return prefs.ThemeDark
	}
	return prefs.ThemeLight
}
