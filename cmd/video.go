package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/serisow/studio/job"
	"github.com/serisow/studio/services/genai_service"
	"github.com/serisow/studio/timeline"
	"github.com/serisow/studio/tui"
	"github.com/serisow/studio/video"
	"github.com/spf13/cobra"
)

var videoCmd = &cobra.Command{
	Use:   "video <prompt>",
	Short: "Generate a video clip from the terminal",
	Long: `Submit a video generation, watch the progress estimate and save the clip.
The estimate is cosmetic; the command finishes when the service reports the job done.`,
	Args: cobra.ExactArgs(1),
	RunE: runVideoCommand,
}

var (
	videoAspect string
	videoImage  string
	videoOutput string
)

func init() {
	videoCmd.Flags().StringVarP(&videoAspect, "aspect", "a", "16:9", "Aspect ratio, 16:9 or 9:16")
	videoCmd.Flags().StringVarP(&videoImage, "image", "i", "", "Optional start image")
	videoCmd.Flags().StringVarP(&videoOutput, "output", "o", "scene.mp4", "Output file")
}

func runVideoCommand(cmd *cobra.Command, args []string) error {
	if videoAspect != "16:9" && videoAspect != "9:16" {
		return fmt.Errorf("unsupported aspect ratio %q", videoAspect)
	}
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	req := timeline.SceneRequest{Prompt: args[0], AspectRatio: videoAspect}
	if videoImage != "" {
		data, err := os.ReadFile(videoImage)
		if err != nil {
			return fmt.Errorf("failed to read start image: %w", err)
		}
		req.StartImage = &genai_service.InlineImage{Data: data, MimeType: http.DetectContentType(data)}
	}

	hub := rt.newHub()
	if err := hub.StartScene(req); err != nil {
		return err
	}

	status, err := tui.Watch(cmd.Context(), hub, "Generating: "+args[0], rt.prefs.Theme(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if status.State == job.StateFailed {
		if status.Error != nil {
			return errors.New(status.Error.Message)
		}
		return errors.New("video generation failed")
	}

	scene, ok := hub.Timeline().Selected()
	if !ok {
		return errors.New("video generation finished without a scene")
	}
	blob, ok := rt.media.Get(scene.MediaRef)
	if !ok {
		return errors.New("generated clip is no longer available")
	}
	if err := os.WriteFile(videoOutput, blob.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", videoOutput, err)
	}

	seconds, err := video.ProbeDuration(cmd.Context(), rt.runner, rt.tools, blob.Data)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", videoOutput)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%.1fs)\n", videoOutput, seconds)
	return nil
}
