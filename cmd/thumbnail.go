package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/serisow/studio/layers"
	"github.com/serisow/studio/raster"
	"github.com/serisow/studio/thumbnail"
	"github.com/spf13/cobra"
)

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail",
	Short: "Render a 1280x720 thumbnail from local images",
	Long: `Render a thumbnail offline. The background and optional overlay are read from
disk and the title and subtitle are styled by the chosen template.`,
	Args: cobra.NoArgs,
	RunE: runThumbnailCommand,
}

var (
	thumbTemplate       string
	thumbTitle          string
	thumbSubtitle       string
	thumbBackground     string
	thumbOverlay        string
	thumbOverlaySize    float64
	thumbOverlayOpacity float64
	thumbOverlayX       float64
	thumbOverlayY       float64
	thumbOutput         string
)

func init() {
	defaults := thumbnail.DefaultOverlay()
	thumbnailCmd.Flags().StringVarP(&thumbTemplate, "template", "t", thumbnail.DefaultTemplate, "Template: minimalist, bold, gaming, modern, retro or abstract")
	thumbnailCmd.Flags().StringVar(&thumbTitle, "title", "My Awesome Video", "Title text")
	thumbnailCmd.Flags().StringVar(&thumbSubtitle, "subtitle", "You Won't Believe This!", "Subtitle text")
	thumbnailCmd.Flags().StringVarP(&thumbBackground, "background", "b", "", "Background image (required)")
	thumbnailCmd.Flags().StringVar(&thumbOverlay, "overlay", "", "Optional overlay image")
	thumbnailCmd.Flags().Float64Var(&thumbOverlaySize, "overlay-size", defaults.Size, "Overlay width in percent of the frame")
	thumbnailCmd.Flags().Float64Var(&thumbOverlayOpacity, "overlay-opacity", defaults.Opacity, "Overlay opacity, 0 to 1")
	thumbnailCmd.Flags().Float64Var(&thumbOverlayX, "overlay-x", defaults.X, "Overlay center X in percent")
	thumbnailCmd.Flags().Float64Var(&thumbOverlayY, "overlay-y", defaults.Y, "Overlay center Y in percent")
	thumbnailCmd.Flags().StringVarP(&thumbOutput, "output", "o", "thumbnail.png", "Output file")
	thumbnailCmd.MarkFlagRequired("background")
}

func runThumbnailCommand(cmd *cobra.Command, args []string) error {
	template, err := thumbnail.LookupTemplate(thumbTemplate)
	if err != nil {
		return err
	}
	background, err := readDataURI(thumbBackground)
	if err != nil {
		return err
	}

	doc := thumbnail.Document{
		Template:      template.Key,
		Title:         thumbTitle,
		Subtitle:      thumbSubtitle,
		TitleStyle:    template.Title,
		SubtitleStyle: template.Subtitle,
		Background:    background,
		Overlay: thumbnail.Overlay{
			Size:    thumbOverlaySize,
			Opacity: thumbOverlayOpacity,
			X:       thumbOverlayX,
			Y:       thumbOverlayY,
		},
	}
	if thumbOverlay != "" {
		if doc.Overlay.Src, err = readDataURI(thumbOverlay); err != nil {
			return err
		}
	}

	fonts, err := raster.NewFontRegistry()
	if err != nil {
		return err
	}
	data, err := thumbnail.RenderPNG(context.Background(), fonts, &layers.SourceLoader{}, doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(thumbOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", thumbOutput, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", thumbOutput)
	return nil
}

func readDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raster.EncodeDataURI(data, http.DetectContentType(data)), nil
}
