package timeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/serisow/studio/apierror"
	"github.com/serisow/studio/credentials"
	"github.com/serisow/studio/job"
	"github.com/serisow/studio/media"
	"github.com/serisow/studio/raster"
	"github.com/serisow/studio/services/genai_service"
	"github.com/serisow/studio/video"
)

const component = "VideoHub"

// SourceMediaUnavailableMessage is shown when a scene cannot be extended
// because its source video is gone.
const SourceMediaUnavailableMessage = "Could not find video data from the selected scene."

var (
	ErrSourceMediaUnavailable = errors.New("selected scene has no source video")
	ErrEmptyTimeline          = errors.New("the timeline has no scenes to export")
	ErrPromptRequired         = errors.New("prompt is required")
)

// VideoClient is the part of the generation service the hub drives.
type VideoClient interface {
	GenerateVideo(ctx context.Context, prompt, aspectRatio string, startImage *genai_service.InlineImage) (*job.Operation, error)
	ExtendVideo(ctx context.Context, prompt string, previous job.Video, aspectRatio string) (*job.Operation, error)
	GetOperation(ctx context.Context, name string) (*job.Operation, error)
	Download(ctx context.Context, uri string) ([]byte, string, error)
	AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Credentials is the credential store as seen by the hub.
type Credentials interface {
	Ready() bool
	Invalidate()
}

// MediaStore holds downloaded clips.
type MediaStore interface {
	Put(data []byte, mimeType string) string
	Get(ref string) (*media.Blob, bool)
	Pin(ref string, pinned bool) error
	Revoke(ref string)
}

// SceneRequest describes a new scene.
type SceneRequest struct {
	Prompt      string
	AspectRatio string
	StartImage  *genai_service.InlineImage
}

// Status is what the UI renders for the video hub.
type Status struct {
	State     job.State                `json:"state"`
	Extending bool                     `json:"extending"`
	Progress  job.Snapshot             `json:"progress"`
	Error     *apierror.Classification `json:"error,omitempty"`
	Selected  string                   `json:"selected_scene_id,omitempty"`
}

type HubOptions struct {
	Client       VideoClient
	Credentials  Credentials
	Media        MediaStore
	Capturer     video.FrameCapturer
	Joiner       video.ClipJoiner
	PollInterval time.Duration
	Clock        job.Clock
	Logger       *slog.Logger
}

// Hub runs video jobs against the timeline. Only one job is in flight at a
// time.
type Hub struct {
	client    VideoClient
	creds     Credentials
	media     MediaStore
	capturer  video.FrameCapturer
	joiner    video.ClipJoiner
	poller    *job.Poller
	clock     job.Clock
	logger    *slog.Logger
	lifecycle *job.Lifecycle
	timeline  *Timeline

	mu        sync.RWMutex
	progress  job.Snapshot
	extending bool
	lastErr   *apierror.Classification
}

func NewHub(opts HubOptions) *Hub {
	clock := opts.Clock
	if clock == nil {
		clock = job.RealClock
	}
	return &Hub{
		client:    opts.Client,
		creds:     opts.Credentials,
		media:     opts.Media,
		capturer:  opts.Capturer,
		joiner:    opts.Joiner,
		poller:    job.NewPoller(opts.Client, opts.Media, opts.PollInterval, clock, opts.Logger),
		clock:     clock,
		logger:    opts.Logger,
		lifecycle: job.NewLifecycle(),
		timeline:  New(),
	}
}

func (h *Hub) Timeline() *Timeline {
	return h.timeline
}

func (h *Hub) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Status{
		State:     h.lifecycle.State(),
		Extending: h.extending,
		Progress:  h.progress,
		Error:     h.lastErr,
		Selected:  h.timeline.SelectedID(),
	}
}

// GenerateScene submits a new video job, waits for it and appends the
// result to the timeline as the selected scene.
func (h *Hub) GenerateScene(ctx context.Context, req SceneRequest) (Scene, error) {
	if err := h.begin(req.Prompt, false); err != nil {
		return Scene{}, err
	}
	return h.runGenerate(ctx, req)
}

// StartScene is GenerateScene in the background. Validation and the busy
// check happen before it returns.
func (h *Hub) StartScene(req SceneRequest) error {
	if err := h.begin(req.Prompt, false); err != nil {
		return err
	}
	go h.runGenerate(context.Background(), req)
	return nil
}

// ExtendScene continues the video of scene id and replaces the scene's media
// in place. On any failure the scene is left as it was.
func (h *Hub) ExtendScene(ctx context.Context, id, prompt, aspectRatio string) (Scene, error) {
	source, err := h.beginExtend(id, prompt)
	if err != nil {
		return Scene{}, err
	}
	return h.runExtend(ctx, source, prompt, aspectRatio)
}

func (h *Hub) StartExtension(id, prompt, aspectRatio string) error {
	source, err := h.beginExtend(id, prompt)
	if err != nil {
		return err
	}
	go h.runExtend(context.Background(), source, prompt, aspectRatio)
	return nil
}

func (h *Hub) beginExtend(id, prompt string) (Scene, error) {
	scene, ok := h.timeline.Get(id)
	if !ok {
		return Scene{}, ErrSceneNotFound
	}
	if strings.TrimSpace(prompt) == "" {
		return Scene{}, ErrPromptRequired
	}
	if scene.LastOperation == nil || scene.LastOperation.VideoURI() == "" {
		h.recordError(ErrSourceMediaUnavailable)
		return Scene{}, ErrSourceMediaUnavailable
	}
	if err := h.begin(prompt, true); err != nil {
		return Scene{}, err
	}
	return scene, nil
}

func (h *Hub) begin(prompt string, extending bool) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrPromptRequired
	}
	if !h.creds.Ready() {
		h.recordError(credentials.ErrCredentialRequired)
		return credentials.ErrCredentialRequired
	}
	if err := h.lifecycle.Begin(); err != nil {
		return err
	}

	duration := job.GenerateDuration
	if extending {
		duration = job.ExtendDuration
	}
	h.mu.Lock()
	h.lastErr = nil
	h.extending = extending
	h.progress = job.Estimate(0, duration)
	h.mu.Unlock()
	return nil
}

func (h *Hub) runGenerate(ctx context.Context, req SceneRequest) (Scene, error) {
	h.logger.Info("Generating scene",
		slog.String("aspect_ratio", req.AspectRatio),
		slog.Bool("start_image", req.StartImage != nil))

	op, err := h.client.GenerateVideo(ctx, req.Prompt, req.AspectRatio, req.StartImage)
	if err != nil {
		return Scene{}, h.fail(err)
	}

	clip, err := h.await(ctx, op, job.GenerateDuration)
	if err != nil {
		return Scene{}, h.fail(err)
	}

	scene := h.timeline.Append(Scene{
		Prompt:        req.Prompt,
		AspectRatio:   req.AspectRatio,
		MediaRef:      clip.MediaRef,
		MimeType:      clip.MimeType,
		Thumbnail:     clip.Thumbnail,
		LastOperation: clip.Operation,
		CreatedAt:     h.clock.Now(),
	})
	h.succeed()
	h.logger.Info("Scene added to timeline", slog.String("scene_id", scene.ID))
	return scene, nil
}

func (h *Hub) runExtend(ctx context.Context, source Scene, prompt, aspectRatio string) (Scene, error) {
	if aspectRatio == "" {
		aspectRatio = source.AspectRatio
	}
	h.logger.Info("Extending scene", slog.String("scene_id", source.ID))

	op, err := h.client.ExtendVideo(ctx, prompt, job.Video{URI: source.LastOperation.VideoURI()}, aspectRatio)
	if err != nil {
		return Scene{}, h.fail(err)
	}

	clip, err := h.await(ctx, op, job.ExtendDuration)
	if err != nil {
		return Scene{}, h.fail(err)
	}

	update := source
	update.MediaRef = clip.MediaRef
	update.MimeType = clip.MimeType
	update.Thumbnail = clip.Thumbnail
	update.LastOperation = clip.Operation
	previous, scene, err := h.timeline.Replace(source.ID, update)
	if err != nil {
		// The scene was deleted while the extension ran.
		h.media.Revoke(clip.MediaRef)
		return Scene{}, h.fail(err)
	}
	if previous.MediaRef != scene.MediaRef {
		h.media.Revoke(previous.MediaRef)
	}
	h.succeed()
	h.logger.Info("Scene extended", slog.String("scene_id", scene.ID))
	return scene, nil
}

type finishedClip struct {
	MediaRef  string
	MimeType  string
	Thumbnail string
	Operation *job.Operation
}

// await polls op to completion while the progress estimator runs, then
// captures the thumbnail of the downloaded clip.
func (h *Hub) await(ctx context.Context, op *job.Operation, duration time.Duration) (*finishedClip, error) {
	if err := h.lifecycle.Transition(job.StatePolling); err != nil {
		return nil, err
	}

	stop := h.trackProgress(duration)
	result, err := h.poller.Wait(ctx, op)
	stop()
	if err != nil {
		return nil, err
	}

	blob, ok := h.media.Get(result.MediaRef)
	if !ok {
		return nil, fmt.Errorf("downloaded video %s is not available", result.MediaRef)
	}
	frame, err := h.capturer.Capture(ctx, blob.Data)
	if err != nil {
		h.media.Revoke(result.MediaRef)
		return nil, err
	}
	if err := h.media.Pin(result.MediaRef, true); err != nil {
		return nil, err
	}

	return &finishedClip{
		MediaRef:  result.MediaRef,
		MimeType:  result.MimeType,
		Thumbnail: raster.EncodeDataURI(frame, "image/jpeg"),
		Operation: result.Operation,
	}, nil
}

func (h *Hub) trackProgress(duration time.Duration) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	estimator := job.NewEstimator(duration, h.clock)
	go func() {
		defer close(done)
		estimator.Run(ctx, func(s job.Snapshot) {
			h.mu.Lock()
			h.progress = s
			h.mu.Unlock()
		})
	}()
	return func() {
		cancel()
		<-done
	}
}

func (h *Hub) succeed() {
	h.mu.Lock()
	h.progress = job.Complete()
	h.mu.Unlock()
	if err := h.lifecycle.Transition(job.StateDone); err != nil {
		h.logger.Error("Invalid job state", slog.String("error", err.Error()))
	}
}

func (h *Hub) fail(err error) error {
	h.recordError(err)
	if terr := h.lifecycle.Transition(job.StateFailed); terr != nil {
		h.logger.Error("Invalid job state", slog.String("error", terr.Error()))
	}
	h.mu.Lock()
	h.progress = job.Snapshot{}
	h.mu.Unlock()
	h.logger.Error("Video job failed", slog.String("error", err.Error()))
	return err
}

// recordError classifies err as the hub's visible error and drops the API key
// when the service rejected it.
func (h *Hub) recordError(err error) {
	classification := apierror.Classify(err, component)
	if errors.Is(err, ErrSourceMediaUnavailable) {
		classification = apierror.Classification{Category: apierror.CategoryFailure, Message: SourceMediaUnavailableMessage}
	}
	if classification.ResetCredential {
		h.creds.Invalidate()
	}
	h.mu.Lock()
	h.lastErr = &classification
	h.mu.Unlock()
}

// DeleteScene removes a scene and releases its media.
func (h *Hub) DeleteScene(id string) error {
	scene, err := h.timeline.Delete(id)
	if err != nil {
		return err
	}
	h.media.Revoke(scene.MediaRef)
	return nil
}

// ClearTimeline removes every scene when confirmed. It returns how many
// scenes were removed.
func (h *Hub) ClearTimeline(confirmed bool) int {
	removed := h.timeline.Clear(confirmed)
	for _, scene := range removed {
		h.media.Revoke(scene.MediaRef)
	}
	if len(removed) > 0 {
		h.logger.Info("Timeline cleared", slog.Int("scenes", len(removed)))
	}
	return len(removed)
}

// Analyze describes an image with the text model.
func (h *Hub) Analyze(ctx context.Context, prompt string, image genai_service.InlineImage) (string, error) {
	if !h.creds.Ready() {
		return "", credentials.ErrCredentialRequired
	}
	text, err := h.client.AnalyzeImage(ctx, prompt, image.Data, image.MimeType)
	if err != nil {
		h.recordError(err)
		return "", err
	}
	return text, nil
}

// Export joins every scene, in timeline order, into a single MP4.
func (h *Hub) Export(ctx context.Context, w io.Writer) error {
	if h.joiner == nil {
		return errors.New("video export is not configured")
	}
	scenes := h.timeline.Scenes()
	if len(scenes) == 0 {
		return ErrEmptyTimeline
	}

	clips := make([][]byte, len(scenes))
	for i, scene := range scenes {
		blob, ok := h.media.Get(scene.MediaRef)
		if !ok {
			return fmt.Errorf("media for scene %s is no longer available", scene.ID)
		}
		clips[i] = blob.Data
	}
	return h.joiner.Concat(ctx, clips, w)
}
