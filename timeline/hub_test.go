package timeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/serisow/studio/apierror"
	"github.com/serisow/studio/credentials"
	"github.com/serisow/studio/job"
	"github.com/serisow/studio/media"
	"github.com/serisow/studio/services/genai_service"
)

type mockCapturer struct {
	CaptureFunc func(ctx context.Context, clip []byte) ([]byte, error)
}

func (m *mockCapturer) Capture(ctx context.Context, clip []byte) ([]byte, error) {
	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx, clip)
	}
	return []byte{0xff, 0xd8, 0xff, 0xd9}, nil
}

type mockJoiner struct {
	clips [][]byte
}

func (m *mockJoiner) Concat(ctx context.Context, clips [][]byte, w io.Writer) error {
	m.clips = clips
	_, err := w.Write(bytes.Join(clips, []byte("|")))
	return err
}

type hubFixture struct {
	hub   *Hub
	svc   *genai_service.MockService
	creds *credentials.Store
	media *media.Store
	polls atomic.Int32
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &hubFixture{
		svc:   &genai_service.MockService{},
		creds: credentials.NewStore("test-key"),
		media: media.NewStore(logger),
	}
	f.svc.GenerateVideoFunc = func(ctx context.Context, prompt, aspectRatio string, startImage *genai_service.InlineImage) (*job.Operation, error) {
		return &job.Operation{Name: "operations/generate"}, nil
	}
	f.svc.ExtendVideoFunc = func(ctx context.Context, prompt string, previous job.Video, aspectRatio string) (*job.Operation, error) {
		return &job.Operation{Name: "operations/extend"}, nil
	}
	f.svc.GetOperationFunc = f.doneAfter(3, "https://video.example/generated.mp4")
	f.svc.DownloadFunc = func(ctx context.Context, uri string) ([]byte, string, error) {
		return []byte("video:" + uri), "video/mp4", nil
	}
	f.hub = NewHub(HubOptions{
		Client:       f.svc,
		Credentials:  f.creds,
		Media:        f.media,
		Capturer:     &mockCapturer{},
		Joiner:       &mockJoiner{},
		PollInterval: 10 * time.Second,
		Clock:        job.NewSteppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Logger:       logger,
	})
	return f
}

func (f *hubFixture) doneAfter(n int32, uri string) func(ctx context.Context, name string) (*job.Operation, error) {
	f.polls.Store(0)
	return func(ctx context.Context, name string) (*job.Operation, error) {
		if f.polls.Add(1) < n {
			return &job.Operation{Name: name}, nil
		}
		return &job.Operation{
			Name: name,
			Done: true,
			Response: &job.VideoResponse{GenerateVideoResponse: job.GenerateVideoResponse{
				GeneratedSamples: []job.GeneratedSample{{Video: job.Video{URI: uri}}},
			}},
		}, nil
	}
}

func TestGenerateSceneAfterThreePolls(t *testing.T) {
	f := newHubFixture(t)

	scene, err := f.hub.GenerateScene(context.Background(), SceneRequest{Prompt: "a fox in snow", AspectRatio: "16:9"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if polls := f.polls.Load(); polls != 3 {
		t.Errorf("Expected 3 polls, got %d", polls)
	}

	scenes := f.hub.Timeline().Scenes()
	if len(scenes) != 1 || scenes[0].ID != scene.ID {
		t.Fatalf("Expected exactly one scene, got %v", sceneIDs(scenes))
	}
	if selected, ok := f.hub.Timeline().Selected(); !ok || selected.ID != scene.ID {
		t.Error("Expected the new scene to be selected")
	}
	if !strings.HasPrefix(scene.Thumbnail, "data:image/jpeg;base64,") {
		t.Errorf("Expected a JPEG thumbnail, got %.30s", scene.Thumbnail)
	}
	blob, ok := f.media.Get(scene.MediaRef)
	if !ok || string(blob.Data) != "video:https://video.example/generated.mp4" || !blob.Pinned {
		t.Errorf("Expected the downloaded clip pinned in the media store, got %+v", blob)
	}

	status := f.hub.Status()
	if status.State != job.StateDone || !status.Progress.Done || status.Progress.Progress != 100 || status.Error != nil {
		t.Errorf("Unexpected status after success: %+v", status)
	}
}

func TestGenerateSceneRequiresCredential(t *testing.T) {
	f := newHubFixture(t)
	f.creds.Invalidate()

	if _, err := f.hub.GenerateScene(context.Background(), SceneRequest{Prompt: "x"}); !errors.Is(err, credentials.ErrCredentialRequired) {
		t.Fatalf("Expected ErrCredentialRequired, got %v", err)
	}
	if state := f.hub.Status().State; state != job.StateIdle {
		t.Errorf("Expected the lifecycle to stay idle, got %s", state)
	}
}

func TestGenerateSceneRejectsWhileBusy(t *testing.T) {
	f := newHubFixture(t)
	if err := f.hub.lifecycle.Begin(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := f.hub.GenerateScene(context.Background(), SceneRequest{Prompt: "x"}); !errors.Is(err, job.ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
}

func TestInvalidCredentialResetsKey(t *testing.T) {
	f := newHubFixture(t)
	f.svc.GenerateVideoFunc = func(ctx context.Context, prompt, aspectRatio string, startImage *genai_service.InlineImage) (*job.Operation, error) {
		return nil, errors.New(`Gemini API error (HTTP 400): {"error":{"message":"API key not valid. Please pass a valid API key."}}`)
	}

	if _, err := f.hub.GenerateScene(context.Background(), SceneRequest{Prompt: "x"}); err == nil {
		t.Fatal("Expected an error")
	}
	if f.creds.Ready() {
		t.Error("Expected the credential to be invalidated")
	}
	status := f.hub.Status()
	if status.State != job.StateFailed || status.Error == nil || status.Error.Category != apierror.CategoryInvalidCredential {
		t.Errorf("Unexpected status: %+v", status)
	}
	if len(f.hub.Timeline().Scenes()) != 0 {
		t.Error("Expected the timeline to be unchanged")
	}
}

func TestUnreachableServiceKeepsKeyOutOfLogs(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	creds := credentials.NewStore("secret-api-key")
	client, err := genai_service.NewClient(genai_service.Options{BaseURL: baseURL, Keys: creds, Logger: logger})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	hub := NewHub(HubOptions{
		Client:      client,
		Credentials: creds,
		Media:       media.NewStore(logger),
		Capturer:    &mockCapturer{},
		Joiner:      &mockJoiner{},
		Clock:       job.NewSteppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Logger:      logger,
	})

	_, err = hub.GenerateScene(context.Background(), SceneRequest{Prompt: "x", AspectRatio: "16:9"})
	if err == nil {
		t.Fatal("Expected an error from an unreachable service")
	}
	if strings.Contains(err.Error(), "secret-api-key") {
		t.Errorf("Expected the key to be left out of the error, got %s", err)
	}
	if strings.Contains(logs.String(), "secret-api-key") {
		t.Errorf("Expected the key to be left out of the logs, got %s", logs.String())
	}
	if status := hub.Status(); status.Error == nil || strings.Contains(status.Error.Message, "secret-api-key") {
		t.Errorf("Unexpected status error: %+v", status.Error)
	}
}

func TestExtendSceneReplacesInPlace(t *testing.T) {
	f := newHubFixture(t)
	first, err := f.hub.GenerateScene(context.Background(), SceneRequest{Prompt: "first", AspectRatio: "16:9"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, _ := f.hub.GenerateScene(context.Background(), SceneRequest{Prompt: "second", AspectRatio: "16:9"})

	var extendedFrom string
	f.svc.ExtendVideoFunc = func(ctx context.Context, prompt string, previous job.Video, aspectRatio string) (*job.Operation, error) {
		extendedFrom = previous.URI
		return &job.Operation{Name: "operations/extend"}, nil
	}
	f.svc.GetOperationFunc = f.doneAfter(1, "https://video.example/extended.mp4")

	extended, err := f.hub.ExtendScene(context.Background(), first.ID, "then it starts to rain", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if extendedFrom != "https://video.example/generated.mp4" {
		t.Errorf("Expected the previous video URI to be extended, got %s", extendedFrom)
	}
	if extended.ID != first.ID || extended.Prompt != "first" || extended.MediaRef == first.MediaRef {
		t.Errorf("Unexpected extended scene %+v", extended)
	}

	scenes := f.hub.Timeline().Scenes()
	if scenes[0].ID != first.ID || scenes[1].ID != second.ID {
		t.Errorf("Expected positions to be preserved, got %v", sceneIDs(scenes))
	}
	if _, ok := f.media.Get(first.MediaRef); ok {
		t.Error("Expected the replaced clip to be revoked")
	}
}

func TestFailedExtensionLeavesSceneUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *hubFixture)
		category apierror.Category
	}{
		{
			name: "Submit rejected with quota",
			setup: func(f *hubFixture) {
				f.svc.ExtendVideoFunc = func(ctx context.Context, prompt string, previous job.Video, aspectRatio string) (*job.Operation, error) {
					return nil, errors.New(`Gemini API error (HTTP 429): {"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)
				}
			},
			category: apierror.CategoryQuotaExceeded,
		},
		{
			name: "Operation failed remotely",
			setup: func(f *hubFixture) {
				f.svc.GetOperationFunc = func(ctx context.Context, name string) (*job.Operation, error) {
					return &job.Operation{Name: name, Done: true, Error: &job.OperationStatus{Code: 3, Message: "unsafe content"}}, nil
				}
			},
			category: apierror.CategoryFailure,
		},
		{
			name: "Thumbnail capture failed",
			setup: func(f *hubFixture) {
				f.svc.GetOperationFunc = f.doneAfter(1, "https://video.example/extended.mp4")
				f.hub.capturer = &mockCapturer{CaptureFunc: func(ctx context.Context, clip []byte) ([]byte, error) {
					return nil, errors.New("thumbnail: ffmpeg execution failed")
				}}
			},
			category: apierror.CategoryFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHubFixture(t)
			original, err := f.hub.GenerateScene(context.Background(), SceneRequest{Prompt: "original", AspectRatio: "16:9"})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			blobsBefore := f.media.Len()
			tt.setup(f)

			if _, err := f.hub.ExtendScene(context.Background(), original.ID, "more", "16:9"); err == nil {
				t.Fatal("Expected the extension to fail")
			}

			after, _ := f.hub.Timeline().Get(original.ID)
			if after.MediaRef != original.MediaRef || after.Thumbnail != original.Thumbnail || after.LastOperation != original.LastOperation {
				t.Errorf("Expected the scene unchanged, got %+v", after)
			}
			if _, ok := f.media.Get(original.MediaRef); !ok {
				t.Error("Expected the original clip to remain available")
			}
			if f.media.Len() != blobsBefore {
				t.Errorf("Expected no leaked media, had %d now %d", blobsBefore, f.media.Len())
			}
			status := f.hub.Status()
			if status.State != job.StateFailed || status.Error == nil || status.Error.Category != tt.category {
				t.Errorf("Unexpected status: %+v", status)
			}
		})
	}
}

func TestExtendWithoutSourceVideo(t *testing.T) {
	f := newHubFixture(t)
	scene := f.hub.Timeline().Append(Scene{Prompt: "imported", MediaRef: "blob:none"})

	if _, err := f.hub.ExtendScene(context.Background(), scene.ID, "more", "16:9"); !errors.Is(err, ErrSourceMediaUnavailable) {
		t.Fatalf("Expected ErrSourceMediaUnavailable, got %v", err)
	}
	if after, _ := f.hub.Timeline().Get(scene.ID); after != scene {
		t.Errorf("Expected the scene unchanged, got %+v", after)
	}
	status := f.hub.Status()
	if status.State != job.StateIdle || status.Error == nil || status.Error.Message != SourceMediaUnavailableMessage {
		t.Errorf("Unexpected status: %+v", status)
	}
}

func TestClearTimelineTwice(t *testing.T) {
	f := newHubFixture(t)
	for _, prompt := range []string{"one", "two"} {
		if _, err := f.hub.GenerateScene(context.Background(), SceneRequest{Prompt: prompt}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		f.svc.GetOperationFunc = f.doneAfter(1, "https://video.example/"+prompt+".mp4")
	}

	if removed := f.hub.ClearTimeline(false); removed != 0 {
		t.Fatalf("Expected unconfirmed clear to remove nothing, removed %d", removed)
	}
	if removed := f.hub.ClearTimeline(true); removed != 2 {
		t.Errorf("Expected 2 scenes removed, got %d", removed)
	}
	if removed := f.hub.ClearTimeline(true); removed != 0 {
		t.Errorf("Expected the second clear to remove nothing, got %d", removed)
	}
	if len(f.hub.Timeline().Scenes()) != 0 || f.hub.Status().Selected != "" || f.media.Len() != 0 {
		t.Error("Expected an empty timeline, no selection and no media")
	}
}

func TestExportJoinsScenesInOrder(t *testing.T) {
	f := newHubFixture(t)
	joiner := &mockJoiner{}
	f.hub.joiner = joiner

	var out bytes.Buffer
	if err := f.hub.Export(context.Background(), &out); !errors.Is(err, ErrEmptyTimeline) {
		t.Fatalf("Expected ErrEmptyTimeline, got %v", err)
	}

	f.hub.GenerateScene(context.Background(), SceneRequest{Prompt: "a"})
	f.svc.GetOperationFunc = f.doneAfter(1, "b")
	f.hub.GenerateScene(context.Background(), SceneRequest{Prompt: "b"})
	f.hub.Timeline().Reorder(1, 0)

	if err := f.hub.Export(context.Background(), &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.String() != "video:b|video:https://video.example/generated.mp4" {
		t.Errorf("Expected clips in timeline order, got %q", out.String())
	}
}
