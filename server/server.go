package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/studio/handlers"
	"github.com/urfave/negroni"
)

// Handlers groups the panel handlers the router dispatches to.
type Handlers struct {
	Credential *handlers.CredentialHandler
	Chat       *handlers.ChatHandler
	Image      *handlers.ImageHandler
	Video      *handlers.VideoHandler
	Voice      *handlers.VoiceHandler
	Thumbnail  *handlers.ThumbnailHandler
	Writer     *handlers.WriterHandler
	Theme      *handlers.ThemeHandler
}

type Config struct {
	Addr         string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func SetupRoutes(h Handlers) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/credential", h.Credential.Select).Methods("POST")
	api.HandleFunc("/credential", h.Credential.Status).Methods("GET")

	api.HandleFunc("/chat", h.Chat.Send).Methods("POST")
	api.HandleFunc("/chat", h.Chat.History).Methods("GET")
	api.HandleFunc("/chat", h.Chat.Reset).Methods("DELETE")

	// Image studio
	api.HandleFunc("/images/layers", h.Image.List).Methods("GET")
	api.HandleFunc("/images/layers/generate", h.Image.Generate).Methods("POST")
	api.HandleFunc("/images/layers/upload", h.Image.Upload).Methods("POST")
	api.HandleFunc("/images/layers/reorder", h.Image.Reorder).Methods("POST")
	api.HandleFunc("/images/layers/{id}/edit", h.Image.Edit).Methods("POST")
	api.HandleFunc("/images/layers/{id}", h.Image.Update).Methods("PATCH")
	api.HandleFunc("/images/layers/{id}", h.Image.Delete).Methods("DELETE")
	api.HandleFunc("/images/composition.png", h.Image.Composition).Methods("GET")

	// Video hub
	api.HandleFunc("/video/scenes", h.Video.CreateScene).Methods("POST")
	api.HandleFunc("/video/scenes", h.Video.Scenes).Methods("GET")
	api.HandleFunc("/video/scenes/reorder", h.Video.ReorderScenes).Methods("POST")
	api.HandleFunc("/video/scenes/{id}/extend", h.Video.ExtendScene).Methods("POST")
	api.HandleFunc("/video/scenes/{id}/select", h.Video.SelectScene).Methods("POST")
	api.HandleFunc("/video/scenes/{id}", h.Video.DeleteScene).Methods("DELETE")
	api.HandleFunc("/video/status", h.Video.Status).Methods("GET")
	api.HandleFunc("/video/clear", h.Video.Clear).Methods("POST")
	api.HandleFunc("/video/analyze", h.Video.Analyze).Methods("POST")
	api.HandleFunc("/video/export.mp4", h.Video.Export).Methods("GET")
	api.HandleFunc("/media/{ref}", h.Video.Media).Methods("GET")

	api.HandleFunc("/voice", h.Voice.Synthesize).Methods("POST")

	// Thumbnail generator
	api.HandleFunc("/thumbnail", h.Thumbnail.Document).Methods("GET")
	api.HandleFunc("/thumbnail", h.Thumbnail.Update).Methods("PUT")
	api.HandleFunc("/thumbnail/templates", h.Thumbnail.Templates).Methods("GET")
	api.HandleFunc("/thumbnail/template", h.Thumbnail.SelectTemplate).Methods("POST")
	api.HandleFunc("/thumbnail/background", h.Thumbnail.GenerateBackground).Methods("POST")
	api.HandleFunc("/thumbnail/layout", h.Thumbnail.Layout).Methods("GET")
	api.HandleFunc("/thumbnail.png", h.Thumbnail.Export).Methods("GET")

	api.HandleFunc("/script", h.Writer.Script).Methods("POST")
	api.HandleFunc("/story", h.Writer.Story).Methods("POST")
	api.HandleFunc("/music", h.Writer.Music).Methods("POST")

	api.HandleFunc("/theme", h.Theme.Get).Methods("GET")
	api.HandleFunc("/theme", h.Theme.Put).Methods("PUT")

	return r
}

func SetupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())
	n.UseHandler(r)
	return n
}

// Serve listens until ctx is cancelled, then shuts the server down.
func Serve(ctx context.Context, cfg Config, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Studio API listening", slog.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
