package studio

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/serisow/studio/raster"
	"github.com/serisow/studio/services/genai_service"
)

const chatFailureText = "An error occurred. Please try again."

var ErrEmptyMessage = errors.New("a message needs text or an image")

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TextClient is the part of the generation service the text panels use.
type TextClient interface {
	GenerateText(ctx context.Context, prompt string, highEffort bool) (string, error)
	GenerateTextWithSystem(ctx context.Context, systemInstruction, prompt string) (string, error)
	AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

type ChatRequest struct {
	Text     string
	Image    *genai_service.InlineImage
	Thinking bool
}

// Chat keeps the conversation shown in the chat panel. Each turn is sent on
// its own; earlier messages are not replayed to the model.
type Chat struct {
	mu       sync.RWMutex
	messages []Message
	client   TextClient
	logger   *slog.Logger
	now      func() time.Time
}

func NewChat(client TextClient, logger *slog.Logger) *Chat {
	return &Chat{client: client, logger: logger, now: time.Now}
}

// Send records the user's message, asks the model and records the reply. A
// failed call is answered with a generic error message instead of an error.
func (c *Chat) Send(ctx context.Context, req ChatRequest) (Message, error) {
	if strings.TrimSpace(req.Text) == "" && req.Image == nil {
		return Message{}, ErrEmptyMessage
	}

	user := Message{ID: uuid.NewString(), Role: RoleUser, Text: req.Text, CreatedAt: c.now()}
	if req.Image != nil {
		user.Image = raster.EncodeDataURI(req.Image.Data, req.Image.MimeType)
	}
	c.append(user)

	var reply string
	var err error
	if req.Image != nil {
		reply, err = c.client.AnalyzeImage(ctx, req.Text, req.Image.Data, req.Image.MimeType)
	} else {
		reply, err = c.client.GenerateText(ctx, req.Text, req.Thinking)
	}
	if err != nil {
		c.logger.Error("Chat request failed",
			slog.Bool("thinking", req.Thinking),
			slog.Bool("image", req.Image != nil),
			slog.String("error", err.Error()))
		reply = chatFailureText
	}

	model := Message{ID: uuid.NewString(), Role: RoleModel, Text: reply, CreatedAt: c.now()}
	c.append(model)
	return model, nil
}

func (c *Chat) append(m Message) {
	c.mu.Lock()
	c.messages = append(c.messages, m)
	c.mu.Unlock()
}

func (c *Chat) History() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Chat) Reset() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}
