package studio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/serisow/studio/services/genai_service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChatSend(t *testing.T) {
	tests := []struct {
		name          string
		request       ChatRequest
		generateErr   error
		expectedReply string
		expectedCall  string
	}{
		{
			name:          "Text uses thinking flag",
			request:       ChatRequest{Text: "hello", Thinking: true},
			expectedReply: "text reply",
			expectedCall:  "text:true",
		},
		{
			name:          "Image is analyzed",
			request:       ChatRequest{Text: "what is this", Image: &genai_service.InlineImage{Data: []byte("png"), MimeType: "image/png"}},
			expectedReply: "image reply",
			expectedCall:  "analyze:image/png",
		},
		{
			name:          "Failure becomes a model message",
			request:       ChatRequest{Text: "hello"},
			generateErr:   errors.New("boom"),
			expectedReply: chatFailureText,
			expectedCall:  "text:false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var call string
			mock := &genai_service.MockService{
				GenerateTextFunc: func(ctx context.Context, prompt string, highEffort bool) (string, error) {
					if highEffort {
						call = "text:true"
					} else {
						call = "text:false"
					}
					return "text reply", tt.generateErr
				},
				AnalyzeImageFunc: func(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
					call = "analyze:" + mimeType
					return "image reply", nil
				},
			}
			chat := NewChat(mock, discardLogger())

			reply, err := chat.Send(context.Background(), tt.request)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if call != tt.expectedCall {
				t.Errorf("Expected call %s, got %s", tt.expectedCall, call)
			}
			if reply.Text != tt.expectedReply || reply.Role != RoleModel {
				t.Errorf("Unexpected reply: %+v", reply)
			}

			history := chat.History()
			if len(history) != 2 {
				t.Fatalf("Expected 2 messages, got %d", len(history))
			}
			if history[0].Role != RoleUser || history[0].Text != tt.request.Text {
				t.Errorf("Unexpected user message: %+v", history[0])
			}
			if tt.request.Image != nil && !strings.HasPrefix(history[0].Image, "data:image/png;base64,") {
				t.Errorf("Expected image data URI on the user message, got %q", history[0].Image)
			}
		})
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	chat := NewChat(&genai_service.MockService{}, discardLogger())
	if _, err := chat.Send(context.Background(), ChatRequest{Text: "   "}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("Expected ErrEmptyMessage, got %v", err)
	}
	if len(chat.History()) != 0 {
		t.Error("Expected no history for a rejected message")
	}
}

func TestChatReset(t *testing.T) {
	chat := NewChat(&genai_service.MockService{}, discardLogger())
	chat.Send(context.Background(), ChatRequest{Text: "one"})
	chat.Reset()
	if len(chat.History()) != 0 {
		t.Error("Expected empty history after reset")
	}
}
