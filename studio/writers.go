package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Messages shown when a writing panel fails.
const (
	ScriptFailureMessage = "An unexpected error occurred while writing the script."
	StoryFailureMessage  = "An unexpected error occurred while telling the story."
	MusicFailureMessage  = "An unexpected error occurred while generating the music idea."
)

const musicSystemInstruction = "You are an expert AI music composer and collaborator. Your task is to generate creative musical ideas in text format."

var (
	ScriptFormats = []string{"Screenplay (Film/TV)", "Stage Play", "YouTube Video"}
	StoryGenres   = []string{"Fantasy", "Science Fiction", "Mystery", "Romance", "Horror", "Adventure", "Comedy"}
	StoryTones    = []string{"Adventurous", "Humorous", "Dramatic", "Whimsical", "Suspenseful", "Heartwarming", "Dark"}
)

type MusicType string

const (
	MusicDescription MusicType = "Description"
	MusicChords      MusicType = "Chords"
	MusicMelody      MusicType = "Melody"
	MusicLyrics      MusicType = "Lyrics"
)

// MusicRequest describes the track the music lab brainstorms about.
type MusicRequest struct {
	Type        MusicType `json:"type"`
	Genre       string    `json:"genre"`
	Mood        string    `json:"mood"`
	Instruments string    `json:"instruments"`
	Duration    string    `json:"duration"`
	LyricTheme  string    `json:"lyric_theme"`
	Key         string    `json:"key"`
	Tempo       string    `json:"tempo"`
}

func DefaultMusicRequest() MusicRequest {
	return MusicRequest{
		Type:        MusicDescription,
		Genre:       "Lofi",
		Mood:        "Relaxing",
		Instruments: "Piano, soft drums, vinyl crackle",
		Duration:    "2 minutes",
		LyricTheme:  "a rainy day in the city",
		Key:         "C Major",
		Tempo:       "85",
	}
}

func ScriptPrompt(prompt, format string) string {
	return fmt.Sprintf("You are a professional scriptwriter. Your task is to write a %s based on the following prompt. Make sure to use standard industry formatting for the chosen type.\n\nPrompt: %q", format, prompt)
}

func StoryPrompt(prompt, genre, tone string) string {
	return fmt.Sprintf("You are a creative and engaging storyteller. Your task is to write a %s %s story based on the following prompt.\n\nPrompt: %q", tone, genre, prompt)
}

// MusicPrompt builds the request for one kind of music idea.
func MusicPrompt(req MusicRequest) (string, error) {
	track := fmt.Sprintf(`The user is looking for ideas for a track with the following characteristics:
- Genre: %s
- Mood: %s
- Key: %s
- Tempo: %s BPM
- Instruments: %s
- Approximate Duration: %s`, req.Genre, req.Mood, req.Key, req.Tempo, req.Instruments, req.Duration)

	switch req.Type {
	case MusicDescription:
		return track + "\n\nDescribe the track's structure (e.g., intro, verse, chorus, bridge, outro), instrumentation, melody, harmony, and rhythm. Provide a rich, evocative description that would inspire a human composer. Do not generate actual audio or links to audio. Only provide the text description.", nil
	case MusicChords:
		return track + "\n\nBased on these characteristics, generate 3-4 interesting and suitable chord progressions. Provide them in a clear format (e.g., I - V - vi - IV or C - G - Am - F). Briefly explain why each progression fits the mood and key.", nil
	case MusicMelody:
		return track + "\n\nDescribe a simple, memorable melody idea for the main hook or verse. You can describe it in terms of note relationships (e.g., \"starts on the root, leaps up a fifth, then walks down the scale\") or general contour and feeling (e.g., \"a soaring, optimistic phrase with a syncopated rhythm\"). Do not use musical notation.", nil
	case MusicLyrics:
		return track + fmt.Sprintf("\n\nThe theme for the song is: %q.\n\nBased on all this information, write a creative and fitting first verse and a chorus for the song.", req.LyricTheme), nil
	}
	return "", fmt.Errorf("unknown music idea type %q", req.Type)
}

// Writer backs the script writer, story teller and music lab panels.
type Writer struct {
	client TextClient
}

func NewWriter(client TextClient) *Writer {
	return &Writer{client: client}
}

func (w *Writer) WriteScript(ctx context.Context, prompt, format string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is required")
	}
	if format == "" {
		format = ScriptFormats[0]
	}
	return w.client.GenerateText(ctx, ScriptPrompt(prompt, format), false)
}

func (w *Writer) TellStory(ctx context.Context, prompt, genre, tone string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is required")
	}
	if genre == "" {
		genre = StoryGenres[0]
	}
	if tone == "" {
		tone = StoryTones[0]
	}
	return w.client.GenerateText(ctx, StoryPrompt(prompt, genre, tone), false)
}

func (w *Writer) ComposeMusic(ctx context.Context, req MusicRequest) (string, error) {
	prompt, err := MusicPrompt(req)
	if err != nil {
		return "", err
	}
	return w.client.GenerateTextWithSystem(ctx, musicSystemInstruction, prompt)
}
