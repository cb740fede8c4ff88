package studio

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/serisow/studio/services/genai_service"
)

// The speech model returns raw 16-bit little endian mono PCM at 24 kHz.
const (
	SpeechSampleRate = 24000
	speechChannels   = 1
	speechBitDepth   = 16
)

const NoSpeechMessage = "Failed to generate speech."

var (
	ErrNoSpeech     = errors.New("model returned no audio")
	ErrTextRequired = errors.New("text is required")
	ErrUnknownVoice = errors.New("unknown voice")
)

// SpeechClient is the part of the generation service the voice lab uses.
type SpeechClient interface {
	GenerateSpeech(ctx context.Context, text, voice string) (string, error)
}

type VoiceLab struct {
	client SpeechClient
}

func NewVoiceLab(client SpeechClient) *VoiceLab {
	return &VoiceLab{client: client}
}

// Synthesize reads text with voice and returns a playable WAV file.
func (v *VoiceLab) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, ErrTextRequired
	}
	if !slices.Contains(genai_service.Voices, voice) {
		return nil, fmt.Errorf("%w %q", ErrUnknownVoice, voice)
	}

	encoded, err := v.client.GenerateSpeech(ctx, text, voice)
	if err != nil {
		return nil, err
	}
	if encoded == "" {
		return nil, ErrNoSpeech
	}
	pcm, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid audio payload: %w", err)
	}
	return WrapPCM(pcm, SpeechSampleRate, speechChannels, speechBitDepth), nil
}

// WrapPCM prefixes raw PCM samples with a canonical 44 byte WAV header.
func WrapPCM(pcm []byte, sampleRate, channels, bitDepth int) []byte {
	blockAlign := channels * bitDepth / 8
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitDepth))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
