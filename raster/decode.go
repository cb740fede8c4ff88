package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	_ "golang.org/x/image/webp"
)

var ErrNotDataURI = errors.New("source is not a data URI")

// ParseDataURI splits a data: URI into its MIME type and decoded payload.
func ParseDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", ErrNotDataURI
	}
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI")
	}

	mimeType := header
	isBase64 := false
	if strings.HasSuffix(header, ";base64") {
		mimeType = strings.TrimSuffix(header, ";base64")
		isBase64 = true
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
		}
		return data, mimeType, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid data URI payload: %w", err)
	}
	return []byte(decoded), mimeType, nil
}

// EncodeDataURI is the inverse of ParseDataURI for binary payloads.
func EncodeDataURI(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// Decode reads a PNG, JPEG, GIF or WebP image.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// DecodeDataURI decodes the image carried by a data: URI.
func DecodeDataURI(uri string) (image.Image, error) {
	data, _, err := ParseDataURI(uri)
	if err != nil {
		return nil, err
	}
	img, _, err := Decode(data)
	return img, err
}
