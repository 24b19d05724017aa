package capture

import (
	"context"
	"fmt"
	"os"

	"potholeai/internal/media/sniffer"
	"potholeai/internal/models"
)

// StillCamera is a camera whose every frame is the same still image, used
// when reporting from a photo already on disk.
type StillCamera struct {
	photo Photo
}

func NewStillCamera(data []byte) *StillCamera {
	return &StillCamera{photo: Photo{Data: data, MIME: sniffer.Detect(data).MIME}}
}

// NewFileCamera loads path once and serves it as every frame.
func NewFileCamera(path string) (*StillCamera, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	return NewStillCamera(data), nil
}

func (c *StillCamera) RequestAccess(context.Context) error { return nil }

func (c *StillCamera) Open(context.Context) (Stream, error) {
	return &stillStream{photo: c.photo}, nil
}

type stillStream struct {
	photo   Photo
	stopped bool
}

func (s *stillStream) Frame() (Photo, error) {
	if s.stopped {
		return Photo{}, fmt.Errorf("stream stopped")
	}
	return Photo{Data: append([]byte(nil), s.photo.Data...), MIME: s.photo.MIME}, nil
}

func (s *stillStream) Stop() { s.stopped = true }

// FixedLocator always reports the same fix.
type FixedLocator struct {
	Fix models.Location
}

func (l FixedLocator) Locate(context.Context) (models.Location, error) {
	return l.Fix, nil
}
