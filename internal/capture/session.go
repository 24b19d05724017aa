// Package capture models the client side of a report: permission
// acquisition, the camera lifecycle and the captured photo, as a small state
// machine. A live stream exists only in StateCameraActive and a photo only in
// StatePhotoTaken, so the two can never be held at once.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"potholeai/internal/models"
)

var (
	ErrMissingInput        = errors.New("missing photo or location")
	ErrLocationUnavailable = errors.New("location not available yet")
	ErrCaptureFailed       = errors.New("failed to capture image")
	ErrInvalidTransition   = errors.New("invalid capture transition")
)

// CameraError wraps a device-level failure while opening the camera.
type CameraError struct {
	Err error
}

func (e *CameraError) Error() string { return "camera error: " + e.Err.Error() }
func (e *CameraError) Unwrap() error { return e.Err }

type State int

const (
	StateNoPermissions State = iota
	StateCameraIdle
	StateCameraActive
	StatePhotoTaken
)

func (s State) String() string {
	switch s {
	case StateNoPermissions:
		return "no_permissions"
	case StateCameraIdle:
		return "camera_idle"
	case StateCameraActive:
		return "camera_active"
	case StatePhotoTaken:
		return "photo_taken"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type PermissionState int

const (
	PermissionPending PermissionState = iota
	PermissionRequesting
	PermissionGranted
	PermissionDenied
)

func (p PermissionState) String() string {
	switch p {
	case PermissionPending:
		return "pending"
	case PermissionRequesting:
		return "requesting"
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	}
	return fmt.Sprintf("permission(%d)", int(p))
}

// Generation identifies one captured photo. It changes whenever the photo is
// taken, dropped or cleared.
type Generation uint64

// Photo is a captured still frame.
type Photo struct {
	Data []byte
	MIME string
}

// Camera grants access to a capture device.
type Camera interface {
	// RequestAccess asks for permission to use the device without keeping it open.
	RequestAccess(ctx context.Context) error
	Open(ctx context.Context) (Stream, error)
}

// Stream is a live camera feed.
type Stream interface {
	// Frame encodes the current frame; an empty result means nothing was captured.
	Frame() (Photo, error)
	Stop()
}

// Locator produces a geolocation fix.
type Locator interface {
	Locate(ctx context.Context) (models.Location, error)
}

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Notifier surfaces user-visible messages.
type Notifier interface {
	Notify(level Level, message string)
}

// Session is the in-memory state of one reporting attempt.
type Session struct {
	mu sync.Mutex

	camera   Camera
	locator  Locator
	notifier Notifier

	state        State
	cameraPerm   PermissionState
	locationPerm PermissionState
	stream       Stream
	photo        *Photo
	gen          Generation
	fix          *models.Location
}

func NewSession(camera Camera, locator Locator, notifier Notifier) *Session {
	return &Session{
		camera:   camera,
		locator:  locator,
		notifier: notifier,
		state:    StateNoPermissions,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Permissions returns the camera and location permission states.
func (s *Session) Permissions() (camera, location PermissionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameraPerm, s.locationPerm
}

func (s *Session) Location() (models.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fix == nil {
		return models.Location{}, false
	}
	return *s.fix, true
}

func (s *Session) HasPhoto() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photo != nil
}

// RequestPermissions asks for camera and location access independently. The
// session leaves StateNoPermissions only when both are granted; calling it
// again retries whichever was denied.
func (s *Session) RequestPermissions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNoPermissions {
		return nil
	}

	if s.cameraPerm != PermissionGranted {
		s.cameraPerm = PermissionRequesting
		if err := s.camera.RequestAccess(ctx); err != nil {
			s.cameraPerm = PermissionDenied
			s.notify(LevelError, "Camera access denied")
		} else {
			s.cameraPerm = PermissionGranted
			s.notify(LevelSuccess, "Camera access granted")
		}
	}

	if s.locationPerm != PermissionGranted {
		s.locationPerm = PermissionRequesting
		fix, err := s.locator.Locate(ctx)
		if err != nil {
			s.locationPerm = PermissionDenied
			s.notify(LevelError, "Location access denied")
		} else {
			s.fix = &fix
			s.locationPerm = PermissionGranted
			s.notify(LevelSuccess, "Location access granted")
		}
	}

	if s.cameraPerm == PermissionGranted && s.locationPerm == PermissionGranted {
		s.state = StateCameraIdle
		return nil
	}
	return fmt.Errorf("permissions not granted: camera %s, location %s", s.cameraPerm, s.locationPerm)
}

// RefreshLocation takes a new fix, typically after a submitted report cleared
// the previous one.
func (s *Session) RefreshLocation(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locationPerm != PermissionGranted {
		return fmt.Errorf("%w: location permission %s", ErrInvalidTransition, s.locationPerm)
	}
	fix, err := s.locator.Locate(ctx)
	if err != nil {
		s.notify(LevelError, "Location not available")
		return fmt.Errorf("locate: %w", err)
	}
	s.fix = &fix
	return nil
}

func (s *Session) StartCamera(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startCamera(ctx)
}

func (s *Session) startCamera(ctx context.Context) error {
	if s.state != StateCameraIdle {
		return fmt.Errorf("%w: start camera from %s", ErrInvalidTransition, s.state)
	}
	if s.fix == nil {
		s.notify(LevelError, "Location not available yet")
		return ErrLocationUnavailable
	}

	stream, err := s.camera.Open(ctx)
	if err != nil {
		camErr := &CameraError{Err: err}
		s.notify(LevelError, camErr.Error())
		return camErr
	}

	s.stream = stream
	s.state = StateCameraActive
	s.notify(LevelInfo, "Camera started")
	return nil
}

// StopCamera releases the live stream without taking a photo.
func (s *Session) StopCamera() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCameraActive {
		return fmt.Errorf("%w: stop camera from %s", ErrInvalidTransition, s.state)
	}
	s.releaseStream()
	s.state = StateCameraIdle
	return nil
}

// CapturePhoto takes the current frame and releases the stream. When the
// frame is empty the camera stays active so the user can try again.
func (s *Session) CapturePhoto() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCameraActive {
		return fmt.Errorf("%w: capture from %s", ErrInvalidTransition, s.state)
	}

	photo, err := s.stream.Frame()
	if err != nil || len(photo.Data) == 0 {
		s.notify(LevelError, "Failed to capture image")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCaptureFailed, err)
		}
		return ErrCaptureFailed
	}
	if photo.MIME == "" {
		photo.MIME = "image/jpeg"
	}

	s.releaseStream()
	s.photo = &photo
	s.gen++
	s.state = StatePhotoTaken
	s.notify(LevelSuccess, "Photo captured successfully")
	return nil
}

// RetakePhoto drops the photo and restarts the camera.
func (s *Session) RetakePhoto(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePhotoTaken {
		return fmt.Errorf("%w: retake from %s", ErrInvalidTransition, s.state)
	}
	s.photo = nil
	s.gen++
	s.state = StateCameraIdle
	return s.startCamera(ctx)
}

// DiscardPhoto drops the photo and returns to StateCameraIdle.
func (s *Session) DiscardPhoto() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePhotoTaken {
		return fmt.Errorf("%w: discard from %s", ErrInvalidTransition, s.state)
	}
	s.photo = nil
	s.gen++
	s.state = StateCameraIdle
	s.notify(LevelInfo, "Photo discarded")
	return nil
}

// Submission packages the photo and fix. It fails with ErrMissingInput
// unless both are present.
func (s *Session) Submission() (models.ReportSubmission, error) {
	submission, _, err := s.Prepare()
	return submission, err
}

// Prepare is Submission plus the generation of the packaged photo, for use
// with ClearIf once the report has been accepted.
func (s *Session) Prepare() (models.ReportSubmission, Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.photo == nil || s.fix == nil {
		return models.ReportSubmission{}, 0, ErrMissingInput
	}
	return models.ReportSubmission{
		Image:    append([]byte(nil), s.photo.Data...),
		MIME:     s.photo.MIME,
		Filename: "pothole.jpg",
		Location: s.fix.Fields(),
	}, s.gen, nil
}

// Clear forgets the photo and fix after a successful submission, so the next
// report needs a fresh capture.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

// ClearIf clears the session only while it still holds the photo of
// generation gen. It reports whether anything was cleared.
func (s *Session) ClearIf(gen Generation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.photo == nil || s.gen != gen {
		return false
	}
	s.clear()
	return true
}

func (s *Session) clear() {
	if s.photo != nil {
		s.gen++
	}
	s.photo = nil
	s.fix = nil
	if s.state == StatePhotoTaken {
		s.state = StateCameraIdle
	}
}

// Close releases the stream if the camera is still running.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCameraActive {
		s.releaseStream()
		s.state = StateCameraIdle
	}
}

func (s *Session) releaseStream() {
	if s.stream != nil {
		s.stream.Stop()
		s.stream = nil
	}
}

func (s *Session) notify(level Level, message string) {
	if s.notifier != nil {
		s.notifier.Notify(level, message)
	}
}
