package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"potholeai/internal/artifact"
	"potholeai/internal/classify"
	"potholeai/internal/media/sniffer"
	"potholeai/internal/models"
)

var ErrNoImage = errors.New("no image uploaded")

type AnalyseInput struct {
	RequestID string
	File      multipart.File
	Header    *multipart.FileHeader
}

// AnalyseService stages an uploaded image, classifies it and removes the
// staged file again.
type AnalyseService struct {
	artifacts  *artifact.Store
	classifier classify.Classifier
	log        zerolog.Logger
}

func NewAnalyseService(artifacts *artifact.Store, classifier classify.Classifier, log zerolog.Logger) *AnalyseService {
	return &AnalyseService{
		artifacts:  artifacts,
		classifier: classifier,
		log:        log,
	}
}

func (s *AnalyseService) Analyse(ctx context.Context, input AnalyseInput) (models.ClassificationResult, error) {
	if input.File == nil {
		return models.ClassificationResult{}, ErrNoImage
	}

	data, err := io.ReadAll(input.File)
	if err != nil {
		return models.ClassificationResult{}, fmt.Errorf("read upload: %w", err)
	}

	kind := sniffer.Detect(data)
	staged, err := s.artifacts.Stage(data, kind)
	if err != nil {
		return models.ClassificationResult{}, fmt.Errorf("stage artifact: %w", err)
	}
	defer func() {
		if err := s.artifacts.Remove(staged); err != nil {
			s.log.Warn().Err(err).Str("artifact_id", staged.ID).Msg("artifact cleanup failed")
		}
	}()

	event := s.log.Info().
		Str("request_id", input.RequestID).
		Str("artifact_id", staged.ID).
		Str("format", string(kind.Type)).
		Int64("size_bytes", staged.Size)
	if input.Header != nil {
		event = event.
			Str("filename", input.Header.Filename).
			Str("declared_type", sniffer.MimeTypeFromHTTP(http.Header(input.Header.Header)))
	}
	event.Msg("image staged")

	start := time.Now()
	result, err := s.classifier.Classify(ctx, staged)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	prediction := classify.ParsePrediction(result.Text)
	s.log.Info().
		Str("request_id", input.RequestID).
		Str("artifact_id", staged.ID).
		Str("label", prediction.Label).
		Float64("confidence", prediction.Confidence).
		Bool("cached", result.Cached).
		Msg("image classified")

	return models.ClassificationResult{
		ArtifactID: staged.ID,
		Text:       result.Text,
		Cached:     result.Cached,
		Duration:   time.Since(start),
	}, nil
}
