// Package reportclient submits captured reports to the analyse endpoint.
package reportclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/rs/zerolog"

	"potholeai/internal/capture"
	"potholeai/internal/models"
)

// ErrSendFailed covers every way a submission can fail once a request has
// been attempted: transport errors, non-2xx responses and error bodies.
var ErrSendFailed = errors.New("failed to send report")

const analysePath = "/analyse"

// Doer is the subset of *http.Client used to send reports.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	http     Doer
	endpoint string
	notifier capture.Notifier
	log      zerolog.Logger
}

// New returns a client for the service at baseURL. A nil httpClient uses a
// plain http.Client with transport defaults and no overall timeout.
func New(baseURL string, httpClient Doer, notifier capture.Notifier, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		http:     httpClient,
		endpoint: strings.TrimSuffix(baseURL, "/") + analysePath,
		notifier: notifier,
		log:      log,
	}
}

// SendReport submits the session's photo and fix. Without both it fails with
// capture.ErrMissingInput and makes no request. On success the session is
// cleared unless a different photo was taken while the request was in
// flight; on failure it is left untouched so the same report can be resent.
func (c *Client) SendReport(ctx context.Context, session *capture.Session) (models.AnalyseResponse, error) {
	submission, gen, err := session.Prepare()
	if err != nil {
		c.notify(capture.LevelError, "Missing photo or location")
		return models.AnalyseResponse{}, err
	}

	c.notify(capture.LevelInfo, "Analysing the image...")
	resp, err := c.Send(ctx, submission)
	if err != nil {
		c.notify(capture.LevelError, err.Error())
		return models.AnalyseResponse{}, err
	}

	if !session.ClearIf(gen) {
		c.log.Debug().Msg("photo changed during submission, session kept")
	}
	c.notify(capture.LevelSuccess, "Image processed successfully")
	return resp, nil
}

// Send issues exactly one request for submission.
func (c *Client) Send(ctx context.Context, submission models.ReportSubmission) (models.AnalyseResponse, error) {
	body, contentType, err := encode(submission)
	if err != nil {
		return models.AnalyseResponse{}, fmt.Errorf("encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return models.AnalyseResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("endpoint", c.endpoint).Msg("report request failed")
		return models.AnalyseResponse{}, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return models.AnalyseResponse{}, fmt.Errorf("%w: read response: %v", ErrSendFailed, err)
	}

	var envelope struct {
		models.AnalyseResponse
		Error string `json:"error"`
		Err   string `json:"err"`
	}
	decodeErr := json.Unmarshal(raw, &envelope)

	switch {
	case res.StatusCode < 200 || res.StatusCode > 299:
		msg := firstNonEmpty(envelope.Error, envelope.Err, http.StatusText(res.StatusCode))
		c.log.Warn().Int("status", res.StatusCode).Str("error", msg).Msg("report rejected")
		return models.AnalyseResponse{}, fmt.Errorf("%w: %s", ErrSendFailed, msg)
	case decodeErr != nil:
		return models.AnalyseResponse{}, fmt.Errorf("%w: decode response: %v", ErrSendFailed, decodeErr)
	case envelope.Error != "" || envelope.Err != "":
		return models.AnalyseResponse{}, fmt.Errorf("%w: %s", ErrSendFailed, firstNonEmpty(envelope.Error, envelope.Err))
	}

	c.log.Debug().Str("prediction", envelope.Prediction).Msg("report analysed")
	return envelope.AnalyseResponse, nil
}

func encode(submission models.ReportSubmission) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	filename := submission.Filename
	if filename == "" {
		filename = "pothole.jpg"
	}
	mime := submission.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, models.FieldImage, filename))
	header.Set("Content-Type", mime)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(submission.Image); err != nil {
		return nil, "", err
	}

	fields := []struct{ name, value string }{
		{models.FieldLatitude, submission.Location.Latitude},
		{models.FieldLongitude, submission.Location.Longitude},
		{models.FieldAccuracy, submission.Location.Accuracy},
		{models.FieldTimestamp, submission.Location.Timestamp},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

func (c *Client) notify(level capture.Level, message string) {
	if c.notifier != nil {
		c.notifier.Notify(level, message)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
