package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"potholeai/internal/middleware"
	"potholeai/internal/models"
	"potholeai/internal/service"
)

const (
	errNoImage              = "No image uploaded"
	errClassificationFailed = "Classification failed"
)

// Analyse accepts one image part plus four location fields, classifies the
// image and echoes the location fields back untouched.
func (h HandlerSet) Analyse(c *gin.Context) {
	requestID := c.GetString(middleware.RequestIDKey)

	header, err := c.FormFile(models.FieldImage)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: errNoImage})
		return
	}
	file, err := header.Open()
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestID).Msg("open upload failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: errClassificationFailed})
		return
	}
	defer file.Close()

	fields := models.LocationFields{
		Latitude:  c.PostForm(models.FieldLatitude),
		Longitude: c.PostForm(models.FieldLongitude),
		Accuracy:  c.PostForm(models.FieldAccuracy),
		Timestamp: c.PostForm(models.FieldTimestamp),
	}

	h.log.Debug().
		Str("request_id", requestID).
		Str("latitude", fields.Latitude).
		Str("longitude", fields.Longitude).
		Str("accuracy", fields.Accuracy).
		Str("timestamp", fields.Timestamp).
		Msg("report received")

	result, err := h.analyse.Analyse(c.Request.Context(), service.AnalyseInput{
		RequestID: requestID,
		File:      file,
		Header:    header,
	})
	if err != nil {
		h.log.Error().Err(err).Str("request_id", requestID).Msg("analyse failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: errClassificationFailed})
		return
	}

	c.JSON(http.StatusOK, models.AnalyseResponse{
		Prediction:     result.Text,
		LocationFields: fields,
	})
}
