package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"potholeai/internal/capture"
	"potholeai/internal/classify"
	"potholeai/internal/log"
	"potholeai/internal/models"
	"potholeai/internal/reportclient"
)

type logNotifier struct {
	log zerolog.Logger
}

func (n logNotifier) Notify(level capture.Level, message string) {
	switch level {
	case capture.LevelError:
		n.log.Error().Msg(message)
	case capture.LevelSuccess:
		n.log.Info().Bool("ok", true).Msg(message)
	default:
		n.log.Info().Msg(message)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("POTHOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:          "reporter",
		Short:        "Submit pothole reports to the analyse service",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("endpoint", "http://localhost:8080", "analyse service base URL")
	root.PersistentFlags().String("log-level", "info", "log level")
	_ = v.BindPFlags(root.PersistentFlags())

	root.AddCommand(newSendCommand(v), newPingCommand(v))
	return root
}

func newSendCommand(v *viper.Viper) *cobra.Command {
	var (
		imagePath string
		lat, lng  float64
		accuracy  float64
		timestamp string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Capture a photo from disk with a fixed location and submit it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.NewWithWriter(cmd.ErrOrStderr(), "cli", v.GetString("log-level"))
			notifier := logNotifier{log: logger}

			capturedAt := time.Now()
			if timestamp != "" {
				parsed, err := time.Parse(time.RFC3339, timestamp)
				if err != nil {
					return fmt.Errorf("parse timestamp: %w", err)
				}
				capturedAt = parsed
			}

			camera, err := capture.NewFileCamera(imagePath)
			if err != nil {
				return err
			}
			locator := capture.FixedLocator{Fix: models.Location{
				Latitude:   lat,
				Longitude:  lng,
				Accuracy:   accuracy,
				CapturedAt: capturedAt,
			}}

			session := capture.NewSession(camera, locator, notifier)
			defer session.Close()

			ctx := cmd.Context()
			if err := session.RequestPermissions(ctx); err != nil {
				return err
			}
			if err := session.StartCamera(ctx); err != nil {
				return err
			}
			if err := session.CapturePhoto(); err != nil {
				return err
			}

			client := reportclient.New(v.GetString("endpoint"), nil, notifier, logger)
			resp, err := client.SendReport(ctx, session)
			if err != nil {
				return err
			}

			prediction := classify.ParsePrediction(resp.Prediction)
			event := logger.Info().Str("label", prediction.Label).Bool("pothole", prediction.IsPothole())
			if prediction.HasConfidence {
				event = event.Float64("confidence", prediction.Confidence)
			}
			event.Msg("report analysed")

			return json.NewEncoder(cmd.OutOrStdout()).Encode(resp)
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "path to the photo")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.Flags().Float64Var(&accuracy, "accuracy", 0, "fix accuracy in metres")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "fix time (RFC3339), defaults to now")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")

	return cmd
}

func newPingCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the analyse service is up",
		RunE: func(cmd *cobra.Command, _ []string) error {
			endpoint := strings.TrimSuffix(v.GetString("endpoint"), "/") + "/"
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint, nil)
			if err != nil {
				return err
			}
			res, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			defer res.Body.Close()

			var body map[string]any
			if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
				return fmt.Errorf("decode ping: %w", err)
			}
			if res.StatusCode != http.StatusOK {
				return fmt.Errorf("ping: status %d", res.StatusCode)
			}
			fmt.Fprintln(cmd.OutOrStdout(), body["msg"])
			return nil
		},
	}
}
