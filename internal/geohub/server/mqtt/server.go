package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/logiflow-io/logiflow/internal/geohub/core/service"
	"github.com/logiflow-io/logiflow/internal/pkg/metrics"
	"github.com/logiflow-io/logiflow/pkg/log"
	pkgmqtt "github.com/logiflow-io/logiflow/pkg/mqtt"
	"github.com/logiflow-io/logiflow/pkg/mqtt/topic"
)

// telemetryReport is a device-reported position update received over MQTT.
type telemetryReport struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Speed   *float64 `json:"speed"`
	Heading *float64 `json:"heading"`
	Fuel    *float64 `json:"fuel"`
}

// Server implements the MQTT telemetry ingress. It feeds device position
// reports into the same update path as the HTTP surface.
type Server struct {
	client pkgmqtt.Client
	topics *topic.Builder
	svc    *service.Service
}

// NewServer creates a new MQTT ingress server.
func NewServer(client pkgmqtt.Client, topics *topic.Builder, svc *service.Service) *Server {
	return &Server{
		client: client,
		topics: topics,
		svc:    svc,
	}
}

// Start connects to the broker and subscribes to telemetry topics, then
// blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return err
	}

	// Ensure MQTT disconnects when Start exits.
	defer func() {
		log.Info("Disconnecting MQTT client...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.client.Disconnect(shutdownCtx)
	}()

	log.Info("Waiting for MQTT connection...")
	if err := s.client.AwaitConnection(ctx); err != nil {
		return err
	}
	log.Info("MQTT Connected")

	filter := s.topics.TelemetryWildcard()
	if err := s.client.Subscribe(ctx, filter, 1, s.handleTelemetry); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", filter, err)
	}

	<-ctx.Done()

	return nil
}

func (s *Server) handleTelemetry(ctx context.Context, t string, payload []byte) {
	vehicleID := topic.VehicleID(t)
	if vehicleID == "" {
		log.Warn("telemetry on topic without vehicle id", "topic", t)
		return
	}

	var report telemetryReport
	if err := json.Unmarshal(payload, &report); err != nil {
		log.Warn("malformed telemetry payload", "vehicle", vehicleID, "error", err.Error())
		return
	}
	if report.Lat == nil || report.Lng == nil {
		log.Warn("telemetry missing required coordinates", "vehicle", vehicleID)
		return
	}

	_, err := s.svc.SubmitUpdate(ctx, vehicleID, service.PositionUpdate{
		Lat:     *report.Lat,
		Lng:     *report.Lng,
		Speed:   report.Speed,
		Heading: report.Heading,
		Fuel:    report.Fuel,
	})
	if err != nil {
		log.Warn("rejected telemetry update", "vehicle", vehicleID, "error", err.Error())
		return
	}

	metrics.UpdatesTotal.WithLabelValues("mqtt").Inc()
}
