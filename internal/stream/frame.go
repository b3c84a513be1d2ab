// Package stream owns the push connection to the dashboard server: transports,
// frame classification and the reconnecting connection manager.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alert-monitor/internal/model"
)

// ErrMalformedFrame is returned by Classify for frames that cannot be decoded.
var ErrMalformedFrame = errors.New("malformed frame")

// Server → client frame types.
const (
	FrameConnected     = "connected"
	FrameActiveAlerts  = "active_alerts"
	FrameRealtimeAlert = "realtime_alert"
	FrameAllMetrics    = "all_metrics"
	FrameMetrics       = "metrics"
	FrameHeartbeat     = "heartbeat"
	FrameAlertResolved = "alert_resolved"
)

// Client → server frame types.
const (
	FrameAuth            = "auth"
	FrameGetActiveAlerts = "get_active_alerts"
	FrameGetAllMetrics   = "get_all_metrics"
	FrameResolveAlert    = "resolve_alert"
)

// Event is a classified inbound frame. The set of implementations is closed.
type Event interface {
	event()
}

// ConnectedEvent acknowledges the connection.
type ConnectedEvent struct {
	ConnectionID string
}

// AlertSnapshotEvent replaces the whole alert collection.
type AlertSnapshotEvent struct {
	Alerts []model.Alert
}

// AlertPushEvent upserts a single alert.
type AlertPushEvent struct {
	Alert model.Alert
}

// MetricsSnapshotEvent replaces the metrics of every plugin.
type MetricsSnapshotEvent struct {
	Metrics map[string]model.PluginMetricSample
}

// MetricsPushEvent upserts the metrics of one plugin.
type MetricsPushEvent struct {
	PluginID string
	Sample   model.PluginMetricSample
}

// HeartbeatEvent is a keepalive with no data.
type HeartbeatEvent struct{}

// ResolutionAckEvent is the server's answer to a resolve_alert frame.
type ResolutionAckEvent struct {
	AlertID    string
	ResolvedAt *time.Time
	Success    bool
}

// UnknownEvent carries a frame whose type is not recognized.
type UnknownEvent struct {
	Type string
	Raw  json.RawMessage
}

func (ConnectedEvent) event()       {}
func (AlertSnapshotEvent) event()   {}
func (AlertPushEvent) event()       {}
func (MetricsSnapshotEvent) event() {}
func (MetricsPushEvent) event()     {}
func (HeartbeatEvent) event()       {}
func (ResolutionAckEvent) event()   {}
func (UnknownEvent) event()         {}

// envelope carries only the frame type; payloads are decoded per kind.
type envelope struct {
	Type string `json:"type"`
}

type connectedFrame struct {
	ConnectionID string `json:"connectionId"`
}

type alertsFrame struct {
	Alerts []model.Alert `json:"alerts"`
}

type alertFrame struct {
	Alert *model.Alert `json:"alert"`
}

type metricsFrame struct {
	PluginID string          `json:"plugin_id"`
	Data     json.RawMessage `json:"data"`
}

type resolvedFrame struct {
	AlertID    string     `json:"alert_id"`
	ResolvedAt *time.Time `json:"resolved_at"`
	Success    *bool      `json:"success"`
}

// Classify decodes one inbound frame into a typed event.
// Unrecognized types yield UnknownEvent whatever their payload; frames of a
// known type that cannot be decoded yield an error wrapping ErrMalformedFrame.
func Classify(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch env.Type {
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedFrame)

	case FrameConnected:
		var f connectedFrame
		if err := decodePayload(data, env.Type, &f); err != nil {
			return nil, err
		}
		return ConnectedEvent{ConnectionID: f.ConnectionID}, nil

	case FrameActiveAlerts:
		var f alertsFrame
		if err := decodePayload(data, env.Type, &f); err != nil {
			return nil, err
		}
		alerts := f.Alerts
		if alerts == nil {
			alerts = []model.Alert{}
		}
		return AlertSnapshotEvent{Alerts: alerts}, nil

	case FrameRealtimeAlert:
		var f alertFrame
		if err := decodePayload(data, env.Type, &f); err != nil {
			return nil, err
		}
		if f.Alert == nil || f.Alert.ID == "" {
			return nil, fmt.Errorf("%w: %s without alert id", ErrMalformedFrame, env.Type)
		}
		return AlertPushEvent{Alert: *f.Alert}, nil

	case FrameAllMetrics:
		var f metricsFrame
		if err := decodePayload(data, env.Type, &f); err != nil {
			return nil, err
		}
		metrics := map[string]model.PluginMetricSample{}
		if len(f.Data) > 0 && string(f.Data) != "null" {
			if err := json.Unmarshal(f.Data, &metrics); err != nil {
				return nil, fmt.Errorf("%w: %s data: %v", ErrMalformedFrame, env.Type, err)
			}
		}
		return MetricsSnapshotEvent{Metrics: metrics}, nil

	case FrameMetrics:
		var f metricsFrame
		if err := decodePayload(data, env.Type, &f); err != nil {
			return nil, err
		}
		if f.PluginID == "" {
			return nil, fmt.Errorf("%w: %s without plugin_id", ErrMalformedFrame, env.Type)
		}
		var sample model.PluginMetricSample
		if err := json.Unmarshal(f.Data, &sample); err != nil {
			return nil, fmt.Errorf("%w: %s data: %v", ErrMalformedFrame, env.Type, err)
		}
		return MetricsPushEvent{PluginID: f.PluginID, Sample: sample}, nil

	case FrameHeartbeat:
		return HeartbeatEvent{}, nil

	case FrameAlertResolved:
		var f resolvedFrame
		if err := decodePayload(data, env.Type, &f); err != nil {
			return nil, err
		}
		if f.AlertID == "" {
			return nil, fmt.Errorf("%w: %s without alert_id", ErrMalformedFrame, env.Type)
		}
		// Absent success means the server did not report a failure
		success := f.Success == nil || *f.Success
		return ResolutionAckEvent{AlertID: f.AlertID, ResolvedAt: f.ResolvedAt, Success: success}, nil

	default:
		return UnknownEvent{Type: env.Type, Raw: append(json.RawMessage(nil), data...)}, nil
	}
}

func decodePayload(data []byte, frameType string, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedFrame, frameType, err)
	}
	return nil
}

// ClientFrame is a frame sent from the client to the server.
type ClientFrame struct {
	Type     string `json:"type"`
	UserID   string `json:"userId,omitempty"`
	Role     string `json:"role,omitempty"`
	ClientID string `json:"clientId,omitempty"`
	AlertID  string `json:"alert_id,omitempty"`
}

// AuthFrame builds the authentication frame for an identity.
func AuthFrame(id Identity) ClientFrame {
	return ClientFrame{Type: FrameAuth, UserID: id.UserID, Role: id.Role, ClientID: id.ClientID}
}

// ResolveAlertFrame builds a resolve request for one alert.
func ResolveAlertFrame(alertID string) ClientFrame {
	return ClientFrame{Type: FrameResolveAlert, AlertID: alertID}
}
