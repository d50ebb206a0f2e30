// Package telemetry connects the hub to the robot telemetry bus over MQTT.
// The hub publishes its ball total and subscribes to the match state and
// motor command topics the robot publishes.
package telemetry

import "github.com/bearboticsfrc/bear-hub/internal/ingest"

// Subscribed topic names. The published total-count topic is prefixed with
// the hub name, for example "RedHub/total_count".
const (
	TopicFMSMode              = "FMS/mode"
	TopicHubActive            = "HubTracker/isActive"
	TopicSecondsUntilInactive = "HubTracker/secondsUntilInactive"
	TopicMotorCommand         = "HubTracker/motorCommand"
	TopicPracticeColor        = "HubPractice/ledColor"

	TopicTotalCountSuffix = "/total_count"
)

// Client is the hub's connection to the telemetry bus.
type Client interface {
	// Start connects to the broker. The connection retries in the
	// background with bounded backoff, so Start succeeding does not mean
	// the link is up; Connected reports the live state.
	Start() error

	// Stop disconnects and drops all subscriptions. Safe to call when not
	// started.
	Stop()

	// PublishTotal publishes the hub's active ball total.
	PublishTotal(count uint64)

	// Connected reports the live connection state.
	Connected() bool
}

// UpdateFunc receives peer updates parsed from subscribed topics. It is
// called from the MQTT client goroutine and must not block.
type UpdateFunc func(ingest.PeerUpdate)

// FrameFunc receives practice palette frames.
type FrameFunc func(ingest.Frame)
