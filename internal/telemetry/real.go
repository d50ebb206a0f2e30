package telemetry

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/bearboticsfrc/bear-hub/internal/ingest"
	"github.com/bearboticsfrc/bear-hub/internal/leds"
)

// RealClient talks to an actual MQTT broker.
type RealClient struct {
	broker   string
	hubName  string
	onUpdate UpdateFunc
	onFrame  FrameFunc

	client paho.Client
}

// NewRealClient creates a client for the given broker. onUpdate and onFrame
// receive subscription traffic; both are called from paho's goroutines.
func NewRealClient(broker, hubName string, onUpdate UpdateFunc, onFrame FrameFunc) *RealClient {
	return &RealClient{
		broker:   broker,
		hubName:  hubName,
		onUpdate: onUpdate,
		onFrame:  onFrame,
	}
}

// Start connects asynchronously. paho retries with capped backoff until
// Stop is called; the hub keeps counting locally while the robot is away.
func (c *RealClient) Start() error {
	if c.client != nil {
		return nil
	}
	opts := paho.NewClientOptions().
		AddBroker(c.broker).
		SetClientID(strings.ToLower(c.hubName)).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second).
		SetMaxReconnectInterval(30 * time.Second).
		SetOnConnectHandler(c.subscribe).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("telemetry: connection lost: %v", err)
		})

	client := paho.NewClient(opts)
	client.Connect()
	c.client = client
	log.Printf("telemetry: client started, broker %s", c.broker)
	return nil
}

// subscribe registers the topic handlers. Called on every (re)connect so
// the subscriptions survive broker restarts.
func (c *RealClient) subscribe(client paho.Client) {
	subs := map[string]paho.MessageHandler{
		TopicFMSMode: func(_ paho.Client, m paho.Message) {
			period := string(m.Payload())
			c.onUpdate(ingest.PeerUpdate{Period: &period})
		},
		TopicHubActive: func(_ paho.Client, m paho.Message) {
			v, err := strconv.ParseBool(string(m.Payload()))
			if err != nil {
				return
			}
			c.onUpdate(ingest.PeerUpdate{HubActive: &v})
		},
		TopicSecondsUntilInactive: func(_ paho.Client, m paho.Message) {
			v, err := strconv.ParseFloat(string(m.Payload()), 64)
			if err != nil {
				return
			}
			c.onUpdate(ingest.PeerUpdate{SecondsUntilInactive: &v})
		},
		TopicMotorCommand: func(_ paho.Client, m paho.Message) {
			cmd := string(m.Payload())
			c.onUpdate(ingest.PeerUpdate{MotorCommand: &cmd})
		},
		TopicPracticeColor: func(_ paho.Client, m paho.Message) {
			var rgb [3]uint8
			if err := json.Unmarshal(m.Payload(), &rgb); err != nil {
				log.Printf("telemetry: bad palette payload: %v", err)
				return
			}
			c.onFrame(ingest.Frame{
				Color:  leds.Color{R: rgb[0], G: rgb[1], B: rgb[2]},
				Source: ingest.FramePalette,
			})
		},
	}
	for topic, handler := range subs {
		if token := client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
			log.Printf("telemetry: subscribe %s: %v", topic, token.Error())
		}
	}
	log.Printf("telemetry: connected, broker %s", c.broker)
}

// Stop disconnects from the broker.
func (c *RealClient) Stop() {
	if c.client == nil {
		return
	}
	c.client.Disconnect(250)
	c.client = nil
	log.Printf("telemetry: client stopped")
}

// PublishTotal publishes at QoS 0 without waiting; the decision loop must
// never block on the broker.
func (c *RealClient) PublishTotal(count uint64) {
	if c.client == nil {
		return
	}
	c.client.Publish(c.hubName+TopicTotalCountSuffix, 0, false, strconv.FormatUint(count, 10))
}

// Connected reports the live connection state.
func (c *RealClient) Connected() bool {
	return c.client != nil && c.client.IsConnectionOpen()
}

var _ Client = (*RealClient)(nil)
