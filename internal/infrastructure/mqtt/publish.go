package mqtt

import (
	"fmt"
)

// maxPayloadSize caps outbound messages at 1MB. Feature states and
// health reports are small JSON documents; anything larger indicates
// a caller bug, and most brokers reject it anyway.
const maxPayloadSize = 1 << 20

// Publish sends a message to the given topic and waits for broker
// acknowledgment (per the QoS level) up to the publish timeout.
//
// Retained messages are stored by the broker and delivered to new
// subscribers immediately. Use retention for state topics like
// feature state and camera health, never for set/execute commands.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "genvis/feature/ExposureTime/state")
//   - payload: The message payload (typically JSON, max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
//
// Example:
//
//	topic := mqtt.Topics{}.FeatureState("ExposureTime")
//	err := client.Publish(topic, []byte(`{"value":20000}`), 1, true)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishString publishes a string payload. Equivalent to Publish
// with []byte(payload).
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained message at the configured
// default QoS. Used for state topics where new subscribers should
// receive the current value on subscribe.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}
