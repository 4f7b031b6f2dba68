package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/genvis/genvis-core/internal/feature"
)

// stateQueueSize bounds the number of pending state publications.
// The registry notifies under its lock, so publishing must not block.
const stateQueueSize = 256

// FeatureNotifier publishes feature updates to genvis/feature/<name>/state.
//
// It implements feature.Notifier. Updates are queued and published from a
// dedicated goroutine because the registry invokes NotifyFeature while
// holding its lock. When the queue is full the oldest pending update for
// that enqueue is dropped rather than blocking the registry.
type FeatureNotifier struct {
	client *Client
	logger Logger

	queue chan feature.Update
	done  chan struct{}
}

// NewFeatureNotifier creates a notifier publishing through the given client.
// Call Start to begin publishing and Stop to drain and shut down.
func NewFeatureNotifier(client *Client, logger Logger) *FeatureNotifier {
	return &FeatureNotifier{
		client: client,
		logger: logger,
		queue:  make(chan feature.Update, stateQueueSize),
		done:   make(chan struct{}),
	}
}

// NotifyFeature queues a feature update for publication.
// Never blocks; drops the update when the queue is full.
func (n *FeatureNotifier) NotifyFeature(u feature.Update) {
	select {
	case n.queue <- u:
	default:
		if n.logger != nil {
			n.logger.Warn("feature state queue full, dropping update",
				"feature", u.Feature,
			)
		}
	}
}

// Start launches the publishing loop. It returns immediately.
func (n *FeatureNotifier) Start(ctx context.Context) {
	go n.run(ctx)
}

// Stop shuts down the publishing loop.
func (n *FeatureNotifier) Stop() {
	close(n.done)
}

func (n *FeatureNotifier) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.done:
			return
		case u := <-n.queue:
			n.publish(u)
		}
	}
}

func (n *FeatureNotifier) publish(u feature.Update) {
	if !n.client.IsConnected() {
		return
	}

	payload, err := json.Marshal(u)
	if err != nil {
		return
	}

	topic := Topics{}.FeatureState(u.Feature)
	if err := n.client.PublishRetained(topic, payload); err != nil {
		if n.logger != nil {
			n.logger.Warn("publishing feature state failed",
				"feature", u.Feature,
				"error", err,
			)
		}
	}
}

// setRequest is the payload accepted on genvis/feature/<name>/set.
type setRequest struct {
	Value string `json:"value"`
}

// commandTimeout bounds how long a remote set or execute may take.
const commandTimeout = 10 * time.Second

// CommandBridge applies remote feature writes received over MQTT.
//
// It subscribes to genvis/feature/+/set and genvis/feature/+/execute and
// forwards them to the registry. Results are reflected back through the
// registry's own notifier path, so no explicit acknowledgement is sent.
type CommandBridge struct {
	client   *Client
	registry *feature.Registry
	logger   Logger
}

// NewCommandBridge creates a bridge applying remote writes to the registry.
func NewCommandBridge(client *Client, registry *feature.Registry, logger Logger) *CommandBridge {
	return &CommandBridge{
		client:   client,
		registry: registry,
		logger:   logger,
	}
}

// Subscribe registers the set and execute subscriptions.
func (b *CommandBridge) Subscribe() error {
	qos := byte(b.client.cfg.QoS)

	if err := b.client.Subscribe(Topics{}.AllFeatureSets(), qos, b.handleSet); err != nil {
		return err
	}
	return b.client.Subscribe(Topics{}.AllFeatureExecutes(), qos, b.handleExecute)
}

// handleSet processes a message on genvis/feature/<name>/set.
func (b *CommandBridge) handleSet(topic string, payload []byte) error {
	name, ok := featureFromTopic(topic, "set")
	if !ok {
		return ErrInvalidTopic
	}

	var req setRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		// Bare payloads are accepted as the raw value.
		req.Value = strings.TrimSpace(string(payload))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := b.registry.SetFromString(ctx, name, req.Value); err != nil {
		if b.logger != nil {
			b.logger.Warn("remote feature set failed",
				"feature", name,
				"error", err,
			)
		}
		return err
	}
	return nil
}

// handleExecute processes a message on genvis/feature/<name>/execute.
func (b *CommandBridge) handleExecute(topic string, _ []byte) error {
	name, ok := featureFromTopic(topic, "execute")
	if !ok {
		return ErrInvalidTopic
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := b.registry.Execute(ctx, name); err != nil {
		if b.logger != nil {
			b.logger.Warn("remote feature execute failed",
				"feature", name,
				"error", err,
			)
		}
		return err
	}
	return nil
}

// featureFromTopic extracts the feature name from genvis/feature/<name>/<suffix>.
func featureFromTopic(topic, suffix string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, TopicPrefixFeature+"/")
	if !ok {
		return "", false
	}
	name, ok := strings.CutSuffix(rest, "/"+suffix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
