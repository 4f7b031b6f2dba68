package mqtt

import (
	"errors"
	"strings"
	"testing"

	"github.com/genvis/genvis-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "genvis-test",
			TLS:      false,
		},
		Auth: config.MQTTAuthConfig{
			Username: "",
			Password: "",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// disconnectedClient returns a client that was never connected.
// IsConnected short-circuits on the tracked flag, so operations fail
// fast without touching the nil paho client.
func disconnectedClient() *Client {
	return &Client{
		cfg:           testConfig(),
		subscriptions: make(map[string]subscription),
	}
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestCloseNil(t *testing.T) {
	client := &Client{}
	err := client.Close()
	if err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

// =============================================================================
// Publish Validation Tests
// =============================================================================

func TestPublishValidation(t *testing.T) {
	client := disconnectedClient()

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{
			name:    "empty topic",
			topic:   "",
			payload: []byte("x"),
			qos:     1,
			wantErr: ErrInvalidTopic,
		},
		{
			name:    "invalid qos",
			topic:   "genvis/feature/ExposureTime/state",
			payload: []byte("x"),
			qos:     3,
			wantErr: ErrInvalidQoS,
		},
		{
			name:    "oversized payload",
			topic:   "genvis/feature/ExposureTime/state",
			payload: make([]byte, maxPayloadSize+1),
			qos:     1,
			wantErr: ErrPublishFailed,
		},
		{
			name:    "not connected",
			topic:   "genvis/feature/ExposureTime/state",
			payload: []byte("x"),
			qos:     1,
			wantErr: ErrNotConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// Subscribe Validation Tests
// =============================================================================

func TestSubscribeValidation(t *testing.T) {
	client := disconnectedClient()
	handler := func(topic string, payload []byte) error { return nil }

	if err := client.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe(empty topic) error = %v, want ErrInvalidTopic", err)
	}

	if err := client.Subscribe("genvis/#", 3, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe(qos=3) error = %v, want ErrInvalidQoS", err)
	}

	if err := client.Subscribe("genvis/#", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe(nil handler) error = %v, want ErrSubscribeFailed", err)
	}

	if err := client.Subscribe("genvis/#", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() when disconnected error = %v, want ErrNotConnected", err)
	}

	// Failed subscriptions must not be tracked
	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after failed subscribes, want 0", client.SubscriptionCount())
	}
}

func TestUnsubscribeValidation(t *testing.T) {
	client := disconnectedClient()

	if err := client.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe(empty topic) error = %v, want ErrInvalidTopic", err)
	}

	if err := client.Unsubscribe("genvis/#"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() when disconnected error = %v, want ErrNotConnected", err)
	}
}

func TestHasSubscription(t *testing.T) {
	client := disconnectedClient()

	if client.HasSubscription("genvis/feature/+/state") {
		t.Error("HasSubscription() = true on fresh client, want false")
	}
}

// =============================================================================
// Options Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "genvis"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("expected 1 broker URL, got %d", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://127.0.0.1:1883" {
		t.Errorf("broker URL = %q, want %q", got, "tcp://127.0.0.1:1883")
	}
	if opts.ClientID != "genvis-test" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "genvis-test")
	}
	if opts.Username != "genvis" {
		t.Errorf("Username = %q, want %q", opts.Username, "genvis")
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
	if !opts.CleanSession {
		t.Error("CleanSession = false, want true")
	}
}

func TestBuildClientOptionsTLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if got := opts.Servers[0].String(); got != "ssl://127.0.0.1:8883" {
		t.Errorf("broker URL = %q, want %q", got, "ssl://127.0.0.1:8883")
	}
	if opts.TLSConfig == nil {
		t.Fatal("TLSConfig = nil with TLS enabled")
	}
}

func TestConfigureLWT(t *testing.T) {
	cfg := testConfig()
	opts := buildClientOptions(cfg)

	configureLWT(opts, "genvis-test")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false after configureLWT")
	}
	if opts.WillTopic != "genvis/system/status" {
		t.Errorf("WillTopic = %q, want %q", opts.WillTopic, "genvis/system/status")
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}
	payload := string(opts.WillPayload)
	if !strings.Contains(payload, `"status":"offline"`) {
		t.Errorf("WillPayload missing offline status: %s", payload)
	}
	if !strings.Contains(payload, "unexpected_disconnect") {
		t.Errorf("WillPayload missing disconnect reason: %s", payload)
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("genvis-test")
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload = %s, missing online status", online)
	}
	if !strings.Contains(online, "genvis-test") {
		t.Errorf("online payload = %s, missing client ID", online)
	}

	offline := buildOfflinePayload("genvis-test")
	if !strings.Contains(offline, `"status":"offline"`) {
		t.Errorf("offline payload = %s, missing offline status", offline)
	}
	if !strings.Contains(offline, "graceful_shutdown") {
		t.Errorf("offline payload = %s, missing shutdown reason", offline)
	}
}

// =============================================================================
// Topics Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "FeatureState",
			builder: func() string {
				return Topics{}.FeatureState("ExposureTime")
			},
			expected: "genvis/feature/ExposureTime/state",
		},
		{
			name: "FeatureSet",
			builder: func() string {
				return Topics{}.FeatureSet("ExposureTime")
			},
			expected: "genvis/feature/ExposureTime/set",
		},
		{
			name: "FeatureExecute",
			builder: func() string {
				return Topics{}.FeatureExecute("AcquisitionStart")
			},
			expected: "genvis/feature/AcquisitionStart/execute",
		},
		{
			name: "CameraHealth",
			builder: func() string {
				return Topics{}.CameraHealth("cam-001")
			},
			expected: "genvis/camera/cam-001/health",
		},
		{
			name: "SystemStatus",
			builder: func() string {
				return Topics{}.SystemStatus()
			},
			expected: "genvis/system/status",
		},
		{
			name: "AllFeatureStates",
			builder: func() string {
				return Topics{}.AllFeatureStates()
			},
			expected: "genvis/feature/+/state",
		},
		{
			name: "AllFeatureSets",
			builder: func() string {
				return Topics{}.AllFeatureSets()
			},
			expected: "genvis/feature/+/set",
		},
		{
			name: "AllFeatureExecutes",
			builder: func() string {
				return Topics{}.AllFeatureExecutes()
			},
			expected: "genvis/feature/+/execute",
		},
		{
			name: "AllCameraHealth",
			builder: func() string {
				return Topics{}.AllCameraHealth()
			},
			expected: "genvis/camera/+/health",
		},
		{
			name: "AllTopics",
			builder: func() string {
				return Topics{}.AllTopics()
			},
			expected: "genvis/#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}
