// Package mqtt provides MQTT client connectivity for GenVis Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// GenVis uses MQTT as its outward event surface. Feature value changes,
// poll samples and camera health reports are published for external
// consumers, and remote set/execute requests are accepted back in.
//
//	GenVis Core ↔ MQTT Broker ↔ Operator tooling / dashboards
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all feature state updates
//	err = client.Subscribe(mqtt.Topics{}.AllFeatureStates(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a remote feature write
//	topic := mqtt.Topics{}.FeatureSet("ExposureTime")
//	client.Publish(topic, []byte(`{"value":"1500"}`), 1, false)
package mqtt
