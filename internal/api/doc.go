// Package api implements the HTTP REST API and WebSocket server for GenVis Core.
//
// This package provides:
//   - REST endpoints for feature reads, writes, command execution and history
//   - WebSocket hub for real-time feature value broadcasts
//   - JWT authentication with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between user interfaces and the feature registry.
// Every read and write goes through the registry's node graph, so
// dependent features are re-evaluated and cache invalidation applies
// exactly as it does for MQTT or poller access. Value changes flow back
// out through the hub to WebSocket clients subscribed to
// "feature.changed".
//
// # Security
//
// Authentication uses JWT tokens signed with the configured secret.
// WebSocket connections use single-use tickets to prevent token leakage
// in URLs.
//
// # Graceful Degradation
//
// The server operates without MQTT or a database — feature access and
// WebSocket connections work, only the history endpoint and MQTT
// metrics degrade.
package api
