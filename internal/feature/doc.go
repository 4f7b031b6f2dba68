// Package feature is the shared-context layer over one camera's
// parameter graph.
//
// The engine underneath (internal/genapi) is deliberately lock-free:
// evaluation mutates the value store and the register cache, so every
// operation needs exclusive access to that context. Registry provides
// it — one mutex over (graph, values, cache, device) — and exposes the
// by-name typed surface the API, the MQTT bridge and the poller share:
//
//	API / WS ──┐
//	MQTT ──────┼──> Registry ──> genapi.Eval ──> camera.Device
//	Poller ────┘        │
//	                    ├──> HistoryRepository (SQLite)
//	                    └──> Notifier (MQTT + WebSocket fan-out)
//
// Every successful set and every poll sample is recorded to the
// history repository and fanned out to the notifier, so subscribers
// and the audit trail observe the same sequence of values the device
// saw.
package feature
