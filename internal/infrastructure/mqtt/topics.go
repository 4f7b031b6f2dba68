package mqtt

import "fmt"

// Topic prefixes for the GenVis MQTT surface.
//
// All topics use the flat scheme: genvis/{category}/{name}/{suffix}
const (
	// TopicPrefix is the base for all GenVis topics.
	TopicPrefix = "genvis"

	// TopicPrefixFeature is the base for feature topics.
	TopicPrefixFeature = "genvis/feature"

	// TopicPrefixCamera is the base for camera topics.
	TopicPrefixCamera = "genvis/camera"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "genvis/system"
)

// Topics provides builders for GenVis MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.FeatureState("ExposureTime")
//	// Returns: "genvis/feature/ExposureTime/state"
type Topics struct{}

// =============================================================================
// Feature Topics
// =============================================================================

// FeatureState returns the topic for feature value updates.
// Published retained so late subscribers see the current value.
//
// Example: genvis/feature/ExposureTime/state
func (Topics) FeatureState(feature string) string {
	return fmt.Sprintf("%s/%s/state", TopicPrefixFeature, feature)
}

// FeatureSet returns the topic for remote feature writes.
// The daemon subscribes here and applies the payload as a set.
//
// Example: genvis/feature/ExposureTime/set
func (Topics) FeatureSet(feature string) string {
	return fmt.Sprintf("%s/%s/set", TopicPrefixFeature, feature)
}

// FeatureExecute returns the topic for remote command execution.
//
// Example: genvis/feature/AcquisitionStart/execute
func (Topics) FeatureExecute(feature string) string {
	return fmt.Sprintf("%s/%s/execute", TopicPrefixFeature, feature)
}

// =============================================================================
// Camera Topics
// =============================================================================

// CameraHealth returns the topic for camera health status.
//
// Example: genvis/camera/cam-001/health
func (Topics) CameraHealth(cameraID string) string {
	return fmt.Sprintf("%s/%s/health", TopicPrefixCamera, cameraID)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the daemon status topic.
// Carries the retained online/offline payload and the LWT.
//
// Example: genvis/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllFeatureStates returns a pattern matching all feature state updates.
//
// Pattern: genvis/feature/+/state
func (Topics) AllFeatureStates() string {
	return fmt.Sprintf("%s/+/state", TopicPrefixFeature)
}

// AllFeatureSets returns a pattern matching all remote feature writes.
//
// Pattern: genvis/feature/+/set
func (Topics) AllFeatureSets() string {
	return fmt.Sprintf("%s/+/set", TopicPrefixFeature)
}

// AllFeatureExecutes returns a pattern matching all remote command executions.
//
// Pattern: genvis/feature/+/execute
func (Topics) AllFeatureExecutes() string {
	return fmt.Sprintf("%s/+/execute", TopicPrefixFeature)
}

// AllCameraHealth returns a pattern matching all camera health updates.
//
// Pattern: genvis/camera/+/health
func (Topics) AllCameraHealth() string {
	return fmt.Sprintf("%s/+/health", TopicPrefixCamera)
}

// AllTopics returns a pattern matching all GenVis topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: genvis/#
func (Topics) AllTopics() string {
	return "genvis/#"
}
