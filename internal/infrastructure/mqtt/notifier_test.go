package mqtt

import (
	"testing"
	"time"

	"github.com/genvis/genvis-core/internal/feature"
)

func TestFeatureFromTopic(t *testing.T) {
	tests := []struct {
		name   string
		topic  string
		suffix string
		want   string
		wantOk bool
	}{
		{
			name:   "valid set topic",
			topic:  "genvis/feature/ExposureTime/set",
			suffix: "set",
			want:   "ExposureTime",
			wantOk: true,
		},
		{
			name:   "valid execute topic",
			topic:  "genvis/feature/AcquisitionStart/execute",
			suffix: "execute",
			want:   "AcquisitionStart",
			wantOk: true,
		},
		{
			name:   "wrong suffix",
			topic:  "genvis/feature/ExposureTime/state",
			suffix: "set",
			wantOk: false,
		},
		{
			name:   "wrong prefix",
			topic:  "genvis/camera/cam-001/health",
			suffix: "set",
			wantOk: false,
		},
		{
			name:   "empty feature name",
			topic:  "genvis/feature//set",
			suffix: "set",
			wantOk: false,
		},
		{
			name:   "nested feature segment",
			topic:  "genvis/feature/a/b/set",
			suffix: "set",
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := featureFromTopic(tt.topic, tt.suffix)
			if ok != tt.wantOk {
				t.Fatalf("featureFromTopic(%q) ok = %v, want %v", tt.topic, ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("featureFromTopic(%q) = %q, want %q", tt.topic, got, tt.want)
			}
		})
	}
}

func TestFeatureNotifierNeverBlocks(t *testing.T) {
	// No running loop drains the queue, so once it fills every
	// further notify must drop instead of blocking the caller.
	n := NewFeatureNotifier(disconnectedClient(), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < stateQueueSize+10; i++ {
			n.NotifyFeature(feature.Update{Feature: "ExposureTime", Value: "1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyFeature blocked with full queue")
	}
}
