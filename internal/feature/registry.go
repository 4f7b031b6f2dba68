package feature

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/genvis/genvis-core/internal/camera"
	"github.com/genvis/genvis-core/internal/genapi"
)

// ErrFeatureNotFound is returned when no node carries the requested
// name.
var ErrFeatureNotFound = errors.New("feature: not found")

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Update describes one observed feature value, fanned out to MQTT and
// WebSocket subscribers after every successful set and poll sample.
type Update struct {
	Feature   string    `json:"feature"`
	Value     string    `json:"value"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier receives feature updates. Implementations must not block;
// the registry calls them while holding its lock.
type Notifier interface {
	NotifyFeature(u Update)
}

// MultiNotifier fans one update out to several notifiers in order.
type MultiNotifier []Notifier

// NotifyFeature delivers the update to every member.
func (m MultiNotifier) NotifyFeature(u Update) {
	for _, n := range m {
		n.NotifyFeature(u)
	}
}

// Info is the metadata surface of one feature, as served by Describe
// and List.
type Info struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	DisplayName    string `json:"display_name,omitempty"`
	ToolTip        string `json:"tooltip,omitempty"`
	Description    string `json:"description,omitempty"`
	Visibility     string `json:"visibility"`
	Access         string `json:"access"`
	Unit           string `json:"unit,omitempty"`
	Representation string `json:"representation,omitempty"`
	Deprecated     bool   `json:"deprecated,omitempty"`

	// Value is the current formatted value, empty when the feature is
	// not readable.
	Value string `json:"value,omitempty"`

	// Entries lists the valid entry names of an enumeration.
	Entries []string `json:"entries,omitempty"`
}

// PollTarget is one register-backed feature that declared a polling
// interval in its description.
type PollTarget struct {
	Name     string
	Interval time.Duration
}

// Registry is the shared-context layer over one camera: the immutable
// node graph, the mutable value/cache context and the device, guarded
// by a single mutex. Every public operation takes the lock for its
// whole duration, so reads and writes from the API, the poller and the
// MQTT bridge never interleave mid-operation.
type Registry struct {
	mu    sync.Mutex
	nodes *genapi.NodeStore
	ctxt  *genapi.ValueCtxt
	dev   camera.Device

	logger   Logger
	history  HistoryRepository
	notifier Notifier
}

// New creates a registry over a built graph and its device.
func New(dev camera.Device, nodes *genapi.NodeStore, ctxt *genapi.ValueCtxt) *Registry {
	return &Registry{
		nodes:  nodes,
		ctxt:   ctxt,
		dev:    dev,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetHistory attaches a history repository. Recording failures are
// logged, never surfaced to the caller of a set.
func (r *Registry) SetHistory(h HistoryRepository) {
	r.history = h
}

// SetNotifier attaches an update notifier.
func (r *Registry) SetNotifier(n Notifier) {
	r.notifier = n
}

// eval builds a fresh evaluation context. Callers must hold r.mu.
func (r *Registry) eval() *genapi.Eval {
	return genapi.NewEval(r.dev, r.nodes, r.ctxt)
}

// id resolves a feature name, distinguishing "never heard of" from
// "referenced but not declared" (both are not-found to callers).
func (r *Registry) id(name string) (genapi.NodeID, error) {
	id, ok := r.nodes.ID(name)
	if !ok {
		return genapi.NoNode, fmt.Errorf("%w: %q", ErrFeatureNotFound, name)
	}
	if _, ok := r.nodes.NodeOpt(id); !ok {
		return genapi.NoNode, fmt.Errorf("%w: %q", ErrFeatureNotFound, name)
	}
	return id, nil
}

// recordAndNotify persists and fans out one observed value. Callers
// must hold r.mu.
func (r *Registry) recordAndNotify(ctx context.Context, name, value, source string) {
	if r.history != nil {
		if err := r.history.Record(ctx, name, value, source); err != nil {
			r.logger.Warn("feature history record failed", "feature", name, "error", err)
		}
	}
	if r.notifier != nil {
		r.notifier.NotifyFeature(Update{
			Feature:   name,
			Value:     value,
			Source:    source,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ─── Typed access ──────────────────────────────────────────────────

// GetInt reads an integer-valued feature by name.
func (r *Registry) GetInt(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return 0, err
	}
	return r.eval().IntValueOf(id)
}

// SetInt writes an integer-valued feature by name.
func (r *Registry) SetInt(ctx context.Context, name string, v int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return err
	}
	if err := r.eval().SetIntValueOf(id, v); err != nil {
		return err
	}
	r.recordAndNotify(ctx, name, strconv.FormatInt(v, 10), SourceSet)
	return nil
}

// GetFloat reads a float-valued feature by name.
func (r *Registry) GetFloat(ctx context.Context, name string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return 0, err
	}
	return r.eval().FloatValueOf(id)
}

// SetFloat writes a float-valued feature by name.
func (r *Registry) SetFloat(ctx context.Context, name string, v float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return err
	}
	if err := r.eval().SetFloatValueOf(id, v); err != nil {
		return err
	}
	r.recordAndNotify(ctx, name, strconv.FormatFloat(v, 'g', -1, 64), SourceSet)
	return nil
}

// GetBool reads a boolean-valued feature by name.
func (r *Registry) GetBool(ctx context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return false, err
	}
	return r.eval().BoolValueOf(id)
}

// SetBool writes a boolean-valued feature by name.
func (r *Registry) SetBool(ctx context.Context, name string, v bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return err
	}
	if err := r.eval().SetBoolValueOf(id, v); err != nil {
		return err
	}
	r.recordAndNotify(ctx, name, strconv.FormatBool(v), SourceSet)
	return nil
}

// GetString reads a string-valued feature by name.
func (r *Registry) GetString(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return "", err
	}
	return r.eval().StrValueOf(id)
}

// SetString writes a string-valued feature by name.
func (r *Registry) SetString(ctx context.Context, name string, v string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return err
	}
	if err := r.eval().SetStrValueOf(id, v); err != nil {
		return err
	}
	r.recordAndNotify(ctx, name, v, SourceSet)
	return nil
}

// GetEnum reads the current entry name of an enumeration feature.
func (r *Registry) GetEnum(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return "", err
	}
	ev := r.eval()
	e, err := ev.AsEnumeration(id)
	if err != nil {
		return "", err
	}
	entry, err := e.CurrentEntry(ev)
	if err != nil {
		return "", err
	}
	return entry.Name, nil
}

// SetEnum writes an enumeration feature by entry name.
func (r *Registry) SetEnum(ctx context.Context, name, entry string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return err
	}
	ev := r.eval()
	e, err := ev.AsEnumeration(id)
	if err != nil {
		return err
	}
	if err := e.SetEntryByName(ev, entry); err != nil {
		return err
	}
	r.recordAndNotify(ctx, name, entry, SourceSet)
	return nil
}

// Execute fires a command feature.
func (r *Registry) Execute(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return err
	}
	ev := r.eval()
	c, err := ev.AsCommand(id)
	if err != nil {
		return err
	}
	if err := c.Execute(ev); err != nil {
		return err
	}
	r.recordAndNotify(ctx, name, "executed", SourceSet)
	return nil
}

// SetFromString writes a feature from its string rendering, dispatching
// on the node's capability. Enumerations take an entry name, booleans
// "true"/"false", numerics their decimal forms. Commands are rejected;
// use Execute.
func (r *Registry) SetFromString(ctx context.Context, name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return err
	}

	ev := r.eval()
	switch t := r.nodes.Node(id).(type) {
	case genapi.IEnumeration:
		if err := t.SetEntryByName(ev, value); err != nil {
			return err
		}
	case genapi.IBoolean:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", genapi.ErrInvalidData, value)
		}
		if err := t.SetValue(ev, b); err != nil {
			return err
		}
	case genapi.IInteger:
		v, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", genapi.ErrInvalidData, value)
		}
		if err := t.SetValue(ev, v); err != nil {
			return err
		}
	case genapi.IFloat:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", genapi.ErrInvalidData, value)
		}
		if err := t.SetValue(ev, v); err != nil {
			return err
		}
	case genapi.IString:
		if err := t.SetValue(ev, value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: feature %q is not settable", genapi.ErrInvalidNode, name)
	}

	r.recordAndNotify(ctx, name, value, SourceSet)
	return nil
}

// ─── Metadata ──────────────────────────────────────────────────────

// Describe returns the metadata of one feature, including a best-effort
// current value for readable features.
func (r *Registry) Describe(ctx context.Context, name string) (Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return Info{}, err
	}
	return r.describeLocked(id), nil
}

// List returns metadata for every declared node, in declaration order.
// Synthetic nodes created for inline address formulas are skipped.
func (r *Registry) List(ctx context.Context) []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, r.nodes.Len())
	r.nodes.Visit(func(id genapi.NodeID, data genapi.NodeData) bool {
		if len(data.Attr().Name) > 0 && data.Attr().Name[0] == '_' {
			return true
		}
		infos = append(infos, r.describeLocked(id))
		return true
	})
	return infos
}

// describeLocked builds the Info for one stored node. Callers must hold
// r.mu.
func (r *Registry) describeLocked(id genapi.NodeID) Info {
	data := r.nodes.Node(id)
	elem := data.Elem()

	info := Info{
		Name:        data.Attr().Name,
		Kind:        data.NodeKind().String(),
		DisplayName: elem.DisplayName,
		ToolTip:     elem.ToolTip,
		Description: elem.Description,
		Visibility:  elem.Visibility.String(),
		Deprecated:  elem.IsDeprecated,
	}

	ev := r.eval()
	mode, err := ev.AccessModeOf(id)
	if err != nil {
		mode = genapi.AccessNA
	}
	info.Access = mode.String()

	switch t := data.(type) {
	case genapi.IEnumeration:
		for _, e := range t.Entries() {
			info.Entries = append(info.Entries, e.Name)
		}
	case genapi.IInteger:
		info.Unit = t.Unit()
		info.Representation = t.Representation().String()
	case genapi.IFloat:
		info.Unit = t.Unit()
		info.Representation = t.Representation().String()
	}

	if mode.Readable() {
		info.Value = r.formatLocked(id, data)
	}
	return info
}

// formatLocked renders the current value of a readable node, or ""
// when the read fails. Callers must hold r.mu.
func (r *Registry) formatLocked(id genapi.NodeID, data genapi.NodeData) string {
	ev := r.eval()
	switch t := data.(type) {
	case genapi.IEnumeration:
		entry, err := t.CurrentEntry(ev)
		if err != nil {
			return ""
		}
		return entry.Name
	case genapi.IInteger:
		v, err := t.Value(ev)
		if err != nil {
			return ""
		}
		return strconv.FormatInt(v, 10)
	case genapi.IFloat:
		v, err := t.Value(ev)
		if err != nil {
			return ""
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case genapi.IBoolean:
		v, err := t.Value(ev)
		if err != nil {
			return ""
		}
		return strconv.FormatBool(v)
	case genapi.IString:
		v, err := t.Value(ev)
		if err != nil {
			return ""
		}
		return v
	default:
		return ""
	}
}

// History queries the attached repository. Fails when none is
// configured.
func (r *Registry) History(ctx context.Context, q HistoryQuery) ([]HistoryEntry, error) {
	if r.history == nil {
		return nil, ErrHistoryDisabled
	}
	return r.history.History(ctx, q)
}

// ClearCache drops every cached register buffer.
func (r *Registry) ClearCache(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctxt.Cache.Clear()
	r.logger.Info("feature cache cleared")
}

// PollTargets lists the register-backed features whose description
// declared a polling interval, for the background sampler.
func (r *Registry) PollTargets() []PollTarget {
	r.mu.Lock()
	defer r.mu.Unlock()

	var targets []PollTarget
	r.nodes.Visit(func(id genapi.NodeID, data genapi.NodeData) bool {
		var interval time.Duration
		switch t := data.(type) {
		case *genapi.IntRegNode:
			interval = t.Reg.PollingTime
		case *genapi.MaskedIntRegNode:
			interval = t.Reg.PollingTime
		case *genapi.FloatRegNode:
			interval = t.Reg.PollingTime
		}
		if interval > 0 {
			targets = append(targets, PollTarget{Name: data.Attr().Name, Interval: interval})
		}
		return true
	})
	return targets
}

// Sample reads one numeric feature for the poller, recording it with
// the poll source. Integer-backed features convert exactly.
func (r *Registry) Sample(ctx context.Context, name string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.id(name)
	if err != nil {
		return 0, err
	}
	v, err := r.eval().FloatValueOf(id)
	if err != nil {
		return 0, err
	}
	r.recordAndNotify(ctx, name, strconv.FormatFloat(v, 'g', -1, 64), SourcePoll)
	return v, nil
}
