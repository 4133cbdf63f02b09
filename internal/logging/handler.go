package logging

import (
	"context"
	"log/slog"
)

// CategoryKey is the slog attribute that overrides a handler's category.
const CategoryKey = "category"

// Handler is a slog.Handler that routes records through a Facility, so code
// written against log/slog lands in the same sinks and format.
//
// slog levels fold into the four facility levels. Attributes become record
// metadata; groups become nested objects.
type Handler struct {
	f        *Facility
	category string
	base     Metadata
	groups   []string
}

var _ slog.Handler = (*Handler)(nil)

// Handler returns a slog handler that logs under category.
func (f *Facility) Handler(category string) *Handler {
	return &Handler{f: f, category: category}
}

// Logger returns a slog.Logger that logs under category.
func (f *Facility) Logger(category string) *slog.Logger {
	return slog.New(f.Handler(category))
}

// SetDefault installs the facility as the slog default logger.
func (f *Facility) SetDefault(category string) {
	slog.SetDefault(f.Logger(category))
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.f.Enabled(levelFromSlog(level))
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	category := h.category
	meta := cloneMetadata(h.base)

	r.Attrs(func(a slog.Attr) bool {
		if len(h.groups) == 0 && a.Key == CategoryKey {
			category = a.Value.String()
			return true
		}
		meta = addAttr(meta, h.groups, a)
		return true
	})

	t := r.Time
	if t.IsZero() {
		t = h.f.now()
	}

	h.f.dispatch(Record{
		Time:     t,
		Level:    levelFromSlog(r.Level),
		Category: category,
		Message:  r.Message,
		Metadata: meta,
	})
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.base = cloneMetadata(h.base)
	for _, a := range attrs {
		if len(h.groups) == 0 && a.Key == CategoryKey {
			h2.category = a.Value.String()
			continue
		}
		h2.base = addAttr(h2.base, h.groups, a)
	}
	return &h2
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &h2
}

// addAttr stores a under the group path, creating nested maps as needed.
// Empty attributes are dropped and empty-key groups are inlined, as slog
// handlers are expected to do.
func addAttr(meta Metadata, groups []string, a slog.Attr) Metadata {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return meta
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return meta
		}
		path := groups
		if a.Key != "" {
			path = append(groups[:len(groups):len(groups)], a.Key)
		}
		for _, ga := range attrs {
			meta = addAttr(meta, path, ga)
		}
		return meta
	}

	if meta == nil {
		meta = Metadata{}
	}
	target := map[string]any(meta)
	for _, g := range groups {
		next, ok := target[g].(map[string]any)
		if !ok {
			next = map[string]any{}
			target[g] = next
		}
		target = next
	}
	target[a.Key] = attrValue(a.Value)
	return meta
}

func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time()
	default:
		return v.Any()
	}
}

// cloneMetadata deep-copies nested maps so derived handlers never share them.
func cloneMetadata(m Metadata) Metadata {
	if m == nil {
		return nil
	}
	return Metadata(cloneMap(m))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = cloneMap(nested)
		}
		out[k] = v
	}
	return out
}
