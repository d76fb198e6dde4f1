package action

import (
	"context"
	"log/slog"
	"strings"
)

// Handler is an slog.Handler writing records to a Host's log channel.
// Attributes are rendered as key=value after the message.
type Handler struct {
	host   Host
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// Compile-time check to ensure Handler implements slog.Handler
var _ slog.Handler = (*Handler)(nil)

// NewHandler creates a Handler that drops records below level.
func NewHandler(host Host, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{host: host, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Message)

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, prefix, a)
		return true
	})

	msg := sb.String()
	switch {
	case r.Level >= slog.LevelError:
		h.host.Errorf("%s", msg)
	case r.Level >= slog.LevelWarn:
		h.host.Warningf("%s", msg)
	case r.Level >= slog.LevelInfo:
		h.host.Infof("%s", msg)
	default:
		h.host.Debugf("%s", msg)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	prefix := strings.Join(h.groups, ".")
	h2.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string{}, h.groups...), name)
	return &h2
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, key, ga)
		}
		return
	}

	sb.WriteByte(' ')
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(a.Value.String())
}
