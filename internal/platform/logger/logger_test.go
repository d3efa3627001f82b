package logger

import (
	"bytes"
	"context"
	"testing"

	kit "brushline/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		" INFO ":   zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"warn":     zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"":         zerolog.DebugLevel,
		"verbose":  zerolog.DebugLevel,
		"disabled": zerolog.Disabled,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// Init runs once per process, so one test owns the root logger
func TestRootAndChildren(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "console", Service: "brushline-test", Writer: &buf, WithCaller: true})
	Init(Options{Level: "error"}) // ignored

	Get().Info().Msg("boot")
	Get().Debug().Msg("below-level")
	Named("timeline").Info().Msg("named-msg")
	if Named("") != Get() {
		t.Fatalf("Named(\"\") should return the root")
	}

	ctx := WithRequest(context.Background(), "req-123", "s-abc")
	C(ctx).Info().Msg("ctx-msg")
	C(WithRequest(context.Background(), "", "")).Info().Msg("bare-msg")

	out := buf.String()
	for _, want := range []string{"boot", "service=", "brushline-test", "named-msg", "component=", "timeline",
		"ctx-msg", "request_id=", "req-123", "session_id=", "s-abc", "bare-msg"} {
		kit.MustContain(t, out, want)
	}
	if bytes.Contains(buf.Bytes(), []byte("below-level")) {
		t.Fatalf("debug line leaked at info level")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "brushline-api" {
		t.Fatalf("FromEnv = %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("caller/sample = %+v", opt)
	}
}
