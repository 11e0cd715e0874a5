// SPDX-License-Identifier: MIT
package validate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name           string
		value          string
		allowedSchemes []string
		wantErr        bool
	}{
		{"valid http", "http://example.com", []string{"http", "https"}, false},
		{"valid https", "https://example.com", []string{"http", "https"}, false},
		{"empty url", "", []string{"http"}, true},
		{"no host", "http://", []string{"http"}, true},
		{"invalid scheme", "ftp://example.com", []string{"http", "https"}, true},
		{"no scheme", "example.com", []string{"http"}, true},
		{"with path", "https://github.com/ManuGH/livegrab", []string{"https"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.URL("testURL", tt.value, tt.allowedSchemes)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_ListenAddr(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"any host", ":8080", false},
		{"loopback", "127.0.0.1:9090", false},
		{"missing port", "localhost", true},
		{"port zero", ":0", true},
		{"port too large", ":65536", true},
		{"named port", ":http", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.ListenAddr("serve.listen", tt.addr)
			if got := !v.IsValid(); got != tt.wantErr {
				t.Errorf("ListenAddr(%q) error = %v, want %v (%v)", tt.addr, got, tt.wantErr, v.Err())
			}
		})
	}
}

func TestValidator_Timezone(t *testing.T) {
	tests := []struct {
		name    string
		zone    string
		wantErr bool
	}{
		{"london", "Europe/London", false},
		{"utc", "UTC", false},
		{"empty", "", true},
		{"unknown", "Mars/Olympus_Mons", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Timezone("timezone", tt.zone)
			if got := !v.IsValid(); got != tt.wantErr {
				t.Errorf("Timezone(%q) error = %v, want %v", tt.zone, got, tt.wantErr)
			}
		})
	}
}

func TestValidator_OutputPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name        string
		path        string
		allowStdout bool
		wantErr     bool
	}{
		{"existing dir", filepath.Join(dir, "out.m3u"), false, false},
		{"missing dir", filepath.Join(dir, "nope", "out.m3u"), false, true},
		{"stdout allowed", "-", true, false},
		{"stdout rejected", "-", false, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.OutputPath("out", tt.path, tt.allowStdout)
			if got := !v.IsValid(); got != tt.wantErr {
				t.Errorf("OutputPath(%q) error = %v, want %v (%v)", tt.path, got, tt.wantErr, v.Err())
			}
		})
	}
}

func TestValidator_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "channels.txt")
	if err := os.WriteFile(file, []byte("## empty\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	v := New()
	v.File("channelsFile", file)
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}

	v = New()
	v.File("channelsFile", dir)
	if v.IsValid() {
		t.Error("expected error for directory")
	}

	v = New()
	v.File("channelsFile", filepath.Join(dir, "missing.txt"))
	if v.IsValid() {
		t.Error("expected error for missing file")
	}
}

func TestValidator_StreamURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"manifest", "https://cdn.example.com/live/index.m3u8", false},
		{"plain http", "http://10.0.0.2:8001/1:0:1:0", false},
		{"no path", "https://cdn.example.com", true},
		{"rtmp", "rtmp://cdn.example.com/live", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.StreamURL("url", tt.url)
			if got := !v.IsValid(); got != tt.wantErr {
				t.Errorf("StreamURL(%q) error = %v, want %v", tt.url, got, tt.wantErr)
			}
		})
	}
}

func TestValidator_Numbers(t *testing.T) {
	v := New()
	v.Positive("a", 0)
	v.NonNegative("b", -1)
	v.Range("c", 11, 1, 10)
	v.PositiveDuration("d", -time.Second)
	v.NotEmpty("e", "   ")
	v.Choice("f", "xml", LogFormats)

	if len(v.Errors()) != 6 {
		t.Fatalf("expected 6 errors, got %d: %v", len(v.Errors()), v.Err())
	}
}

func TestValidationError_Aggregates(t *testing.T) {
	v := New()
	if v.Err() != nil {
		t.Fatal("empty validator must not return an error")
	}
	v.AddError("one", "first", 1)
	v.AddError("two", "second", 2)

	err := v.Err()
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(verr.Errors()))
	}
	if !strings.Contains(err.Error(), "one") || !strings.Contains(err.Error(), "; ") {
		t.Errorf("unexpected message: %s", err.Error())
	}

	v.AddError("three", "third", 3)
	if len(verr.Errors()) != 2 {
		t.Error("ValidationError must not alias the validator's slice")
	}
}

func TestParseLogLevel(t *testing.T) {
	want := map[string]zerolog.Level{
		"trace": zerolog.TraceLevel,
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
	}
	for _, name := range LogLevels.Values() {
		got, err := ParseLogLevel(name)
		if err != nil {
			t.Errorf("ParseLogLevel(%q) unexpected error: %v", name, err)
			continue
		}
		if got != want[name] {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", name, got, want[name])
		}
	}
	// zerolog accepts these, livegrab config does not.
	for _, name := range []string{"verbose", "fatal", "INFO", ""} {
		if _, err := ParseLogLevel(name); !errors.Is(err, ErrInvalidLogLevel) {
			t.Errorf("ParseLogLevel(%q) = %v, want ErrInvalidLogLevel", name, err)
		}
	}
}

func TestChoice(t *testing.T) {
	v := New()
	v.Choice("logFormat", "console", LogFormats)
	v.Choice("telemetry.exporter", "zipkin", Exporters)

	errs := v.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Field != "telemetry.exporter" {
		t.Errorf("field = %q", errs[0].Field)
	}
	if want := `trace exporter must be one of: grpc, http, got "zipkin"`; errs[0].Message != want {
		t.Errorf("message = %q, want %q", errs[0].Message, want)
	}

	vals := LogFormats.Values()
	vals[0] = "xml"
	if !LogFormats.Contains("json") {
		t.Error("Values must return a copy")
	}
}
