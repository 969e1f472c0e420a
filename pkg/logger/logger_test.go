package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_DefaultsOnInvalidLevel(t *testing.T) {
	l := New(Config{Level: "not-a-level", Format: "text"})
	if l.Logger.Level != logrus.InfoLevel {
		t.Fatalf("expected info level fallback, got %v", l.Logger.Level)
	}
	if _, ok := l.Logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("expected text formatter, got %T", l.Logger.Formatter)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	l := New(Config{Level: "debug", Format: "json"})
	if l.Logger.Level != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", l.Logger.Level)
	}
	if _, ok := l.Logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected json formatter, got %T", l.Logger.Formatter)
	}
}

func TestNewDefault_TagsComponent(t *testing.T) {
	l := NewDefault("auction-engine")
	entry := l.WithField("extra", "value")
	if entry.Data["component"] != "auction-engine" {
		t.Fatalf("expected component field to survive, got %v", entry.Data["component"])
	}
	if entry.Data["extra"] != "value" {
		t.Fatalf("expected extra field set, got %v", entry.Data["extra"])
	}
}

func TestWithError_SetsErrorField(t *testing.T) {
	l := NewDefault("test")
	entry := l.WithError(errBoom)
	if entry.Data["error"] != errBoom {
		t.Fatalf("expected error field to be set")
	}
}

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
