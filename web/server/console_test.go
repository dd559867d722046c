package server

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConsoleLogger_ForwardsEntries(t *testing.T) {
	messages := make(chan ConsoleMessage, 10)
	log := NewConsoleLogger(zap.NewNop(), messages).With(zap.String("renderID", "render-123"))

	log.Info("pass completed", zap.Int("pass", 3))

	select {
	case msg := <-messages:
		if msg.Message != "pass completed" {
			t.Errorf("Expected message 'pass completed', got %q", msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level info, got %q", msg.Level)
		}
		if msg.Fields["renderID"] != "render-123" || msg.Fields["pass"] != int64(3) {
			t.Errorf("Unexpected fields %v", msg.Fields)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	default:
		t.Fatal("Expected a console message")
	}
}

func TestConsoleLogger_SkipsDebug(t *testing.T) {
	messages := make(chan ConsoleMessage, 10)
	log := NewConsoleLogger(zap.NewNop(), messages)

	log.Debug("noisy")
	log.Warn("careful", zap.Error(errors.New("boom")))

	if len(messages) != 1 {
		t.Fatalf("Expected only the warning, got %d messages", len(messages))
	}
	if msg := <-messages; msg.Level != "warn" || msg.Fields["error"] != "boom" {
		t.Errorf("Unexpected message %+v", msg)
	}
}

func TestConsoleLogger_NeverBlocks(t *testing.T) {
	messages := make(chan ConsoleMessage, 2)
	log := NewConsoleLogger(zap.NewNop(), messages)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			log.Info("message")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Logging blocked on a full console channel")
	}
	if len(messages) != 2 {
		t.Errorf("Expected the channel to hold 2 messages, got %d", len(messages))
	}
}

func TestConsoleLogger_AlsoWritesToBase(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	messages := make(chan ConsoleMessage, 10)
	log := NewConsoleLogger(zap.New(core), messages)

	log.Debug("debug only")
	log.Info("both")

	if logs.Len() != 2 {
		t.Errorf("Base logger should see every entry, got %d", logs.Len())
	}
	if len(messages) != 1 {
		t.Errorf("Console should only see info and above, got %d", len(messages))
	}
}
