package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestWithAddsField(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "info")

	l.With("event", "abc").Info("state %s", "done")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if entry["event"] != "abc" || entry["message"] != "state done" || entry["level"] != "info" {
		t.Errorf("unexpected entry %v", entry)
	}

	buf.Reset()
	l.Info("plain")
	if bytes.Contains(buf.Bytes(), []byte(`"event"`)) {
		t.Errorf("parent logger picked up child field: %s", buf.String())
	}
}
