// Package seed loads notification fixtures for the out-of-band seeding tool.
package seed

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hongminglow/moneyhive-bank/internal/models"
)

// File is the YAML layout accepted by the seed tool:
//
//	notifications:
//	  - message: Branch closed on Friday
//	    timestamp: 2024-05-03T09:00:00Z
type File struct {
	Notifications []Entry `yaml:"notifications"`
}

// Entry is one notification as written in the seed file.
type Entry struct {
	Message   string `yaml:"message"`
	Timestamp string `yaml:"timestamp"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Parse reads seed YAML from r. Timestamps without a zone are taken as UTC.
func Parse(r io.Reader) ([]models.Notification, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	notes := make([]models.Notification, 0, len(f.Notifications))
	for i, e := range f.Notifications {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			return nil, fmt.Errorf("notification %d: message is empty", i+1)
		}
		ts, err := parseTimestamp(e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("notification %d: %w", i+1, err)
		}
		notes = append(notes, models.Notification{Message: msg, Timestamp: ts})
	}
	return notes, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}
