// Package json encodes advisor session transcripts for export.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/advisor"
)

// envelope is the v1 wire format for an exported transcript.
type envelope struct {
	Version   int          `json:"version"`
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Student   *studentDTO  `json:"student,omitempty"`
	Messages  []messageDTO `json:"messages"`
}

type studentDTO struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Guest bool   `json:"guest,omitempty"`
}

type messageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is a decoded export. It is a read-only snapshot, not a
// resumable session.
type Transcript struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Student   *advisor.StudentRecord
	Messages  []advisor.Message
}

// MarshalSession serializes a session's transcript to JSON in v1 envelope
// format. Only the student's identifier and display name are exported.
func MarshalSession(s *advisor.Session) ([]byte, error) {
	tr := s.Transcript()
	env := envelope{
		Version:   1,
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  make([]messageDTO, len(tr)),
	}
	if rec, ok := s.Student(); ok && s.Authenticated() {
		env.Student = &studentDTO{ID: rec.ID, Name: rec.Name(), Guest: rec.Guest}
	}
	for i, m := range tr {
		env.Messages[i] = messageDTO{Role: string(m.Role), Content: m.Content, Timestamp: m.Timestamp}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalTranscript deserializes a transcript from JSON in v1 envelope format.
func UnmarshalTranscript(data []byte) (Transcript, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Transcript{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return Transcript{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]advisor.Message, len(env.Messages))
	for i, dto := range env.Messages {
		role := advisor.Role(dto.Role)
		if role != advisor.RoleUser && role != advisor.RoleAssistant {
			return Transcript{}, fmt.Errorf("message %d: unknown role %q", i, dto.Role)
		}
		msgs[i] = advisor.Message{Role: role, Content: dto.Content, Timestamp: dto.Timestamp}
	}
	t := Transcript{
		ID:        env.ID,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		Messages:  msgs,
	}
	if env.Student != nil {
		rec := advisor.StudentRecord{
			ID:      env.Student.ID,
			Guest:   env.Student.Guest,
			Columns: []string{"name"},
			Fields:  map[string]string{"name": env.Student.Name},
		}
		t.Student = &rec
	}
	return t, nil
}

// Save writes a session transcript to a JSON file, creating parent
// directories as needed.
func Save(path string, s *advisor.Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a transcript from a JSON file.
func Load(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalTranscript(data)
}
