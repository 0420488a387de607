package store

import (
	"encoding/json"
	"fmt"

	kioerrors "github.com/harunnryd/kioku/internal/errors"
)

// Serialize encodes a schema as pretty-printed JSON. Timestamps are encoded
// as RFC 3339 strings and absent optional fields are omitted entirely.
func Serialize(s *Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

// Deserialize parses bytes into a schema. Malformed JSON, a missing version
// field, or an unknown version all surface as ErrInvalidSchema so the
// persistence engine can fall back to a backup; raw json errors never escape.
func Deserialize(data []byte) (*Schema, error) {
	// Probe the version first so a wrong-typed or absent tag is reported as
	// an invalid schema instead of a partially decoded document.
	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", kioerrors.ErrInvalidSchema, err)
	}
	if probe.Version == nil {
		return nil, fmt.Errorf("%w: missing version field", kioerrors.ErrInvalidSchema)
	}
	if *probe.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: unknown version %d", kioerrors.ErrInvalidSchema, *probe.Version)
	}

	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", kioerrors.ErrInvalidSchema, err)
	}

	normalize(&s)
	return &s, nil
}

// normalize allocates any maps the document omitted and drops empty index
// entries so callers never see nil aggregates.
func normalize(s *Schema) {
	if s.Sessions == nil {
		s.Sessions = make(map[string]Session)
	}
	if s.Captures == nil {
		s.Captures = make(map[string]Capture)
	}
	if s.SessionsByProject == nil {
		s.SessionsByProject = make(map[string][]string)
	}
	for projectID, ids := range s.SessionsByProject {
		deduped := make([]string, 0, len(ids))
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			deduped = append(deduped, id)
		}
		if len(deduped) == 0 {
			delete(s.SessionsByProject, projectID)
			continue
		}
		s.SessionsByProject[projectID] = deduped
	}
}
