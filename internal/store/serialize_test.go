package store

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	kioerrors "github.com/harunnryd/kioku/internal/errors"
)

func timestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleSchema() *Schema {
	exit := timestamp("2025-03-14T10:45:30.123456789Z")
	feedbackAt := timestamp("2025-03-14T10:46:00Z")

	s := NewSchema()
	s.Sessions["01ARZ3"] = Session{
		ID:             "01ARZ3",
		ProjectID:      "garden",
		EntryTime:      timestamp("2025-03-14T09:00:00Z"),
		ExitTime:       &exit,
		CaptureID:      "01CAP1",
		FeedbackRating: 4,
		FeedbackTime:   &feedbackAt,
	}
	s.Sessions["01ARZ4"] = Session{
		ID:        "01ARZ4",
		ProjectID: "garden",
		EntryTime: timestamp("2025-03-14T11:00:00.5Z"),
	}
	s.SessionsByProject["garden"] = []string{"01ARZ3", "01ARZ4"}
	s.Captures["01CAP1"] = Capture{
		ID:            "01CAP1",
		SessionID:     "01ARZ3",
		Type:          CaptureQuick,
		OriginalInput: "intent: prune the roses\nnext: order mulch",
		ContextElements: ContextElements{
			Intent:        []string{"prune the roses"},
			NextAction:    []string{"order mulch"},
			OriginalInput: "intent: prune the roses\nnext: order mulch",
		},
		Timestamp: timestamp("2025-03-14T10:45:00Z"),
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	original := sampleSchema()

	data, err := Serialize(original)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	decoded, err := Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round trip mismatch:\noriginal: %+v\ndecoded:  %+v", original, decoded)
	}
}

func TestRoundTrip_EmptySchema(t *testing.T) {
	data, err := Serialize(NewSchema())
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	decoded, err := Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if !reflect.DeepEqual(NewSchema(), decoded) {
		t.Fatal("empty schema did not round trip")
	}
}

func TestSerialize_OmitsAbsentOptionals(t *testing.T) {
	s := NewSchema()
	s.Sessions["s1"] = Session{
		ID:        "s1",
		ProjectID: "p1",
		EntryTime: timestamp("2025-01-01T00:00:00Z"),
	}
	s.SessionsByProject["p1"] = []string{"s1"}

	data, err := Serialize(s)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	text := string(data)
	for _, field := range []string{"exitTime", "captureId", "feedbackRating", "feedbackTime"} {
		if strings.Contains(text, field) {
			t.Errorf("expected %s to be omitted for a fresh session, got:\n%s", field, text)
		}
	}
	if strings.Contains(text, "null") {
		t.Errorf("expected no null values, got:\n%s", text)
	}
}

func TestDeserialize_MalformedJSON(t *testing.T) {
	_, err := Deserialize([]byte("{not json"))
	if !errors.Is(err, kioerrors.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestDeserialize_MissingVersion(t *testing.T) {
	_, err := Deserialize([]byte(`{"sessions": {}, "captures": {}}`))
	if !errors.Is(err, kioerrors.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestDeserialize_WrongTypedVersion(t *testing.T) {
	_, err := Deserialize([]byte(`{"version": "one"}`))
	if !errors.Is(err, kioerrors.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestDeserialize_UnknownVersion(t *testing.T) {
	_, err := Deserialize([]byte(`{"version": 99}`))
	if !errors.Is(err, kioerrors.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestDeserialize_DedupesIndexEntries(t *testing.T) {
	doc := `{"version": 1, "sessionsByProject": {"p1": ["s1", "s1", "", "s2"], "empty": []}}`

	s, err := Deserialize([]byte(doc))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if !reflect.DeepEqual([]string{"s1", "s2"}, s.SessionsByProject["p1"]) {
		t.Errorf("expected deduped index, got %v", s.SessionsByProject["p1"])
	}
	if _, ok := s.SessionsByProject["empty"]; ok {
		t.Error("expected empty index entries to be dropped")
	}
}

func TestDeserialize_AllocatesMissingMaps(t *testing.T) {
	s, err := Deserialize([]byte(`{"version": 1}`))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if s.Sessions == nil || s.Captures == nil || s.SessionsByProject == nil {
		t.Fatal("expected all aggregate maps to be allocated")
	}
}
