package postgres

import "testing"

func TestMarshalPayload(t *testing.T) {
	t.Parallel()

	empty, err := marshalPayload(nil)
	if err != nil || empty != "{}" {
		t.Fatalf("expected empty object, got %q err=%v", empty, err)
	}

	raw, err := marshalPayload(map[string]any{"match_id": "m1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := unmarshalPayload(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["match_id"] != "m1" {
		t.Fatalf("unexpected payload: %v", decoded)
	}

	if got, _ := unmarshalPayload(" {} "); got != nil {
		t.Fatalf("expected nil payload for empty object, got %v", got)
	}
}
