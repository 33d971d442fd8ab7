package ws

import (
	"encoding/json"
	"testing"
)

func TestNewMessageWrapsPayload(t *testing.T) {
	msg, err := NewMessage(MsgFrame, 7, FramePayload{
		Width:  800,
		Height: 600,
		DeltaT: 16,
		Sprites: []SpritePayload{
			{ID: "ball_0", Kind: "ball", Label: "B1", X: 10, Y: 20, W: 8, H: 8, Init: true},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(msg)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["type"] != float64(MsgFrame) || raw["tick"] != float64(7) {
		t.Errorf("envelope = %v", raw)
	}
	sprite := raw["payload"].(map[string]any)["sprites"].([]any)[0].(map[string]any)
	if sprite["label"] != "B1" || sprite["init"] != true || sprite["w"] != float64(8) {
		t.Errorf("sprite = %v", sprite)
	}
	if _, ok := raw["payload"].(map[string]any)["bounces"]; ok {
		t.Error("empty bounces should be omitted")
	}
}

func TestDecodeClientMessages(t *testing.T) {
	msg, err := Decode([]byte(`{"type":1,"tick":0,"payload":{"x":140,"y":-3}}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != MsgPointer {
		t.Fatalf("type = %#x", msg.Type)
	}
	var p PointerPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatal(err)
	}
	if p.X != 140 || p.Y != -3 {
		t.Errorf("pointer = %+v", p)
	}

	if _, err := Decode([]byte(`{"type":"pointer"}`)); err == nil {
		t.Error("expected an error for a string type")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("expected an error for garbage")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "Player"},
		{"a", "Player"},
		{"Al!ce", "Alce"},
		{"<script>", "script"},
		{"Марина", "Марина"},
		{"abcdefghijklmnop", "abcdefghijkl"},
		{"\xff\xfe", "Player"},
	}
	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
