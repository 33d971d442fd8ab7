package ws

import "encoding/json"

// Client -> Server message types
const (
	MsgPointer uint8 = 0x01
	MsgResize  uint8 = 0x02
	MsgPing    uint8 = 0x04
)

// Server -> Client message types
const (
	MsgFrame        uint8 = 0x81
	MsgSessionStart uint8 = 0x82
	MsgPong         uint8 = 0x86
	MsgBallLaunched uint8 = 0x88
)

type Message struct {
	Type    uint8           `json:"type"`
	Tick    uint64          `json:"tick"`
	Payload json.RawMessage `json:"payload"`
}

// PointerPayload is the latest pointer or touch position in page pixels.
type PointerPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ResizePayload reports the client's viewport.
type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type PingPayload struct {
	ClientTime uint64 `json:"clientTime"`
}

type PongPayload struct {
	ClientTime uint64 `json:"clientTime"`
	ServerTime uint64 `json:"serverTime"`
}

// SpritePayload is one surface to draw. Init marks a ball still in its
// spawn styling.
type SpritePayload struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Label string `json:"label,omitempty"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	W     int    `json:"w"`
	H     int    `json:"h"`
	Init  bool   `json:"init,omitempty"`
}

type BouncePayload struct {
	Ball   string `json:"ball"`
	Axis   string `json:"axis"`
	Paddle string `json:"paddle,omitempty"`
}

type FramePayload struct {
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	DeltaT  int64           `json:"deltaT"`
	Sprites []SpritePayload `json:"sprites"`
	Bounces []BouncePayload `json:"bounces,omitempty"`
}

type SessionConfigPayload struct {
	InitialBallSpeed     float64 `json:"initialBallSpeed"`
	IntervalBetweenBalls int64   `json:"intervalBetweenBalls"`
	MaxBalls             int     `json:"maxBalls,omitempty"`
	TickRate             int     `json:"tickRate"`
}

type SessionStartPayload struct {
	SessionID string               `json:"sessionId"`
	Name      string               `json:"name"`
	Config    SessionConfigPayload `json:"config"`
}

type BallLaunchedPayload struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Angle float64 `json:"angle"`
	DX    int     `json:"dx"`
	DY    int     `json:"dy"`
	Speed float64 `json:"speed"`
}

func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(data []byte) (Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	return msg, err
}

func NewMessage(typ uint8, tick uint64, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type:    typ,
		Tick:    tick,
		Payload: json.RawMessage(data),
	}, nil
}
