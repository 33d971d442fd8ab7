// Command schema writes the JSON Schema of the websocket messages, for web
// clients that validate what they receive.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/vladimirvolkov/bouncer/internal/ws"
)

// protocol groups every payload under the name of its message.
type protocol struct {
	Envelope     ws.Message             `json:"envelope"`
	Pointer      ws.PointerPayload      `json:"pointer"`
	Resize       ws.ResizePayload       `json:"resize"`
	Ping         ws.PingPayload         `json:"ping"`
	Pong         ws.PongPayload         `json:"pong"`
	Frame        ws.FramePayload        `json:"frame"`
	SessionStart ws.SessionStartPayload `json:"sessionStart"`
	BallLaunched ws.BallLaunchedPayload `json:"ballLaunched"`
}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "-out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(protocol))
	schema.Title = "Bouncer wire protocol"
	schema.Description = "Payloads carried in the {type, tick, payload} websocket envelope"
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
