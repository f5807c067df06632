package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeEnvelope unwraps {"datos": …} and {"data": …}. Anything else is
// returned as-is. An empty body decodes to null.
func decodeEnvelope(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("backend returned invalid json")
	}
	if trimmed[0] != '{' {
		return json.RawMessage(trimmed), nil
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	for _, k := range []string{"datos", "data"} {
		if v, ok := env[k]; ok && !isNull(v) {
			return v, nil
		}
	}
	return json.RawMessage(trimmed), nil
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || string(bytes.TrimSpace(v)) == "null"
}
