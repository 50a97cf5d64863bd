package httpapi

import (
	"bytes"
	"encoding/json"
)

// reorderRequest accepts a bare id array or {"ids": [...]}.
type reorderRequest struct {
	IDs []string `json:"ids"`
}

func (r *reorderRequest) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.IDs)
	}
	type plain reorderRequest
	return json.Unmarshal(data, (*plain)(r))
}
