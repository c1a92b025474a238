package workflow

import (
	"encoding/json"
	"fmt"
)

// Record is one flat JSON document handed from state to state. The state
// machine forwards fields a given step never looks at, so a handler must not
// drop what it did not recognize.
type Record map[string]interface{}

// Merge overlays the fields of out on top of the raw incoming record.
// Fields present in raw but unknown to out survive unchanged; fields produced
// by out win on conflict.
func Merge(raw json.RawMessage, out interface{}) (Record, error) {
	merged := Record{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &merged); err != nil {
			return nil, fmt.Errorf("failed to decode step record: %w", err)
		}
	}

	outBytes, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode step output: %w", err)
	}

	var outFields map[string]interface{}
	if err := json.Unmarshal(outBytes, &outFields); err != nil {
		return nil, fmt.Errorf("failed to re-read step output: %w", err)
	}

	for k, v := range outFields {
		merged[k] = v
	}
	return merged, nil
}
