package editor

import (
	"encoding/json"
	"fmt"
)

// Patch is a shallow JSON merge: top-level keys in the patch replace the
// corresponding keys of the target wholesale. Nested objects are never
// deep-merged.
type Patch map[string]interface{}

// mergeJSON applies patch over value through their JSON representations.
// Keys listed in protect are stripped from the patch before merging.
func mergeJSON[T any](value T, patch Patch, protect ...string) (T, error) {
	var out T

	raw, err := json.Marshal(value)
	if err != nil {
		return out, fmt.Errorf("marshal merge target: %w", err)
	}
	var base map[string]interface{}
	if err := json.Unmarshal(raw, &base); err != nil {
		return out, fmt.Errorf("decode merge target: %w", err)
	}

	protected := make(map[string]bool, len(protect))
	for _, key := range protect {
		protected[key] = true
	}
	for key, val := range patch {
		if protected[key] {
			continue
		}
		base[key] = val
	}

	merged, err := json.Marshal(base)
	if err != nil {
		return out, fmt.Errorf("marshal merged value: %w", err)
	}
	if err := json.Unmarshal(merged, &out); err != nil {
		return out, fmt.Errorf("decode merged value: %w", err)
	}
	return out, nil
}
