package fixtures

import (
	"encoding/json"
	"fmt"
)

// marshalJSON encodes decoded YAML as JSON. yaml.v3 only produces
// string-keyed maps when every key is a string; other mappings are
// converted here.
func marshalJSON(v map[string]any) (json.RawMessage, error) {
	return json.Marshal(stringKeys(v))
}

func stringKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, e := range val {
			val[k] = stringKeys(e)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case []any:
		for i, e := range val {
			val[i] = stringKeys(e)
		}
		return val
	default:
		return v
	}
}
