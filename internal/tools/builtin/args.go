package builtin

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// floatArg extracts a numeric argument. JSON decoding yields float64, but
// models occasionally send integers or numeric strings.
func floatArg(args map[string]any, key string) (float64, error) {
	raw, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing '%s'", key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("'%s' is not a number: %q", key, v)
		}
		return f, nil
	}
	return 0, fmt.Errorf("'%s' is not a number", key)
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing '%s'", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("'%s' is not a string", key)
	}
	return s, nil
}

func marshalContent(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
