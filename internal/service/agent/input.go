package agent

import (
	"fmt"
	"strconv"
	"strings"
)

// Input holds the arguments the model chose for a tool.
type Input map[string]interface{}

func (in Input) String(key string) string {
	v, ok := in[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	default:
		return fmt.Sprint(t)
	}
}

// Require returns the value of key or an error naming it.
func (in Input) Require(key string) (string, error) {
	s := in.String(key)
	if s == "" {
		return "", fmt.Errorf("missing required field %q", key)
	}
	return s, nil
}

func (in Input) Int(key string, def int) int {
	switch t := in[key].(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

func (in Input) Float(key string) (float64, bool) {
	switch t := in[key].(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(t), "$"), 64)
		return f, err == nil
	}
	return 0, false
}

func (in Input) Strings(key string) []string {
	switch t := in[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
