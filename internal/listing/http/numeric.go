package http

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexInt decodes both 900 and "900"; null and "" leave it unset.
type flexInt struct {
	value int64
	set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = flexInt{}
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*f = flexInt{}
			return nil
		}
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("expected an integer, got %s", raw)
	}
	*f = flexInt{value: v, set: true}
	return nil
}

func (f flexInt) int64() int64 {
	return f.value
}

func (f flexInt) intPtr() *int {
	if !f.set {
		return nil
	}
	v := int(f.value)
	return &v
}
