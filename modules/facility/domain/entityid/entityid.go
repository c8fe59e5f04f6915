// Package entityid holds the identifier type shared by every platform record.
package entityid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a platform identifier. The platform hands out GUID strings, older
// tenants still expose numeric keys; both decode and encode back unchanged.
type ID struct {
	value   string
	numeric bool
}

func New(v string) ID {
	return ID{value: v}
}

func FromInt(v int64) ID {
	return ID{value: strconv.FormatInt(v, 10), numeric: true}
}

func (id ID) String() string {
	return id.value
}

func (id ID) IsZero() bool {
	return id.value == ""
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ID{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID{value: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", string(b))
	}
	*id = ID{value: n.String(), numeric: true}
	return nil
}
