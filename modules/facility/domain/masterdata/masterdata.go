// Package masterdata holds the employee and equipment records used as lookup
// targets. Only the correlation keys are typed; every other field is kept
// verbatim so it can be echoed back.
package masterdata

import (
	"encoding/json"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/entityid"
)

type Employee struct {
	ID       entityid.ID
	UserName string
	Fields   map[string]json.RawMessage
}

func (e *Employee) UnmarshalJSON(b []byte) error {
	var keys struct {
		ID       entityid.ID `json:"id"`
		UserName string      `json:"userName"`
	}
	fields, err := decodeRecord(b, &keys)
	if err != nil {
		return err
	}
	*e = Employee{ID: keys.ID, UserName: keys.UserName, Fields: fields}
	return nil
}

func (e Employee) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Fields)
}

type Equipment struct {
	ID           entityid.ID
	UniqueNumber string
	Fields       map[string]json.RawMessage
}

func (e *Equipment) UnmarshalJSON(b []byte) error {
	var keys struct {
		ID           entityid.ID `json:"id"`
		UniqueNumber string      `json:"uniqueNumber"`
	}
	fields, err := decodeRecord(b, &keys)
	if err != nil {
		return err
	}
	*e = Equipment{ID: keys.ID, UniqueNumber: keys.UniqueNumber, Fields: fields}
	return nil
}

func (e Equipment) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Fields)
}

func decodeRecord(b []byte, keys any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(b, keys); err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
