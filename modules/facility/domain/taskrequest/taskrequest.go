// Package taskrequest defines the composite record submitted to the
// facility management module.
package taskrequest

import (
	"encoding/json"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/entityid"
)

// Module tags attached to references.
const (
	ModuleEmployee              = "Employee"
	ModuleEquipmentInstallation = "EquipmentInstallation"
)

type Reference struct {
	ID     entityid.ID `json:"id"`
	Module string      `json:"module,omitempty"`
}

type GeoLocation struct {
	Street    string  `json:"street" yaml:"street" toml:"street"`
	Number    string  `json:"number" yaml:"number" toml:"number"`
	ZipCode   string  `json:"zipCode" yaml:"zipCode" toml:"zipCode"`
	City      string  `json:"city" yaml:"city" toml:"city"`
	Latitude  float64 `json:"latitude" yaml:"latitude" toml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" yaml:"longitude" toml:"longitude" validate:"gte=-180,lte=180"`
}

type AttachmentValue struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Props     map[string]any `json:"props"`
	IsDeleted bool           `json:"isDeleted"`
}

type Attachment struct {
	Type  string            `json:"type"`
	Value []AttachmentValue `json:"value"`
}

type StoredFile struct {
	ID          string `json:"id"`
	ContentType string `json:"contentType"`
	Name        string `json:"name"`
	URL         string `json:"url"`
}

type AttachmentInfo struct {
	Attachments []Attachment `json:"attachments"`
	StoredFiles []StoredFile `json:"storedFiles"`
}

type TaskRequest struct {
	Tags           []string        `json:"tags"`
	Notifier       Reference       `json:"notifier"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Subjects       []Reference     `json:"subjects"`
	Kind           Reference       `json:"kind"`
	Type           Reference       `json:"type"`
	GeoLocation    GeoLocation     `json:"geoLocation"`
	AttachmentInfo *AttachmentInfo `json:"attachmentInfo,omitempty"`
}

// Submitted is the task request as stored by the platform.
type Submitted struct {
	ID  entityid.ID
	Raw json.RawMessage
}

func (s *Submitted) UnmarshalJSON(b []byte) error {
	var head struct {
		ID entityid.ID `json:"id"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	s.ID = head.ID
	s.Raw = append(json.RawMessage(nil), b...)
	return nil
}

func (s Submitted) MarshalJSON() ([]byte, error) {
	if len(s.Raw) == 0 {
		return []byte("null"), nil
	}
	return s.Raw, nil
}
