package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/taskrequest"
)

const (
	defaultContentType  = "image/png"
	defaultFileName     = "photo.png"
	attachmentType      = "Image"
	attachmentValueType = "StoredFile"
)

// BuildAttachment links an uploaded file to the task request. The same fresh
// id ties the attachment value to its stored file. No URL, no attachment.
func BuildAttachment(fileURL string) *taskrequest.AttachmentInfo {
	if strings.TrimSpace(fileURL) == "" {
		return nil
	}
	id := uuid.NewString()
	return &taskrequest.AttachmentInfo{
		Attachments: []taskrequest.Attachment{{
			Type: attachmentType,
			Value: []taskrequest.AttachmentValue{{
				ID:        id,
				Type:      attachmentValueType,
				Props:     map[string]any{},
				IsDeleted: false,
			}},
		}},
		StoredFiles: []taskrequest.StoredFile{{
			ID:          id,
			ContentType: defaultContentType,
			Name:        defaultFileName,
			URL:         fileURL,
		}},
	}
}
