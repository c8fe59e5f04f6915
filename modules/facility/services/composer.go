package services

import (
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/codeelement"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/masterdata"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/taskrequest"
)

// Details are the free-form fields of a task request.
type Details struct {
	Title       string
	Description string
	Tags        []string
	GeoLocation taskrequest.GeoLocation
}

// Resolved holds the looked-up references of one run.
type Resolved struct {
	Notifier masterdata.Employee
	Kind     *codeelement.Node
	Type     *codeelement.Node
	Subject  masterdata.Equipment
}

// Compose assembles the task request body. It does not validate; the
// platform does.
func Compose(r Resolved, d Details, attachment *taskrequest.AttachmentInfo) taskrequest.TaskRequest {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return taskrequest.TaskRequest{
		Tags:        tags,
		Notifier:    taskrequest.Reference{ID: r.Notifier.ID, Module: taskrequest.ModuleEmployee},
		Title:       d.Title,
		Description: d.Description,
		Subjects: []taskrequest.Reference{
			{ID: r.Subject.ID, Module: taskrequest.ModuleEquipmentInstallation},
		},
		Kind:           taskrequest.Reference{ID: r.Kind.ID},
		Type:           taskrequest.Reference{ID: r.Type.ID},
		GeoLocation:    d.GeoLocation,
		AttachmentInfo: attachment,
	}
}
