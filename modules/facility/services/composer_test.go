package services

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/codeelement"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/entityid"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/masterdata"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/taskrequest"
)

func TestBuildAttachment_LinksStoredFile(t *testing.T) {
	t.Parallel()

	info := BuildAttachment("https://blob.example.test/c/photo.png")
	require.NotNil(t, info)
	require.Len(t, info.StoredFiles, 1)
	require.Len(t, info.Attachments, 1)
	require.Len(t, info.Attachments[0].Value, 1)

	id := info.StoredFiles[0].ID
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.Equal(t, id, info.Attachments[0].Value[0].ID)
	require.Equal(t, "image/png", info.StoredFiles[0].ContentType)
	require.Equal(t, "photo.png", info.StoredFiles[0].Name)
	require.Equal(t, "https://blob.example.test/c/photo.png", info.StoredFiles[0].URL)
	require.False(t, info.Attachments[0].Value[0].IsDeleted)

	other := BuildAttachment("https://blob.example.test/c/photo.png")
	require.NotEqual(t, id, other.StoredFiles[0].ID)
}

func TestBuildAttachment_StoredFileMetaIsFixed(t *testing.T) {
	t.Parallel()

	for _, u := range []string{
		"https://blob.example.test/uploads/damage-2026.jpg",
		"https://blob.example.test/c/leak.gif?sig=x",
		"https://blob.example.test/",
	} {
		info := BuildAttachment(u)
		require.Equal(t, "photo.png", info.StoredFiles[0].Name, u)
		require.Equal(t, "image/png", info.StoredFiles[0].ContentType, u)
		require.Equal(t, u, info.StoredFiles[0].URL, u)
	}
}

func TestBuildAttachment_NoURL(t *testing.T) {
	t.Parallel()

	require.Nil(t, BuildAttachment(""))
	require.Nil(t, BuildAttachment("  "))
}

func TestCompose(t *testing.T) {
	t.Parallel()

	r := Resolved{
		Notifier: masterdata.Employee{ID: entityid.New("E2"), UserName: "bob"},
		Kind:     &codeelement.Node{CodeElement: codeelement.CodeElement{ID: entityid.FromInt(2)}},
		Type:     &codeelement.Node{CodeElement: codeelement.CodeElement{ID: entityid.FromInt(3)}},
		Subject:  masterdata.Equipment{ID: entityid.New("Q1"), UniqueNumber: "UIN-004095"},
	}
	d := Details{
		Title:       "Titel",
		Description: "Omschrijving",
		GeoLocation: taskrequest.GeoLocation{City: "Koekelberg", Latitude: 50.86, Longitude: 4.31},
	}

	tr := Compose(r, d, nil)
	b, err := json.Marshal(tr)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"tags": [],
		"notifier": {"id": "E2", "module": "Employee"},
		"title": "Titel",
		"description": "Omschrijving",
		"subjects": [{"id": "Q1", "module": "EquipmentInstallation"}],
		"kind": {"id": 2},
		"type": {"id": 3},
		"geoLocation": {"street": "", "number": "", "zipCode": "", "city": "Koekelberg", "latitude": 50.86, "longitude": 4.31}
	}`, string(b))

	withImage := Compose(r, d, BuildAttachment("https://blob.example.test/x.png"))
	require.NotNil(t, withImage.AttachmentInfo)
}
