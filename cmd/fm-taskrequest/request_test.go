package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultRequest_IsValid(t *testing.T) {
	require.NoError(t, validateRequest(defaultRequest()))
}

func TestLoadRequestFile_YAMLKeepsDefaults(t *testing.T) {
	path := writeFile(t, "req.yaml", `
notifier: bob
subject: UIN-000001
image: photos/leak.jpg
tags: [urgent]
geoLocation:
  city: Brussel
  latitude: 50.85
  longitude: 4.35
`)
	req := defaultRequest()
	require.NoError(t, loadRequestFile(path, &req))

	require.Equal(t, "bob", req.Notifier)
	require.Equal(t, "UIN-000001", req.Subject)
	require.Equal(t, "NotificationDefect", req.Module)
	require.Equal(t, "Titel", req.Title)
	require.Equal(t, []string{"urgent"}, req.Tags)
	require.Equal(t, "Brussel", req.GeoLocation.City)
	require.Equal(t, filepath.Join(filepath.Dir(path), "photos", "leak.jpg"), req.Image)
	require.NoError(t, validateRequest(req))
}

func TestLoadRequestFile_TOML(t *testing.T) {
	path := writeFile(t, "req.toml", `
kind = "Inspectie"
type = "Sanitair"
image = "/tmp/photo.png"

[geoLocation]
latitude = 51.2
longitude = 4.4
`)
	req := defaultRequest()
	require.NoError(t, loadRequestFile(path, &req))
	require.Equal(t, "Inspectie", req.Kind)
	require.Equal(t, "Sanitair", req.Type)
	require.Equal(t, "/tmp/photo.png", req.Image)
	require.InDelta(t, 51.2, req.GeoLocation.Latitude, 1e-9)
}

func TestLoadRequestFile_EmptyYAML(t *testing.T) {
	path := writeFile(t, "req.yml", "")
	req := defaultRequest()
	require.NoError(t, loadRequestFile(path, &req))
	require.Equal(t, defaultRequest(), req)
}

func TestLoadRequestFile_Errors(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		content string
		code    int
	}{
		{"unknown yaml key", "req.yaml", "notifer: bob\n", exitValidation},
		{"unknown toml key", "req.toml", "notifer = \"bob\"\n", exitValidation},
		{"malformed yaml", "req.yaml", "notifier: [\n", exitValidation},
		{"unsupported extension", "req.json", "{}", exitUsage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := defaultRequest()
			err := loadRequestFile(writeFile(t, tc.file, tc.content), &req)
			require.Error(t, err)
			require.Equal(t, tc.code, exitCode(err))
		})
	}

	req := defaultRequest()
	err := loadRequestFile(filepath.Join(t.TempDir(), "missing.yaml"), &req)
	require.Equal(t, exitUsage, exitCode(err))
}

func TestValidateRequest(t *testing.T) {
	req := defaultRequest()
	req.Notifier = ""
	err := validateRequest(req)
	require.Equal(t, exitValidation, exitCode(err))
	require.Contains(t, err.Error(), "requestFile.Notifier: required")

	req = defaultRequest()
	req.GeoLocation.Latitude = 91
	err = validateRequest(req)
	require.Equal(t, exitValidation, exitCode(err))
	require.Contains(t, err.Error(), "Latitude: lte=90")

	req = defaultRequest()
	req.Tags = []string{"ok", ""}
	require.Error(t, validateRequest(req))
}

func TestServiceRequest(t *testing.T) {
	req := defaultRequest()
	req.Image = "photo.png"
	sr := req.serviceRequest()
	require.Equal(t, "arxssolutions", sr.Notifier)
	require.Equal(t, "photo.png", sr.ImagePath)
	require.Equal(t, "Koekelberg", sr.Details.GeoLocation.City)
	require.Equal(t, "Omschrijving", sr.Details.Description)
}
