package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/taskrequest"
	"github.com/iota-uz/fm-taskrequest/modules/facility/services"
)

// requestFile is the definition of one task request as read from a file and
// command line flags.
type requestFile struct {
	Notifier    string                  `yaml:"notifier" toml:"notifier" validate:"required"`
	Module      string                  `yaml:"module" toml:"module" validate:"required"`
	Kind        string                  `yaml:"kind" toml:"kind" validate:"required"`
	Type        string                  `yaml:"type" toml:"type" validate:"required"`
	Subject     string                  `yaml:"subject" toml:"subject" validate:"required"`
	Image       string                  `yaml:"image" toml:"image"`
	Title       string                  `yaml:"title" toml:"title" validate:"required"`
	Description string                  `yaml:"description" toml:"description"`
	Tags        []string                `yaml:"tags" toml:"tags" validate:"dive,required"`
	GeoLocation taskrequest.GeoLocation `yaml:"geoLocation" toml:"geoLocation"`
}

func defaultRequest() requestFile {
	return requestFile{
		Notifier:    "arxssolutions",
		Module:      "NotificationDefect",
		Kind:        "Onderhoud/herstelling",
		Type:        "Elektriciteit",
		Subject:     "UIN-004095",
		Title:       "Titel",
		Description: "Omschrijving",
		Tags:        []string{},
		GeoLocation: taskrequest.GeoLocation{
			Street:    "Sint-Agatha-Berchemselaan",
			Number:    "3",
			ZipCode:   "1081",
			City:      "Koekelberg",
			Latitude:  50.86499984826551,
			Longitude: 4.318274640784401,
		},
	}
}

// loadRequestFile decodes path over r. Keys missing from the file keep their
// current value. A relative image path is taken relative to the file.
func loadRequestFile(path string, r *requestFile) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("read %s: %w", path, err))
	}

	before := r.Image
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(r); err != nil && !errors.Is(err, io.EOF) {
			return withCode(exitValidation, fmt.Errorf("decode %s: %w", path, err))
		}
	case ".toml":
		md, err := toml.Decode(string(b), r)
		if err != nil {
			return withCode(exitValidation, fmt.Errorf("decode %s: %w", path, err))
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return withCode(exitValidation, fmt.Errorf("decode %s: unknown keys %s", path, strings.Join(keys, ", ")))
		}
	default:
		return withCode(exitUsage, fmt.Errorf("unsupported request file %q: want .yaml, .yml or .toml", path))
	}

	if r.Image != before && r.Image != "" && !filepath.IsAbs(r.Image) {
		r.Image = filepath.Join(filepath.Dir(path), r.Image)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateRequest(r requestFile) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return withCode(exitValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return withCode(exitValidation, fmt.Errorf("invalid task request: %s", strings.Join(msgs, "; ")))
}

func (r requestFile) serviceRequest() services.Request {
	return services.Request{
		Notifier:  r.Notifier,
		Module:    r.Module,
		Kind:      r.Kind,
		Type:      r.Type,
		Subject:   r.Subject,
		ImagePath: r.Image,
		Details: services.Details{
			Title:       r.Title,
			Description: r.Description,
			Tags:        r.Tags,
			GeoLocation: r.GeoLocation,
		},
	}
}
