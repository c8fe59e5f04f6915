package arxsapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/failure"
)

// UploadImage stores the file at path in platform blob storage and returns
// the blob URL without its authorization query.
func (s *Session) UploadImage(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &failure.Error{Stage: failure.StageUpload, Path: path, Message: "cannot open file", Err: err}
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", &failure.Error{Stage: failure.StageUpload, Path: path, Err: err}
	}
	if info.IsDir() {
		return "", &failure.Error{Stage: failure.StageUpload, Path: path, Message: "is a directory"}
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return "", &failure.Error{Stage: failure.StageUpload, Path: path, Err: errors.Wrap(err, "detect content type")}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", &failure.Error{Stage: failure.StageUpload, Path: path, Err: err}
	}
	contentType := mime.String()

	putURL, err := s.authorizeBlobPut(ctx, filepath.Base(path), contentType)
	if err != nil {
		return "", err
	}

	header := http.Header{}
	header.Set("x-ms-date", time.Now().UTC().Format(http.TimeFormat))
	header.Set("x-ms-version", s.client.blobVersion)
	header.Set("x-ms-blob-type", "BlockBlob")
	header.Set("Content-Type", contentType)
	header.Set("Content-Length", strconv.FormatInt(info.Size(), 10))

	blobURL := *putURL
	blobURL.RawQuery = ""
	blobURL.Fragment = ""

	// Plain client: the URL carries its own authorization.
	err = s.client.do(ctx, s.client.httpClient, call{
		stage:         failure.StageUpload,
		endpoint:      "blob.put",
		method:        http.MethodPut,
		url:           putURL,
		path:          blobURL.String(),
		header:        header,
		rawBody:       f,
		contentLength: info.Size(),
	}, nil)
	if err != nil {
		return "", err
	}
	return blobURL.String(), nil
}

func (s *Session) authorizeBlobPut(ctx context.Context, fileName, contentType string) (*url.URL, error) {
	q := url.Values{}
	q.Set("fileName", fileName)
	q.Set("type", contentType)

	var raw []byte
	err := s.client.do(ctx, s.authed, call{
		stage:    failure.StageUpload,
		endpoint: "blob.authorize",
		method:   http.MethodGet,
		url:      s.client.resolve(s.client.baseURL, pathBlobAuthorize, q),
	}, &raw)
	if err != nil {
		return nil, err
	}

	u, err := parseBlobURL(raw)
	if err != nil {
		return nil, &failure.Error{Stage: failure.StageUpload, Path: pathBlobAuthorize, Err: err}
	}
	return u, nil
}

// The authorization endpoint returns the SAS URL as a JSON string, a JSON
// object with a url field, or plain text.
func parseBlobURL(raw []byte) (*url.URL, error) {
	candidate := strings.TrimSpace(string(raw))
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		candidate = s
	} else {
		var obj map[string]json.RawMessage
		if json.Unmarshal(raw, &obj) == nil {
			candidate = ""
			for _, key := range []string{"url", "uri", "putUrl", "sasUrl"} {
				if v, ok := obj[key]; ok && json.Unmarshal(v, &s) == nil {
					candidate = s
					break
				}
			}
		}
	}
	candidate = strings.TrimSpace(candidate)
	u, err := url.Parse(candidate)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("blob authorization returned no usable url: %q", candidate)
	}
	return u, nil
}
