package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

const hierarchy = `[
	{"id":1,"code":"NotificationDefect","name":"Defect"},
	{"id":2,"parentId":1,"name":"Onderhoud/herstelling"},
	{"id":3,"parentId":2,"name":"Types"},
	{"id":4,"parentId":3,"name":"Elektriciteit"},
	{"id":9,"parentId":99,"name":"Orphan"}
]`

type fakeArxs struct {
	router    *mux.Router
	submitted atomic.Int32
	rejectAs  string
}

func newFakeArxs(t *testing.T) *fakeArxs {
	f := &fakeArxs{router: mux.NewRouter()}
	reply := func(status int, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		}
	}
	f.router.HandleFunc("/identity/api/authenticate/token/{apiKey}", reply(http.StatusOK, `{"token":"tok"}`))
	f.router.HandleFunc("/api/masterdata/employee", reply(http.StatusOK, `[{"id":"E1","userName":"arxssolutions"}]`))
	f.router.HandleFunc("/api/masterdata/codeelements", reply(http.StatusOK, hierarchy))
	f.router.HandleFunc("/api/masterdata/codeelements/getmetadatabymodules/{module}",
		reply(http.StatusOK, `{"NotificationDefect":{"hierarchyType":"SortKindAndType"}}`))
	f.router.HandleFunc("/api/assetmanagement/equipment", reply(http.StatusOK, `[{"id":"Q1","uniqueNumber":"UIN-004095"}]`))
	f.router.HandleFunc("/api/facilitymanagement/taskrequest", func(w http.ResponseWriter, r *http.Request) {
		f.submitted.Add(1)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if f.rejectAs != "" {
			reply(http.StatusBadRequest, f.rejectAs)(w, r)
			return
		}
		reply(http.StatusOK, `{"id":"TR-9","title":"Titel"}`)(w, r)
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(f.router)
	t.Cleanup(srv.Close)

	t.Setenv("ARXS_API_KEY", "key")
	t.Setenv("ARXS_TENANT_ID", "")
	t.Setenv("ARXS_IDENTITY_URL", srv.URL+"/identity")
	t.Setenv("ARXS_BASE_URL", srv.URL)
	t.Setenv("LOG_LEVEL", "silent")
	t.Setenv("PROMETHEUS_TEXTFILE_PATH", filepath.Join(t.TempDir(), "fm.prom"))
	return f
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeArgs(t, append(args, "--env-file", filepath.Join(t.TempDir(), "none.env"))...)
}

func executeArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCreateCmd_Submits(t *testing.T) {
	f := newFakeArxs(t)

	out, err := execute(t, "create")
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"TR-9","title":"Titel"}`, out)
	require.EqualValues(t, 1, f.submitted.Load())
}

func TestCreateCmd_DryRun(t *testing.T) {
	f := newFakeArxs(t)

	out, err := execute(t, "create", "--dry-run", "--title", "Lek", "--tag", "a", "--tag", "b")
	require.NoError(t, err)
	require.Zero(t, f.submitted.Load())

	var tr map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tr))
	require.Equal(t, "Lek", tr["title"])
	require.Equal(t, []any{"a", "b"}, tr["tags"])
	require.Equal(t, map[string]any{"id": float64(2)}, tr["kind"])
	require.Equal(t, map[string]any{"id": float64(4)}, tr["type"])
	require.NotContains(t, tr, "attachmentInfo")
}

func TestCreateCmd_ExitCodes(t *testing.T) {
	f := newFakeArxs(t)

	_, err := execute(t, "create", "--subject", "UIN-000000")
	require.Equal(t, exitResolve, exitCode(err))

	_, err = execute(t, "create", "--notifier", "")
	require.Equal(t, exitValidation, exitCode(err))

	_, err = execute(t, "create", "--no-such-flag")
	require.Equal(t, exitUsage, exitCode(err))

	f.rejectAs = `{"error":"invalid kind"}`
	_, err = execute(t, "create")
	require.Equal(t, exitSubmit, exitCode(err))
	require.Contains(t, err.Error(), "status=400 message=invalid kind")
}

func TestCreateCmd_MissingConfiguration(t *testing.T) {
	newFakeArxs(t)
	t.Setenv("ARXS_API_KEY", "")

	_, err := execute(t, "create", "--dry-run")
	require.Equal(t, exitUsage, exitCode(err))
	require.Contains(t, err.Error(), "ARXS_API_KEY")
}

func TestCreateCmd_MalformedEnvironment(t *testing.T) {
	newFakeArxs(t)
	t.Setenv("ARXS_REQUEST_TIMEOUT", "soon")

	var err error
	require.NotPanics(t, func() {
		_, err = executeArgs(t, "create", "--dry-run")
	})
	require.Equal(t, exitUsage, exitCode(err))
	require.Contains(t, err.Error(), "load configuration")
	require.Contains(t, err.Error(), "RequestTimeout")

	_, err = execute(t, "codes")
	require.Equal(t, exitUsage, exitCode(err))
}

func TestCodesCmd(t *testing.T) {
	newFakeArxs(t)

	out, err := execute(t, "codes")
	require.NoError(t, err)
	var got struct {
		Roots       []map[string]any `json:"roots"`
		Unreachable []map[string]any `json:"unreachable"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Roots, 1)
	require.Len(t, got.Unreachable, 1)
	require.Equal(t, "Orphan", got.Unreachable[0]["name"])

	out, err = execute(t, "codes", "--module", "NotificationDefect", "--format", "tree")
	require.NoError(t, err)
	require.Equal(t, "Defect [NotificationDefect] (1)\n"+
		"  Onderhoud/herstelling (2)\n"+
		"    Types (3)\n"+
		"      Elektriciteit (4)\n"+
		"1 unreachable code elements\n", out)

	_, err = execute(t, "codes", "--format", "xml")
	require.Equal(t, exitUsage, exitCode(err))
}
