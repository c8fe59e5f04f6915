package arxsapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/codeelement"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/failure"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/masterdata"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/taskrequest"
)

const (
	pathEmployees      = "/api/masterdata/employee"
	pathCodeElements   = "/api/masterdata/codeelements"
	pathModuleMetadata = "/api/masterdata/codeelements/getmetadatabymodules/"
	pathEquipments     = "/api/assetmanagement/equipment"
	pathBlobAuthorize  = "/api/shared/blob/GetBlobPutAuthorization"
	pathTaskRequest    = "/api/facilitymanagement/taskrequest"
)

// Session is an authenticated view of the platform. It is safe for
// concurrent use; the credential never changes.
type Session struct {
	client *Client
	cred   Credential
	authed *http.Client
}

func (c *Client) NewSession(cred Credential) *Session {
	return &Session{
		client: c,
		cred:   cred,
		authed: bearerClient(c.transport, cred),
	}
}

func (s *Session) Credential() Credential {
	return s.cred
}

func (s *Session) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	return s.client.do(ctx, s.authed, call{
		stage:    failure.StageFetch,
		endpoint: endpoint,
		method:   http.MethodGet,
		url:      s.client.resolve(s.client.baseURL, path, query),
	}, out)
}

func (s *Session) Employees(ctx context.Context) ([]masterdata.Employee, error) {
	var out []masterdata.Employee
	if err := s.get(ctx, "masterdata.employee", pathEmployees, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) CodeElements(ctx context.Context) ([]codeelement.CodeElement, error) {
	var out []codeelement.CodeElement
	if err := s.get(ctx, "masterdata.codeelements", pathCodeElements, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) ModuleMetadata(ctx context.Context, module string) (codeelement.ModuleMetadata, error) {
	var out codeelement.ModuleMetadata
	if err := s.get(ctx, "masterdata.metadata", pathModuleMetadata+url.PathEscape(module), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) Equipments(ctx context.Context) ([]masterdata.Equipment, error) {
	var out []masterdata.Equipment
	if err := s.get(ctx, "asset.equipment", pathEquipments, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTaskRequest submits tr. A rejection carries the remote payload in
// the returned *failure.Error.
func (s *Session) CreateTaskRequest(ctx context.Context, tr taskrequest.TaskRequest) (*taskrequest.Submitted, error) {
	var out taskrequest.Submitted
	err := s.client.do(ctx, s.authed, call{
		stage:    failure.StageSubmit,
		endpoint: "fm.taskrequest",
		method:   http.MethodPost,
		url:      s.client.resolve(s.client.baseURL, pathTaskRequest, nil),
		jsonBody: tr,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
