package services

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/codeelement"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/failure"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/masterdata"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/taskrequest"
)

const pathCodeElements = "/api/masterdata/codeelements"

var tracer = otel.Tracer("fm-taskrequest/services")

// Platform is an authenticated session with the facility platform.
type Platform interface {
	Employees(ctx context.Context) ([]masterdata.Employee, error)
	CodeElements(ctx context.Context) ([]codeelement.CodeElement, error)
	ModuleMetadata(ctx context.Context, module string) (codeelement.ModuleMetadata, error)
	Equipments(ctx context.Context) ([]masterdata.Equipment, error)
	UploadImage(ctx context.Context, path string) (string, error)
	CreateTaskRequest(ctx context.Context, tr taskrequest.TaskRequest) (*taskrequest.Submitted, error)
}

// Connector authenticates once and hands out the session for one run.
type Connector interface {
	Connect(ctx context.Context) (Platform, error)
}

type ConnectorFunc func(ctx context.Context) (Platform, error)

func (f ConnectorFunc) Connect(ctx context.Context) (Platform, error) {
	return f(ctx)
}

// Request names the records to correlate and the free-form fields to send.
type Request struct {
	Notifier  string
	Module    string
	Kind      string
	Type      string
	Subject   string
	ImagePath string
	Details   Details
}

type Result struct {
	TaskRequest taskrequest.TaskRequest
	// Nil on dry runs.
	Submitted *taskrequest.Submitted
	// Code elements dropped because no root reaches them.
	Unreachable int
}

type Pipeline struct {
	connector Connector
	log       logrus.FieldLogger
}

func NewPipeline(connector Connector, logger logrus.FieldLogger) *Pipeline {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Pipeline{
		connector: connector,
		log:       logger.WithField("component", "pipeline"),
	}
}

type fetched struct {
	employees  []masterdata.Employee
	elements   []codeelement.CodeElement
	metadata   codeelement.ModuleMetadata
	equipments []masterdata.Equipment
	imageURL   string
}

// Run resolves, composes and submits one task request. Any failure aborts
// the run and comes back as a *failure.Error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	return p.run(ctx, req, false)
}

// Plan does everything Run does except uploading and submitting.
func (p *Pipeline) Plan(ctx context.Context, req Request) (*Result, error) {
	return p.run(ctx, req, true)
}

func (p *Pipeline) run(ctx context.Context, req Request, dryRun bool) (res *Result, err error) {
	ctx, span := tracer.Start(ctx, "taskrequest.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("module", req.Module),
		attribute.Bool("dry_run", dryRun),
	)

	defer func() {
		outcome := "ok"
		if dryRun {
			outcome = "dry_run"
		}
		if err != nil {
			stage, _ := failure.StageOf(err)
			outcome = string(stage)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		recordRun(outcome)
	}()

	var platform Platform
	err = p.stage(ctx, failure.StageAuthenticate, func(ctx context.Context) error {
		var err error
		platform, err = p.connector.Connect(ctx)
		return failure.Wrap(failure.StageAuthenticate, "", err)
	})
	if err != nil {
		return nil, err
	}

	var data fetched
	err = p.stage(ctx, failure.StageFetch, func(ctx context.Context) error {
		data, err = p.fetch(ctx, platform, req, dryRun)
		return err
	})
	if err != nil {
		return nil, err
	}

	var resolved Resolved
	var unreachable int
	err = p.stage(ctx, failure.StageResolve, func(context.Context) error {
		resolved, unreachable, err = p.resolve(req, data)
		return err
	})
	if err != nil {
		return nil, err
	}

	tr := Compose(resolved, req.Details, BuildAttachment(data.imageURL))
	res = &Result{TaskRequest: tr, Unreachable: unreachable}
	if dryRun {
		p.log.WithField("module", req.Module).Info("dry run: task request composed, not submitted")
		return res, nil
	}

	err = p.stage(ctx, failure.StageSubmit, func(ctx context.Context) error {
		res.Submitted, err = platform.CreateTaskRequest(ctx, tr)
		return failure.Wrap(failure.StageSubmit, "", err)
	})
	if err != nil {
		return nil, err
	}
	p.log.WithField("id", res.Submitted.ID.String()).Info("task request created")
	return res, nil
}

// fetch issues the independent reads, and the upload, concurrently. The
// first failure cancels the others.
func (p *Pipeline) fetch(ctx context.Context, platform Platform, req Request, dryRun bool) (fetched, error) {
	var out fetched
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := platform.Employees(gctx)
		out.employees = v
		return failure.Wrap(failure.StageFetch, "/api/masterdata/employee", err)
	})
	g.Go(func() error {
		v, err := platform.CodeElements(gctx)
		out.elements = v
		return failure.Wrap(failure.StageFetch, pathCodeElements, err)
	})
	g.Go(func() error {
		v, err := platform.ModuleMetadata(gctx, req.Module)
		out.metadata = v
		return failure.Wrap(failure.StageFetch, "/api/masterdata/codeelements/getmetadatabymodules/"+req.Module, err)
	})
	g.Go(func() error {
		v, err := platform.Equipments(gctx)
		out.equipments = v
		return failure.Wrap(failure.StageFetch, "/api/assetmanagement/equipment", err)
	})
	if req.ImagePath != "" {
		g.Go(func() error {
			if dryRun {
				if _, err := os.Stat(req.ImagePath); err != nil {
					return &failure.Error{Stage: failure.StageUpload, Path: req.ImagePath, Message: "cannot open file", Err: err}
				}
				return nil
			}
			started := time.Now()
			v, err := platform.UploadImage(gctx, req.ImagePath)
			recordStage(string(failure.StageUpload), time.Since(started))
			out.imageURL = v
			return failure.Wrap(failure.StageUpload, req.ImagePath, err)
		})
	}

	if err := g.Wait(); err != nil {
		return fetched{}, err
	}
	p.log.WithFields(logrus.Fields{
		"employees":     len(out.employees),
		"code_elements": len(out.elements),
		"metadata":      len(out.metadata),
		"equipments":    len(out.equipments),
		"image":         out.imageURL != "",
	}).Debug("platform data fetched")
	return out, nil
}

func (p *Pipeline) resolve(req Request, data fetched) (Resolved, int, error) {
	wrap := func(err error) error {
		return &failure.Error{Stage: failure.StageResolve, Err: err}
	}

	notifier, err := ResolveNotifier(data.employees, req.Notifier)
	if err != nil {
		return Resolved{}, 0, wrap(err)
	}

	category, err := ResolveCategory(req.Module, data.metadata)
	if err != nil {
		return Resolved{}, 0, wrap(err)
	}

	roots, err := codeelement.BuildForest(data.elements)
	if err != nil {
		return Resolved{}, 0, &failure.Error{Stage: failure.StageResolve, Path: pathCodeElements, Err: errors.Wrap(err, "build hierarchy")}
	}
	dropped := codeelement.Unreachable(data.elements, roots)
	if len(dropped) > 0 {
		p.log.WithField("count", len(dropped)).Warn("code elements not reachable from any root were ignored")
	}

	root, err := ResolveModuleRoot(roots, category)
	if err != nil {
		return Resolved{}, 0, wrap(err)
	}
	kind, typ, err := ResolveKindAndType(root, req.Kind, req.Type)
	if err != nil {
		return Resolved{}, 0, wrap(err)
	}

	subject, err := ResolveSubject(data.equipments, req.Subject)
	if err != nil {
		return Resolved{}, 0, wrap(err)
	}

	p.log.WithFields(logrus.Fields{
		"notifier": notifier.ID.String(),
		"category": category,
		"kind":     kind.ID.String(),
		"type":     typ.ID.String(),
		"subject":  subject.ID.String(),
	}).Debug("references resolved")

	return Resolved{Notifier: notifier, Kind: kind, Type: typ, Subject: subject}, len(dropped), nil
}

func (p *Pipeline) stage(ctx context.Context, stage failure.Stage, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "taskrequest."+string(stage))
	defer span.End()

	started := time.Now()
	err := fn(ctx)
	elapsed := time.Since(started)
	recordStage(string(stage), elapsed)

	entry := p.log.WithFields(logrus.Fields{"stage": stage, "duration": elapsed.String()})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		entry.WithError(err).Error("stage failed")
		return err
	}
	entry.Debug("stage done")
	return nil
}
