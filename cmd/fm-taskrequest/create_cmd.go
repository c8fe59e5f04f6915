package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/iota-uz/fm-taskrequest/modules/facility/services"
)

type createOptions struct {
	requestPath string
	dryRun      bool
	flags       requestFile
}

func newCreateCmd() *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Resolve references and submit one task request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := defaultRequest()
			if opts.requestPath != "" {
				if err := loadRequestFile(opts.requestPath, &req); err != nil {
					return err
				}
			}
			applyFlagOverrides(cmd, &req, opts.flags)
			if err := validateRequest(req); err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return runCreate(cmd.Context(), cmd.OutOrStdout(), services.NewPipeline(a.connector(), a.log), req, opts.dryRun)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.requestPath, "request", "", "Request definition file (.yaml, .yml or .toml)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Resolve and print the task request without uploading or submitting")
	f.StringVar(&opts.flags.Notifier, "notifier", "", "Notifier employee userName")
	f.StringVar(&opts.flags.Module, "module", "", "Code element module holding the kind/type hierarchy")
	f.StringVar(&opts.flags.Kind, "kind", "", "Kind name")
	f.StringVar(&opts.flags.Type, "type", "", "Type name")
	f.StringVar(&opts.flags.Subject, "subject", "", "Equipment uniqueNumber")
	f.StringVar(&opts.flags.Image, "image", "", "Image to upload and attach")
	f.StringVar(&opts.flags.Title, "title", "", "Task request title")
	f.StringVar(&opts.flags.Description, "description", "", "Task request description")
	f.StringSliceVar(&opts.flags.Tags, "tag", nil, "Tag (repeatable)")

	return cmd
}

// applyFlagOverrides copies the flags the user actually set over dst.
func applyFlagOverrides(cmd *cobra.Command, dst *requestFile, src requestFile) {
	fields := []struct {
		flag string
		dst  *string
		src  string
	}{
		{"notifier", &dst.Notifier, src.Notifier},
		{"module", &dst.Module, src.Module},
		{"kind", &dst.Kind, src.Kind},
		{"type", &dst.Type, src.Type},
		{"subject", &dst.Subject, src.Subject},
		{"image", &dst.Image, src.Image},
		{"title", &dst.Title, src.Title},
		{"description", &dst.Description, src.Description},
	}
	for _, fd := range fields {
		if cmd.Flags().Changed(fd.flag) {
			*fd.dst = fd.src
		}
	}
	if cmd.Flags().Changed("tag") {
		dst.Tags = src.Tags
	}
}

func runCreate(ctx context.Context, out io.Writer, pipeline *services.Pipeline, req requestFile, dryRun bool) error {
	if dryRun {
		res, err := pipeline.Plan(ctx, req.serviceRequest())
		if err != nil {
			return err
		}
		return writeJSONLine(out, res.TaskRequest)
	}

	res, err := pipeline.Run(ctx, req.serviceRequest())
	if err != nil {
		return err
	}
	return writeJSONLine(out, res.Submitted)
}
