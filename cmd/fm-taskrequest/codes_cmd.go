package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/codeelement"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/failure"
	"github.com/iota-uz/fm-taskrequest/modules/facility/services"
)

type codesOptions struct {
	module string
	format string
}

type codesOutput struct {
	Roots       []*codeelement.Node       `json:"roots"`
	Unreachable []codeelement.CodeElement `json:"unreachable"`
}

func newCodesCmd() *cobra.Command {
	var opts codesOptions

	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Print the code element hierarchy",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case "json", "tree":
				return nil
			default:
				return withCode(exitUsage, fmt.Errorf("invalid --format %q: want json or tree", opts.format))
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return runCodes(cmd.Context(), cmd.OutOrStdout(), a.connector(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.module, "module", "", "Only print the category root of this module")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json or tree")
	return cmd
}

func runCodes(ctx context.Context, out io.Writer, connector services.Connector, opts codesOptions) error {
	platform, err := connector.Connect(ctx)
	if err != nil {
		return failure.Wrap(failure.StageAuthenticate, "", err)
	}

	flat, err := platform.CodeElements(ctx)
	if err != nil {
		return failure.Wrap(failure.StageFetch, "", err)
	}
	roots, err := codeelement.BuildForest(flat)
	if err != nil {
		return &failure.Error{Stage: failure.StageResolve, Err: err}
	}
	result := codesOutput{Roots: roots, Unreachable: codeelement.Unreachable(flat, roots)}

	if opts.module != "" {
		meta, err := platform.ModuleMetadata(ctx, opts.module)
		if err != nil {
			return failure.Wrap(failure.StageFetch, "", err)
		}
		category, err := services.ResolveCategory(opts.module, meta)
		if err != nil {
			return &failure.Error{Stage: failure.StageResolve, Err: err}
		}
		root, err := services.ResolveModuleRoot(roots, category)
		if err != nil {
			return &failure.Error{Stage: failure.StageResolve, Err: err}
		}
		result.Roots = []*codeelement.Node{root}
	}

	if opts.format == "tree" {
		return writeTree(out, result)
	}
	return writeJSONLine(out, result)
}

func writeTree(out io.Writer, result codesOutput) error {
	var b strings.Builder
	codeelement.Walk(result.Roots, func(n *codeelement.Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Name)
		if n.Code != "" {
			fmt.Fprintf(&b, " [%s]", n.Code)
		}
		fmt.Fprintf(&b, " (%s)\n", n.ID)
		return true
	})
	if len(result.Unreachable) > 0 {
		fmt.Fprintf(&b, "%d unreachable code elements\n", len(result.Unreachable))
	}
	_, err := io.WriteString(out, b.String())
	return err
}
