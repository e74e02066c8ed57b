package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/fixture"
	"github.com/kurobon/gitgraph/internal/graph"
	"github.com/kurobon/gitgraph/internal/state"
)

type layoutOptions struct {
	repo    string
	fixture string
	limit   int
	format  string
}

func (a *Application) newLayoutCommand() *cobra.Command {
	var opts layoutOptions
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the graph layout of a repository or fixture",
		Example: `  gitgraph layout --repo .
  gitgraph layout --fixture fixtures/feature-merge.yaml --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.repo != "" && opts.fixture != "" {
				return errors.New("--repo and --fixture are mutually exclusive")
			}
			if opts.repo == "" && opts.fixture == "" {
				opts.repo = "."
			}
			layout, err := a.computeLayout(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return writeLayout(cmd.OutOrStdout(), layout, opts.format)
		},
	}
	cmd.Flags().StringVar(&opts.repo, "repo", "", "Repository path (default .)")
	cmd.Flags().StringVar(&opts.fixture, "fixture", "", "YAML fixture file")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of commits (default repository.limit)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: json, yaml or text (default text on a terminal, json otherwise)")
	return cmd
}

func (a *Application) computeLayout(ctx context.Context, opts layoutOptions) (*graph.Layout, error) {
	settings := a.settings()
	if opts.limit > 0 {
		settings.Limit = opts.limit
	}
	sm := state.NewSessionManager(a.logger.Named("state"), settings)

	if opts.fixture != "" {
		f, err := fixture.Load(opts.fixture)
		if err != nil {
			return nil, err
		}
		built, err := fixture.Build(f)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", f.ID, err)
		}
		st, err := sm.BuildGraphState(ctx, built.Repo, 0)
		if err != nil {
			return nil, err
		}
		return st.Layout, nil
	}

	s, err := sm.OpenSession("cli", opts.repo)
	if err != nil {
		return nil, err
	}
	st, err := sm.BuildGraphState(ctx, s.Repo, 0)
	if err != nil {
		return nil, err
	}
	return st.Layout, nil
}

func (a *Application) newFixturesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "List the YAML fixtures in the fixtures directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := fixture.NewLoader(a.config.Fixtures.Dir).ListFixtures()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range fixtures {
				fmt.Fprintf(out, "%-20s %3d commits  %s\n", f.ID, len(f.Commits), f.Title)
			}
			return nil
		},
	}
	cmd.Flags().String(fixturesFlag, "", "Directory of YAML fixtures (default ./fixtures)")
	return cmd
}
