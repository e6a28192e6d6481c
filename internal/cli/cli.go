package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RealZimboGuy/catalogflow/internal/config"
	"github.com/RealZimboGuy/catalogflow/internal/repository"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// LoadFunc supplies the settings a command runs with.
type LoadFunc func() (config.Settings, error)

// NewRootCommand builds the catalogflow command tree.
func NewRootCommand(load LoadFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogflow",
		Short:         "Transition gating engine for product lifecycle processes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		serveCommand(load),
		migrateCommand(load),
		seedCommand(load),
		actorCommand(load),
		startCommand(load),
		submitCommand(load),
		historyCommand(load),
	)
	return root
}

func serveCommand(load LoadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load()
			if err != nil {
				return err
			}
			catalogflow.SetupLogger(s.LogLevel)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return catalogflow.Start(ctx, s)
		},
	}
}

func migrateCommand(load LoadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load()
			if err != nil {
				return err
			}
			if err := repository.RunMigrations(s); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}

func seedCommand(load LoadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the built-in templates, states, decisions and decision map",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), load, func(app *catalogflow.App) error {
				if err := app.Seed(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Seed applied")
				return nil
			})
		},
	}
}

func actorCommand(load LoadFunc) *cobra.Command {
	actor := &cobra.Command{
		Use:   "actor",
		Short: "Manage actors",
	}
	var group string
	create := &cobra.Command{
		Use:   "create [name] [api-key]",
		Short: "Create an actor, optionally adding it to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, load, func(app *catalogflow.App) error {
				a, err := app.Actors.Save(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("create actor: %w", err)
				}
				if group != "" {
					g, err := app.Actors.FindGroupByName(ctx, group)
					if errors.Is(err, domain.ErrNotFound) {
						g, err = app.Actors.SaveGroup(ctx, group)
					}
					if err != nil {
						return fmt.Errorf("resolve group %s: %w", group, err)
					}
					if err := app.Actors.AddMember(ctx, g.ID, a.ID); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created actor '%s' with ID %d\n", a.Name, a.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&group, "group", "", "group to add the actor to, created when missing")
	actor.AddCommand(create)
	return actor
}

func startCommand(load LoadFunc) *cobra.Command {
	var templateID, actorID int64
	var subject string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a process for a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, load, func(app *catalogflow.App) error {
				id, err := app.Driver.StartProcess(ctx, templateID, subject, actorID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started process %d for '%s'\n", id, subject)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&templateID, "template", 0, "process template id")
	cmd.Flags().StringVar(&subject, "subject", "", "product id")
	cmd.Flags().Int64Var(&actorID, "actor", 0, "acting actor id")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func submitCommand(load LoadFunc) *cobra.Command {
	var processID, decisionID, actorID int64
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a decision for a process",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, load, func(app *catalogflow.App) error {
				out, err := app.Driver.SubmitDecision(ctx, processID, decisionID, actorID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Process %d moved to state %d (%s) at position %d\n",
					out.ProcessID, out.NewStateID, out.NewStateName, out.Position)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&processID, "process", 0, "process id")
	cmd.Flags().Int64Var(&decisionID, "decision", 0, "decision id")
	cmd.Flags().Int64Var(&actorID, "actor", 0, "acting actor id")
	_ = cmd.MarkFlagRequired("process")
	_ = cmd.MarkFlagRequired("decision")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func historyCommand(load LoadFunc) *cobra.Command {
	var processID int64
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the trajectory of a process",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, load, func(app *catalogflow.App) error {
				steps, err := app.Driver.History(ctx, processID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(steps) == 0 {
					fmt.Fprintln(w, "No trajectory found.")
					return nil
				}
				for _, s := range steps {
					decision := "-"
					if s.DecisionID.Valid {
						decision = fmt.Sprint(s.DecisionID.Int64)
					}
					fmt.Fprintf(w, "%d. state %d, decision %s, actor %d, %s\n",
						s.Position, s.StateID, decision, s.ActorID, s.DateTime.Format(time.RFC3339))
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&processID, "process", 0, "process id")
	_ = cmd.MarkFlagRequired("process")
	return cmd
}

func withApp(ctx context.Context, load LoadFunc, fn func(app *catalogflow.App) error) error {
	s, err := load()
	if err != nil {
		return err
	}
	app, err := catalogflow.New(ctx, s, nil)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
