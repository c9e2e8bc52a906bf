// Package cli is the terminal front end: login, the dashboard view and the
// create/delete actions.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rogerio-castellano/finance-dashboard/internal/config"
	"github.com/rogerio-castellano/finance-dashboard/internal/dashboard"
	"github.com/rogerio-castellano/finance-dashboard/internal/logging"
	"github.com/rogerio-castellano/finance-dashboard/internal/models"
	"github.com/rogerio-castellano/finance-dashboard/internal/validation"
)

var ErrNotLoggedIn = errors.New("not logged in: run 'finance login' first")

const (
	msgLoginFailed  = "Nao foi possivel entrar. Confira as credenciais."
	msgReviewFields = "Revise os campos destacados."
	msgLogoutFailed = "Nao foi possivel sair. Tente de novo."
)

type App struct {
	root       *cobra.Command
	v          *viper.Viper
	configFile string

	log  *logrus.Logger
	deps *Deps
}

func NewApp() *App {
	app := &App{v: config.NewViper()}

	root := &cobra.Command{
		Use:               "finance",
		Short:             "Personal finance dashboard",
		SilenceUsage:      true,
		PersistentPreRunE: app.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if app.deps != nil {
				app.deps.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&app.configFile, "config", "", "Path to a YAML, TOML or JSON configuration file")
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("api-url", "", "Base URL of the finance API")
	_ = app.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = app.v.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url"))

	root.AddCommand(
		app.loginCmd(),
		app.logoutCmd(),
		app.dashboardCmd(),
		app.addCmd(),
		app.rmCmd(),
		app.whoamiCmd(),
	)

	app.root = root
	return app
}

func (app *App) Execute(ctx context.Context) error {
	return app.root.ExecuteContext(ctx)
}

func (app *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(app.v, app.configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	app.log = logging.SetupLogging(cfg.LogLevel)
	app.log.SetOutput(cmd.ErrOrStderr())

	deps, err := BuildDeps(cfg, app.log)
	if err != nil {
		return err
	}
	app.deps = deps
	return nil
}

func (app *App) console(cmd *cobra.Command) *Console {
	return NewConsole(cmd.OutOrStdout())
}

func (app *App) requireSession(ctx context.Context) (models.Session, error) {
	s, ok, err := app.deps.Exchange.Current(ctx)
	if err != nil {
		return models.Session{}, err
	}
	if !ok || !s.Authenticated() {
		return models.Session{}, ErrNotLoggedIn
	}
	return s, nil
}

func (app *App) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and show the dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := app.console(cmd)

			var err error
			if email == "" {
				if email, err = pterm.DefaultInteractiveTextInput.Show("Email"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Senha"); err != nil {
					return err
				}
			}

			s, err := app.deps.Exchange.Login(cmd.Context(), email, password)
			if err != nil {
				var fieldErrs validation.Errors
				if errors.As(err, &fieldErrs) {
					out.Failure(msgReviewFields, err)
					out.FieldErrors(fieldErrs)
					return err
				}
				out.Failure(msgLoginFailed, err)
				return err
			}

			out.Success("Bem-vindo, " + s.UserEmail)
			return app.showDashboard(cmd, models.Filter{}, 0)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func (app *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := app.console(cmd)
			if err := app.deps.Exchange.Logout(cmd.Context()); err != nil {
				out.Failure(msgLogoutFailed, err)
				return err
			}
			out.Success("Sessao encerrada.")
			return nil
		},
	}
}

func (app *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			out := app.console(cmd)
			line := s.UserEmail + " (" + string(app.deps.Exchange.Mode()) + ")"
			if !s.ExpiresAt.IsZero() {
				line += ", token expira em " + s.ExpiresAt.Local().Format("02/01/2006 15:04")
			}
			out.Info(line)
			return nil
		},
	}
}

func (app *App) dashboardCmd() *cobra.Command {
	var (
		f     models.Filter
		tipo  string
		watch time.Duration
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals and recent movements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := models.ParseTypeFilter(tipo)
			if err != nil {
				return err
			}
			f.Tipo = t
			return app.showDashboard(cmd, f, watch)
		},
	}
	cmd.Flags().StringVar(&f.Inicio, "inicio", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.Fim, "fim", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.Busca, "busca", "", "Search in descriptions")
	cmd.Flags().StringVar(&tipo, "tipo", "todos", "todos, receita or despesa")
	cmd.Flags().DurationVar(&watch, "watch", 0, "Refresh at this interval until interrupted")
	return cmd
}

// showDashboard loads and renders once, or keeps refreshing when watch > 0.
func (app *App) showDashboard(cmd *cobra.Command, f models.Filter, watch time.Duration) error {
	ctx := cmd.Context()
	if _, err := app.requireSession(ctx); err != nil {
		return err
	}

	out := app.console(cmd)
	ctrl := app.deps.Controller(out)

	view, err := ctrl.LoadAll(ctx, f)
	out.Dashboard(view, ctrl.Recent())
	if watch <= 0 {
		return err
	}

	ticker := time.NewTicker(watch)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			view, err := ctrl.Refresh(ctx)
			if errors.Is(err, dashboard.ErrSuperseded) || ctx.Err() != nil {
				continue
			}
			out.Dashboard(view, ctrl.Recent())
		}
	}
}

func (app *App) addCmd() *cobra.Command {
	var in validation.MovementInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a receita or despesa",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := app.requireSession(ctx); err != nil {
				return err
			}

			out := app.console(cmd)
			ctrl := app.deps.Controller(out)

			if _, err := ctrl.SubmitMovement(ctx, in); err != nil {
				var fieldErrs validation.Errors
				if errors.As(err, &fieldErrs) {
					out.FieldErrors(fieldErrs)
				}
				return err
			}
			out.Dashboard(ctrl.View(), ctrl.Recent())
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Descricao, "descricao", "", "Description")
	cmd.Flags().StringVar(&in.Valor, "valor", "", "Amount, e.g. 1234,56")
	cmd.Flags().StringVar(&in.Categoria, "categoria", "", "Category")
	cmd.Flags().StringVar(&in.Data, "data", time.Now().Format(time.DateOnly), "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Tipo, "tipo", string(models.Receita), "receita or despesa")
	return cmd
}

func (app *App) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <tipo> <id>",
		Short: "Delete a receita or despesa",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, err := models.ParseKind(args[0])
			if err != nil {
				return err
			}
			if _, err := app.requireSession(ctx); err != nil {
				return err
			}

			out := app.console(cmd)
			ctrl := app.deps.Controller(out)
			if err := ctrl.DeleteMovement(ctx, kind, args[1]); err != nil {
				return err
			}
			out.Dashboard(ctrl.View(), ctrl.Recent())
			return nil
		},
	}
}
