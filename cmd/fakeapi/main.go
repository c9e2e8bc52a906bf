// Command fakeapi serves the in-memory finance API for local development.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/rogerio-castellano/finance-dashboard/internal/apitest"
	"github.com/rogerio-castellano/finance-dashboard/internal/logging"
	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

func main() {
	var (
		addr     string
		cfg      apitest.Config
		perMin   float64
		seed     bool
		logLevel string
	)

	cmd := &cobra.Command{
		Use:          "fakeapi",
		Short:        "In-memory finance API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.SetupLogging(logLevel)
			cfg.Log = log
			cfg.LoginRate = rate.Limit(perMin / 60)

			api, err := apitest.NewServer(cfg)
			if err != nil {
				return err
			}
			if seed {
				seedStore(api.Store())
			}

			ctx := cmd.Context()
			stop := make(chan struct{})
			defer close(stop)
			go api.StartLimiterCleanup(time.Minute, stop)

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			log.WithField("addr", addr).WithField("email", cfg.Email).Info("FakeAPI.Serve.Start")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			log.Info("FakeAPI.Serve.Stopped")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":8080", "Listen address")
	f.StringVar(&cfg.Secret, "jwt-secret", "dev-secret", "HS256 secret, shared with clients in local auth mode")
	f.StringVar(&cfg.Email, "email", "demo@demo.com", "Accepted login email")
	f.StringVar(&cfg.Password, "password", "secret1", "Accepted login password")
	f.DurationVar(&cfg.TokenTTL, "token-ttl", 8*time.Hour, "Issued token lifetime")
	f.Float64Var(&perMin, "login-per-minute", 10, "Login attempts allowed per client IP per minute (0 disables)")
	f.IntVar(&cfg.LoginBurst, "login-burst", 5, "Login burst per client IP")
	f.BoolVar(&seed, "seed", false, "Start with a few example movements")
	f.StringVar(&logLevel, "log-level", "info", "Log level")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func seedStore(s *apitest.Store) {
	today := time.Now()
	day := func(offset int) string { return today.AddDate(0, 0, -offset).Format(time.DateOnly) }

	s.Add(models.Receita, models.Movement{Descricao: "Salário", Valor: models.AmountFromFloat(5200), Categoria: "Renda", Data: day(20)})
	s.Add(models.Receita, models.Movement{Descricao: "Freela site", Valor: models.AmountFromFloat(850.5), Categoria: "Renda extra", Data: day(6)})
	s.Add(models.Despesa, models.Movement{Descricao: "Aluguel", Valor: models.AmountFromFloat(1800), Categoria: "Moradia", Data: day(18)})
	s.Add(models.Despesa, models.Movement{Descricao: "Mercado", Valor: models.AmountFromFloat(432.17), Categoria: "Alimentação", Data: day(3)})
	s.Add(models.Despesa, models.Movement{Descricao: "Conta de luz", Valor: models.AmountFromFloat(189.9), Categoria: "Moradia", Data: day(1)})
}
