package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"roteiro/cmd/fx/account_fx"
	"roteiro/cmd/fx/config_fx"
	"roteiro/cmd/fx/controllers_fx"
	"roteiro/cmd/fx/db_fx"
	"roteiro/cmd/fx/logger_fx"
	"roteiro/cmd/fx/memcache_fx"
	"roteiro/cmd/fx/trip_fx"
	"roteiro/internal/api"
	"roteiro/internal/api/controllers"
	"roteiro/internal/config"
	mem "roteiro/pkg/memcache"
)

func main() {
	app := fx.New(
		config_fx.Module,
		logger_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		account_fx.Module,
		trip_fx.Module,
		controllers_fx.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func ProvideRouter(
	cfg *config.Config,
	log *zap.Logger,
	sessions mem.SessionStore,
	accountController *controllers.AccountController,
	tripController *controllers.TripController) *gin.Engine {

	gin.SetMode(cfg.GinMode)
	return api.NewRouter(cfg, log, sessions, accountController, tripController)
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				log.Info("starting HTTP server", zap.String("addr", srv.Addr))
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}
