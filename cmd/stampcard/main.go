package main

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"stampcard/config"
	"stampcard/internal/delivery"
	"stampcard/internal/delivery/http"
	"stampcard/internal/delivery/http/middleware"
	"stampcard/internal/delivery/http/router/handler"
	"stampcard/internal/infra/auth"
	logs "stampcard/internal/infra/log"
	"stampcard/internal/infra/persistence/postgres"
	"stampcard/internal/infra/pubsub"
	"stampcard/internal/infra/qrcode"
	"stampcard/internal/usecase/impl"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewQRCodeRepository,
			postgres.NewSubscriptionRepository,
			postgres.NewStampRepository,
			postgres.NewRewardRepository,
			postgres.NewRedemptionRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			qrcode.NewQRImageService,
			pubsub.NewEventPublisher,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewUserService,
			impl.NewQRService,
			impl.NewScanService,
			impl.NewSubscriptionService,
			impl.NewStampService,
			impl.NewRewardService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewUserHandler,
			handler.NewQRHandler,
			handler.NewScanHandler,
			handler.NewClientHandler,
			handler.NewBusinessHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
