package di

import (
	"github.com/yinshi/foodcourt/internal/adapter/gateway"
	"github.com/yinshi/foodcourt/internal/app"
	"github.com/yinshi/foodcourt/internal/config"
	"github.com/yinshi/foodcourt/internal/logger"
	"github.com/yinshi/foodcourt/internal/pkg/auth"
	"github.com/yinshi/foodcourt/internal/server/http/handlers"
	"github.com/yinshi/foodcourt/internal/server/http/router"
	"github.com/yinshi/foodcourt/internal/storage/postgres"
	"github.com/yinshi/foodcourt/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		gateway.Module,
		usecase.Module,
		fx.Provide(func(client gateway.Client) app.PaymentProvider { return client }),
		fx.Provide(func(f *app.CourtFacade) handlers.CourtFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
