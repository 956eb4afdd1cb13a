//go:build wireinject
// +build wireinject

package main

import (
	"xinyuan_tech/assistance-service/internal/biz"
	"xinyuan_tech/assistance-service/internal/conf"
	"xinyuan_tech/assistance-service/internal/data"

	"github.com/google/wire"
)

// wireApp 初始化应用
func wireApp(*conf.Bootstrap) (*CronApp, func(), error) {
	panic(wire.Build(
		// Logger
		wire.FieldsOf(new(*conf.Bootstrap), "Log"),
		newLogger,

		// Data 层
		data.ProviderSet,

		// Biz 层
		biz.ProviderSet,

		// App 结构
		wire.Struct(new(CronApp), "*"),
	))
}
