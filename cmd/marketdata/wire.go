//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"marketdata/internal/app"
)

// InitializeApp builds the App (config, providers, cache, manager) via
// Wire. Caller must call a.Close() when done.
func InitializeApp() (*app.App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideCodec,
		app.ProvideCache,
		app.ProvideProviders,
		app.ProvideManager,
		wire.Struct(new(app.App), "Config", "Manager", "Cache", "Providers"),
	)
	return nil, nil
}
