// Package container builds the dependency injection container.
package container

import (
	"chat-relay/internal/app"
	"chat-relay/internal/config"
	"chat-relay/internal/db"
	"chat-relay/internal/handler"
	"chat-relay/internal/httpclient"
	"chat-relay/internal/relay"
	"chat-relay/internal/router"
	"chat-relay/internal/services"
	"chat-relay/internal/stats"
	"chat-relay/internal/upstream"

	"go.uber.org/dig"
)

// BuildContainer creates and configures the dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		config.NewManager,
		db.NewDB,
		stats.NewCollector,
		httpclient.NewManager,
		upstream.NewCaller,
		services.NewRequestLogService,
		relay.NewServer,
		handler.NewServer,
		router.NewRouter,
		app.NewApp,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}
