package modules

import (
	"context"

	"pokeproxy/api/handlers"
)

func initializeHealthHandler(deps *ModuleDependencies) *handlers.HealthHandler {
	checks := map[string]handlers.Pinger{}

	if deps.DB != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := deps.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis.Ping
	}

	return handlers.NewHealthHandler(checks)
}
