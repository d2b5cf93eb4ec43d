// Package logger provee un logger Zap singleton con scoping por contexto.
//
// Inicialización (una vez, en el main del CLI):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
// En el pipeline de resolución (con contexto):
//
//	log := logger.From(ctx)
//	log.Debug("enrichment stage done", logger.Scope("guilds"))
//
// "dev" usa consola con colores, "prod" JSON. Los access tokens nunca se loguean.
package logger
