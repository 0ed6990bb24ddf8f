package config

const (
	EnvPrefix = "GATEKEEPER"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "GATEKEEPER_APP_ENV"
	EnvPort   = "GATEKEEPER_APP_PORT"
	EnvDBPath = "GATEKEEPER_DB_PATH"
)
