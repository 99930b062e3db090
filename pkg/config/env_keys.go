package config

// EnvPrefix scopes envconfig processing; individual fields carry full names.
const EnvPrefix = "MERCADITO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MERCADITO_DB_DSN"
	EnvDBHost = "MERCADITO_DB_HOST"
	EnvDBUser = "MERCADITO_DB_USER"
	EnvDBName = "MERCADITO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
