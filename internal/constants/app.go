package constants

// Application Information
const (
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Default Application Settings
const (
	DefaultPort        = "8080"
	DefaultEnvironment = EnvDevelopment
)

// Cache Key Prefixes
const (
	CacheKeyPrefix   = "bilemo:"
	CacheKeyClients  = CacheKeyPrefix + "clients:"
	CacheKeyProducts = CacheKeyPrefix + "products:"
)

// Roles
const (
	RoleUser       = "ROLE_USER"
	RoleAdmin      = "ROLE_ADMIN"
	RoleSuperAdmin = "ROLE_SUPER_ADMIN"
)
