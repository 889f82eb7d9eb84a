package repository_mocks

// Doubles for the repository interfaces, used by the service tests.
// Regenerate with go generate ./internal/repositories/...
//go:generate mockgen -source=../interfaces.go -destination=repository_mocks.go -package=repository_mocks
