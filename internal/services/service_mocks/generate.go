package service_mocks

// Doubles for the service interfaces, used by the handler and middleware tests.
//go:generate mockgen -source=../interfaces.go -destination=service_mocks.go -package=service_mocks
