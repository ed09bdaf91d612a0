package repository

import (
	"context"

	"netseg/internal/domain"
	"netseg/internal/prefs"
)

// Getters return (nil, nil) when the record does not exist.

// DesignRepository persists named canvas designs
type DesignRepository interface {
	SaveDesign(ctx context.Context, design *domain.Design) error
	GetDesign(ctx context.Context, name string) (*domain.Design, error)
	ListDesigns(ctx context.Context) ([]domain.DesignSummary, error)
	DeleteDesign(ctx context.Context, name string) error
}

// DepartmentRepository persists department zone configuration
type DepartmentRepository interface {
	ListDepartments(ctx context.Context) ([]domain.DepartmentZone, error)
	GetDepartment(ctx context.Context, id string) (*domain.DepartmentZone, error)
	UpsertDepartment(ctx context.Context, zone *domain.DepartmentZone) error
}

// HostRepository persists virtual hosts
type HostRepository interface {
	ListHosts(ctx context.Context) ([]domain.VirtualHost, error)
	GetHost(ctx context.Context, id string) (*domain.VirtualHost, error)
	UpsertHost(ctx context.Context, host *domain.VirtualHost) error
	DeleteHost(ctx context.Context, id string) error
}

// TestResultRepository persists connectivity test results
type TestResultRepository interface {
	AddTestResults(ctx context.Context, results ...domain.TestResult) error
	// ListTestResults returns results newest first; limit <= 0 returns all
	ListTestResults(ctx context.Context, limit int) ([]domain.TestResult, error)
	ClearTestResults(ctx context.Context) error
}

// Repository is the full persistence layer
type Repository interface {
	DesignRepository
	DepartmentRepository
	HostRepository
	TestResultRepository

	// Preferences returns the key/value store for UI preferences
	Preferences() prefs.Store

	// Close releases resources
	Close() error
}
