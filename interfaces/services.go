package interfaces

import (
	"context"
	"time"

	"nfl-projections-go/models"
	"nfl-projections-go/services"
)

// ProjectionProvider serves the combined projections table
type ProjectionProvider interface {
	Rows() []models.ProjectionRow
	Status() (source string, loadedAt time.Time, rows int)
	Load(ctx context.Context) ([]models.ProjectionRow, error)
	Refresh(ctx context.Context) ([]models.ProjectionRow, error)
}

// AuthService defines admin authentication operations used by handlers
type AuthService interface {
	Enabled() bool
	Login(password string) (token string, expires time.Time, err error)
	ValidateToken(tokenString string) (*services.JWTClaims, error)
}

// RefreshScheduler runs projection refreshes on a schedule
type RefreshScheduler interface {
	Start()
	Stop()
	IsRunning() bool
	LastRun() (time.Time, error)
}
