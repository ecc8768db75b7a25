// Package users persists and resolves principals.
package users

import (
	"context"

	"github.com/bucketlist-social/bucketlist/internal/server/models"
)

// Repository is the principal lookup boundary used at login, registration,
// and on every authenticated request. Absent rows surface as
// common.ErrorNotFound, duplicate usernames/emails as
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
