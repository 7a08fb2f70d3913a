package datastore

import (
	"context"

	"gorm.io/gorm"
)

// ListUsers returns all users ordered by id. Password hashes are loaded
// but never serialized.
func (ds *DataStore) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := ds.run(ctx, "list_users", nil, func(db *gorm.DB) error {
		return db.Order("id").Find(&users).Error
	})
	if err != nil {
		return nil, err
	}
	return nonNil(users), nil
}

// GetUserByEmail returns the user with exactly this email or ErrUserNotFound.
func (ds *DataStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := ds.run(ctx, "get_user_by_email", ErrUserNotFound, func(db *gorm.DB) error {
		return db.Where("email = ?", email).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a user. The unique index on email makes a concurrent
// insert of the same address fail with ErrDuplicateKey instead of creating
// a second row.
func (ds *DataStore) CreateUser(ctx context.Context, user *User) error {
	if user.Role == "" {
		user.Role = "user"
	}
	return ds.run(ctx, "create_user", nil, func(db *gorm.DB) error {
		return db.Create(user).Error
	})
}
