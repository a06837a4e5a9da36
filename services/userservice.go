package services

import (
	"context"
	"errors"
	"strings"

	"choretracker/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string
	Password string
	IsAdmin  bool
}

// dummyHash is compared against when the username is unknown so a failed
// login costs the same whether or not the user exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("choretracker-dummy-password"), bcrypt.DefaultCost)

// Register creates a user. An admin account may only be created by an admin
// caller, except for the very first account of an empty store.
func Register(ctx context.Context, db *gorm.DB, hashCost int, in RegisterInput, callerIsAdmin bool) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, invalidInput("username and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
	if err != nil {
		return nil, invalidInput("password cannot be hashed: %v", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		PasswordHash: string(hashedPassword),
		IsAdmin:      in.IsAdmin,
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := UserExist(tx, in.Username)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateUsername
		}

		if in.IsAdmin && !callerIsAdmin {
			var count int64
			if err := tx.Model(&model.User{}).Count(&count).Error; err != nil {
				return storeFailure("count users", err)
			}
			if count > 0 {
				return ErrForbidden
			}
		}

		if err := tx.Create(user).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateUsername
			}
			return storeFailure("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func Login(ctx context.Context, db *gorm.DB, username, password string) (*model.User, error) {
	user, err := GetUserByUsername(db.WithContext(ctx), strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func ChangePassword(ctx context.Context, db *gorm.DB, hashCost int, userID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return invalidInput("new password is required")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := GetUserByID(tx, userID)
		if err != nil {
			return err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
			return ErrInvalidCredentials
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), hashCost)
		if err != nil {
			return invalidInput("password cannot be hashed: %v", err)
		}
		if err := tx.Model(user).Update("password_hash", string(hashedPassword)).Error; err != nil {
			return storeFailure("update password", err)
		}
		return nil
	})
}

func UserExist(db *gorm.DB, username string) (bool, error) {
	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, storeFailure("check username", err)
	}
	return count > 0, nil
}

func GetUserByUsername(db *gorm.DB, username string) (*model.User, error) {
	var user model.User
	if err := db.Where("username = ?", username).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, storeFailure("get user", err)
	}
	return &user, nil
}

func GetUserByID(db *gorm.DB, userID string) (*model.User, error) {
	var user model.User
	if err := db.Where("id = ?", userID).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user " + userID)
		}
		return nil, storeFailure("get user", err)
	}
	return &user, nil
}

// ListUsers returns users ordered by username, optionally filtered by prefix.
func ListUsers(ctx context.Context, db *gorm.DB, prefix string) ([]model.User, error) {
	query := db.WithContext(ctx).Order("username")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		query = query.Where("username LIKE ?", stripLikeWildcards(prefix)+"%")
	}

	users := []model.User{}
	if err := query.Find(&users).Error; err != nil {
		return nil, storeFailure("list users", err)
	}
	return users, nil
}

func stripLikeWildcards(s string) string {
	r := strings.NewReplacer("%", "", "_", "")
	return r.Replace(s)
}
