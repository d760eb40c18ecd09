package users

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID                uint   `gorm:"primaryKey"`
	Email             string `gorm:"uniqueIndex"`
	EncryptedPassword string
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// ErrUserExists is returned when attempting to create a user that already exists.
var ErrUserExists = errors.New("user already exists")

// ErrInvalidCredentials is returned when authentication fails. Callers get
// the same error for a missing user and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// FindByEmail retrieves a user by email.
func FindByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateAdminUser creates a new admin user with the supplied credentials.
// It returns ErrUserExists if the user already exists.
func CreateAdminUser(db *gorm.DB, email, password string) error {
	if email == "" {
		return errors.New("email cannot be empty")
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}

	if _, err := FindByEmail(db, email); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Create(&User{
		Email:             email,
		EncryptedPassword: string(hashed),
	}).Error
}

// Authenticate verifies the supplied credentials and returns the user.
func Authenticate(db *gorm.DB, email, password string) (*User, error) {
	user, err := FindByEmail(db, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ResetPassword sets a user's password without a current-password check.
// Operator use only (CLI); the HTTP surface goes through ChangePassword.
func ResetPassword(db *gorm.DB, email, newPassword string) error {
	if newPassword == "" {
		return errors.New("password cannot be empty")
	}

	user, err := FindByEmail(db, email)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Model(user).Update("encrypted_password", string(hashed)).Error
}

// ChangePassword updates a user's password given their email and current
// password.
func ChangePassword(db *gorm.DB, email, currentPassword, newPassword string) error {
	if newPassword == "" {
		return errors.New("password cannot be empty")
	}

	user, err := Authenticate(db, email, currentPassword)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Model(user).Update("encrypted_password", string(hashed)).Error
}
