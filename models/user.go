package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserDisabled       = errors.New("user is disabled")
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username"`
	Email     string    `gorm:"size:100;not null;unique" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"size:1;not null;default:'S'" json:"role"`
	IsActive  *bool     `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username  string `json:"username" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required"`
}

type LoginInfo struct {
	Token     string    `json:"access"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

/*
sessions:
	Token:$jti    -> username
	Tokens:$username  set of jti
*/

func (input *NewUser) validate() error {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateInput(input); err != nil {
		return err
	}
	if input.Password != input.Password2 {
		return newValidationError("password", "Password fields didn't match.")
	}
	return nil
}

func Register(ctx context.Context, input *NewUser) (*User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[User](ctx, "username", input.Username); err != nil {
		return nil, newValidationError("username", "A user with that username already exists.")
	}
	if err := utils.ValidateUnique[User](ctx, "email", input.Email); err != nil {
		return nil, newValidationError("email", "A user with that email already exists.")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashedPassword),
		Role:     UserRoleStaff,
		IsActive: utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if utils.IsDuplicateKeyErr(err) {
			return nil, newValidationError("username", "duplicate username or email")
		}
		return nil, err
	}
	return &user, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.DereferencePtr(user.IsActive) {
		return nil, ErrUserDisabled
	}

	issued, err := utils.JwtGenerate(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}
	// add new session to the user's session set
	if err := config.AddRedisSet("Tokens:"+user.Username, issued.TokenId); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+issued.TokenId, user.Username, time.Until(issued.ExpiresAt)); err != nil {
		return nil, err
	}
	return &LoginInfo{Token: issued.Token, ExpiresAt: issued.ExpiresAt, User: &user}, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	tokenId, ok := utils.GetTokenIdFromContext(ctx)
	if !ok || tokenId == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + tokenId); err != nil {
		return false, err
	}
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return false, errors.New("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+username, tokenId); err != nil {
		return false, err
	}
	return true, nil
}

// DestroyAllSessions revokes every session of username.
func DestroyAllSessions(username string) error {
	tokenIds, err := config.GetRedisSetMembers("Tokens:" + username)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokenIds)+1)
	for _, id := range tokenIds {
		keys = append(keys, "Token:"+id)
	}
	keys = append(keys, "Tokens:"+username)
	return config.RemoveRedisKey(keys...)
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return fetchModel[User](ctx, "user", id)
}

// UpsertAdmin creates the admin user or resets its password and role.
func UpsertAdmin(ctx context.Context, username string, email string, password string) (*User, bool, error) {
	if len(password) < 8 {
		return nil, false, newValidationError("password", "must be at least 8 characters")
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	db := config.GetDB()
	var user User
	created := false
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(lockForUpdate()).Where("username = ?", username).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = User{
				Username: username,
				Email:    strings.ToLower(email),
				Password: string(hashedPassword),
				Role:     UserRoleAdmin,
				IsActive: utils.NewTrue(),
			}
			created = true
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}
		user.Password = string(hashedPassword)
		user.Role = UserRoleAdmin
		user.IsActive = utils.NewTrue()
		return tx.Model(&user).Updates(map[string]interface{}{
			"password":  user.Password,
			"role":      user.Role,
			"is_active": true,
		}).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &user, created, nil
}
