package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/textile-stock-api/internal/application/dto"
	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
	"github.com/jhoicas/textile-stock-api/internal/domain/repository"
	"github.com/jhoicas/textile-stock-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthUseCase casos de uso de autenticación: registro, login, refresh y perfil.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, now: time.Now}
}

// Register crea un usuario con password bcrypt y devuelve sus tokens.
// ErrEmailAlreadyExists si el email ya está registrado.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	user, err := uc.newUser(in.Email, in.Password, in.Name, entity.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return uc.issue(user)
}

// Login verifica credenciales, sella lastLoginAt y devuelve tokens.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	now := uc.now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return uc.issue(user)
}

// Refresh emite un par nuevo a partir de un refresh token vigente.
// Los access tokens no sirven aquí.
func (uc *AuthUseCase) Refresh(ctx context.Context, in dto.RefreshRequest) (*dto.AuthResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	claims, err := jwt.Parse(uc.jwtCfg.Secret, in.RefreshToken, jwt.TokenRefresh)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return uc.issue(user)
}

// Me perfil del usuario autenticado; usuarios inexistentes o inactivos son ErrUnauthorized.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserProfile, error) {
	user, err := uc.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := dto.ToUserProfile(user)
	return &profile, nil
}

// SeedAdmin crea el administrador si el email no existe. Devuelve true si lo creó.
func (uc *AuthUseCase) SeedAdmin(ctx context.Context, email, password, name string) (bool, error) {
	if email == "" || password == "" {
		return false, fmt.Errorf("%w: ADMIN_EMAIL y ADMIN_PASSWORD son obligatorios", domain.ErrInvalidInput)
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	user, err := uc.newUser(email, password, name, entity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (uc *AuthUseCase) activeUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func (uc *AuthUseCase) newUser(email, password, name, role string) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	return &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (uc *AuthUseCase) issue(user *entity.User) (*dto.AuthResponse, error) {
	id := jwt.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}
	access, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, jwt.TokenAccess, id, uc.jwtCfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, jwt.TokenRefresh, id, uc.jwtCfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(uc.jwtCfg.AccessTTL.Seconds()),
		User:         dto.AuthUser{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role},
	}, nil
}
