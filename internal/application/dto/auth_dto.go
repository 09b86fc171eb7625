package dto

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/jhoicas/textile-stock-api/internal/domain/entity"
)

// RegisterRequest entrada para registro público. No admite rol: el alta siempre crea un usuario
// normal y los administradores solo nacen de SeedAdmin.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Normalize email en minúsculas y sin espacios.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
}

// Validate reglas de registro.
func (r RegisterRequest) Validate() error {
	if !govalidator.IsEmail(r.Email) {
		return invalid("email inválido")
	}
	if !govalidator.MinStringLength(r.Password, "6") {
		return invalid("password debe tener al menos 6 caracteres")
	}
	if !govalidator.MinStringLength(r.Name, "2") {
		return invalid("name debe tener al menos 2 caracteres")
	}
	return nil
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize email en minúsculas y sin espacios.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate reglas de login.
func (r LoginRequest) Validate() error {
	if !govalidator.IsEmail(r.Email) {
		return invalid("email inválido")
	}
	if !govalidator.MinStringLength(r.Password, "6") {
		return invalid("password debe tener al menos 6 caracteres")
	}
	return nil
}

// RefreshRequest entrada para renovar tokens.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate exige el token.
func (r RefreshRequest) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return invalid("refreshToken es obligatorio")
	}
	return nil
}

// AuthUser datos públicos del usuario autenticado.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// AuthResponse par de tokens y usuario.
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int      `json:"expiresIn"` // segundos
	User         AuthUser `json:"user"`
}

// UserProfile perfil del usuario (sin password).
type UserProfile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToUserProfile mapea la entidad al perfil público.
func ToUserProfile(u *entity.User) UserProfile {
	return UserProfile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
