package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gearguard/gearguard/internal/models"
)

func TestNewService(t *testing.T) {
	service, err := NewService()
	assert.NoError(t, err)
	assert.NotNil(t, service)
	assert.NotEmpty(t, service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)
}

func TestService_HashPassword(t *testing.T) {
	service, _ := NewService()

	password := "testpassword123"
	hash, err := service.HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestService_CheckPassword(t *testing.T) {
	service, _ := NewService()

	password := "testpassword123"
	hash, _ := service.HashPassword(password)

	// Test correct password
	assert.True(t, service.CheckPassword(password, hash))

	// Test incorrect password
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_GenerateToken(t *testing.T) {
	service, _ := NewService()

	user := &models.User{
		ID:     primitive.NewObjectID(),
		Name:   "Demo Technician",
		Email:  "demo.technician@gearguard.com",
		Role:   models.RoleTechnician,
		TeamID: "team-123",
	}

	token, err := service.GenerateToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestService_ValidateToken(t *testing.T) {
	service, _ := NewService()

	user := &models.User{
		ID:     primitive.NewObjectID(),
		Name:   "Demo Technician",
		Email:  "demo.technician@gearguard.com",
		Role:   models.RoleTechnician,
		TeamID: "team-123",
	}

	t.Run("valid token", func(t *testing.T) {
		token, _ := service.GenerateToken(user)

		claims, err := service.ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.UserID)
		assert.Equal(t, user.Name, claims.Name)
		assert.Equal(t, user.Email, claims.Email)
		assert.Equal(t, user.Role, claims.Role)
		assert.Equal(t, user.TeamID, claims.TeamID)
	})

	t.Run("bearer prefix is stripped", func(t *testing.T) {
		token, _ := service.GenerateToken(user)

		claims, err := service.ValidateToken("Bearer " + token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.UserID)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := &Service{jwtSecret: service.jwtSecret, tokenExp: -time.Hour}
		token, _ := expired.GenerateToken(user)

		_, err := service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := &Service{jwtSecret: []byte("some-other-secret"), tokenExp: time.Hour}
		token, _ := other.GenerateToken(user)

		_, err := service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service, _ := NewService()

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid bearer header", "Bearer abc123", "abc123", false},
		{"empty header", "", "", true},
		{"missing token", "Bearer ", "", true},
		{"wrong scheme", "Basic abc123", "", true},
		{"no scheme", "abc123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := service.ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, token)
			}
		})
	}
}

func TestService_ValidatePassword(t *testing.T) {
	service, _ := NewService()

	assert.NoError(t, service.ValidatePassword("longenough"))
	assert.Error(t, service.ValidatePassword("short"))
}

func TestService_ValidateEmail(t *testing.T) {
	service, _ := NewService()

	assert.NoError(t, service.ValidateEmail("user@example.com"))
	assert.Error(t, service.ValidateEmail("not-an-email"))
	assert.Error(t, service.ValidateEmail("missing@dot"))
}

func TestService_ValidateName(t *testing.T) {
	service, _ := NewService()

	assert.NoError(t, service.ValidateName("Mei Lin"))
	assert.Error(t, service.ValidateName("M"))
	assert.Error(t, service.ValidateName("  "))
}
