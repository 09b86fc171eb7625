package jwt_test

import (
	"testing"
	"time"

	"github.com/jhoicas/textile-stock-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

var ana = jwt.Identity{UserID: "u-1", Email: "ana@example.com", Role: "admin"}

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := jwt.Generate(secret, "textile-stock-api", jwt.TokenAccess, ana, time.Minute)
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, tok, jwt.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "textile-stock-api", claims.Issuer)
}

func TestParse_TipoIncorrecto(t *testing.T) {
	tok, err := jwt.Generate(secret, "iss", jwt.TokenAccess, ana, time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, tok, jwt.TokenRefresh)
	assert.ErrorIs(t, err, jwt.ErrWrongTokenType)
}

func TestParse_Rechaza(t *testing.T) {
	expired, err := jwt.Generate(secret, "iss", jwt.TokenAccess, ana, -time.Minute)
	require.NoError(t, err)
	valid, err := jwt.Generate(secret, "iss", jwt.TokenAccess, ana, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{name: "expirado", secret: secret, token: expired},
		{name: "firma de otro secreto", secret: "otro", token: valid},
		{name: "basura", secret: secret, token: "no.es.jwt"},
		{name: "secreto vacío", secret: "", token: valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jwt.Parse(tt.secret, tt.token, jwt.TokenAccess)
			assert.Error(t, err)
		})
	}
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "iss", jwt.TokenAccess, ana, time.Minute)
	assert.Error(t, err)
}
