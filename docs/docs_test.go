package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerRegistrado(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var spec struct {
		Info  struct{ Title string } `json:"info"`
		Paths map[string]any         `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &spec))
	assert.Equal(t, "Textile Stock API", spec.Info.Title)
	assert.Contains(t, spec.Paths, "/api/masters/{entity}/{id}/restore")
	assert.Contains(t, spec.Paths, "/api/auth/login")
}
