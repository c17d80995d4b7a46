package structured

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"
)

func tripSchema() *Schema {
	return NewSchema("trip", "trip",
		&Field{Name: "destination", Kind: String, Required: true},
		&Field{Name: "pace", Kind: Enum, Enum: []string{"relaxed", "intense"}},
		&Field{Name: "days", Kind: Integer},
		&Field{Name: "preferences", Kind: Object, Fields: []*Field{
			{Name: "activities", Kind: List},
			{Name: "budget", Kind: String, Default: "unknown"},
		}},
	)
}

func TestSchemaDefaults(t *testing.T) {
	s := tripSchema()
	want := map[string]any{
		"destination": "",
		"pace":        "",
		"days":        float64(0),
		"preferences": map[string]any{"activities": []any{}, "budget": "unknown"},
	}
	require.Equal(t, want, s.Defaults())

	d := s.Defaults()
	d["preferences"].(map[string]any)["budget"] = "changed"
	require.Equal(t, want, s.Defaults())
}

func TestSchemaValidate(t *testing.T) {
	s := tripSchema()
	got, err := s.Validate(map[string]any{
		"destination": "Qingdao",
		"pace":        nil,
		"extra":       true,
		"preferences": map[string]any{"activities": []any{"seafood"}},
	})
	require.NoError(t, err)
	require.Equal(t, "", got["pace"])
	require.Equal(t, true, got["extra"])
	require.Equal(t, "unknown", got["preferences"].(map[string]any)["budget"])

	bad := []map[string]any{
		{"pace": "relaxed"},
		{"destination": "x", "pace": "slow"},
		{"destination": "x", "days": 1.5},
		{"destination": "x", "preferences": map[string]any{"activities": []any{1}}},
		{"destination": "x", "preferences": "none"},
	}
	for _, v := range bad {
		_, err := s.Validate(v)
		require.ErrorIs(t, err, ErrSchemaViolation, "%v", v)
	}
	_, err = s.Validate([]any{})
	require.ErrorIs(t, err, ErrSchemaViolation)
}

func TestSchemaToolInfo(t *testing.T) {
	info := tripSchema().ToolInfo()
	require.Equal(t, "trip", info.Name)
	require.NotNil(t, info.ParamsOneOf)
	require.Equal(t, schema.String, paramOf(&Field{Kind: Enum}).Type)
	require.Equal(t, schema.Array, paramOf(&Field{Kind: List}).Type)
}
