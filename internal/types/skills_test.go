package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSkillsUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		grouped   bool
		groups    []SkillGroup
		items     []string
		expectErr bool
	}{
		{
			name:    "category mapping keeps key order",
			input:   `{"Languages": ["Python", "Go"], "Cloud": ["AWS"], "Databases": []}`,
			grouped: true,
			groups: []SkillGroup{
				{Category: "Languages", Items: []string{"Python", "Go"}},
				{Category: "Cloud", Items: []string{"AWS"}},
				{Category: "Databases", Items: []string{}},
			},
		},
		{
			name:  "flat list",
			input: `["Python", "Go"]`,
			items: []string{"Python", "Go"},
		},
		{
			name:    "repeated key replaces in place",
			input:   `{"A": ["x"], "B": ["y"], "A": ["z"]}`,
			grouped: true,
			groups: []SkillGroup{
				{Category: "A", Items: []string{"z"}},
				{Category: "B", Items: []string{"y"}},
			},
		},
		{
			name:  "null",
			input: `null`,
		},
		{
			name:      "scalar is rejected",
			input:     `"Python"`,
			expectErr: true,
		},
		{
			name:      "non-string item is rejected",
			input:     `{"Languages": [1, 2]}`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Skills
			err := json.Unmarshal([]byte(tt.input), &s)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.grouped, s.IsGrouped())
			assert.Equal(t, tt.groups, s.Groups)
			assert.Equal(t, tt.items, s.Items)
		})
	}
}

func TestSkillsEmpty(t *testing.T) {
	for _, input := range []string{`{}`, `[]`, `null`} {
		var s Skills
		require.NoError(t, json.Unmarshal([]byte(input), &s), input)
		assert.True(t, s.IsEmpty(), input)
	}
}

func TestSkillsMarshalJSONKeepsOrder(t *testing.T) {
	s := Skills{Groups: []SkillGroup{
		{Category: "Zeta", Items: []string{"z"}},
		{Category: "Alpha", Items: nil},
	}}

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":["z"],"Alpha":[]}`, string(out))

	out, err = json.Marshal(Skills{Items: []string{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, `["Go"]`, string(out))
}

func TestSkillsUnmarshalYAML(t *testing.T) {
	var doc struct {
		Skills Skills `yaml:"skills"`
	}

	input := "skills:\n  Languages: [Python, Go]\n  Cloud:\n    - AWS\n"
	require.NoError(t, yaml.Unmarshal([]byte(input), &doc))
	assert.Equal(t, []SkillGroup{
		{Category: "Languages", Items: []string{"Python", "Go"}},
		{Category: "Cloud", Items: []string{"AWS"}},
	}, doc.Skills.Groups)

	require.NoError(t, yaml.Unmarshal([]byte("skills: [Python, Go]\n"), &doc))
	assert.Equal(t, []string{"Python", "Go"}, doc.Skills.Items)
	assert.False(t, doc.Skills.IsGrouped())

	assert.Error(t, yaml.Unmarshal([]byte("skills: lots\n"), &doc))
}

func TestHeaderParts(t *testing.T) {
	h := Header{
		Email:    "jane@example.com",
		Location: "Berlin",
		GitHub:   "github.com/jane",
		Links:    []string{"", "jane.dev"},
	}

	assert.Equal(t, []string{"jane@example.com", "Berlin"}, h.ContactParts())
	assert.Equal(t, []string{"github.com/jane", "jane.dev"}, h.LinkParts())
	assert.Empty(t, Header{}.ContactParts())
}
