package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfiles() map[string]Profile {
	return map[string]Profile{
		"npc_a": {
			CharacterID:        "npc_a",
			TargetLang:         LangIndonesian,
			Tone:               "ceria",
			Quirks:             []string{"sering tertawa", "panggilan 'kak'"},
			Pronouns:           "aku/kamu",
			Formality:          "informal",
			PunctuationHabits:  "banyak tanda seru",
			LexicalPreferences: []string{"banget"},
			StyleRulesEN:       []string{},
			StyleRulesID:       []string{"gunakan sapaan akrab"},
			Notes:              "suka bercanda — catatan: 你好",
		},
		"npc_b": Fallback("npc_b", LangIndonesian),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas_learned_id.json")
	profiles := sampleProfiles()

	require.NoError(t, SaveProfiles(profiles, path))

	loaded, err := LoadProfiles(path)
	require.NoError(t, err)
	assert.Equal(t, profiles, loaded)
}

func TestStorePreservesNonASCII(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.json")
	require.NoError(t, SaveProfiles(sampleProfiles(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "你好", "non-ASCII text must be written verbatim, not escaped")
	assert.Contains(t, string(data), "\n  ", "output must be indented for diff-friendliness")
}

func TestStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "personas.json")
	require.NoError(t, SaveProfiles(sampleProfiles(), path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadProfilesMissingFile(t *testing.T) {
	_, err := LoadProfiles(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	existing := map[string]Profile{
		"npc_a": {CharacterID: "npc_a", TargetLang: LangIndonesian, Tone: "lama"},
		"npc_b": {CharacterID: "npc_b", TargetLang: LangIndonesian, Tone: "tetap"},
	}
	update := map[string]Profile{
		"npc_a": {CharacterID: "npc_a", TargetLang: LangIndonesian, Tone: "baru"},
		"npc_c": {CharacterID: "npc_c", TargetLang: LangIndonesian, Tone: "tambahan"},
	}

	merged := Merge(existing, update)

	assert.Len(t, merged, 3)
	assert.Equal(t, "baru", merged["npc_a"].Tone, "same-key entries take the new value")
	assert.Equal(t, "tetap", merged["npc_b"].Tone, "untouched keys survive")
	assert.Equal(t, "tambahan", merged["npc_c"].Tone)

	assert.Equal(t, "lama", existing["npc_a"].Tone, "inputs are not mutated")
}
