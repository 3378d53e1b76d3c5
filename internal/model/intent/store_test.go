package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreFindByTag(t *testing.T) {
	store := NewMemoryStore(Seed())

	got, ok := store.FindByTag("greeting")
	require.True(t, ok)
	assert.NotEmpty(t, got.Responses)

	_, ok = store.FindByTag("missing")
	assert.False(t, ok)
}

func TestMemoryStoreListIsCopy(t *testing.T) {
	store := NewMemoryStore(Seed())
	items := store.List()
	items[0].Tag = "mutated"

	assert.NotEqual(t, "mutated", store.List()[0].Tag)
}

func TestSeedHasNoAnswer(t *testing.T) {
	_, ok := NewMemoryStore(Seed()).FindByTag(NoAnswerTag)
	assert.True(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents.json")
	doc := `{"intents":[{"tag":"greeting","patterns":["Hi"],"responses":["Hello"]}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	items, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "greeting", items[0].Tag)
	assert.Equal(t, []string{"Hello"}, items[0].Responses)
}

func TestDecodeRejectsBadDocuments(t *testing.T) {
	_, err := Decode([]byte(`{"intents":[]}`))
	assert.ErrorIs(t, err, ErrNoIntents)

	_, err = Decode([]byte(`{"intents":[{"patterns":["Hi"]}]}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
