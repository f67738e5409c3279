package localization_test

import (
	"testing"
	"testing/fstest"

	"complaintdesk/backend/internal/localization"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedCatalogs(t *testing.T) {
	l, err := localization.Default()
	require.NoError(t, err)

	for _, lang := range []string{"id", "en"} {
		for _, key := range []string{
			localization.KeyPersona,
			localization.KeyCodeDirective,
			localization.KeyCancellationDirective,
			localization.KeyFallbackApology,
			localization.KeyUnableToAnswer,
		} {
			assert.NotEqual(t, key, l.GetString(lang, key), "%s/%s missing", lang, key)
		}
	}
	assert.Contains(t, l.Format("id", localization.KeyCancellationDirective, "12345"), "12345 sudah di refund")
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"cat/en.json":    {Data: []byte(`{"greeting":"hello","only_en":"english"}`)},
		"cat/id.json":    {Data: []byte(`{"greeting":"halo"}`)},
		"cat/readme.txt": {Data: []byte("ignored")},
	}
	l, err := localization.NewLocalizer(fsys, "cat")
	require.NoError(t, err)

	assert.Equal(t, "halo", l.GetString("id", "greeting"))
	assert.Equal(t, "english", l.GetString("id", "only_en"))
	assert.Equal(t, "hello", l.GetString("fr", "greeting"))
	assert.Equal(t, "missing_key", l.GetString("id", "missing_key"))
}

func TestNewLocalizer_BadJSON(t *testing.T) {
	fsys := fstest.MapFS{"cat/en.json": {Data: []byte(`{not json`)}}
	_, err := localization.NewLocalizer(fsys, "cat")
	assert.ErrorContains(t, err, "failed to parse localization file en.json")
}
