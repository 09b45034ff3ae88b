package textenc

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("Latin1ToUTF8", func(t *testing.T) {
		got, err := Decode([]byte{'c', 'a', 'f', 0xe9}, "iso-8859-1")
		require.NoError(t, err)

		assert.Equal(t, "café", string(got))
		assert.True(t, utf8.Valid(got))
	})

	t.Run("UTF8PassesThrough", func(t *testing.T) {
		body := []byte("café")
		got, err := Decode(body, "utf-8")
		require.NoError(t, err)
		assert.Equal(t, body, got)
	})

	t.Run("EmptyCharsetPassesThrough", func(t *testing.T) {
		body := []byte("plain")
		got, err := Decode(body, "")
		require.NoError(t, err)
		assert.Equal(t, body, got)
	})

	t.Run("CharsetNameIsCaseInsensitive", func(t *testing.T) {
		got, err := Decode([]byte{0xe9}, "ISO-8859-1")
		require.NoError(t, err)
		assert.Equal(t, "é", string(got))
	})

	t.Run("UnknownCharsetFails", func(t *testing.T) {
		_, err := Decode([]byte("x"), "made-up-charset")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "made-up-charset")
	})
}
