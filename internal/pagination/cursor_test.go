package pagination

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor(t *testing.T) {
	encoded := EncodeCursor(14, 982)
	require.NotEmpty(t, encoded)

	c, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, 14, c.Position)
	assert.Equal(t, int64(982), c.LastID)
}

func TestEncodeCursor_NoID(t *testing.T) {
	assert.Empty(t, EncodeCursor(3, 0))
}

func TestDecodeCursor(t *testing.T) {
	tests := []struct {
		name    string
		cursor  string
		wantNil bool
		wantErr bool
	}{
		{name: "empty", cursor: "", wantNil: true},
		{name: "not base64", cursor: "!!!", wantErr: true},
		{name: "missing separator", cursor: base64.RawURLEncoding.EncodeToString([]byte("12")), wantErr: true},
		{name: "bad position", cursor: base64.RawURLEncoding.EncodeToString([]byte("x|3")), wantErr: true},
		{name: "negative position", cursor: base64.RawURLEncoding.EncodeToString([]byte("-1|3")), wantErr: true},
		{name: "zero id", cursor: base64.RawURLEncoding.EncodeToString([]byte("1|0")), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeCursor(tt.cursor)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCursor)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, c)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-4))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxLimit, ClampLimit(1000))
}

func TestTrim(t *testing.T) {
	type row struct {
		pos int
		id  int64
	}
	key := func(r row) (int, int64) { return r.pos, r.id }

	items, next, more := Trim([]row{{0, 10}, {1, 11}}, 2, key)
	assert.Len(t, items, 2)
	assert.Empty(t, next)
	assert.False(t, more)

	items, next, more = Trim([]row{{0, 10}, {1, 11}, {2, 12}}, 2, key)
	assert.Len(t, items, 2)
	assert.True(t, more)
	c, err := DecodeCursor(next)
	require.NoError(t, err)
	assert.Equal(t, &Cursor{Position: 1, LastID: 11}, c)
}
