package label

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/haclabs/haccare/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode128PNG(t *testing.T) {
	data, err := Code128PNG("0042", 200, 60)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestCode128PNG_Defaults(t *testing.T) {
	data, err := Code128PNG(" 7 ", 0, 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, img.Bounds().Dx())
	assert.Equal(t, DefaultHeight, img.Bounds().Dy())
}

func TestCode128PNG_NarrowWidthGrows(t *testing.T) {
	data, err := Code128PNG("0001", 5, 20)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 5)
}

func TestCode128PNG_Empty(t *testing.T) {
	_, err := Code128PNG("  ", 100, 50)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}
