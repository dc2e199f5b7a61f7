package qrcode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/qrcode"
)

const provisioningURI = "otpauth://totp/Acme:alice@example.com?secret=ABCDEFGHIJKLMNOP&issuer=Acme"

func TestGenerate(t *testing.T) {
	t.Parallel()

	png, err := qrcode.Generate(provisioningURI, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])

	_, err = qrcode.Generate("   ", 256)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}

func TestGenerateBase64Image(t *testing.T) {
	t.Parallel()

	img, err := qrcode.GenerateBase64Image(provisioningURI, 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img, "data:image/png;base64,"))

	_, err = qrcode.GenerateBase64Image("", 128)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}
