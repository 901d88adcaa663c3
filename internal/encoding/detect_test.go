package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/fintrack/internal/encoding"
)

func decode(t *testing.T, in []byte) (string, encoding.Charset) {
	t.Helper()

	r, cs, err := encoding.NewUTF8Reader(bytes.NewReader(in))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), cs
}

func TestNewUTF8Reader(t *testing.T) {
	text := "date;note;amount\n" + strings.Repeat("2024-03-01;Pagamento de serviços, café e refeição;12,50\n", 6)

	latin1, err := charmap.Windows1252.NewEncoder().String(text)
	require.NoError(t, err)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(text)
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   []byte
		charset encoding.Charset
	}{
		{name: "utf-8 passthrough", input: []byte(text), charset: encoding.UTF8},
		{name: "utf-8 bom stripped", input: append([]byte{0xEF, 0xBB, 0xBF}, text...), charset: encoding.UTF8},
		{name: "utf-16 le", input: []byte(utf16), charset: encoding.UTF16LE},
		{name: "heuristic latin", input: []byte(latin1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cs := decode(t, tt.input)
			assert.Equal(t, text, got)

			if tt.charset != "" {
				assert.Equal(t, tt.charset, cs)
			}
		})
	}
}

func TestNewUTF8Reader_Cyrillic(t *testing.T) {
	text := strings.Repeat("Продукты в магазине у дома, оплата картой;1500,00\n", 8)

	cp1251, err := charmap.Windows1251.NewEncoder().String(text)
	require.NoError(t, err)

	got, _ := decode(t, []byte(cp1251))
	assert.Equal(t, text, got)
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	got, cs := decode(t, nil)
	assert.Empty(t, got)
	assert.Equal(t, encoding.UTF8, cs)
}
