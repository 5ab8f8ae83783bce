package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.Error(t, err)
}

func TestGetRequiredText(t *testing.T) {
	var out bytes.Buffer
	_, err := GetRequiredText(rdr("\n"), "Beacon ID", &out)
	require.ErrorContains(t, err, "beacon id is required")

	got, err := GetRequiredText(rdr("BLE-1\n"), "Beacon ID", &out)
	require.NoError(t, err)
	assert.Equal(t, "BLE-1", got)
}

func TestGetMultiline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"double enter", "a\nb\n\n\n", "a\nb"},
		{"CRLF", "a\r\nb\r\n\r\n", "a\nb"},
		{"immediate blank line", "\n", ""},
		{"EOF without blank line", "only", "only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetMultiline(rdr(tt.input), "Enter text", &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetEdit(t *testing.T) {
	var out bytes.Buffer

	keep, err := GetEdit(rdr("\n"), "Name", "Old", &out)
	require.NoError(t, err)
	assert.Nil(t, keep)
	assert.Contains(t, out.String(), "Name [Old]")

	cleared, err := GetEdit(rdr("-\n"), "Name", "Old", &out)
	require.NoError(t, err)
	require.NotNil(t, cleared)
	assert.Equal(t, "", *cleared)

	changed, err := GetEdit(rdr("New\n"), "Name", "Old", &out)
	require.NoError(t, err)
	require.NotNil(t, changed)
	assert.Equal(t, "New", *changed)
}
