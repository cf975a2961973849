package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarksheetType(t *testing.T) {
	cases := map[string]MarksheetType{
		"10th":      MarksheetTenth,
		"12TH":      MarksheetTwelfth,
		" Semester": MarksheetSemester,
	}
	for in, want := range cases {
		got, err := ParseMarksheetType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseMarksheetType("11th")
	assert.ErrorIs(t, err, ErrUnknownMarksheetType)
}

func TestCatalog_CoversEveryType(t *testing.T) {
	descs := Catalog()
	require.Len(t, descs, len(ValidMarksheetTypes))
	for _, d := range descs {
		assert.True(t, ValidMarksheetTypes[string(d.ID)], d.ID)
		assert.NotEmpty(t, d.Name)
		assert.NotEmpty(t, d.Icon)
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	descs := Catalog()
	descs[0].Name = "mutated"

	d, ok := Describe(descs[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, "mutated", d.Name)
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{Username: "ada", FullName: "Ada Lovelace"}.DisplayName())
	assert.Equal(t, "ada", User{Username: "ada"}.DisplayName())
}
