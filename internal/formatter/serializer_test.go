package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userfetch/internal/models"
)

var sampleUsers = []models.User{
	{FirstName: "Jennie", LastName: "Nichols", Email: "jennie.nichols@example.com", SourceID: 1},
	{FirstName: "Ana", LastName: "Li", Email: "a@x.com", SourceID: 2},
	{FirstName: "Émilie", LastName: "Dubois", Email: "emilie@exemple.fr", SourceID: 3},
	{FirstName: "George", LastName: "Bluth", Email: "george.bluth@reqres.in", SourceID: 4},
}

func TestSerialize_JSONRoundTrip(t *testing.T) {
	data, err := Serialize(sampleUsers, FormatJSON)
	require.NoError(t, err)

	var decoded []models.User
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sampleUsers, decoded)
}

func TestSerialize_JSONLayout(t *testing.T) {
	data, err := Serialize(sampleUsers[1:2], "JSON")
	require.NoError(t, err)

	want := `[
  {
    "first_name": "Ana",
    "last_name": "Li",
    "email": "a@x.com",
    "source_id": 2
  }
]`
	assert.Equal(t, want, string(data))
}

func TestSerialize_JSONEmpty(t *testing.T) {
	data, err := Serialize(nil, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestSerialize_CSV(t *testing.T) {
	data, err := Serialize([]models.User{
		{FirstName: "Ana", LastName: "Li", Email: "a@x.com", SourceID: 2},
	}, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "First Name,Last Name,Email,Source Id\nAna,Li,a@x.com,2\n", string(data))

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Equal(t, []string{"First Name,Last Name,Email,Source Id", "Ana,Li,a@x.com,2"}, lines)
}

func TestSerialize_CSVQuoting(t *testing.T) {
	data, err := Serialize([]models.User{
		{FirstName: "Li, Jr.", LastName: `O"Brien`, Email: "x@y.z", SourceID: 4},
	}, "csv")
	require.NoError(t, err)

	assert.Equal(t, "First Name,Last Name,Email,Source Id\n\"Li, Jr.\",\"O\"\"Brien\",x@y.z,4\n", string(data))
}

func TestSerialize_CSVHeaderOnly(t *testing.T) {
	data, err := Serialize(nil, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "First Name,Last Name,Email,Source Id\n", string(data))
}

func TestSerialize_UnsupportedFormat(t *testing.T) {
	for _, format := range []Format{"XML", "", "yaml", "jsonl"} {
		data, err := Serialize(sampleUsers, format)
		require.ErrorIs(t, err, ErrUnsupportedFormat, string(format))
		assert.Nil(t, data)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{" Csv ", FormatCSV},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("XML")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
