package codec

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/flatfile/schema"
)

func TestStringify_Basic(t *testing.T) {
	s := testSchema(t)

	records := []Record{
		{
			"id":      int64(1),
			"name":    "Alice",
			"balance": 100.46,
			"joined":  time.Date(1985, time.March, 15, 0, 0, 0, 0, time.UTC),
			"active":  true,
		},
		{
			"id":      int64(2),
			"name":    "Bob",
			"balance": 7.0,
			"joined":  time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC),
			"active":  false,
		},
	}

	got := Stringify(records, s)
	assert.Equal(t, "1|Alice|100.46|19850315|1\n2|Bob|7.00|19990101|0", got)
}

func TestStringify_Header(t *testing.T) {
	s := testSchema(t, schema.WithHeader())

	assert.Equal(t, "id|name|balance|joined|active", Stringify(nil, s),
		"zero records with a header yields exactly the header line")
}

func TestStringify_Empty(t *testing.T) {
	s := testSchema(t)
	assert.Equal(t, "", Stringify(nil, s))
	assert.Equal(t, "", Stringify([]Record{}, s))
}

func TestStringify_AbsentValues(t *testing.T) {
	s := testSchema(t)

	records := []Record{{
		"id":      int64(3),
		"name":    nil,
		"balance": nil,
		// joined deliberately missing from the map entirely
		"active": nil,
	}}

	got := Stringify(records, s)
	assert.Equal(t, "3||||", got, "absent values render as empty columns, never a placeholder")
}

func TestStringify_CRLF(t *testing.T) {
	s := testSchema(t, schema.WithLineEnding(schema.CRLF), schema.WithHeader())

	records := []Record{{
		"id":      int64(1),
		"name":    "Alice",
		"balance": 1.5,
		"joined":  time.Date(1985, time.March, 15, 0, 0, 0, 0, time.UTC),
		"active":  true,
	}}

	got := Stringify(records, s)
	assert.Equal(t, "id|name|balance|joined|active\r\n1|Alice|1.50|19850315|1", got)
}

func TestRoundTrip(t *testing.T) {
	s := testSchema(t, schema.WithHeader())

	original := Record{
		"id":      int64(42),
		"name":    "Dana",
		"balance": 9.99,
		"joined":  time.Date(2001, time.September, 9, 0, 0, 0, 0, time.UTC),
		"active":  true,
	}

	text := Stringify([]Record{original}, s)
	result := Parse(text, s)
	require.Empty(t, result.Errors)
	require.Len(t, result.Records, 1)

	if diff := cmp.Diff(original, result.Records[0]); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_ISO(t *testing.T) {
	s, err := schema.New(",", []schema.Field{
		{Name: "when", Type: schema.Date, Position: 0},
	})
	require.NoError(t, err)

	original := Record{"when": time.Date(2020, time.June, 1, 13, 45, 30, 0, time.UTC)}

	text := Stringify([]Record{original}, s)
	assert.Equal(t, "2020-06-01T13:45:30Z", text)

	result := Parse(text, s)
	require.Empty(t, result.Errors)

	if diff := cmp.Diff(original, result.Records[0]); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_AbsentStaysAbsent(t *testing.T) {
	s := testSchema(t)

	original := Record{"id": int64(1), "name": nil, "balance": nil, "joined": nil, "active": nil}
	result := Parse(Stringify([]Record{original}, s), s)
	require.Empty(t, result.Errors)

	if diff := cmp.Diff(original, result.Records[0]); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
