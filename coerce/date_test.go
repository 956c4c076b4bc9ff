package coerce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/flatfile/schema"
)

func dateField(format string) schema.Field {
	return schema.Field{Name: "d", Type: schema.Date, DateFormat: format}
}

func TestParse_Date_ISO(t *testing.T) {
	tests := []struct {
		name   string
		format string
		raw    string
		want   time.Time
	}{
		{"date only", "ISO", "1985-03-15", time.Date(1985, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"full instant", "ISO", "1985-03-15T08:30:00Z", time.Date(1985, time.March, 15, 8, 30, 0, 0, time.UTC)},
		{"offset normalized to UTC", "ISO", "1985-03-15T08:30:00+02:00", time.Date(1985, time.March, 15, 6, 30, 0, 0, time.UTC)},
		{"no zone", "ISO", "1985-03-15T08:30:00", time.Date(1985, time.March, 15, 8, 30, 0, 0, time.UTC)},
		{"empty format means ISO", "", "1985-03-15", time.Date(1985, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"YYYY-MM-DD delegates to calendar parser", "YYYY-MM-DD", "1985-03-15", time.Date(1985, time.March, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw, dateField(tt.format))
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.(time.Time)), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParse_Date_TokenFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		raw    string
		want   time.Time
	}{
		{"compact", "YYYYMMDD", "19850315", time.Date(1985, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"slash european", "DD/MM/YYYY", "15/03/1985", time.Date(1985, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"dot european", "DD.MM.YYYY", "15.03.1985", time.Date(1985, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"us style", "MM-DD-YYYY", "03-15-1985", time.Date(1985, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"compact day first", "DDMMYYYY", "15031985", time.Date(1985, time.March, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw, dateField(tt.format))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "groups must be assigned by token offsets, not input order")
		})
	}
}

func TestParse_Date_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		format string
		raw    string
	}{
		{"compact literal against ISO", "YYYY-MM-DD", "19850315"},
		{"dashed literal against compact", "YYYYMMDD", "1985-03-15"},
		{"wrong separator", "DD/MM/YYYY", "15-03-1985"},
		{"too few digits", "YYYYMMDD", "1985315"},
		{"trailing garbage", "YYYYMMDD", "19850315x"},
		{"zero month", "YYYYMMDD", "19850015"},
		{"zero day", "YYYYMMDD", "19850300"},
		{"zero year", "YYYYMMDD", "00000315"},
		{"empty", "YYYYMMDD", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw, dateField(tt.format))
			require.Error(t, err)
			var ce *CoercionError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestParse_Date_UnsupportedFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{"missing day token", "YYYY-MM"},
		{"two-digit year", "YY-MM-DD"},
		{"repeated token", "YYYY-MM-DD-DD"},
		{"mixed separators", "DD/MM-YYYY"},
		{"multi-char separator", "DD--MM--YYYY"},
		{"token adjacent to separator pair", "YYYY-MMDD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("19850315", dateField(tt.format))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedDateFormat)
		})
	}
}

func TestCompileFormat_Cache(t *testing.T) {
	first, err := compileFormat("DD/MM/YYYY")
	require.NoError(t, err)
	second, err := compileFormat("DD/MM/YYYY")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestFormat_Date(t *testing.T) {
	d := time.Date(1985, time.March, 15, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"iso renders full instant", "ISO", "1985-03-15T08:30:00Z"},
		{"empty format renders full instant", "", "1985-03-15T08:30:00Z"},
		{"token format substitutes and pads", "YYYY-MM-DD", "1985-03-15"},
		{"compact", "YYYYMMDD", "19850315"},
		{"european", "DD/MM/YYYY", "15/03/1985"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(d, dateField(tt.format)))
		})
	}
}

func TestFormat_Date_PadsSmallComponents(t *testing.T) {
	d := time.Date(7, time.January, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "0007-01-02", Format(d, dateField("YYYY-MM-DD")))
}

func TestFormat_Date_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	d := time.Date(1985, time.March, 16, 1, 0, 0, 0, loc) // 1985-03-15T23:00:00Z
	assert.Equal(t, "19850315", Format(d, dateField("YYYYMMDD")))
}
