package utils

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		name    string
		val     any
		want    int64
		wantErr bool
	}{
		{"Float integral", float64(1690000000000), 1690000000000, false},
		{"Float fraction", 1.5, 0, true},
		{"JSON number", json.Number("42"), 42, false},
		{"JSON number fraction", json.Number("4.2"), 0, true},
		{"String", " 17 ", 17, false},
		{"Bad string", "abc", 0, true},
		{"Int", 3, 3, false},
		{"Nil", nil, 0, true},
		{"Bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt64(tt.val)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConversion)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToString(t *testing.T) {
	s, err := ToString("abc")
	assert.NoError(t, err)
	assert.Equal(t, "abc", s)

	s, err = ToString([]byte("xyz"))
	assert.NoError(t, err)
	assert.Equal(t, "xyz", s)

	_, err = ToString("")
	assert.ErrorIs(t, err, ErrConversion)
	_, err = ToString(12)
	assert.ErrorIs(t, err, ErrConversion)
	_, err = ToString(nil)
	assert.ErrorIs(t, err, ErrConversion)
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name    string
		val     any
		want    string
		wantErr bool
	}{
		{"String", "100000000", "100000000", false},
		{"String fraction", "12.5", "12.5", false},
		{"JSON number", json.Number("7"), "7", false},
		{"Float", 2.25, "2.25", false},
		{"Int64", int64(9), "9", false},
		{"Bad string", "1e", "", true},
		{"Nil", nil, "", true},
		{"Map", map[string]any{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDecimal(tt.val)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConversion)
				return
			}
			assert.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestToBool(t *testing.T) {
	tests := []struct {
		val     any
		want    bool
		wantErr bool
	}{
		{true, true, false},
		{false, false, false},
		{"TRUE", true, false},
		{"false", false, false},
		{"yes", false, true},
		{1, false, true},
		{nil, false, true},
	}

	for _, tt := range tests {
		got, err := ToBool(tt.val)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrConversion)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
