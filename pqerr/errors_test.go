package pqerr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	err := New(CorruptFooter, "bad list header")
	wrapped := fmt.Errorf("parse: %w", err)

	assert.True(t, errors.Is(wrapped, ErrCorruptFooter))
	assert.False(t, errors.Is(wrapped, ErrInvalidMagic))
	assert.Equal(t, CorruptFooter, KindOf(wrapped))
	assert.Equal(t, Kind(0), KindOf(io.EOF))
}

func TestWrap_KeepsInnerKind(t *testing.T) {
	inner := New(TruncatedInput, "need 4 bytes")
	outer := Wrap(CorruptColumnData, fmt.Errorf("page: %w", inner), "decoding page")
	assert.Equal(t, TruncatedInput, outer.Kind)

	plain := Wrap(DecompressionFailed, io.ErrUnexpectedEOF, "snappy")
	assert.Equal(t, DecompressionFailed, plain.Kind)
	assert.ErrorIs(t, plain, io.ErrUnexpectedEOF)
}

func TestReclassify(t *testing.T) {
	inner := New(TruncatedInput, "need 4 bytes")
	err := Reclassify(CorruptFooter, inner, "decoding file metadata")
	assert.Equal(t, CorruptFooter, err.Kind)
	assert.ErrorIs(t, err, ErrTruncatedInput)
	assert.ErrorIs(t, err, ErrCorruptFooter)
}

func TestError_Message(t *testing.T) {
	err := New(InvalidEncoding, "invalid UTF-8 in 2 cells").WithColumn("名前")
	assert.Equal(t, `InvalidEncoding (column "名前"): invalid UTF-8 in 2 cells`, err.Error())
}

func TestKind(t *testing.T) {
	tests := []struct {
		kind  Kind
		name  string
		fatal bool
	}{
		{TruncatedInput, "TruncatedInput", true},
		{InvalidMagic, "InvalidMagic", true},
		{CorruptFooter, "CorruptFooter", true},
		{EmptySchema, "EmptySchema", true},
		{UnsupportedCompression, "UnsupportedCompression", true},
		{DecompressionFailed, "DecompressionFailed", true},
		{CorruptColumnData, "CorruptColumnData", true},
		{InvalidEncoding, "InvalidEncoding", false},
		{UnsupportedLogicalType, "UnsupportedLogicalType", false},
		{Cancelled, "Cancelled", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.fatal, tt.kind.Fatal())
			text, err := tt.kind.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tt.name, string(text))
		})
	}
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
