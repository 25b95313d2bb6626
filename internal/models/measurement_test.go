package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePM25ZeroIsMissing(t *testing.T) {
	v, ok := NormalizePM25(0, PM25Cap)
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestNormalizePM25AboveCapIsMissing(t *testing.T) {
	_, ok := NormalizePM25(PM25Cap+1, PM25Cap)
	assert.False(t, ok)
}

func TestNormalizePM25NegativeIsMissing(t *testing.T) {
	_, ok := NormalizePM25(-5, PM25Cap)
	assert.False(t, ok)
}

func TestNormalizePM25ValidReadingPassesThrough(t *testing.T) {
	v, ok := NormalizePM25(42.5, PM25Cap)
	assert.True(t, ok)
	assert.Equal(t, 42.5, v)
}

func TestNormalizePM25AtExactCapIsValid(t *testing.T) {
	v, ok := NormalizePM25(PM25Cap, PM25Cap)
	assert.True(t, ok)
	assert.Equal(t, PM25Cap, v)
}
