package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCorpus() *Corpus {
	return &Corpus{
		Name:       "books/biology",
		Dimensions: 2,
		Chunks: []BookChunk{
			{BookName: "Biology", Page: 1, ChunkID: "1_0", Text: "cells", Embedding: []float32{1, 0}},
			{BookName: "Biology", Page: 1, ChunkID: "1_1", Text: "membranes", Embedding: []float32{0, 1}},
			{BookName: "Biology", Page: 2, ChunkID: "2_0", Text: "lungs", Embedding: []float32{1, 1}},
			{BookName: "Anatomy", Page: 7, ChunkID: "7_0", Text: "heart", Embedding: []float32{1, -1}},
		},
	}
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "12_3", ChunkID(12, 3))
}

func TestCorpus_Len(t *testing.T) {
	var nilCorpus *Corpus
	assert.Equal(t, 0, nilCorpus.Len())
	assert.Equal(t, 4, testCorpus().Len())
}

func TestCorpus_Books(t *testing.T) {
	assert.Equal(t, []string{"Biology", "Anatomy"}, testCorpus().Books())
}

func TestCorpus_Summary(t *testing.T) {
	s := testCorpus().Summary()

	assert.Equal(t, "books/biology", s.Name)
	assert.Equal(t, 4, s.Chunks)
	assert.Equal(t, 2, s.Dimensions)
	assert.Equal(t, 3, s.Pages)
	assert.Equal(t, []string{"Biology", "Anatomy"}, s.Books)
}

func TestCorpus_Validate(t *testing.T) {
	assert.NoError(t, testCorpus().Validate())

	tests := []struct {
		name   string
		mutate func(*Corpus)
		want   error
	}{
		{"missing book name", func(c *Corpus) { c.Chunks[1].BookName = "" }, ErrCorpusCorrupt},
		{"zero page", func(c *Corpus) { c.Chunks[2].Page = 0 }, ErrCorpusCorrupt},
		{"short embedding", func(c *Corpus) { c.Chunks[3].Embedding = []float32{1} }, ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCorpus()
			tt.mutate(c)
			err := c.Validate()
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
