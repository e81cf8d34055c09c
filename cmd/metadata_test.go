package cmd

import (
	"testing"

	"github.com/jsphweid/chordseg/db"
	"github.com/stretchr/testify/assert"
)

func TestMetadataFor(t *testing.T) {
	assert := assert.New(t)
	m := metadataFor("corpus/bach/bwv253.mid", db.Metadata{Artist: "J. S. Bach", Year: 1784})
	assert.Equal(db.Metadata{Key: "bwv253.mid", Title: "bwv253", Artist: "J. S. Bach", Year: 1784}, m)

	m = metadataFor("bwv253.mid", db.Metadata{Title: "Befiehl du deine Wege"})
	assert.Equal("Befiehl du deine Wege", m.Title)
	assert.Equal("bwv253.mid", m.Key)
}
