package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectExtractsObjectFromSurroundingText(t *testing.T) {
	obj := Object(`here is your answer: {"action":"answer","confidence":0.9} thanks`)
	assert.Equal(t, "answer", StringField(obj, "action"))
}

func TestObjectReturnsEmptyOnMalformed(t *testing.T) {
	assert.Empty(t, Object("not json at all"))
	assert.Empty(t, Object("{unterminated"))
}

func TestIntListCoercesAndSkipsNonInts(t *testing.T) {
	ids := IntList(`prefix [1, 2, "x", 3.0, null] suffix`)
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestIntListEmptyOnNoBrackets(t *testing.T) {
	assert.Nil(t, IntList("no brackets here"))
}

func TestStringListFieldFiltersNonStrings(t *testing.T) {
	obj := Object(`{"evidence_found":["a","b",1]}`)
	assert.Equal(t, []string{"a", "b"}, StringListField(obj, "evidence_found"))
}
