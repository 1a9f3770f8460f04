package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hiking & Trekking":    "hiking-trekking",
		"  City  Tours  ":      "city-tours",
		"Safari":               "safari",
		"Lake_Tana Boat Trips": "lake-tana-boat-trips",
		"---":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}
