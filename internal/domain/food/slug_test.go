package food

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Spicy Chicken Wings": "spicy-chicken-wings",
		"Pizza Margherita":    "pizza-margherita",
		"SUSHI":               "sushi",
		"Pad  Thai":           "pad--thai",
		"Crème Brûlée":        "crème-brûlée",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}
