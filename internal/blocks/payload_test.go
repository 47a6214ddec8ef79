package blocks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sitepages/internal/blocks"
)

func TestPayload_Accessors(t *testing.T) {
	p := blocks.Payload{
		"s":      "text",
		"blank":  "   ",
		"n":      float64(4),
		"ns":     "6",
		"b":      true,
		"bs":     "false",
		"obj":    map[string]any{"k": "v"},
		"list":   []any{map[string]any{"a": 1}, "skip", map[string]any{"a": 2}},
		"strs":   []any{"x", 3, "", "y"},
		"broken": []int{1},
	}

	assert.Equal(t, "text", p.String("s", "d"))
	assert.Equal(t, "d", p.String("missing", "d"))
	assert.Equal(t, "4", p.String("n", ""))
	assert.Equal(t, "d", p.Text("blank", "d"))
	assert.Equal(t, "   ", p.String("blank", "d"))

	assert.Equal(t, 4, p.Int("n", 0))
	assert.Equal(t, 6, p.Int("ns", 0))
	assert.Equal(t, 9, p.Int("s", 9))

	assert.True(t, p.Bool("b", false))
	assert.False(t, p.Bool("bs", true))
	assert.True(t, p.Bool("s", true))

	obj, ok := p.Map("obj")
	assert.True(t, ok)
	assert.Equal(t, "v", obj.String("k", ""))
	_, ok = p.Map("s")
	assert.False(t, ok)

	assert.Len(t, p.List("list"), 2)
	assert.Nil(t, p.List("broken"))
	assert.Equal(t, []string{"x", "y"}, p.Strings("strs"))

	var nilPayload blocks.Payload
	assert.Equal(t, "d", nilPayload.String("any", "d"))
	assert.Nil(t, nilPayload.List("any"))
}
