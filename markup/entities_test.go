package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeString(t *testing.T) {
	t.Parallel()

	const in = "a&b<c>d\"e\u00a0f"
	tests := []struct {
		name string
		mask EntityMask
		want string
	}{
		{"cdata", EntityMaskInCDATA, in},
		{"pcdata", EntityMaskInPCDATA, "a&amp;b&lt;c&gt;d\"e\u00a0f"},
		{"html pcdata", EntityMaskInHTMLPCDATA, "a&amp;b&lt;c&gt;d\"e&nbsp;f"},
		{"attribute value", EntityMaskInAttributeValue, "a&amp;b&lt;c&gt;d&quot;e\u00a0f"},
		{"html attribute value", EntityMaskInHTMLAttributeValue, "a&amp;b<c>d&quot;e&nbsp;f"},
		{"quotes only", EntityQuot, "a&b<c>d&quot;e\u00a0f"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EscapeString(in, tc.mask))
		})
	}
}

func TestEscapeStringMultibyte(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ü&lt;€&nbsp;&nbsp;😀", EscapeString("ü<€\u00a0\u00a0😀", EntityMaskInHTMLPCDATA))
	assert.Equal(t, "", EscapeString("", EntityMaskInHTMLPCDATA))
}
