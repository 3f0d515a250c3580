package markup

import "strings"

// EntityMask selects which characters are replaced with entity references.
type EntityMask uint8

const (
	EntityAmp EntityMask = 1 << iota
	EntityLt
	EntityGt
	EntityQuot
	EntityNbsp

	EntityMaskInCDATA              EntityMask = 0
	EntityMaskInPCDATA                        = EntityAmp | EntityLt | EntityGt
	EntityMaskInHTMLPCDATA                    = EntityMaskInPCDATA | EntityNbsp
	EntityMaskInAttributeValue                = EntityAmp | EntityLt | EntityGt | EntityQuot
	EntityMaskInHTMLAttributeValue            = EntityAmp | EntityQuot | EntityNbsp
)

// AppendCharactersReplacingEntities writes s to b, replacing every
// character in mask with its entity reference. Runs between special
// characters are copied unchanged.
func AppendCharactersReplacingEntities(b *strings.Builder, s string, mask EntityMask) {
	if mask == EntityMaskInCDATA {
		b.WriteString(s)
		return
	}

	last := 0
	for i, r := range s {
		var esc string
		switch {
		case r == '&' && mask&EntityAmp != 0:
			esc = "&amp;"
		case r == '<' && mask&EntityLt != 0:
			esc = "&lt;"
		case r == '>' && mask&EntityGt != 0:
			esc = "&gt;"
		case r == '"' && mask&EntityQuot != 0:
			esc = "&quot;"
		case r == '\u00a0' && mask&EntityNbsp != 0:
			esc = "&nbsp;"
		default:
			continue
		}
		b.WriteString(s[last:i])
		b.WriteString(esc)
		if r == '\u00a0' {
			last = i + 2
		} else {
			last = i + 1
		}
	}
	b.WriteString(s[last:])
}

// EscapeString returns s escaped with mask.
func EscapeString(s string, mask EntityMask) string {
	var b strings.Builder
	b.Grow(len(s))
	AppendCharactersReplacingEntities(&b, s, mask)
	return b.String()
}
