package vcard

import (
	"fmt"
	"regexp"
	"strings"
)

// Subproperty is a name (and optional value) qualifying a property, e.g.
// TYPE=WORK or the legacy bare flag PREF. Name matching is
// case-insensitive everywhere; the original casing is preserved.
type Subproperty struct {
	Name  string
	Value string
}

// SubpropertyList is an ordered subproperty collection. Duplicate names
// are allowed and meaningful: a property may carry several TYPE=
// subproperties.
type SubpropertyList []Subproperty

// Get returns the first subproperty with the given name, matched
// case-insensitively.
func (l SubpropertyList) Get(name string) (Subproperty, bool) {
	for _, s := range l {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Subproperty{}, false
}

// Has reports whether a subproperty with the given name exists.
func (l SubpropertyList) Has(name string) bool {
	_, ok := l.Get(name)
	return ok
}

// Value returns the value of the first subproperty with the given name, or
// "" when no such subproperty exists.
func (l SubpropertyList) Value(name string) string {
	s, _ := l.Get(name)
	return s.Value
}

// Values returns the non-empty values of every subproperty with the given
// name, in order.
func (l SubpropertyList) Values(name string) []string {
	var out []string
	for _, s := range l {
		if strings.EqualFold(s.Name, name) && s.Value != "" {
			out = append(out, s.Value)
		}
	}
	return out
}

// Add appends a subproperty.
func (l *SubpropertyList) Add(name, value string) {
	*l = append(*l, Subproperty{Name: name, Value: value})
}

// AddFlag appends a bare flag subproperty (a name without a value).
func (l *SubpropertyList) AddFlag(name string) {
	*l = append(*l, Subproperty{Name: name})
}

// ValueList is a property value made of ordered string parts joined by a
// separator character, e.g. the semicolon-separated components of N and
// ADR or the comma-separated CATEGORIES list. Parts are escaped
// individually on write so the separator stays unambiguous.
type ValueList struct {
	Separator rune
	Parts     []string
}

// Property is the transient intermediate form between raw vCard text and
// the typed Contact fields: NAME;SUB1;SUB2=val:VALUE. Value is nil, a
// string, a []byte buffer, or a ValueList. Properties are produced during
// read and consumed during write; they are never persisted.
type Property struct {
	// Group is the optional group prefix ("item1" in "item1.EMAIL").
	Group string
	// Name is the property name exactly as it appeared in the source,
	// including any group prefix. Matching is case-insensitive.
	Name string
	// Subproperties are the ordered qualifiers between the name and the
	// colon.
	Subproperties SubpropertyList
	Value         any
}

// NewProperty creates a property with a plain string value.
func NewProperty(name, value string) *Property {
	return &Property{Name: name, Value: value}
}

// Text returns the property value as a string, or "" when the value is
// absent or a byte buffer.
func (p *Property) Text() string {
	switch v := p.Value.(type) {
	case string:
		return v
	case ValueList:
		return v.join()
	}
	return ""
}

// Bytes returns the property value as a byte buffer, or nil when the
// value is not one.
func (p *Property) Bytes() []byte {
	if b, ok := p.Value.([]byte); ok {
		return b
	}
	return nil
}

func (v ValueList) join() string {
	return strings.Join(v.Parts, string(v.Separator))
}

var itemPrefixRe = regexp.MustCompile(`(?i)^ITEM\d+\.`)

// normalizeName returns the dispatch key for a property name: the legacy
// "ITEM<digits>." group prefix stripped, the rest uppercased. Other group
// prefixes are left in place.
func normalizeName(name string) string {
	return strings.ToUpper(itemPrefixRe.ReplaceAllString(name, ""))
}

// String renders the property head for diagnostics, without the value.
func (p *Property) String() string {
	var sb strings.Builder
	if p.Group != "" && !strings.Contains(p.Name, ".") {
		fmt.Fprintf(&sb, "%s.", p.Group)
	}
	sb.WriteString(p.Name)
	for _, s := range p.Subproperties {
		sb.WriteByte(';')
		sb.WriteString(s.Name)
		if s.Value != "" {
			sb.WriteByte('=')
			sb.WriteString(s.Value)
		}
	}
	return sb.String()
}
