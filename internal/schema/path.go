package schema

import (
	"slices"
	"strings"

	"mapper-engine/internal/common"
)

const (
	pathSeparator = '.'
	pathEscape    = '\\'
)

// Path addresses a field by the names of its ancestors and itself,
// root first. Segments are raw names; escaping only exists in the
// string form.
type Path []string

// ParsePath parses the dot-joined string form of a path. A backslash
// escapes a following dot or backslash; any other backslash is literal.
// An empty string is the empty path.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}

	var (
		segments Path
		current  strings.Builder
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		if c == pathEscape && i+1 < len(s) && (s[i+1] == pathSeparator || s[i+1] == pathEscape) {
			current.WriteByte(s[i+1])
			i++

			continue
		}

		if c == pathSeparator {
			segments = append(segments, current.String())
			current.Reset()

			continue
		}

		current.WriteByte(c)
	}

	return append(segments, current.String())
}

var (
	nameEscaper   = strings.NewReplacer(`\`, `\\`, ".", `\.`)
	nameUnescaper = strings.NewReplacer(`\\`, `\`, `\.`, ".")
)

// EscapeName escapes literal dots and backslashes in a single field name.
func EscapeName(name string) string {
	return nameEscaper.Replace(name)
}

// UnescapeName reverses EscapeName.
func UnescapeName(name string) string {
	return nameUnescaper.Replace(name)
}

// String returns the serialized form of the path.
func (p Path) String() string {
	var sb strings.Builder

	for i, seg := range p {
		if i > 0 {
			sb.WriteByte(pathSeparator)
		}

		sb.WriteString(EscapeName(seg))
	}

	return sb.String()
}

// IsEmpty returns true if the path has no segments.
func (p Path) IsEmpty() bool {
	return len(p) == 0
}

// Name returns the last segment, or "" for the empty path.
func (p Path) Name() string {
	name, _ := common.Last(p)
	return name
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}

	return slices.Clone(p[:len(p)-1])
}

// Child returns a new path with name appended.
func (p Path) Child(name string) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, p...)

	return append(out, name)
}

// Equals returns true if both paths have the same segments.
func (p Path) Equals(other Path) bool {
	return slices.Equal(p, other)
}

// HasPrefix reports whether prefix names p itself or one of its ancestors.
// Matching is per segment, so "a.b" is not a prefix of "a.bb".
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) == 0 || len(prefix) > len(p) {
		return false
	}

	return slices.Equal(p[:len(prefix)], prefix)
}

// ReplacePrefix swaps the leading segments equal to from with to.
// The second result is false when from is not a prefix of p.
func (p Path) ReplacePrefix(from, to Path) (Path, bool) {
	if !p.HasPrefix(from) {
		return p, false
	}

	out := make(Path, 0, len(to)+len(p)-len(from))
	out = append(out, to...)

	return append(out, p[len(from):]...), true
}

// HasPathPrefix is the string form of Path.HasPrefix.
func HasPathPrefix(path, prefix string) bool {
	return ParsePath(path).HasPrefix(ParsePath(prefix))
}

// ReplacePathPrefix is the string form of Path.ReplacePrefix.
func ReplacePathPrefix(path, from, to string) (string, bool) {
	replaced, ok := ParsePath(path).ReplacePrefix(ParsePath(from), ParsePath(to))
	if !ok {
		return path, false
	}

	return replaced.String(), true
}

// DeepPath translates p into the access chain used by the host's nested
// field objects: every segment after the first is preceded by the "type"
// and "fields" hops that descend into its parent's sub-schema.
func (p Path) DeepPath() []string {
	out := make([]string, 0, len(p)*3)

	for i, seg := range p {
		if i > 0 {
			out = append(out, "type", "fields")
		}

		out = append(out, seg)
	}

	return out
}
