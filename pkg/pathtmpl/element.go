// Package pathtmpl renders path templates: ordered element sequences that
// turn a matched entry into a destination path relative to a target root.
// Each top-level element contributes one path segment; merge concatenates
// its children into a single segment.
package pathtmpl

// TimeSource selects where a formatted_time element reads its timestamp.
type TimeSource int

const (
	TimeImage TimeSource = iota // embedded capture time from image metadata
	TimeAccess
	TimeCreated
	TimeModified
)

func (s TimeSource) String() string {
	switch s {
	case TimeImage:
		return "img_date_time"
	case TimeAccess:
		return "access_time"
	case TimeCreated:
		return "created_time"
	case TimeModified:
		return "modified_time"
	}
	return "unknown"
}

// ElementKind discriminates template elements.
type ElementKind int

const (
	ElemLiteral ElementKind = iota
	ElemFileNameWithExtension
	ElemFileNameWithoutExtension
	ElemFileExtension
	ElemOriginalPath
	ElemOriginalPathWithoutFileName
	ElemDirectParentFolder
	ElemFormattedTime
	ElemMerge
)

// Element is one node of a path template.
type Element struct {
	Kind     ElementKind
	Literal  string     // ElemLiteral
	Source   TimeSource // ElemFormattedTime
	Format   *Format    // ElemFormattedTime, validated at config time
	Children []Element  // ElemMerge
}

// Template is an ordered sequence of elements. The last rendered segment
// becomes the destination file name.
type Template []Element

// Literal returns a constant segment element.
func Literal(s string) Element {
	return Element{Kind: ElemLiteral, Literal: s}
}

// FormattedTime returns a timestamp segment element.
func FormattedTime(src TimeSource, f *Format) Element {
	return Element{Kind: ElemFormattedTime, Source: src, Format: f}
}

// Merge returns an element concatenating its children into one segment.
func Merge(children ...Element) Element {
	return Element{Kind: ElemMerge, Children: children}
}
