// Package document provides the in-memory document representation with
// dotted/indexed path access that the benchmark measures traversal cost
// against.
// Implements: spec.md §3 (JSON Document Value), §8 (path access invariants)
package document

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fields is the ordered mapping backing a Document. Field insertion order
// is preserved because the benchmark's thesis depends on field position
// influencing scan-based traversal cost - see spec.md §3.
type Fields = orderedmap.OrderedMap[string, any]

// NewFields returns an empty, order-preserving field map.
func NewFields() *Fields {
	return orderedmap.New[string, any]()
}

// Document is an external identifier plus an ordered content map. If the
// builder did not insert an explicit "_id" key, the identifier is
// inserted as "_id" automatically - see spec.md §3 and §8 invariant
// D.content["_id"] == D.id.
type Document struct {
	ID      string
	Content *Fields
}

// New wraps content under id, inserting "_id" into content when absent.
func New(id string, content *Fields) *Document {
	if _, present := content.Get("_id"); !present {
		content.Set("_id", id)
	}
	return &Document{ID: id, Content: content}
}

// Keys returns the ordered list of top-level field names.
func (d *Document) Keys() []string {
	keys := make([]string, 0, d.Content.Len())
	for pair := d.Content.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// pathSegment is one dotted-or-bracketed step in a projection/path
// expression, e.g. "addresses[1]" decomposes into name="addresses",
// hasIndex=true, index=1.
type pathSegment struct {
	name     string
	hasIndex bool
	index    int
}

// ParsePath splits a dotted-notation path with optional bracketed array
// indices (e.g. "customer.addresses[1].zip") into segments.
func ParsePath(path string) ([]pathSegment, error) {
	if path == "" {
		return nil, fmt.Errorf("document: empty path")
	}
	parts := strings.Split(path, ".")
	segments := make([]pathSegment, 0, len(parts))
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(part string) (pathSegment, error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if part == "" {
			return pathSegment{}, fmt.Errorf("document: empty path segment")
		}
		if strings.IndexByte(part, ']') >= 0 {
			return pathSegment{}, fmt.Errorf("document: malformed index in segment %q", part)
		}
		return pathSegment{name: part}, nil
	}
	if !strings.HasSuffix(part, "]") {
		return pathSegment{}, fmt.Errorf("document: malformed index in segment %q", part)
	}
	name := part[:open]
	idxStr := part[open+1 : len(part)-1]
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return pathSegment{}, fmt.Errorf("document: invalid array index in segment %q: %w", part, err)
	}
	return pathSegment{name: name, hasIndex: true, index: idx}, nil
}

// GetPath returns the value at a dotted/indexed path and whether it was
// present. A broken link at any step (missing key, index out of range, or
// indexing into a non-array/non-object) returns (nil, false) rather than
// erroring - spec.md §3 ("returns absent on any broken link").
func (d *Document) GetPath(path string) (any, bool) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	var cur any = d.Content
	for _, seg := range segments {
		var ok bool
		cur, ok = descend(cur, seg)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// HasPath reports whether GetPath would find a value at path. For every
// defined path P, GetPath(P) != absent iff HasPath(P) == true - spec.md §8.
func (d *Document) HasPath(path string) bool {
	_, ok := d.GetPath(path)
	return ok
}

func descend(cur any, seg pathSegment) (any, bool) {
	fields, isFields := cur.(*Fields)
	if !isFields {
		return nil, false
	}
	val, present := fields.Get(seg.name)
	if !present {
		return nil, false
	}
	if !seg.hasIndex {
		return val, true
	}
	arr, isArr := val.([]any)
	if !isArr {
		return nil, false
	}
	if seg.index < 0 || seg.index >= len(arr) {
		return nil, false
	}
	return arr[seg.index], true
}

// SetPath sets the value at a dotted/indexed path, auto-creating
// intermediate objects and extending arrays with nil padding elements as
// needed, used by the document generator to plant target values - spec.md
// §4.5.
func SetPath(root *Fields, path string, value any) error {
	segments, err := ParsePath(path)
	if err != nil {
		return err
	}
	return setSegments(root, segments, value)
}

func setSegments(fields *Fields, segments []pathSegment, value any) error {
	seg := segments[0]
	last := len(segments) == 1

	if !seg.hasIndex {
		if last {
			fields.Set(seg.name, value)
			return nil
		}
		child, present := fields.Get(seg.name)
		childFields, ok := child.(*Fields)
		if !present || !ok {
			childFields = NewFields()
			fields.Set(seg.name, childFields)
		}
		return setSegments(childFields, segments[1:], value)
	}

	existing, present := fields.Get(seg.name)
	arr, ok := existing.([]any)
	if !present || !ok {
		arr = nil
	}
	for len(arr) <= seg.index {
		arr = append(arr, nil)
	}
	if last {
		arr[seg.index] = value
		fields.Set(seg.name, arr)
		return nil
	}
	childFields, ok := arr[seg.index].(*Fields)
	if !ok {
		childFields = NewFields()
		arr[seg.index] = childFields
	}
	fields.Set(seg.name, arr)
	return setSegments(childFields, segments[1:], value)
}
