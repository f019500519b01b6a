package document

import "testing"

func TestNewInsertsIDWhenAbsent(t *testing.T) {
	content := NewFields()
	content.Set("name", "widget")
	doc := New("doc-1", content)

	got, ok := doc.Content.Get("_id")
	if !ok {
		t.Fatal("expected _id to be inserted")
	}
	if got != doc.ID {
		t.Fatalf("content[_id] = %v, want %v", got, doc.ID)
	}
}

func TestNewRespectsExplicitID(t *testing.T) {
	content := NewFields()
	content.Set("_id", "explicit-id")
	doc := New("doc-1", content)

	got, _ := doc.Content.Get("_id")
	if got != "explicit-id" {
		t.Fatalf("content[_id] = %v, want explicit-id", got)
	}
}

func TestFieldOrderPreserved(t *testing.T) {
	content := NewFields()
	content.Set("z", 1)
	content.Set("a", 2)
	content.Set("m", 3)
	doc := New("doc-1", content)

	keys := doc.Keys()
	want := []string{"z", "a", "m", "_id"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("keys[%d] = %q, want %q (keys=%v)", i, keys[i], k, keys)
		}
	}
}

func TestGetPathDottedAndIndexed(t *testing.T) {
	addr1 := NewFields()
	addr1.Set("zip", "11111")
	addr2 := NewFields()
	addr2.Set("zip", "22222")

	customer := NewFields()
	customer.Set("addresses", []any{addr1, addr2})

	root := NewFields()
	root.Set("customer", customer)
	doc := New("doc-1", root)

	got, ok := doc.GetPath("customer.addresses[1].zip")
	if !ok {
		t.Fatal("expected path to resolve")
	}
	if got != "22222" {
		t.Fatalf("got %v, want 22222", got)
	}
}

func TestGetPathBrokenLinkReturnsAbsent(t *testing.T) {
	root := NewFields()
	root.Set("a", NewFields())
	doc := New("doc-1", root)

	cases := []string{"a.b.c", "missing", "a[0]", "a.b[5]"}
	for _, path := range cases {
		if _, ok := doc.GetPath(path); ok {
			t.Errorf("path %q expected to be absent", path)
		}
	}
}

func TestHasPathAgreesWithGetPath(t *testing.T) {
	root := NewFields()
	root.Set("x", 1)
	doc := New("doc-1", root)

	paths := []string{"x", "y", "x.nonexistent"}
	for _, p := range paths {
		_, getOK := doc.GetPath(p)
		hasOK := doc.HasPath(p)
		if getOK != hasOK {
			t.Errorf("path %q: GetPath ok=%v, HasPath=%v disagree", p, getOK, hasOK)
		}
	}
}

func TestSetPathAutoCreatesObjectsAndExtendsArrays(t *testing.T) {
	root := NewFields()
	if err := SetPath(root, "nested.deep.value", "found"); err != nil {
		t.Fatalf("SetPath returned error: %v", err)
	}
	doc := New("doc-1", root)

	got, ok := doc.GetPath("nested.deep.value")
	if !ok || got != "found" {
		t.Fatalf("GetPath(nested.deep.value) = (%v, %v), want (found, true)", got, ok)
	}
}

func TestSetPathExtendsArrayWithPadding(t *testing.T) {
	root := NewFields()
	if err := SetPath(root, "items[3]", "last"); err != nil {
		t.Fatalf("SetPath returned error: %v", err)
	}
	doc := New("doc-1", root)

	val, ok := doc.Content.Get("items")
	if !ok {
		t.Fatal("expected items field to exist")
	}
	arr := val.([]any)
	if len(arr) != 4 {
		t.Fatalf("len(items) = %d, want 4", len(arr))
	}
	if arr[3] != "last" {
		t.Fatalf("items[3] = %v, want last", arr[3])
	}
	for i := 0; i < 3; i++ {
		if arr[i] != nil {
			t.Fatalf("items[%d] = %v, want nil padding", i, arr[i])
		}
	}
}

func TestParsePathRejectsMalformed(t *testing.T) {
	cases := []string{"", "a[", "a]", "a[x]"}
	for _, c := range cases {
		if _, err := ParsePath(c); err == nil {
			t.Errorf("ParsePath(%q) expected error", c)
		}
	}
}
