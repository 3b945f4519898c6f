package topictree

import "testing"

func TestObserveCreatesHierarchy(t *testing.T) {
	tr := New()
	tr.Observe("home/livingroom/temperature")

	n, ok := tr.Find("home/livingroom/temperature")
	if !ok {
		t.Fatal("leaf not found")
	}
	if n.Count != 1 {
		t.Fatalf("leaf count = %d, want 1", n.Count)
	}

	if _, ok := tr.Find("home"); !ok {
		t.Fatal("root segment not found")
	}
	if _, ok := tr.Find("home/livingroom"); !ok {
		t.Fatal("intermediate segment not found")
	}
}

func TestObserveIsCumulative(t *testing.T) {
	tr := New()
	tr.Observe("a/b")
	tr.Observe("a/b")
	tr.Observe("a/b")

	n, _ := tr.Find("a/b")
	if n.Count != 3 {
		t.Fatalf("count = %d, want 3", n.Count)
	}
}

func TestObserveSharesCommonPrefix(t *testing.T) {
	tr := New()
	tr.Observe("a/b/c")
	tr.Observe("a/b/d")

	a, _ := tr.Find("a")
	if len(a.Children) != 1 {
		t.Fatalf("expected a single 'b' child, got %d", len(a.Children))
	}
	b, _ := tr.Find("a/b")
	if len(b.Children) != 2 {
		t.Fatalf("expected 2 children under a/b, got %d", len(b.Children))
	}
}

func TestChildrenSortedCaseInsensitive(t *testing.T) {
	tr := New()
	for _, topic := range []string{"root/Zebra", "root/apple", "root/Mango"} {
		tr.Observe(topic)
	}
	root, _ := tr.Find("root")
	var order []string
	for _, c := range root.Children {
		order = append(order, c.Segment)
	}
	want := []string{"apple", "Mango", "Zebra"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("children order = %v, want case-insensitive sort like %v", order, want)
		}
	}
}

func TestApplyFilterVisibility(t *testing.T) {
	tr := New()
	tr.Observe("sensors/kitchen/humidity")
	tr.Observe("sensors/garage/door")

	tr.ApplyFilter("kitchen")

	kitchen, _ := tr.Find("sensors/kitchen")
	garage, _ := tr.Find("sensors/garage")
	sensors, _ := tr.Find("sensors")

	if !kitchen.Visible {
		t.Fatal("kitchen should match filter")
	}
	if garage.Visible {
		t.Fatal("garage should not match filter")
	}
	if !sensors.Visible {
		t.Fatal("sensors should stay visible: it has a visible descendant")
	}
}

func TestClearFilterRestoresVisibility(t *testing.T) {
	tr := New()
	tr.Observe("sensors/kitchen/humidity")
	tr.Observe("sensors/garage/door")
	tr.ApplyFilter("kitchen")
	tr.ClearFilter()

	garage, _ := tr.Find("sensors/garage")
	if !garage.Visible {
		t.Fatal("ClearFilter should restore universal visibility")
	}
	if tr.ActiveFilter() != "" {
		t.Fatal("ActiveFilter should be empty after ClearFilter")
	}
}

func TestApplyFilterBlankPatternClears(t *testing.T) {
	tr := New()
	tr.Observe("a/b")
	tr.ApplyFilter("zzz")
	tr.ApplyFilter("   ")

	b, _ := tr.Find("a/b")
	if !b.Visible {
		t.Fatal("blank pattern should behave like ClearFilter")
	}
}

func TestExpandCollapseAll(t *testing.T) {
	tr := New()
	tr.Observe("a/b/c")
	tr.ExpandAll()

	n, _ := tr.Find("a/b")
	if !n.Expanded {
		t.Fatal("ExpandAll should mark nodes expanded")
	}

	tr.CollapseAll()
	n, _ = tr.Find("a/b")
	if n.Expanded {
		t.Fatal("CollapseAll should mark nodes collapsed")
	}
}

func TestFindMissingReturnsFalse(t *testing.T) {
	tr := New()
	tr.Observe("a/b")
	if _, ok := tr.Find("a/c"); ok {
		t.Fatal("Find should not create missing nodes")
	}
}

func TestTrailingSlashNormalized(t *testing.T) {
	tr := New()
	tr.Observe("a/b/")
	if _, ok := tr.Find("a/b"); !ok {
		t.Fatal("trailing slash should be normalized away")
	}
}
