package navcursor

import "testing"

func TestSearchContextEmpty(t *testing.T) {
	sc := NewSearchContext("nothing", nil)
	if _, ok := sc.Current(); ok {
		t.Fatal("empty context should have no current match")
	}
	if sc.CurrentIndex() != -1 {
		t.Fatalf("currentIndex = %d, want -1", sc.CurrentIndex())
	}
	sc.Advance()
	sc.Retreat()
	if _, ok := sc.Current(); ok {
		t.Fatal("advance/retreat on empty context should stay empty")
	}
}

func TestSearchContextAdvanceWraps(t *testing.T) {
	matches := []TopicReference{{FullPath: "a"}, {FullPath: "b"}, {FullPath: "c"}}
	sc := NewSearchContext("x", matches)

	if cur, _ := sc.Current(); cur.FullPath != "a" {
		t.Fatalf("initial current = %q, want a", cur.FullPath)
	}
	sc.Advance()
	sc.Advance()
	if cur, _ := sc.Current(); cur.FullPath != "c" {
		t.Fatalf("current = %q, want c", cur.FullPath)
	}
	sc.Advance()
	if cur, _ := sc.Current(); cur.FullPath != "a" {
		t.Fatalf("current after wrap = %q, want a", cur.FullPath)
	}
}

func TestSearchContextRetreatWraps(t *testing.T) {
	matches := []TopicReference{{FullPath: "a"}, {FullPath: "b"}}
	sc := NewSearchContext("x", matches)
	sc.Retreat()
	if cur, _ := sc.Current(); cur.FullPath != "b" {
		t.Fatalf("current after retreat-wrap = %q, want b", cur.FullPath)
	}
}

func TestSearchContextMatchesIsCopy(t *testing.T) {
	matches := []TopicReference{{FullPath: "a"}}
	sc := NewSearchContext("x", matches)
	got := sc.Matches()
	got[0].FullPath = "mutated"
	if cur, _ := sc.Current(); cur.FullPath != "a" {
		t.Fatal("mutating the returned slice should not affect internal state")
	}
}
