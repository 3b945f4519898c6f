package command

import (
	"reflect"
	"testing"
)

func TestTokenizeWhitespace(t *testing.T) {
	got := tokenize("connect  broker.local:1883   alice")
	want := []string{"connect", "broker.local:1883", "alice"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
}

func TestTokenizeQuotedSpan(t *testing.T) {
	got := tokenize(`filter "two words" done`)
	want := []string{"filter", "two words", "done"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if got := tokenize("   "); len(got) != 0 {
		t.Fatalf("tokens = %v, want none", got)
	}
}

func TestTokenizeEmptyQuotedSpan(t *testing.T) {
	got := tokenize(`setuser ""`)
	want := []string{"setuser", ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
}
