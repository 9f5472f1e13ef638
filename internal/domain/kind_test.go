package domain

import "testing"

func TestKindForCategory(t *testing.T) {
	k, err := KindForCategory("sneakers")
	if err != nil {
		t.Fatal(err)
	}
	if k != KindFootwear {
		t.Fatalf("want footwear, got %s", k)
	}
}

func TestKindForCategoryUnmapped(t *testing.T) {
	if _, err := KindForCategory("time-machines"); err == nil {
		t.Fatal("unmapped leaf category must be an error, not a fallback")
	}
}
