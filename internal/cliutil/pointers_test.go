package cliutil

import "testing"

func TestPointerHelpers(t *testing.T) {
	if PointerToString(nil) != "" {
		t.Fatal("expected empty string for nil pointer")
	}
	if PointerToInt32(nil) != 0 || PointerToInt64(nil) != 0 {
		t.Fatal("expected zero for nil int pointers")
	}
	if PointerToBool(nil) {
		t.Fatal("expected false for nil bool pointer")
	}

	if PointerToString(Ptr("abc")) != "abc" {
		t.Fatal("unexpected PointerToString value")
	}
	if PointerToInt32(Ptr(int32(9))) != 9 {
		t.Fatal("unexpected PointerToInt32 value")
	}
	if PointerToInt64(Ptr(int64(6144))) != 6144 {
		t.Fatal("unexpected PointerToInt64 value")
	}
	if !PointerToBool(Ptr(true)) {
		t.Fatal("unexpected PointerToBool value")
	}
}
