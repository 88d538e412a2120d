package log

import "testing"

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected a no-op logger for nil")
	}

	l := GetSugaredLogger()
	if OrNop(l) != l {
		t.Error("expected the given logger to be returned unchanged")
	}
}

func TestInit(t *testing.T) {
	for _, debug := range []bool{true, false} {
		if err := Init(debug); err != nil {
			t.Fatalf("Init(%v): %v", debug, err)
		}
		if GetSugaredLogger() == nil {
			t.Fatalf("Init(%v) left no logger", debug)
		}
		Debugf("debug=%v", debug)
	}
}
