package strings

import "testing"

func TestIfEmpty(t *testing.T) {
	t.Parallel()

	in := []string{"GET"}
	if got := IfEmpty(in, []string{"POST"}); len(got) != 1 || got[0] != "GET" {
		t.Fatalf("IfEmpty = %v, want [GET]", got)
	}
	if got := IfEmpty(nil, []string{"POST"}); len(got) != 1 || got[0] != "POST" {
		t.Fatalf("IfEmpty(nil) = %v, want [POST]", got)
	}
}

func TestMustString(t *testing.T) {
	if got := MustString("ok", "name"); got != "ok" {
		t.Fatalf("want ok got %q", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("want panic for empty name")
		}
	}()
	_ = MustString("   ", "name")
}

func TestMustRoot(t *testing.T) {
	cases := map[string]string{
		"/timeline/":   "/timeline",
		" timeline  ":  "/timeline",
		"//timeline//": "/timeline",
		"/":            "", // should panic
		"":             "", // should panic
	}
	for in, want := range cases {
		if want == "" {
			func() {
				defer func() {
					if recover() == nil {
						t.Fatalf("want panic for %q", in)
					}
				}()
				_ = MustPrefix(in)
			}()
			continue
		}
		if got := MustPrefix(in); got != want {
			t.Fatalf("in %q want %q got %q", in, want, got)
		}
	}
}
