package labels

import "testing"

func TestKey_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{name: "identity", in: "checkout", out: "checkout"},
		{name: "empty", in: "", out: Blank},
		{name: "only spaces", in: " \t\n ", out: Blank},
		{name: "invalid utf8 dropped", in: string([]byte{0xff, 'a', 'b'}), out: "ab"},
		{name: "zero width removed", in: "us\u200beast", out: "useast"},
		{name: "fullwidth folded", in: "\uff21\uff30\uff29", out: "API"},
		{name: "composed", in: "cafe\u0301", out: "caf\u00e9"},
		{name: "whitespace collapsed", in: "  north   america ", out: "north america"},
		{name: "case preserved", in: "Europe", out: "Europe"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Key(tc.in); got != tc.out {
				t.Fatalf("Key(%q) = %q, want %q", tc.in, got, tc.out)
			}
		})
	}
}
