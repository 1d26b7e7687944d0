package generator

import "testing"

func TestSanitize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "just a post", "just a post"},
		{"bold stripped", "a **strong** opinion", "a strong opinion"},
		{"underline stripped", "an __emphasized__ point", "an emphasized point"},
		{"heading stripped", "## Morning thoughts\nthe actual post", "Morning thoughts\nthe actual post"},
		{"quote stripped", "> quoted line", "quoted line"},
		{"wrapping quotes removed", `"the whole post"`, "the whole post"},
		{"curly quotes removed", "“the whole post”", "the whole post"},
		{"inner quotes kept", `she said "hi" to me`, `she said "hi" to me`},
		{"blank runs collapsed", "one\n\n\n\ntwo", "one\n\ntwo"},
		{"trailing spaces trimmed", "line one   \nline two", "line one\nline two"},
		{"surrounding space trimmed", "  padded  ", "padded"},
		{"single char in quotes", `"x"`, "x"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
