package utils

import "testing"

func TestMarkdownBoldToHTML(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain text", "plain text"},
		{"**bold**", "<strong>bold</strong>"},
		{"a **b** c **d** e", "a <strong>b</strong> c <strong>d</strong> e"},
		{"unclosed **bold", "unclosed **bold"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := MarkdownBoldToHTML(tc.in); got != tc.want {
			t.Fatalf("MarkdownBoldToHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUrlQuery(t *testing.T) {
	if got := UrlQuery("hello world again"); got != "hello+world+again" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestStandardizeQuery(t *testing.T) {
	if got := StandardizeQuery("  What Is Zakat?  "); got != "what is zakat?" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestStr(t *testing.T) {
	if Str(nil) != "" || Str(42) != "42" || Str("x") != "x" {
		t.Fatal("unexpected conversions")
	}
}
