package purpose

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const small = `
purposes:
  - name: Business
    minors:
      - name: Email
        structure: Greeting, request, closing
      - name: Proposal
  - name: Academic
    minors:
      - name: Report
        structure: Introduction, body, conclusion
  - name: Social media
    minors:
      - name: Blog post
      - name: Caption
lengths:
  - name: Short
    chars: 300
intensities:
  - name: Light
    instruction: Fix wording only.
`

func mustParse(t *testing.T, in string) *Catalog {
	t.Helper()
	c, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return c
}

func TestDefault(t *testing.T) {
	c := Default()
	if len(c.Purposes) == 0 {
		t.Fatal("default catalog has no purposes")
	}
	for _, m := range c.Purposes {
		for _, mi := range m.Minors {
			if mi.Structure == "" {
				t.Errorf("%s → %s has no structure", m.Name, mi.Name)
			}
		}
	}
	if len(c.Models) == 0 {
		t.Error("default catalog has no models")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string // substrings of the error
	}{
		{
			name: "syntax",
			in:   "purposes: [",
			want: []string{"parsing catalog"},
		},
		{
			name: "empty",
			in:   "{}",
			want: []string{"no purposes", "no lengths", "no intensities"},
		},
		{
			name: "duplicates_and_bad_lengths",
			in: `
purposes:
  - name: A
    minors: [{name: x}]
  - name: A
    minors: [{name: x}]
  - name: B
lengths:
  - {name: Short, chars: 0}
  - {name: Short, chars: 10}
intensities:
  - {name: Light}
  - {name: Light}
`,
			want: []string{
				`duplicate purpose "A"`,
				`minor purpose "x" appears in "A" and "A"`,
				`purpose "B" has no minor purposes`,
				`length "Short": chars must be positive, got 0`,
				`duplicate length "Short"`,
				`duplicate intensity "Light"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q doesn't mention %q", err, w)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(file, []byte(small), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(file)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(mustParse(t, small), c); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestLookups(t *testing.T) {
	c := mustParse(t, small)

	if m := c.Major("Academic"); m == nil || m.Name != "Academic" {
		t.Errorf("Major(Academic) = %v", m)
	}
	if m := c.Major("Poetry"); m != nil {
		t.Errorf("Major(Poetry) = %v, want nil", m)
	}
	if mi := c.Minor("Business", "Report"); mi != nil {
		t.Errorf("Minor(Business, Report) = %v, want nil", mi)
	}

	if got, want := c.MajorOf("Report"), "Academic"; got != want {
		t.Errorf("MajorOf(Report) = %q, want %q", got, want)
	}
	if got := c.MajorOf("Haiku"); got != "" {
		t.Errorf("MajorOf(Haiku) = %q, want \"\"", got)
	}

	structures := []struct {
		major, minor string
		want         string
	}{
		{"Business", "Email", "Greeting, request, closing"},
		{"Business", "Proposal", "Logical structure"},
		{"Poetry", "Haiku", "Logical structure"},
	}
	for _, tt := range structures {
		if got := c.Structure(tt.major, tt.minor); got != tt.want {
			t.Errorf("Structure(%q, %q) = %q, want %q", tt.major, tt.minor, got, tt.want)
		}
	}
	c.DefaultStructure = "Anything goes"
	if got, want := c.Structure("Business", "Proposal"), "Anything goes"; got != want {
		t.Errorf("Structure with default = %q, want %q", got, want)
	}

	if l, ok := c.Length("Short"); !ok || l.Chars != 300 {
		t.Errorf("Length(Short) = %v, %v", l, ok)
	}
	if _, ok := c.Length("Epic"); ok {
		t.Error("Length(Epic) found")
	}
	if in, ok := c.Intensity("Light"); !ok || in.Instruction != "Fix wording only." {
		t.Errorf("Intensity(Light) = %v, %v", in, ok)
	}
	if _, ok := c.Intensity("Brutal"); ok {
		t.Error("Intensity(Brutal) found")
	}
}

func TestSuggestions(t *testing.T) {
	c := mustParse(t, small)
	tests := []struct {
		major, minor string
		want         []Suggestion
	}{
		{
			// Only one sibling, filled up with the first minor of the other majors.
			major: "Business",
			minor: "Email",
			want: []Suggestion{
				{"Business", "Proposal"},
				{"Academic", "Report"},
				{"Social media", "Blog post"},
			},
		},
		{
			major: "Academic",
			minor: "Report",
			want: []Suggestion{
				{"Business", "Email"},
				{"Social media", "Blog post"},
			},
		},
		{
			major: "Unknown",
			minor: "Whatever",
			want: []Suggestion{
				{"Business", "Email"},
				{"Academic", "Report"},
				{"Social media", "Blog post"},
			},
		},
	}
	for _, tt := range tests {
		got := c.Suggestions(tt.major, tt.minor)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Suggestions(%q, %q) mismatch (-want +got):\n%s", tt.major, tt.minor, diff)
		}
	}

	d := Default()
	got := d.Suggestions("Business", "Email")
	want := []Suggestion{{"Business", "Proposal"}, {"Business", "Meeting minutes"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Default().Suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggestionString(t *testing.T) {
	if got, want := (Suggestion{"Business", "Email"}).String(), "Business → Email"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := (Suggestion{Minor: "A podcast script"}).String(), "A podcast script"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
