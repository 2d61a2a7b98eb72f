package menu

import (
	"strings"
	"testing"
)

const testMenu = `
items:
  - name: Large Fries
    price: 3.99
    description: Large World Famous Fries.
  - name: medium coke
    price: 2.19
    description: Medium Coca-Cola.
  - name: filet-o-fish
    price: 5.69
    description: Fish filet patty.
  - name: mystery box
    price: ask the cashier
    description: Changes daily.
  - name: free water
    description: Tap water.
  - name: refund
    price: -1
    description: Not a real item.
`

func mustLoad(t *testing.T, src string) *Catalog {
	t.Helper()
	c, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return c
}

func TestLookup_CaseInsensitiveExact(t *testing.T) {
	c := mustLoad(t, testMenu)

	e, ok := c.Lookup("  LARGE fries ")
	if !ok {
		t.Fatal("expected large fries to be found")
	}
	if e.Name != "large fries" || e.Price != 3.99 {
		t.Errorf("unexpected entry: %+v", e)
	}

	if _, ok := c.Lookup("fries"); ok {
		t.Error("lookup must not do partial matches")
	}
}

func TestRenderForPrompt(t *testing.T) {
	c := mustLoad(t, testMenu)
	out := c.RenderForPrompt()

	if !strings.HasPrefix(out, "Available Menu Items:\n") {
		t.Fatalf("missing header: %q", out)
	}

	want := []string{
		"- Large Fries: $3.99 (Large World Famous Fries.)\n",
		"- Medium Coke: $2.19 (Medium Coca-Cola.)\n",
		"- Filet-O-Fish: $5.69 (Fish filet patty.)\n",
		"- Mystery Box: (Price Error) (Changes daily.)\n",
		"- Free Water: $0.00 (Tap water.)\n",
		"- Refund: (Price Error) (Not a real item.)\n",
	}
	pos := 0
	for _, line := range want {
		if n := strings.Count(out, line); n != 1 {
			t.Errorf("line %q rendered %d times", line, n)
			continue
		}
		i := strings.Index(out, line)
		if i < pos {
			t.Errorf("line %q out of menu order", line)
		}
		pos = i
	}
}

func TestRenderForPrompt_DefaultMenuEveryEntryOnce(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default menu: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("default menu is empty")
	}

	out := c.RenderForPrompt()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != c.Len()+1 {
		t.Fatalf("expected %d lines, got %d", c.Len()+1, len(lines))
	}

	for _, e := range c.Entries() {
		prefix := "- " + titleCase(e.Name) + ": $"
		n := 0
		for _, l := range lines {
			if strings.HasPrefix(l, prefix) {
				n++
			}
		}
		if n != 1 {
			t.Errorf("%q rendered %d times", e.Name, n)
		}
		if !e.Priced() {
			t.Errorf("%q has no price in the default menu", e.Name)
		}
	}

	if !strings.Contains(out, "- Big Mac: $5.99 (") {
		t.Errorf("expected two-decimal big mac price in listing")
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"duplicate": "items:\n  - name: Coke\n    price: 1\n  - name: coke\n    price: 2\n",
		"empty":     "items:\n  - name: ' '\n    price: 1\n",
		"syntax":    "items: [",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(src)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"big mac":                   "Big Mac",
		"filet-o-fish":              "Filet-O-Fish",
		"mcflurry with m&ms":        "Mcflurry With M&Ms",
		"4 piece chicken mcnuggets": "4 Piece Chicken Mcnuggets",
	}
	for in, want := range cases {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
