package e2e

import "testing"

func TestBuildCorpus(t *testing.T) {
	c := BuildCorpus(60)
	if len(c.Documents) != 60 {
		t.Fatalf("documents: got %d, want 60", len(c.Documents))
	}
	if len(c.Cases) == 0 {
		t.Fatal("corpus has no query cases")
	}

	slugs := make(map[string]bool, len(c.Documents))
	for _, d := range c.Documents {
		if slugs[d.Slug] {
			t.Errorf("duplicate slug %q", d.Slug)
		}
		slugs[d.Slug] = true
		if !d.HasPhrase() {
			t.Errorf("document %q does not contain its signature phrase %q", d.Slug, d.Phrase)
		}
	}

	for _, tc := range c.Cases {
		for _, slug := range tc.ExpectedSlugs {
			if !slugs[slug] {
				t.Errorf("case %q expects unknown slug %q", tc.Query, slug)
			}
		}
	}
}

func TestBuildCorpusSmallerThanTopicList(t *testing.T) {
	c := BuildCorpus(5)
	if len(c.Documents) != 5 {
		t.Fatalf("documents: got %d, want 5", len(c.Documents))
	}
	if len(c.Cases) != 5 {
		t.Fatalf("cases: got %d, want 5", len(c.Cases))
	}
}
