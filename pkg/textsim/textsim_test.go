package textsim

import (
	"math"
	"testing"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("The JWT auth-token, was refreshed (twice)!")
	want := []string{"the", "jwt", "auth", "token", "was", "refreshed", "twice"}
	if len(tokens) != len(want) {
		t.Fatalf("got %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d: got %q, want %q", i, tokens[i], want[i])
		}
	}
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	tokens := Tokenize("go is ok db up")
	if len(tokens) != 0 {
		t.Errorf("expected all short tokens dropped, got %v", tokens)
	}
}

func TestTFIDFVectorShape(t *testing.T) {
	docs := []string{
		"migrated the billing service to postgres",
		"postgres connection pool exhaustion during load test",
		"frontend rendering glitch after upgrade",
	}
	vectors := TFIDF(docs)
	if len(vectors) != len(docs) {
		t.Fatalf("expected %d vectors, got %d", len(docs), len(vectors))
	}
	dim := len(vectors[0])
	if dim == 0 {
		t.Fatal("expected non-empty vocabulary")
	}
	for i, v := range vectors {
		if len(v) != dim {
			t.Errorf("vector %d has length %d, want %d", i, len(v), dim)
		}
	}
}

func TestTFIDFEmptyVocabulary(t *testing.T) {
	vectors := TFIDF([]string{"a b c", "x y"})
	for i, v := range vectors {
		if len(v) != 0 {
			t.Errorf("vector %d: expected empty vector, got %v", i, v)
		}
	}
}

func TestTFIDFDiscriminatesSharedTerms(t *testing.T) {
	docs := []string{
		"postgres outage postgres failover",
		"postgres tuning checklist",
	}
	vectors := TFIDF(docs)
	// "postgres" appears in every document, so its IDF is ln(2/2) = 0.
	for i, v := range vectors {
		if v[0] != 0 {
			t.Errorf("doc %d: shared term should carry zero weight, got %f", i, v[0])
		}
	}
}

func TestCosineSimilarityIdentity(t *testing.T) {
	v := []float64{0.2, 0.7, 0.1, 0.4}
	if sim := CosineSimilarity(v, v); math.Abs(sim-1.0) > 1e-9 {
		t.Errorf("cosine(v, v) = %f, want 1.0", sim)
	}
}

func TestCosineSimilarityDegenerateInputs(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
	}{
		{"mismatched lengths", []float64{1, 2}, []float64{1, 2, 3}},
		{"empty vectors", []float64{}, []float64{}},
		{"zero magnitude", []float64{0, 0}, []float64{1, 1}},
	}
	for _, tc := range cases {
		if sim := CosineSimilarity(tc.a, tc.b); sim != 0 {
			t.Errorf("%s: got %f, want 0", tc.name, sim)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"kitten", "sitting", 3},
		{"deploy", "deploys", 1},
		{"cache", "", 5},
		{"same", "same", 0},
	}
	for _, tc := range cases {
		if got := Levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestStringSimilarity(t *testing.T) {
	if got := StringSimilarity("deploy", "deploys"); math.Abs(got-6.0/7.0) > 1e-9 {
		t.Errorf("got %f, want %f", got, 6.0/7.0)
	}
	if got := StringSimilarity("", ""); got != 1 {
		t.Errorf("two empty strings: got %f, want 1", got)
	}
}

func TestFuzzyMatch(t *testing.T) {
	if !FuzzyMatch("config", "confg") {
		t.Error("expected fuzzy match within distance 2")
	}
	if FuzzyMatch("config", "deploy") {
		t.Error("unexpected fuzzy match for unrelated tokens")
	}
}

func TestWordOverlap(t *testing.T) {
	a := "implemented token refresh logic for authentication flow"
	b := "authentication token refresh logic needed another pass"
	got := WordOverlap(a, b)
	// a: implemented token refresh logic authentication flow (6 words)
	// b: authentication token refresh logic needed another pass (7 words)
	// shared: token refresh logic authentication (4)
	want := 4.0 / 7.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %f, want %f", got, want)
	}
}

func TestWordOverlapIgnoresShortWords(t *testing.T) {
	if got := WordOverlap("a to of in", "a to of in"); got != 0 {
		t.Errorf("short words should not count, got %f", got)
	}
}

func TestWordOverlapIdentical(t *testing.T) {
	s := "refactored session window handling"
	if got := WordOverlap(s, s); got != 1 {
		t.Errorf("identical content: got %f, want 1", got)
	}
}
