// Package textsim provides the lexical similarity primitives used by the
// mnemo retrieval pipeline: TF-IDF vectorization, cosine similarity,
// Levenshtein edit distance, and word-overlap similarity.
//
// All functions are pure and perform no I/O.
package textsim

import (
	"math"
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// Tokenize splits text into lowercase tokens: strips non-word characters,
// splits on whitespace, and drops tokens of two characters or fewer.
func Tokenize(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// TFIDF computes TF-IDF vectors for a set of documents over a shared
// vocabulary. Term frequency is count/docLength and inverse document
// frequency is ln(N/docsContaining). One vector is returned per document,
// all of equal length. Documents that produce an empty vocabulary yield
// empty vectors.
func TFIDF(documents []string) [][]float64 {
	if len(documents) == 0 {
		return nil
	}

	tokenized := make([][]string, len(documents))
	vocab := make(map[string]int)
	var terms []string
	for i, doc := range documents {
		tokens := Tokenize(doc)
		tokenized[i] = tokens
		for _, t := range tokens {
			if _, ok := vocab[t]; !ok {
				vocab[t] = len(terms)
				terms = append(terms, t)
			}
		}
	}

	vectors := make([][]float64, len(documents))
	if len(terms) == 0 {
		for i := range vectors {
			vectors[i] = []float64{}
		}
		return vectors
	}

	// Document frequency per term.
	df := make([]int, len(terms))
	for _, tokens := range tokenized {
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[vocab[t]]++
		}
	}

	n := float64(len(documents))
	for i, tokens := range tokenized {
		vec := make([]float64, len(terms))
		if len(tokens) > 0 {
			counts := make(map[string]int, len(tokens))
			for _, t := range tokens {
				counts[t]++
			}
			docLen := float64(len(tokens))
			for term, count := range counts {
				idx := vocab[term]
				tf := float64(count) / docLen
				idf := math.Log(n / float64(df[idx]))
				vec[idx] = tf * idf
			}
		}
		vectors[i] = vec
	}
	return vectors
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for mismatched lengths, empty vectors, or zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// CosineSimilarity32 is CosineSimilarity over float32 embedding vectors.
func CosineSimilarity32(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// Levenshtein computes the classic dynamic-programming edit distance
// between two strings.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// StringSimilarity normalizes the edit distance into [0,1]:
// (longer - distance) / longer. Two empty strings are identical.
func StringSimilarity(a, b string) float64 {
	longer := len([]rune(a))
	if lb := len([]rune(b)); lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 1
	}
	return float64(longer-Levenshtein(a, b)) / float64(longer)
}

// FuzzyMatch reports whether two tokens are within edit distance 2,
// the threshold used for near-identical token matching.
func FuzzyMatch(a, b string) bool {
	return Levenshtein(a, b) <= 2
}

// WordOverlap computes |intersection| / max(|wordsA|, |wordsB|) over
// words longer than 3 characters. Used for fast duplicate detection
// where TF-IDF would be overkill.
func WordOverlap(a, b string) float64 {
	wordsA := overlapWords(a)
	wordsB := overlapWords(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	shared := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			shared++
		}
	}
	maxLen := len(wordsA)
	if len(wordsB) > maxLen {
		maxLen = len(wordsB)
	}
	return float64(shared) / float64(maxLen)
}

func overlapWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(text)) {
		f = nonWord.ReplaceAllString(f, "")
		if len(f) > 3 {
			words[f] = struct{}{}
		}
	}
	return words
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
