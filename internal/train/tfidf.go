// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package train

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/tomtom215/shelfline/internal/artifact"
	"github.com/tomtom215/shelfline/internal/models"
)

// BuildContentSimilarity computes pairwise cosine similarity between
// products based on TF-IDF vectors of their category and name. English
// stop words are removed, and tokens shorter than two characters are
// dropped, so features like "Rug" and "Mat" dominate the vectors.
//
// The matrix covers the whole catalog in ascending product ID order,
// including products with no sales history.
func BuildContentSimilarity(ctx context.Context, products []models.Product) (*artifact.SimilarityMatrix, error) {
	n := len(products)
	ids := make([]int, n)
	docs := make([][]string, n)
	for i, p := range products {
		ids[i] = p.ID
		docs[i] = tokenize(p.Category + " " + p.Name)
	}

	vectors := tfidfVectors(docs)

	sim := artifact.NewSimilarityMatrix(ids)
	for i := 0; i < n; i++ {
		if contextCancelled(ctx) {
			return nil, fmt.Errorf("content similarity computation cancelled: %w", ctx.Err())
		}
		for j := i; j < n; j++ {
			// Vectors are l2-normalized, so cosine similarity reduces to
			// the sparse dot product.
			sim.Set(i, j, sparseDot(vectors[i], vectors[j]))
		}
	}

	return sim, nil
}

// tokenize lowercases the text, splits on non-alphanumeric runs, and
// drops stop words and single-character tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := englishStopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// tfidfVectors builds l2-normalized TF-IDF vectors for the documents.
// IDF uses smoothing: idf(t) = ln((1+N)/(1+df(t))) + 1.
func tfidfVectors(docs [][]string) []map[string]float64 {
	n := len(docs)

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}

	idf := make(map[string]float64, len(df))
	for tok, count := range df {
		idf[tok] = math.Log(float64(1+n)/float64(1+count)) + 1
	}

	vectors := make([]map[string]float64, n)
	for i, doc := range docs {
		tf := make(map[string]float64, len(doc))
		for _, tok := range doc {
			tf[tok]++
		}

		var norm float64
		for tok := range tf {
			tf[tok] *= idf[tok]
			norm += tf[tok] * tf[tok]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for tok := range tf {
				tf[tok] /= norm
			}
		}
		vectors[i] = tf
	}

	return vectors
}

// sparseDot computes the dot product of two sparse vectors, iterating
// the smaller one deterministically.
func sparseDot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}

	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dot float64
	for _, k := range keys {
		if bv, ok := b[k]; ok {
			dot += a[k] * bv
		}
	}
	return dot
}

// englishStopWords is the usual English stop word list used by text
// vectorizers. Category and name strings are short, so only the common
// function words matter in practice.
var englishStopWords = func() map[string]struct{} {
	words := []string{
		"a", "about", "above", "across", "after", "afterwards", "again", "against",
		"all", "almost", "alone", "along", "already", "also", "although", "always",
		"am", "among", "amongst", "an", "and", "another", "any", "anyhow", "anyone",
		"anything", "anyway", "anywhere", "are", "around", "as", "at", "back", "be",
		"became", "because", "become", "becomes", "becoming", "been", "before",
		"beforehand", "behind", "being", "below", "beside", "besides", "between",
		"beyond", "both", "bottom", "but", "by", "call", "can", "cannot", "could",
		"did", "do", "does", "done", "down", "due", "during", "each", "either",
		"else", "elsewhere", "empty", "enough", "even", "ever", "every", "everyone",
		"everything", "everywhere", "except", "few", "first", "for", "former",
		"formerly", "from", "front", "full", "further", "had", "has", "have", "he",
		"hence", "her", "here", "hereafter", "hereby", "herein", "hereupon", "hers",
		"herself", "him", "himself", "his", "how", "however", "i", "if", "in",
		"indeed", "into", "is", "it", "its", "itself", "last", "latter", "latterly",
		"least", "less", "made", "many", "may", "me", "meanwhile", "might", "mine",
		"more", "moreover", "most", "mostly", "much", "must", "my", "myself",
		"namely", "neither", "never", "nevertheless", "next", "no", "nobody",
		"none", "noone", "nor", "not", "nothing", "now", "nowhere", "of", "off",
		"often", "on", "once", "one", "only", "onto", "or", "other", "others",
		"otherwise", "our", "ours", "ourselves", "out", "over", "own", "per",
		"perhaps", "please", "rather", "re", "same", "seem", "seemed", "seeming",
		"seems", "serious", "several", "she", "should", "since", "so", "some",
		"somehow", "someone", "something", "sometime", "sometimes", "somewhere",
		"still", "such", "than", "that", "the", "their", "them", "themselves",
		"then", "thence", "there", "thereafter", "thereby", "therefore", "therein",
		"thereupon", "these", "they", "this", "those", "though", "through",
		"throughout", "thru", "thus", "to", "together", "too", "top", "toward",
		"towards", "under", "until", "up", "upon", "us", "very", "via", "was",
		"we", "well", "were", "what", "whatever", "when", "whence", "whenever",
		"where", "whereafter", "whereas", "whereby", "wherein", "whereupon",
		"wherever", "whether", "which", "while", "whither", "who", "whoever",
		"whole", "whom", "whose", "why", "will", "with", "within", "without",
		"would", "yet", "you", "your", "yours", "yourself", "yourselves",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()
