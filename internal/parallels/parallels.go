// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parallels finds candidate parallel passages by deterministic
// TF-IDF scoring over a book's verses. No network calls and no generation:
// the model is used only downstream, to extract verbatim overlapping
// quotes from the top candidates, and its output is checked against the
// supplied texts.
package parallels

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/scripture-engine/internal/canon"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

// stopwords are common function words (plus archaic corpus forms) that add
// no similarity signal.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"a an the and but or nor for yet so of in on at to by up as is it " +
			"be do he his him her she we us our they them their that this with from not " +
			"was are were had has have been into unto thou thee thy thine ye hath doth shall " +
			"which who whom what when where there here will would could should may might upon also " +
			"said saith then even all no more out came went come go made make take took " +
			"i me my mine you your yours if now") {
		stopwords[w] = struct{}{}
	}
}

const (
	// minTokenLen drops single and double letter noise tokens.
	minTokenLen = 3

	// DefaultTopN is the default number of candidates returned.
	DefaultTopN = 10
)

// Candidate is one scored parallel-passage candidate.
type Candidate struct {
	Reference    string   // full reference, e.g. "John 3:16"
	Text         string   // labelled verse text
	Score        float64  // TF-IDF cosine similarity, rounded to 6 places
	OverlapTerms []string // matched terms in descending IDF weight order
}

type verseDoc struct {
	chapter   int
	verse     int
	termFreqs map[string]float64
}

var nonLetterRe = regexp.MustCompile(`[^a-z\s]`)

// tokenize lowercases, strips punctuation, and drops stopwords and short
// tokens.
func tokenize(text string) []string {
	raw := strings.Fields(nonLetterRe.ReplaceAllString(strings.ToLower(text), ""))
	var out []string
	for _, t := range raw {
		if len(t) < minTokenLen {
			continue
		}
		if _, stop := stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func termFreq(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, t := range tokens {
		counts[t]++
	}
	freqs := make(map[string]float64, len(counts))
	total := float64(len(tokens))
	for t, c := range counts {
		freqs[t] = float64(c) / total
	}
	return freqs
}

// buildCorpus vectorizes every verse of a book.
func buildCorpus(o canon.Oracle, book types.BookID) []verseDoc {
	var docs []verseDoc
	chapters := o.ChapterCount(book)
	for ch := 1; ch <= chapters; ch++ {
		verses := o.VerseCount(book, ch)
		for v := 1; v <= verses; v++ {
			text, ok := o.VerseText(book, ch, v)
			if !ok {
				continue
			}
			docs = append(docs, verseDoc{
				chapter:   ch,
				verse:     v,
				termFreqs: termFreq(tokenize(text)),
			})
		}
	}
	return docs
}

func computeIDF(corpus []verseDoc) map[string]float64 {
	n := float64(len(corpus))
	if n == 0 {
		return nil
	}
	df := make(map[string]int)
	for _, doc := range corpus {
		for term := range doc.termFreqs {
			df[term]++
		}
	}
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log(n / float64(count))
	}
	return idf
}

func tfidfVector(freqs map[string]float64, idf map[string]float64) map[string]float64 {
	vec := make(map[string]float64, len(freqs))
	for term, tf := range freqs {
		vec[term] = tf * idf[term]
	}
	return vec
}

func cosine(a, b map[string]float64) float64 {
	var dot float64
	for term, av := range a {
		if bv, ok := b[term]; ok {
			dot += av * bv
		}
	}
	if dot == 0 {
		return 0
	}
	var normA, normB float64
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// overlapTerms returns terms common to both vectors, sorted by IDF weight
// descending with an alphabetical tie-break for determinism.
func overlapTerms(seed, candidate map[string]float64, idf map[string]float64, topN int) []string {
	var common []string
	for term := range seed {
		if _, ok := candidate[term]; ok {
			common = append(common, term)
		}
	}
	sort.Slice(common, func(i, j int) bool {
		if idf[common[i]] != idf[common[j]] {
			return idf[common[i]] > idf[common[j]]
		}
		return common[i] < common[j]
	})
	if len(common) > topN {
		common = common[:topN]
	}
	return common
}

// Score ranks every verse of scope against the seed passage by TF-IDF
// cosine similarity. Verses inside the seed passage itself are excluded.
// Deterministic: the same seed and scope always return the same ranking
// (ties break by reference).
func Score(o canon.Oracle, seed types.Passage, scope types.BookID, topN int) []Candidate {
	if topN <= 0 {
		topN = DefaultTopN
	}
	bookName := canon.BookName(o, scope)

	corpus := buildCorpus(o, scope)
	if len(corpus) == 0 {
		return nil
	}
	idf := computeIDF(corpus)

	seedVec := tfidfVector(termFreq(tokenize(seed.Text)), idf)
	if len(seedVec) == 0 {
		return nil
	}

	seedVerses := seedCoordinates(o, seed, scope)

	type scored struct {
		doc     verseDoc
		score   float64
		overlap []string
	}
	var ranked []scored
	for _, doc := range corpus {
		if _, inSeed := seedVerses[types.Coordinate{Chapter: doc.chapter, Verse: doc.verse}]; inSeed {
			continue
		}
		vec := tfidfVector(doc.termFreqs, idf)
		score := cosine(seedVec, vec)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, scored{
			doc:     doc,
			score:   score,
			overlap: overlapTerms(seedVec, vec, idf, 5),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].doc.chapter != ranked[j].doc.chapter {
			return ranked[i].doc.chapter < ranked[j].doc.chapter
		}
		return ranked[i].doc.verse < ranked[j].doc.verse
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	var out []Candidate
	for _, r := range ranked {
		text, _ := o.VerseText(scope, r.doc.chapter, r.doc.verse)
		out = append(out, Candidate{
			Reference:    fmt.Sprintf("%s %d:%d", bookName, r.doc.chapter, r.doc.verse),
			Text:         fmt.Sprintf("[%d:%d] %s", r.doc.chapter, r.doc.verse, text),
			Score:        math.Round(r.score*1e6) / 1e6,
			OverlapTerms: r.overlap,
		})
	}
	return out
}

// seedCoordinates enumerates the seed passage's own verse coordinates when
// the scope is the seed's book, so they can be excluded from candidates.
func seedCoordinates(o canon.Oracle, seed types.Passage, scope types.BookID) map[types.Coordinate]struct{} {
	set := make(map[types.Coordinate]struct{})
	if scope != seed.Book {
		return set
	}
	for ch := seed.Start.Chapter; ch <= seed.End.Chapter; ch++ {
		sv := 1
		if ch == seed.Start.Chapter {
			sv = seed.Start.Verse
		}
		ev := o.VerseCount(seed.Book, ch)
		if ch == seed.End.Chapter {
			ev = seed.End.Verse
		}
		for v := sv; v <= ev; v++ {
			set[types.Coordinate{Chapter: ch, Verse: v}] = struct{}{}
		}
	}
	return set
}

// VerifyQuotes checks a similarity explanation against the texts the model
// was given: every match must name a supplied candidate, its seed quote
// must appear verbatim in the seed text, and its candidate quote verbatim
// in that candidate's text. Violations are CitationOutOfRangeErrors, the
// same trust boundary the citation verifier enforces.
func VerifyQuotes(expl types.SimilarityExplanation, seedText string, candidates []Candidate) error {
	byRef := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		byRef[c.Reference] = c
	}

	for i, m := range expl.Matches {
		cand, ok := byRef[m.Reference]
		if !ok {
			return types.CitationOutOfRangef(
				"match %d references %q which is not in the candidate list", i, m.Reference,
			)
		}
		if !strings.Contains(seedText, m.VerbatimSeedQuote) {
			return types.CitationOutOfRangef(
				"match %d seed quote %q does not appear in the seed passage", i, m.VerbatimSeedQuote,
			)
		}
		if !strings.Contains(cand.Text, m.VerbatimCandidateQuote) {
			return types.CitationOutOfRangef(
				"match %d candidate quote %q does not appear in %s", i, m.VerbatimCandidateQuote, m.Reference,
			)
		}
	}
	return nil
}
