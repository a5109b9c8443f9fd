package catalog

import (
	"container/heap"
	"math"
	"strings"
)

// minSuggestionScore drops matches that share almost nothing with the query.
const minSuggestionScore = 0.3

// trigrams is a sparse character trigram count vector.
type trigrams map[string]float32

func newTrigrams(name string) trigrams {
	runes := []rune(" " + strings.ReplaceAll(name, "_", " ") + " ")
	t := make(trigrams, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		t[string(runes[i:i+3])]++
	}
	return t
}

// cosine returns the cosine similarity of two trigram vectors.
// Formula: cos(θ) = (A · B) / (||A|| × ||B||)
func cosine(a, b trigrams) float32 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot, normA, normB float32
	for g, va := range a {
		normA += va * va
		if vb, ok := b[g]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// Suggest returns up to k catalog names closest to text, best first.
func (c *Catalog) Suggest(text string, k int) []string {
	if k <= 0 {
		return nil
	}
	query := newTrigrams(NormalizeName(text))

	// Min-heap so the weakest candidate is evicted first.
	h := &matchHeap{}
	heap.Init(h)

	for i, g := range c.grams {
		m := match{name: c.symptoms[i].Name, score: cosine(query, g)}
		if m.score < minSuggestionScore {
			continue
		}
		if h.Len() < k {
			heap.Push(h, m)
		} else if (*h)[0].worse(m) {
			heap.Pop(h)
			heap.Push(h, m)
		}
	}

	out := make([]string, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(match).name
	}
	return out
}

type match struct {
	name  string
	score float32
}

// worse orders by score, then by name so equal scores resolve alphabetically.
func (m match) worse(other match) bool {
	if m.score != other.score {
		return m.score < other.score
	}
	return m.name > other.name
}

type matchHeap []match

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return h[i].worse(h[j]) }
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *matchHeap) Push(x interface{}) {
	*h = append(*h, x.(match))
}

func (h *matchHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
