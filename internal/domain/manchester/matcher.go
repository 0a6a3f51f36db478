package manchester

import (
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// MaxSuggestions caps the number of flows returned by SuggestFlows.
const MaxSuggestions = 5

type scoredFlow struct {
	flow  *ClinicalFlow
	score int
}

// SuggestFlows ranks catalog flows by how many of their keywords occur in
// the lowercased complaints and symptoms. Matching is plain substring
// containment, so a keyword can hit inside a longer word. Ties keep catalog
// order. At most MaxSuggestions flows are returned; never nil.
func SuggestFlows(complaints, symptoms string) []ClinicalFlow {
	return rank(searchBuffer(complaints, symptoms))
}

func searchBuffer(complaints, symptoms string) string {
	return strings.ToLower(complaints + " " + symptoms)
}

func rank(buf string) []ClinicalFlow {
	out := []ClinicalFlow{}
	if strings.TrimSpace(buf) == "" {
		return out
	}

	var scored []scoredFlow
	for i := range catalog {
		n := 0
		for _, kw := range catalog[i].Keywords {
			if strings.Contains(buf, kw) {
				n++
			}
		}
		if n > 0 {
			scored = append(scored, scoredFlow{flow: &catalog[i], score: n})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	for i := 0; i < len(scored) && i < MaxSuggestions; i++ {
		out = append(out, scored[i].flow.clone())
	}
	return out
}

// Matcher serves flow suggestions with a bounded memo keyed by the search
// buffer. Suggestions are requested on every keystroke of the triage form,
// so identical buffers repeat often.
type Matcher struct {
	cache  *lru.Cache[string, []ClinicalFlow]
	logger zerolog.Logger
}

// NewMatcher creates a Matcher. A cacheSize of zero or less disables the memo.
func NewMatcher(cacheSize int, logger zerolog.Logger) (*Matcher, error) {
	m := &Matcher{logger: logger.With().Str("component", "flow_matcher").Logger()}
	if cacheSize <= 0 {
		return m, nil
	}
	c, err := lru.New[string, []ClinicalFlow](cacheSize)
	if err != nil {
		return nil, err
	}
	m.cache = c
	return m, nil
}

// Suggest behaves exactly like SuggestFlows.
func (m *Matcher) Suggest(complaints, symptoms string) []ClinicalFlow {
	buf := searchBuffer(complaints, symptoms)
	if m.cache == nil {
		return rank(buf)
	}
	if cached, ok := m.cache.Get(buf); ok {
		return copyFlows(cached)
	}
	flows := rank(buf)
	m.cache.Add(buf, flows)
	m.logger.Debug().Int("matches", len(flows)).Int("cached", m.cache.Len()).Msg("flow suggestion computed")
	return copyFlows(flows)
}

func copyFlows(in []ClinicalFlow) []ClinicalFlow {
	out := make([]ClinicalFlow, len(in))
	for i := range in {
		out[i] = in[i].clone()
	}
	return out
}
