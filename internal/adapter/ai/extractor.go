package ai

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
)

// Extractor pulls structured payloads out of raw LLM text. Providers wrap
// JSON in prose or code fences, or emit adjacent objects instead of one
// array; every method here degrades instead of failing — the worst outcome
// is an empty collection, never an error.
type Extractor struct{}

// NewExtractor creates a response extractor.
func NewExtractor() Extractor { return Extractor{} }

// StripFences removes leading/trailing markdown code-fence markers with an
// optional language tag.
func (Extractor) StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		// drop a language tag such as "json" up to the first newline
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			tag := strings.TrimSpace(s[:nl])
			if tag == "" || !strings.ContainsAny(tag, " \t{}[]\"") {
				s = s[nl+1:]
			}
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// rawKeyword tolerates the field types different providers actually send:
// numbers as strings, competition as a 0-1 float or a Low/Medium/High label.
type rawKeyword struct {
	Keyword         string `json:"keyword"`
	SearchVolume    any    `json:"searchVolume"`
	Competition     any    `json:"competition"`
	Trend           string `json:"trend"`
	Difficulty      any    `json:"difficulty"`
	MagicScore      any    `json:"magicScore"`
	Recommendations string `json:"recommendations"`
	SEOTips         string `json:"seoTips"`
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// competitionScale maps provider competition values onto the canonical 0-100
// scale: [0,1] floats are scaled up, Low/Medium/High labels map to 25/50/75.
func competitionScale(v any) float64 {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "low":
			return 25
		case "medium":
			return 50
		case "high":
			return 75
		}
	}
	f, ok := asFloat(v)
	if !ok {
		return 0
	}
	if f > 0 && f <= 1 {
		return f * 100
	}
	return f
}

func difficultyScale(v any) float64 {
	f, ok := asFloat(v)
	if !ok {
		return 0
	}
	if f > 0 && f <= 1 {
		return f * 100
	}
	return f
}

// NormalizeTrend folds provider trend labels onto up/stable/down; unknown
// labels pass through lowercased.
func NormalizeTrend(label string) string {
	t := strings.ToLower(strings.TrimSpace(label))
	switch t {
	case "rising", "growing":
		return domain.TrendUp
	case "falling", "declining":
		return domain.TrendDown
	}
	return t
}

func (k rawKeyword) record(source string) (domain.KeywordRecord, bool) {
	kw := strings.TrimSpace(k.Keyword)
	if kw == "" {
		return domain.KeywordRecord{}, false
	}
	vol, _ := asFloat(k.SearchVolume)
	if vol < 0 {
		vol = 0
	}
	magic, _ := asFloat(k.MagicScore)
	if magic > 0 && magic <= 1 {
		magic *= 100
	}
	return domain.KeywordRecord{
		Keyword:         kw,
		SearchVolume:    int(vol),
		Competition:     competitionScale(k.Competition),
		Trend:           NormalizeTrend(k.Trend),
		Difficulty:      difficultyScale(k.Difficulty),
		MagicScore:      magic,
		Recommendations: strings.TrimSpace(k.Recommendations),
		SEOTips:         strings.TrimSpace(k.SEOTips),
		Source:          source,
	}, true
}

// Keywords extracts keyword records from raw provider text, in order:
// direct array parse, then an object wrapping a "keywords" array, then a
// brace-balanced scan for individual objects carrying a "keyword" field.
// Duplicate keyword text (case-insensitive) keeps the first occurrence.
func (e Extractor) Keywords(raw, source string) []domain.KeywordRecord {
	s := e.StripFences(raw)

	var arr []rawKeyword
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		var wrapped struct {
			Keywords []rawKeyword `json:"keywords"`
		}
		if err := json.Unmarshal([]byte(s), &wrapped); err == nil && len(wrapped.Keywords) > 0 {
			arr = wrapped.Keywords
		}
	}
	if len(arr) == 0 {
		arr = scanKeywordObjects(s)
		if len(arr) > 0 {
			observability.ExtractionDegradedTotal.WithLabelValues("keywords", "object_scan").Inc()
		}
	}

	records := make([]domain.KeywordRecord, 0, len(arr))
	for _, k := range arr {
		if rec, ok := k.record(source); ok {
			records = append(records, rec)
		}
	}
	return DedupKeywords(records)
}

// scanKeywordObjects walks the text collecting every top-level brace-balanced
// object that mentions a "keyword" field. Objects that fail to parse
// individually are skipped, not fatal.
func scanKeywordObjects(s string) []rawKeyword {
	var out []rawKeyword
	depth, start := 0, -1
	inStr, esc := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := s[start : i+1]
				start = -1
				if !strings.Contains(candidate, `"keyword"`) {
					continue
				}
				var k rawKeyword
				if err := json.Unmarshal([]byte(candidate), &k); err == nil {
					out = append(out, k)
				}
			}
		}
	}
	return out
}

// DedupKeywords drops duplicate keyword text case-insensitively, preserving
// first-seen order.
func DedupKeywords(in []domain.KeywordRecord) []domain.KeywordRecord {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.KeywordRecord, 0, len(in))
	for _, r := range in {
		key := strings.ToLower(r.Keyword)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// StringList parses a JSON array of strings, tolerating fences and prose
// around the array. Non-string elements are skipped.
func (e Extractor) StringList(raw string) []string {
	s := e.StripFences(raw)
	if i := strings.IndexByte(s, '['); i > 0 {
		s = s[i:]
	}
	if i := strings.LastIndexByte(s, ']'); i >= 0 {
		s = s[:i+1]
	}
	var items []any
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if str, ok := it.(string); ok {
			if str = strings.TrimSpace(str); str != "" {
				out = append(out, str)
			}
		}
	}
	return out
}

// Script parses an {outline, script} object where either field may be a
// string or an array of strings. Unparseable content degrades to the whole
// raw text as the script with an empty outline.
func (e Extractor) Script(raw string) domain.ScriptResult {
	s := e.StripFences(raw)
	var obj struct {
		Outline any `json:"outline"`
		Script  any `json:"script"`
	}
	if err := json.Unmarshal([]byte(s), &obj); err == nil {
		res := domain.ScriptResult{
			Outline: toStringSlice(obj.Outline),
			Script:  toStringSlice(obj.Script),
		}
		if len(res.Outline) > 0 || len(res.Script) > 0 {
			return res
		}
	}
	observability.ExtractionDegradedTotal.WithLabelValues("script", "raw_text").Inc()
	return domain.ScriptResult{Outline: []string{}, Script: []string{strings.TrimSpace(raw)}}
}

func toStringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return []string{}
}

// Lines splits raw text into trimmed non-empty lines; the degraded shape for
// tweet, post and script generation.
func (Extractor) Lines(raw string) []string {
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
