package widget

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/bz888/promptpad/internal/api"
)

// ClampMaxTokens snaps an out-of-range max tokens value to [1,200]. Input
// that does not start with an integer, or is already in range, comes back
// untouched.
func ClampMaxTokens(raw string) string {
	return clampField(raw, api.MaxTokensBounds)
}

// ClampTopK snaps an out-of-range top-k value to [1,100].
func ClampTopK(raw string) string {
	return clampField(raw, api.TopKBounds)
}

func clampField(raw string, b api.Bounds) string {
	v, ok := parseLeadingInt(raw)
	if !ok {
		return raw
	}
	if v < b.Min || v > b.Max {
		return strconv.Itoa(b.Clamp(v))
	}
	return raw
}

// parseLeadingInt reads an optionally signed run of digits at the start of
// raw and ignores whatever follows, so "12px" is 12 and "3.9" is 3. Runs too
// long for an int saturate.
func parseLeadingInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseLeadingFloat reads the longest prefix of raw that parses as a finite
// float.
func parseLeadingFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	for end := len(s); end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 64)
		if err != nil {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// buildCompletionRequest turns raw form values into a request. Unparsable
// numbers fall back to the sampling defaults.
func buildCompletionRequest(text string, in Input) api.CompletionRequest {
	req := api.CompletionRequest{
		Text:        text,
		MaxTokens:   api.DefaultMaxTokens,
		Temperature: api.DefaultTemperature,
		TopK:        api.DefaultTopK,
	}
	if v, ok := parseLeadingInt(in.MaxTokens); ok {
		req.MaxTokens = v
	}
	if v, ok := parseLeadingFloat(in.Temperature); ok {
		req.Temperature = v
	}
	if v, ok := parseLeadingInt(in.TopK); ok {
		req.TopK = v
	}
	return req
}
