package order

import "strings"

const (
	openFence  = "```json"
	closeFence = "```"

	defaultAck = "Okay, order updated."
)

// Extraction splits a completion into prose and the structured fragment.
type Extraction struct {
	Reply    string
	Fragment string
	Found    bool
}

// Extract finds the first ```json block and the nearest ``` after it.
// Only block boundaries are detected here; the fragment is passed on as-is.
// A completion with no complete block yields Found=false and the full text
// as Reply. Later blocks, if any, stay part of the reply.
func Extract(raw string) Extraction {
	start, bodyStart, ok := findOpenFence(raw)
	if !ok {
		return Extraction{Reply: strings.TrimSpace(raw)}
	}

	rel := strings.Index(raw[bodyStart:], closeFence)
	if rel < 0 {
		return Extraction{Reply: strings.TrimSpace(raw)}
	}
	bodyEnd := bodyStart + rel
	end := bodyEnd + len(closeFence)

	reply := strings.TrimSpace(raw[:start] + raw[end:])
	if reply == "" {
		reply = defaultAck
	}

	return Extraction{
		Reply:    reply,
		Fragment: strings.TrimSpace(raw[bodyStart:bodyEnd]),
		Found:    true,
	}
}

// findOpenFence skips look-alike tags such as ```jsonc.
func findOpenFence(s string) (start, bodyStart int, ok bool) {
	i := 0
	for {
		j := strings.Index(s[i:], openFence)
		if j < 0 {
			return 0, 0, false
		}
		start = i + j
		after := start + len(openFence)
		if after == len(s) || isTagEnd(s[after]) {
			return start, after, true
		}
		i = after
	}
}

func isTagEnd(c byte) bool {
	switch c {
	case '{', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
