package parser

import "strings"

var candidateDelimiters = []rune{',', ';', '\t', '|'}

const sniffLines = 20

// sniffDelimiter picks the candidate whose count in the header line is
// repeated by the most sample lines. Ties go to the earlier candidate.
func sniffDelimiter(text string) rune {
	lines := sampleLines(text, sniffLines)
	if len(lines) == 0 {
		return ','
	}

	best, bestScore := ',', -1
	for _, d := range candidateDelimiters {
		want := countOutsideQuotes(lines[0], d)
		if want == 0 {
			continue
		}
		score := 0
		for _, line := range lines[1:] {
			if countOutsideQuotes(line, d) == want {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

func sampleLines(text string, limit int) []string {
	var out []string
	for len(text) > 0 {
		var line string
		line, text, _ = strings.Cut(text, "\n")
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}

func countOutsideQuotes(line string, d rune) int {
	n, quoted := 0, false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}
