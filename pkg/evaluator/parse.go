package evaluator

import (
	"strconv"
	"strings"
)

// Score is one "info" line's score as sent by a UCI engine, relative to the
// side to move.
type Score struct {
	Depth  int
	CP     int
	Mate   int
	IsMate bool
}

// ParseInfo extracts the score of an "info ... score cp|mate N" line. ok is
// false for any other line and for a score that does not parse.
func ParseInfo(line string) (s Score, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return Score{}, false
	}
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				s.Depth, _ = strconv.Atoi(fields[i+1])
			}
		case "score":
			if i+2 >= len(fields) {
				return Score{}, false
			}
			n, err := strconv.Atoi(fields[i+2])
			if err != nil {
				return Score{}, false
			}
			switch fields[i+1] {
			case "cp":
				s.CP = n
			case "mate":
				s.Mate, s.IsMate = n, true
			default:
				return Score{}, false
			}
			ok = true
			i += 2
		}
	}
	return s, ok
}

// IsBestMove reports whether line ends a search.
func IsBestMove(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "bestmove")
}

// ParseBestMove returns the move of a "bestmove" line. An engine with no
// legal move answers "(none)", which gives "".
func ParseBestMove(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "bestmove" || fields[1] == "(none)" {
		return ""
	}
	return fields[1]
}
