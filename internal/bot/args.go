package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// splitArgs splits a command line on spaces while keeping double-quoted
// runs together, so CJK titles containing spaces survive parsing. Both
// ASCII and full-width quotes are accepted.
func splitArgs(s string) []string {
	var args []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}

	for _, r := range s {
		switch {
		case r == '"' || r == '“' || r == '”':
			if inQuote {
				args = append(args, cur.String())
				cur.Reset()
				inQuote = false
			} else {
				flush()
				inQuote = true
			}
		case (r == ' ' || r == '\t') && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return args
}

// generateArgs is the parsed form of
// !generate_cover <date> <away> <home> "line1" "line2" [cells...].
type generateArgs struct {
	Date        string
	AwayTeam    string
	HomeTeam    string
	TitleLines  []string
	CircleCells []int
}

func parseGenerateArgs(args []string) (generateArgs, error) {
	if len(args) < 5 {
		return generateArgs{}, fmt.Errorf("expected <date> <away_team> <home_team> <title_line1> <title_line2> [circle_cells...]")
	}
	out := generateArgs{
		Date:       args[0],
		AwayTeam:   args[1],
		HomeTeam:   args[2],
		TitleLines: args[3:5],
	}
	if _, err := time.Parse("2006-01-02", out.Date); err != nil {
		return generateArgs{}, fmt.Errorf("invalid date format, use YYYY-MM-DD (e.g. 2025-12-07)")
	}
	for _, a := range args[5:] {
		n, err := strconv.Atoi(a)
		if err != nil {
			return generateArgs{}, fmt.Errorf("circle cell %q is not a number", a)
		}
		out.CircleCells = append(out.CircleCells, n)
	}
	return out, nil
}
