package teams

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Team struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Conference string `json:"conference"`
}

type Catalog struct {
	teams  []Team
	byCode map[string]Team
}

// Load reads teams.csv from dataDir (best-effort callers may treat a
// missing file as an empty catalog). Expected header: code,name,conference.
func Load(dataDir string) (*Catalog, error) {
	path := filepath.Join(dataDir, "teams.csv")
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv %s has no header", path)
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	c := &Catalog{byCode: map[string]Team{}}
	for _, row := range rows[1:] {
		t := Team{
			Code:       strings.ToUpper(get(row, "code")),
			Name:       get(row, "name"),
			Conference: get(row, "conference"),
		}
		if t.Code == "" {
			continue
		}
		c.teams = append(c.teams, t)
		c.byCode[t.Code] = t
	}
	return c, nil
}

// Empty returns a catalog with no entries; Valid accepts everything on an
// empty catalog so an absent teams.csv never blocks generation.
func Empty() *Catalog {
	return &Catalog{byCode: map[string]Team{}}
}

func (c *Catalog) Len() int { return len(c.teams) }

// Valid reports whether code names a known team. An empty catalog
// validates any code.
func (c *Catalog) Valid(code string) bool {
	if len(c.teams) == 0 {
		return true
	}
	_, ok := c.byCode[strings.ToUpper(code)]
	return ok
}

func (c *Catalog) Get(code string) (Team, bool) {
	t, ok := c.byCode[strings.ToUpper(code)]
	return t, ok
}

// Search matches query words against team codes and names,
// case-insensitively; every word must match somewhere. An empty query
// returns all teams.
func (c *Catalog) Search(query string) []Team {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return append([]Team(nil), c.teams...)
	}
	var out []Team
	for _, t := range c.teams {
		hay := strings.ToLower(t.Code + " " + t.Name + " " + t.Conference)
		ok := true
		for _, w := range words {
			if !strings.Contains(hay, w) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, t)
		}
	}
	return out
}
