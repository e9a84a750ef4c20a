package model

import (
	"strconv"
	"strings"
)

// DenseIDs numbers distinct names 1..n in first-seen order. Blank names get
// an empty id.
func DenseIDs(names []string) []string {
	ids := make(map[string]string, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		id, ok := ids[n]
		if !ok {
			id = strconv.Itoa(len(ids) + 1)
			ids[n] = id
		}
		out[i] = id
	}
	return out
}

// FillConstructorIDs gives rows with a blank constructor id one derived from
// their constructor name: the id another row already uses for that name, or
// else the next unused number. Rows without a name stay blank. Returns how
// many rows were filled.
func FillConstructorIDs(rows []Result) int {
	byName := make(map[string]string)
	used := make(map[string]bool)
	for i := range rows {
		id := strings.TrimSpace(rows[i].ConstructorID)
		if id == "" {
			continue
		}
		used[id] = true
		if name := strings.TrimSpace(rows[i].ConstructorName); name != "" {
			if _, ok := byName[name]; !ok {
				byName[name] = id
			}
		}
	}

	filled, next := 0, 1
	for i := range rows {
		if strings.TrimSpace(rows[i].ConstructorID) != "" {
			continue
		}
		name := strings.TrimSpace(rows[i].ConstructorName)
		if name == "" {
			continue
		}
		id, ok := byName[name]
		if !ok {
			for used[strconv.Itoa(next)] {
				next++
			}
			id = strconv.Itoa(next)
			used[id] = true
			byName[name] = id
		}
		rows[i].ConstructorID = id
		filled++
	}
	return filled
}
