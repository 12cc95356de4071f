// Package tmpl generates session names: the random adjective-noun names
// zellij-style multiplexers hand out when a session isn't explicitly
// named, and an autoIncrement helper that returns "<prefix>-N" one past
// the highest existing suffix.
//
// Grounded in h2's internal/tmpl/namefuncs.go, which generated agent
// names the same collision-avoiding way; loom keeps the FuncMap shape
// and drops the role/system-prompt template rendering that used to live
// alongside it, since loom has no role system. Outside this package's
// tests only GenerateName is called (by `loom run`); no loom code
// executes a template with NameFuncs.
package tmpl

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"text/template"
)

// NameFuncs returns template functions for generating session names.
//
// The returned FuncMap contains:
//   - randomName: generates a random name avoiding collisions with existingNames
//   - autoIncrement: given a prefix, returns "<prefix>-N" where N is max+1
//
// Both functions cache their results so repeated calls (across template passes)
// return the same value. The generateName function is called to produce candidate
// names (typically GenerateName).
func NameFuncs(generateName func() string, existingNames []string) template.FuncMap {
	existing := make(map[string]bool, len(existingNames))
	for _, n := range existingNames {
		existing[n] = true
	}

	var (
		mu              sync.Mutex
		randomCache     string
		randomResolved  bool
		autoIncrCache   = map[string]string{} // prefix → result
	)

	randomNameFn := func() (string, error) {
		mu.Lock()
		defer mu.Unlock()

		if randomResolved {
			return randomCache, nil
		}

		const maxRetries = 100
		for i := 0; i < maxRetries; i++ {
			name := generateName()
			if !existing[name] {
				randomCache = name
				randomResolved = true
				return name, nil
			}
		}
		// Unlikely with GenerateName's 400 adjective-noun combinations
		// and few existing sessions.
		return "", fmt.Errorf("randomName: failed to generate unique name after %d retries", maxRetries)
	}

	autoIncrementFn := func(prefix string) (string, error) {
		mu.Lock()
		defer mu.Unlock()

		if cached, ok := autoIncrCache[prefix]; ok {
			return cached, nil
		}

		maxN := 0
		pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)$`)
		for _, name := range existingNames {
			if m := pattern.FindStringSubmatch(name); m != nil {
				n, _ := strconv.Atoi(m[1])
				if n > maxN {
					maxN = n
				}
			}
		}

		result := fmt.Sprintf("%s-%d", prefix, maxN+1)
		autoIncrCache[prefix] = result
		return result, nil
	}

	return template.FuncMap{
		"randomName":    randomNameFn,
		"autoIncrement": autoIncrementFn,
	}
}
