// Package lists loads the flat-file resources the bot consumes from
// the repository: the spam-listed-account registry and the mentor
// roster. Both are line-oriented text files, one entry per line, with
// blank lines and '#' comments ignored.
package lists

import (
	"bufio"
	"log"
	"os"
	"strings"
	"sync"
)

// Loader fetches the raw bytes of a list resource. Implementations
// read a local path or the repository contents API.
type Loader func() ([]byte, error)

// FileLoader reads a list from a local path.
func FileLoader(path string) Loader {
	return func() ([]byte, error) {
		return os.ReadFile(path)
	}
}

// SpamRegistry answers case-insensitive spam-list membership. The
// list loads at most once per process; the parsed set is cached on the
// registry itself, so two registries never share hidden state.
//
// Loading fails open: a missing or unreadable list yields an empty
// set. The list is the only source of restriction it feeds, so an
// internal outage must not penalize contributors.
type SpamRegistry struct {
	load Loader

	once  sync.Once
	users map[string]struct{}
}

// NewSpamRegistry creates a registry over the given loader. A nil
// loader yields a permanently empty registry.
func NewSpamRegistry(load Loader) *SpamRegistry {
	return &SpamRegistry{load: load}
}

// Contains reports whether username is spam-listed.
func (r *SpamRegistry) Contains(username string) bool {
	r.once.Do(r.loadOnce)
	_, ok := r.users[strings.ToLower(strings.TrimSpace(username))]
	return ok
}

// Size returns the number of listed accounts, forcing a load.
func (r *SpamRegistry) Size() int {
	r.once.Do(r.loadOnce)
	return len(r.users)
}

func (r *SpamRegistry) loadOnce() {
	r.users = make(map[string]struct{})
	if r.load == nil {
		return
	}

	data, err := r.load()
	if err != nil {
		log.Printf("[spam] list unavailable, treating as empty: %v", err)
		return
	}

	for _, line := range parseLines(data) {
		r.users[strings.ToLower(line)] = struct{}{}
	}
}

// parseLines splits a line-oriented list, dropping blanks and comments.
func parseLines(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
