package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type entry struct {
	key   string
	value string
}

// readEntries parses one entry per line: "key" or "key<TAB>value". Empty
// lines are skipped. A key wrapped in double quotes is unquoted with Go
// syntax, which allows arbitrary bytes. In set mode the value is not
// required and ignored.
func readEntries(r io.Reader, set bool) ([]entry, error) {
	var entries []entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSuffix(sc.Text(), "\r")
		if text == "" {
			continue
		}

		key, value, hasValue := strings.Cut(text, "\t")
		if !set && !hasValue {
			return nil, fmt.Errorf("line %d: missing tab-separated value", line)
		}
		if len(key) >= 2 && key[0] == '"' && key[len(key)-1] == '"' {
			unquoted, err := strconv.Unquote(key)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad quoted key %s: %w", line, key, err)
			}
			key = unquoted
		}
		entries = append(entries, entry{key: key, value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return entries, nil
}
