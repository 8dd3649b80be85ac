package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// query_guard scans the sqlc query files. Shipment history and tariff rates
// are read-only reference data, and every UPDATE or DELETE must carry a WHERE
// clause. Exit code 0 = ok, 1 = violation, 2 = other error.
func main() {
	root := "internal/db/queries"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	violations, err := scan(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query_guard error: %v\n", err)
		os.Exit(2)
	}
	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "VIOLATION: %s\n", v)
		}
		os.Exit(1)
	}
	fmt.Println("query_guard: OK")
}

var (
	reName       = regexp.MustCompile(`^--\s*name:\s*(\w+)`)
	reWrite      = regexp.MustCompile(`(?i)\b(insert\s+into|update|delete\s+from|truncate)\s+(\w+)`)
	reMutation   = regexp.MustCompile(`(?i)^\s*(update|delete)\b`)
	reWhere      = regexp.MustCompile(`(?i)\bwhere\b`)
	readOnlyRefs = map[string]bool{"shipment_history": true, "tariff_rates": true}
)

func scan(dir string) ([]string, error) {
	var violations []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		found, err := checkFile(path)
		if err != nil {
			return err
		}
		violations = append(violations, found...)
		return nil
	})
	return violations, err
}

// statement is one named sqlc query.
type statement struct {
	name string
	body strings.Builder
}

func checkFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var stmts []*statement
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Text()
		if m := reName.FindStringSubmatch(line); m != nil {
			stmts = append(stmts, &statement{name: m[1]})
			continue
		}
		if len(stmts) == 0 {
			continue
		}
		cur := stmts[len(stmts)-1]
		cur.body.WriteString(line)
		cur.body.WriteByte('\n')
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	var violations []string
	for _, st := range stmts {
		for _, v := range checkStatement(st.body.String()) {
			violations = append(violations, fmt.Sprintf("%s %s: %s", path, st.name, v))
		}
	}
	return violations, nil
}

func checkStatement(sql string) []string {
	var out []string
	for _, m := range reWrite.FindAllStringSubmatch(sql, -1) {
		if readOnlyRefs[strings.ToLower(m[2])] {
			out = append(out, "writes read-only table "+strings.ToLower(m[2]))
		}
	}
	first := strings.TrimSpace(sql)
	if reMutation.MatchString(first) && !reWhere.MatchString(sql) {
		out = append(out, "UPDATE/DELETE without WHERE")
	}
	return out
}
