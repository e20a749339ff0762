package client

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Status reads branch and file state with a single porcelain v2 call.
func (c *Repo) Status(ctx context.Context) (Status, error) {
	out, err := c.run(ctx, "status", "--porcelain=v2", "--branch", "--untracked-files=all")
	if err != nil {
		return Status{}, err
	}
	return parseStatusV2(out)
}

func parseStatusV2(output string) (Status, error) {
	st := Status{
		Staged:     []string{},
		Unstaged:   []string{},
		Modified:   []string{},
		Deleted:    []string{},
		Untracked:  []string{},
		Conflicted: []string{},
		Renamed:    []RenamedFile{},
	}
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		switch line[0] {
		case '#':
			parseBranchHeader(&st, line)
		case '1':
			// 1 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <path>
			parts := strings.SplitN(line, " ", 9)
			if len(parts) < 9 || len(parts[1]) != 2 {
				continue
			}
			classify(&st, parts[1][0], parts[1][1], unquote(parts[8]))
		case '2':
			// 2 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <X><score> <path><tab><origPath>
			parts := strings.SplitN(line, " ", 10)
			if len(parts) < 10 || len(parts[1]) != 2 {
				continue
			}
			paths := strings.SplitN(parts[9], "\t", 2)
			path := unquote(paths[0])
			if len(paths) == 2 {
				st.Renamed = append(st.Renamed, RenamedFile{From: unquote(paths[1]), To: path})
			}
			classify(&st, parts[1][0], parts[1][1], path)
		case 'u':
			// u <XY> <sub> <m1> <m2> <m3> <mW> <h1> <h2> <h3> <path>
			parts := strings.SplitN(line, " ", 11)
			if len(parts) < 11 {
				continue
			}
			st.Conflicted = append(st.Conflicted, unquote(parts[10]))
		case '?':
			if len(line) > 2 {
				st.Untracked = append(st.Untracked, unquote(line[2:]))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Status{}, fmt.Errorf("scan git status: %w", err)
	}
	st.Clean = len(st.Staged) == 0 && len(st.Unstaged) == 0 && len(st.Untracked) == 0 &&
		len(st.Conflicted) == 0
	return st, nil
}

func parseBranchHeader(st *Status, line string) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return
	}
	switch fields[1] {
	case "branch.oid":
		if fields[2] != "(initial)" {
			st.HeadCommit = fields[2]
		}
	case "branch.head":
		if fields[2] == "(detached)" {
			st.Detached = true
		} else {
			st.Current = fields[2]
		}
	case "branch.upstream":
		st.Tracking = fields[2]
	case "branch.ab":
		if len(fields) >= 4 {
			st.Ahead, _ = strconv.Atoi(strings.TrimPrefix(fields[2], "+"))
			st.Behind, _ = strconv.Atoi(strings.TrimPrefix(fields[3], "-"))
		}
	}
}

// classify files a changed entry by its index (x) and worktree (y) codes.
func classify(st *Status, x, y byte, path string) {
	if x != '.' {
		st.Staged = append(st.Staged, path)
	}
	if y != '.' {
		st.Unstaged = append(st.Unstaged, path)
		if y == 'M' || y == 'T' {
			st.Modified = append(st.Modified, path)
		}
	}
	if x == 'D' || y == 'D' {
		st.Deleted = append(st.Deleted, path)
	}
}

func unquote(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "\"") {
		if decoded, err := strconv.Unquote(path); err == nil {
			return decoded
		}
	}
	return path
}

// DiffStats aggregates staged + unstaged line counts per changed file.
func (c *Repo) DiffStats(ctx context.Context) ([]FileDiffStat, error) {
	statusMap, err := c.porcelainCodes(ctx)
	if err != nil {
		return nil, err
	}

	numstat := make(map[string][2]int)
	if err := c.accumulateNumstat(ctx, []string{"diff", "--numstat", "--no-renames", "HEAD"}, numstat); err != nil {
		// unborn HEAD: compare against the empty tree instead
		const emptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"
		if err := c.accumulateNumstat(ctx, []string{"diff", "--numstat", "--no-renames", emptyTreeHash}, numstat); err != nil {
			return nil, err
		}
	}

	result := make([]FileDiffStat, 0, len(statusMap))
	seen := make(map[string]bool)
	appendEntry := func(path string) {
		if seen[path] {
			return
		}
		entry := FileDiffStat{Path: path, Status: statusMap[path]}
		if counts, ok := numstat[path]; ok {
			entry.Added = counts[0]
			entry.Removed = counts[1]
		}
		result = append(result, entry)
		seen[path] = true
	}
	for p := range statusMap {
		appendEntry(p)
	}
	for p := range numstat {
		appendEntry(p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

func (c *Repo) porcelainCodes(ctx context.Context) (map[string]string, error) {
	output, err := c.run(ctx, "status", "--porcelain", "--untracked-files=all")
	if err != nil {
		return nil, err
	}
	status := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 4 {
			continue
		}
		code := strings.TrimSpace(line[:2])
		rawPath := line[3:]
		if idx := strings.LastIndex(rawPath, " -> "); idx >= 0 {
			rawPath = rawPath[idx+4:]
		}
		path := unquote(rawPath)
		if code == "" || path == "" {
			continue
		}
		status[path] = code
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan git status: %w", err)
	}
	return status, nil
}

func (c *Repo) accumulateNumstat(ctx context.Context, args []string, accum map[string][2]int) error {
	output, err := c.run(ctx, args...)
	if err != nil {
		return err
	}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) < 3 {
			continue
		}
		path := strings.TrimSpace(parts[2])
		if path == "" {
			continue
		}
		path = unquote(path)
		cur := accum[path]
		cur[0] += parseNum(parts[0])
		cur[1] += parseNum(parts[1])
		accum[path] = cur
	}
	return scanner.Err()
}

func parseNum(v string) int {
	v = strings.TrimSpace(v)
	if v == "-" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
