package webpanel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoLogFile means the log directory holds no dated log file
var ErrNoLogFile = errors.New("no log file found")

const logDateLayout = "2006-01-02"

// LatestLogFile returns the path of the newest <prefix>YYYY-MM-DD.log file in
// dir, judged by the date in its name. Compressed rotations are skipped.
func LatestLogFile(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoLogFile
		}
		return "", fmt.Errorf("failed to read log directory: %w", err)
	}

	var (
		newest     string
		newestDate time.Time
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".log") {
			continue
		}

		date, err := time.Parse(logDateLayout, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".log"))
		if err != nil {
			continue
		}
		if newest == "" || date.After(newestDate) {
			newest = name
			newestDate = date
		}
	}

	if newest == "" {
		return "", ErrNoLogFile
	}
	return filepath.Join(dir, newest), nil
}

// RecentLines returns the last n non-empty lines of the file, newest first
func RecentLines(path string, n int) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
