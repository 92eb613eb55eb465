package logging

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	filePrefix = "bellsync_"
	fileSuffix = ".log"
)

// rotate removes the oldest bellsync_*.log files in dir so that at most
// maxFiles-1 remain before a new file is created.
func rotate(dir string, maxFiles int) error {
	if maxFiles <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	type logFile struct {
		path  string
		mtime int64
	}
	var files []logFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(dir, name), mtime: info.ModTime().UnixNano()})
	}
	keep := maxFiles - 1
	if len(files) <= keep {
		return nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mtime < files[j].mtime })
	for _, f := range files[:len(files)-keep] {
		os.Remove(f.path)
	}
	return nil
}
