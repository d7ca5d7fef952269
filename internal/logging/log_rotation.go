package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// LogRotation archives the log file at startup once it grows too large or
// too old, and keeps only the newest archives.
type LogRotation struct {
	maxSize int64
	maxAge  time.Duration
	keep    int
	now     func() time.Time
}

var defaultRotation = NewLogRotation(64<<20, 7*24*time.Hour, 5)

func NewLogRotation(maxSize int64, maxAge time.Duration, keep int) *LogRotation {
	return &LogRotation{
		maxSize: maxSize,
		maxAge:  maxAge,
		keep:    keep,
		now:     time.Now,
	}
}

func (lr *LogRotation) ShouldRotate(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return false
	}

	if info.Size() >= lr.maxSize {
		return true
	}

	return lr.now().Sub(info.ModTime()) >= lr.maxAge
}

func (lr *LogRotation) Rotate(path string) (string, error) {
	timestamp := lr.now().Format("20060102-150405")
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]

	newPath := fmt.Sprintf("%s-%s%s", base, timestamp, ext)
	if err := os.Rename(path, newPath); err != nil {
		return "", err
	}
	return newPath, lr.prune(base, ext)
}

// prune removes archives beyond the newest keep.
func (lr *LogRotation) prune(base, ext string) error {
	archives, err := filepath.Glob(base + "-*" + ext)
	if err != nil || len(archives) <= lr.keep {
		return err
	}
	// the timestamp suffix sorts chronologically
	sort.Strings(archives)
	for _, old := range archives[:len(archives)-lr.keep] {
		if err := os.Remove(old); err != nil {
			return err
		}
	}
	return nil
}
