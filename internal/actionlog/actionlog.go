package actionlog

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"multibroker-console/internal/dispatch"
)

var ist = time.FixedZone("IST", 19800)

// Log appends every submitted batch to a daily JSONL file. Trading days are
// IST days regardless of where the console runs.
type Log struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) *Log {
	if v := os.Getenv("CONSOLE_LOG_DIR"); v != "" {
		dir = v
	}
	if dir == "" {
		dir = "action_logs"
	}
	return &Log{dir: dir}
}

type record struct {
	Time string `json:"time"`
	*dispatch.Result
}

func (l *Log) dailyFilepath(t time.Time) string {
	return filepath.Join(l.dir, t.In(ist).Format("2006-01-02")+".jsonl")
}

// Record satisfies dispatch.Recorder.
func (l *Log) Record(ctx context.Context, r *dispatch.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().In(ist)
	p := l.dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(record{Time: now.Format("2006-01-02 15:04:05"), Result: r})
	if err != nil {
		return err
	}
	_, err = f.Write(append(b, '\n'))
	return err
}

// Read returns the batches recorded on the given IST day, newest last.
func (l *Log) Read(day time.Time) ([]dispatch.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := os.ReadFile(l.dailyFilepath(day))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []dispatch.Result
	for _, line := range splitLines(b) {
		if len(line) == 0 {
			continue
		}
		var r dispatch.Result
		if err := json.Unmarshal(line, &r); err != nil {
			// A torn final line from a crash mid-append is skipped.
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func splitLines(b []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, c := range b {
		if c == '\n' {
			lines = append(lines, b[start:i])
			start = i + 1
		}
	}
	if start < len(b) {
		lines = append(lines, b[start:])
	}
	return lines
}

// CompressOlder gzips daily files past the retention window and removes the
// originals.
func (l *Log) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(l.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e := os.Stat(gz); e == nil {
			return os.Remove(p)
		}

		in, e := os.Open(p)
		if e != nil {
			return nil
		}
		defer in.Close()

		out, e := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e = io.Copy(gw, in); e != nil {
			gw.Close()
			out.Close()
			return nil
		}
		gw.Close()
		out.Close()
		return os.Remove(p)
	})
}
