// Package snapshot reads and writes snapshot files: a few "# " header lines
// followed by '&'-delimited records, grouped by directory markers.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/natefinch/atomic"

	"pkg.jsn.cam/ficheck/cmd/ficheck/pkg/data"
)

// Delimiter separates the fields of a record
const Delimiter = '&'

const (
	headerPrefix = "# "
	beginPrefix  = "#-----------------BEGIN DIRECTORY "
	endPrefix    = "#-----------------END DIRECTORY "
	markerSuffix = "--------------------"
)

// BeginMarker returns the line that opens the group of root
func BeginMarker(root string) string {
	return beginPrefix + root + markerSuffix
}

// EndMarker returns the line that closes the group of root
func EndMarker(root string) string {
	return endPrefix + root + markerSuffix
}

// parseMarker recognizes a BEGIN or END line
func parseMarker(s string) (data.Record, bool) {
	if !strings.HasSuffix(s, markerSuffix) {
		return data.Record{}, false
	}
	switch {
	case strings.HasPrefix(s, beginPrefix):
		return data.BeginRecord(strings.TrimSuffix(strings.TrimPrefix(s, beginPrefix), markerSuffix)), true
	case strings.HasPrefix(s, endPrefix):
		return data.EndRecord(strings.TrimSuffix(strings.TrimPrefix(s, endPrefix), markerSuffix)), true
	default:
		return data.Record{}, false
	}
}

// Writer appends records to a snapshot file. It satisfies walker.Sink.
type Writer struct {
	path    string
	file    *os.File
	csv     *csv.Writer
	entries int
}

// Create creates or truncates path and writes the header lines to it
func Create(path string, header []string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot file: %w", err)
	}

	for _, line := range header {
		if !strings.HasPrefix(line, headerPrefix) {
			line = headerPrefix + line
		}
		if _, err := io.WriteString(file, line+"\n"); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write snapshot header: %w", err)
		}
	}

	w := csv.NewWriter(file)
	w.Comma = Delimiter

	return &Writer{path: path, file: file, csv: w}, nil
}

// Path returns the file the writer writes to
func (w *Writer) Path() string { return w.path }

// Entries returns how many entry records were written
func (w *Writer) Entries() int { return w.entries }

func (w *Writer) Begin(root string) error {
	return w.write([]string{BeginMarker(root)})
}

func (w *Writer) End(root string) error {
	return w.write([]string{EndMarker(root)})
}

func (w *Writer) Entry(e data.Entry) error {
	fields := make([]string, 0, data.EntryFields)
	fields = append(fields, e.Path)
	for _, f := range data.Fields {
		fields = append(fields, f.Value(e))
	}
	if err := w.write(fields); err != nil {
		return err
	}
	w.entries++
	return nil
}

func (w *Writer) write(fields []string) error {
	if err := w.csv.Write(fields); err != nil {
		return fmt.Errorf("failed to write snapshot record: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the file
func (w *Writer) Close() error {
	var result *multierror.Error

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to flush snapshot: %w", err))
	}
	if err := w.file.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to close snapshot: %w", err))
	}

	return result.ErrorOrNil()
}

// Reader is a pull cursor over the records of a snapshot file. Header lines
// and malformed lines are skipped.
type Reader struct {
	file    *os.File
	csv     *csv.Reader
	err     error
	skipped int
}

// Open opens a snapshot for reading
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}

	r := csv.NewReader(file)
	r.Comma = Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	return &Reader{file: file, csv: r}, nil
}

// Next returns the next well-formed record. It returns false at the end of
// the file or on a read error, see Err.
func (r *Reader) Next() (data.Record, bool) {
	for r.err == nil {
		fields, err := r.csv.Read()
		if err != nil {
			var perr *csv.ParseError
			switch {
			case errors.Is(err, io.EOF):
				return data.Record{}, false
			case errors.As(err, &perr):
				r.skipped++
				continue
			default:
				r.err = fmt.Errorf("failed to read snapshot: %w", err)
				return data.Record{}, false
			}
		}

		if rec, ok := parseRecord(fields); ok {
			return rec, true
		}
		if !strings.HasPrefix(fields[0], headerPrefix) {
			r.skipped++
		}
	}
	return data.Record{}, false
}

// Err returns the first I/O error hit by Next
func (r *Reader) Err() error { return r.err }

// Skipped returns how many malformed lines Next has passed over
func (r *Reader) Skipped() int { return r.skipped }

func (r *Reader) Close() error {
	return r.file.Close()
}

func parseRecord(fields []string) (data.Record, bool) {
	switch len(fields) {
	case 1:
		return parseMarker(fields[0])
	case data.EntryFields:
		if strings.HasPrefix(fields[0], headerPrefix) {
			return data.Record{}, false
		}
		e, err := parseEntry(fields)
		if err != nil {
			return data.Record{}, false
		}
		return data.EntryRecord(e), true
	default:
		return data.Record{}, false
	}
}

func parseEntry(fields []string) (data.Entry, error) {
	var (
		e   data.Entry
		err error
	)

	e.Path = fields[0]
	if e.Path == "" {
		return e, errors.New("empty path")
	}
	e.Perm = fields[2]
	if e.Perm == "" {
		return e, errors.New("empty permissions")
	}

	if e.Inode, err = strconv.ParseUint(fields[1], 10, 64); err != nil {
		return e, err
	}
	if e.Links, err = strconv.ParseUint(fields[3], 10, 64); err != nil {
		return e, err
	}
	uid, err := strconv.ParseUint(fields[4], 10, 32)
	if err != nil {
		return e, err
	}
	gid, err := strconv.ParseUint(fields[5], 10, 32)
	if err != nil {
		return e, err
	}
	e.UID, e.GID = uint32(uid), uint32(gid)

	if e.Size, err = strconv.ParseInt(fields[6], 10, 64); err != nil {
		return e, err
	}
	if e.Ctime, err = strconv.ParseInt(fields[7], 10, 64); err != nil {
		return e, err
	}
	if e.Mtime, err = strconv.ParseInt(fields[8], 10, 64); err != nil {
		return e, err
	}
	if e.Btime, err = strconv.ParseInt(fields[9], 10, 64); err != nil {
		return e, err
	}

	e.Digest, err = data.ParseDigest(fields[10], e.Type())
	return e, err
}

// Promote makes the new snapshot the baseline. The baseline is replaced
// atomically and never written in place.
func Promote(newPath, baselinePath string) error {
	if err := os.MkdirAll(filepath.Dir(baselinePath), 0o755); err != nil {
		return fmt.Errorf("failed to create baseline directory: %w", err)
	}

	renameErr := atomic.ReplaceFile(newPath, baselinePath)
	if renameErr == nil {
		return nil
	}

	// the new snapshot usually sits on a different filesystem (/run), so
	// fall back to copying it next to the baseline and renaming from there
	if err := copyReplace(newPath, baselinePath); err != nil {
		return fmt.Errorf("failed to promote snapshot: %w", multierror.Append(renameErr, err))
	}
	return Discard(newPath)
}

func copyReplace(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	return atomic.WriteFile(dst, f)
}

// Discard removes a snapshot that will not be promoted
func Discard(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

// Exists reports whether a snapshot file is present at path
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
