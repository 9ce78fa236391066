package sessionlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goodtune/equtil/internal/equipment"
)

// Decoder reads session records from a stream.
type Decoder interface {
	Name() string
	Extensions() []string
	Decode(r io.Reader) ([]Record, error)
}

// Encoder writes session records to a stream.
type Encoder interface {
	Encode(w io.Writer, records []Record) error
}

// Registry maps format names and file extensions to decoders.
type Registry struct {
	byName map[string]Decoder
	byExt  map[string]Decoder
}

// NewRegistry creates a registry holding the built-in formats.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]Decoder),
		byExt:  make(map[string]Decoder),
	}
	r.Register(yamlFormat{})
	r.Register(jsonFormat{})
	r.Register(csvFormat{})
	r.Register(msgpackFormat{})
	return r
}

// Register adds or replaces a decoder.
func (r *Registry) Register(d Decoder) {
	r.byName[d.Name()] = d
	for _, ext := range d.Extensions() {
		r.byExt[strings.ToLower(ext)] = d
	}
}

// Formats lists registered format names.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the decoder for format, or for path's extension when
// format is empty.
func (r *Registry) Lookup(path, format string) (Decoder, error) {
	if format != "" {
		d, ok := r.byName[strings.ToLower(format)]
		if !ok {
			return nil, fmt.Errorf("unknown session log format %q (known: %s)", format, strings.Join(r.Formats(), ", "))
		}
		return d, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	d, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("cannot infer session log format from %q", path)
	}
	return d, nil
}

// Decode reads and validates sessions from r.
func (r *Registry) Decode(in io.Reader, format string, loc *time.Location) ([]equipment.Session, error) {
	d, err := r.Lookup("", format)
	if err != nil {
		return nil, err
	}
	records, err := d.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s session log: %w", d.Name(), err)
	}
	return toSessions(records, loc)
}

// Load opens path and decodes its sessions.
func (r *Registry) Load(path, format string, loc *time.Location) ([]equipment.Session, error) {
	d, err := r.Lookup(path, format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sessions, err := r.Decode(f, d.Name(), loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sessions, nil
}

// Encode writes sessions in the named format.
func (r *Registry) Encode(w io.Writer, format string, sessions []equipment.Session) error {
	d, err := r.Lookup("", format)
	if err != nil {
		return err
	}
	enc, ok := d.(Encoder)
	if !ok {
		return fmt.Errorf("format %q does not support encoding", d.Name())
	}
	records := make([]Record, 0, len(sessions))
	for _, s := range sessions {
		records = append(records, FromSession(s))
	}
	return enc.Encode(w, records)
}
