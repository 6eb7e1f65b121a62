// Command midiopsy dumps a Standard MIDI File (or an RMID wrapper around one)
// as side-by-side hex and commentary, and answers time-scoped attribute
// queries per track.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/asigalov61/MIDIopsy/midi"
	"github.com/asigalov61/MIDIopsy/riff"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type config struct {
	path      string
	verbose   bool
	chunk     int
	at        int64
	query     bool
	conductor bool
	hexWidth  int
	rmidOut   string
}

func parseFlags(args []string) (*config, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("midiopsy", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	fs.IntVar(&cfg.chunk, "chunk", -1, "only dump the chunk at this index")
	at := fs.Int64("at", -1, "report key signature, tempo and time signature of every track at this tick")
	fs.BoolVar(&cfg.conductor, "conductor", false, "treat the first track of a format 1 file as file-wide")
	fs.IntVar(&cfg.hexWidth, "width", 48, "width of the hex column")
	fs.StringVar(&cfg.rmidOut, "rmid", "", "also write the file wrapped as RMID to this path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, errors.New("usage: midiopsy [flags] file.mid")
	}
	cfg.path = fs.Arg(0)
	if *at >= 0 {
		cfg.at, cfg.query = *at, true
	}
	if cfg.hexWidth < 8 {
		return nil, errors.Errorf("width %d is too narrow", cfg.hexWidth)
	}
	return cfg, nil
}

// load parses raw bytes, unwrapping RMID first when needed.
func load(content []byte, cfg *config) (*midi.File, error) {
	if riff.IsRIFF(content) {
		log.Debug("unwrapping RMID container")
		unwrapped, err := riff.Unwrap(bytes.NewReader(content))
		if err != nil {
			return nil, errors.Wrap(err, "reading RMID")
		}
		content = unwrapped
	}
	opts := []midi.Option{midi.WithLogger(log.StandardLogger())}
	if cfg.conductor {
		opts = append(opts, midi.WithConductorGlobals())
	}
	return midi.Parse(content, opts...)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	commentStyle = lipgloss.NewStyle().PaddingLeft(2)
)

func renderChunk(b *strings.Builder, index int, c *midi.Chunk, hexWidth int) {
	hexStyle := lipgloss.NewStyle().Width(hexWidth)
	b.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s (%s, offset %d)", index, c.Tag(), c.Kind(), c.Offset)))
	b.WriteString("\n")
	for i := 0; i < c.Len(); i++ {
		item, err := c.ItemAt(i)
		if err != nil {
			continue
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			hexStyle.Render(item.Hex()),
			commentStyle.Render(item.Comment())))
		b.WriteString("\n")
	}
}

func render(f *midi.File, cfg *config) (string, error) {
	var b strings.Builder
	if cfg.chunk >= 0 {
		c, err := f.ChunkAt(cfg.chunk)
		if err != nil {
			return "", err
		}
		renderChunk(&b, cfg.chunk, c, cfg.hexWidth)
	} else {
		for i, c := range f.Chunks() {
			renderChunk(&b, i, c, cfg.hexWidth)
		}
	}
	if cfg.query {
		b.WriteString(attributes(f, cfg.at))
	}
	return b.String(), nil
}

// attributes reports every track's attribute values at tick, falling back to
// the format defaults where neither the track nor the file sets one.
func attributes(f *midi.File, tick int64) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Attributes at tick %d", tick)))
	b.WriteString("\n")
	for i, track := range f.Tracks() {
		ks, ok := track.KeySignature(tick)
		if !ok {
			ks = midi.DefaultKeySignature
		}
		tempo, ok := track.Tempo(tick)
		if !ok {
			tempo = midi.DefaultTempo
		}
		ts, ok := track.TimeSignature(tick)
		if !ok {
			ts = midi.DefaultTimeSignature
		}
		fmt.Fprintf(&b, "track %d: key %s; tempo %s; time %s\n", i, ks, tempo, ts)
	}
	return b.String()
}

func writeRMID(path string, content []byte) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	w, err := riff.NewWriter(out)
	if err != nil {
		return err
	}
	if err := w.Write(content); err != nil {
		return err
	}
	return w.Close()
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg.verbose {
		log.SetLevel(log.DebugLevel)
	}
	content, err := os.ReadFile(cfg.path)
	if err != nil {
		log.Fatalf("ReadFile %v", err)
	}
	f, err := load(content, cfg)
	if err != nil {
		log.Fatalf("parse %s: %v", cfg.path, err)
	}
	out, err := render(f, cfg)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(out)

	if cfg.rmidOut != "" {
		if err := writeRMID(cfg.rmidOut, f.Bytes()); err != nil {
			log.Fatalf("write %s: %v", cfg.rmidOut, err)
		}
		log.WithField("path", cfg.rmidOut).Info("wrote RMID")
	}
}
