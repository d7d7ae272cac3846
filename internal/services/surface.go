package services

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/pandeptwidyaop/hostkit/internal/models"
	"github.com/pandeptwidyaop/hostkit/internal/validation"
)

var (
	// ErrCancelled indicates the user declined to overwrite the output.
	ErrCancelled = errors.New("cancelled; output file not written")
	// ErrInputNotFound indicates the nmap output file does not exist.
	ErrInputNotFound = errors.New("input file not found")
)

var (
	// DefaultNmapInput is read when nmap2csv runs without arguments.
	DefaultNmapInput = filepath.Join(EnumerationDir, "nmap_sv_sc.nmap")
	// DefaultSurfaceOutput is written when nmap2csv runs without arguments.
	DefaultSurfaceOutput = filepath.Join(EnumerationDir, "surface_map.csv")
)

var portLine = regexp.MustCompile(`(?i)^(\d+)/\s*(tcp|udp)\s+(\S+)\s+(\S+)(?:\s+(.*\S))?\s*$`)

// ParseNmap extracts port rows from plain-text nmap output. Indented lines
// (script output) and blank lines are skipped; with onlyOpen set, rows whose
// state does not start with "open" are dropped.
func ParseNmap(r io.Reader, onlyOpen bool) ([]models.PortRow, error) {
	br := bufio.NewReader(r)

	rows := make([]models.PortRow, 0)
	for {
		raw, err := br.ReadString('\n')
		if row, ok := parsePortLine(raw, onlyOpen); ok {
			rows = append(rows, row)
		}
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func parsePortLine(raw string, onlyOpen bool) (models.PortRow, bool) {
	line := strings.ToValidUTF8(strings.TrimRight(raw, "\r\n"), "\uFFFD")
	if line == "" || unicode.IsSpace(rune(line[0])) {
		return models.PortRow{}, false
	}

	m := portLine.FindStringSubmatch(line)
	if m == nil {
		return models.PortRow{}, false
	}

	state := m[3]
	if onlyOpen && !strings.HasPrefix(strings.ToLower(state), "open") {
		return models.PortRow{}, false
	}

	return models.PortRow{
		Enum:     "N",
		Port:     m[1],
		Protocol: strings.ToLower(m[2]),
		State:    state,
		Service:  m[4],
		Version:  m[5],
	}, true
}

// WriteSurfaceCSV writes the header and rows with CRLF line endings.
func WriteSurfaceCSV(w io.Writer, rows []models.PortRow) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(models.SurfaceColumns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Prompter asks the user a question and returns the trimmed answer.
type Prompter interface {
	Ask(question string) (string, error)
	Say(message string)
}

// LinePrompter reads answers line by line from In and writes prompts to Out.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *LinePrompter) Say(message string) {
	fmt.Fprintln(p.out, message)
}

// Viewer opens a finished CSV for the user.
type Viewer interface {
	Open(path string) error
}

// SurfaceOptions configures one nmap2csv run.
type SurfaceOptions struct {
	Input          string
	Output         string
	IncludeNonOpen bool
}

// SurfaceService converts nmap output into an attack surface CSV.
type SurfaceService struct {
	EnumDir  string
	Prompter Prompter
	Viewer   Viewer
	Warn     io.Writer
}

// NewSurfaceService creates a SurfaceService writing alternatives to enumDir.
func NewSurfaceService(enumDir string, prompter Prompter, viewer Viewer, warn io.Writer) *SurfaceService {
	return &SurfaceService{EnumDir: enumDir, Prompter: prompter, Viewer: viewer, Warn: warn}
}

// Convert parses opts.Input, writes the CSV and opens it in the viewer. It
// returns the path actually written.
func (s *SurfaceService) Convert(opts SurfaceOptions) (string, error) {
	info, err := os.Stat(opts.Input)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrInputNotFound, opts.Input)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0755); err != nil {
		return "", err
	}

	out, err := s.ResolveOutput(opts.Output)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", err
	}

	in, err := os.Open(opts.Input)
	if err != nil {
		return "", err
	}
	rows, err := ParseNmap(in, !opts.IncludeNonOpen)
	_ = in.Close()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", opts.Input, err)
	}

	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	if err := WriteSurfaceCSV(f, rows); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if s.Viewer != nil {
		if err := s.Viewer.Open(out); err != nil && s.Warn != nil {
			fmt.Fprintf(s.Warn, "Warning: %v\n", err)
		}
	}
	return out, nil
}

// ResolveOutput asks before overwriting an existing file: y overwrites, n
// cancels, o asks for another name under EnumDir (and asks again if that one
// exists too).
func (s *SurfaceService) ResolveOutput(path string) (string, error) {
	for {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path, nil
		}

		choice, err := s.overwriteChoice(path)
		if err != nil {
			return "", err
		}
		switch choice {
		case "y":
			return path, nil
		case "n":
			return "", ErrCancelled
		}

		if err := os.MkdirAll(s.EnumDir, 0755); err != nil {
			return "", err
		}
		path, err = s.alternativePath()
		if err != nil {
			return "", err
		}
	}
}

func (s *SurfaceService) overwriteChoice(path string) (string, error) {
	for {
		answer, err := s.Prompter.Ask(fmt.Sprintf("Output file exists: %s\nOverwrite? (y/n/o): ", path))
		if err != nil {
			return "", err
		}
		switch choice := strings.ToLower(answer); choice {
		case "y", "n", "o":
			return choice, nil
		}
		s.Prompter.Say("Invalid choice. Enter 'y' (overwrite), 'n' (cancel), or 'o' (other name).")
	}
}

func (s *SurfaceService) alternativePath() (string, error) {
	for {
		name, err := s.Prompter.Ask(fmt.Sprintf("Enter alternative filename (will be saved under ./%s/): ", s.EnumDir))
		if err != nil {
			return "", err
		}
		if name == "" {
			s.Prompter.Say("Filename cannot be empty.")
			continue
		}
		if err := validation.ValidateFilename(name); err != nil {
			s.Prompter.Say("Invalid filename. Provide a simple filename only (no directories).")
			continue
		}
		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			name += ".csv"
		}
		return filepath.Join(s.EnumDir, name), nil
	}
}

// SurfaceOutputFor picks the CSV path: explicit output, else the default when
// no arguments were given, else "<input>.csv".
func SurfaceOutputFor(input, output string, noArgs bool) string {
	switch {
	case output != "":
		return output
	case noArgs:
		return DefaultSurfaceOutput
	default:
		return input + ".csv"
	}
}
