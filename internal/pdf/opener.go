// Package pdf locates, opens and inspects the PDF files attached to papers.
package pdf

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

var (
	// ErrNoPaper is returned when the requested paper does not exist.
	ErrNoPaper = errors.New("paper not found")
	// ErrNoFile is returned when a paper has no PDF path recorded.
	ErrNoFile = errors.New("no PDF file recorded")
	// ErrFileMissing is returned when the recorded PDF is not on disk.
	ErrFileMissing = errors.New("PDF file missing")
)

// OpenFunc hands a resolved PDF path to a viewer.
type OpenFunc func(path string) error

// PathLookup returns the stored PDF path of a paper and whether the paper exists.
type PathLookup interface {
	GetPaperFilePath(id int64) (string, bool, error)
}

// Opener resolves stored PDF paths and opens them in a viewer.
type Opener struct {
	pdfDir string
	reader string
}

// NewOpener creates an opener. Relative paths resolve against pdfDir;
// an empty reader means the platform default viewer.
func NewOpener(pdfDir, reader string) *Opener {
	if reader == "" {
		reader = "system"
	}
	return &Opener{
		pdfDir: pdfDir,
		reader: reader,
	}
}

// ResolvePath turns a stored path into one that exists on disk. Absolute
// paths are used as is; relative ones are joined onto the PDF directory.
func (o *Opener) ResolvePath(stored string) (string, error) {
	if stored == "" {
		return "", ErrNoFile
	}

	fullPath := stored
	if !filepath.IsAbs(stored) && o.pdfDir != "" {
		fullPath = filepath.Join(o.pdfDir, stored)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileMissing, fullPath)
		}
		return "", fmt.Errorf("checking PDF: %w", err)
	}

	return fullPath, nil
}

// Open starts the configured viewer on fullPath and returns without
// waiting for it to exit.
func (o *Opener) Open(fullPath string) error {
	cmd, err := viewerCommand(runtime.GOOS, o.reader, fullPath)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", cmd.Path, err)
	}
	// Reap the viewer once it exits.
	go cmd.Wait()
	return nil
}

// viewerCommand returns the command that opens path with reader on goos.
func viewerCommand(goos, reader, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		switch reader {
		case "skim":
			return exec.Command("open", "-a", "Skim", path), nil
		case "preview":
			return exec.Command("open", "-a", "Preview", path), nil
		default: // "system"
			return exec.Command("open", path), nil
		}
	case "linux", "freebsd", "openbsd", "netbsd":
		switch reader {
		case "zathura", "evince", "okular":
			return exec.Command(reader, path), nil
		default: // "system"
			return exec.Command("xdg-open", path), nil
		}
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// OpenPaper looks up a paper's PDF, resolves it and opens it. It returns
// the resolved path, also on failure to open when resolution succeeded.
func OpenPaper(lookup PathLookup, id int64, resolve func(string) (string, error), open OpenFunc) (string, error) {
	stored, found, err := lookup.GetPaperFilePath(id)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %d", ErrNoPaper, id)
	}

	fullPath, err := resolve(stored)
	if err != nil {
		return "", err
	}

	if err := open(fullPath); err != nil {
		return fullPath, fmt.Errorf("opening %s: %w", fullPath, err)
	}
	return fullPath, nil
}
