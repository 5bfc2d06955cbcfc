package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-mailfix/pkg/mjml"
)

const stdinName = "-"

var templateExts = map[string]bool{".html": true, ".htm": true, mjml.Ext: true}

// collectInputs expands directories into the templates they contain.
// "-" stands for standard input.
func collectInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if arg == stdinName {
			paths = append(paths, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && templateExts[strings.ToLower(filepath.Ext(path))] {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no templates found in %s", strings.Join(args, ", "))
	}
	return paths, nil
}

// loader reads templates, compiling MJML sources to HTML first.
type loader struct {
	stdin    io.Reader
	renderer *mjml.Renderer
	data     any
}

func newLoader(stdin io.Reader, dataFile string) (*loader, error) {
	l := &loader{
		stdin:    stdin,
		renderer: mjml.NewRenderer(),
		data:     map[string]any{},
	}
	if dataFile == "" {
		return l, nil
	}
	raw, err := os.ReadFile(dataFile)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	var data map[string]any
	switch strings.ToLower(filepath.Ext(dataFile)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &data)
	default:
		err = json.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", dataFile, err)
	}
	l.data = data
	return l, nil
}

// load returns the HTML for path.
func (l *loader) load(path string) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == stdinName {
		raw, err = io.ReadAll(l.stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}

	content := string(raw)
	if !mjml.IsSource(path, content) {
		return content, nil
	}
	if err := l.renderer.LoadTemplate(path, content); err != nil {
		return "", err
	}
	return l.renderer.RenderTemplate(path, l.data)
}

// outputPath names the repaired copy of path inside dir.
func outputPath(dir, path string) string {
	if path == stdinName {
		return filepath.Join(dir, "stdin.html")
	}
	base := filepath.Base(path)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".html")
}

func displayName(path string) string {
	if path == stdinName {
		return "<stdin>"
	}
	return path
}
