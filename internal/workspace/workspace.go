// Package workspace materializes the file tree of one package build.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mmlnetwork/mmlpack/internal/luau"
)

var (
	ErrInvalidBuildID = errors.New("invalid build id")
	ErrInvalidName    = errors.New("invalid file name")
	ErrNoManifest     = errors.New("manifest not written")
)

// Workspace is a directory owned by exactly one build.
type Workspace struct {
	Dir     string
	BuildID string
	Log     *slog.Logger // carries build_id


	manifest []byte
}

// Prepare creates root/build-{buildID}, deleting whatever was there before.
func Prepare(root, buildID string) (*Workspace, error) {
	if buildID == "" || strings.ContainsAny(buildID, `/\`) || buildID == "." || buildID == ".." {
		return nil, fmt.Errorf("workspace.Prepare: %w: %q", ErrInvalidBuildID, buildID)
	}

	dir := filepath.Join(root, "build-"+buildID)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("workspace.Prepare: %w", err)
	}
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, fmt.Errorf("workspace.Prepare: %w", err)
	}

	return &Workspace{Dir: dir, BuildID: buildID, Log: slog.Default().With("build_id", buildID)}, nil
}

// Path returns the path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// WriteFiles writes each file. Names must stay inside the workspace.
func (w *Workspace) WriteFiles(files map[string]string) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if err := w.writeFile(name, []byte(files[name])); err != nil {
			return fmt.Errorf("workspace.WriteFiles: %w", err)
		}
	}
	return nil
}

func (w *Workspace) writeFile(name string, content []byte) error {
	if !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	file := w.Path(name)
	if err := os.MkdirAll(filepath.Dir(file), 0o777); err != nil {
		return err
	}
	return os.WriteFile(file, content, 0o666)
}

// CopyLibrary copies the named files from srcDir, prepending the build
// marker to each. A missing file is logged and skipped. It returns the
// names that were copied, in input order.
func (w *Workspace) CopyLibrary(srcDir string, names []string) ([]string, error) {
	copied := make([]string, 0, len(names))
	header := []byte(luau.Marker(w.BuildID) + "\n")

	for _, name := range names {
		if !filepath.IsLocal(name) {
			return nil, fmt.Errorf("workspace.CopyLibrary: %w: %q", ErrInvalidName, name)
		}

		content, err := os.ReadFile(filepath.Join(srcDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			w.log().Warn("didn't find library file", "name", name, "dir", srcDir)
			continue
		} else if err != nil {
			return nil, fmt.Errorf("workspace.CopyLibrary: %w", err)
		}

		if err = w.writeFile(name, slices.Concat(header, content)); err != nil {
			return nil, fmt.Errorf("workspace.CopyLibrary: %w", err)
		}
		copied = append(copied, name)
	}

	return copied, nil
}

// WriteManifest validates m and writes it as the project file.
func (w *Workspace) WriteManifest(m *Manifest) error {
	data, err := m.Encode()
	if err != nil {
		return fmt.Errorf("workspace.WriteManifest: %w", err)
	}
	if err = Validate(data); err != nil {
		return fmt.Errorf("workspace.WriteManifest: %w", err)
	}
	if err = w.writeFile(ManifestFile, data); err != nil {
		return fmt.Errorf("workspace.WriteManifest: %w", err)
	}
	w.manifest = data
	return nil
}

// RewriteManifest writes the last written manifest again, unchanged.
func (w *Workspace) RewriteManifest() error {
	if w.manifest == nil {
		return fmt.Errorf("workspace.RewriteManifest: %w", ErrNoManifest)
	}
	if err := w.writeFile(ManifestFile, w.manifest); err != nil {
		return fmt.Errorf("workspace.RewriteManifest: %w", err)
	}
	return nil
}

// Remove deletes the workspace directory. It may be called more than once.
func (w *Workspace) Remove() error {
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("workspace.Remove: %w", err)
	}
	return nil
}

func (w *Workspace) log() *slog.Logger {
	if w.Log == nil {
		return slog.Default()
	}
	return w.Log
}
