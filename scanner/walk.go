package scanner

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"rom-checker/catalog"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// entry is one eligible file: a real file or a member of an archive.
type entry struct {
	path string // real path, or container/inner for archive members
	name string // last path element, compared against rom names
	real bool   // false for archive members, which are never renamed
	open func() (io.ReadCloser, error)
}

// walk visits every eligible file below root. Directories are processed from a
// FIFO worklist, entries of each directory in lexicographic order. A failure on
// one directory or archive is reported through fail; an error from visit stops the walk.
func (s *Scanner) walk(root string, visit func(entry) error, fail func(string, error)) error {
	worklist := []string{root}
	for len(worklist) > 0 {
		dir := worklist[0]
		worklist = worklist[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			if dir == root {
				return err
			}
			fail(dir, err)
			continue
		}

		for _, de := range entries {
			full := filepath.Join(dir, de.Name())
			if !utf8.ValidString(full) {
				s.log.Debugw("Skipping path that is not valid UTF-8", zap.String("path", full))
				continue
			}
			if strings.HasPrefix(de.Name(), ".") {
				continue
			}

			if de.IsDir() {
				if s.opts.Recursive {
					worklist = append(worklist, full)
				}
				continue
			}
			if !s.regular(full, de) || s.excluded(de.Name()) {
				continue
			}

			if s.opts.Archives && isArchive(de.Name()) {
				if err := s.walkArchive(full, visit, fail); err != nil {
					return err
				}
				continue
			}

			p := full
			err := visit(entry{
				path: p,
				name: de.Name(),
				real: true,
				open: func() (io.ReadCloser, error) { return os.Open(p) },
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// regular reports whether the entry is a regular file. Symlinks count when
// they resolve to one; linked directories are not followed.
func (s *Scanner) regular(full string, de os.DirEntry) bool {
	if de.Type().IsRegular() {
		return true
	}
	if de.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

func (s *Scanner) excluded(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return ext != "" && s.exclude[strings.ToLower(ext)]
}

func isArchive(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// walkArchive visits the eligible members of a zip container as virtual files.
// The container itself is not classified.
func (s *Scanner) walkArchive(container string, visit func(entry) error, fail func(string, error)) error {
	zr, err := zip.OpenReader(container)
	if err != nil {
		fail(container, err)
		return nil
	}
	defer zr.Close()

	members := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !utf8.ValidString(f.Name) {
			continue
		}
		base := path.Base(f.Name)
		if strings.HasPrefix(base, ".") || s.excluded(base) {
			continue
		}
		members = append(members, f)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })

	s.log.Debugw("Descending into archive", zap.String("path", container), zap.Int("members", len(members)))
	for _, f := range members {
		member := f
		err := visit(entry{
			path: container + "/" + member.Name,
			name: catalog.BaseName(member.Name),
			real: false,
			open: func() (io.ReadCloser, error) { return member.Open() },
		})
		if err != nil {
			return err
		}
	}
	return nil
}
