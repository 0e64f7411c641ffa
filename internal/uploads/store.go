package uploads

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrDisallowedExtension = errors.New("file extension not allowed")

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// Store writes item images to a local directory under random names and
// hands back the public path they are served from.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create upload directory")
	}
	return &Store{dir: dir}, nil
}

// Save stores the file content under a fresh random name, keeping only the
// extension from the original filename. Returns the public path.
func (s *Store) Save(originalName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrDisallowedExtension
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write upload")
	}
	return "/uploads/" + name, nil
}

// Delete removes a previously stored file given its public path. Missing
// files are not an error.
func (s *Store) Delete(publicPath string) error {
	if publicPath == "" {
		return nil
	}
	err := os.Remove(s.LocalPath(publicPath))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// LocalPath maps a public path or bare file name onto the storage
// directory. Only the base name is used, so traversal is not possible.
func (s *Store) LocalPath(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
