package iox

import (
	"io"
	"os"
	"path/filepath"
)

// WriteFile hands write a temporary file next to filename, and moves it into place
// once write succeeds. A failed write never leaves a partial file behind.
func WriteFile(filename string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// WriteStreamToFile copies src into dstFilename
func WriteStreamToFile(dstFilename string, src io.Reader) error {
	return WriteFile(dstFilename, func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
}
