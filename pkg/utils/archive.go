package utils

import (
	"archive/zip"
	"fmt"
	"io"
	"time"
)

// NamedFile is an in-memory file destined for an archive.
type NamedFile struct {
	Name string
	Data []byte
}

// WriteZip writes files into a zip archive on w, in order, stamped with modified.
func WriteZip(w io.Writer, files []NamedFile, modified time.Time) error {
	zw := zip.NewWriter(w)

	for _, f := range files {
		header := &zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: modified,
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", f.Name, err)
		}
		if _, err := entry.Write(f.Data); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}
