package archiver

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/klauspost/compress/zstd"
)

type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (m memoryFileInfo) Name() string       { return m.name }
func (m memoryFileInfo) Size() int64        { return m.size }
func (m memoryFileInfo) Mode() fs.FileMode  { return m.mode }
func (m memoryFileInfo) ModTime() time.Time { return m.modTime }
func (m memoryFileInfo) IsDir() bool        { return false }
func (m memoryFileInfo) Sys() any           { return nil }

func BundleFilename(now time.Time) string {
	return fmt.Sprintf("trip-summaries-%s.tar.zst", now.UTC().Format("20060102T150405Z"))
}

func DocumentFilename(document *ArchivedTripSummary) string {
	return fmt.Sprintf("%d.json", document.TripID)
}

// WriteBundle writes every document as its own JSON file into a zstd
// compressed tar stream.
func WriteBundle(w io.Writer, documents []*ArchivedTripSummary, now time.Time) error {
	zstdWriter, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	tarWriter := tar.NewWriter(zstdWriter)

	for _, document := range documents {
		documentJSON, err := json.Marshal(document)
		if err != nil {
			zstdWriter.Close()
			return fmt.Errorf("marshal trip %d: %w", document.TripID, err)
		}

		filename := DocumentFilename(document)
		header, err := tar.FileInfoHeader(memoryFileInfo{
			name:    filename,
			size:    int64(len(documentJSON)),
			mode:    0644,
			modTime: now,
		}, filename)
		if err != nil {
			zstdWriter.Close()
			return err
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			zstdWriter.Close()
			return err
		}
		if _, err := tarWriter.Write(documentJSON); err != nil {
			zstdWriter.Close()
			return err
		}
	}

	if err := tarWriter.Close(); err != nil {
		zstdWriter.Close()
		return err
	}

	return zstdWriter.Close()
}
