package image

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
)

// Unwrap returns the contents of a gzip stream or the first member of a
// zip archive. Anything else is returned unchanged.
func Unwrap(data []byte, filename string) ([]byte, error) {
	if len(data) < 2 {
		return data, nil
	}

	if hasPrefix(data, 0x1f, 0x8b) {
		slog.Debug("Detected gzip compression", "file", filename)
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip reader creation failed: %w", err)
		}
		defer reader.Close()

		out, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip decompression failed: %w", err)
		}
		slog.Debug("Gzip decompression successful", "file", filename,
			"original_size", len(data), "decompressed_size", len(out))
		return out, nil
	}

	if len(data) >= 4 && hasPrefix(data, 'P', 'K', 0x03, 0x04) {
		slog.Debug("Detected ZIP archive", "file", filename)
		reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("zip reader creation failed: %w", err)
		}
		if len(reader.File) == 0 {
			return nil, fmt.Errorf("zip archive is empty")
		}

		file := reader.File[0]
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in zip: %w", file.Name, err)
		}
		defer rc.Close()

		out, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from zip: %w", file.Name, err)
		}
		slog.Debug("ZIP decompression successful", "file", filename,
			"archive_file", file.Name,
			"original_size", len(data), "decompressed_size", len(out))
		return out, nil
	}

	return data, nil
}
