package ingest

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"
)

// unpackArchive extracts a supported archive next to itself and returns the
// extracted path. Unsupported files return "". An existing target is reused.
func unpackArchive(filePath string) (string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".zip":
		return unpackZipArchive(filePath)
	case ".gz":
		return unpackStream(filePath, ".gz", func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		})
	case ".lz4":
		return unpackStream(filePath, ".lz4", func(r io.Reader) (io.Reader, error) {
			return lz4.NewReader(r), nil
		})
	}
	return "", nil
}

// unpackZipArchive extracts the largest CSV entry of the archive.
func unpackZipArchive(filePath string) (string, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var largestFile *zip.File
	var largestSize uint64
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			continue
		}
		if largestFile == nil || f.UncompressedSize64 > largestSize {
			largestFile = f
			largestSize = f.UncompressedSize64
		}
	}
	if largestFile == nil {
		return "", nil
	}

	// entries are flattened into the archive's directory
	destPath := filepath.Join(filepath.Dir(filePath), filepath.Base(largestFile.Name))
	if _, err := os.Stat(destPath); err == nil {
		return destPath, nil
	}

	rc, err := largestFile.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", largestFile.Name, err)
	}
	defer rc.Close()
	return destPath, writeFile(destPath, rc)
}

func unpackStream(filePath, ext string, open func(io.Reader) (io.Reader, error)) (string, error) {
	destPath := filePath[:len(filePath)-len(ext)]
	if _, err := os.Stat(destPath); err == nil {
		return destPath, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	r, err := open(file)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filepath.Base(filePath), err)
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	return destPath, writeFile(destPath, r)
}

// writeFile writes through a temp file so a failed extraction leaves nothing behind.
func writeFile(destPath string, r io.Reader) error {
	tmp := destPath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, destPath)
}
