package utils

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"s3gateway/internal/models"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
)

// EntryFunc is called once for every file written into an archive.
type EntryFunc func(name string, size int64)

// CreateArchive zips every regular file under sourceDir into outputPath.
// Entry names are relative to sourceDir with forward slashes, so the directory
// layout is reproduced inside the archive. A partially written archive is
// removed when an error is returned.
func CreateArchive(sourceDir, outputPath string, onEntry EntryFunc) (info *models.ArchiveInfo, err error) {
	createdAt := time.Now()

	outFile, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if err != nil {
			outFile.Close()
			_ = CleanupTempFile(outputPath)
		}
	}()

	zipWriter := zip.NewWriter(outFile)
	zipWriter.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		fw, err := flate.NewWriter(w, flate.BestCompression)
		if err != nil {
			return nil, err
		}
		return fw, nil
	})

	entries, originalSize, err := addToArchive(zipWriter, sourceDir, onEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to add %s to archive: %w", sourceDir, err)
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	fileInfo, err := outFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get archive info: %w", err)
	}
	if err := outFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close archive: %w", err)
	}
	compressedSize := fileInfo.Size()

	compressionRatio := 0.0
	if originalSize > 0 {
		compressionRatio = float64(compressedSize) / float64(originalSize)
	}

	return &models.ArchiveInfo{
		ArchivePath:      outputPath,
		SourceDir:        sourceDir,
		Entries:          entries,
		CompressedSize:   compressedSize,
		OriginalSize:     originalSize,
		CompressionRatio: compressionRatio,
		CreatedAt:        createdAt,
	}, nil
}

func addToArchive(zipWriter *zip.Writer, sourceDir string, onEntry EntryFunc) ([]string, int64, error) {
	var entries []string
	var total int64

	err := filepath.Walk(sourceDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(sourceDir, p)
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relPath)
		header.Method = zip.Deflate

		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return err
		}

		file, err := os.Open(p)
		if err != nil {
			return err
		}
		defer file.Close()

		n, err := io.Copy(writer, file)
		if err != nil {
			return err
		}

		entries = append(entries, header.Name)
		total += n
		if onEntry != nil {
			onEntry(header.Name, n)
		}
		return nil
	})

	return entries, total, err
}

func GenerateArchiveName(paths []string, extension string) string {
	if len(paths) == 1 {
		baseName := filepath.Base(strings.TrimSuffix(paths[0], "/"))
		if ext := filepath.Ext(baseName); ext != "" {
			baseName = strings.TrimSuffix(baseName, ext)
		}
		return fmt.Sprintf("%s_%s%s", baseName, time.Now().Format("20060102_150405"), extension)
	}

	return fmt.Sprintf("archive_%s%s", time.Now().Format("20060102_150405"), extension)
}

// ArchiveFileName is the download name offered for a remote folder.
func ArchiveFileName(folder string) string {
	base := path.Base(strings.Trim(folder, "/"))
	if base == "." || base == "/" || base == "" {
		base = "download"
	}
	return base + ".zip"
}

func ValidatePaths(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("path does not exist: %s", path)
			}
			return fmt.Errorf("cannot access path %s: %w", path, err)
		}
	}
	return nil
}

func CleanupTempFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to cleanup temporary file %s: %w", path, err)
	}
	return nil
}

// CleanupTempDir removes dir and everything below it. A missing dir is not an error.
func CleanupTempDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to cleanup temporary directory %s: %w", dir, err)
	}
	return nil
}

// ListArchive returns the sorted entry names of a zip file.
func ListArchive(archivePath string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names, nil
}
