package convert

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/h2non/filetype"
)

// markdownExts lists file extensions treated as markdown sources.
var markdownExts = []string{".md", ".markdown", ".mdown", ".mkd", ".txt"}

// sniffLen is enough for filetype to recognize any supported signature.
const sniffLen = 262

// isArchiveFile checks file signature rather than extension.
func isArchiveFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// isMarkdownFile decides by extension, content is checked when file is read.
func isMarkdownFile(name string) bool {
	return slices.Contains(markdownExts, strings.ToLower(filepath.Ext(name)))
}

func isMarkdownInArchive(f *zip.File) bool {
	return !f.FileInfo().IsDir() && isMarkdownFile(f.FileHeader.Name)
}
