package build

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// srcEncoding is the document text encoding derived from its byte order mark.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

// sniffLen bounds how much of a file is read for content detection.
const sniffLen = 512

// documentExtensions lists extensions recognized as stylesheet definition
// documents.
var documentExtensions = []string{".yaml", ".yml", ".json"}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF examines the head of the buffer for a byte order mark. UTF-32LE
// must be checked before UTF-16LE, their marks share the first two bytes.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	default:
		return encUnknown
	}
}

// selectReader wraps r with a decoder matching the detected encoding. Whatever
// the original encoding was, the result reads as UTF-8 with the byte order
// mark stripped.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return unicode.UTF8BOM.NewDecoder().Reader(r)
	case encUTF16BigEndian:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Reader(r)
	case encUTF16LittleEndian:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Reader(r)
	case encUTF32BigEndian:
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewDecoder().Reader(r)
	case encUTF32LittleEndian:
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewDecoder().Reader(r)
	default:
		// this should never happen
		panic("unsupported source encoding")
	}
}

// readFileHead returns up to sniffLen bytes from the beginning of the file.
func readFileHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readHead(f)
}

func readHead(r io.Reader) ([]byte, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// isArchiveFile checks if the file is a zip archive: it must have both the
// extension and actual zip content.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	buf, err := readFileHead(path)
	if err != nil {
		return false, err
	}
	return filetype.Is(buf, "zip"), nil
}

func hasDocumentExtension(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range documentExtensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// isDocumentFile checks if the file looks like a stylesheet definition
// document and reports what encoding its content is in.
func isDocumentFile(path string) (bool, srcEncoding, error) {
	if !hasDocumentExtension(path) {
		return false, encUnknown, nil
	}
	buf, err := readFileHead(path)
	if err != nil {
		return false, encUnknown, err
	}
	enc := detectUTF(buf)
	return looksLikeDocument(buf, enc), enc, nil
}

// isDocumentInArchive is isDocumentFile for a file stored in a zip archive.
func isDocumentInArchive(f *zip.File) (bool, srcEncoding, error) {
	if !hasDocumentExtension(f.FileHeader.Name) {
		return false, encUnknown, nil
	}
	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()

	buf, err := readHead(r)
	if err != nil {
		return false, encUnknown, err
	}
	enc := detectUTF(buf)
	return looksLikeDocument(buf, enc), enc, nil
}

// looksLikeDocument checks decoded head bytes for the version key every
// stylesheet definition document declares. Neither YAML nor JSON has a real
// magic number, this is the closest stable marker we have.
func looksLikeDocument(head []byte, enc srcEncoding) bool {
	// decoding may fail on a rune split at the sniff boundary, text read so
	// far is still usable
	text, _ := io.ReadAll(selectReader(bytes.NewReader(head), enc))
	if len(text) == 0 {
		return false
	}
	if bytes.IndexByte(text, 0) >= 0 {
		return false
	}
	return bytes.Contains(text, []byte("version"))
}
