package search

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// decoders maps chardet charset names to the decoders that can revive
// them as UTF-8. Charsets outside this table are treated as binary.
var decoders = map[string]encoding.Encoding{
	"ISO-8859-1":   charmap.ISO8859_1,
	"ISO-8859-2":   charmap.ISO8859_2,
	"ISO-8859-5":   charmap.ISO8859_5,
	"ISO-8859-6":   charmap.ISO8859_6,
	"ISO-8859-7":   charmap.ISO8859_7,
	"ISO-8859-8":   charmap.ISO8859_8,
	"ISO-8859-9":   charmap.Windows1254,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"windows-1256": charmap.Windows1256,
	"KOI8-R":       charmap.KOI8R,
	"UTF-16BE":     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"UTF-16LE":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"Shift_JIS":    japanese.ShiftJIS,
	"EUC-JP":       japanese.EUCJP,
	"ISO-2022-JP":  japanese.ISO2022JP,
	"GB-18030":     simplifiedchinese.GB18030,
	"Big5":         traditionalchinese.Big5,
	"EUC-KR":       korean.EUCKR,
}

// decodeText interprets raw bytes as text, returning false for content
// that should be excluded from content search. Valid UTF-8 passes
// through untouched; legacy encodings are detected and transcoded.
func decodeText(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", true
	}
	// A NUL byte is the cheapest and most reliable binary signal.
	if bytes.IndexByte(data, 0) >= 0 && !hasUTF16BOM(data) {
		return "", false
	}
	if utf8.Valid(data) {
		if mt := mimetype.Detect(data); !isTextual(mt) {
			return "", false
		}
		return string(data), true
	}

	best, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || best == nil {
		return "", false
	}
	enc, ok := decoders[best.Charset]
	if !ok {
		return "", false
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}

func hasUTF16BOM(data []byte) bool {
	return len(data) >= 2 &&
		((data[0] == 0xFE && data[1] == 0xFF) || (data[0] == 0xFF && data[1] == 0xFE))
}

// isTextual walks the detected type's ancestry looking for text/plain,
// which mimetype guarantees is the root of every text format it knows.
func isTextual(mt *mimetype.MIME) bool {
	for cur := mt; cur != nil; cur = cur.Parent() {
		if cur.Is("text/plain") || strings.HasPrefix(cur.String(), "text/") {
			return true
		}
	}
	return false
}
