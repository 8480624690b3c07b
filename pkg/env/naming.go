package env

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"
	"unicode"

	"github.com/olimci/musync/pkg/meta"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Funcs are the functions available to the targetpath template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"clean":   clean,
		"ascii":   ascii,
		"title":   cases.Title(language.Und).String,
		"lower":   strings.ToLower,
		"upper":   strings.ToUpper,
		"pad":     pad,
		"default": orDefault,
	}
}

// ParseTargetPath compiles a targetpath template.
func ParseTargetPath(text string) (*template.Template, error) {
	tmpl, err := template.New("targetpath").Funcs(Funcs()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse targetpath: %w", err)
	}
	return tmpl, nil
}

func renderTargetPath(tmpl *template.Template, rec meta.Record) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, rec); err != nil {
		return "", fmt.Errorf("render targetpath: %w", err)
	}

	rel := path.Clean(strings.TrimSpace(buf.String()))
	if rel == "." || rel == "" {
		return "", fmt.Errorf("targetpath rendered an empty path")
	}
	return rel, nil
}

// clean makes a tag value safe as a single path component.
func clean(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '-'
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)

	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimLeft(s, ".")
	return strings.TrimSpace(s)
}

// ascii strips diacritics and drops what is left outside ASCII.
func ascii(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func pad(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

func orDefault(fallback string, value any) string {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return v
		}
	case int:
		if v != 0 {
			return fmt.Sprint(v)
		}
	case nil:
	default:
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return fallback
}
