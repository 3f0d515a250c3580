package cmd

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/heathj/domedit/dom"
	"github.com/heathj/domedit/markup"
)

var xmlExtensions = map[string]bool{
	".xml":   true,
	".xhtml": true,
	".svg":   true,
	".xsl":   true,
}

// loadDocument parses the file at path. It is read as XML when asXML is set
// or the extension names an XML type, and as HTML otherwise. Without a
// documentURL the file: URL of path is used.
func loadDocument(path, documentURL string, asXML bool) (*dom.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	if documentURL == "" {
		documentURL = fileURL(path)
	}
	if asXML || xmlExtensions[strings.ToLower(filepath.Ext(path))] {
		return markup.ParseXMLDocument(f, documentURL)
	}
	return markup.ParseHTMLDocument(f, documentURL)
}

func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func writeLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, s+"\n")
	return err
}

func writeHeading(w io.Writer, title string) error {
	_, err := headingStyle.Fprintf(w, "== %s ==\n", title)
	return err
}
