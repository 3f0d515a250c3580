package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloDoc = `<p>hello world</p>`

// text node of the paragraph in helloDoc
const helloText = "/0/1/0/0"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "logging:\n  level: warn\n")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfg, "--no-color"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestSerializeCommand(t *testing.T) {
	dir := t.TempDir()
	html := writeFile(t, dir, "page.html", `<p>a<script>x</script></p><a href="x.html">x</a>`)
	xml := writeFile(t, dir, "doc.xml", `<r><a/></r>`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "whole html document",
			args: []string{"serialize", html},
			want: `<html><head></head><body><p>a<script>x</script></p><a href="x.html">x</a></body></html>`,
		},
		{
			name: "body children without script",
			args: []string{"serialize", html, "--path", "/0/1", "--children-only", "--skip-tag", "script"},
			want: `<p>a</p><a href="x.html">x</a>`,
		},
		{
			name: "resolved urls",
			args: []string{"serialize", html, "--path", "/0/1/1", "--resolve-urls", "all", "--base-url", "http://example.com/dir/"},
			want: `<a href="http://example.com/dir/x.html">x</a>`,
		},
		{
			name: "xml by extension",
			args: []string{"serialize", xml},
			want: `<r><a/></r>`,
		},
		{
			name: "xml syntax for html",
			args: []string{"serialize", html, "--path", "/0/1/0", "--xml-fragment"},
			want: `<p xmlns="http://www.w3.org/1999/xhtml">a<script>x</script></p>`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want+"\n", out)
		})
	}
}

func TestSerializeCommandErrors(t *testing.T) {
	dir := t.TempDir()
	html := writeFile(t, dir, "page.html", helloDoc)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"serialize", filepath.Join(dir, "missing.html")}},
		{"bad policy", []string{"serialize", html, "--resolve-urls", "sometimes"}},
		{"bad path", []string{"serialize", html, "--path", "/9"}},
		{"no file", []string{"serialize"}},
		{"bad log level", []string{"--log-level", "loud", "serialize", html}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestRangeCommand(t *testing.T) {
	dir := t.TempDir()
	html := writeFile(t, dir, "page.html", helloDoc)
	start, end := helloText+":0", helloText+":5"

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "markup",
			args: []string{"range", html, "--start", start, "--end", end},
			want: "hello\n",
		},
		{
			name: "clone",
			args: []string{"range", html, "--start", start, "--end", end, "--action", "clone"},
			want: "hello\n",
		},
		{
			name: "delete",
			args: []string{"range", html, "--start", start, "--end", end, "--action", "delete"},
			want: "<html><head></head><body><p> world</p></body></html>\n",
		},
		{
			name: "extract",
			args: []string{"range", html, "--start", start, "--end", end, "--action", "extract"},
			want: "== extracted ==\nhello\n== document ==\n<html><head></head><body><p> world</p></body></html>\n",
		},
		{
			name: "expanded text",
			args: []string{"range", html, "--start", helloText + ":1", "--end", helloText + ":2", "--expand", "word", "--action", "text"},
			want: "hello\n",
		},
		{
			name: "annotated markup of the paragraph",
			args: []string{"range", html, "--start", "/0/1:0", "--end", "/0/1:1", "--annotate"},
			want: "<p>hello world</p>\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestRangeCommandInfo(t *testing.T) {
	dir := t.TempDir()
	html := writeFile(t, dir, "page.html", helloDoc)

	out, err := execute(t, "range", html, "--start", helloText+":0", "--end", helloText+":5", "--action", "delete", "--info")
	require.NoError(t, err)
	assert.Contains(t, out, "== range ==\n")
	assert.Contains(t, out, "start:\n  path: /0/1/0/0\n  node: '#text'\n  offset: 0\n")
	assert.Contains(t, out, "collapsed: true\n")
	assert.Contains(t, out, "common_ancestor: /0/1/0/0\n")
}

func TestRangeCommandErrors(t *testing.T) {
	dir := t.TempDir()
	html := writeFile(t, dir, "page.html", helloDoc)

	tests := []struct {
		name string
		args []string
	}{
		{"no start", []string{"range", html}},
		{"malformed boundary", []string{"range", html, "--start", "nope"}},
		{"bad offset", []string{"range", html, "--start", helloText + ":x"}},
		{"offset past the end", []string{"range", html, "--start", helloText + ":99"}},
		{"unknown action", []string{"range", html, "--start", helloText + ":0", "--action", "zap"}},
		{"unknown expansion", []string{"range", html, "--start", helloText + ":0", "--expand", "line"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestRunVersion(t *testing.T) {
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)

	require.NoError(t, runVersion(c, nil))
	out := buf.String()
	assert.Contains(t, out, "domedit dev")
	assert.Contains(t, out, "Commit:")
	assert.Contains(t, out, "Go version:")
	assert.Contains(t, out, "OS/Arch:")
}
