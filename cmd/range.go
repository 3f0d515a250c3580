package cmd

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/heathj/domedit/config"
	"github.com/heathj/domedit/dom"
	"github.com/heathj/domedit/markup"
)

type rangeOptions struct {
	xml      bool
	baseURL  string
	start    string
	end      string
	expand   string
	action   string
	annotate bool
	info     bool
}

func newRangeCommand(root *rootOptions) *cobra.Command {
	o := &rangeOptions{}

	c := &cobra.Command{
		Use:   "range FILE",
		Short: "Apply a range operation to a document",
		Long: `range selects the content between two boundary points and applies an
action to it:

  clone    write a copy of the selected content
  extract  move the selected content out and write it, then the document
  delete   remove the selected content and write the document
  markup   write the selected content with the markup that surrounds it
  text     write the selected text

Boundary points are PATH:OFFSET, for example /0/1/0/0:3.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, root.cfg, args[0])
		},
	}

	flags := c.Flags()
	flags.BoolVar(&o.xml, "xml", false, "parse FILE as XML")
	flags.StringVar(&o.baseURL, "base-url", "", "document URL used to resolve relative URLs")
	flags.StringVar(&o.start, "start", "", "start boundary point PATH:OFFSET")
	flags.StringVar(&o.end, "end", "", "end boundary point PATH:OFFSET (default the start)")
	flags.StringVar(&o.expand, "expand", "", "grow the range to a word, sentence, block or document first")
	flags.StringVar(&o.action, "action", "markup", "clone, extract, delete, markup or text")
	flags.BoolVar(&o.annotate, "annotate", false, "annotate markup so it pastes with the same appearance")
	flags.BoolVar(&o.info, "info", false, "print the range boundaries as YAML after the action")
	_ = c.MarkFlagRequired("start")

	return c
}

// parseBoundary reads PATH:OFFSET against doc.
func parseBoundary(doc *dom.Node, s string) (*dom.Node, int, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return nil, 0, errors.Errorf("boundary point %q: want PATH:OFFSET", s)
	}
	n, err := dom.NodeAtPath(doc, s[:i])
	if err != nil {
		return nil, 0, errors.Wrapf(err, "boundary point %q", s)
	}
	offset, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return nil, 0, errors.Wrapf(err, "boundary point %q", s)
	}
	return n, offset, nil
}

func (o *rangeOptions) newRange(doc *dom.Node) (*dom.Range, error) {
	sc, so, err := parseBoundary(doc, o.start)
	if err != nil {
		return nil, err
	}
	ec, eo := sc, so
	if o.end != "" {
		if ec, eo, err = parseBoundary(doc, o.end); err != nil {
			return nil, err
		}
	}
	r, err := dom.NewRangeWithBoundaries(doc, sc, so, ec, eo)
	if err != nil {
		return nil, err
	}
	if o.expand != "" {
		if err := r.Expand(o.expand); err != nil {
			r.Detach()
			return nil, err
		}
	}
	return r, nil
}

func (o *rangeOptions) run(cmd *cobra.Command, cfg *config.Config, file string) error {
	doc, err := loadDocument(file, o.baseURL, o.xml)
	if err != nil {
		return err
	}
	r, err := o.newRange(doc)
	if err != nil {
		return err
	}
	defer r.Detach()

	logrus.WithFields(logrus.Fields{
		"action": o.action,
		"start":  dom.PathOf(r.StartContainer()) + ":" + strconv.Itoa(r.StartOffset()),
		"end":    dom.PathOf(r.EndContainer()) + ":" + strconv.Itoa(r.EndOffset()),
	}).Debug("applying range action")

	out := cmd.OutOrStdout()
	fragmentOpts := markup.Options{
		ChildrenOnly: true,
		ResolveURLs:  cfg.Serialization.ResolvePolicy(),
		Fragment:     cfg.Serialization.Fragment(),
	}
	documentOpts := fragmentOpts
	documentOpts.ChildrenOnly = false

	switch o.action {
	case "clone":
		frag, err := r.CloneContents()
		if err != nil {
			return err
		}
		if err := writeLine(out, markup.CreateMarkup(frag, fragmentOpts)); err != nil {
			return err
		}
	case "extract":
		frag, err := r.ExtractContents()
		if err != nil {
			return err
		}
		if err := writeSection(out, "extracted", markup.CreateMarkup(frag, fragmentOpts)); err != nil {
			return err
		}
		if err := writeSection(out, "document", markup.CreateMarkup(doc, documentOpts)); err != nil {
			return err
		}
	case "delete":
		if err := r.DeleteContents(); err != nil {
			return err
		}
		if err := writeLine(out, markup.CreateMarkup(doc, documentOpts)); err != nil {
			return err
		}
	case "markup":
		s := markup.SerializeRange(r, markup.RangeOptions{
			Annotate:    o.annotate || cfg.Serialization.Annotate,
			ResolveURLs: cfg.Serialization.ResolvePolicy(),
		})
		if err := writeLine(out, s); err != nil {
			return err
		}
	case "text":
		if err := writeLine(out, r.String()); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown range action %q", o.action)
	}

	if o.info {
		if err := writeHeading(out, "range"); err != nil {
			return err
		}
		return writeRangeInfo(out, r)
	}
	return nil
}

func writeSection(w io.Writer, title, body string) error {
	if err := writeHeading(w, title); err != nil {
		return err
	}
	return writeLine(w, body)
}

type boundaryInfo struct {
	Path   string `yaml:"path"`
	Node   string `yaml:"node"`
	Offset int    `yaml:"offset"`
}

type rangeInfo struct {
	Start          boundaryInfo `yaml:"start"`
	End            boundaryInfo `yaml:"end"`
	Collapsed      bool         `yaml:"collapsed"`
	CommonAncestor string       `yaml:"common_ancestor"`
}

func newBoundaryInfo(n *dom.Node, offset int) boundaryInfo {
	return boundaryInfo{Path: dom.PathOf(n), Node: n.NodeName, Offset: offset}
}

func writeRangeInfo(w io.Writer, r *dom.Range) error {
	info := rangeInfo{
		Start:     newBoundaryInfo(r.StartContainer(), r.StartOffset()),
		End:       newBoundaryInfo(r.EndContainer(), r.EndOffset()),
		Collapsed: r.Collapsed(),
	}
	if common := r.CommonAncestorContainer(); common != nil {
		info.CommonAncestor = dom.PathOf(common)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(info); err != nil {
		return errors.Wrap(err, "encoding range info")
	}
	return enc.Close()
}
