package cmd

import (
	"github.com/spf13/cobra"

	"github.com/heathj/domedit/config"
	"github.com/heathj/domedit/dom"
	"github.com/heathj/domedit/markup"
)

type serializeOptions struct {
	xml          bool
	xmlFragment  bool
	childrenOnly bool
	skipTags     []string
	resolveURLs  string
	baseURL      string
	path         string
}

func newSerializeCommand(root *rootOptions) *cobra.Command {
	o := &serializeOptions{}

	c := &cobra.Command{
		Use:   "serialize FILE",
		Short: "Parse a document and write a node back out as markup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, root.cfg, args[0])
		},
	}

	flags := c.Flags()
	flags.BoolVar(&o.xml, "xml", false, "parse FILE as XML")
	flags.BoolVar(&o.xmlFragment, "xml-fragment", false, "write XML syntax even for HTML documents")
	flags.BoolVar(&o.childrenOnly, "children-only", false, "write only the children of the node")
	flags.StringSliceVar(&o.skipTags, "skip-tag", nil, "element names to leave out (repeatable)")
	flags.StringVar(&o.resolveURLs, "resolve-urls", "", "URL attribute policy: none, all or non-local")
	flags.StringVar(&o.baseURL, "base-url", "", "document URL used to resolve relative URLs")
	flags.StringVar(&o.path, "path", "", "path of the node to write (default the document)")

	return c
}

func (o *serializeOptions) run(cmd *cobra.Command, cfg *config.Config, file string) error {
	opts, err := o.markupOptions(cmd, cfg)
	if err != nil {
		return err
	}
	doc, err := loadDocument(file, o.baseURL, o.xml)
	if err != nil {
		return err
	}
	n, err := dom.NodeAtPath(doc, o.path)
	if err != nil {
		return err
	}
	return writeLine(cmd.OutOrStdout(), markup.CreateMarkup(n, opts))
}

// markupOptions starts from the configured serialization policy and
// applies the flags that were set explicitly.
func (o *serializeOptions) markupOptions(cmd *cobra.Command, cfg *config.Config) (markup.Options, error) {
	opts := markup.Options{
		ChildrenOnly:   o.childrenOnly,
		ResolveURLs:    cfg.Serialization.ResolvePolicy(),
		TagNamesToSkip: cfg.Serialization.SkipTags,
		Fragment:       cfg.Serialization.Fragment(),
	}

	flags := cmd.Flags()
	if flags.Changed("resolve-urls") {
		policy, err := markup.ParseResolveURLs(o.resolveURLs)
		if err != nil {
			return opts, err
		}
		opts.ResolveURLs = policy
	}
	if flags.Changed("skip-tag") {
		opts.TagNamesToSkip = o.skipTags
	}
	if flags.Changed("xml-fragment") {
		opts.Fragment = markup.HTMLFragmentSerialization
		if o.xmlFragment {
			opts.Fragment = markup.XMLFragmentSerialization
		}
	}
	return opts, nil
}
