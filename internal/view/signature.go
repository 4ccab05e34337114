package view

import (
	"context"

	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/formatter"
	"github.com/oakwood-commons/structview/internal/navigator"
)

func renderSignature(_ context.Context, _ *Registry, el *html.Node, cfg Config, data any) error {
	root := dom.New("div", "view-signature")
	if cfg.ClassName != "" {
		dom.AddClass(root, cfg.ClassName)
	}

	shape := navigator.DetectShape(data)
	if shape.Kind == navigator.ShapeHomogeneousArray {
		dom.SetData(root, "shape", string(shape.Kind))
	}

	pre := dom.New("pre")
	dom.AppendText(pre, formatter.FormatSignature(data, formatter.SignatureOptions{
		Expanded: cfg.Expanded,
		Path:     cfg.Path,
	}))
	root.AppendChild(pre)
	el.AppendChild(root)
	return nil
}
