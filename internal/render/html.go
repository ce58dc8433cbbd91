// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gutil "github.com/yuin/goldmark/util"
)

// HTMLFormatter converts markdown to an HTML fragment. Fenced code is
// highlighted with inline styles and the result is filtered through a
// user-generated-content policy.
type HTMLFormatter struct {
	md        goldmark.Markdown
	policy    *bluemonday.Policy
	styleName string
}

// NewHTMLFormatter creates an HTML formatter using the named chroma style.
// Unknown styles fall back to chroma's default.
func NewHTMLFormatter(styleName string) *HTMLFormatter {
	style := chromaStyles.Get(styleName)

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(gutil.Prioritized(&codeBlockRenderer{style: style}, 200)),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowStyles("color", "background-color", "font-weight", "font-style", "text-decoration").
		OnElements("span", "pre")

	return &HTMLFormatter{md: md, policy: policy, styleName: style.Name}
}

func (f *HTMLFormatter) Name() string {
	return "html:" + f.styleName
}

func (f *HTMLFormatter) Format(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := f.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return f.policy.Sanitize(buf.String()), nil
}

// =============================================================================
// CODE HIGHLIGHTING
// =============================================================================

type codeBlockRenderer struct {
	style *chroma.Style
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *codeBlockRenderer) renderFencedCode(w gutil.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	var lexer chroma.Lexer
	if lang := n.Language(source); lang != nil {
		lexer = lexers.Get(string(lang))
	}
	if lexer == nil {
		lexer = lexers.Analyse(code.String())
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code.String())
	if err != nil {
		return ast.WalkStop, err
	}
	formatter := chromahtml.New(chromahtml.WithClasses(false))
	if err := formatter.Format(w, r.style, iterator); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}
