// Package tracegraph draws a resolver trace as a Graphviz diagram, one box
// per visited section or file, for debugging why a file is (or is not) in
// a manifest.
package tracegraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/infcat/pkg/resolve"
)

var kindStyle = map[resolve.Kind]string{
	resolve.KindDescriptor:   `shape=folder, fillcolor="#e8eef7"`,
	resolve.KindManufacturer: `fillcolor="#f3e8f7"`,
	resolve.KindModels:       `fillcolor="#f7f0e8"`,
	resolve.KindDevice:       `fillcolor="#fff8d6"`,
	resolve.KindInstall:      `fillcolor="#e8f7ec"`,
	resolve.KindFileList:     `fillcolor="#e8f4f7"`,
	resolve.KindFile:         `shape=note, fillcolor=white`,
}

// ToDOT converts a trace to DOT. A nil trace yields an empty graph.
// Sections that were referenced but absent are drawn dashed.
func ToDOT(root *resolve.Node) string {
	var buf bytes.Buffer
	buf.WriteString("digraph trace {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("\n")

	if root != nil {
		next := 0
		writeNode(&buf, root, &next)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n *resolve.Node, next *int) string {
	id := "n" + strconv.Itoa(*next)
	*next++

	attrs := fmt.Sprintf("label=%q", label(n))
	if s, ok := kindStyle[n.Kind]; ok {
		attrs += ", " + s
	}
	if n.Missing {
		attrs += `, style="rounded,filled,dashed", fillcolor=lightgrey, fontcolor=grey30`
	}
	fmt.Fprintf(buf, "  %s [%s];\n", id, attrs)

	for _, c := range n.Children {
		cid := writeNode(buf, c, next)
		fmt.Fprintf(buf, "  %s -> %s;\n", id, cid)
	}
	return id
}

func label(n *resolve.Node) string {
	l := n.Name
	if n.Kind != resolve.KindFile {
		l = fmt.Sprintf("%s\n[%s]", n.Name, n.Kind)
	}
	if n.Detail != "" {
		l += "\n" + n.Detail
	}
	if n.Missing {
		l += "\n(missing)"
	}
	return l
}

// RenderSVG renders DOT to SVG with Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// that scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
