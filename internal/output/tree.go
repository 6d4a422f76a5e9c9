package output

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
)

// statusColumn is where the status of a file starts in a tree line.
const statusColumn = 32

type treeNode struct {
	name     string
	status   string
	children map[string]*treeNode
}

func (n *treeNode) isDir() bool { return n.children != nil }

func (n *treeNode) child(name string, dir bool) *treeNode {
	c, ok := n.children[name]
	if !ok {
		c = &treeNode{name: name}
		n.children[name] = c
	}
	if dir && c.children == nil {
		c.children = map[string]*treeNode{}
	}
	return c
}

// sorted lists directories first, then files, each alphabetically.
func (n *treeNode) sorted() []*treeNode {
	out := make([]*treeNode, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *treeNode) int {
		if a.isDir() != b.isDir() {
			if a.isDir() {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.name, b.name)
	})
	return out
}

// RenderFileTree renders committed files below root. Files maps paths
// relative to root to their commit status, which is styled and aligned
// in a column.
func RenderFileTree(root string, files map[string]string) string {
	if len(files) == 0 {
		return ""
	}

	top := &treeNode{name: root, children: map[string]*treeNode{}}
	for path, status := range files {
		parts := strings.Split(filepath.ToSlash(path), "/")
		n := top
		for i, part := range parts {
			n = n.child(part, i < len(parts)-1)
		}
		n.status = status
	}

	var sb strings.Builder
	sb.WriteString(StyleSummary.Render(root + "/"))
	sb.WriteByte('\n')
	writeTree(&sb, top, "")
	return sb.String()
}

func writeTree(sb *strings.Builder, n *treeNode, indent string) {
	children := n.sorted()
	for i, c := range children {
		last := i == len(children)-1

		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}

		line := indent + branch + c.name
		if c.isDir() {
			line += "/"
		}
		if c.status != "" {
			line += strings.Repeat(" ", max(statusColumn-len([]rune(line)), 2))
			line += StatusStyle(c.status).Render(c.status)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')

		if c.isDir() {
			writeTree(sb, c, indent+next)
		}
	}
}
