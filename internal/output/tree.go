package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Tree 是树形数据。表格模式下绘制为带颜色的缩进树，
// csv 模式下展开为 path/detail 两列，json/yaml 按结构输出。
type Tree struct {
	Root  string     `json:"root" yaml:"root"`
	Nodes []TreeNode `json:"tree" yaml:"tree"`
}

type TreeNode struct {
	Name     string     `json:"name" yaml:"name"`
	Leaf     bool       `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Detail   string     `json:"detail,omitempty" yaml:"detail,omitempty"`
	Children []TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

var (
	rootColor      = color.New(color.Bold)
	namespaceColor = color.New(color.FgBlue, color.Bold)
	leafColor      = color.New(color.FgGreen)
	detailColor    = color.New(color.FgHiBlack)
)

func (t Tree) RenderText(w io.Writer) error {
	if _, err := rootColor.Fprintln(w, t.Root); err != nil {
		return err
	}
	if len(t.Nodes) == 0 {
		_, err := detailColor.Fprintln(w, "(empty)")
		return err
	}
	return renderNodes(w, t.Nodes, "")
}

func renderNodes(w io.Writer, nodes []TreeNode, prefix string) error {
	for i, n := range nodes {
		branch, indent := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, indent = "└── ", "    "
		}
		name := namespaceColor.Sprint(n.Name)
		if n.Leaf {
			name = leafColor.Sprint(n.Name)
		}
		line := prefix + branch + name
		if n.Detail != "" {
			line += "  " + detailColor.Sprint(n.Detail)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if err := renderNodes(w, n.Children, prefix+indent); err != nil {
			return err
		}
	}
	return nil
}

func (t Tree) ToTableData() ([]string, []map[string]any, bool) {
	var rows []map[string]any
	var walk func(prefix []string, nodes []TreeNode)
	walk = func(prefix []string, nodes []TreeNode) {
		for _, n := range nodes {
			p := append(prefix[:len(prefix):len(prefix)], n.Name)
			if n.Leaf {
				rows = append(rows, map[string]any{"path": strings.Join(p, " "), "detail": n.Detail})
			}
			walk(p, n.Children)
		}
	}
	walk(nil, t.Nodes)
	return []string{"path", "detail"}, rows, true
}
