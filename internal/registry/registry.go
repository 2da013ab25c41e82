package registry

import (
	"slices"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/extension"
)

// Node 是命名空间树中的一个节点，按清洗后的路径段索引。
// 叶子持有 Compiled；中间节点只持有子节点。
type Node struct {
	Name    string
	Aliases []string // 清洗前与 Name 不同的原始写法
	Builtin bool
	Command *extension.Compiled

	children *btree.Map[string, *Node]
}

func newNode(name string) *Node {
	return &Node{Name: name, children: btree.NewMap[string, *Node](0)}
}

// IsCommand 报告节点是否为可调用命令（内置叶子或扩展叶子）。
func (n *Node) IsCommand() bool {
	return n.Command != nil || (n.Builtin && n.children.Len() == 0)
}

// Children 按名称顺序返回子节点。
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, n.children.Len())
	n.children.Scan(func(_ string, child *Node) bool {
		out = append(out, child)
		return true
	})
	return out
}

func (n *Node) child(name string) (*Node, bool) {
	return n.children.Get(name)
}

// hasExtensions 报告子树中是否还有扩展命令。
func (n *Node) hasExtensions() bool {
	if n.Command != nil {
		return true
	}
	found := false
	n.children.Scan(func(_ string, child *Node) bool {
		found = child.hasExtensions()
		return !found
	})
	return found
}

// Location 描述一次注册落到的位置。
type Location struct {
	Path []string `json:"path" yaml:"path"`
	// Created 是本次新建的中间命名空间（完整路径，以空格连接）。
	Created  []string `json:"created,omitempty" yaml:"created,omitempty"`
	Replaced bool     `json:"replaced" yaml:"replaced"`
}

func (l Location) String() string {
	return strings.Join(l.Path, " ")
}

// Registry 是内存中的命令树，启动时加载一次，由各命令共享。
// MCP 会并发调用，读写均加锁；跨进程并发写不做保证。
type Registry struct {
	mu   sync.RWMutex
	root *Node
}

func New() *Registry {
	return &Registry{root: newNode("")}
}

// AddBuiltin 登记宿主程序的内置命令。内置命令在冲突检查中优先。
func (r *Registry) AddBuiltin(path []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.root
	for _, seg := range path {
		child, ok := n.child(seg)
		if !ok {
			child = newNode(seg)
			n.children.Set(seg, child)
		}
		child.Builtin = true
		n = child
	}
}

// Register 把编译结果挂到 path 上。path 会先清洗。
// 所有冲突在修改树之前检查完毕，失败时树保持不变。
func (r *Registry) Register(path []string, c *extension.Compiled, overwrite bool) (Location, error) {
	if len(path) == 0 {
		return Location{}, errors.New(errors.CodeDeclEmpty, "empty command path", nil)
	}
	if c == nil {
		return Location{}, errors.New(errors.CodeInternal, "nil compiled command", nil)
	}
	clean, _ := SanitizePath(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.root
	depth := 0
	for ; depth < len(clean)-1; depth++ {
		child, ok := n.child(clean[depth])
		if !ok {
			break
		}
		prefix := strings.Join(clean[:depth+1], " ")
		if child.Builtin && child.children.Len() == 0 {
			return Location{}, errors.New(errors.CodeExtBuiltinConflict, "cannot nest an extension under a built-in command",
				map[string]any{"path": strings.Join(clean, " "), "builtin": prefix})
		}
		if child.Command != nil {
			return Location{}, errors.New(errors.CodeExtExists, "path prefix is already an extension command",
				map[string]any{"path": strings.Join(clean, " "), "command": prefix})
		}
		n = child
	}

	loc := Location{Path: clean}
	if depth == len(clean)-1 {
		if leaf, ok := n.child(clean[depth]); ok {
			full := strings.Join(clean, " ")
			switch {
			case leaf.Builtin:
				return Location{}, errors.New(errors.CodeExtBuiltinConflict, "extension would shadow a built-in command", map[string]any{"path": full})
			case leaf.children.Len() > 0:
				return Location{}, errors.New(errors.CodeExtExists, "path is a namespace with sub-commands", map[string]any{"path": full})
			case leaf.Command != nil && !overwrite:
				return Location{}, errors.New(errors.CodeExtExists, "extension already exists", map[string]any{"path": full})
			}
			loc.Replaced = leaf.Command != nil
			leaf.Command = c
			leaf.addAlias(path[depth])
			return loc, nil
		}
	}

	// 惰性创建剩余的中间节点与叶子
	for ; depth < len(clean); depth++ {
		child := newNode(clean[depth])
		child.addAlias(path[depth])
		n.children.Set(clean[depth], child)
		if depth < len(clean)-1 {
			loc.Created = append(loc.Created, strings.Join(clean[:depth+1], " "))
		}
		n = child
	}
	n.Command = c
	return loc, nil
}

func (n *Node) addAlias(raw string) {
	if raw == n.Name || slices.Contains(n.Aliases, raw) {
		return
	}
	n.Aliases = append(n.Aliases, raw)
}

// Lookup 按路径查找扩展命令；path 会先清洗。
func (r *Registry) Lookup(path []string) (*extension.Compiled, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.find(path)
	if !ok || n.Command == nil {
		return nil, false
	}
	return n.Command, true
}

// Node 返回路径对应的节点（只读使用）。
func (r *Registry) Node(path []string) (*Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(path)
}

func (r *Registry) find(path []string) (*Node, bool) {
	clean, _ := SanitizePath(path)
	n := r.root
	for _, seg := range clean {
		child, ok := n.child(seg)
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

// Remove 删除扩展命令，并自下而上清理已无扩展的非内置命名空间。
// 返回被清理的命名空间路径。
func (r *Registry) Remove(path []string) ([]string, error) {
	clean, _ := SanitizePath(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	trail := []*Node{r.root}
	n := r.root
	for _, seg := range clean {
		child, ok := n.child(seg)
		if !ok {
			return nil, errors.New(errors.CodeExtNotFound, "extension not found", map[string]any{"path": strings.Join(clean, " ")})
		}
		trail = append(trail, child)
		n = child
	}
	if n.Command == nil || len(clean) == 0 {
		return nil, errors.New(errors.CodeExtNotFound, "extension not found", map[string]any{"path": strings.Join(clean, " ")})
	}
	n.Command = nil

	var pruned []string
	for i := len(trail) - 1; i > 0; i-- {
		node, parent := trail[i], trail[i-1]
		if node.Builtin || node.Command != nil || node.children.Len() > 0 {
			break
		}
		parent.children.Delete(node.Name)
		if i < len(trail)-1 {
			pruned = append(pruned, strings.Join(clean[:i], " "))
		}
	}
	return pruned, nil
}

// Entry 是一条已注册扩展。
type Entry struct {
	Path    []string
	Command *extension.Compiled
}

// Extensions 按路径字典序返回全部扩展命令。
func (r *Registry) Extensions() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	var walk func(prefix []string, n *Node)
	walk = func(prefix []string, n *Node) {
		if n.Command != nil {
			out = append(out, Entry{Path: slices.Clone(prefix), Command: n.Command})
		}
		n.children.Scan(func(name string, child *Node) bool {
			walk(append(prefix, name), child)
			return true
		})
	}
	walk(nil, r.root)
	return out
}

// Tree 返回以扩展为叶子的子树快照，内置命令仅在其下挂有扩展时保留。
func (r *Registry) Tree() []*TreeNode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return buildTree(r.root)
}

// TreeNode 是用于展示的只读树。
type TreeNode struct {
	Name     string      `json:"name" yaml:"name"`
	Command  bool        `json:"command,omitempty" yaml:"command,omitempty"`
	Builtin  bool        `json:"builtin,omitempty" yaml:"builtin,omitempty"`
	Children []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

func buildTree(n *Node) []*TreeNode {
	var out []*TreeNode
	n.children.Scan(func(name string, child *Node) bool {
		if !child.hasExtensions() {
			return true
		}
		out = append(out, &TreeNode{
			Name:     name,
			Command:  child.Command != nil,
			Builtin:  child.Builtin,
			Children: buildTree(child),
		})
		return true
	})
	return out
}
