package extension

import (
	"fmt"

	"github.com/just-cli/just/internal/errors"
)

// ParamKind 区分参数在命令行上的绑定方式。
type ParamKind string

const (
	KindPositional ParamKind = "positional"
	KindOption     ParamKind = "option"
	KindVarargs    ParamKind = "varargs"
)

// Parameter 是编译后的参数描述，可序列化。
type Parameter struct {
	Name     string    `json:"name" yaml:"name"`
	Kind     ParamKind `json:"kind" yaml:"kind"`
	Type     ValueType `json:"type" yaml:"type"`
	Default  any       `json:"default,omitempty" yaml:"default,omitempty"`
	Required bool      `json:"required" yaml:"required"`
	Help     string    `json:"help,omitempty" yaml:"help,omitempty"`
	// Flag 是选项的长名（不含 --）；Short 为单字符短名（可空）。
	Flag  string `json:"flag,omitempty" yaml:"flag,omitempty"`
	Short string `json:"short,omitempty" yaml:"short,omitempty"`
}

// Op 是替换计划中的一步。
type Op string

const (
	OpReplace         Op = "replace"
	OpReplaceIfTrue   Op = "replace_if_true"
	OpRemoveIfFalse   Op = "remove_if_false"
	OpAppendIfPresent Op = "append_if_present"
	OpAppendIfTrue    Op = "append_if_true"
	OpReplaceVarargs  Op = "replace_varargs"
)

// Substitution 描述如何用参数值改写模板。
// Identifier 对替换类操作是模板子串，对追加类操作是 flag 文本。
type Substitution struct {
	Op         Op     `json:"op" yaml:"op"`
	Identifier string `json:"identifier" yaml:"identifier"`
	Variable   string `json:"variable,omitempty" yaml:"variable,omitempty"`
}

// Compiled 是持久化、可调用的扩展命令。
type Compiled struct {
	Template   string         `json:"template" yaml:"template"`
	Parameters []Parameter    `json:"parameters" yaml:"parameters"`
	Varargs    *Parameter     `json:"varargs,omitempty" yaml:"varargs,omitempty"`
	Plan       []Substitution `json:"plan" yaml:"plan"`
}

type namedArg struct {
	arg  Argument
	kind ParamKind
	name string
	key  string
}

// Compile 把 CommandSpec 编译为参数表与替换计划。
// 参数顺序：无默认值的在前，有默认值的在后，组内保持声明顺序（位置参数先于选项）。
func Compile(spec *CommandSpec, template string) (*Compiled, error) {
	if spec == nil {
		return nil, errors.New(errors.CodeInternal, "nil command spec", nil)
	}
	spec.Template = template

	var args []namedArg
	for _, arg := range spec.Positional {
		args = append(args, namedArg{arg: arg, kind: KindPositional})
	}
	shorts := map[string]string{}
	var dupErr error
	spec.Options.Each(func(key string, arg Argument) {
		if s := arg.Short; s != "" {
			if prev, ok := shorts[s]; ok && dupErr == nil {
				dupErr = errors.New(errors.CodeDeclSyntax, "duplicate short flag", map[string]any{"short": s, "options": []string{prev, key}})
			}
			shorts[s] = key
		}
		args = append(args, namedArg{arg: arg, kind: KindOption, key: key})
	})
	if dupErr != nil {
		return nil, dupErr
	}

	// 同一个已用名集合，按 位置参数 → 选项 → varargs 的顺序消解重名
	used := map[string]bool{}
	for i := range args {
		args[i].name = uniqueName(used, args[i].arg.Name)
	}

	c := &Compiled{Template: template}
	var required, defaulted []Parameter
	for _, na := range args {
		p := Parameter{
			Name:    na.name,
			Kind:    na.kind,
			Type:    na.arg.Type,
			Default: effectiveDefault(na.arg, na.kind),
			Help:    na.arg.Help,
		}
		if na.kind == KindOption {
			p.Flag = na.key
			p.Short = na.arg.UserFlag().Shorthand()
		}
		p.Required = p.Default == nil
		if p.Required {
			required = append(required, p)
		} else {
			defaulted = append(defaulted, p)
		}
		c.Plan = append(c.Plan, planFor(na)...)
	}
	c.Parameters = append(required, defaulted...)

	if va := spec.Varargs; va != nil {
		c.Varargs = &Parameter{
			Name: uniqueName(used, va.Name),
			Kind: KindVarargs,
			Type: TypeList,
			Help: va.Help,
		}
		c.Plan = append(c.Plan, Substitution{Op: OpReplaceVarargs, Identifier: va.Identifier, Variable: c.Varargs.Name})
	}
	return c, nil
}

func uniqueName(used map[string]bool, name string) string {
	candidate := name
	for n := 1; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
	used[candidate] = true
	return candidate
}

// effectiveDefault：replace 风格的 bool 选项缺省为 true（flag 保留），
// append 风格的 bool 选项缺省为 false（不追加）。
func effectiveDefault(arg Argument, kind ParamKind) any {
	if arg.Default != nil || kind != KindOption || arg.Type != TypeBool {
		return arg.Default
	}
	return !arg.AppendStyle()
}

func planFor(na namedArg) []Substitution {
	arg, v := na.arg, na.name
	if na.kind == KindOption && arg.AppendStyle() {
		flagText := ParseFlag(arg.Identifier).Text()
		if arg.Type == TypeBool {
			return []Substitution{{Op: OpAppendIfTrue, Identifier: flagText, Variable: v}}
		}
		return []Substitution{{Op: OpAppendIfPresent, Identifier: flagText, Variable: v}}
	}
	if na.kind == KindOption && arg.Type == TypeBool {
		return []Substitution{
			{Op: OpReplaceIfTrue, Identifier: arg.Identifier, Variable: v},
			{Op: OpRemoveIfFalse, Identifier: arg.Identifier, Variable: v},
		}
	}
	return []Substitution{{Op: OpReplace, Identifier: arg.Identifier, Variable: v}}
}

// Param 按名称查找参数（含 varargs）。
func (c *Compiled) Param(name string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	if c.Varargs != nil && c.Varargs.Name == name {
		return *c.Varargs, true
	}
	return Parameter{}, false
}

// Positionals 按参数表顺序返回位置参数。
func (c *Compiled) Positionals() []Parameter {
	var out []Parameter
	for _, p := range c.Parameters {
		if p.Kind == KindPositional {
			out = append(out, p)
		}
	}
	return out
}

// Normalize 在反序列化后恢复默认值的 Go 类型（YAML/JSON 会把 int64 读成 int 或 float64）。
func (c *Compiled) Normalize() {
	for i := range c.Parameters {
		c.Parameters[i].Default = normalizeValue(c.Parameters[i].Type, c.Parameters[i].Default)
	}
}

func normalizeValue(t ValueType, v any) any {
	switch x := v.(type) {
	case int:
		if t == TypeFloat {
			return float64(x)
		}
		return int64(x)
	case int64:
		if t == TypeFloat {
			return float64(x)
		}
	case uint64:
		return normalizeValue(t, int64(x))
	case float64:
		if t == TypeInt && x == float64(int64(x)) {
			return int64(x)
		}
	}
	return v
}
