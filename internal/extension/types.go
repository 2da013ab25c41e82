package extension

import (
	"strconv"
	"strings"
)

// ValueType 是参数的值类型。
type ValueType string

const (
	TypeStr   ValueType = "str"
	TypeInt   ValueType = "int"
	TypeFloat ValueType = "float"
	TypeBool  ValueType = "bool"
	// TypeList 仅用于 varargs，不能在注解中显式声明。
	TypeList ValueType = "list"
)

// ParseValueType 解析注解中的类型名。
func ParseValueType(s string) (ValueType, bool) {
	switch ValueType(s) {
	case TypeStr, TypeInt, TypeFloat, TypeBool:
		return ValueType(s), true
	default:
		return "", false
	}
}

// Argument 是一个绑定值：位置参数、选项或 varargs。
type Argument struct {
	// Identifier 是模板中被替换的子串；append 风格选项则是 flag 文本本身。
	Identifier string
	Name       string
	Type       ValueType
	// Default 为 nil 表示必填；类型为 string | int64 | float64 | bool。
	Default any
	Help    string
	// Short/Long 是面向用户的 flag，仅选项设置。
	Short   string
	Long    string
	Varargs bool

	inline  bool // -v[...]：flag 文本自身就是占位符
	alias   bool // 注解名是 flag 表达式
	aliasOf Flag // alias 之前 token 自身的 flag
}

// UserFlag 返回面向用户的 flag 组合。
func (a Argument) UserFlag() Flag {
	return Flag{Short: a.Short, Long: a.Long}
}

// AppendStyle 报告该选项是否直接把 flag（及其值）追加到命令末尾，
// 而不是替换模板中的占位符。只有未提供独立占位符时才成立。
func (a Argument) AppendStyle() bool {
	if len(a.Identifier) == 0 || a.Identifier[0] != '-' {
		return false
	}
	if a.alias {
		return a.aliasOf.Equal(a.UserFlag())
	}
	return !a.inline
}

// CommandSpec 是一条声明的解析结果，只在 add/edit 期间存在，不持久化。
type CommandSpec struct {
	Path       []string
	Positional []Argument
	Options    *Options
	Varargs    *Argument
	Template   string
}

// Options 是按规范 flag 名索引的选项集合，保留首次插入顺序以保证结果确定。
type Options struct {
	keys []string
	m    map[string]Argument
}

func NewOptions() *Options {
	return &Options{m: map[string]Argument{}}
}

// Set 写入选项；同名重复声明覆盖旧值但保留原位置。
func (o *Options) Set(key string, arg Argument) {
	if _, ok := o.m[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.m[key] = arg
}

func (o *Options) Get(key string) (Argument, bool) {
	arg, ok := o.m[key]
	return arg, ok
}

func (o *Options) Keys() []string {
	return append([]string(nil), o.keys...)
}

func (o *Options) Len() int {
	return len(o.keys)
}

// Each 按插入顺序遍历。
func (o *Options) Each(fn func(key string, arg Argument)) {
	for _, k := range o.keys {
		fn(k, o.m[k])
	}
}

// coerceDefault 把注解中的默认值文本转换为对应类型；int/float 解析失败时保留原文本。
func coerceDefault(t ValueType, raw string) any {
	switch t {
	case TypeInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
		return raw
	case TypeFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
		return raw
	case TypeBool:
		return parseBool(raw)
	default:
		return raw
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
