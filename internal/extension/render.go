package extension

import (
	"fmt"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/just-cli/just/internal/errors"
)

// Invocation 是一次调用提供的参数值。
type Invocation struct {
	// Values 按参数名索引；缺失时使用默认值。
	Values map[string]any
	// Set 标记用户显式提供的参数（append_if_present 依赖它）。
	Set map[string]bool
	// Rest 是未被位置参数消费的尾部 token，交给 varargs。
	Rest []string
}

// Render 从左到右在模板副本上执行替换计划，追加项按顺序拼接到末尾。
func (c *Compiled) Render(inv Invocation) (string, error) {
	values, xe := c.resolveValues(inv)
	if xe != nil {
		return "", xe
	}

	cmd := c.Template
	var appends []string
	for _, s := range c.Plan {
		v := values[s.Variable]
		switch s.Op {
		case OpReplace:
			cmd = strings.ReplaceAll(cmd, s.Identifier, formatValue(v))
		case OpReplaceIfTrue:
			// 为真时 flag 原样保留在模板中，无需改写
		case OpRemoveIfFalse:
			if !truthy(v) {
				cmd = strings.ReplaceAll(cmd, s.Identifier, "")
			}
		case OpAppendIfTrue:
			if truthy(v) {
				appends = append(appends, s.Identifier)
			}
		case OpAppendIfPresent:
			p, _ := c.Param(s.Variable)
			if p.Required || inv.Set[s.Variable] {
				appends = append(appends, s.Identifier, shellQuote(formatValue(v)))
			}
		case OpReplaceVarargs:
			rest := strings.Join(inv.Rest, " ")
			if s.Identifier == "" {
				if rest != "" {
					appends = append(appends, rest)
				}
				continue
			}
			cmd = strings.ReplaceAll(cmd, s.Identifier, rest)
		default:
			return "", errors.New(errors.CodeInternal, "unknown substitution op", map[string]any{"op": string(s.Op)})
		}
	}
	if len(appends) > 0 {
		cmd = strings.TrimRight(cmd, " \t") + " " + strings.Join(appends, " ")
	}
	return cmd, nil
}

func (c *Compiled) resolveValues(inv Invocation) (map[string]any, *errors.XError) {
	values := make(map[string]any, len(c.Parameters))
	var missing []string
	for _, p := range c.Parameters {
		if v, ok := inv.Values[p.Name]; ok && v != nil {
			values[p.Name] = v
			continue
		}
		if p.Required {
			missing = append(missing, p.Name)
			continue
		}
		values[p.Name] = p.Default
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.CodeCfgInvalid, "missing required parameters", map[string]any{"missing": missing})
	}
	return values, nil
}

// ParseValue 把命令行文本转换为参数类型对应的值。
func ParseValue(t ValueType, s string) (any, error) {
	switch t {
	case TypeInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int %q", s)
		}
		return n, nil
	case TypeFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", s)
		}
		return f, nil
	case TypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return parseBool(s), nil
		}
		return b, nil
	default:
		return s, nil
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		return strings.Join(x, " ")
	default:
		return fmt.Sprint(x)
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return parseBool(x)
	case int64:
		return x != 0
	case int:
		return x != 0
	case float64:
		return x != 0
	default:
		return false
	}
}

// shellQuote 让追加的值保持为单个 shell 单词。
func shellQuote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return s
	}
	return q
}
