package extension

import (
	"strings"
	"unicode"

	"github.com/just-cli/just/internal/errors"
)

const varargsSentinel = "..."

// DecodeAnnotation 解析方括号内的注解体，例如 msg:str="Hello World"#Message to show。
// 返回的 Argument 缺少 Identifier，由调用方根据 token 前缀补齐。
func DecodeAnnotation(body string) (Argument, error) {
	if strings.HasPrefix(body, varargsSentinel) {
		arg := Argument{Name: "args", Type: TypeList, Varargs: true}
		if _, help, ok := cutUnquoted(body[len(varargsSentinel):], '#'); ok {
			arg.Help = unescape(help)
		}
		return arg, nil
	}

	head, help, hasHelp := cutUnquoted(body, '#')
	head, rawDefault, hasDefault := cutUnquoted(head, '=')
	name, typ, _ := strings.Cut(head, ":")
	name = strings.TrimSpace(name)
	typ = strings.TrimSpace(typ)
	if typ == "" {
		typ = string(TypeStr)
	}
	vt, ok := ParseValueType(typ)
	if !ok {
		return Argument{}, errors.New(errors.CodeDeclSyntax, "unknown type in annotation",
			map[string]any{"annotation": body, "type": typ, "allowed": []string{"str", "int", "float", "bool"}})
	}

	arg := Argument{Type: vt}
	if hasHelp {
		arg.Help = unescape(help)
	}
	if hasDefault {
		arg.Default = coerceDefault(vt, unquote(rawDefault))
	}

	// Option Alias：注解名本身是 flag 表达式
	if strings.HasPrefix(name, "-") || (strings.Contains(name, "/") && strings.Contains(name, "-")) {
		f := ParseFlag(name)
		if f.IsZero() {
			// 如 src/to-dir：形似别名，但没有任何以 - 开头的部分
			return Argument{}, errors.New(errors.CodeDeclSyntax, "option alias names no flag",
				map[string]any{"annotation": body, "name": name})
		}
		arg.Short, arg.Long = f.Short, f.Long
		arg.alias = true
		name = f.Key()
	}

	arg.Name = sanitizeName(name)
	if arg.Name == "" {
		return Argument{}, errors.New(errors.CodeDeclSyntax, "annotation has no variable name", map[string]any{"annotation": body})
	}
	return arg, nil
}

// cutUnquoted 在第一个未转义且不在引号内的 sep 处切分。
func cutUnquoted(s string, sep byte) (before, after string, found bool) {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == sep:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// unquote 去掉引号并处理反斜杠转义，与 shell 单词的处理方式类似。
func unquote(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// unescape 只处理帮助文本里的转义字符，保留引号原样。
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(`#="'\`, s[i+1]) >= 0 {
			i++
		}
		b.WriteByte(s[i])
	}
	return strings.TrimSpace(b.String())
}

// sanitizeName 生成合法标识符：去前导 -，- 与其他非法字符替换为 _，数字开头补 _。
func sanitizeName(name string) string {
	name = strings.TrimLeft(strings.TrimSpace(name), "-")
	if name == "" {
		return ""
	}
	b := []rune(name)
	for i, r := range b {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			b[i] = '_'
		}
	}
	out := string(b)
	if unicode.IsDigit(b[0]) {
		out = "_" + out
	}
	return out
}
