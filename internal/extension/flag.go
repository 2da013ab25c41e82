package extension

import "strings"

// Flag 是 flag 表达式（-x、--flag、-x/--flag）的拆分结果。
type Flag struct {
	Short string // 含前导 -
	Long  string // 含前导 --
	Raw   string
}

// ParseFlag 解析 flag 表达式。以 / 分隔的两部分按前缀分别归入 Short/Long，顺序不限。
func ParseFlag(tok string) Flag {
	f := Flag{Raw: tok}
	for _, part := range strings.Split(tok, "/") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "--"):
			if f.Long == "" {
				f.Long = part
			}
		case strings.HasPrefix(part, "-"):
			if f.Short == "" {
				f.Short = part
			}
		}
	}
	return f
}

// Key 返回存储用的规范名：优先长 flag，其次短 flag，最后原文，均去掉前导 -。
func (f Flag) Key() string {
	switch {
	case f.Long != "":
		return strings.TrimLeft(f.Long, "-")
	case f.Short != "":
		return strings.TrimLeft(f.Short, "-")
	default:
		return strings.TrimLeft(f.Raw, "-")
	}
}

// Text 返回追加到命令行时使用的 flag 文本。
func (f Flag) Text() string {
	switch {
	case f.Long != "":
		return f.Long
	case f.Short != "":
		return f.Short
	default:
		return f.Raw
	}
}

// Shorthand 返回单字符短名（不含 -）；非单字符时返回空。
func (f Flag) Shorthand() string {
	s := strings.TrimPrefix(f.Short, "-")
	if len(s) != 1 {
		return ""
	}
	return s
}

func (f Flag) Equal(o Flag) bool {
	return f.Short == o.Short && f.Long == o.Long
}

func (f Flag) IsZero() bool {
	return f.Short == "" && f.Long == ""
}
