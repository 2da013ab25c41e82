package extension

import (
	"regexp"
	"strings"
)

// Tokens 是声明字符串切分后的 token 序列。
type Tokens []string

// 带注解的 token 作为整体匹配（可含空格与括号，不支持嵌套方括号）；
// 没有闭合 ] 时第一分支不匹配，自然退化为按空白切分。
var tokenPattern = regexp.MustCompile(`\S*\[.*?\]|\S+`)

// Parse 把声明字符串切分为 token，从不失败。
func Parse(decl string) Tokens {
	return Tokens(tokenPattern.FindAllString(strings.TrimSpace(decl), -1))
}

// splitAnnotation 拆出 token 的前缀（替换标识）与方括号内的注解体。
// 空注解 X[] 不算注解。
func splitAnnotation(tok string) (prefix, body string, ok bool) {
	if !strings.HasSuffix(tok, "]") {
		return tok, "", false
	}
	i := strings.IndexByte(tok, '[')
	if i < 0 {
		return tok, "", false
	}
	body = tok[i+1 : len(tok)-1]
	if body == "" {
		return tok, "", false
	}
	return tok[:i], body, true
}

// isFlagToken：以 - 开头且第二个字符不是数字（-1 之类视为普通值）。
func isFlagToken(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	c := tok[1]
	return c < '0' || c > '9'
}
