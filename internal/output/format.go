package output

import "strings"

// Format 是输出格式；auto 在执行时按 stdout 是否为终端解析为 table 或 json。
type Format string

const (
	FormatAuto  Format = "auto"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
)

var formats = []Format{FormatAuto, FormatJSON, FormatYAML, FormatTable, FormatCSV}

// Formats 返回全部可用格式，用于帮助文本与错误详情。
func Formats() []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

// ParseFormat 大小写不敏感地解析格式名（来自 CLI、环境变量或配置文件）。
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	return f, IsValid(f)
}

func IsValid(f Format) bool {
	for _, v := range formats {
		if f == v {
			return true
		}
	}
	return false
}
