package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"mvdan.cc/sh/v3/syntax"
)

// MaxSegmentLen 超过该长度的路径段会收到警告。
const MaxSegmentLen = 50

var (
	invalidRunes = regexp.MustCompile(`[^A-Za-z0-9_]`)
	underscores  = regexp.MustCompile(`_+`)
)

// Windows 设备名不能作为文件名（file 存储按路径段落盘）。
var reservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true,
}

// WarningKind 是命名问题的类别。
type WarningKind string

const (
	WarnRenamed     WarningKind = "renamed"
	WarnReserved    WarningKind = "reserved"
	WarnLength      WarningKind = "length"
	WarnTraversal   WarningKind = "traversal"
	WarnDotNotation WarningKind = "dot_notation"
	WarnUnderscores WarningKind = "underscores"
)

// Warning 是不阻断注册的命名提示。
type Warning struct {
	Segment string      `json:"segment" yaml:"segment"`
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Message string      `json:"message" yaml:"message"`
}

func (w Warning) String() string { return w.Message }

// SanitizeSegment 把路径段转换为安全标识（用于存储键与命令名）。
func SanitizeSegment(seg string) string {
	if isDigits(seg) {
		return "num_" + seg
	}
	s := invalidRunes.ReplaceAllString(seg, "_")
	s = underscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "num_" + s
	}
	if s == "" {
		// 名称派生，同一输入总得到同一个占位名
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(seg))
		s = "cmd_" + strings.ReplaceAll(id.String(), "-", "")[:8]
	}
	return s
}

// SanitizePath 逐段清洗路径，并返回所有命名警告（含改名说明）。
func SanitizePath(path []string) ([]string, []Warning) {
	out := make([]string, len(path))
	warnings := Validate(path)
	for i, seg := range path {
		out[i] = SanitizeSegment(seg)
		if out[i] != seg {
			warnings = append(warnings, Warning{
				Segment: seg,
				Kind:    WarnRenamed,
				Message: fmt.Sprintf("'%s' → '%s'", seg, out[i]),
			})
		}
	}
	return out, warnings
}

// Validate 检查命名风格问题，只产生警告。
func Validate(path []string) []Warning {
	var warnings []Warning
	add := func(seg string, kind WarningKind, format string, args ...any) {
		warnings = append(warnings, Warning{Segment: seg, Kind: kind, Message: fmt.Sprintf(format, args...)})
	}
	for _, seg := range path {
		if syntax.IsKeyword(seg) || reservedNames[strings.ToLower(seg)] {
			add(seg, WarnReserved, "command '%s' is a reserved word and may cause issues", seg)
		}
		if len(seg) > MaxSegmentLen {
			add(seg, WarnLength, "command '%s' is very long (%d > %d chars)", seg, len(seg), MaxSegmentLen)
		}
		if strings.Contains(seg, "__") {
			add(seg, WarnUnderscores, "command '%s' contains consecutive underscores (will be normalized)", seg)
		}
		if strings.Contains(seg, ".") && !strings.Contains(seg, "..") {
			add(seg, WarnDotNotation, "command '%s' uses dot notation (will be converted to underscores)", seg)
		}
		if strings.Contains(seg, "..") || strings.HasPrefix(seg, "/") || strings.HasPrefix(seg, `\`) {
			add(seg, WarnTraversal, "command '%s' contains path traversal patterns (not recommended)", seg)
		}
	}
	return warnings
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
