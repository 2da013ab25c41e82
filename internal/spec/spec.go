package spec

import "github.com/just-cli/just/internal/errors"

type FlagSpec struct {
	Name        string `json:"name" yaml:"name"`
	Shorthand   string `json:"shorthand,omitempty" yaml:"shorthand,omitempty"`
	Env         string `json:"env,omitempty" yaml:"env,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ArgSpec 描述扩展命令的一个参数。
type ArgSpec struct {
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind" yaml:"kind"`
	Type     string `json:"type" yaml:"type"`
	Required bool   `json:"required" yaml:"required"`
	Default  any    `json:"default,omitempty" yaml:"default,omitempty"`
	Flag     string `json:"flag,omitempty" yaml:"flag,omitempty"`
	Short    string `json:"short,omitempty" yaml:"short,omitempty"`
	Help     string `json:"help,omitempty" yaml:"help,omitempty"`
}

type CommandSpec struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Flags       []FlagSpec `json:"flags,omitempty" yaml:"flags,omitempty"`
	// Extension 为 true 表示用户定义的扩展命令。
	Extension bool      `json:"extension,omitempty" yaml:"extension,omitempty"`
	Template  string    `json:"template,omitempty" yaml:"template,omitempty"`
	Args      []ArgSpec `json:"args,omitempty" yaml:"args,omitempty"`
}

type Spec struct {
	SchemaVersion int           `json:"schema_version" yaml:"schema_version"`
	Commands      []CommandSpec `json:"commands" yaml:"commands"`
	ErrorCodes    []errors.Code `json:"error_codes" yaml:"error_codes"`
}
