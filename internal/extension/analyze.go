package extension

import (
	"github.com/just-cli/just/internal/errors"
)

type parseState int

const (
	noPendingFlag parseState = iota
	pendingFlag
)

// RootToken 是声明开头可省略的根命令名。
const RootToken = "just"

type analyzer struct {
	spec    *CommandSpec
	pending string
}

// Analyze 以两状态机遍历 token，归类为子命令路径、位置参数与选项。
// 判定 token 是否为 flag 只向前看一个 token。
func Analyze(tokens Tokens) (*CommandSpec, error) {
	a := &analyzer{spec: &CommandSpec{Options: NewOptions()}}
	state := noPendingFlag

	for i := 0; i < len(tokens); {
		tok := tokens[i]
		prefix, body, annotated := splitAnnotation(tok)

		switch state {
		case noPendingFlag:
			switch {
			case isFlagToken(tok) && annotated:
				if err := a.inlineOption(prefix, body); err != nil {
					return nil, err
				}
			case isFlagToken(tok):
				a.pending = tok
				state = pendingFlag
			case annotated:
				if err := a.positional(prefix, body); err != nil {
					return nil, err
				}
			default:
				a.spec.Path = append(a.spec.Path, tok)
			}
			i++

		case pendingFlag:
			switch {
			case isFlagToken(tok):
				// 不消费当前 token，回到初始状态重新处理
				if err := a.selfReferential(a.pending); err != nil {
					return nil, err
				}
				state = noPendingFlag
				continue
			case annotated:
				if err := a.option(a.pending, prefix, body); err != nil {
					return nil, err
				}
			default:
				if err := a.selfReferential(a.pending); err != nil {
					return nil, err
				}
				a.spec.Path = append(a.spec.Path, tok)
			}
			a.pending = ""
			state = noPendingFlag
			i++
		}
	}
	if state == pendingFlag {
		if err := a.selfReferential(a.pending); err != nil {
			return nil, err
		}
	}

	if len(a.spec.Path) > 0 && a.spec.Path[0] == RootToken {
		a.spec.Path = a.spec.Path[1:]
	}
	if len(a.spec.Path) == 0 {
		return nil, errors.New(errors.CodeDeclEmpty, "declaration has no sub-command", map[string]any{"tokens": []string(tokens)})
	}
	return a.spec, nil
}

// inlineOption：-v[verbose:bool#help]，flag 文本本身就是替换标识。
func (a *analyzer) inlineOption(flagText, body string) error {
	arg, err := DecodeAnnotation(body)
	if err != nil {
		return err
	}
	arg.inline = true
	return a.addOption(flagText, flagText, arg)
}

// option：--flag PLACEHOLDER[...] 两个 token 组合为一个选项。
// 省略占位符（--flag [...]）时以 flag 自身为标识。
func (a *analyzer) option(flagText, placeholder, body string) error {
	arg, err := DecodeAnnotation(body)
	if err != nil {
		return err
	}
	identifier := placeholder
	if identifier == "" {
		identifier = flagText
	}
	return a.addOption(flagText, identifier, arg)
}

// selfReferential：flag 后没有占位符，合成 <flag 名>:str 注解。
func (a *analyzer) selfReferential(flagText string) error {
	arg, err := DecodeAnnotation(sanitizeName(ParseFlag(flagText).Key()) + ":str")
	if err != nil {
		return err
	}
	return a.addOption(flagText, flagText, arg)
}

func (a *analyzer) addOption(flagText, identifier string, arg Argument) error {
	if arg.Varargs {
		return errors.New(errors.CodeDeclSyntax, "varargs annotation cannot be bound to an option", map[string]any{"flag": flagText})
	}
	own := ParseFlag(flagText)
	if arg.alias {
		arg.aliasOf = Flag{Short: own.Short, Long: own.Long}
	} else {
		arg.Short, arg.Long = own.Short, own.Long
	}
	arg.Identifier = identifier
	a.spec.Options.Set(arg.UserFlag().Key(), arg)
	return nil
}

func (a *analyzer) positional(identifier, body string) error {
	arg, err := DecodeAnnotation(body)
	if err != nil {
		return err
	}
	arg.Identifier = identifier
	if arg.Varargs {
		if a.spec.Varargs != nil {
			return errors.New(errors.CodeDeclSyntax, "only one varargs annotation is allowed", map[string]any{"identifier": identifier})
		}
		a.spec.Varargs = &arg
		return nil
	}
	if identifier == "" {
		return errors.New(errors.CodeDeclSyntax, "annotation has no placeholder", map[string]any{"annotation": body})
	}
	if arg.alias {
		// 位置 token 携带 flag 别名时按选项处理：占位符由该 flag 提供值
		a.spec.Options.Set(arg.UserFlag().Key(), arg)
		return nil
	}
	a.spec.Positional = append(a.spec.Positional, arg)
	return nil
}
