package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeQuick  Type = "quick"
	TypeImport Type = "import"
	TypeExport Type = "export"
	TypeICS    Type = "ics"
	TypeClear  Type = "clear"
	TypeFilter Type = "filter"
	TypeDone   Type = "done"
	TypeDelete Type = "delete"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
	ErrCodeFailed          ErrorCode = "failed"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
}

type QuickArgs struct {
	Line string
}

// PathArgs carries the file argument of /import, /export and /ics.
type PathArgs struct {
	Path string
}

type FilterArgs struct {
	Mode string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Quick  *QuickArgs
	Path   *PathArgs
	Filter *FilterArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(raw, parts[0]))

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, rest)
	case TypeQuick:
		return parseQuick(input, rest)
	case TypeImport, TypeExport, TypeICS:
		return parsePath(input, Type(head), rest)
	case TypeFilter:
		return parseFilter(input, parts[1:])
	case TypeClear, TypeDone, TypeDelete:
		if rest != "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: Type(head), Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw, rest string) (Command, error) {
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: rest}}, nil
}

func parseQuick(raw, rest string) (Command, error) {
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "quick requires \"title | when\""}
	}
	return Command{Type: TypeQuick, Raw: raw, Quick: &QuickArgs{Line: rest}}, nil
}

func parsePath(raw string, typ Type, rest string) (Command, error) {
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a file path", typ)}
	}
	return Command{Type: typ, Raw: raw, Path: &PathArgs{Path: rest}}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "filter requires one of all, today, upcoming, completed"}
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Mode: strings.ToLower(args[0])}}, nil
}
