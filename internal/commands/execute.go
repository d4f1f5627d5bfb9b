package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	Quick  func(QuickArgs) (Result, error)
	Import func(PathArgs) (Result, error)
	Export func(PathArgs) (Result, error)
	ICS    func(PathArgs) (Result, error)
	Clear  func() (Result, error)
	Filter func(FilterArgs) (Result, error)
	Done   func() (Result, error)
	Delete func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeQuick:
		if handlers.Quick == nil {
			return missing(cmd.Type)
		}
		return handlers.Quick(*cmd.Quick)
	case TypeImport:
		if handlers.Import == nil {
			return missing(cmd.Type)
		}
		return handlers.Import(*cmd.Path)
	case TypeExport:
		if handlers.Export == nil {
			return missing(cmd.Type)
		}
		return handlers.Export(*cmd.Path)
	case TypeICS:
		if handlers.ICS == nil {
			return missing(cmd.Type)
		}
		return handlers.ICS(*cmd.Path)
	case TypeClear:
		if handlers.Clear == nil {
			return missing(cmd.Type)
		}
		return handlers.Clear()
	case TypeFilter:
		if handlers.Filter == nil {
			return missing(cmd.Type)
		}
		return handlers.Filter(*cmd.Filter)
	case TypeDone:
		if handlers.Done == nil {
			return missing(cmd.Type)
		}
		return handlers.Done()
	case TypeDelete:
		if handlers.Delete == nil {
			return missing(cmd.Type)
		}
		return handlers.Delete()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) (Result, error) {
	return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

// Failed wraps a handler error as a CommandError.
func Failed(err error) error {
	return &CommandError{Code: ErrCodeFailed, Message: err.Error()}
}
