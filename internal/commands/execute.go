package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Edit    func(EditArgs) (Result, error)
	Done    func(TargetArgs) (Result, error)
	Archive func(TargetArgs) (Result, error)
	Cancel  func(TargetArgs) (Result, error)
	Delete  func(TargetArgs) (Result, error)
	Restore func(TargetArgs) (Result, error)
	Show    func(ShowArgs) (Result, error)
	History func(HistoryArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missingHandler("add")
		}
		return handlers.Add(*cmd.Add)
	case TypeEdit:
		if handlers.Edit == nil {
			return Result{}, missingHandler("edit")
		}
		return handlers.Edit(*cmd.Edit)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missingHandler("done")
		}
		return handlers.Done(*cmd.Done)
	case TypeArchive:
		if handlers.Archive == nil {
			return Result{}, missingHandler("archive")
		}
		return handlers.Archive(*cmd.Archive)
	case TypeCancel:
		if handlers.Cancel == nil {
			return Result{}, missingHandler("cancel")
		}
		return handlers.Cancel(*cmd.Cancel)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missingHandler("delete")
		}
		return handlers.Delete(*cmd.Delete)
	case TypeRestore:
		if handlers.Restore == nil {
			return Result{}, missingHandler("restore")
		}
		return handlers.Restore(*cmd.Restore)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missingHandler("show")
		}
		return handlers.Show(*cmd.Show)
	case TypeHistory:
		if handlers.History == nil {
			return Result{}, missingHandler("history")
		}
		return handlers.History(*cmd.History)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missingHandler(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}
