package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	AddSubject func(AddSubjectArgs) (Result, error)
	AddTopic   func(AddTopicArgs) (Result, error)
	Start      func(StartArgs) (Result, error)
	Extend     func(ExtendArgs) (Result, error)
	Finish     func(FinishArgs) (Result, error)
	Dismiss    func(DismissArgs) (Result, error)
	Export     func(ExportArgs) (Result, error)
	Import     func(ImportArgs) (Result, error)
	Find       func(FindArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAddSubject:
		if handlers.AddSubject == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "add-subject handler not configured"}
		}
		return handlers.AddSubject(*cmd.AddSubject)
	case TypeAddTopic:
		if handlers.AddTopic == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "add handler not configured"}
		}
		return handlers.AddTopic(*cmd.AddTopic)
	case TypeStart:
		if handlers.Start == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "start handler not configured"}
		}
		return handlers.Start(*cmd.Start)
	case TypeExtend:
		if handlers.Extend == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "extend handler not configured"}
		}
		return handlers.Extend(*cmd.Extend)
	case TypeFinish:
		if handlers.Finish == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "finish handler not configured"}
		}
		return handlers.Finish(*cmd.Finish)
	case TypeDismiss:
		if handlers.Dismiss == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "dismiss handler not configured"}
		}
		return handlers.Dismiss(*cmd.Dismiss)
	case TypeExport:
		if handlers.Export == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "export handler not configured"}
		}
		return handlers.Export(*cmd.Export)
	case TypeImport:
		if handlers.Import == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "import handler not configured"}
		}
		return handlers.Import(*cmd.Import)
	case TypeFind:
		if handlers.Find == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "find handler not configured"}
		}
		return handlers.Find(*cmd.Find)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
