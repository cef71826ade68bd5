package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/eventloom/eventloom/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeEdit    Type = "edit"
	TypeDone    Type = "done"
	TypeArchive Type = "archive"
	TypeCancel  Type = "cancel"
	TypeDelete  Type = "delete"
	TypeRestore Type = "restore"
	TypeShow    Type = "show"
	TypeHistory Type = "history"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title       string
	Description string
	Due         time.Time
	Interval    model.Interval
}

type EditArgs struct {
	Target      string
	Title       *string
	Description *string
	Due         *time.Time
	Recurring   *bool
	Interval    *model.Interval
	Scope       model.Scope
}

type TargetArgs struct {
	Target string
	Scope  model.Scope
}

type ShowArgs struct {
	Status model.Status // empty means all
}

type HistoryArgs struct {
	Target string // empty means all tasks
}

type Command struct {
	Type    Type
	Raw     string
	Add     *AddArgs
	Edit    *EditArgs
	Done    *TargetArgs
	Archive *TargetArgs
	Cancel  *TargetArgs
	Delete  *TargetArgs
	Restore *TargetArgs
	Show    *ShowArgs
	History *HistoryArgs
}

// Accepted due-date layouts, wall-clock local time.
var dueLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts, err := tokenize(raw)
	if err != nil {
		return Command{}, err
	}
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(raw, args)
	case TypeEdit:
		return parseEdit(raw, args)
	case TypeDone:
		return parseTarget(raw, TypeDone, args, false)
	case TypeArchive:
		return parseTarget(raw, TypeArchive, args, true)
	case TypeCancel:
		return parseTarget(raw, TypeCancel, args, false)
	case TypeDelete:
		return parseTarget(raw, TypeDelete, args, true)
	case TypeRestore:
		return parseTarget(raw, TypeRestore, args, false)
	case TypeShow:
		return parseShow(raw, args)
	case TypeHistory:
		return parseHistory(raw, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command: %s", head)}
	}
}

// tokenize splits on whitespace, keeping double-quoted runs together so
// titles with spaces survive: add "water the plants" --due 2024-06-01.
func tokenize(raw string) ([]string, error) {
	out := make([]string, 0, 8)
	var current strings.Builder
	inQuote := false
	for _, r := range raw {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t'):
			if current.Len() > 0 {
				out = append(out, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if inQuote {
		return nil, &CommandError{Code: ErrCodeInvalidArgument, Message: "unterminated quote"}
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out, nil
}

func parseDue(value string) (time.Time, error) {
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("cannot parse due date %q", value)}
}

func parseInterval(value string) (model.Interval, error) {
	interval := model.Interval(strings.ToLower(value))
	if !interval.IsValid() || interval == model.IntervalNone {
		return "", &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown interval %q", value)}
	}
	return interval, nil
}

// flagValue pulls "--name value" out of args, returning the remaining
// args and whether the flag was present.
func flagValue(args []string, name string) ([]string, string, bool, error) {
	for i, arg := range args {
		if arg != "--"+name {
			continue
		}
		if i+1 >= len(args) {
			return nil, "", false, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("--%s requires a value", name)}
		}
		value := args[i+1]
		rest := append(append([]string{}, args[:i]...), args[i+2:]...)
		return rest, value, true, nil
	}
	return args, "", false, nil
}

func hasFlag(args []string, name string) ([]string, bool) {
	for i, arg := range args {
		if arg == "--"+name {
			return append(append([]string{}, args[:i]...), args[i+1:]...), true
		}
	}
	return args, false
}

func parseAdd(raw string, args []string) (Command, error) {
	args, desc, _, err := flagValue(args, "desc")
	if err != nil {
		return Command{}, err
	}
	args, dueStr, hasDue, err := flagValue(args, "due")
	if err != nil {
		return Command{}, err
	}
	args, everyStr, hasEvery, err := flagValue(args, "every")
	if err != nil {
		return Command{}, err
	}

	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	if !hasDue {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires --due"}
	}
	due, err := parseDue(dueStr)
	if err != nil {
		return Command{}, err
	}

	add := &AddArgs{Title: title, Description: desc, Due: due, Interval: model.IntervalNone}
	if hasEvery {
		interval, err := parseInterval(everyStr)
		if err != nil {
			return Command{}, err
		}
		add.Interval = interval
	}
	return Command{Type: TypeAdd, Raw: raw, Add: add}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires a task id"}
	}
	edit := &EditArgs{Target: args[0], Scope: model.ScopeSingleOccurrence}
	args = args[1:]

	args, all := hasFlag(args, "all")
	if all {
		edit.Scope = model.ScopeThisAndFuture
	}

	args, title, hasTitle, err := flagValue(args, "title")
	if err != nil {
		return Command{}, err
	}
	if hasTitle {
		edit.Title = &title
	}
	args, desc, hasDesc, err := flagValue(args, "desc")
	if err != nil {
		return Command{}, err
	}
	if hasDesc {
		edit.Description = &desc
	}
	args, dueStr, hasDue, err := flagValue(args, "due")
	if err != nil {
		return Command{}, err
	}
	if hasDue {
		due, parseErr := parseDue(dueStr)
		if parseErr != nil {
			return Command{}, parseErr
		}
		edit.Due = &due
	}
	args, everyStr, hasEvery, err := flagValue(args, "every")
	if err != nil {
		return Command{}, err
	}
	if hasEvery {
		if strings.EqualFold(everyStr, "off") {
			off := false
			edit.Recurring = &off
		} else {
			interval, parseErr := parseInterval(everyStr)
			if parseErr != nil {
				return Command{}, parseErr
			}
			on := true
			edit.Recurring = &on
			edit.Interval = &interval
		}
	}

	if len(args) > 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(args, " "))}
	}
	if edit.Title == nil && edit.Description == nil && edit.Due == nil && edit.Recurring == nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires at least one change"}
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: edit}, nil
}

func parseTarget(raw string, typ Type, args []string, scoped bool) (Command, error) {
	scope := model.ScopeSingleOccurrence
	if scoped {
		var all bool
		args, all = hasFlag(args, "all")
		if all {
			scope = model.ScopeThisAndFuture
		}
	}
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires exactly one task id", typ)}
	}
	target := &TargetArgs{Target: args[0], Scope: scope}

	cmd := Command{Type: typ, Raw: raw}
	switch typ {
	case TypeDone:
		cmd.Done = target
	case TypeArchive:
		cmd.Archive = target
	case TypeCancel:
		cmd.Cancel = target
	case TypeDelete:
		cmd.Delete = target
	case TypeRestore:
		cmd.Restore = target
	}
	return cmd, nil
}

func parseShow(raw string, args []string) (Command, error) {
	show := &ShowArgs{}
	if len(args) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show takes at most one status"}
	}
	if len(args) == 1 {
		status, ok := statusArg(args[0])
		if !ok {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown status %q", args[0])}
		}
		show.Status = status
	}
	return Command{Type: TypeShow, Raw: raw, Show: show}, nil
}

func statusArg(value string) (model.Status, bool) {
	switch strings.ToLower(value) {
	case "pending":
		return model.StatusPending, true
	case "done":
		return model.StatusDone, true
	case "archived":
		return model.StatusArchived, true
	case "cancelled":
		return model.StatusCancelled, true
	default:
		return "", false
	}
}

func parseHistory(raw string, args []string) (Command, error) {
	history := &HistoryArgs{}
	if len(args) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "history takes at most one task id"}
	}
	if len(args) == 1 {
		history.Target = args[0]
	}
	return Command{Type: TypeHistory, Raw: raw, History: history}, nil
}
