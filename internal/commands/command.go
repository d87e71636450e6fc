package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAddSubject Type = "add-subject"
	TypeAddTopic   Type = "add"
	TypeStart      Type = "start"
	TypeExtend     Type = "extend"
	TypeFinish     Type = "finish"
	TypeDismiss    Type = "dismiss"
	TypeExport     Type = "export"
	TypeImport     Type = "import"
	TypeFind       Type = "find"
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

type AddSubjectArgs struct {
	Name  string
	Color string
}

// AddTopicArgs carries a topic creation: the first word names the subject,
// the rest is the title, with optional key:value options (on:YYYY-MM-DD,
// at:HH:MM, for:<minutes>, prio:<high|medium|low>).
type AddTopicArgs struct {
	Subject  string
	Title    string
	Date     string
	Time     string
	Minutes  int
	Priority string
}

type StartArgs struct {
	Target  string
	Minutes int
}

type ExtendArgs struct {
	Target  string
	Minutes int
}

type FinishArgs struct {
	Target string
}

type DismissArgs struct {
	Target string
}

type ExportArgs struct {
	Format string
	Path   string
}

type ImportArgs struct {
	Path string
}

type FindArgs struct {
	Query string
}

type Command struct {
	Type       Type
	Raw        string
	AddSubject *AddSubjectArgs
	AddTopic   *AddTopicArgs
	Start      *StartArgs
	Extend     *ExtendArgs
	Finish     *FinishArgs
	Dismiss    *DismissArgs
	Export     *ExportArgs
	Import     *ImportArgs
	Find       *FindArgs
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
	args := parts[1:]

	switch Type(head) {
	case TypeAddSubject:
		return parseAddSubject(input, args)
	case TypeAddTopic:
		return parseAddTopic(input, args)
	case TypeStart:
		return parseStart(input, args)
	case TypeExtend:
		return parseExtend(input, args)
	case TypeFinish:
		return parseFinish(input, args)
	case TypeDismiss:
		return parseDismiss(input, args)
	case TypeExport:
		return parseExport(input, args)
	case TypeImport:
		return parseImport(input, args)
	case TypeFind:
		return parseFind(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAddSubject(raw string, args []string) (Command, error) {
	words := make([]string, 0, len(args))
	color := ""
	for _, arg := range args {
		if value, ok := option(arg, "color:"); ok {
			color = value
			continue
		}
		words = append(words, arg)
	}
	name := strings.TrimSpace(strings.Join(words, " "))
	if name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add-subject requires a name"}
	}
	return Command{Type: TypeAddSubject, Raw: raw, AddSubject: &AddSubjectArgs{Name: name, Color: color}}, nil
}

func parseAddTopic(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a subject and a title"}
	}
	out := AddTopicArgs{Subject: args[0]}

	words := make([]string, 0, len(args)-1)
	for _, arg := range args[1:] {
		if value, ok := option(arg, "on:"); ok {
			out.Date = value
			continue
		}
		if value, ok := option(arg, "at:"); ok {
			out.Time = value
			continue
		}
		if value, ok := option(arg, "for:"); ok {
			minutes, err := parseMinutes("for", value)
			if err != nil {
				return Command{}, err
			}
			out.Minutes = minutes
			continue
		}
		if value, ok := option(arg, "prio:"); ok {
			out.Priority = strings.ToLower(value)
			continue
		}
		words = append(words, arg)
	}
	out.Title = strings.TrimSpace(strings.Join(words, " "))
	if out.Title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAddTopic, Raw: raw, AddTopic: &out}, nil
}

func parseStart(raw string, args []string) (Command, error) {
	target, minutes, err := parseTargetWithMinutes("start", "for", args)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeStart, Raw: raw, Start: &StartArgs{Target: target, Minutes: minutes}}, nil
}

func parseExtend(raw string, args []string) (Command, error) {
	target, minutes, err := parseTargetWithMinutes("extend", "by", args)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeExtend, Raw: raw, Extend: &ExtendArgs{Target: target, Minutes: minutes}}, nil
}

func parseFinish(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "finish requires a topic"}
	}
	return Command{Type: TypeFinish, Raw: raw, Finish: &FinishArgs{Target: strings.Join(args, " ")}}, nil
}

func parseDismiss(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "dismiss requires a topic"}
	}
	return Command{Type: TypeDismiss, Raw: raw, Dismiss: &DismissArgs{Target: strings.Join(args, " ")}}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "export requires a format (ical or json)"}
	}
	format := strings.ToLower(args[0])
	if format != "ical" && format != "json" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unsupported export format: %s", format)}
	}
	path := ""
	for _, arg := range args[1:] {
		if value, ok := option(arg, "to:"); ok {
			path = value
		}
	}
	return Command{Type: TypeExport, Raw: raw, Export: &ExportArgs{Format: format, Path: path}}, nil
}

func parseImport(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "import requires a file path"}
	}
	return Command{Type: TypeImport, Raw: raw, Import: &ImportArgs{Path: args[0]}}, nil
}

func parseFind(raw string, args []string) (Command, error) {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "find requires a query"}
	}
	return Command{Type: TypeFind, Raw: raw, Find: &FindArgs{Query: query}}, nil
}

// parseTargetWithMinutes handles the shared "<topic words> [key:minutes]"
// shape of start and extend. Minutes stays zero when the option is absent;
// the handler applies its default.
func parseTargetWithMinutes(name, key string, args []string) (string, int, error) {
	if len(args) == 0 {
		return "", 0, &CommandError{Code: ErrCodeInvalidArgument, Message: name + " requires a topic"}
	}
	words := make([]string, 0, len(args))
	minutes := 0
	for _, arg := range args {
		if value, ok := option(arg, key+":"); ok {
			parsed, err := parseMinutes(key, value)
			if err != nil {
				return "", 0, err
			}
			minutes = parsed
			continue
		}
		words = append(words, arg)
	}
	target := strings.TrimSpace(strings.Join(words, " "))
	if target == "" {
		return "", 0, &CommandError{Code: ErrCodeInvalidArgument, Message: name + " requires a topic"}
	}
	return target, minutes, nil
}

func parseMinutes(key, value string) (int, error) {
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s: expects a positive minute count, got %q", key, value)}
	}
	return minutes, nil
}

func option(arg, prefix string) (string, bool) {
	if strings.HasPrefix(strings.ToLower(arg), prefix) {
		return strings.TrimSpace(arg[len(prefix):]), true
	}
	return "", false
}
