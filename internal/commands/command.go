package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeEdit   Type = "edit"
	TypeDone   Type = "done"
	TypeDelete Type = "delete"
	TypeClear  Type = "clear"
	TypeSort   Type = "sort"
	TypeSearch Type = "search"
	TypeMove   Type = "move"
	TypeHelp   Type = "help"
)

var aliases = map[string]Type{
	"a":      TypeAdd,
	"new":    TypeAdd,
	"e":      TypeEdit,
	"toggle": TypeDone,
	"x":      TypeDone,
	"rm":     TypeDelete,
	"del":    TypeDelete,
	"find":   TypeSearch,
	"filter": TypeSearch,
	"?":      TypeHelp,
}

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

func invalid(format string, args ...any) *CommandError {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Target names a task by its 1-based position in the visible list, or the
// selected row when Index is zero.
type Target struct {
	Index int
}

func (t Target) Selected() bool { return t.Index == 0 }

// AddArgs carries raw field values; validation happens in the store.
type AddArgs struct {
	Title    string
	Due      string
	Category string
	Priority string
	Force    bool
}

// EditArgs fields are nil when not given. An empty Due clears the date.
type EditArgs struct {
	Target   Target
	Title    *string
	Due      *string
	Category *string
	Priority *string
	Force    bool
}

type TargetArgs struct {
	Target Target
}

type SortArgs struct {
	Key string
}

type SearchArgs struct {
	Term string
}

type MoveArgs struct {
	Target Target
	Delta  int
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Edit   *EditArgs
	Target *TargetArgs
	Sort   *SortArgs
	Search *SearchArgs
	Move   *MoveArgs
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

	typ := Type(head)
	if alias, ok := aliases[head]; ok {
		typ = alias
	}

	switch typ {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeEdit:
		return parseEdit(input, args)
	case TypeDone, TypeDelete:
		return parseTargetOnly(input, typ, args)
	case TypeClear:
		return Command{Type: TypeClear, Raw: input}, nil
	case TypeSort:
		return parseSort(input, args)
	case TypeSearch:
		return parseSearch(input, raw)
	case TypeMove:
		return parseMove(input, args)
	case TypeHelp:
		return Command{Type: TypeHelp, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

type fields struct {
	words    []string
	due      *string
	category *string
	priority *string
	force    bool
}

// splitFields separates key:value tokens from free text. Recognised keys are
// due, cat/category and pri/priority; "force" or "!" allows a past due date.
func splitFields(args []string) fields {
	var f fields
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, ":")
		if ok {
			v := value
			switch strings.ToLower(key) {
			case "due":
				if strings.EqualFold(v, "none") {
					v = ""
				}
				f.due = &v
				continue
			case "cat", "category":
				f.category = &v
				continue
			case "pri", "priority":
				f.priority = &v
				continue
			}
		}
		if strings.EqualFold(arg, "force") || arg == "!" {
			f.force = true
			continue
		}
		f.words = append(f.words, arg)
	}
	return f
}

func parseAdd(raw string, args []string) (Command, error) {
	f := splitFields(args)
	title := strings.TrimSpace(strings.Join(f.words, " "))
	if title == "" {
		return Command{}, invalid("add requires a title")
	}
	out := &AddArgs{Title: title, Force: f.force}
	if f.due != nil {
		out.Due = *f.due
	}
	if f.category != nil {
		out.Category = *f.category
	}
	if f.priority != nil {
		out.Priority = *f.priority
	}
	return Command{Type: TypeAdd, Raw: raw, Add: out}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("edit requires a task number")
	}
	target, err := parseTarget(args[0])
	if err != nil {
		return Command{}, err
	}
	f := splitFields(args[1:])
	out := &EditArgs{Target: target, Due: f.due, Category: f.category, Priority: f.priority, Force: f.force}
	if len(f.words) > 0 {
		title := strings.Join(f.words, " ")
		out.Title = &title
	}
	if out.Title == nil && out.Due == nil && out.Category == nil && out.Priority == nil {
		return Command{}, invalid("edit requires at least one field")
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: out}, nil
}

func parseTargetOnly(raw string, typ Type, args []string) (Command, error) {
	target := Target{}
	if len(args) > 0 {
		var err error
		if target, err = parseTarget(args[0]); err != nil {
			return Command{}, err
		}
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{Target: target}}, nil
}

func parseSort(raw string, args []string) (Command, error) {
	key := "default"
	if len(args) > 0 {
		key = args[0]
	}
	return Command{Type: TypeSort, Raw: raw, Sort: &SortArgs{Key: key}}, nil
}

// The term is everything after the command word, spacing preserved, so
// "search" alone clears the filter.
func parseSearch(raw, trimmed string) (Command, error) {
	term := ""
	if i := strings.IndexFunc(trimmed, isSpace); i >= 0 {
		term = strings.TrimLeft(trimmed[i:], " \t")
	}
	return Command{Type: TypeSearch, Raw: raw, Search: &SearchArgs{Term: term}}, nil
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' }

func parseMove(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("move requires a direction")
	}
	target := Target{}
	dirArg := args[0]
	if len(args) > 1 {
		var err error
		if target, err = parseTarget(args[0]); err != nil {
			return Command{}, err
		}
		dirArg = args[1]
	}
	var delta int
	switch strings.ToLower(dirArg) {
	case "up", "u":
		delta = -1
	case "down", "d":
		delta = 1
	case "top":
		delta = -1 << 30
	case "bottom":
		delta = 1 << 30
	default:
		n, err := strconv.Atoi(dirArg)
		if err != nil || n == 0 {
			return Command{}, invalid("move direction must be up, down, top, bottom or a non-zero offset")
		}
		delta = n
	}
	return Command{Type: TypeMove, Raw: raw, Move: &MoveArgs{Target: target, Delta: delta}}, nil
}

func parseTarget(arg string) (Target, error) {
	switch strings.ToLower(arg) {
	case ".", "selected", "this":
		return Target{}, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || n < 1 {
		return Target{}, invalid("task number must be a positive integer, got %q", arg)
	}
	return Target{Index: n}, nil
}
