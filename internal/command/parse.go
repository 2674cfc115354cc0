package command

import (
	"strconv"
	"strings"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// Prefix marks a chat message as a command.
const Prefix = "!"

// Usage lists the accepted commands.
const Usage = `commands:
  !ticket create dest=Hex:x:y objective="..." [dest_desc="..."] [origin=Hex:x:y] [origin_desc="..."] [war=N]
  !ticket show N
  !tickets
  !maps
  !icons Hex
  !war
  !role [show] [user]
  !role set user role
  !role remove user
  !sync`

// IsCommand reports whether text is addressed to the dispatcher.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), Prefix)
}

// Parse turns chat text into a Command. Malformed input is InvalidArgument.
func Parse(text string) (Command, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, Prefix) {
		return nil, apperr.New(apperr.InvalidArgument, "commands start with %q", Prefix)
	}

	tokens, err := tokenize(strings.TrimPrefix(text, Prefix))
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, usageError("empty command")
	}

	verb, args := strings.ToLower(tokens[0]), tokens[1:]
	switch verb {
	case "ticket":
		return parseTicket(args)
	case "tickets":
		if err := noArgs(verb, args); err != nil {
			return nil, err
		}
		return ListTickets{}, nil
	case "maps":
		if err := noArgs(verb, args); err != nil {
			return nil, err
		}
		return ListMaps{}, nil
	case "icons":
		if len(args) != 1 {
			return nil, usageError("!icons takes exactly one hex name")
		}
		return ListIcons{MapName: args[0]}, nil
	case "war":
		if err := noArgs(verb, args); err != nil {
			return nil, err
		}
		return ShowWar{}, nil
	case "role":
		return parseRole(args)
	case "sync":
		if err := noArgs(verb, args); err != nil {
			return nil, err
		}
		return SyncWar{}, nil
	}
	return nil, usageError("unknown command %q", verb)
}

func parseTicket(args []string) (Command, error) {
	if len(args) == 0 {
		return nil, usageError("!ticket needs create, show or list")
	}

	sub, rest := strings.ToLower(args[0]), args[1:]
	switch sub {
	case "create":
		return parseCreateTicket(rest)
	case "show":
		if len(rest) != 1 {
			return nil, usageError("!ticket show takes a ticket number")
		}
		n, err := strconv.ParseInt(strings.TrimPrefix(rest[0], "#"), 10, 64)
		if err != nil || n <= 0 {
			return nil, apperr.New(apperr.InvalidArgument, "%q is not a ticket number", rest[0])
		}
		return ShowTicket{Number: n}, nil
	case "list":
		if err := noArgs("ticket list", rest); err != nil {
			return nil, err
		}
		return ListTickets{}, nil
	}
	return nil, usageError("unknown ticket subcommand %q", sub)
}

func parseCreateTicket(args []string) (Command, error) {
	fields := map[string]string{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, usageError("expected key=value, got %q", arg)
		}
		key = strings.ToLower(key)
		switch key {
		case "dest", "dest_desc", "origin", "origin_desc", "objective", "war":
		default:
			return nil, usageError("unknown ticket field %q", key)
		}
		if _, dup := fields[key]; dup {
			return nil, apperr.New(apperr.InvalidArgument, "%s given twice", key)
		}
		fields[key] = value
	}

	cmd := CreateTicket{Objective: fields["objective"]}

	dest, ok := fields["dest"]
	if !ok {
		return nil, usageError("dest=Hex:x:y is required")
	}
	if strings.TrimSpace(cmd.Objective) == "" {
		return nil, usageError("objective=\"...\" is required")
	}
	mapName, x, y, err := ParsePoint(dest)
	if err != nil {
		return nil, err
	}
	cmd.Destination = primary.Location{MapName: mapName, X: x, Y: y, Description: fields["dest_desc"]}

	if origin, ok := fields["origin"]; ok {
		mapName, x, y, err := ParsePoint(origin)
		if err != nil {
			return nil, err
		}
		cmd.Origin.MapName = &mapName
		cmd.Origin.X = &x
		cmd.Origin.Y = &y
	}
	if desc, ok := fields["origin_desc"]; ok {
		cmd.Origin.Description = &desc
	}

	if war, ok := fields["war"]; ok {
		n, err := strconv.Atoi(war)
		if err != nil || n < 0 {
			return nil, apperr.New(apperr.InvalidArgument, "%q is not a war number", war)
		}
		cmd.WarNumber = &n
	}
	return cmd, nil
}

// ParsePoint reads "Hex:x:y".
func ParsePoint(s string) (string, float64, float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return "", 0, 0, apperr.New(apperr.InvalidArgument, "location %q must look like Hex:x:y", s)
	}
	x, errX := strconv.ParseFloat(parts[1], 64)
	y, errY := strconv.ParseFloat(parts[2], 64)
	if errX != nil || errY != nil {
		return "", 0, 0, apperr.New(apperr.InvalidArgument, "location %q has non-numeric coordinates", s)
	}
	return strings.TrimSpace(parts[0]), x, y, nil
}

func parseRole(args []string) (Command, error) {
	if len(args) == 0 {
		return ShowRole{}, nil
	}

	sub := strings.ToLower(args[0])
	switch sub {
	case "show":
		if len(args) == 1 {
			return ShowRole{}, nil
		}
		if len(args) != 2 {
			return nil, usageError("!role show takes at most one user")
		}
		id, err := parseUserID(args[1])
		if err != nil {
			return nil, err
		}
		return ShowRole{UserID: id}, nil
	case "set":
		if len(args) != 3 {
			return nil, usageError("!role set takes a user and a role")
		}
		id, err := parseUserID(args[1])
		if err != nil {
			return nil, err
		}
		return SetRole{UserID: id, Role: args[2]}, nil
	case "remove":
		if len(args) != 2 {
			return nil, usageError("!role remove takes a user")
		}
		id, err := parseUserID(args[1])
		if err != nil {
			return nil, err
		}
		return RemoveRole{UserID: id}, nil
	}

	if len(args) == 1 {
		if id, err := parseUserID(args[0]); err == nil {
			return ShowRole{UserID: id}, nil
		}
	}
	return nil, usageError("unknown role subcommand %q", sub)
}

// parseUserID accepts a numeric id or a chat mention such as <@123> or <@!123>.
func parseUserID(s string) (int64, error) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(s, "<@"), ">")
	trimmed = strings.TrimPrefix(trimmed, "!")
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.InvalidArgument, "%q is not a user id", s)
	}
	return id, nil
}

func noArgs(verb string, args []string) error {
	if len(args) > 0 {
		return usageError("!%s takes no arguments", verb)
	}
	return nil
}

func usageError(format string, args ...any) error {
	return apperr.New(apperr.InvalidArgument, format+"\n"+Usage, args...)
}

// tokenize splits on whitespace, keeping double-quoted runs together.
// Quotes may open mid-token, so objective="a b" yields objective=a b.
// Apostrophes are literal since hex labels contain them.
func tokenize(s string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
		inToken bool
		escaped bool
	)

	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote == '"':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	if quote != 0 {
		return nil, apperr.New(apperr.InvalidArgument, "unterminated quote")
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}
