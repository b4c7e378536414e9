package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandShow    Command = "show"
	CommandGet     Command = "get"
	CommandSet     Command = "set"
	CommandSetKey  Command = "set-key"
	CommandExport  Command = "export"
	CommandImport  Command = "import"
	CommandReset   Command = "reset"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

// commandArity maps each command to its required positional argument count.
var commandArity = map[Command]int{
	CommandShow:    0,
	CommandGet:     1,
	CommandSet:     2,
	CommandSetKey:  1,
	CommandExport:  1,
	CommandImport:  1,
	CommandReset:   0,
	CommandDoctor:  0,
	CommandVersion: 0,
	CommandHelp:    0,
}

type Parsed struct {
	Command   Command
	Args      []string
	ConfigDir string
	ShowHelp  bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	positionals := []string{}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config-dir":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config-dir requires a path")
			}
			parsed.ConfigDir = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}
			positionals = append(positionals, arg)
		}
	}

	if len(positionals) == 0 {
		return parsed, nil
	}

	cmd := Command(positionals[0])
	arity, ok := commandArity[cmd]
	if !ok {
		return Parsed{}, fmt.Errorf("unknown command: %s", positionals[0])
	}

	rest := positionals[1:]
	if len(rest) != arity {
		return Parsed{}, fmt.Errorf("command %q expects %d argument(s), got %d", cmd, arity, len(rest))
	}

	parsed.Command = cmd
	parsed.Args = rest
	parsed.ShowHelp = cmd == CommandHelp
	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config-dir PATH] <command> [args]

Commands:
  show                 Print current settings (credential masked)
  get PATH             Print the value at a dotted path (e.g. audio.sample_rate)
  set PATH VALUE       Set a dotted path and save (VALUE parsed as JSON, else string)
  set-key KEY          Validate, encrypt, and save the API credential
  export FILE          Export settings to FILE with the credential stripped
  import FILE          Import settings from FILE (credential ignored) and save
  reset                Reset all settings to defaults and save
  doctor               Run configuration and environment checks
  version              Print version information
  help                 Show this help

Flags:
  --config-dir PATH    Config directory (default: $XDG_CONFIG_HOME/scribe)
  -h, --help           Show help
  --version            Show version
`, binaryName)
}
