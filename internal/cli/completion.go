package cli

import (
	"fmt"
	"io"
	"strings"
)

// CompletionChoices lists the values offered for the enumerated flags.
type CompletionChoices struct {
	Policies []string
	Bases    []string
	Engines  []string
	Testers  []string
	Backends []string
}

// GenerateCompletion generates a shell completion script for the specified shell.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish", "powershell").
//   - choices: Values offered for -policy, -basis, -engine, -prime-test and -plot-backend.
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string, choices CompletionChoices) error {
	var script string
	quote := false
	switch shell {
	case "bash":
		script = bashCompletion
	case "zsh":
		script = zshCompletion
	case "fish":
		script = fishCompletion
	case "powershell", "ps":
		script = powerShellCompletion
		quote = true
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}

	join := func(values []string) string {
		if !quote {
			return strings.Join(values, " ")
		}
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = "'" + v + "'"
		}
		return strings.Join(quoted, ", ")
	}

	r := strings.NewReplacer(
		"@POLICIES@", join(choices.Policies),
		"@BASES@", join(choices.Bases),
		"@ENGINES@", join(choices.Engines),
		"@TESTERS@", join(choices.Testers),
		"@BACKENDS@", join(choices.Backends),
	)
	_, err := r.WriteString(out, script)
	return err
}

const bashCompletion = `# Bash completion script for mfmsweep
# Add this to your ~/.bashrc or ~/.bash_completion

_mfmsweep_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="--help -h --version -V -n -k -policy -seed -amplitude -basis -engine -dct-threshold -prime-test -prime-rounds -csv -time-plot -fraction-plot -plot-backend -no-plots -parallel -timeout -json -quiet -q -no-color -log-level -server -port -calibrate -calibration-profile -completion"

    case "${prev}" in
        -policy)
            COMPREPLY=( $(compgen -W "@POLICIES@" -- "${cur}") )
            return 0
            ;;
        -basis)
            COMPREPLY=( $(compgen -W "@BASES@" -- "${cur}") )
            return 0
            ;;
        -engine)
            COMPREPLY=( $(compgen -W "@ENGINES@" -- "${cur}") )
            return 0
            ;;
        -prime-test)
            COMPREPLY=( $(compgen -W "@TESTERS@" -- "${cur}") )
            return 0
            ;;
        -plot-backend)
            COMPREPLY=( $(compgen -W "@BACKENDS@" -- "${cur}") )
            return 0
            ;;
        -log-level)
            COMPREPLY=( $(compgen -W "debug info warn error disabled" -- "${cur}") )
            return 0
            ;;
        -completion)
            COMPREPLY=( $(compgen -W "bash zsh fish powershell" -- "${cur}") )
            return 0
            ;;
        -csv|-time-plot|-fraction-plot|-calibration-profile)
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
        -k)
            COMPREPLY=( $(compgen -W "5,10,15,20 8,16,32,64,128" -- "${cur}") )
            return 0
            ;;
        -timeout)
            COMPREPLY=( $(compgen -W "1m 5m 10m 30m 1h" -- "${cur}") )
            return 0
            ;;
        -port)
            COMPREPLY=( $(compgen -W "8080 3000 5000 9000" -- "${cur}") )
            return 0
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _mfmsweep_completions mfmsweep
`

const zshCompletion = `#compdef mfmsweep

# Zsh completion script for mfmsweep
# Add this to your ~/.zshrc or place in $fpath

_mfmsweep() {
    _arguments -s \
        '(-h --help)'{-h,--help}'[Show help message]' \
        '(-V --version)'{-V,--version}'[Show version information]' \
        '-n[Length N_MAX of the base sequence]:number:' \
        '-k[Comma-separated K values]:list:(5,10,15,20)' \
        '-policy[Coefficient policy]:policy:(@POLICIES@)' \
        '-seed[Seed of the seeded policy]:seed:' \
        '-amplitude[Coefficient amplitude]:amplitude:' \
        '-basis[Cosine basis]:basis:(@BASES@)' \
        '-engine[Correction engine]:engine:(@ENGINES@)' \
        '-dct-threshold[K from which auto uses the transform]:k:' \
        '-prime-test[Primality tester]:tester:(@TESTERS@)' \
        '-prime-rounds[Miller-Rabin rounds]:rounds:' \
        '-csv[Results table path]:file:_files' \
        '-time-plot[Time plot path]:file:_files' \
        '-fraction-plot[Prime fraction plot path]:file:_files' \
        '-plot-backend[Plot renderer]:backend:(@BACKENDS@)' \
        '-no-plots[Skip plot rendering]' \
        '-parallel[Run K values concurrently]' \
        '-timeout[Maximum execution time]:duration:(1m 5m 10m 30m 1h)' \
        '-json[Output in JSON format]' \
        '(-q -quiet)'{-q,-quiet}'[Quiet mode for scripts]' \
        '-no-color[Disable colored output]' \
        '-log-level[Structured log level]:level:(debug info warn error disabled)' \
        '-server[Start HTTP server mode]' \
        '-port[Server port]:port:(8080 3000 5000 9000)' \
        '-calibrate[Run engine calibration]' \
        '-calibration-profile[Calibration profile file]:file:_files' \
        '-completion[Generate completion script]:shell:(bash zsh fish powershell)'
}

_mfmsweep "$@"
`

const fishCompletion = `# Fish completion script for mfmsweep
# Add this to ~/.config/fish/completions/mfmsweep.fish

complete -c mfmsweep -f

complete -c mfmsweep -s h -l help -d 'Show help message'
complete -c mfmsweep -s V -l version -d 'Show version information'

# Sweep
complete -c mfmsweep -o n -d 'Length N_MAX of the base sequence' -x
complete -c mfmsweep -o k -d 'Comma-separated K values' -x
complete -c mfmsweep -o policy -d 'Coefficient policy' -xa '@POLICIES@'
complete -c mfmsweep -o seed -d 'Seed of the seeded policy' -x
complete -c mfmsweep -o amplitude -d 'Coefficient amplitude' -x
complete -c mfmsweep -o basis -d 'Cosine basis' -xa '@BASES@'
complete -c mfmsweep -o engine -d 'Correction engine' -xa '@ENGINES@'
complete -c mfmsweep -o dct-threshold -d 'K from which auto uses the transform' -x
complete -c mfmsweep -o prime-test -d 'Primality tester' -xa '@TESTERS@'
complete -c mfmsweep -o prime-rounds -d 'Miller-Rabin rounds' -x
complete -c mfmsweep -o parallel -d 'Run K values concurrently'
complete -c mfmsweep -o timeout -d 'Maximum execution time' -xa '1m 5m 10m 30m 1h'

# Reports
complete -c mfmsweep -o csv -d 'Results table path' -rF
complete -c mfmsweep -o time-plot -d 'Time plot path' -rF
complete -c mfmsweep -o fraction-plot -d 'Prime fraction plot path' -rF
complete -c mfmsweep -o plot-backend -d 'Plot renderer' -xa '@BACKENDS@'
complete -c mfmsweep -o no-plots -d 'Skip plot rendering'

# Output
complete -c mfmsweep -o json -d 'Output in JSON format'
complete -c mfmsweep -o quiet -o q -d 'Quiet mode for scripts'
complete -c mfmsweep -o no-color -d 'Disable colored output'
complete -c mfmsweep -o log-level -d 'Structured log level' -xa 'debug info warn error disabled'

# Modes
complete -c mfmsweep -o server -d 'Start HTTP server mode'
complete -c mfmsweep -o port -d 'Server port' -xa '8080 3000 5000 9000'
complete -c mfmsweep -o calibrate -d 'Run engine calibration'
complete -c mfmsweep -o calibration-profile -d 'Calibration profile file' -rF
complete -c mfmsweep -o completion -d 'Generate completion script' -xa 'bash zsh fish powershell'
`

const powerShellCompletion = `# PowerShell completion script for mfmsweep
# Add this to your $PROFILE

$mfmChoices = @{
    '-policy'       = @(@POLICIES@)
    '-basis'        = @(@BASES@)
    '-engine'       = @(@ENGINES@)
    '-prime-test'   = @(@TESTERS@)
    '-plot-backend' = @(@BACKENDS@)
    '-log-level'    = @('debug', 'info', 'warn', 'error', 'disabled')
    '-completion'   = @('bash', 'zsh', 'fish', 'powershell')
    '-timeout'      = @('1m', '5m', '10m', '30m', '1h')
}

Register-ArgumentCompleter -CommandName 'mfmsweep' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @('-h', '--version', '-n', '-k', '-policy', '-seed', '-amplitude', '-basis', '-engine',
        '-dct-threshold', '-prime-test', '-prime-rounds', '-csv', '-time-plot', '-fraction-plot',
        '-plot-backend', '-no-plots', '-parallel', '-timeout', '-json', '-quiet', '-q', '-no-color',
        '-log-level', '-server', '-port', '-calibrate', '-calibration-profile', '-completion')

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    if ($mfmChoices.ContainsKey($prevElement)) {
        $mfmChoices[$prevElement] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
        return
    }

    $options | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)
    }
}
`
