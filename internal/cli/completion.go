package cli

import (
	"fmt"
	"io"
	"strings"
)

// CompletionValues lists the enumerated flag values offered by completion
// scripts.
type CompletionValues struct {
	Modes      []string
	Strategies []string
	Parallel   []string
	Engines    []string
}

// DefaultCompletionValues returns the values accepted by the kdeconv flags.
func DefaultCompletionValues() CompletionValues {
	return CompletionValues{
		Modes:      []string{"convolve", "compare", "calibrate", "server"},
		Strategies: []string{"auto", "effective", "direct"},
		Parallel:   []string{"auto", "on", "off"},
		Engines:    []string{"fft", "gonum", "none"},
	}
}

// completionFlags lists every flag; the boolean marks flags taking a file.
var completionFlags = []struct {
	name string
	desc string
	file bool
}{
	{"config", "YAML configuration file", true},
	{"input", "Signal file", true},
	{"output", "Output file path", true},
	{"filter", "Explicit comma-separated filter", false},
	{"scale", "Gaussian resolution scale", false},
	{"mode", "Application mode", false},
	{"strategy", "Convolution strategy", false},
	{"parallel", "Parallelism", false},
	{"engine", "Cyclic convolution engine", false},
	{"nonnegative", "Weight convolution with clamping", false},
	{"min-filter-effective", "Smallest filter for the transform path", false},
	{"min-product-effective", "Smallest L*n for the transform path", false},
	{"min-filter-parallel", "Smallest filter for parallelism", false},
	{"min-product-parallel", "Smallest L*n for parallelism", false},
	{"min-split", "Smallest range split in parallel", false},
	{"calibration-profile", "Calibration profile file", true},
	{"auto-calibrate", "Quick calibration at startup", false},
	{"port", "Server port", false},
	{"metrics-addr", "Prometheus metrics address", false},
	{"log-level", "Log level", false},
	{"log-file", "Rotated log file", true},
	{"json", "Output in JSON format", false},
	{"quiet", "Quiet mode for scripts", false},
	{"no-color", "Disable colored output", false},
	{"timeout", "Maximum execution time", false},
	{"completion", "Generate completion script", false},
	{"version", "Show version information", false},
}

// GenerateCompletion writes a shell completion script for kdeconv.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish").
//   - values: The enumerated flag values to offer.
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string, values CompletionValues) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, values)
	case "zsh":
		return generateZshCompletion(out, values)
	case "fish":
		return generateFishCompletion(out, values)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
}

func generateBashCompletion(out io.Writer, v CompletionValues) error {
	var opts, files []string
	for _, f := range completionFlags {
		opts = append(opts, "-"+f.name)
		if f.file {
			files = append(files, "-"+f.name)
		}
	}
	opts = append(opts, "-i", "-o", "-q", "-h", "-V")
	files = append(files, "-i", "-o")

	script := `# Bash completion script for kdeconv
# Add this to your ~/.bashrc or ~/.bash_completion

_kdeconv_completions() {
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
        -mode) COMPREPLY=( $(compgen -W "%s" -- "${cur}") ); return 0 ;;
        -strategy) COMPREPLY=( $(compgen -W "%s" -- "${cur}") ); return 0 ;;
        -parallel) COMPREPLY=( $(compgen -W "%s" -- "${cur}") ); return 0 ;;
        -engine) COMPREPLY=( $(compgen -W "%s" -- "${cur}") ); return 0 ;;
        -log-level) COMPREPLY=( $(compgen -W "debug info warn error disabled" -- "${cur}") ); return 0 ;;
        -completion) COMPREPLY=( $(compgen -W "bash zsh fish" -- "${cur}") ); return 0 ;;
        -timeout) COMPREPLY=( $(compgen -W "30s 1m 5m 10m" -- "${cur}") ); return 0 ;;
        %s) COMPREPLY=( $(compgen -f -- "${cur}") ); return 0 ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "%s" -- "${cur}") )
        return 0
    fi
}

complete -F _kdeconv_completions kdeconv
`
	_, err := fmt.Fprintf(out, script,
		strings.Join(v.Modes, " "), strings.Join(v.Strategies, " "),
		strings.Join(v.Parallel, " "), strings.Join(v.Engines, " "),
		strings.Join(files, "|"), strings.Join(opts, " "))
	return err
}

func generateZshCompletion(out io.Writer, v CompletionValues) error {
	var b strings.Builder
	b.WriteString("#compdef kdeconv\n\n# Zsh completion script for kdeconv\n# Place in a directory of $fpath\n\n_kdeconv() {\n    _arguments -s \\\n")
	for _, f := range completionFlags {
		spec := ""
		switch f.name {
		case "mode":
			spec = ":mode:(" + strings.Join(v.Modes, " ") + ")"
		case "strategy":
			spec = ":strategy:(" + strings.Join(v.Strategies, " ") + ")"
		case "parallel":
			spec = ":parallel:(" + strings.Join(v.Parallel, " ") + ")"
		case "engine":
			spec = ":engine:(" + strings.Join(v.Engines, " ") + ")"
		case "completion":
			spec = ":shell:(bash zsh fish)"
		default:
			if f.file {
				spec = ":file:_files"
			}
		}
		fmt.Fprintf(&b, "        '-%s[%s]%s' \\\n", f.name, f.desc, spec)
	}
	b.WriteString("        '-h[Show help message]'\n}\n\n_kdeconv \"$@\"\n")
	_, err := io.WriteString(out, b.String())
	return err
}

func generateFishCompletion(out io.Writer, v CompletionValues) error {
	var b strings.Builder
	b.WriteString("# Fish completion script for kdeconv\n# Add this to ~/.config/fish/completions/kdeconv.fish\n\ncomplete -c kdeconv -f\n")
	for _, f := range completionFlags {
		extra := ""
		switch f.name {
		case "mode":
			extra = " -xa '" + strings.Join(v.Modes, " ") + "'"
		case "strategy":
			extra = " -xa '" + strings.Join(v.Strategies, " ") + "'"
		case "parallel":
			extra = " -xa '" + strings.Join(v.Parallel, " ") + "'"
		case "engine":
			extra = " -xa '" + strings.Join(v.Engines, " ") + "'"
		case "completion":
			extra = " -xa 'bash zsh fish'"
		default:
			if f.file {
				extra = " -rF"
			}
		}
		fmt.Fprintf(&b, "complete -c kdeconv -o %s -d '%s'%s\n", f.name, f.desc, extra)
	}
	_, err := io.WriteString(out, b.String())
	return err
}
