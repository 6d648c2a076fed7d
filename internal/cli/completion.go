package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/mandelpart/internal/render"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// Every shell script is generated from flagRegistry.
type FlagCompletion struct {
	Long       string   // long flag name without "--"
	Short      string   // short flag without "-"
	Help       string   // description text
	Values     []string // suggested values (nil = boolean/no suggestions)
	ValueName  string   // label for the value in zsh
	IsFile     bool     // the flag takes a file path
	IsDir      bool     // the flag takes a directory
	IsStrategy bool     // values come from the strategy list
	BashGroup  string   // flags with the same non-empty BashGroup share a bash case entry
}

// flagRegistry is the central list of CLI flags for completion.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Long: "procs", Short: "np", Help: "Number of ranks including the coordinator", ValueName: "count", BashGroup: "count"},
	{Long: "strategy", Help: "Partitioning strategy", IsStrategy: true, ValueName: "strategy"},
	{Long: "granularity", Help: "Rows per dynamic task", ValueName: "rows", BashGroup: "count"},
	{Long: "timeout", Help: "Maximum execution time", Values: []string{"30s", "1m", "5m", "10m"}, ValueName: "duration"},
	{Long: "output-dir", Help: "Directory for PNG files", IsDir: true, ValueName: "dir"},
	{Long: "palette", Help: "Image palette", Values: render.PaletteNames(), ValueName: "palette"},
	{Long: "no-render", Help: "Skip writing PNG files"},
	{Long: "print", Help: "Print the iteration matrix"},
	{Long: "metrics-file", Help: "Prometheus metrics output file", IsFile: true, ValueName: "file"},
	{Long: "config", Help: "YAML configuration file", IsFile: true, ValueName: "file"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level"},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts"},
	{Long: "verbose", Short: "v", Help: "Show per-rank load and latency"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish", "powershell"}, ValueName: "shell"},
}

// bashGroupValues are the suggestions shared by grouped flags in bash.
var bashGroupValues = map[string][]string{
	"count": {"1", "2", "4", "8", "16"},
}

// zshHelpOverrides replaces help text where zsh wants a shorter wording.
var zshHelpOverrides = map[string]string{
	"procs":        "Rank count",
	"metrics-file": "Metrics file",
}

// GenerateCompletion writes a completion script for shell ("bash", "zsh",
// "fish", "powershell" or "ps") to out.
func GenerateCompletion(out io.Writer, shell string, strategies []string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, strategies)
	case "zsh":
		return generateZshCompletion(out, strategies)
	case "fish":
		return generateFishCompletion(out, strategies)
	case "powershell", "ps":
		return generatePowerShellCompletion(out, strategies)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
}

// flagKey is the Long name if present, else Short.
func flagKey(f FlagCompletion) string {
	if f.Long != "" {
		return f.Long
	}
	return f.Short
}

func flagNames(f FlagCompletion) []string {
	var names []string
	if f.Long != "" {
		names = append(names, "--"+f.Long)
	}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func generateBashCompletion(out io.Writer, strategies []string) error {
	var opts []string
	for _, f := range flagRegistry {
		opts = append(opts, flagNames(f)...)
	}

	type caseEntry struct {
		patterns []string
		body     string
	}
	compgen := func(words string) string {
		return fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, words)
	}

	var cases []caseEntry
	var filePatterns, dirPatterns []string
	seenGroups := map[string]bool{}
	for _, f := range flagRegistry {
		switch {
		case f.IsStrategy:
			cases = append(cases, caseEntry{flagNames(f), compgen("${strategies}")})
		case f.IsFile:
			filePatterns = append(filePatterns, flagNames(f)...)
		case f.IsDir:
			dirPatterns = append(dirPatterns, flagNames(f)...)
		case f.BashGroup != "":
			if seenGroups[f.BashGroup] {
				continue
			}
			seenGroups[f.BashGroup] = true
			var patterns []string
			for _, gf := range flagRegistry {
				if gf.BashGroup == f.BashGroup {
					patterns = append(patterns, flagNames(gf)...)
				}
			}
			cases = append(cases, caseEntry{patterns, compgen(strings.Join(bashGroupValues[f.BashGroup], " "))})
		case len(f.Values) > 0:
			cases = append(cases, caseEntry{flagNames(f), compgen(strings.Join(f.Values, " "))})
		}
	}
	if len(filePatterns) > 0 {
		cases = append(cases, caseEntry{filePatterns, `COMPREPLY=( $(compgen -f -- "${cur}") )`})
	}
	if len(dirPatterns) > 0 {
		cases = append(cases, caseEntry{dirPatterns, `COMPREPLY=( $(compgen -d -- "${cur}") )`})
	}

	var caseBody strings.Builder
	for _, c := range cases {
		fmt.Fprintf(&caseBody, "        %s)\n            %s\n            return 0\n            ;;\n",
			strings.Join(c.patterns, "|"), c.body)
	}

	script := fmt.Sprintf(`# Bash completion script for mandelpart
# Add this to your ~/.bashrc or ~/.bash_completion

_mandelpart_completions() {
    local cur prev opts strategies
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%s"
    strategies="%s all"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _mandelpart_completions mandelpart
`, strings.Join(opts, " "), strings.Join(strategies, " "), caseBody.String())

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

func generateZshCompletion(out io.Writer, strategies []string) error {
	var args []string
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	args = append(args, "        '1:height:'", "        '2:width:'")

	script := fmt.Sprintf(`#compdef mandelpart

# Zsh completion script for mandelpart
# Place this file in a directory of your $fpath

_mandelpart() {
    local -a strategies
    strategies=(%s all)

    _arguments -s \
%s
}

_mandelpart "$@"
`, strings.Join(strategies, " "), strings.Join(args, " \\\n"))

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

func zshHelp(f FlagCompletion) string {
	if override, ok := zshHelpOverrides[flagKey(f)]; ok {
		return override
	}
	return f.Help
}

// zshArgEntry formats f as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	help := zshHelp(f)

	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsDir:
		valueSuffix = fmt.Sprintf(":%s:_directories", f.ValueName)
	case f.IsStrategy:
		valueSuffix = fmt.Sprintf(":%s:($strategies)", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Long != "" && f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, help, valueSuffix)
	}
	if f.Long != "" {
		return fmt.Sprintf("        '--%s[%s]%s'", f.Long, help, valueSuffix)
	}
	return fmt.Sprintf("        '-%s[%s]%s'", f.Short, help, valueSuffix)
}

func generateFishCompletion(out io.Writer, strategies []string) error {
	lines := []string{
		"# Fish completion script for mandelpart",
		"# Add this to ~/.config/fish/completions/mandelpart.fish",
		"",
		"complete -c mandelpart -f",
		"",
	}

	sections := []struct {
		comment string
		flags   []FlagCompletion
	}{
		{"# Help and version", filterFlags("help", "version")},
		{"# Partitioning", filterFlags("procs", "strategy", "granularity", "timeout")},
		{"# Output", filterFlags("output-dir", "palette", "no-render", "print", "metrics-file", "quiet", "verbose", "no-color")},
		{"# Configuration", filterFlags("config", "log-level", "completion")},
	}

	strategyList := strings.Join(strategies, " ")
	for _, sec := range sections {
		lines = append(lines, sec.comment)
		for _, f := range sec.flags {
			lines = append(lines, fishCompleteLine(f, strategyList))
		}
		lines = append(lines, "")
	}

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// filterFlags returns the registry entries with the given Long names, in
// argument order.
func filterFlags(names ...string) []FlagCompletion {
	var result []FlagCompletion
	for _, name := range names {
		for _, f := range flagRegistry {
			if f.Long == name {
				result = append(result, f)
				break
			}
		}
	}
	return result
}

// fishCompleteLine formats f as a fish complete command. Fish short options
// are single characters, so multi-letter shorts become old-style options.
func fishCompleteLine(f FlagCompletion, strategyList string) string {
	parts := []string{"complete -c mandelpart"}
	switch {
	case len(f.Short) == 1:
		parts = append(parts, "-s "+f.Short)
	case f.Short != "":
		parts = append(parts, "-o "+f.Short)
	}
	if f.Long != "" {
		parts = append(parts, "-l "+f.Long)
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile, f.IsDir:
		parts = append(parts, "-rF")
	case f.IsStrategy:
		parts = append(parts, fmt.Sprintf("-xa '%s all'", strategyList))
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.BashGroup != "":
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(bashGroupValues[f.BashGroup], " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}

func generatePowerShellCompletion(out io.Writer, strategies []string) error {
	var optionEntries []string
	for _, f := range flagRegistry {
		for _, name := range flagNames(f) {
			optionEntries = append(optionEntries, fmt.Sprintf(
				"        @{Name = '%s'; Description = '%s' }", name, f.Help))
		}
	}

	psSwitchEntry := func(flag, source string) string {
		return fmt.Sprintf(`        '%s' {
            %s | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }`, flag, source)
	}
	quoted := func(values []string) string {
		q := make([]string, len(values))
		for i, v := range values {
			q[i] = fmt.Sprintf("'%s'", v)
		}
		return "@(" + strings.Join(q, ", ") + ")"
	}

	var switchEntries []string
	for _, f := range flagRegistry {
		switch {
		case f.IsStrategy:
			switchEntries = append(switchEntries, psSwitchEntry("--"+f.Long, "$mandelpartStrategies"))
		case len(f.Values) > 0:
			switchEntries = append(switchEntries, psSwitchEntry("--"+f.Long, quoted(f.Values)))
		}
	}

	script := fmt.Sprintf(`# PowerShell completion script for mandelpart
# Add this to your $PROFILE

$mandelpartStrategies = %s

Register-ArgumentCompleter -CommandName 'mandelpart' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%s
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    switch ($prevElement) {
%s
    }

    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`, quoted(append(append([]string(nil), strategies...), "all")), strings.Join(optionEntries, "\n"), strings.Join(switchEntries, "\n"))

	_, err := fmt.Fprint(out, script)
	return err
}
