package cli

import (
	"fmt"
	"strings"

	"github.com/ksyq12/wpstack/internal/output"
)

// requireRoot checks root privileges through the injected checker
func requireRoot() error {
	return deps.RootChecker.RequireRoot()
}

// promptString asks for a value until it validates. An empty answer takes
// the default when one is set.
func promptString(label, def string, validate func(string) error) (string, error) {
	for {
		if def != "" {
			output.Print("%s [%s]: ", label, def)
		} else {
			output.Print("%s: ", label)
		}

		answer, err := deps.StdinReader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			answer = def
		}

		if err := validate(answer); err != nil {
			output.Error("%v", err)
			continue
		}
		return answer, nil
	}
}

// promptPassword asks for a non-empty password without echoing it.
func promptPassword(label string) (string, error) {
	for {
		output.Print("%s: ", label)
		answer, err := deps.PasswordReader.ReadPassword()
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		if answer == "" {
			output.Error("value cannot be empty")
			continue
		}
		return answer, nil
	}
}

// promptYesNo asks a yes/no question. An empty answer takes the default.
func promptYesNo(question string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	output.Print("%s [%s]: ", question, hint)

	answer, err := deps.StdinReader.ReadString('\n')
	if err != nil {
		return def
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer == "" {
		return def
	}
	return answer == "y" || answer == "yes"
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}
