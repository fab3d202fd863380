package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// stdinReader is shared by all prompts so buffered type-ahead survives from
// one question to the next when stdin is piped.
var stdinReader = bufio.NewReader(os.Stdin)

// PromptString asks for a value on stdin. An empty answer returns def.
func PromptString(message, def string) (string, error) {
	if def != "" {
		fmt.Printf("? %s [%s]: ", message, def)
	} else {
		fmt.Printf("? %s: ", message)
	}

	input, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return def, nil
	}
	return input, nil
}

// PromptRequired asks for a value that has no default. An empty answer is
// fatal on the spot. No retries.
func PromptRequired(message string) (string, error) {
	value, err := PromptString(message, "")
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", fmt.Errorf("%s is required", message)
	}
	return value, nil
}

// PromptSecret asks for a value without echoing it back to the terminal.
// Falls back to a plain prompt when stdin is not a terminal.
func PromptSecret(message string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return PromptString(message, "")
	}

	fmt.Printf("? %s: ", message)
	data, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// PromptPort asks for a TCP port number. An empty answer returns def when
// def is non-zero.
func PromptPort(message string, def int) (int, error) {
	var defStr string
	if def != 0 {
		defStr = strconv.Itoa(def)
	}

	input, err := PromptString(message, defStr)
	if err != nil {
		return 0, err
	}
	if input == "" {
		return 0, fmt.Errorf("port is required")
	}

	port, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", input, err)
	}
	return port, nil
}

// IsInteractive returns true if stdin is a terminal and --yes is not set
func IsInteractive() bool {
	if IsYesMode() {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}
