package ui

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Confirm prompts the user for a yes/no answer.
func Confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print(prompt + " (y/n): ")
		var input string
		fmt.Scanln(&input)
		return strings.ToLower(input) == "y", nil
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return false, err
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	fmt.Print(prompt + " (y/n): ")

	for {
		b := make([]byte, 1)
		if _, err := os.Stdin.Read(b); err != nil {
			return false, err
		}

		if b[0] == 3 { // Ctrl+C
			fmt.Print("^C\r\n")
			return false, fmt.Errorf("cancelled")
		}

		switch strings.ToLower(string(b[0])) {
		case "y":
			fmt.Print("y\r\n")
			return true, nil
		case "n":
			fmt.Print("n\r\n")
			return false, nil
		}
	}
}
