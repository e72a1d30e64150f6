package config

import (
	"fmt"
	"strconv"
	"strings"
)

// checkPort accepts a decimal TCP port in 1..65535.
func checkPort(port, section string) error {
	if port == "" {
		return fmt.Errorf("%s port cannot be empty", section)
	}
	n, err := strconv.ParseUint(port, 10, 16)
	if err != nil || n == 0 {
		return fmt.Errorf("%s port must be a number between 1 and 65535, got %q", section, port)
	}
	return nil
}

// checkToken accepts a non-empty value without surrounding or inner blanks.
func checkToken(value, label string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", label)
	}
	if strings.ContainsAny(value, " \t\r\n") {
		return fmt.Errorf("%s cannot contain whitespace", label)
	}
	return nil
}
