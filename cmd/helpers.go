package cmd

import (
	"fmt"
	"strings"
)

func listenerHeader(requesterAddress, network, backend string) {
	if requesterAddress == "" {
		requesterAddress = "any"
	}
	if network == "" {
		network = "mainnet"
	}
	if backend == "" {
		backend = "electrs"
	}

	prefix := "| "
	suffix := " |"

	lines := []string{
		"tBTC Redemption Listener",
		"",
		fmt.Sprintf("Requester: %s", requesterAddress),
		fmt.Sprintf("Bitcoin  : %s via %s", network, backend),
	}

	maxLineLength := 0
	for _, line := range lines {
		if lineLength := len(line); lineLength > maxLineLength {
			maxLineLength = lineLength
		}
	}

	maxLineLength += len(prefix) + len(suffix) + 6
	dashes := strings.Repeat("-", maxLineLength)

	builtLines := make([]string, len(lines))
	for i, line := range lines {
		builtLines[i] = buildLine(maxLineLength, prefix, suffix, line)
	}

	fmt.Printf(
		"%s\n%s\n%s\n\n",
		dashes,
		strings.Join(builtLines, "\n"),
		dashes,
	)
}

func buildLine(lineLength int, prefix, suffix string, internalContent string) string {
	contentLength := len(prefix) + len(suffix) + len(internalContent)
	padding := lineLength - contentLength

	return fmt.Sprintf(
		"%s%s%s%s",
		prefix,
		internalContent,
		strings.Repeat(" ", padding),
		suffix,
	)
}
