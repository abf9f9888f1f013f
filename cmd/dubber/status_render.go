package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

func colorizeStatus(kind statusKind, colorize bool) string {
	label := statusKindLabel(kind)
	if !colorize {
		return label
	}
	switch kind {
	case statusOK:
		return ansiGreen + label + ansiReset
	case statusWarn:
		return ansiYellow + label + ansiReset
	default:
		return ansiRed + label + ansiReset
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
