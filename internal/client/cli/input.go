package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// Indirections swapped in tests.
var (
	printlnFn = fmt.Println
	timeNow   = time.Now
	readPass  = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
)

func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	fmt.Fprintln(w, prompt)
	text, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func GetPassword(w io.Writer) ([]byte, error) {
	fmt.Fprintln(w, "-Enter password")
	return readPass()
}

// GetYesNo reads y/yes as true; anything else is false.
func GetYesNo(reader *bufio.Reader, prompt string, w io.Writer) (bool, error) {
	text, err := GetSimpleText(reader, prompt+" [y/N]", w)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(text) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
