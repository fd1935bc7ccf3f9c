// Command qcalc is a line-oriented driver for the qcalc engine, a
// headless analogue of qcalc.py's GTK+ __main__ block (see
// SPEC_FULL.md Non-goals — qpact carries no GUI toolkit dependency).
// It reads whitespace-separated tokens from stdin: digits, ".", one of
// "+ - * /", "=", "c", "ce", and prints the display after each.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/qpact/qpact"
	"github.com/qpact/qpact/examples/qcalc"
)

func main() {
	eng := qcalc.New(14)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		tok := scanner.Text()
		e := tokenToEvent(tok)
		if e == nil {
			fmt.Fprintf(os.Stderr, "qcalc: unrecognized token %q\n", tok)
			continue
		}
		eng.Dispatch(e)
		fmt.Println(eng.Display())
	}
}

func tokenToEvent(tok string) *qpact.Event {
	switch {
	case tok == "c":
		return qpact.NewEvent(qcalc.CSig, nil)
	case tok == "ce":
		return qpact.NewEvent(qcalc.CESig, nil)
	case tok == "=":
		return qpact.NewEvent(qcalc.EqualsSig, nil)
	case tok == ".":
		return qpact.NewEvent(qcalc.PointSig, ".")
	case strings.ContainsAny(tok, "+-*/") && len(tok) == 1:
		return qpact.NewEvent(qcalc.OperSig, tok)
	case len(tok) == 1 && tok[0] == '0':
		return qpact.NewEvent(qcalc.Digit0Sig, "0")
	case len(tok) == 1 && tok[0] >= '1' && tok[0] <= '9':
		return qpact.NewEvent(qcalc.Digit1To9Sig, tok)
	}
	return nil
}
