package main

import (
	"fmt"
	"os"

	"github.com/Joszi2006/pillinfo/internal/lookup"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stdout, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

// printResult renders a lookup envelope for the terminal.
func printResult(res lookup.Result) {
	if !res.Success {
		printError("%s", res.Error)
		return
	}

	switch res.MatchType {
	case lookup.MatchExact:
		printSuccess("Found it!")
		if res.DrugInfo != nil {
			printStatus("Drug", "%s", res.DrugInfo.DrugName)
			if res.DrugInfo.GenericName != "" {
				printStatus("Generic", "%s", res.DrugInfo.GenericName)
			}
			for _, w := range res.DrugInfo.Warnings {
				printWarning("%s", w)
			}
		}
	case lookup.MatchMultiple:
		printStep("Several products match %s, be more specific:", res.BrandName)
		for _, p := range res.MatchedProducts {
			fmt.Fprintf(os.Stdout, "  - %s\n", p.Name)
		}
	case lookup.MatchVague:
		printStep("Did you mean one of these %s products?", res.BrandName)
		for _, p := range res.MatchedProducts {
			fmt.Fprintf(os.Stdout, "  - %s\n", p.Name)
		}
	default:
		printWarning("No match found.")
	}

	if res.DosageInfo != nil {
		printStatus("Adult dose", "%.0fmg", res.DosageInfo.AdultDoseMg)
		printStatus("Recommended", "%.1fmg (for %.1fkg)", res.DosageInfo.RecommendedDoseMg, res.DosageInfo.PatientWeightKg)
		for name, m := range res.DosageInfo.Methods {
			printStatus(name, "%.1fmg", m.DoseMg)
		}
		for _, w := range res.DosageInfo.Warnings {
			printWarning("%s", w)
		}
	}
}
