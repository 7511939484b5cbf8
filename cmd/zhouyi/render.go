package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pbaille/zhouyi/internal/domain"
	"github.com/pbaille/zhouyi/internal/oracle"
	"github.com/rivo/uniseg"
)

// messages holds the CLI's user-facing strings as {English, Chinese}.
var messages = map[string][2]string{
	"question":     {"Your question: ", "你的问题："},
	"press":        {"Press Enter to cast line %d/6 ", "按回车掷第 %d/6 爻 "},
	"line":         {"Line", "爻"},
	"changing":     {"Changing lines", "动爻"},
	"relating":     {"Relating", "之卦"},
	"lower":        {"Lower", "下卦"},
	"upper":        {"Upper", "上卦"},
	"judgment":     {"Judgment", "卦辞"},
	"summary":      {"Summary", "总结"},
	"consulting":   {"Consulting %s...", "正在请教 %s……"},
	"interpFailed": {"Interpretation failed: %v", "解读失败：%v"},
	"saved":        {"Saved as %s", "已保存：%s"},
}

func msg(lang oracle.Language, key string) string {
	m, ok := messages[key]
	if !ok {
		return key
	}
	if lang == oracle.Chinese {
		return m[1]
	}
	return m[0]
}

func printLine(w io.Writer, pos int, l oracle.Line, lang oracle.Language) {
	coins := make([]string, len(l.Coins))
	for i, c := range l.Coins {
		coins[i] = c.String()
	}
	fmt.Fprintf(w, "%s %d  %s  %d  %s  [%s]\n",
		msg(lang, "line"), pos, l.Type().Glyph(), l.Total, l.Type().Name(lang), strings.Join(coins, " "))
}

// printFigure draws lines top to bottom.
func printFigure(w io.Writer, lines []oracle.Line) {
	for i := len(lines) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "  %s\n", lines[i].Type().Glyph())
	}
}

// printKeyFigure draws a binary key top to bottom.
func printKeyFigure(w io.Writer, key string) {
	for i := len(key) - 1; i >= 0; i-- {
		t := oracle.YoungYin
		if key[i] == '1' {
			t = oracle.YoungYang
		}
		fmt.Fprintf(w, "  %s\n", t.Glyph())
	}
}

func printHexagram(w io.Writer, h oracle.Hexagram, lang oracle.Language) {
	fmt.Fprintf(w, "#%d %s %s\n", h.Number, h.Title(lang), h.Binary)
	fmt.Fprintf(w, "  %s: %s   %s: %s\n",
		msg(lang, "lower"), h.Lower().Title(lang), msg(lang, "upper"), h.Upper().Title(lang))
	fmt.Fprintf(w, "  %s: %s\n", msg(lang, "judgment"), h.JudgmentText(lang))
}

func printResult(w io.Writer, r oracle.Result, lang oracle.Language) {
	fmt.Fprintln(w)
	printFigure(w, r.Lines)
	fmt.Fprintln(w)
	printHexagram(w, r.Hexagram, lang)
	if r.Relating != nil {
		fmt.Fprintf(w, "\n%s: %s\n", msg(lang, "changing"), joinPositions(r.Changing))
		fmt.Fprintf(w, "%s: ", msg(lang, "relating"))
		printHexagram(w, *r.Relating, lang)
	}
}

func printInterpretation(w io.Writer, in oracle.Interpretation, lang oracle.Language) {
	fmt.Fprintf(w, "\n%s\n", in.Reading)
	if in.Summary != "" {
		fmt.Fprintf(w, "\n%s: %s\n", msg(lang, "summary"), in.Summary)
	}
}

func printReading(w io.Writer, r *domain.Reading) {
	lang := r.Language
	fmt.Fprintf(w, "ID:       %s\n", r.ID)
	fmt.Fprintf(w, "Created:  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Question: %s\n\n", r.Question)
	printFigure(w, r.Lines)
	fmt.Fprintln(w)
	if h, ok := oracle.HexagramByNumber(r.Hexagram); ok {
		printHexagram(w, h, lang)
	}
	if r.Relating != nil {
		if h, ok := oracle.HexagramByNumber(*r.Relating); ok {
			fmt.Fprintf(w, "\n%s: %s\n", msg(lang, "changing"), joinPositions(oracle.ChangingPositions(r.Lines)))
			fmt.Fprintf(w, "%s: ", msg(lang, "relating"))
			printHexagram(w, h, lang)
		}
	}
	if r.Interpreted() {
		if r.Provider != "" {
			fmt.Fprintf(w, "\n[%s]", r.Provider)
		}
		printInterpretation(w, oracle.Interpretation{Reading: r.Reading, Summary: r.Summary}, lang)
	}
}

func joinPositions(ps []int) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to max grapheme clusters for one-line display.
func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	if uniseg.GraphemeClusterCount(s) <= max {
		return s
	}

	var sb strings.Builder
	g := uniseg.NewGraphemes(s)
	for n := 0; n < max-3 && g.Next(); n++ {
		sb.WriteString(g.Str())
	}
	return sb.String() + "..."
}
