package interpret

import (
	"fmt"
	"strings"

	"github.com/pbaille/zhouyi/internal/oracle"
)

// BuildPrompt writes the interpretation prompt in the request's language.
// Both versions ask for a closing summary section under the heading the
// segmenter looks for.
func BuildPrompt(req Request) string {
	if req.Language == oracle.Chinese {
		return buildChinesePrompt(req)
	}
	return buildEnglishPrompt(req)
}

func buildEnglishPrompt(req Request) string {
	var sb strings.Builder
	h := req.Hexagram

	sb.WriteString("I am consulting the I Ching in earnest.\n\n")
	fmt.Fprintf(&sb, "Question: %s\n", req.Question)
	fmt.Fprintf(&sb, "Hexagram: #%d %s (%s)\n", h.Number, h.Name, h.English)
	fmt.Fprintf(&sb, "Trigrams: %s above %s\n", h.Upper().Title(oracle.English), h.Lower().Title(oracle.English))
	fmt.Fprintf(&sb, "Judgment: %s\n", h.Judgment)
	if len(req.Changing) > 0 {
		fmt.Fprintf(&sb, "Changing lines: %s\n", joinInts(req.Changing))
	}
	if req.Relating != nil {
		fmt.Fprintf(&sb, "Relating hexagram: #%d %s (%s)\n", req.Relating.Number, req.Relating.Name, req.Relating.English)
	}

	sb.WriteString(`
Interpret this hexagram as an experienced I Ching reader, addressing my
question directly. Be specific rather than vague: if the figure warns of
difficulty, say so plainly; if it is favourable, say what to do. Draw on the
trigrams, the judgment and any changing lines. Write in clear English.

Finish with a short summary of under 100 words suitable for a share card,
under its own heading "### Summary". Do not add word counts or other notes.`)

	return sb.String()
}

func buildChinesePrompt(req Request) string {
	var sb strings.Builder
	h := req.Hexagram

	sb.WriteString("我诚心向周易求问。\n\n")
	fmt.Fprintf(&sb, "问题：%s\n", req.Question)
	fmt.Fprintf(&sb, "卦象：第%d卦 %s\n", h.Number, h.Chinese)
	fmt.Fprintf(&sb, "上下卦：上%s 下%s\n", h.Upper().Title(oracle.Chinese), h.Lower().Title(oracle.Chinese))
	fmt.Fprintf(&sb, "卦辞：%s\n", h.JudgmentText(oracle.Chinese))
	if len(req.Changing) > 0 {
		fmt.Fprintf(&sb, "动爻：%s\n", joinInts(req.Changing))
	}
	if req.Relating != nil {
		fmt.Fprintf(&sb, "之卦：第%d卦 %s\n", req.Relating.Number, req.Relating.Chinese)
	}

	sb.WriteString(`
请以精通易经者的身份，结合卦德、上下卦与动爻，针对我的问题给出具体而有洞见的解读。
不要说模棱两可的话：卦象不利就明确提醒，卦象吉利就指明行动方向。请用清晰易懂的中文回答。

最后请另起一段，以“### 总结”为标题，写一段100字以内的总结，用于分享卡片。不要附加字数统计或其他说明。`)

	return sb.String()
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
