package interpret

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbaille/zhouyi/internal/oracle"
)

// Offline answers from the judgment text alone. It is used when no
// provider is configured, so a cast still produces a reading.
type Offline struct{}

func (Offline) Name() string { return "offline" }

func (Offline) Interpret(_ context.Context, req Request) (string, error) {
	lang := req.Language
	h := req.Hexagram
	var sb strings.Builder

	fmt.Fprintf(&sb, "#%d %s\n\n", h.Number, h.Title(lang))
	sb.WriteString(h.JudgmentText(lang))
	sb.WriteString("\n")
	if req.Relating != nil {
		if lang == oracle.Chinese {
			fmt.Fprintf(&sb, "\n动爻 %s，之卦为第%d卦 %s：%s\n",
				joinInts(req.Changing), req.Relating.Number, req.Relating.Chinese, req.Relating.JudgmentText(lang))
		} else {
			fmt.Fprintf(&sb, "\nChanging lines %s lead to #%d %s: %s\n",
				joinInts(req.Changing), req.Relating.Number, req.Relating.Title(lang), req.Relating.Judgment)
		}
	}

	if lang == oracle.Chinese {
		sb.WriteString("\n### 总结\n")
	} else {
		sb.WriteString("\n### Summary\n")
	}
	sb.WriteString(h.JudgmentText(lang))
	return sb.String(), nil
}
