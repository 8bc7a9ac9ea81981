package resolve

import (
	"strings"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

const (
	MarkVerified   = "✔"
	MarkRegistry   = "◯"
	MarkUnresolved = "✘"
)

// Marker 返回条目状态对应的符号。
func Marker(status string) string {
	switch status {
	case domain.CreditVerified:
		return MarkVerified
	case domain.CreditRegistry:
		return MarkRegistry
	default:
		return MarkUnresolved
	}
}

// DisplayRole 是展示给宿主的角色文本："✔ Top"、"◯ ?"、"✘ ?"。导演没有角色时只显示符号。
func DisplayRole(c domain.Credit) string {
	if c.Role == "" {
		return Marker(c.Status)
	}
	return Marker(c.Status) + " " + c.Role
}

// Legend 返回一行图例，并附上影片在 registry 上的状态。
func Legend(film *domain.RegistryMatch) string {
	var b strings.Builder
	b.WriteString("Cast: ")
	b.WriteString(MarkVerified + " verified role · ")
	b.WriteString(MarkRegistry + " on registry, role unknown · ")
	b.WriteString(MarkUnresolved + " not on registry")
	b.WriteString(" | Film: ")
	switch {
	case film == nil:
		b.WriteString(MarkUnresolved + " not on registry")
	case film.Compilation:
		b.WriteString(MarkVerified + " on registry (compilation)")
	default:
		b.WriteString(MarkVerified + " on registry")
	}
	return b.String()
}
