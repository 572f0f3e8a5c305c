package persona

import (
	"fmt"
	"strings"

	"github.com/BaSui01/senate/llm"
)

// Persona 是一位参议员的不可变人设。加载后不再修改。
type Persona struct {
	// ID 是源文件中的记录键（列表形式为 "#序号"）
	ID         string
	Name       string
	Party      string
	State      string
	Experience int
	Traits     []string
	Policies   []string
	Bio        string
	Backend    llm.Backend
}

// Description 返回作为系统消息使用的人设描述。
// 只依赖不可变字段，同一 Persona 多次调用结果相同。
func (p *Persona) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are Senator %s from %s, representing the %s party. ", p.Name, p.State, p.Party)
	fmt.Fprintf(&b, "You have %d years of experience in the Senate. ", p.Experience)
	fmt.Fprintf(&b, "Your main traits are %s. ", strings.Join(p.Traits, ", "))
	fmt.Fprintf(&b, "My policies include: %s.", strings.Join(p.Policies, "; "))
	if p.Bio != "" {
		b.WriteString(" Biography: ")
		b.WriteString(p.Bio)
	}
	return b.String()
}

// Label 返回对话中使用的发言人标签 "{name} [{party}]"。
func (p *Persona) Label() string {
	return p.Name + " [" + p.Party + "]"
}
