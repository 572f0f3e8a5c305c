// =============================================================================
// 📦 测试数据工厂 - 参议员人设
// =============================================================================
// 提供预定义的人设，用于编排器与会话测试
// =============================================================================
package fixtures

import (
	"fmt"

	"github.com/BaSui01/senate/llm"
	"github.com/BaSui01/senate/persona"
)

// Persona 返回一个字段齐全的人设
func Persona(name, party string) *persona.Persona {
	return &persona.Persona{
		ID:         name,
		Name:       name,
		Party:      party,
		State:      "Ohio",
		Experience: 10,
		Traits:     []string{"pragmatic", "bipartisan"},
		Policies:   []string{"infrastructure investment"},
		Backend:    llm.BackendGPT4,
	}
}

// PersonaWithBackend 返回使用指定后端的人设
func PersonaWithBackend(name, party string, backend llm.Backend) *persona.Persona {
	p := Persona(name, party)
	p.Backend = backend
	return p
}

// AB 返回两位参议员 A [X] 与 B [Y]
func AB() []*persona.Persona {
	return []*persona.Persona{Persona("A", "X"), Persona("B", "Y")}
}

// Senate 返回 n 位名字各不相同的参议员
func Senate(n int) []*persona.Persona {
	parties := []string{"Democrat", "Republican", "Independent"}
	out := make([]*persona.Persona, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Persona(fmt.Sprintf("Senator%02d", i+1), parties[i%len(parties)]))
	}
	return out
}
