package persona

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BaSui01/senate/llm"
	"github.com/BaSui01/senate/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// 📦 人设文件加载
// =============================================================================
// 支持两种文件形状:
//
//	{"sen1": {...}, "sen2": {...}}   记录映射，保持文档顺序
//	[{...}, {...}]                     记录列表
//
// .json 文件使用 encoding/json 的 token 流解码（保持键顺序），
// 其它扩展名按 YAML 解析。
// =============================================================================

// record 是文件中的原始记录，指针字段用于区分缺失与零值。
type record struct {
	Name       *string    `yaml:"name" json:"name"`
	Party      *string    `yaml:"party" json:"party"`
	State      *string    `yaml:"state" json:"state"`
	Experience *int       `yaml:"experience" json:"experience"`
	Traits     stringList `yaml:"traits" json:"traits"`
	Policies   stringList `yaml:"policies" json:"policies"`
	Bio        string     `yaml:"bio" json:"bio"`
	Backend    string     `yaml:"backend" json:"backend"`
}

type keyedRecord struct {
	id  string
	rec record
}

// Load 读取并校验人设文件，返回按文件顺序排列的人设。
func Load(path string) ([]*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseYAML 解析 YAML 格式的人设数据。
func ParseYAML(data []byte) ([]*Persona, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, types.NewError(types.ErrInvalidPersona, "parse persona yaml").WithCause(err)
	}
	if len(doc.Content) == 0 {
		return nil, types.NewError(types.ErrInvalidPersona, "persona file is empty")
	}

	root := doc.Content[0]
	var records []keyedRecord
	switch root.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			id := root.Content[i].Value
			var rec record
			if err := root.Content[i+1].Decode(&rec); err != nil {
				return nil, invalid(id, "", err.Error())
			}
			records = append(records, keyedRecord{id: id, rec: rec})
		}
	case yaml.SequenceNode:
		for i, n := range root.Content {
			id := "#" + strconv.Itoa(i)
			var rec record
			if err := n.Decode(&rec); err != nil {
				return nil, invalid(id, "", err.Error())
			}
			records = append(records, keyedRecord{id: id, rec: rec})
		}
	default:
		return nil, types.NewError(types.ErrInvalidPersona, "persona file must be a mapping or a list of records")
	}

	return build(records)
}

// ParseJSON 解析 JSON 格式的人设数据。
func ParseJSON(data []byte) ([]*Persona, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, types.NewError(types.ErrInvalidPersona, "parse persona json").WithCause(err)
	}

	var records []keyedRecord
	switch tok {
	case json.Delim('{'):
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, types.NewError(types.ErrInvalidPersona, "parse persona json").WithCause(err)
			}
			id, _ := keyTok.(string)
			var rec record
			if err := dec.Decode(&rec); err != nil {
				return nil, invalid(id, "", err.Error())
			}
			records = append(records, keyedRecord{id: id, rec: rec})
		}
	case json.Delim('['):
		for i := 0; dec.More(); i++ {
			id := "#" + strconv.Itoa(i)
			var rec record
			if err := dec.Decode(&rec); err != nil {
				return nil, invalid(id, "", err.Error())
			}
			records = append(records, keyedRecord{id: id, rec: rec})
		}
	default:
		return nil, types.NewError(types.ErrInvalidPersona, "persona file must be an object or an array of records")
	}

	// 结束符之后不应再有内容
	if _, err := dec.Token(); err != nil {
		return nil, types.NewError(types.ErrInvalidPersona, "parse persona json").WithCause(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, types.NewError(types.ErrInvalidPersona, "unexpected data after persona records")
	}

	return build(records)
}

func build(records []keyedRecord) ([]*Persona, error) {
	if len(records) == 0 {
		return nil, types.NewError(types.ErrInvalidPersona, "persona file contains no records")
	}

	seen := make(map[string]string, len(records))
	out := make([]*Persona, 0, len(records))
	for _, kr := range records {
		p, err := kr.rec.toPersona(kr.id)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(p.Name)
		if prev, dup := seen[key]; dup {
			return nil, invalid(kr.id, "name", fmt.Sprintf("duplicate of record %q", prev))
		}
		seen[key] = kr.id
		out = append(out, p)
	}
	return out, nil
}

func (r record) toPersona(id string) (*Persona, error) {
	name, err := requireString(id, "name", r.Name)
	if err != nil {
		return nil, err
	}
	party, err := requireString(id, "party", r.Party)
	if err != nil {
		return nil, err
	}
	state, err := requireString(id, "state", r.State)
	if err != nil {
		return nil, err
	}
	if r.Experience == nil {
		return nil, invalid(id, "experience", "is required")
	}
	if *r.Experience < 0 {
		return nil, invalid(id, "experience", "must not be negative")
	}
	if len(r.Traits) == 0 {
		return nil, invalid(id, "traits", "is required")
	}
	if len(r.Policies) == 0 {
		return nil, invalid(id, "policies", "is required")
	}
	backend, err := llm.ParseBackend(r.Backend)
	if err != nil {
		return nil, types.Errorf(types.ErrUnsupportedBackend, "persona %q: field \"backend\"", id).
			WithCause(err)
	}

	return &Persona{
		ID:         id,
		Name:       name,
		Party:      party,
		State:      state,
		Experience: *r.Experience,
		Traits:     append([]string(nil), r.Traits...),
		Policies:   append([]string(nil), r.Policies...),
		Bio:        strings.TrimSpace(r.Bio),
		Backend:    backend,
	}, nil
}

func requireString(id, field string, v *string) (string, error) {
	if v == nil {
		return "", invalid(id, field, "is required")
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return "", invalid(id, field, "must not be empty")
	}
	return s, nil
}

func invalid(id, field, reason string) *types.Error {
	if field == "" {
		return types.Errorf(types.ErrInvalidPersona, "persona %q: %s", id, reason)
	}
	return types.Errorf(types.ErrInvalidPersona, "persona %q: field %q %s", id, field, reason)
}

// stringList 接受单个字符串或字符串列表。
type stringList []string

func (s *stringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*s = splitScalar(n.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		*s = trimAll(items)
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", n.Line)
	}
}

func (s *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = splitScalar(one)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected a string or a list of strings")
	}
	*s = trimAll(items)
	return nil
}

func splitScalar(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return []string{v}
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
