package contract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError 后端输出无法按Contract解码。Raw保留原始文本供排查
type ParseError struct {
	Field  string
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("contract parse: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("contract parse: %s", e.Reason)
}

// Parse 从自由文本中提取声明的字段。允许围绕结构化内容的少量噪声文本，
// 但缺失字段或形状不符一律报错，绝不以默认值填充
func (c Contract) Parse(raw string) (map[string]interface{}, error) {
	payload, ok := extractJSON(raw)
	if !ok {
		return nil, &ParseError{Reason: "no JSON object found in output", Raw: raw}
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("malformed JSON: %v", err), Raw: raw}
	}

	out := make(map[string]interface{}, len(c.fields))
	for _, f := range c.fields {
		v, present := decoded[f.Name]
		if !present || v == nil {
			return nil, &ParseError{Field: f.Name, Reason: "required field missing", Raw: raw}
		}
		norm, err := normalizeField(f, v, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = norm
	}
	return out, nil
}

func normalizeField(f Field, v interface{}, raw string) (interface{}, error) {
	switch {
	case len(f.Item) > 0:
		items, ok := v.([]interface{})
		if !ok {
			return nil, &ParseError{Field: f.Name, Reason: "expected a list of objects", Raw: raw}
		}
		if f.Arity > 0 && len(items) != f.Arity {
			return nil, &ParseError{
				Field:  f.Name,
				Reason: fmt.Sprintf("expected exactly %d entries, got %d", f.Arity, len(items)),
				Raw:    raw,
			}
		}
		out := make([]map[string]interface{}, 0, len(items))
		for i, it := range items {
			obj, ok := it.(map[string]interface{})
			if !ok {
				return nil, &ParseError{
					Field:  f.Name,
					Reason: fmt.Sprintf("entry %d is not an object", i),
					Raw:    raw,
				}
			}
			normObj := make(map[string]interface{}, len(f.Item))
			for _, sub := range f.Item {
				sv, present := obj[sub.Name]
				if !present || sv == nil {
					return nil, &ParseError{
						Field:  f.Name + "." + sub.Name,
						Reason: fmt.Sprintf("missing in entry %d", i),
						Raw:    raw,
					}
				}
				norm, err := normalizeField(sub, sv, raw)
				if err != nil {
					return nil, err
				}
				normObj[sub.Name] = norm
			}
			out = append(out, normObj)
		}
		return out, nil

	case f.List:
		items, ok := v.([]interface{})
		if !ok {
			return nil, &ParseError{Field: f.Name, Reason: "expected a list of strings", Raw: raw}
		}
		if f.Arity > 0 && len(items) != f.Arity {
			return nil, &ParseError{
				Field:  f.Name,
				Reason: fmt.Sprintf("expected exactly %d entries, got %d", f.Arity, len(items)),
				Raw:    raw,
			}
		}
		out := make([]string, 0, len(items))
		for i, it := range items {
			s, ok := it.(string)
			if !ok {
				return nil, &ParseError{
					Field:  f.Name,
					Reason: fmt.Sprintf("entry %d is not a string", i),
					Raw:    raw,
				}
			}
			out = append(out, s)
		}
		return out, nil

	default:
		switch s := v.(type) {
		case string:
			return strings.TrimSpace(s), nil
		case float64:
			// 数值字段（如reward）允许后端直接输出JSON数字
			return strings.TrimSpace(strings.TrimSuffix(fmt.Sprintf("%v", s), ".0")), nil
		case bool:
			return fmt.Sprintf("%t", s), nil
		default:
			return nil, &ParseError{Field: f.Name, Reason: "expected a string value", Raw: raw}
		}
	}
}

// extractJSON 取出围栏代码块中的JSON；没有围栏时退回到首个大括号配对
func extractJSON(raw string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		if start := strings.Index(raw, marker); start >= 0 {
			rest := raw[start+len(marker):]
			if end := strings.Index(rest, "```"); end >= 0 {
				candidate := strings.TrimSpace(rest[:end])
				if strings.HasPrefix(candidate, "{") {
					return candidate, true
				}
			}
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], true
	}
	return "", false
}

// GetString 读取Parse结果中的字符串字段。字段经过Parse校验，类型不符时返回空串
func GetString(m map[string]interface{}, name string) string {
	s, _ := m[name].(string)
	return s
}

// GetStringList 读取Parse结果中的字符串列表字段
func GetStringList(m map[string]interface{}, name string) []string {
	l, _ := m[name].([]string)
	return l
}

// GetObjectList 读取Parse结果中的对象列表字段
func GetObjectList(m map[string]interface{}, name string) []map[string]interface{} {
	l, _ := m[name].([]map[string]interface{})
	return l
}
