package contract

import (
	"fmt"
	"strings"
)

// Field 描述生成后端必须输出的一个命名字段
type Field struct {
	Name        string
	Description string
	List        bool    // 值为字符串列表
	Arity       int     // 列表的固定长度，0表示不限
	Item        []Field // 非空时值为对象列表，每个对象按Item字段校验
}

// Contract 一组有序的输出字段定义，可渲染格式说明并解析后端的自由文本输出
type Contract struct {
	fields []Field
}

// Build 按声明顺序构建Contract，字段名重复时报错
func Build(fields ...Field) (Contract, error) {
	if len(fields) == 0 {
		return Contract{}, fmt.Errorf("contract: no fields declared")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return Contract{}, fmt.Errorf("contract: field with empty name")
		}
		if seen[f.Name] {
			return Contract{}, fmt.Errorf("contract: duplicate field %q", f.Name)
		}
		seen[f.Name] = true

		itemSeen := make(map[string]bool, len(f.Item))
		for _, sub := range f.Item {
			if sub.Name == "" {
				return Contract{}, fmt.Errorf("contract: field %q has item field with empty name", f.Name)
			}
			if itemSeen[sub.Name] {
				return Contract{}, fmt.Errorf("contract: duplicate item field %q in %q", sub.Name, f.Name)
			}
			itemSeen[sub.Name] = true
		}
	}
	return Contract{fields: fields}, nil
}

// MustBuild 用于包级声明的Contract，定义出错属于编程错误
func MustBuild(fields ...Field) Contract {
	c, err := Build(fields...)
	if err != nil {
		panic(err)
	}
	return c
}

// Fields 返回声明的字段副本
func (c Contract) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// RenderInstructions 生成可嵌入提示词的格式说明。输出对固定输入是确定的
func (c Contract) RenderInstructions() string {
	var b strings.Builder
	b.WriteString("The output should be a markdown code snippet formatted in the following schema, ")
	b.WriteString("including the leading and trailing \"```json\" and \"```\":\n\n")
	b.WriteString("```json\n{\n")
	for _, f := range c.fields {
		renderField(&b, f, 1)
	}
	b.WriteString("}\n```")
	return b.String()
}

func renderField(b *strings.Builder, f Field, depth int) {
	indent := strings.Repeat("\t", depth)
	switch {
	case len(f.Item) > 0:
		fmt.Fprintf(b, "%s%q: [  // %s\n", indent, f.Name, f.Description)
		fmt.Fprintf(b, "%s\t{\n", indent)
		for _, sub := range f.Item {
			renderField(b, sub, depth+2)
		}
		fmt.Fprintf(b, "%s\t}\n", indent)
		fmt.Fprintf(b, "%s]\n", indent)
	case f.List:
		desc := f.Description
		if f.Arity > 0 {
			desc = fmt.Sprintf("exactly %d entries. %s", f.Arity, desc)
		}
		fmt.Fprintf(b, "%s%q: [string]  // %s\n", indent, f.Name, desc)
	default:
		fmt.Fprintf(b, "%s%q: string  // %s\n", indent, f.Name, f.Description)
	}
}
