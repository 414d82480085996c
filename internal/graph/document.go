package graph

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Node 是 graph.yml 中登记的一个函数节点。
type Node struct {
	Key      string `yaml:"key"`
	Function string `yaml:"function"`
	File     string `yaml:"file,omitempty"`
}

// Graph 是 graph.yml 的已知字段视图。
type Graph struct {
	Name  string `yaml:"name"`
	Nodes []Node `yaml:"nodes"`
}

// ErrDuplicateNode 表示节点 key 已被占用。
var ErrDuplicateNode = errors.New("graph node already exists")

// Document 持有图文件的原始 yaml 树，编辑后写回时保留未知字段、注释与键顺序。
type Document struct {
	Path string
	root yaml.Node
}

// Load 读取并解析图文件；空文件视为空映射。
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := &Document{Path: path}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc.root); err != nil {
			return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
		}
	}
	if doc.root.Kind == 0 {
		doc.root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if doc.mapping() == nil {
		return nil, fmt.Errorf("%s: 顶层必须为映射", path)
	}
	return doc, nil
}

// Graph 返回已知字段的解码结果。
func (d *Document) Graph() (Graph, error) {
	var g Graph
	if err := d.root.Decode(&g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// AddNode 在 nodes 列表末尾追加节点，key 重复时返回 ErrDuplicateNode。
func (d *Document) AddNode(node Node) error {
	if node.Key == "" {
		return errors.New("node key required")
	}
	mapping := d.mapping()
	nodes := lookup(mapping, "nodes")
	if nodes == nil || nodes.Kind != yaml.SequenceNode {
		fresh := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if nodes == nil {
			mapping.Content = append(mapping.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "nodes"}, fresh)
		} else if nodes.Tag == "!!null" || (nodes.Kind == yaml.ScalarNode && nodes.Value == "") {
			*nodes = *fresh
		} else {
			return fmt.Errorf("%s: nodes 必须为列表", d.Path)
		}
		nodes = lookup(mapping, "nodes")
	}

	for _, item := range nodes.Content {
		if key := lookup(item, "key"); key != nil && key.Value == node.Key {
			return fmt.Errorf("%s: %w", node.Key, ErrDuplicateNode)
		}
	}

	var encoded yaml.Node
	if err := encoded.Encode(node); err != nil {
		return err
	}
	nodes.Style = 0
	nodes.Content = append(nodes.Content, &encoded)
	return nil
}

// Save 以两空格缩进写回图文件，通过临时文件 + rename 保证原子替换。
func (d *Document) Save() error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&d.root); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	dir := filepath.Dir(d.Path)
	tmp, err := os.CreateTemp(dir, ".graph-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, d.Path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (d *Document) mapping() *yaml.Node {
	if d.root.Kind != yaml.DocumentNode || len(d.root.Content) == 0 {
		return nil
	}
	m := d.root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil
	}
	return m
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}
