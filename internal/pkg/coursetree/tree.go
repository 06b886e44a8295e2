package coursetree

import (
	"errors"
)

var (
	ErrModuleNotFound  = errors.New("module not found")
	ErrFileNotFound    = errors.New("file not found")
	ErrDuplicateModule = errors.New("duplicate module id")
	ErrDuplicateFile   = errors.New("duplicate file id")
	ErrNotRootModule   = errors.New("module is not at root level")
	ErrEmptyID         = errors.New("empty id")
)

// FileType 内容文件类型
type FileType string

const (
	FileTypeYouTube FileType = "youtube" // 外部托管视频
	FileTypeVideo   FileType = "video"
	FileTypeAudio   FileType = "audio"
	FileTypePDF     FileType = "pdf"
	FileTypeExcel   FileType = "excel"
	FileTypeLink    FileType = "link"
	FileTypeEbook   FileType = "ebook" // 富文本电子书
)

// Valid 是否为已知类型
func (t FileType) Valid() bool {
	switch t {
	case FileTypeYouTube, FileTypeVideo, FileTypeAudio, FileTypePDF,
		FileTypeExcel, FileTypeLink, FileTypeEbook:
		return true
	}
	return false
}

// Uploaded 是否为上传类型（payload 为对象存储 URL 或 data: 内嵌引用）
func (t FileType) Uploaded() bool {
	switch t {
	case FileTypeVideo, FileTypeAudio, FileTypePDF, FileTypeExcel:
		return true
	}
	return false
}

// File 模块下的内容文件
type File struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Type    FileType `json:"type"`
	URL     string   `json:"url"`
	Content string   `json:"content,omitempty"`
}

// Module 课程模块，可包含文件和子模块
type Module struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Files       []File   `json:"files"`
	Modules     []Module `json:"modules"`
	IsLocked    bool     `json:"is_locked,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	PaymentLink string   `json:"payment_link,omitempty"`
}

// ModulePatch 模块字段的部分更新，nil 表示不修改
type ModulePatch struct {
	Title       *string
	IsLocked    *bool
	Price       *float64
	ClearPrice  bool
	PaymentLink *string
}

// FilePatch 文件字段的部分更新，nil 表示不修改
type FilePatch struct {
	Name    *string
	Type    *FileType
	URL     *string
	Content *string
}

type node struct {
	id          string
	title       string
	locked      bool
	price       *float64
	paymentLink string
	files       []File
	parent      string
	children    []string
}

// Tree is a course-content tree stored as an arena of modules keyed by id.
// Module ids are unique across the whole tree. Every mutating operation
// returns a new Tree and leaves the receiver untouched, so a *Tree can be
// shared freely between readers.
type Tree struct {
	nodes map[string]*node
	roots []string
}

// New 创建空树
func New() *Tree {
	return &Tree{nodes: make(map[string]*node)}
}

// FromModules 由嵌套模块列表构建树
func FromModules(modules []Module) (*Tree, error) {
	t := New()
	for _, m := range modules {
		if err := t.attach("", m); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Len 模块总数
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Module 返回任意深度的模块（含子树）快照
func (t *Tree) Module(id string) (Module, bool) {
	if t == nil {
		return Module{}, false
	}
	if _, ok := t.nodes[id]; !ok {
		return Module{}, false
	}
	return t.snapshot(id), true
}

// Modules 返回整棵树的嵌套快照
func (t *Tree) Modules() []Module {
	if t == nil {
		return []Module{}
	}
	out := make([]Module, 0, len(t.roots))
	for _, id := range t.roots {
		out = append(out, t.snapshot(id))
	}
	return out
}

// IsRoot 模块是否位于根层级
func (t *Tree) IsRoot(id string) bool {
	if t == nil {
		return false
	}
	n, ok := t.nodes[id]
	return ok && n.parent == ""
}

// FirstContent returns the first file in document order: a module's own
// files come before its children, children before later siblings.
func (t *Tree) FirstContent() (File, bool) {
	if t == nil {
		return File{}, false
	}
	for _, id := range t.roots {
		if f, ok := t.firstIn(id); ok {
			return f, true
		}
	}
	return File{}, false
}

func (t *Tree) firstIn(id string) (File, bool) {
	n := t.nodes[id]
	if len(n.files) > 0 {
		return n.files[0], true
	}
	for _, child := range n.children {
		if f, ok := t.firstIn(child); ok {
			return f, true
		}
	}
	return File{}, false
}

// ParentModule 返回直接包含该文件的模块
func (t *Tree) ParentModule(fileID string) (Module, bool) {
	if t == nil {
		return Module{}, false
	}
	var found string
	t.walk(t.roots, func(n *node) bool {
		for _, f := range n.files {
			if f.ID == fileID {
				found = n.id
				return false
			}
		}
		return true
	})
	if found == "" {
		return Module{}, false
	}
	return t.snapshot(found), true
}

// File 查找文件及其所在模块 ID
func (t *Tree) File(fileID string) (File, string, bool) {
	m, ok := t.ParentModule(fileID)
	if !ok {
		return File{}, "", false
	}
	for _, f := range m.Files {
		if f.ID == fileID {
			return f, m.ID, true
		}
	}
	return File{}, "", false
}

// walk 深度优先先序遍历，fn 返回 false 时停止
func (t *Tree) walk(ids []string, fn func(*node) bool) bool {
	for _, id := range ids {
		n := t.nodes[id]
		if !fn(n) {
			return false
		}
		if !t.walk(n.children, fn) {
			return false
		}
	}
	return true
}

func (t *Tree) snapshot(id string) Module {
	n := t.nodes[id]
	m := Module{
		ID:          n.id,
		Title:       n.title,
		Files:       make([]File, len(n.files)),
		Modules:     make([]Module, 0, len(n.children)),
		IsLocked:    n.locked,
		Price:       copyPrice(n.price),
		PaymentLink: n.paymentLink,
	}
	copy(m.Files, n.files)
	for _, child := range n.children {
		m.Modules = append(m.Modules, t.snapshot(child))
	}
	return m
}

// attach 将模块及其子树挂到 parent 下（parent 为空表示根层级）
func (t *Tree) attach(parent string, m Module) error {
	if m.ID == "" {
		return ErrEmptyID
	}
	if _, exists := t.nodes[m.ID]; exists {
		return ErrDuplicateModule
	}

	n := &node{
		id:          m.ID,
		title:       m.Title,
		locked:      m.IsLocked,
		price:       copyPrice(m.Price),
		paymentLink: m.PaymentLink,
		parent:      parent,
	}
	seen := make(map[string]struct{}, len(m.Files))
	for _, f := range m.Files {
		if f.ID == "" {
			return ErrEmptyID
		}
		if _, dup := seen[f.ID]; dup {
			return ErrDuplicateFile
		}
		seen[f.ID] = struct{}{}
		n.files = append(n.files, f)
	}

	t.nodes[m.ID] = n
	if parent == "" {
		t.roots = append(t.roots, m.ID)
	} else {
		p := t.nodes[parent]
		p.children = append(p.children, m.ID)
	}

	for _, child := range m.Modules {
		if err := t.attach(m.ID, child); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) clone() *Tree {
	c := &Tree{
		nodes: make(map[string]*node, t.Len()),
	}
	if t == nil {
		return c
	}
	c.roots = append([]string(nil), t.roots...)
	for id, n := range t.nodes {
		cn := *n
		cn.price = copyPrice(n.price)
		cn.files = append([]File(nil), n.files...)
		cn.children = append([]string(nil), n.children...)
		c.nodes[id] = &cn
	}
	return c
}

func copyPrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
