package coursetree

// InsertModule 在 parentID 下追加模块（含其文件和子模块），parentID 为空时追加到根层级
func (t *Tree) InsertModule(parentID string, m Module) (*Tree, error) {
	if parentID != "" {
		if _, ok := t.lookup(parentID); !ok {
			return nil, ErrModuleNotFound
		}
	}
	c := t.clone()
	if err := c.attach(parentID, m); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateModule 合并更新任意深度模块的字段
func (t *Tree) UpdateModule(moduleID string, patch ModulePatch) (*Tree, error) {
	if _, ok := t.lookup(moduleID); !ok {
		return nil, ErrModuleNotFound
	}
	c := t.clone()
	n := c.nodes[moduleID]
	if patch.Title != nil {
		n.title = *patch.Title
	}
	if patch.IsLocked != nil {
		n.locked = *patch.IsLocked
	}
	if patch.ClearPrice {
		n.price = nil
	} else if patch.Price != nil {
		n.price = copyPrice(patch.Price)
	}
	if patch.PaymentLink != nil {
		n.paymentLink = *patch.PaymentLink
	}
	return c, nil
}

// InsertFile 向任意深度的模块追加文件
func (t *Tree) InsertFile(moduleID string, f File) (*Tree, error) {
	n, ok := t.lookup(moduleID)
	if !ok {
		return nil, ErrModuleNotFound
	}
	if f.ID == "" {
		return nil, ErrEmptyID
	}
	if indexOfFile(n.files, f.ID) >= 0 {
		return nil, ErrDuplicateFile
	}
	c := t.clone()
	cn := c.nodes[moduleID]
	cn.files = append(cn.files, f)
	return c, nil
}

// UpdateFile 原地修改文件的名称、类型、payload 或内容
func (t *Tree) UpdateFile(moduleID, fileID string, patch FilePatch) (*Tree, error) {
	n, ok := t.lookup(moduleID)
	if !ok {
		return nil, ErrModuleNotFound
	}
	idx := indexOfFile(n.files, fileID)
	if idx < 0 {
		return nil, ErrFileNotFound
	}
	c := t.clone()
	f := &c.nodes[moduleID].files[idx]
	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.Type != nil {
		f.Type = *patch.Type
	}
	if patch.URL != nil {
		f.URL = *patch.URL
	}
	if patch.Content != nil {
		f.Content = *patch.Content
	}
	return c, nil
}

// DeleteFile 删除模块下的文件
func (t *Tree) DeleteFile(moduleID, fileID string) (*Tree, error) {
	n, ok := t.lookup(moduleID)
	if !ok {
		return nil, ErrModuleNotFound
	}
	idx := indexOfFile(n.files, fileID)
	if idx < 0 {
		return nil, ErrFileNotFound
	}
	c := t.clone()
	cn := c.nodes[moduleID]
	cn.files = append(cn.files[:idx], cn.files[idx+1:]...)
	return c, nil
}

// DeleteModule removes a module at any depth together with its subtree.
func (t *Tree) DeleteModule(moduleID string) (*Tree, error) {
	n, ok := t.lookup(moduleID)
	if !ok {
		return nil, ErrModuleNotFound
	}
	c := t.clone()
	if n.parent == "" {
		c.roots = removeID(c.roots, moduleID)
	} else {
		p := c.nodes[n.parent]
		p.children = removeID(p.children, moduleID)
	}
	c.dropSubtree(moduleID)
	return c, nil
}

// DeleteRootModule 仅删除根层级模块，嵌套模块返回 ErrNotRootModule
func (t *Tree) DeleteRootModule(moduleID string) (*Tree, error) {
	n, ok := t.lookup(moduleID)
	if !ok {
		return nil, ErrModuleNotFound
	}
	if n.parent != "" {
		return nil, ErrNotRootModule
	}
	return t.DeleteModule(moduleID)
}

func (t *Tree) dropSubtree(id string) {
	n := t.nodes[id]
	for _, child := range n.children {
		t.dropSubtree(child)
	}
	delete(t.nodes, id)
}

func (t *Tree) lookup(id string) (*node, bool) {
	if t == nil || id == "" {
		return nil, false
	}
	n, ok := t.nodes[id]
	return n, ok
}

func indexOfFile(files []File, id string) int {
	for i, f := range files {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
