package coursetree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON 以嵌套模块数组形式序列化
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Modules())
}

// UnmarshalJSON 从嵌套模块数组重建树，null 得到空树
func (t *Tree) UnmarshalJSON(data []byte) error {
	var modules []Module
	if !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		if err := json.Unmarshal(data, &modules); err != nil {
			return err
		}
	}
	built, err := FromModules(modules)
	if err != nil {
		return fmt.Errorf("invalid course tree: %w", err)
	}
	*t = *built
	return nil
}
