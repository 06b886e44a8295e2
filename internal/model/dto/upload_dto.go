package dto

// UploadResponse 内容文件上传结果
type UploadResponse struct {
	URL     string `json:"url"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Storage string `json:"storage"` // oss, inline
}
