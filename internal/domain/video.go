package domain

// VideoFile 描述一次扫描得到的视频文件（只做 stat，不读内容）。
type VideoFile struct {
	AbsPath string
	RelPath string
	Base    string // 不含扩展名
	Ext     string // 小写，例如 ".mp4"
	Size    int64

	// HasNFO 表示同目录下已存在同名 .nfo（批量运行据此跳过）。
	HasNFO bool
}

// NFOPath 返回同目录同名的 .nfo 路径。
func (v VideoFile) NFOPath() string {
	return v.AbsPath[:len(v.AbsPath)-len(v.Ext)] + ".nfo"
}
