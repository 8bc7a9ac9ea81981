package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeID 把 FilmRecord 编码为宿主可往返的不透明标识（JSON + base64url）。
func EncodeID(r FilmRecord) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeID 是 EncodeID 的逆操作。
func DecodeID(id string) (FilmRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return FilmRecord{}, fmt.Errorf("id 不能为空")
	}
	b, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return FilmRecord{}, fmt.Errorf("id 不是合法的 base64url：%w", err)
	}
	var r FilmRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return FilmRecord{}, fmt.Errorf("id 解码失败：%w", err)
	}
	return r, nil
}
