package gee

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ShouldBindJSON 只解析 JSON，拒绝未知字段和多余的 JSON 值。
func (c *Context) ShouldBindJSON(dst any) error {
	decoder := json.NewDecoder(c.Req.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON value")
	}
	return nil
}

// BindJSON 解析 JSON；失败时直接写 400 响应。
func (c *Context) BindJSON(dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithError(http.StatusBadRequest, "Invalid json")
		return err
	}
	return nil
}
