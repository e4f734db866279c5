package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/634287319/onedrive-direct-link/gee"
	"github.com/634287319/onedrive-direct-link/internal/app/onedrive/history"
)

type SaveHistoryRequest struct {
	OriginalURL string `json:"original_url"`
	DirectURL   string `json:"direct_url"`
	Remark      string `json:"remark,omitempty"`
	Family      string `json:"family,omitempty"`
}

func NewHistorySaveHandler(r *history.Repo) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		var req SaveHistoryRequest
		if err := ctx.BindJSON(&req); err != nil {
			return
		}
		if strings.TrimSpace(req.OriginalURL) == "" || strings.TrimSpace(req.DirectURL) == "" {
			ctx.AbortWithError(http.StatusBadRequest, "original_url and direct_url are required")
			return
		}

		saved, err := r.Save(ctx.Req.Context(), req.OriginalURL, req.DirectURL, req.Remark, req.Family)
		if err != nil {
			slog.Error("保存转换历史失败", "err", err)
			ctx.AbortWithError(http.StatusInternalServerError, "save history failed")
			return
		}
		ctx.JSON(http.StatusCreated, saved)
	}
}

func NewHistoryListHandler(r *history.Repo) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		list, err := r.List(ctx.Req.Context())
		if err != nil {
			slog.Error("读取转换历史失败", "err", err)
			ctx.AbortWithError(http.StatusInternalServerError, "list history failed")
			return
		}
		ctx.JSON(http.StatusOK, list)
	}
}

func NewHistoryGetHandler(r *history.Repo) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id := ctx.Param("id")
		item, err := r.Get(ctx.Req.Context(), id)
		if err != nil {
			if errors.Is(err, history.ErrNotFound) {
				ctx.AbortWithError(http.StatusNotFound, err.Error())
				return
			}
			ctx.AbortWithError(http.StatusInternalServerError, "get history failed")
			return
		}
		ctx.JSON(http.StatusOK, item)
	}
}

func NewHistoryDeleteHandler(r *history.Repo) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id := ctx.Param("id")
		if err := r.Delete(ctx.Req.Context(), id); err != nil {
			if errors.Is(err, history.ErrNotFound) {
				ctx.AbortWithError(http.StatusNotFound, err.Error())
				return
			}
			ctx.AbortWithError(http.StatusInternalServerError, "delete history failed")
			return
		}
		ctx.Status(http.StatusOK)
	}
}
