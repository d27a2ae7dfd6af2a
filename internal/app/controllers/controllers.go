// Package controllers handles HTTP request handling
package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/middleware"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// records is the read, delete and export surface every admin service offers
type records[T any, Q any] interface {
	Get(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, q Q) (*dto.ListResponse[*T], error)
	Delete(ctx context.Context, id int64) error
	BulkDelete(ctx context.Context, ids []int64) (*dto.BulkDeleteResponse, error)
	Export(ctx context.Context, q Q) (*export.Table, error)
}

// editor creates and updates records from one request type
type editor[T any, R any] interface {
	Create(ctx context.Context, req *R) (*T, error)
	Update(ctx context.Context, id int64, req *R) (*T, error)
}

func ok(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, dto.NewAPIResponse(data, message))
}

func handleList[T any, Q any](ctx *gin.Context, svc records[T, Q]) {
	var q Q
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	page, err := svc.List(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, http.StatusOK, page, "")
}

func handleGet[T any, Q any](ctx *gin.Context, svc records[T, Q]) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	item, err := svc.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, http.StatusOK, item, "")
}

func handleCreate[T any, R any](ctx *gin.Context, create func(context.Context, *R) (*T, error), message string) {
	var req R
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	item, err := create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, http.StatusCreated, item, message)
}

func handleUpdate[T any, R any](ctx *gin.Context, update func(context.Context, int64, *R) (*T, error), message string) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req R
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	item, err := update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, http.StatusOK, item, message)
}

func handleDelete(ctx *gin.Context, del func(context.Context, int64) error, message string) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	if err := del(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, http.StatusOK, nil, message)
}

func handleBulkDelete(ctx *gin.Context, del func(context.Context, []int64) (*dto.BulkDeleteResponse, error)) {
	var req dto.BulkDeleteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	resp, err := del(ctx.Request.Context(), req.IDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, http.StatusOK, resp, fmt.Sprintf("%d records deleted", resp.Count))
}

// handleExport streams every matching record as a CSV or XLSX attachment
func handleExport[T any, Q any](ctx *gin.Context, svc records[T, Q], module string) {
	var eq dto.ExportQuery
	if !middleware.BindQuery(ctx, &eq) {
		return
	}
	format, err := export.ParseFormat(eq.Format)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error()).WithField("format")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}
	var q Q
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	table, err := svc.Export(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	name := export.FileName(module, format, time.Now())
	ctx.Header("Content-Type", format.ContentType())
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	ctx.Status(http.StatusOK)
	if err := table.Write(ctx.Writer, format); err != nil {
		logger.Error().Err(err).Str("module", module).Str("format", string(format)).Msg("Failed to write export")
	}
}
