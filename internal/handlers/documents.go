package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_service/internal/logging"
	authmw "github.com/Skotchmaster/doc_service/internal/middleware/auth"
	"github.com/Skotchmaster/doc_service/internal/service"
	"github.com/Skotchmaster/doc_service/internal/util"
)

// formOverhead is the room left for multipart headers and text fields on
// top of MaxUploadBytes.
const formOverhead = 64 << 10

type DocumentsHandler struct {
	Svc            *service.DocumentService
	MaxUploadBytes int64
}

func (h *DocumentsHandler) tooLarge() error {
	return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
		fmt.Sprintf("file exceeds %d bytes", h.MaxUploadBytes))
}

// formFile returns the uploaded "file" part, or nil when none was sent and
// required is false. The caller closes the returned file.
func (h *DocumentsHandler) formFile(c echo.Context, required bool) (*service.FileInput, multipart.File, error) {
	if h.MaxUploadBytes > 0 {
		req := c.Request()
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.MaxUploadBytes+formOverhead)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, h.tooLarge()
		}
		if errors.Is(err, http.ErrMissingFile) && !required {
			return nil, nil, nil
		}
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if h.MaxUploadBytes > 0 && fh.Size > h.MaxUploadBytes {
		return nil, nil, h.tooLarge()
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	return &service.FileInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

func (h *DocumentsHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "documents_upload")

	id, err := authmw.MustIdentity(c)
	if err != nil {
		return err
	}
	in, f, err := h.formFile(c, true)
	if err != nil {
		l.Warn("upload_error", "error", err)
		return err
	}
	defer f.Close()

	doc, err := h.Svc.Upload(ctx, id.UserID, in, c.FormValue("title"), c.FormValue("description"))
	if err != nil {
		return httpError(l, "upload_error", err)
	}
	return c.JSON(http.StatusCreated, doc)
}

func (h *DocumentsHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "documents_list")

	id, err := authmw.MustIdentity(c)
	if err != nil {
		return err
	}
	docs, err := h.Svc.List(ctx, id.UserID)
	if err != nil {
		return httpError(l, "list_documents_error", err)
	}
	return c.JSON(http.StatusOK, docs)
}

func (h *DocumentsHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "documents_get")

	ident, err := authmw.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	doc, err := h.Svc.Get(ctx, id, ident.UserID)
	if err != nil {
		return httpError(l, "get_document_error", err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *DocumentsHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "documents_update")

	ident, err := authmw.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	in, f, err := h.formFile(c, false)
	if err != nil {
		l.Warn("update_error", "error", err)
		return err
	}
	if f != nil {
		defer f.Close()
	}

	doc, err := h.Svc.Update(ctx, id, ident.UserID, c.FormValue("title"), c.FormValue("description"), in)
	if err != nil {
		return httpError(l, "update_error", err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *DocumentsHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "documents_delete")

	ident, err := authmw.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id, ident.UserID); err != nil {
		return httpError(l, "delete_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Document deleted successfully", "documentId": id})
}

func (h *DocumentsHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "documents_search")

	ident, err := authmw.MustIdentity(c)
	if err != nil {
		return err
	}
	page, size := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))

	res, err := h.Svc.Search(ctx, ident.UserID, c.QueryParam("q"), page, size)
	if err != nil {
		return httpError(l, "search_error", err)
	}
	return c.JSON(http.StatusOK, res)
}
