package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/sonote/internal/domain"
	"github.com/nguyentantai21042004/sonote/internal/export"
	"github.com/nguyentantai21042004/sonote/internal/history"
	"github.com/nguyentantai21042004/sonote/internal/intake"
	"github.com/nguyentantai21042004/sonote/internal/scheduler"
)

type rejectedFile struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

type uploadResponse struct {
	Items    []domain.Item  `json:"items"`
	Rejected []rejectedFile `json:"rejected"`
}

func (s *implServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *implServer) stats(c *gin.Context) {
	st := s.deps.Scheduler.Stats()
	c.JSON(http.StatusOK, gin.H{
		"stats":    st,
		"progress": st.ProgressPercent(),
	})
}

func (s *implServer) listItems(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Scheduler.Items())
}

func (s *implServer) getItem(c *gin.Context) {
	it, ok := s.deps.Scheduler.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	c.JSON(http.StatusOK, it)
}

// uploadItems stores every accepted multipart "files" entry and enqueues
// them in form order.
func (s *implServer) uploadItems(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	var (
		accepted []domain.SourceFile
		resp     = uploadResponse{Items: []domain.Item{}, Rejected: []rejectedFile{}}
		tooLarge bool
	)
	for _, fh := range headers {
		file := sourceFromHeader(fh)
		if err := s.deps.Validator.Validate(file); err != nil {
			tooLarge = tooLarge || errors.Is(err, intake.ErrTooLarge)
			resp.Rejected = append(resp.Rejected, rejectedFile{Name: file.Name, Error: err.Error()})
			continue
		}

		file.Path = s.deps.Staging.Path(file.Name)
		if err := c.SaveUploadedFile(fh, file.Path); err != nil {
			s.logger.Error(c.Request.Context(), "Failed to save %s: %v", file.Name, err)
			s.deps.Staging.Release(c.Request.Context(), file)
			resp.Rejected = append(resp.Rejected, rejectedFile{Name: file.Name, Error: "failed to store upload"})
			continue
		}
		accepted = append(accepted, file)
	}

	if len(accepted) == 0 {
		status := http.StatusBadRequest
		if tooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, resp)
		return
	}

	items, err := s.deps.Scheduler.Enqueue(accepted)
	if err != nil {
		for _, file := range accepted {
			s.deps.Staging.Release(c.Request.Context(), file)
		}
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	resp.Items = items
	c.JSON(http.StatusCreated, resp)
}

func (s *implServer) retryItem(c *gin.Context) {
	s.itemAction(c, s.deps.Scheduler.Retry)
}

func (s *implServer) cancelItem(c *gin.Context) {
	s.itemAction(c, s.deps.Scheduler.Cancel)
}

func (s *implServer) removeItem(c *gin.Context) {
	if err := s.deps.Scheduler.Remove(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *implServer) itemAction(c *gin.Context, action func(id string) error) {
	id := c.Param("id")
	if err := action(id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	it, _ := s.deps.Scheduler.Get(id)
	c.JSON(http.StatusOK, it)
}

func (s *implServer) events(c *gin.Context) {
	since, err := strconv.ParseInt(c.DefaultQuery("since", "0"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since"})
		return
	}
	c.JSON(http.StatusOK, s.deps.Scheduler.Events(since))
}

func (s *implServer) listHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	records, err := s.deps.History.List(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error(c.Request.Context(), "Failed to list history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read history"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *implServer) deleteHistory(c *gin.Context) {
	if err := s.deps.History.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *implServer) clearHistory(c *gin.Context) {
	if err := s.deps.History.Clear(c.Request.Context()); err != nil {
		s.logger.Error(c.Request.Context(), "Failed to clear history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *implServer) exportHistory(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	part, err := export.ParsePart(c.Query("part"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.deps.History.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	name := export.FileName(rec, format, part)
	switch format {
	case export.FormatJSON:
		data, err := export.JSON(rec)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode export"})
			return
		}
		attach(c, name, "application/json", data)
	case export.FormatText:
		text, err := export.Text(rec, part)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		attach(c, name, "text/plain; charset=utf-8", []byte(text))
	case export.FormatMarkdown:
		attach(c, name, "text/markdown; charset=utf-8", []byte(export.Markdown(rec)))
	case export.FormatDocx:
		path, err := export.WriteFile(rec, format, part, s.deps.ExportDir)
		if err != nil {
			s.logger.Error(c.Request.Context(), "Failed to write docx for %s: %v", rec.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build document"})
			return
		}
		c.FileAttachment(path, name)
	}
}

func attach(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, data)
}

func sourceFromHeader(fh *multipart.FileHeader) domain.SourceFile {
	name := filepath.Base(fh.Filename)
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = intake.TypeByExtension(name)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return domain.SourceFile{Name: name, Size: fh.Size, MIMEType: mimeType}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrItemNotFound), errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduler.ErrNotRetryable), errors.Is(err, scheduler.ErrNotCancellable),
		errors.Is(err, scheduler.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, scheduler.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, intake.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, intake.ErrUnsupportedType), errors.Is(err, export.ErrEmpty),
		errors.Is(err, export.ErrUnknownFormat), errors.Is(err, export.ErrUnknownPart):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
