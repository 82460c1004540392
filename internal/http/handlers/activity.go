package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/fahad04code/Bakbak-bot/internal/domain"
	"github.com/fahad04code/Bakbak-bot/internal/http/response"
	"github.com/fahad04code/Bakbak-bot/internal/platform/ctxutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
	"github.com/fahad04code/Bakbak-bot/internal/services"
)

type ActivityHandler struct {
	log             *logger.Logger
	activityService services.ActivityService
}

func NewActivityHandler(log *logger.Logger, activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		log:             log.With("handler", "ActivityHandler"),
		activityService: activityService,
	}
}

// POST /api/activities/truth
func (h *ActivityHandler) SubmitTruth(c *gin.Context) {
	sd := ctxutil.GetSessionData(c.Request.Context())
	if sd == nil || sd.Phone == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
		Answer string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	activity, err := h.activityService.SaveTruth(c.Request.Context(), sd.Phone, services.TruthSubmission{
		Prompt: req.Prompt,
		Answer: req.Answer,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"activity": activity})
}

// POST /api/activities/dare (multipart: prompt, file)
func (h *ActivityHandler) SubmitDare(c *gin.Context) {
	h.submitUpload(c, h.activityService.SaveDare)
}

// POST /api/activities/meme (multipart: caption, file)
func (h *ActivityHandler) SubmitMeme(c *gin.Context) {
	h.submitUpload(c, h.activityService.SaveMeme)
}

// POST /api/activities/twister (multipart: prompt, file)
func (h *ActivityHandler) SubmitTwister(c *gin.Context) {
	h.submitUpload(c, h.activityService.SaveTwister)
}

type uploadSaver func(ctx context.Context, phone string, in services.UploadSubmission) (*types.Activity, error)

func (h *ActivityHandler) submitUpload(c *gin.Context, save uploadSaver) {
	sd := ctxutil.GetSessionData(c.Request.Context())
	if sd == nil || sd.Phone == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	sub, cleanup, err := readUploadForm(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	defer cleanup()

	activity, err := save(c.Request.Context(), sd.Phone, *sub)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"activity": activity})
}

// GET /api/activities?all=1
func (h *ActivityHandler) List(c *gin.Context) {
	sd := ctxutil.GetSessionData(c.Request.Context())
	if sd == nil || sd.Phone == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	includeAll := false
	switch strings.ToLower(c.Query("all")) {
	case "1", "true", "yes":
		includeAll = true
	}
	if includeAll && !sd.IsAdmin {
		response.RespondError(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	rows, err := h.activityService.List(c.Request.Context(), sd.Phone, includeAll)
	if err != nil {
		h.log.Error("List activities failed", "error", err)
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"activities": rows})
}

// readUploadForm pulls the single "file" part plus text fields out of a
// multipart body, sniffing the mime type when the part carries none.
func readUploadForm(c *gin.Context) (*services.UploadSubmission, func(), error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, err
	}
	form := c.Request.MultipartForm

	sub := &services.UploadSubmission{}
	if form != nil {
		if v := form.Value["prompt"]; len(v) > 0 {
			sub.Prompt = strings.TrimSpace(v[0])
		}
		if v := form.Value["caption"]; len(v) > 0 {
			sub.Caption = strings.TrimSpace(v[0])
		}
	}

	var fh *multipart.FileHeader
	if form != nil {
		if fhs := form.File["file"]; len(fhs) > 0 {
			fh = fhs[0]
		}
	}
	if fh == nil {
		return sub, func() {}, nil
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		sniffFile, err := fh.Open()
		if err == nil {
			buf := make([]byte, 512)
			n, _ := sniffFile.Read(buf)
			_ = sniffFile.Close()
			mimeType = http.DetectContentType(buf[:n])
		}
	}

	r, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	sub.OriginalName = fh.Filename
	sub.MimeType = mimeType
	sub.SizeBytes = fh.Size
	sub.Reader = r
	cleanup := func() {
		if rc, ok := sub.Reader.(io.ReadCloser); ok {
			_ = rc.Close()
		}
	}
	return sub, cleanup, nil
}
