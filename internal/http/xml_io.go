package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/entities"
	"github.com/mrlokans/weengz-air/internal/services"
	"github.com/mrlokans/weengz-air/internal/tasks"
)

const originAPI = "api"

var errNoDocument = errors.New("no XML document provided")

// XMLController exposes the XML import, export and purge operations.
type XMLController struct {
	interchange Interchange
	archive     PayloadArchive
	tasks       TaskQueue
	maxUpload   int64
	log         logrus.FieldLogger
}

func NewXMLController(interchange Interchange, archive PayloadArchive, queue TaskQueue, maxUpload int64, log logrus.FieldLogger) *XMLController {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &XMLController{
		interchange: interchange,
		archive:     archive,
		tasks:       queue,
		maxUpload:   maxUpload,
		log:         log,
	}
}

// Import handles POST /api/xml/import
// Accepts a multipart upload in the xml_file field or a raw XML body.
// With ?async=true the document is queued and 202 is returned.
func (xc *XMLController) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, xc.maxUpload)

	data, err := xc.readPayload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("XML document exceeds %d bytes", xc.maxUpload))
		case errors.Is(err, errUnsupportedType):
			respondError(c, http.StatusUnsupportedMediaType, err.Error())
		default:
			respondBadRequest(c, err.Error())
		}
		return
	}

	ctx := services.WithOrigin(c.Request.Context(), originAPI)

	if queryBool(c, "async") {
		xc.enqueue(c, data)
		return
	}

	summary, err := xc.interchange.Import(ctx, bytes.NewReader(data))
	switch {
	case errors.Is(err, services.ErrParse):
		respondBadRequest(c, services.ErrParse.Error())
	case errors.Is(err, services.ErrBatchInProgress):
		respondError(c, http.StatusConflict, "another import or purge is in progress")
	case err != nil:
		xc.log.WithError(err).Error("XML import stopped")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "import stopped before completion",
			Details: summary,
		})
	case !summary.Recognized:
		c.JSON(http.StatusUnprocessableEntity, summary)
	default:
		c.JSON(http.StatusOK, summary)
	}
}

func (xc *XMLController) enqueue(c *gin.Context, data []byte) {
	if xc.tasks == nil || xc.archive == nil {
		respondError(c, http.StatusServiceUnavailable, "background imports are disabled")
		return
	}

	ref, err := xc.archive.SaveXML(data)
	if err != nil {
		respondInternalError(c, xc.log, err, "archive import payload")
		return
	}

	id, err := xc.tasks.Enqueue(c.Request.Context(), tasks.ImportXMLTask{PayloadRef: ref, Origin: originAPI})
	if err != nil {
		respondInternalError(c, xc.log, err, "enqueue import")
		return
	}

	respondAccepted(c, "import queued", gin.H{
		"task_id":     id,
		"payload_ref": ref,
	})
}

var errUnsupportedType = errors.New("content type must be application/xml, text/xml or multipart/form-data")

func (xc *XMLController) readPayload(c *gin.Context) ([]byte, error) {
	mediaType := c.ContentType()

	var data []byte
	switch {
	case mediaType == "multipart/form-data":
		fh, err := c.FormFile("xml_file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: xml_file is required", errNoDocument)
		}
		if fh.Size > xc.maxUpload {
			return nil, &http.MaxBytesError{Limit: xc.maxUpload}
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if data, err = io.ReadAll(f); err != nil {
			return nil, err
		}
	case isXMLMediaType(mediaType):
		var err error
		if data, err = io.ReadAll(c.Request.Body); err != nil {
			return nil, err
		}
	default:
		return nil, errUnsupportedType
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errNoDocument
	}
	return data, nil
}

func isXMLMediaType(mediaType string) bool {
	if mediaType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = mediaType
	}
	return mt == "application/xml" || mt == "text/xml" || strings.HasSuffix(mt, "+xml")
}

// Export handles GET /api/xml/export
// Returns every active reservation as an XML attachment.
func (xc *XMLController) Export(c *gin.Context) {
	file, err := xc.interchange.Export(services.WithOrigin(c.Request.Context(), originAPI))
	if err != nil {
		respondInternalError(c, xc.log, err, "export reservations")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Header("X-Export-Count", strconv.Itoa(file.Count))
	c.Header("X-Processing-Ms", strconv.FormatInt(file.ElapsedMs, 10))
	c.Data(http.StatusOK, "application/xml; charset=utf-8", file.Data)
}

// PurgeRequest is the request body for a purge.
type PurgeRequest struct {
	Confirm string `json:"confirm" form:"confirm" binding:"required"`
}

// PurgeResponse wraps the purge counts as {"deleted": {...}}.
type PurgeResponse struct {
	Deleted entities.PurgeResult `json:"deleted"`
}

// Purge handles POST /api/admin/purge
// Deletes every reservation once the confirmation text matches.
func (xc *XMLController) Purge(c *gin.Context) {
	var req PurgeRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, fmt.Sprintf("confirmation required: type %s", services.PurgeConfirmation))
		return
	}

	result, err := xc.interchange.Purge(services.WithOrigin(c.Request.Context(), originAPI), req.Confirm)
	switch {
	case errors.Is(err, services.ErrPurgeNotConfirmed):
		respondBadRequest(c, fmt.Sprintf("confirmation required: type %s", services.PurgeConfirmation))
	case errors.Is(err, services.ErrBatchInProgress):
		respondError(c, http.StatusConflict, "another import or purge is in progress")
	case err != nil:
		respondInternalError(c, xc.log, err, "purge")
	default:
		c.JSON(http.StatusOK, PurgeResponse{Deleted: result})
	}
}
